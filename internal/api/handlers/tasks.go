package handlers

import (
	"errors"
	"io"
	"math"
	"net/http"

	"dailymind/internal/api/apierrors"
	"dailymind/internal/api/dto"
	"dailymind/internal/api/middleware"
	"dailymind/internal/model"

	"github.com/gin-gonic/gin"
)

// TodayTask GET /tasks/today. Назначает задание, если его еще нет.
func (h *Handlers) TodayTask(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	filter, ok := queryTaskFilter(c)
	if !ok {
		return
	}

	assignment, err := h.deps.Engine.AssignDailyTask(c.Request.Context(), user.ID, filter)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentResponse(assignment))
}

// CompleteTask POST /tasks/:id/complete
func (h *Handlers) CompleteTask(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	assignmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	// Тело необязательно, у chunked запроса ContentLength равен -1
	var req dto.CompleteTaskRequest
	if c.Request.Body != http.NoBody && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			apierrors.InvalidInput(c, "Invalid request body", err.Error())
			return
		}
	}

	assignment, err := h.deps.Engine.CompleteTask(c.Request.Context(), user.ID, assignmentID, req.AnswerText)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentResponse(assignment))
}

// TaskHistory GET /tasks/history
func (h *Handlers) TaskHistory(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	limit, ok := queryInt(c, "limit", defaultHistoryLimit, 1, maxPageLimit)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0, 0, math.MaxInt32)
	if !ok {
		return
	}
	status, ok := queryStatus(c)
	if !ok {
		return
	}

	history, err := h.deps.Engine.GetTaskHistory(c.Request.Context(), user.ID, model.AssignmentFilter{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentResponses(history))
}
