package handlers

import (
	"errors"
	"math"
	"net/http"
	"time"

	"dailymind/internal/api/apierrors"
	"dailymind/internal/api/dto"
	"dailymind/internal/model"
	"dailymind/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// adminPage читает skip и limit для административных списков
func adminPage(c *gin.Context) (skip, limit int, ok bool) {
	if skip, ok = queryInt(c, "skip", 0, 0, math.MaxInt32); !ok {
		return 0, 0, false
	}
	if limit, ok = queryInt(c, "limit", defaultAdminLimit, 1, maxPageLimit); !ok {
		return 0, 0, false
	}
	return skip, limit, true
}

// ListUsers GET /admin/users
func (h *Handlers) ListUsers(c *gin.Context) {
	skip, limit, ok := adminPage(c)
	if !ok {
		return
	}
	isActive, ok := queryBool(c, "is_active")
	if !ok {
		return
	}

	users, err := h.deps.Users.List(c.Request.Context(), model.UserFilter{
		IsActive: isActive,
		Limit:    limit,
		Offset:   skip,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponses(users))
}

// GetUser GET /admin/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	userID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	user, err := h.deps.Users.Get(c.Request.Context(), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// UpdateUser PATCH /admin/users/:id
func (h *Handlers) UpdateUser(c *gin.Context) {
	userID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.AdminUserUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.deps.Users.UpdateByAdmin(c.Request.Context(), userID, service.AdminPatch{
		IsActive: req.IsActive,
		Role:     req.Role,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	h.logger.Info("User updated by admin", zap.String("user_id", userID.String()))
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// DeleteUser DELETE /admin/users/:id
func (h *Handlers) DeleteUser(c *gin.Context) {
	userID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.deps.Users.Delete(c.Request.Context(), userID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "User deleted"})
}

// UserProgress GET /admin/users/:id/progress
func (h *Handlers) UserProgress(c *gin.Context) {
	userID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if _, err := h.deps.Users.Get(c.Request.Context(), userID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	progress, err := h.deps.Engine.GetUserProgress(c.Request.Context(), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// UserAssignments GET /admin/users/:id/assignments
func (h *Handlers) UserAssignments(c *gin.Context) {
	userID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	skip, limit, ok := adminPage(c)
	if !ok {
		return
	}
	status, ok := queryStatus(c)
	if !ok {
		return
	}

	assignments, err := h.deps.Engine.GetTaskHistory(c.Request.Context(), userID, model.AssignmentFilter{
		Status: status,
		Limit:  limit,
		Offset: skip,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentResponses(assignments))
}

// AssignTask POST /admin/users/:id/assign-task
func (h *Handlers) AssignTask(c *gin.Context) {
	userID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Query("task_id"))
	if err != nil {
		apierrors.InvalidInput(c, "Invalid task_id", map[string]string{"task_id": c.Query("task_id")})
		return
	}

	queue, ok := queryBool(c, "queue")
	if !ok {
		return
	}

	var date *time.Time
	if queue == nil || !*queue {
		day := h.deps.Engine.Today()
		if raw := c.Query("assigned_date"); raw != "" {
			day, err = model.ParseDay(raw)
			if err != nil {
				apierrors.InvalidInput(c, "Invalid assigned_date, expected YYYY-MM-DD", map[string]string{"assigned_date": raw})
				return
			}
		}
		date = &day
	}

	assignment, err := h.deps.Engine.CreateDailyAssignment(c.Request.Context(), userID, taskID, date)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	h.logger.Info("Task assigned by admin",
		zap.String("user_id", userID.String()),
		zap.String("task_id", taskID.String()),
		zap.Bool("queued", date == nil))
	c.JSON(http.StatusCreated, dto.ToAssignmentResponse(assignment))
}

// NextQueued GET /admin/users/:id/queue/next
func (h *Handlers) NextQueued(c *gin.Context) {
	userID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	assignment, err := h.deps.Engine.GetNextPendingAssignment(c.Request.Context(), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentResponse(assignment))
}

// ScheduleAssignment POST /admin/assignments/:id/schedule
func (h *Handlers) ScheduleAssignment(c *gin.Context) {
	assignmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.ScheduleAssignmentRequest
	if !bindJSON(c, &req) {
		return
	}

	day, err := model.ParseDay(req.AssignedDate)
	if err != nil {
		apierrors.InvalidInput(c, "Invalid assigned_date, expected YYYY-MM-DD", map[string]string{"assigned_date": req.AssignedDate})
		return
	}

	assignment, err := h.deps.Engine.AssignPendingToDate(c.Request.Context(), assignmentID, day)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentResponse(assignment))
}

// DeleteAssignment DELETE /admin/assignments/:id
func (h *Handlers) DeleteAssignment(c *gin.Context) {
	assignmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.deps.Engine.DeleteAssignment(c.Request.Context(), assignmentID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListTemplates GET /admin/tasks/templates
func (h *Handlers) ListTemplates(c *gin.Context) {
	skip, limit, ok := adminPage(c)
	if !ok {
		return
	}
	filter, ok := queryTaskFilter(c)
	if !ok {
		return
	}
	filter.Limit = limit
	filter.Offset = skip

	tasks, err := h.deps.Content.ListTasks(c.Request.Context(), filter)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskResponses(tasks))
}

// CreateTemplate POST /admin/tasks/templates
func (h *Handlers) CreateTemplate(c *gin.Context) {
	var req dto.TaskCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	task := &model.Task{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
	}
	if err := h.deps.Content.CreateTask(c.Request.Context(), task); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskResponse(task))
}

// UpdateTemplate PATCH /admin/tasks/templates/:id
func (h *Handlers) UpdateTemplate(c *gin.Context) {
	taskID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.TaskUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.deps.Content.UpdateTask(c.Request.Context(), taskID, service.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

// DeleteTemplate DELETE /admin/tasks/templates/:id
func (h *Handlers) DeleteTemplate(c *gin.Context) {
	taskID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.deps.Content.DeleteTask(c.Request.Context(), taskID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Categories GET /admin/tasks/categories
func (h *Handlers) Categories(c *gin.Context) {
	categories, err := h.deps.Content.Categories(c.Request.Context())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListSettings GET /admin/settings
func (h *Handlers) ListSettings(c *gin.Context) {
	settings, err := h.deps.Settings.GetAll(c.Request.Context())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSettingResponses(settings))
}

// UpdateSetting PUT /admin/settings/:key
func (h *Handlers) UpdateSetting(c *gin.Context) {
	key := c.Param("key")

	var req dto.SettingUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.deps.Settings.Set(c.Request.Context(), key, req.Value); err != nil {
		apierrors.Respond(c, err)
		return
	}

	h.logger.Info("Setting updated by admin", zap.String("key", key), zap.String("value", req.Value))
	c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value})
}

// SchedulerStatus GET /admin/scheduler
func (h *Handlers) SchedulerStatus(c *gin.Context) {
	status, err := h.deps.Scheduler.Status(c.Request.Context())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// RunJob POST /admin/scheduler/jobs/:name/run. Ошибка выполнения возвращается в теле, а не статусом.
func (h *Handlers) RunJob(c *gin.Context) {
	name := c.Param("name")

	err := h.deps.Scheduler.RunNow(c.Request.Context(), name)
	if errors.Is(err, model.ErrNotFound) {
		apierrors.Respond(c, err)
		return
	}

	resp := dto.JobRunResponse{Name: name, Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}
