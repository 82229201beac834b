package handlers

import (
	"net/http"

	"dailymind/internal/api/apierrors"
	"dailymind/internal/api/dto"
	"dailymind/internal/api/middleware"
	"dailymind/internal/service"

	"github.com/gin-gonic/gin"
)

// Me GET /users/me
func (h *Handlers) Me(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// UpdateMe PATCH /users/me
func (h *Handlers) UpdateMe(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req dto.ProfileUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.deps.Users.UpdateProfile(c.Request.Context(), user.ID, service.ProfilePatch{
		Name:       req.Name,
		Email:      req.Email,
		TelegramID: req.TelegramID,
	})
	if err != nil {
		apierrors.RespondInput(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(updated))
}

// MyProgress GET /users/me/progress
func (h *Handlers) MyProgress(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	progress, err := h.deps.Engine.GetUserProgress(c.Request.Context(), user.ID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}
