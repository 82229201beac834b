package handlers

import (
	"net/http"

	"dailymind/internal/api/apierrors"
	"dailymind/internal/api/dto"
	"dailymind/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func tokenResponse(pair *service.TokenPair) dto.TokenResponse {
	return dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
	}
}

// Register POST /auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, pair, err := h.deps.Auth.Register(c.Request.Context(), service.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		TelegramID: req.TelegramID,
	})
	if err != nil {
		apierrors.RespondInput(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.RegisterResponse{
		User:          dto.ToUserResponse(user),
		TokenResponse: tokenResponse(pair),
	})
}

// Login POST /auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.deps.Auth.Login(c.Request.Context(), service.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		TelegramID: req.TelegramID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse(pair))
}

// TelegramLogin POST /auth/telegram. Маршрут защищен секретом бота.
func (h *Handlers) TelegramLogin(c *gin.Context) {
	var req dto.TelegramLoginRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.deps.Auth.TelegramLogin(c.Request.Context(), req.TelegramID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	h.logger.Debug("Telegram login", zap.Int64("telegram_id", req.TelegramID))
	c.JSON(http.StatusOK, tokenResponse(pair))
}

// Refresh POST /auth/refresh
func (h *Handlers) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.deps.Auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse(pair))
}

// Logout POST /auth/logout. Токены не отзываются, клиент просто удаляет их.
func (h *Handlers) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Successfully logged out"})
}
