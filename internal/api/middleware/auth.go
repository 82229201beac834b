// Package middleware содержит middleware HTTP API.
package middleware

import (
	"context"
	"crypto/subtle"
	"strings"

	"dailymind/internal/api/apierrors"
	"dailymind/internal/model"

	"github.com/gin-gonic/gin"
)

const contextKeyUser = "current_user"

// Authenticator проверяет access токен
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*model.User, error)
}

// RequireAuth проверяет Bearer токен и кладет пользователя в контекст
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			apierrors.Unauthorized(c, "")
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			apierrors.Respond(c, err)
			return
		}

		c.Set(contextKeyUser, user)
		c.Next()
	}
}

// RequireAdmin пропускает только администраторов. Ставится после RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}
		if !user.IsAdmin() {
			apierrors.Forbidden(c, "")
			return
		}
		c.Next()
	}
}

// RequireBotSecret проверяет заголовок X-Bot-Secret
func RequireBotSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-Bot-Secret")
		if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			apierrors.Unauthorized(c, "Invalid bot secret")
			return
		}
		c.Next()
	}
}

// CurrentUser возвращает пользователя, установленного RequireAuth
func CurrentUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(contextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok && user != nil
}
