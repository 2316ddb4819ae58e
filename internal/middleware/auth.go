package middleware

import (
	"strings"

	"greenjobs_backend/internal/auth"
	"greenjobs_backend/internal/logger"
	"greenjobs_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

const (
	ActionTokenHeader = "X-Action-Token"

	ctxUserID = "userID"
	ctxRole   = "role"
	ctxClaims = "claims"
)

// SessionParser - проверка токена сессии (auth.TokenManager)
type SessionParser interface {
	ParseToken(token string) (*auth.Claims, error)
}

// ActionVerifier - проверка токена действия (auth.TokenManager)
type ActionVerifier interface {
	VerifyActionToken(token, action, subject string) error
}

// AuthMiddleware - middleware проверки JWT
func AuthMiddleware(tokens SessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		claims, err := tokens.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			logger.CtxWarn(c.Request.Context(), "invalid session token", "error", err)
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			return
		}

		// Сохраняем claims в контекст
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Set(ctxClaims, claims)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// RequirePermission - роль из токена должна иметь разрешение
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.CanPerformAction(GetClaims(c), permission) {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// RequireActionToken - X-Action-Token, выпущенный для admin_action этому же администратору.
// Причина отказа клиенту не сообщается.
func RequireActionToken(tokens ActionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(ActionTokenHeader)
		if err := tokens.VerifyActionToken(token, auth.ActionAdmin, GetUserID(c)); err != nil {
			logger.CtxWarn(c.Request.Context(), "admin action token rejected", "error", err, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ErrSecurityCheck)
			return
		}
		c.Next()
	}
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func GetClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
