package middleware

import (
	"strings"

	"cargomarket_backend/internal/auth"
	"cargomarket_backend/internal/logger"
	"cargomarket_backend/internal/models"
	"cargomarket_backend/pkg/apperrors"
	"cargomarket_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

// websocket-клиенты браузера не умеют ставить заголовки
func tokenFromRequest(c *gin.Context) (string, bool) {
	if token, ok := bearerToken(c); ok {
		return token, true
	}
	if c.Request.Header.Get("Upgrade") == "websocket" {
		if token := c.Query("token"); token != "" {
			return token, true
		}
	}
	return "", false
}

func setIdentity(c *gin.Context, claims *auth.Claims) {
	c.Set(contextkeys.UserIDKey, claims.UserID)
	c.Set(contextkeys.RoleKey, claims.Role)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
}

// AuthMiddleware - middleware проверки JWT
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := tokenFromRequest(c)
		if !ok {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			logger.CtxDebug(c.Request.Context(), "token rejected", "error", err)
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware - публичные маршруты, которые ведут себя иначе для владельца
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr, ok := bearerToken(c); ok {
			if claims, err := auth.ParseToken(tokenStr); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

func roleFromContext(c *gin.Context) (models.UserRole, bool) {
	roleVal, exists := c.Get(contextkeys.RoleKey)
	if !exists {
		return "", false
	}
	switch r := roleVal.(type) {
	case models.UserRole:
		return r, true
	case string:
		return models.UserRole(r), true
	default:
		return "", false
	}
}

// RequireRoles - доступ только для перечисленных ролей
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool)
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		role, ok := roleFromContext(c)
		if !ok {
			apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied: no role"))
			return
		}
		if !roleSet[role] {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return RequireRoles(models.UserRoleAdmin)
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) string {
	id, _ := c.Get(contextkeys.UserIDKey)
	s, _ := id.(string)
	return s
}

// IsAdmin - роль текущего пользователя admin
func IsAdmin(c *gin.Context) bool {
	role, ok := roleFromContext(c)
	return ok && role == models.UserRoleAdmin
}
