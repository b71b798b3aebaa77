package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"beautybook/internal/domain/identity"
	"beautybook/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUserIDKey   = "user_id"
	ctxUserRoleKey = "user_role"
)

type AuthMiddleware struct {
	tokens *jwt.Service
}

func NewAuthMiddleware(tokens *jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(authHeader[len("Bearer "):])
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Access token required",
			})
			c.Abort()
			return
		}

		claims, err := m.tokens.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		role := identity.Role(claims.Role)
		if !role.IsValid() {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxUserRoleKey, role)
		c.Set("jwt_claims", map[string]any{
			"user_id": claims.UserID.String(),
			"role":    string(role),
		})
		c.Next()
	}
}

// RequireRole gates an endpoint on an exact role; used after RequireAuth.
func (m *AuthMiddleware) RequireRole(required identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			c.Abort()
			return
		}

		if actor.Role != required {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func GetActor(c *gin.Context) (identity.Actor, bool) {
	rawID, exists := c.Get(ctxUserIDKey)
	if !exists {
		return identity.Actor{}, false
	}
	id, ok := rawID.(uuid.UUID)
	if !ok {
		return identity.Actor{}, false
	}

	rawRole, exists := c.Get(ctxUserRoleKey)
	if !exists {
		return identity.Actor{}, false
	}
	role, ok := rawRole.(identity.Role)
	if !ok {
		return identity.Actor{}, false
	}

	return identity.Actor{UserID: id, Role: role}, true
}
