package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/studika/gradebook-backend/internal/model"
	"github.com/studika/gradebook-backend/internal/response"
	"github.com/studika/gradebook-backend/internal/service"
)

const (
	// ContextKeyPrincipal is the Gin context key for the authenticated principal.
	ContextKeyPrincipal = "principal"
	// ContextKeySessionToken is the Gin context key for the raw session token.
	ContextKeySessionToken = "session_token"
)

// RequireSession validates the opaque session token from the Authorization
// header and loads the principal into the context. Validation hits the
// session store on every request; a revoked or expired session fails here
// regardless of how recently it last passed.
func RequireSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		principal, err := authService.Validate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrSessionExpired):
				response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionExpired)
			case errors.Is(err, service.ErrSessionRevoked):
				response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionRevoked)
			case errors.Is(err, service.ErrNoSession):
				response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalid)
			default:
				response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			}
			return
		}

		c.Set(ContextKeyPrincipal, principal)
		c.Set(ContextKeySessionToken, token)
		c.Next()
	}
}

// RequireAdmin gates a route group to admin principals. Must run after
// RequireSession.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		if !p.IsAdmin() {
			response.AbortFail(c, http.StatusForbidden, response.ErrAdminAccessOnly)
			return
		}
		c.Next()
	}
}

// GetPrincipal retrieves the authenticated principal from the Gin context.
func GetPrincipal(c *gin.Context) *model.Principal {
	val, exists := c.Get(ContextKeyPrincipal)
	if !exists {
		return nil
	}
	p, ok := val.(*model.Principal)
	if !ok {
		return nil
	}
	return p
}

// GetSessionToken retrieves the raw session token from the Gin context.
func GetSessionToken(c *gin.Context) string {
	return c.GetString(ContextKeySessionToken)
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}

	// Fallback for WebSocket upgrades which cannot send headers.
	return c.Query("token")
}
