package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/medicare-api/internal/apperr"
	"github.com/harentsoaR/medicare-api/internal/models"
	"github.com/harentsoaR/medicare-api/internal/services"
)

const principalKey = "principal"

// PrincipalResolver turns a bearer token into the caller's identity.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (*services.Principal, error)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved principal on the context.
func RequireAuth(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "authorization header required")
			return
		}
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		p, err := resolver.ResolvePrincipal(c.Request.Context(), strings.TrimSpace(tokenString))
		if err != nil {
			var appErr *apperr.Error
			if errors.As(err, &appErr) && appErr.Kind == apperr.KindUnauthorized {
				abort(c, http.StatusUnauthorized, appErr.Message)
				return
			}
			logrus.WithError(err).WithField("request_id", RequestIDFrom(c)).Error("failed to resolve principal")
			abort(c, http.StatusInternalServerError, "internal server error")
			return
		}

		c.Set(principalKey, p)
		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles. It must run after RequireAuth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if p == nil {
			abort(c, http.StatusUnauthorized, "authentication required")
			return
		}
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "access denied for role "+string(p.Role))
	}
}

// PrincipalFrom returns the authenticated caller, or nil on open routes.
func PrincipalFrom(c *gin.Context) *services.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*services.Principal)
	return p
}

// SetPrincipal stores p on the context; tests use it to skip token handling.
func SetPrincipal(c *gin.Context, p *services.Principal) {
	c.Set(principalKey, p)
}
