package middleware

import (
	"context"
	"net/http"

	"filesmanager/backend/internal/access"
	"filesmanager/backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// TokenHeader carries the session token on authenticated requests.
const TokenHeader = "X-Token"

type contextKey string

const principalContextKey = contextKey("principal")

// RequireAuth resolves the session token and rejects anonymous callers.
func RequireAuth(gate *access.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := resolve(c, gate)
		if !p.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// OptionalAuth resolves the session token when present. Requests without a
// valid one continue as anonymous.
func OptionalAuth(gate *access.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		resolve(c, gate)
		c.Next()
	}
}

func resolve(c *gin.Context, gate *access.Gate) access.Principal {
	p := gate.Resolve(c.Request.Context(), c.GetHeader(TokenHeader))

	ctx := context.WithValue(c.Request.Context(), principalContextKey, p)
	if p.Authenticated() {
		ctx = logger.WithUserID(ctx, p.UserID.Hex())
	}
	c.Request = c.Request.WithContext(ctx)
	return p
}

// ForContext returns the principal stored by the auth middlewares, or
// anonymous.
func ForContext(ctx context.Context) access.Principal {
	p, _ := ctx.Value(principalContextKey).(access.Principal)
	return p
}
