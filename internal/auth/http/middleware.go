// Package http provides HTTP middleware for principal resolution and rate limiting.
//
// Authentication and authorization decisions are made upstream by the gateway.
// This service trusts the principal headers it receives and only enforces the
// capability assertions they carry.
package http

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/privmetrics/internal/auth/domain"
)

// HeaderPrincipalID carries the caller identity assigned by the gateway.
const HeaderPrincipalID = "X-Principal-ID"

// HeaderPrincipalRole carries the caller's role.
const HeaderPrincipalRole = "X-Principal-Role"

// HeaderPrincipalScope carries the analytics scope the caller operates in.
const HeaderPrincipalScope = "X-Principal-Scope"

// HeaderCapability carries comma-separated capability assertions.
const HeaderCapability = "X-Capability"

// principalContextKey is the context key type for the resolved principal.
type principalContextKey struct{}

// PrincipalMiddleware resolves the caller's principal from gateway headers and
// stores it in the request context. Requests without principal headers proceed
// with a nil principal; handlers that require one reject the request.
func PrincipalMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderPrincipalID)
		if id == "" {
			c.Next()
			return
		}

		principal := &authDomain.Principal{
			ID:           id,
			Role:         c.GetHeader(HeaderPrincipalRole),
			Scope:        c.GetHeader(HeaderPrincipalScope),
			Capabilities: authDomain.ParseCapabilities(c.GetHeader(HeaderCapability)),
		}

		ctx := context.WithValue(c.Request.Context(), principalContextKey{}, principal)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("principal resolved",
			slog.String("principal_id", principal.ID),
			slog.String("role", principal.Role),
			slog.String("scope", principal.Scope),
		)

		c.Next()
	}
}

// GetPrincipal retrieves the resolved principal from the context.
// Returns nil, false when the request carried no principal headers.
func GetPrincipal(ctx context.Context) (*authDomain.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey{}).(*authDomain.Principal)
	return principal, ok
}
