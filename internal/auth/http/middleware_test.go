package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/privmetrics/internal/auth/domain"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPrincipalMiddleware(t *testing.T) {
	t.Run("Success_ResolvesPrincipalFromHeaders", func(t *testing.T) {
		var got *authDomain.Principal
		var ok bool

		router := gin.New()
		router.Use(PrincipalMiddleware(discardLogger()))
		router.GET("/test", func(c *gin.Context) {
			got, ok = GetPrincipal(c.Request.Context())
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(HeaderPrincipalID, "analyst-1")
		req.Header.Set(HeaderPrincipalRole, "analyst")
		req.Header.Set(HeaderPrincipalScope, "org-1")
		req.Header.Set(HeaderCapability, "detokenize, audit:read")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.True(t, ok)
		assert.Equal(t, "analyst-1", got.ID)
		assert.Equal(t, "analyst", got.Role)
		assert.Equal(t, "org-1", got.Scope)
		assert.True(t, got.HasCapability(authDomain.CapabilityDetokenize))
		assert.True(t, got.HasCapability(authDomain.CapabilityAuditRead))
	})

	t.Run("NoHeaders_ProceedsWithoutPrincipal", func(t *testing.T) {
		var ok bool

		router := gin.New()
		router.Use(PrincipalMiddleware(discardLogger()))
		router.GET("/test", func(c *gin.Context) {
			_, ok = GetPrincipal(c.Request.Context())
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, ok)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	newRouter := func(rps float64, burst int) *gin.Engine {
		router := gin.New()
		router.Use(PrincipalMiddleware(discardLogger()))
		router.Use(RateLimitMiddleware(rps, burst, discardLogger()))
		router.GET("/test", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}

	doRequest := func(router *gin.Engine, principalID string) int {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		if principalID != "" {
			req.Header.Set(HeaderPrincipalID, principalID)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("AllowsWithinBurst", func(t *testing.T) {
		router := newRouter(1, 3)
		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, doRequest(router, "analyst-1"))
		}
	})

	t.Run("RejectsBeyondBurst", func(t *testing.T) {
		router := newRouter(0.001, 1)
		assert.Equal(t, http.StatusOK, doRequest(router, "analyst-1"))
		assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "analyst-1"))
	})

	t.Run("LimitsPerPrincipal", func(t *testing.T) {
		router := newRouter(0.001, 1)
		assert.Equal(t, http.StatusOK, doRequest(router, "analyst-1"))
		assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "analyst-1"))
		assert.Equal(t, http.StatusOK, doRequest(router, "analyst-2"))
	})

	t.Run("AnonymousRequestsShareBucket", func(t *testing.T) {
		router := newRouter(0.001, 1)
		assert.Equal(t, http.StatusOK, doRequest(router, ""))
		assert.Equal(t, http.StatusTooManyRequests, doRequest(router, ""))
	})
}
