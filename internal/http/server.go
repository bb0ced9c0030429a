// Package http provides the API server, routing, and shared middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	otelmetric "go.opentelemetry.io/otel/metric"

	analyticsHTTP "github.com/allisson/privmetrics/internal/analytics/http"
	auditHTTP "github.com/allisson/privmetrics/internal/audit/http"
	authHTTP "github.com/allisson/privmetrics/internal/auth/http"
	budgetHTTP "github.com/allisson/privmetrics/internal/budget/http"
	"github.com/allisson/privmetrics/internal/config"
	"github.com/allisson/privmetrics/internal/metrics"
	tokenizationHTTP "github.com/allisson/privmetrics/internal/tokenization/http"
)

// Handlers groups the area handlers mounted on the API server.
type Handlers struct {
	Tokenization *tokenizationHTTP.TokenizationHandler
	Analytics    *analyticsHTTP.AnalyticsHandler
	Budget       *budgetHTTP.BudgetHandler
	Audit        *auditHTTP.AuditHandler
}

// Server represents the API HTTP server.
type Server struct {
	server *http.Server
	db     *sql.DB
	logger *slog.Logger
}

// NewServer creates the API server and builds its router. meterProvider may
// be nil when metrics are disabled.
func NewServer(
	db *sql.DB,
	cfg *config.Config,
	logger *slog.Logger,
	handlers Handlers,
	meterProvider otelmetric.MeterProvider,
) *Server {
	s := &Server{
		db:     db,
		logger: logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(meterProvider, cfg.MetricsNamespace))
	}

	router.Use(authHTTP.PrincipalMiddleware(logger))

	if cfg.RateLimitEnabled {
		router.Use(authHTTP.RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, logger))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	{
		v1.POST("/events", handlers.Analytics.IngestHandler)
		v1.POST("/queries", handlers.Analytics.QueryHandler)
		v1.POST("/tokens", handlers.Tokenization.TokenizeHandler)
		v1.POST("/detokenize", handlers.Tokenization.DetokenizeHandler)
		v1.GET("/budgets/:scope", handlers.Budget.RemainingHandler)
		v1.GET("/audit-entries", handlers.Audit.ListHandler)
		v1.GET("/audit-entries/verify", handlers.Audit.VerifyHandler)
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the API HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can reach its dependencies.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}

	if s.db == nil {
		components["database"] = "error"
	} else if err := s.db.PingContext(c.Request.Context()); err != nil {
		components["database"] = "error"
	}

	if components["database"] != "ok" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
