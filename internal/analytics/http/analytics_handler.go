// Package http provides HTTP handlers for event ingestion and private queries.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/privmetrics/internal/analytics/http/dto"
	analyticsUseCase "github.com/allisson/privmetrics/internal/analytics/usecase"
	authDomain "github.com/allisson/privmetrics/internal/auth/domain"
	authHTTP "github.com/allisson/privmetrics/internal/auth/http"
	"github.com/allisson/privmetrics/internal/httputil"
	customValidation "github.com/allisson/privmetrics/internal/validation"
)

// AnalyticsHandler handles HTTP requests for analytics operations.
// The scope comes from the principal headers; events and queries never name
// a scope in the body.
type AnalyticsHandler struct {
	analyticsUseCase analyticsUseCase.AnalyticsUseCase
	logger           *slog.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(useCase analyticsUseCase.AnalyticsUseCase, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsUseCase: useCase,
		logger:           logger,
	}
}

// IngestHandler records an event, tokenizing the mapped identifying fields.
// POST /v1/events - returns 201 with the tokenized event.
func (h *AnalyticsHandler) IngestHandler(c *gin.Context) {
	principal, scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	var req dto.IngestEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	event, err := h.analyticsUseCase.Ingest(
		c.Request.Context(),
		principal,
		scope,
		req.Properties,
		req.DomainFieldMap(),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapEventToResponse(event))
}

// QueryHandler runs a differentially private aggregate against the scope's
// events. POST /v1/queries - a budget denial is a 200 with denied set, not an
// error status.
func (h *AnalyticsHandler) QueryHandler(c *gin.Context) {
	principal, scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.analyticsUseCase.Query(c.Request.Context(), principal, req.DomainRequest(scope))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapQueryResultToResponse(result))
}

// requireScope resolves the principal and its scope, rejecting requests
// without one.
func (h *AnalyticsHandler) requireScope(c *gin.Context) (principal *authDomain.Principal, scope string, ok bool) {
	p, _ := authHTTP.GetPrincipal(c.Request.Context())
	if p == nil || p.Scope == "" {
		httputil.HandleValidationErrorGin(
			c,
			fmt.Errorf("a principal with a scope is required"),
			h.logger,
		)
		return nil, "", false
	}
	return p, p.Scope, true
}
