// Package http provides HTTP handlers for reading and verifying the audit chain.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/allisson/privmetrics/internal/audit/domain"
	"github.com/allisson/privmetrics/internal/audit/http/dto"
	auditUseCase "github.com/allisson/privmetrics/internal/audit/usecase"
	authDomain "github.com/allisson/privmetrics/internal/auth/domain"
	authHTTP "github.com/allisson/privmetrics/internal/auth/http"
	"github.com/allisson/privmetrics/internal/httputil"
)

// AuditHandler handles HTTP requests for the audit chain. Both endpoints
// require the audit read capability assertion from the gateway.
type AuditHandler struct {
	auditChainUseCase auditUseCase.AuditChainUseCase
	logger            *slog.Logger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(useCase auditUseCase.AuditChainUseCase, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		auditChainUseCase: useCase,
		logger:            logger,
	}
}

// ListHandler returns a page of audit entries, newest first.
// GET /v1/audit-entries?offset=0&limit=50&actor=...&action=...
func (h *AuditHandler) ListHandler(c *gin.Context) {
	if !h.requireAuditRead(c) {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	actor := c.Query("actor")
	action := auditDomain.ActionKind(c.Query("action"))

	entries, err := h.auditChainUseCase.List(c.Request.Context(), offset, limit, actor, action)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEntriesToListResponse(entries, offset, limit))
}

// VerifyHandler recomputes digests and signatures over a seq range.
// GET /v1/audit-entries/verify?from_seq=1&to_seq=0 (to_seq 0 means to the end)
func (h *AuditHandler) VerifyHandler(c *gin.Context) {
	if !h.requireAuditRead(c) {
		return
	}

	fromSeq, err := httputil.ParseSeq(c, "from_seq", 1)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	toSeq, err := httputil.ParseSeq(c, "to_seq", 0)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	result, err := h.auditChainUseCase.Verify(c.Request.Context(), fromSeq, toSeq)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapVerificationToResponse(result))
}

// requireAuditRead rejects callers without the audit read capability.
func (h *AuditHandler) requireAuditRead(c *gin.Context) bool {
	principal, _ := authHTTP.GetPrincipal(c.Request.Context())
	if !principal.HasCapability(authDomain.CapabilityAuditRead) {
		httputil.HandleErrorGin(c, authDomain.ErrCapabilityRequired, h.logger)
		return false
	}
	return true
}
