// Package http provides HTTP handlers for detokenization.
//
// Tokenization itself happens during event ingestion; this package only
// exposes the privileged reverse path.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/privmetrics/internal/auth/http"
	"github.com/allisson/privmetrics/internal/httputil"
	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
	"github.com/allisson/privmetrics/internal/tokenization/http/dto"
	tokenizationUseCase "github.com/allisson/privmetrics/internal/tokenization/usecase"
	customValidation "github.com/allisson/privmetrics/internal/validation"
)

// TokenizationHandler handles HTTP requests for detokenization.
type TokenizationHandler struct {
	tokenizationUseCase tokenizationUseCase.TokenizationUseCase
	logger              *slog.Logger
}

// NewTokenizationHandler creates a new tokenization handler.
func NewTokenizationHandler(
	useCase tokenizationUseCase.TokenizationUseCase,
	logger *slog.Logger,
) *TokenizationHandler {
	return &TokenizationHandler{
		tokenizationUseCase: useCase,
		logger:              logger,
	}
}

// TokenizeHandler derives the deterministic token for a plaintext.
// POST /v1/tokens - returns 201 with the token metadata; repeated calls with
// the same plaintext return the existing mapping.
func (h *TokenizationHandler) TokenizeHandler(c *gin.Context) {
	var req dto.TokenizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	principal, _ := authHTTP.GetPrincipal(c.Request.Context())

	record, err := h.tokenizationUseCase.Tokenize(
		c.Request.Context(),
		principal,
		tokenizationDomain.FieldType(req.FieldType),
		req.Plaintext,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapTokenRecordToResponse(record))
}

// DetokenizeHandler recovers the plaintext behind a token.
// POST /v1/detokenize - requires the detokenize capability assertion; denied
// attempts are audited by the use case before the 403 is returned.
func (h *TokenizationHandler) DetokenizeHandler(c *gin.Context) {
	var req dto.DetokenizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	principal, _ := authHTTP.GetPrincipal(c.Request.Context())

	plaintext, err := h.tokenizationUseCase.Detokenize(
		c.Request.Context(),
		principal,
		tokenizationDomain.FieldType(req.FieldType),
		req.Token,
		req.KeyGeneration,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.DetokenizeResponse{
		FieldType:     req.FieldType,
		Plaintext:     plaintext,
		KeyGeneration: req.KeyGeneration,
	})
}
