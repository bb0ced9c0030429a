// Package http provides HTTP handlers for budget ledger reads.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/privmetrics/internal/budget/http/dto"
	budgetUseCase "github.com/allisson/privmetrics/internal/budget/usecase"
	"github.com/allisson/privmetrics/internal/httputil"
	customValidation "github.com/allisson/privmetrics/internal/validation"
)

// BudgetHandler handles HTTP requests for budget ledger reads.
type BudgetHandler struct {
	budgetUseCase budgetUseCase.BudgetUseCase
	logger        *slog.Logger
}

// NewBudgetHandler creates a new budget handler.
func NewBudgetHandler(useCase budgetUseCase.BudgetUseCase, logger *slog.Logger) *BudgetHandler {
	return &BudgetHandler{
		budgetUseCase: useCase,
		logger:        logger,
	}
}

// RemainingHandler returns the advisory remaining budget for a scope.
// GET /v1/budgets/:scope
func (h *BudgetHandler) RemainingHandler(c *gin.Context) {
	scope := c.Param("scope")
	if err := (customValidation.ScopeFormat{}).Validate(scope); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	account, err := h.budgetUseCase.Remaining(c.Request.Context(), scope)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAccountToResponse(account))
}
