package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/axiompay/internal/adapter/http/dto"
	"github.com/iho/axiompay/internal/domain"
)

// BalanceService answers balance queries.
type BalanceService interface {
	GetBalance(ctx context.Context, accountID string) (domain.Balance, error)
}

// BalanceHandler handles balance requests.
type BalanceHandler struct {
	balanceUC BalanceService
	logger    zerolog.Logger
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService, logger zerolog.Logger) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC, logger: logger}
}

// Get returns the ledger balance of the account in the path.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	balance, err := h.balanceUC.GetBalance(r.Context(), accountID)
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(accountID, balance))
}
