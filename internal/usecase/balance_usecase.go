package usecase

import (
	"context"
	"time"

	"github.com/iho/axiompay/internal/domain"
)

// BalanceUseCase answers diagnostic balance queries.
type BalanceUseCase struct {
	ledger  LedgerClient
	metrics Metrics
}

// NewBalanceUseCase creates a new BalanceUseCase. metrics may be nil.
func NewBalanceUseCase(ledger LedgerClient, metrics Metrics) *BalanceUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &BalanceUseCase{ledger: ledger, metrics: metrics}
}

// GetBalance returns the ledger-reported balance of accountID unchanged.
func (uc *BalanceUseCase) GetBalance(ctx context.Context, accountID string) (balance domain.Balance, err error) {
	account, err := domain.ValidateAccountID(domain.FieldAccountID, accountID)
	if err != nil {
		return domain.Balance{}, err
	}

	start := time.Now()
	defer func() {
		uc.metrics.ObserveBalanceQuery(domain.CategoryOf(err), time.Since(start))
	}()

	return uc.ledger.QueryBalance(ctx, account)
}
