package hedera

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"

	hsdk "github.com/hashgraph/hedera-sdk-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/iho/axiompay/internal/domain"
)

// transientStatuses are ledger answers that say nothing about the request
// itself; resubmitting the same envelope may succeed.
var transientStatuses = map[hsdk.Status]struct{}{
	hsdk.StatusBusy:                         {},
	hsdk.StatusPlatformTransactionNotCreated: {},
	hsdk.StatusPlatformNotActive:             {},
	hsdk.StatusUnknown:                      {},
	hsdk.StatusReceiptNotFound:              {},
}

// errNodeUnavailable replaces a panic raised by the SDK when it has no
// healthy node to send a request to.
var errNodeUnavailable = errors.New("no healthy ledger node available")

// guard runs an SDK call and turns a panic inside it into errNodeUnavailable.
func guard[T any](call func() (T, error)) (res T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			res, err = zero, fmt.Errorf("%w: %v", errNodeUnavailable, r)
		}
	}()
	return call()
}

// classify turns an SDK error into a categorized LedgerError. Errors that
// carry no ledger status and no recognizable transport failure get fallback:
// internal for local steps, transient for network round-trips whose outcome
// is unknown.
func classify(err error, txID string, fallback domain.Category) *domain.LedgerError {
	var ledgerErr *domain.LedgerError
	if errors.As(err, &ledgerErr) {
		return ledgerErr
	}

	var precheck hsdk.ErrHederaPreCheckStatus
	if errors.As(err, &precheck) {
		return statusError(precheck.Status, txID, err)
	}

	var receipt hsdk.ErrHederaReceiptStatus
	if errors.As(err, &receipt) {
		return statusError(receipt.Status, txID, err)
	}

	if isTransportFailure(err) {
		return &domain.LedgerError{
			Category:      domain.CategoryTransientNetworkFailure,
			TransactionID: txID,
			Err:           err,
		}
	}

	return &domain.LedgerError{
		Category:      fallback,
		TransactionID: txID,
		Err:           err,
	}
}

// statusError builds the LedgerError for a non-success ledger status.
func statusError(s hsdk.Status, txID string, cause error) *domain.LedgerError {
	category := domain.CategoryLedgerRejected
	if _, ok := transientStatuses[s]; ok {
		category = domain.CategoryTransientNetworkFailure
	}

	return &domain.LedgerError{
		Code:          s.String(),
		Category:      category,
		TransactionID: txID,
		Err:           cause,
	}
}

func isTransportFailure(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, errNodeUnavailable) {
		return true
	}

	var sdkNetErr hsdk.ErrHederaNetwork
	if errors.As(err, &sdkNetErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
			return true
		}
	}

	return false
}
