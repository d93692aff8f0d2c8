package hedera

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	hsdk "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/rs/zerolog"

	"github.com/iho/axiompay/internal/domain"
	"github.com/iho/axiompay/internal/usecase"
)

// Config configures the ledger session.
type Config struct {
	Operator *domain.OperatorIdentity
	Logger   zerolog.Logger
}

// Client implements usecase.LedgerClient over the Hedera SDK. One Client is
// created at startup and shared by all requests.
type Client struct {
	net      network
	operator hsdk.AccountID
	logger   zerolog.Logger
	closed   atomic.Bool
}

var _ usecase.LedgerClient = (*Client)(nil)

// NewClient opens the ledger session for cfg.Operator. Missing or malformed
// credentials fail with domain.ErrConfiguration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Operator == nil {
		return nil, fmt.Errorf("%w: operator identity is required", domain.ErrConfiguration)
	}
	if err := cfg.Operator.Validate(); err != nil {
		return nil, err
	}

	operatorID := toAccountID(cfg.Operator.AccountID)

	key, err := hsdk.PrivateKeyFromString(cfg.Operator.PrivateKey.Reveal())
	if err != nil {
		// The SDK error may echo key material.
		return nil, fmt.Errorf("%w: operator private key is malformed", domain.ErrConfiguration)
	}

	client, err := hsdk.ClientForName(string(cfg.Operator.Network))
	if err != nil {
		return nil, fmt.Errorf("%w: ledger network %q: %w", domain.ErrConfiguration, cfg.Operator.Network, err)
	}
	client.SetOperator(operatorID, key)

	cfg.Logger.Info().
		Str("network", string(cfg.Operator.Network)).
		Str("operator", operatorID.String()).
		Msg("ledger session opened")

	return newClient(&sdkNetwork{client: client, key: key}, operatorID, cfg.Logger), nil
}

func newClient(n network, operator hsdk.AccountID, logger zerolog.Logger) *Client {
	return &Client{
		net:      n,
		operator: operator,
		logger:   logger.With().Str("component", "ledger").Logger(),
	}
}

// envelope is a frozen, operator-signed schedule creation.
type envelope struct {
	tx   *hsdk.ScheduleCreateTransaction
	txID hsdk.TransactionID
}

func (e *envelope) TransactionID() string {
	return e.txID.String()
}

// Prepare builds the scheduled transfer, freezes it against the session and
// signs it with the operator key.
func (c *Client) Prepare(ctx context.Context, req *domain.ScheduleRequest) (usecase.Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.LedgerError{Category: domain.CategoryTransientNetworkFailure, Err: err}
	}
	if c.closed.Load() {
		return nil, errSessionClosed
	}

	scheduled, err := buildTransfer(req.Transfer).Schedule()
	if err != nil {
		return nil, fmt.Errorf("%w: schedule transfer: %w", domain.ErrInternal, err)
	}
	scheduled.SetScheduleMemo(req.Memo)

	frozen, err := guard(func() (*hsdk.ScheduleCreateTransaction, error) {
		return c.net.freeze(scheduled)
	})
	if err != nil {
		return nil, classify(err, "", domain.CategoryInternal)
	}

	return &envelope{tx: frozen, txID: frozen.GetTransactionID()}, nil
}

// Submit executes env and waits for its receipt. A DUPLICATE_TRANSACTION
// answer means an earlier submission of env reached the ledger, so its
// receipt is fetched instead. ctx is not consulted once the envelope is sent.
func (c *Client) Submit(_ context.Context, env usecase.Envelope) (*domain.Receipt, error) {
	e, ok := env.(*envelope)
	if !ok {
		return nil, fmt.Errorf("%w: foreign envelope %T", domain.ErrInternal, env)
	}
	if c.closed.Load() {
		return nil, errSessionClosed
	}

	txID := e.txID

	_, err := guard(func() (hsdk.TransactionID, error) {
		return c.net.execute(e.tx)
	})
	if err != nil {
		var precheck hsdk.ErrHederaPreCheckStatus
		if !errors.As(err, &precheck) || precheck.Status != hsdk.StatusDuplicateTransaction {
			return nil, classify(err, txID.String(), domain.CategoryTransientNetworkFailure)
		}

		c.logger.Info().
			Str("transaction_id", txID.String()).
			Msg("envelope already accepted by the ledger, fetching its receipt")
	}

	return c.receiptFor(txID)
}

func (c *Client) receiptFor(txID hsdk.TransactionID) (*domain.Receipt, error) {
	id := txID.String()

	r, err := guard(func() (hsdk.TransactionReceipt, error) {
		return c.net.receipt(txID)
	})
	if err != nil {
		return nil, classify(err, id, domain.CategoryTransientNetworkFailure)
	}

	if r.Status != hsdk.StatusSuccess {
		return nil, statusError(r.Status, id, nil)
	}

	if r.ScheduleID == nil {
		return nil, &domain.LedgerError{
			Category:      domain.CategoryInternal,
			TransactionID: id,
			Err:           errors.New("receipt has no schedule id"),
		}
	}

	return &domain.Receipt{
		ScheduleID:    r.ScheduleID.String(),
		TransactionID: id,
		Status:        r.Status.String(),
	}, nil
}

type balanceResult struct {
	balance hsdk.AccountBalance
	err     error
}

// QueryBalance returns the native balance of account. The query is free and
// read-only, so it is abandoned when ctx ends.
func (c *Client) QueryBalance(ctx context.Context, account domain.AccountRef) (domain.Balance, error) {
	if c.closed.Load() {
		return domain.Balance{}, errSessionClosed
	}

	done := make(chan balanceResult, 1)
	go func() {
		b, err := guard(func() (hsdk.AccountBalance, error) {
			return c.net.balance(toAccountID(account))
		})
		done <- balanceResult{balance: b, err: err}
	}()

	select {
	case <-ctx.Done():
		return domain.Balance{}, &domain.LedgerError{Category: domain.CategoryTransientNetworkFailure, Err: ctx.Err()}
	case res := <-done:
		if res.err != nil {
			return domain.Balance{}, classify(res.err, "", domain.CategoryTransientNetworkFailure)
		}
		return domain.Balance{Tinybars: res.balance.Hbars.AsTinybar()}, nil
	}
}

// Name identifies the ledger in readiness output.
func (c *Client) Name() string {
	return "ledger"
}

// Ping checks the session by querying the operator balance.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.QueryBalance(ctx, fromAccountID(c.operator))
	return err
}

// Close releases the ledger session. Later calls fail.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.net.close()
}

var errSessionClosed = &domain.LedgerError{
	Category: domain.CategoryInternal,
	Err:      errors.New("ledger session closed"),
}

func buildTransfer(instr domain.TransferInstruction) *hsdk.TransferTransaction {
	tx := hsdk.NewTransferTransaction()
	for _, e := range instr.Entries {
		tx.AddHbarTransfer(toAccountID(e.Account), hsdk.HbarFromTinybar(e.Delta.Shift(domain.HbarDecimals).IntPart()))
	}
	return tx
}

func toAccountID(a domain.AccountRef) hsdk.AccountID {
	return hsdk.AccountID{Shard: a.Shard, Realm: a.Realm, Account: a.Num}
}

func fromAccountID(a hsdk.AccountID) domain.AccountRef {
	return domain.AccountRef{Shard: a.Shard, Realm: a.Realm, Num: a.Account}
}
