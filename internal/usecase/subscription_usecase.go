package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/axiompay/internal/domain"
)

// SubscriptionUseCase issues scheduled transfers from a payer to the business
// account.
type SubscriptionUseCase struct {
	ledger      LedgerClient
	operator    *domain.OperatorIdentity
	explorer    domain.Explorer
	productName string
	gate        *SubmissionGate
	retrier     Retrier
	idGen       IDGenerator
	publisher   EventPublisher
	metrics     Metrics
	logger      zerolog.Logger
	now         func() time.Time
}

// SubscriptionConfig wires a SubscriptionUseCase.
type SubscriptionConfig struct {
	Ledger      LedgerClient
	Operator    *domain.OperatorIdentity
	Explorer    domain.Explorer
	ProductName string
	Gate        *SubmissionGate
	Retrier     Retrier
	IDGen       IDGenerator
	Publisher   EventPublisher // optional
	Metrics     Metrics        // optional
	Logger      zerolog.Logger
}

// NewSubscriptionUseCase creates a new SubscriptionUseCase.
func NewSubscriptionUseCase(cfg SubscriptionConfig) (*SubscriptionUseCase, error) {
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("%w: ledger client is required", domain.ErrConfiguration)
	}
	if cfg.Operator == nil {
		return nil, fmt.Errorf("%w: operator identity is required", domain.ErrConfiguration)
	}
	if err := cfg.Operator.Validate(); err != nil {
		return nil, err
	}
	if cfg.ProductName == "" {
		return nil, fmt.Errorf("%w: product name is required", domain.ErrConfiguration)
	}
	if len(cfg.ProductName) > MaxProductNameBytes {
		return nil, fmt.Errorf("%w: product name exceeds %d bytes", domain.ErrConfiguration, MaxProductNameBytes)
	}
	if cfg.Retrier == nil {
		return nil, fmt.Errorf("%w: retrier is required", domain.ErrConfiguration)
	}
	if cfg.IDGen == nil {
		return nil, fmt.Errorf("%w: id generator is required", domain.ErrConfiguration)
	}
	if cfg.Gate == nil {
		cfg.Gate = NewSubmissionGate(DefaultMaxInFlight)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	if cfg.Explorer.Network == "" {
		cfg.Explorer.Network = cfg.Operator.Network
	}

	return &SubscriptionUseCase{
		ledger:      cfg.Ledger,
		operator:    cfg.Operator,
		explorer:    cfg.Explorer,
		productName: cfg.ProductName,
		gate:        cfg.Gate,
		retrier:     cfg.Retrier,
		idGen:       cfg.IDGen,
		publisher:   cfg.Publisher,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		now:         time.Now,
	}, nil
}

// CreateSubscriptionInput is the raw inbound request.
type CreateSubscriptionInput struct {
	PayerAccountID string
	// Amount is the numeric literal exactly as received.
	Amount    string
	Frequency string
}

// CreateSubscription validates input, issues the schedule and publishes a
// subscription.scheduled event. Invalid input never reaches the ledger.
func (uc *SubscriptionUseCase) CreateSubscription(ctx context.Context, input CreateSubscriptionInput) (*domain.Subscription, error) {
	req, err := domain.ValidateSubscriptionRequest(
		input.PayerAccountID,
		input.Amount,
		input.Frequency,
		uc.operator.BusinessAccount,
	)
	if err != nil {
		return nil, err
	}

	result, err := uc.IssueSchedule(ctx, req.Payer, req.Amount, domain.SubscriptionMemo(uc.productName, req.Amount))
	if err != nil {
		return nil, err
	}

	sub := &domain.Subscription{
		ID:        uc.idGen.Generate(),
		Payer:     req.Payer,
		Payee:     uc.operator.BusinessAccount,
		Amount:    req.Amount,
		Frequency: req.Frequency,
		Result:    *result,
		CreatedAt: uc.now().UTC(),
	}

	uc.publish(ctx, sub)

	return sub, nil
}

// IssueSchedule creates a ledger schedule transferring amount from payer to
// the business account. Ledger rejections are returned as-is; only transient
// failures are resubmitted, always with the same signed envelope.
func (uc *SubscriptionUseCase) IssueSchedule(ctx context.Context, payer domain.AccountRef, amount domain.Amount, memo string) (result *domain.ScheduleResult, err error) {
	start := time.Now()
	defer func() {
		uc.metrics.ObserveIssuance(domain.CategoryOf(err), time.Since(start))
	}()

	if payer.IsZero() {
		return nil, domain.Invalid(domain.FieldPayerAccountID, "is required")
	}
	if amount.IsZero() {
		return nil, domain.Invalid(domain.FieldAmount, "must be a positive number")
	}
	if payer == uc.operator.BusinessAccount {
		return nil, domain.Invalid(domain.FieldPayerAccountID, domain.ErrSameAccount.Error())
	}

	instr := domain.BuildTransfer(payer, uc.operator.BusinessAccount, amount)

	req, err := domain.NewScheduleRequest(instr, memo)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInternal, err)
	}

	release, err := uc.gate.Acquire(ctx, payer)
	if err != nil {
		return nil, err
	}
	defer release()

	env, err := uc.ledger.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	log := uc.logger.With().
		Str("payer", payer.String()).
		Str("transaction_id", env.TransactionID()).
		Logger()

	// From here on the envelope may reach the ledger; caller cancellation
	// must not abandon it.
	submitCtx := context.WithoutCancel(ctx)

	var receipt *domain.Receipt
	attempts := 0
	err = uc.retrier.Retry(submitCtx, func() error {
		attempts++
		r, submitErr := uc.ledger.Submit(submitCtx, env)
		if submitErr != nil {
			return submitErr
		}
		receipt = r
		return nil
	})
	if attempts > 1 {
		uc.metrics.IncSubmitRetries(attempts - 1)
	}
	if err != nil {
		if domain.IsTransient(err) {
			log.Warn().Err(err).Int("attempts", attempts).
				Msg("schedule submission outcome unknown, schedule may exist on the ledger")
		} else {
			log.Info().Err(err).Msg("schedule submission failed")
		}
		return nil, err
	}

	if receipt == nil || receipt.ScheduleID == "" {
		log.Error().Msg("ledger receipt carried no schedule id")
		return nil, fmt.Errorf("%w: receipt for %s has no schedule id", domain.ErrInternal, env.TransactionID())
	}

	txID := receipt.TransactionID
	if txID == "" {
		txID = env.TransactionID()
	}

	log.Info().
		Str("schedule_id", receipt.ScheduleID).
		Int("attempts", attempts).
		Msg("schedule created")

	return &domain.ScheduleResult{
		ScheduleID:    receipt.ScheduleID,
		TransactionID: txID,
		ExplorerURL:   uc.explorer.ScheduleURL(receipt.ScheduleID),
	}, nil
}

func (uc *SubscriptionUseCase) publish(ctx context.Context, sub *domain.Subscription) {
	if uc.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
	defer cancel()

	if err := uc.publisher.PublishSubscriptionScheduled(ctx, domain.NewSubscriptionScheduledEvent(sub)); err != nil {
		ev := uc.logger.Warn().Err(err).
			Str("subscription_id", sub.ID).
			Str("schedule_id", sub.Result.ScheduleID)
		if errors.Is(err, context.DeadlineExceeded) {
			ev = ev.Bool("timeout", true)
		}
		ev.Msg("failed to publish subscription event")
	}
}
