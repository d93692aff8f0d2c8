package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/iho/axiompay/internal/domain"
)

// ErrSubmissionAborted reports that the caller gave up before a submission
// slot was granted. Nothing reached the ledger.
var ErrSubmissionAborted = errors.New("submission aborted while waiting for a slot")

// SubmissionGate bounds concurrent ledger submissions and serializes
// submissions for the same payer account.
type SubmissionGate struct {
	slots *semaphore.Weighted

	mu     sync.Mutex
	payers map[domain.AccountRef]*payerSlot
}

type payerSlot struct {
	ch   chan struct{}
	refs int
}

// NewSubmissionGate creates a gate admitting at most maxInFlight submissions.
func NewSubmissionGate(maxInFlight int) *SubmissionGate {
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlight
	}

	return &SubmissionGate{
		slots:  semaphore.NewWeighted(int64(maxInFlight)),
		payers: make(map[domain.AccountRef]*payerSlot),
	}
}

// Acquire blocks until payer has no other submission in flight and a global
// slot is free. The returned release func must be called exactly once; extra
// calls are ignored. Only the wait honours ctx.
func (g *SubmissionGate) Acquire(ctx context.Context, payer domain.AccountRef) (func(), error) {
	slot := g.ref(payer)

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		g.unref(payer, slot)
		return nil, aborted("payer", ctx.Err())
	}

	if err := g.slots.Acquire(ctx, 1); err != nil {
		<-slot.ch
		g.unref(payer, slot)
		return nil, aborted("submission", err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.slots.Release(1)
			<-slot.ch
			g.unref(payer, slot)
		})
	}, nil
}

func aborted(slot string, cause error) error {
	return fmt.Errorf("%w: %w: waiting for %s slot: %w", domain.ErrInternal, ErrSubmissionAborted, slot, cause)
}

func (g *SubmissionGate) ref(payer domain.AccountRef) *payerSlot {
	g.mu.Lock()
	defer g.mu.Unlock()

	slot, ok := g.payers[payer]
	if !ok {
		slot = &payerSlot{ch: make(chan struct{}, 1)}
		g.payers[payer] = slot
	}
	slot.refs++

	return slot
}

func (g *SubmissionGate) unref(payer domain.AccountRef, slot *payerSlot) {
	g.mu.Lock()
	defer g.mu.Unlock()

	slot.refs--
	if slot.refs == 0 {
		delete(g.payers, payer)
	}
}

// pending reports how many payers currently hold or wait for a slot.
func (g *SubmissionGate) pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.payers)
}
