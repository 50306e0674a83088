// Package booking wraps the single-seat allocation transaction with the
// retry/contention policy: bounded wait-and-retry on transient lock
// contention, under one overall timeout per purchase attempt.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/tigertix/event-ticketing/internal/model"
	"github.com/tigertix/event-ticketing/internal/repository"
)

// Store is the allocation backend.  repository.TicketRepo is the
// production implementation; tests substitute in-memory fakes.
type Store interface {
	// PurchaseSeat atomically claims one seat or fails with one of the
	// repository sentinels (ErrEventNotFound, ErrSoldOut, ErrBusy) or a
	// storage error.
	PurchaseSeat(ctx context.Context, eventID, buyerID uint64) (model.Receipt, error)
}

// Policy holds the retry/contention tunables.  MaxAttempts counts the
// total number of allocation attempts (not just retries).  RetryWait is
// the fixed pause between attempts after an ErrBusy outcome.  Timeout
// bounds the whole call including waits; it is mandatory so contention
// can never translate into unbounded request latency.
type Policy struct {
	MaxAttempts int
	RetryWait   time.Duration
	Timeout     time.Duration
}

// DefaultPolicy matches the config defaults: three attempts, 100ms
// apart, all within five seconds.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, RetryWait: 100 * time.Millisecond, Timeout: 5 * time.Second}
}

// Service executes purchases against a Store under a Policy.
type Service struct {
	store  Store
	policy Policy
}

// NewService constructs a Service.  Zero or negative policy fields fall
// back to the defaults so a misconfigured environment cannot disable
// the wait bound.
func NewService(store Store, p Policy) *Service {
	if store == nil {
		panic("nil store passed to booking.NewService")
	}
	def := DefaultPolicy()
	if p.MaxAttempts < 1 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.RetryWait <= 0 {
		p.RetryWait = def.RetryWait
	}
	if p.Timeout <= 0 {
		p.Timeout = def.Timeout
	}
	return &Service{store: store, policy: p}
}

// PurchaseSeat claims exactly one seat for buyerID.  ErrBusy outcomes
// are retried up to the attempt budget with a fixed wait in between;
// every other outcome — success, ErrEventNotFound, ErrSoldOut, storage
// failure — is returned as-is on the first occurrence.  A busy outcome
// is never reported as sold out: the caller must be able to tell "try
// again" apart from "nothing left".
func (s *Service) PurchaseSeat(ctx context.Context, eventID, buyerID uint64) (model.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, s.policy.Timeout)
	defer cancel()

	var rec model.Receipt
	var err error
	for attempt := 1; ; attempt++ {
		rec, err = s.store.PurchaseSeat(ctx, eventID, buyerID)
		if err == nil || !errors.Is(err, repository.ErrBusy) {
			return rec, err
		}
		if attempt >= s.policy.MaxAttempts {
			return rec, err
		}
		select {
		case <-ctx.Done():
			return rec, ctx.Err()
		case <-time.After(s.policy.RetryWait):
		}
	}
}

// PurchaseMany performs quantity sequential single-seat claims.  It
// returns the receipts collected so far together with the error that
// stopped the sequence, so callers can report partial fulfillment: a
// request for three seats may legitimately get two receipts and an
// ErrSoldOut for the third.
func (s *Service) PurchaseMany(ctx context.Context, eventID, buyerID uint64, quantity int) ([]model.Receipt, error) {
	receipts := make([]model.Receipt, 0, quantity)
	for i := 0; i < quantity; i++ {
		rec, err := s.PurchaseSeat(ctx, eventID, buyerID)
		if err != nil {
			return receipts, err
		}
		receipts = append(receipts, rec)
	}
	return receipts, nil
}
