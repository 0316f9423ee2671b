// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package txwaiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sessionforge/starkdeploy/pkg/starknet"
	"go.uber.org/zap"
)

// State is the terminal-or-pending state of an awaited transaction.
type State int

const (
	Pending State = iota
	Confirmed
	Failed
	TimedOut
)

func (s State) String() string {
	switch s {
	case Confirmed:
		return "Confirmed"
	case Failed:
		return "Failed"
	case TimedOut:
		return "TimedOut"
	default:
		return "Pending"
	}
}

// ErrInterrupted is returned when the surrounding context is cancelled
// while a transaction is still being polled.
var ErrInterrupted = errors.New("transaction wait interrupted")

// StatusChecker is the single gateway capability the waiter needs.
// *starknet.SncastGateway satisfies it.
type StatusChecker interface {
	TransactionStatus(ctx context.Context, txHash string) (starknet.TxStatus, error)
}

// Waiter converts an asynchronous transaction submission into a
// synchronous result by polling its status. It is read-only: the only
// side effects are the status queries themselves.
type Waiter struct {
	checker      StatusChecker
	maxAttempts  int
	pollInterval time.Duration
	log          *zap.Logger
	// sleep is swapped out in tests
	sleep func(ctx context.Context, d time.Duration) error
}

func New(checker StatusChecker, maxAttempts int, pollInterval time.Duration, log *zap.Logger) (*Waiter, error) {
	if maxAttempts < 1 {
		return nil, fmt.Errorf("maxAttempts must be at least 1, got %d", maxAttempts)
	}
	if pollInterval <= 0 {
		return nil, fmt.Errorf("pollInterval must be positive, got %s", pollInterval)
	}
	return &Waiter{
		checker:      checker,
		maxAttempts:  maxAttempts,
		pollInterval: pollInterval,
		log:          log,
		sleep:        sleepContext,
	}, nil
}

// MaxAttempts returns the configured poll budget.
func (w *Waiter) MaxAttempts() int {
	return w.maxAttempts
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// AwaitConfirmation polls the transaction status until it reaches a
// terminal state or the attempt budget is exhausted. A failing status
// query counts as "still pending" for that attempt so a single flaky
// query does not fail the whole wait. There is no sleep after the last
// attempt. The returned error is non-nil only on context cancellation.
func (w *Waiter) AwaitConfirmation(ctx context.Context, txHash string) (State, error) {
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		status, err := w.checker.TransactionStatus(ctx, txHash)
		if err != nil {
			if ctx.Err() != nil {
				return Pending, fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
			}
			// transient query failure, keep polling
			w.log.Warn("transaction status query failed",
				zap.String("tx", txHash),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		} else {
			switch status {
			case starknet.TxStatusSucceeded:
				return Confirmed, nil
			case starknet.TxStatusRejected:
				return Failed, nil
			}
		}
		if attempt < w.maxAttempts {
			if err := w.sleep(ctx, w.pollInterval); err != nil {
				return Pending, fmt.Errorf("%w: %w", ErrInterrupted, err)
			}
		}
	}
	return TimedOut, nil
}
