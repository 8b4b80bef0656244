// Package retry re-attempts side-effecting actions that failed transiently.
// It is distinct from the wait engine: the engine polls a condition, a
// Policy re-runs an action that already fired against the page.
package retry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/widgetry/internal/driver"
)

// Policy bounds retries of a single action. Attempts counts total tries,
// not re-tries; Attempts=3 means at most three executions.
type Policy struct {
	Attempts int
	Delay    time.Duration
	// Retryable classifies failures. Nil means driver.IsTransient.
	Retryable func(error) bool
	Log       *zap.Logger
}

// New builds a policy with the given budget and the default transient
// classification.
func New(attempts int, delay time.Duration, log *zap.Logger) Policy {
	return Policy{Attempts: attempts, Delay: delay, Log: log}
}

func (p Policy) retryable(err error) bool {
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return driver.IsTransient(err)
}

func (p Policy) logger() *zap.Logger {
	if p.Log != nil {
		return p.Log
	}
	return zap.NewNop()
}

// Do runs op, re-attempting after Delay on retryable failures until the
// attempt budget is spent. Non-retryable failures propagate immediately;
// exhaustion re-raises the last failure unchanged.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !p.retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}
		p.logger().Warn("Transient failure, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", p.Delay),
			zap.Error(lastErr))
		if err := Sleep(ctx, p.Delay); err != nil {
			return err
		}
	}
	return lastErr
}

// DoWithFallback is Do, except a declared fallback runs after the budget is
// spent; its result replaces the exhausted failure.
func (p Policy) DoWithFallback(ctx context.Context, op, fallback func(ctx context.Context) error) error {
	err := p.Do(ctx, op)
	if err == nil || !p.retryable(err) {
		return err
	}
	p.logger().Warn("Retries exhausted, running fallback", zap.Error(err))
	return fallback(ctx)
}

// Sleep is a context-aware delay. A non-positive duration returns
// immediately.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
