// Package wait implements the polling engine every widget protocol is built
// on: evaluate a condition against the driver at a fixed short interval until
// it yields a result or the timeout budget elapses.
package wait

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/xkilldash9x/widgetry/internal/driver"
)

// DefaultInterval is the polling step. Conditions are re-evaluated every
// step; results are never cached because the target mutates out of band.
const DefaultInterval = 250 * time.Millisecond

// TimeoutError reports that a condition did not become true within budget.
type TimeoutError struct {
	Condition string
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for %s", e.Timeout, e.Condition)
}

// IsTimeout reports whether err is (or wraps) a wait timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// Engine polls conditions against a single driver. The zero interval falls
// back to DefaultInterval.
type Engine struct {
	drv      driver.Driver
	interval time.Duration
	timeout  time.Duration
}

// NewEngine builds an engine with a default timeout applied when a call
// passes a non-positive one.
func NewEngine(drv driver.Driver, timeout, interval time.Duration) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Engine{drv: drv, interval: interval, timeout: timeout}
}

// Driver exposes the engine's driver for condition construction.
func (e *Engine) Driver() driver.Driver { return e.drv }

// Timeout returns the engine's default timeout.
func (e *Engine) Timeout() time.Duration { return e.timeout }

func (e *Engine) budget(timeout time.Duration) time.Duration {
	if timeout > 0 {
		return timeout
	}
	return e.timeout
}

// poll runs eval once per interval until it reports done, the budget
// elapses, or ctx is cancelled. The rate limiter paces the first token
// immediately, so the condition is always evaluated at least once.
func (e *Engine) poll(ctx context.Context, desc string, timeout time.Duration, eval func(context.Context) bool) error {
	budget := e.budget(timeout)
	deadline := time.Now().Add(budget)
	limiter := rate.NewLimiter(rate.Every(e.interval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if eval(ctx) {
			return nil
		}
		if time.Now().After(deadline) {
			return &TimeoutError{Condition: desc, Timeout: budget}
		}
	}
}

// Until polls a single-element condition until it yields a handle.
func (e *Engine) Until(ctx context.Context, cond Condition, timeout time.Duration) (driver.Handle, error) {
	var got driver.Handle
	err := e.poll(ctx, cond.Desc, timeout, func(ctx context.Context) bool {
		h, ok := cond.Eval(ctx, e.drv)
		if ok {
			got = h
		}
		return ok
	})
	if err != nil {
		return nil, err
	}
	return got, nil
}

// UntilMany polls a multi-element condition until it yields handles.
func (e *Engine) UntilMany(ctx context.Context, cond GroupCondition, timeout time.Duration) ([]driver.Handle, error) {
	var got []driver.Handle
	err := e.poll(ctx, cond.Desc, timeout, func(ctx context.Context) bool {
		hs, ok := cond.Eval(ctx, e.drv)
		if ok {
			got = hs
		}
		return ok
	})
	if err != nil {
		return nil, err
	}
	return got, nil
}

// UntilTrue polls a boolean predicate until it holds.
func (e *Engine) UntilTrue(ctx context.Context, cond BoolCondition, timeout time.Duration) error {
	return e.poll(ctx, cond.Desc, timeout, func(ctx context.Context) bool {
		return cond.Eval(ctx, e.drv)
	})
}

// UntilNot polls the logical negation of a boolean predicate; it is the
// disappearance detector.
func (e *Engine) UntilNot(ctx context.Context, cond BoolCondition, timeout time.Duration) error {
	negated := BoolCondition{
		Desc: "not " + cond.Desc,
		Eval: func(ctx context.Context, d driver.Driver) bool {
			return !cond.Eval(ctx, d)
		},
	}
	return e.UntilTrue(ctx, negated, timeout)
}
