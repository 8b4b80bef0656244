package widget

import (
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/widgetry/internal/driver"
	"github.com/xkilldash9x/widgetry/internal/locator"
	"github.com/xkilldash9x/widgetry/internal/retry"
	"github.com/xkilldash9x/widgetry/internal/wait"
)

// Default budgets shared across the widget kinds.
const (
	DefaultTimeout    = 10 * time.Second
	DefaultRetryDelay = 2 * time.Second
)

// Binding ties descriptors to one page context for the duration of a call.
// Descriptors themselves are immutable and shared; every operation receives
// the binding explicitly, so one descriptor can serve many page contexts
// without aliasing state between them.
//
// All widget operations against one binding are synchronous and assumed to
// be issued by a single caller at a time; the driver session is the shared
// resource they serialize through.
type Binding struct {
	// Context names the page context for diagnostics.
	Context string
	Driver  driver.Driver
	// Timeout is the default wait budget for element conditions.
	Timeout time.Duration
	// Interval overrides the polling step; zero means the engine default.
	Interval time.Duration
	// RetryDelay overrides the delay between action retries.
	RetryDelay time.Duration
	Log        *zap.Logger

	// Spinner is the page's generic loading indicator, consulted by
	// Button.Navigate when no explicit check is named.
	Spinner locator.Locator
	// Lookup resolves a named follow-up widget for Button.Navigate checks.
	Lookup func(name string) (Widget, error)
}

func (b *Binding) timeout() time.Duration {
	if b.Timeout > 0 {
		return b.Timeout
	}
	return DefaultTimeout
}

func (b *Binding) retryDelay() time.Duration {
	if b.RetryDelay > 0 {
		return b.RetryDelay
	}
	return DefaultRetryDelay
}

func (b *Binding) logger() *zap.Logger {
	if b.Log != nil {
		return b.Log
	}
	return zap.NewNop()
}

// widgetLog names a logger with the widget and context identity, so every
// fatal failure is diagnosable without a stack trace.
func (b *Binding) widgetLog(name string) *zap.Logger {
	return b.logger().With(
		zap.String("context", b.Context),
		zap.String("widget", name),
	)
}

func (b *Binding) engine() *wait.Engine {
	return wait.NewEngine(b.Driver, b.timeout(), b.Interval)
}

func (b *Binding) retryPolicy(attempts int, log *zap.Logger) retry.Policy {
	return retry.New(attempts, b.retryDelay(), log)
}
