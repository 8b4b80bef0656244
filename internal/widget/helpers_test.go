package widget_test

import (
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/widgetry/internal/driver/drivertest"
	"github.com/xkilldash9x/widgetry/internal/widget"
)

// newBinding builds a binding with budgets small enough for fast polling
// against the fake driver.
func newBinding(t *testing.T, f *drivertest.Fake) *widget.Binding {
	t.Helper()
	return &widget.Binding{
		Context:    "test-page",
		Driver:     f,
		Timeout:    200 * time.Millisecond,
		Interval:   10 * time.Millisecond,
		RetryDelay: time.Millisecond,
		Log:        zaptest.NewLogger(t),
	}
}
