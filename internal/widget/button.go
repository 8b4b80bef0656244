package widget

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/widgetry/internal/driver"
	"github.com/xkilldash9x/widgetry/internal/locator"
	"github.com/xkilldash9x/widgetry/internal/retry"
	"github.com/xkilldash9x/widgetry/internal/wait"
)

// KindButton is the Button kind key.
const KindButton = "button"

// Button is a simple clickable control. An optional disabled-indicator
// locator short-circuits clicks with a StateError when it resolves.
//
// Options:
//
//	<locator>   path to the element to click on
//	disabled    xpath checked to decide whether the button is disabled
type Button struct {
	Element
	disabled locator.Locator
}

// NewButton constructs a Button from its configuration mapping.
func NewButton(opts Options) (*Button, error) {
	o := newOptions(KindButton, opts)
	loc, err := o.takeLocator()
	if err != nil {
		return nil, err
	}
	btn := &Button{Element: newElement(KindButton, loc)}
	if disabled, ok := o.takeXPath("disabled"); ok {
		btn.disabled = disabled
	}
	if err := o.finish(); err != nil {
		return nil, err
	}
	return btn, nil
}

// ClickOptions tune a single click call.
type ClickOptions struct {
	// RetryAttempts bounds click attempts; zero means the default of 2.
	RetryAttempts int
	// NoForceFallback disables the last-resort force-click, letting the
	// final failure propagate instead.
	NoForceFallback bool
}

// Click waits for the button to become visible, scrolls it into view, and
// clicks, retrying transient failures. If the configured disabled indicator
// currently resolves, no click is attempted and a StateError is returned.
// After the retry budget is spent the click is force-dispatched unless the
// caller disabled that fallback.
func (w *Button) Click(ctx context.Context, b *Binding) error {
	return w.ClickWith(ctx, b, ClickOptions{})
}

// ClickWith is Click with explicit per-call options.
func (w *Button) ClickWith(ctx context.Context, b *Binding, opts ClickOptions) error {
	log := b.widgetLog(w.Name())
	if !w.disabled.IsZero() {
		if _, err := b.Driver.LocateOne(ctx, w.disabled); err == nil {
			serr := stateErrorf("could not click button: button is disabled")
			log.Error("Button is disabled", zap.Error(serr))
			return serr
		} else if !errors.Is(err, driver.ErrNotFound) {
			return err
		}
	}
	log.Debug("Clicking button")

	attempts := opts.RetryAttempts
	if attempts <= 0 {
		attempts = 2
	}
	policy := b.retryPolicy(attempts, log)
	// The whole locate-and-click sequence is the retried action; timeouts
	// waiting for visibility count as retryable here because a lagging UI is
	// exactly what the retry budget is for.
	policy.Retryable = func(err error) bool {
		return driver.IsTransient(err) || wait.IsTimeout(err)
	}
	op := func(ctx context.Context) error {
		h, err := w.WaitUntilVisible(ctx, b, 0)
		if err != nil {
			return err
		}
		if err := b.Driver.ScrollIntoView(ctx, h); err != nil {
			return err
		}
		return h.Click(ctx)
	}
	if opts.NoForceFallback {
		return policy.Do(ctx, op)
	}
	return policy.DoWithFallback(ctx, op, func(ctx context.Context) error {
		log.Warn("Directly force-clicking element as last resort")
		return w.ForceClick(ctx, b)
	})
}

// NavigateOptions tune a Navigate call. Check and CheckSpinner are mutually
// exclusive; CheckSpinner defaults to true when neither is set explicitly.
type NavigateOptions struct {
	// Check names a follow-up widget that must report true after the click.
	Check string
	// SkipSpinner turns off the generic loading-indicator wait.
	SkipSpinner bool
	// Sleep adds a fixed settle delay after all checks pass.
	Sleep time.Duration
}

// navigateSettle gives the page a beat to start reacting to the click
// before any follow-up check runs.
const navigateSettle = 500 * time.Millisecond

// Navigate clicks the button and then waits for the page to move on: either
// a named follow-up element (Check) or the binding's generic loading
// indicator clearing. Specifying a Check while the spinner wait is enabled
// is a caller error.
func (w *Button) Navigate(ctx context.Context, b *Binding, opts NavigateOptions) error {
	log := b.widgetLog(w.Name())
	if opts.Check != "" && !opts.SkipSpinner {
		return valueErrorf("you must specify at most 1 check")
	}
	log.Debug("Navigating off element")
	h, err := w.WaitUntilVisible(ctx, b, 0)
	if err == nil {
		err = h.Click(ctx)
	}
	if err != nil {
		log.Error("Encountered error attempting to click navigation element",
			zap.String("check", opts.Check), zap.Error(err))
		return err
	}
	if err := retry.Sleep(ctx, navigateSettle); err != nil {
		return err
	}
	if opts.Check != "" {
		if err := w.runNavigateCheck(ctx, b, opts.Check); err != nil {
			return err
		}
		if err := retry.Sleep(ctx, navigateSettle); err != nil {
			return err
		}
	} else if !opts.SkipSpinner && !b.Spinner.IsZero() {
		if err := b.engine().UntilTrue(ctx, wait.IsInvisible(b.Spinner), 0); err != nil {
			log.Error("Timed out waiting for loading indicator to clear", zap.Error(err))
			return err
		}
	}
	return retry.Sleep(ctx, opts.Sleep)
}

// runNavigateCheck resolves the named follow-up element through the binding
// and requires it to report visible within the timeout budget.
func (w *Button) runNavigateCheck(ctx context.Context, b *Binding, check string) error {
	log := b.widgetLog(w.Name())
	if b.Lookup == nil {
		return valueErrorf("binding has no widget lookup; cannot run navigation check %q", check)
	}
	target, err := b.Lookup(check)
	if err != nil {
		return err
	}
	pos, ok := target.(*PositiveElement)
	if !ok {
		return valueErrorf("navigation check %q must name a positive element, got %q", check, target.Kind())
	}
	appeared, err := pos.Get(ctx, b)
	if err != nil {
		return err
	}
	if !appeared {
		terr := &wait.TimeoutError{Condition: "navigation check " + check, Timeout: b.timeout()}
		log.Error("Timeout navigating", zap.String("check", check), zap.Error(terr))
		return terr
	}
	return nil
}
