package widget

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/widgetry/internal/driver"
	"github.com/xkilldash9x/widgetry/internal/locator"
	"github.com/xkilldash9x/widgetry/internal/retry"
	"github.com/xkilldash9x/widgetry/internal/wait"
)

// KindComboBox is the ComboBox kind key.
const KindComboBox = "combobox"

const (
	// comboFillAttempts bounds full type-and-confirm cycles per value.
	comboFillAttempts = 3
	// comboClickAttempts bounds clicks of the top autocomplete option.
	comboClickAttempts = 3
	// comboFallbackBackspaces clears a field with no multiselect counter.
	comboFallbackBackspaces = 10
	// comboRetryDelay paces the bounded retries above.
	comboRetryDelay = 2 * time.Second
)

// loadingPattern recognizes autocomplete placeholder rows that have not
// resolved yet.
var loadingPattern = regexp.MustCompile(`[Ll]oading\.\.\.`)

// ComboBox combines a textbox with a transient autocomplete list: type a
// value, wait for the list to populate, confirm the top option.
//
// Options:
//
//	<locator>             element text is typed into
//	lookup_ctx_xpath      container scanned for autocomplete options
//	multiselect_counter   xpath listing existing selections of a
//	                      multi-selection combobox
//	click_escape_xpath    element clicked to dismiss the pulldown when the
//	                      escape key does not work
//	ignore_selections     type only; never confirm an option
//	escape_delay          seconds to wait before dismissing the pulldown;
//	                      0 dismisses immediately, negative disables
//	populate_delay        seconds to wait before inspecting the pulldown
//	                      (default 2)
//	hidden                whether the textbox is hidden
type ComboBox struct {
	Element
	lookupCtx        locator.Locator
	multiCounter     locator.Locator
	clickEscape      locator.Locator
	ignoreSelections bool
	escapeDelay      time.Duration
	populateDelay    time.Duration
	hidden           bool
}

// NewComboBox constructs a ComboBox from its configuration mapping.
func NewComboBox(opts Options) (*ComboBox, error) {
	o := newOptions(KindComboBox, opts)
	loc, err := o.takeLocator()
	if err != nil {
		return nil, err
	}
	cb := &ComboBox{Element: newElement(KindComboBox, loc)}
	cb.lookupCtx, _ = o.takeXPath("lookup_ctx_xpath")
	cb.multiCounter, _ = o.takeXPath("multiselect_counter")
	cb.clickEscape, _ = o.takeXPath("click_escape_xpath")
	if cb.ignoreSelections, err = o.takeBool("ignore_selections"); err != nil {
		return nil, err
	}
	if cb.escapeDelay, err = o.takeSeconds("escape_delay", 0); err != nil {
		return nil, err
	}
	if cb.populateDelay, err = o.takeSeconds("populate_delay", 2*time.Second); err != nil {
		return nil, err
	}
	if cb.hidden, err = o.takeBool("hidden"); err != nil {
		return nil, err
	}
	if err := o.finish(); err != nil {
		return nil, err
	}
	return cb, nil
}

func (w *ComboBox) waitInteractable(ctx context.Context, b *Binding) (driver.Handle, error) {
	if w.hidden {
		return w.WaitUntilPresent(ctx, b, 0)
	}
	return w.WaitUntilClickable(ctx, b, 0)
}

// Get waits for the combobox and returns its current value.
func (w *ComboBox) Get(ctx context.Context, b *Binding) (string, error) {
	if _, err := w.waitInteractable(ctx, b); err != nil {
		return "", err
	}
	return w.Value(ctx, b)
}

// Set applies each value in turn: clear the field, type the value, wait for
// the autocomplete list, confirm the top option, and dismiss any lingering
// pulldown. With no lookup context configured, the raw text is submitted
// with a warning (an accepted degraded mode).
func (w *ComboBox) Set(ctx context.Context, b *Binding, values ...string) error {
	log := b.widgetLog(w.Name())
	box, err := w.waitInteractable(ctx, b)
	if err != nil {
		return err
	}
	if !w.hidden {
		if err := box.Clear(ctx); err != nil {
			return err
		}
	}
	if err := w.clearSelections(ctx, b, box); err != nil {
		return err
	}
	for _, value := range values {
		if err := w.fill(ctx, b, box, value, log); err != nil {
			return err
		}
	}
	return nil
}

// clearSelections backspaces away existing multi-select entries: one per
// counted selection when a counter locator is configured, else a fixed
// oversized margin.
func (w *ComboBox) clearSelections(ctx context.Context, b *Binding, box driver.Handle) error {
	count := comboFallbackBackspaces
	if !w.multiCounter.IsZero() {
		existing, err := b.Driver.LocateMany(ctx, w.multiCounter)
		if err != nil {
			return err
		}
		count = len(existing)
	}
	for i := 0; i < count; i++ {
		if err := box.SendKey(ctx, driver.KeyBackspace); err != nil {
			return err
		}
	}
	return nil
}

// fill runs the type-and-confirm protocol for one value, retrying the whole
// cycle when the autocomplete list never appears.
func (w *ComboBox) fill(ctx context.Context, b *Binding, box driver.Handle, value string, log *zap.Logger) error {
	log.Debug("Setting combobox value", zap.String("value", value))
	for attempt := comboFillAttempts; attempt > 0; attempt-- {
		if err := w.typeValue(ctx, b, box, value, log); err != nil {
			return err
		}
		if w.lookupCtx.IsZero() {
			log.Warn("Combobox defined without lookup context; submitting raw text (try a textbox instead?)")
			return box.SendKey(ctx, driver.KeyEnter)
		}
		if err := retry.Sleep(ctx, w.populateDelay); err != nil {
			return err
		}
		options, err := b.engine().UntilMany(ctx, wait.AnyVisible(w.lookupCtx), 0)
		if err != nil {
			if !wait.IsTimeout(err) {
				return err
			}
			log.Error("Timeout waiting for combobox context to appear",
				zap.String("value", value), zap.Int("attempts_left", attempt-1))
			if attempt > 1 {
				if serr := retry.Sleep(ctx, comboRetryDelay); serr != nil {
					return serr
				}
				continue
			}
			return err
		}
		return w.confirm(ctx, b, box, options, value, log)
	}
	return nil
}

// typeValue clears and types into the field, falling back to composite
// input when the element refuses direct keys.
func (w *ComboBox) typeValue(ctx context.Context, b *Binding, box driver.Handle, value string, log *zap.Logger) error {
	err := box.Clear(ctx)
	if err == nil {
		err = box.SendKeys(ctx, value)
	}
	if err == nil {
		return nil
	}
	if !errors.Is(err, driver.ErrNotInteractable) {
		return err
	}
	log.Warn("Encountered error while typing combobox value, retrying with composite input",
		zap.String("value", value), zap.Error(err))
	acts := b.Driver.Actions()
	if err := acts.MoveTo(ctx, box); err != nil {
		return err
	}
	if err := box.Click(ctx); err != nil {
		return err
	}
	if err := retry.Sleep(ctx, time.Second); err != nil {
		return err
	}
	if err := acts.SendKey(ctx, driver.KeyEnd); err != nil {
		return err
	}
	return acts.SendKeys(ctx, value)
}

// confirm selects the top autocomplete option, falling back to re-typing
// its text when structural lookup keeps failing. The pulldown is always
// dismissed afterwards, on success or failure.
func (w *ComboBox) confirm(ctx context.Context, b *Binding, box driver.Handle, options []driver.Handle, value string, log *zap.Logger) (err error) {
	defer func() {
		if eerr := w.escape(ctx, b, box, options, log); eerr != nil && err == nil {
			err = eerr
		}
	}()

	if w.ignoreSelections {
		log.Debug("Ignoring combobox selections")
		return box.SendKey(ctx, driver.KeyEnter)
	}

	topChild, err := w.lookupCtx.FirstChild()
	if err != nil {
		return err
	}
	for attempt := comboClickAttempts; attempt > 0; attempt-- {
		top, werr := b.engine().Until(ctx, wait.Clickable(topChild), 0)
		if werr != nil {
			if !wait.IsTimeout(werr) && !driver.IsTransient(werr) {
				return werr
			}
			log.Warn("Failed to resolve combobox top option", zap.Error(werr))
			continue
		}
		seen, terr := top.Text(ctx)
		if terr != nil {
			if driver.IsTransient(terr) {
				log.Warn("Failed to read combobox top option", zap.Error(terr))
				continue
			}
			return terr
		}
		if loadingPattern.MatchString(seen) {
			log.Warn("Waiting on combobox loader", zap.String("seen", seen))
			if attempt == 1 {
				// A list that never resolves past its placeholder is a
				// timeout, not a structural failure; do not fall through to
				// the type-in path and submit placeholder text.
				return &wait.TimeoutError{
					Condition: "combobox option list to finish loading",
					Timeout:   time.Duration(comboClickAttempts) * comboRetryDelay,
				}
			}
			if serr := retry.Sleep(ctx, comboRetryDelay); serr != nil {
				return serr
			}
			continue
		}
		if seen != value {
			log.Warn("Top option is not an exact match",
				zap.String("expected", value), zap.String("got", seen))
		}
		log.Debug("Selecting combobox option", zap.String("option", seen))
		if cerr := top.Click(ctx); cerr != nil {
			if driver.IsTransient(cerr) {
				log.Warn("Failed to click combobox top option", zap.Error(cerr))
				continue
			}
			return cerr
		}
		return nil
	}

	// Structural lookup spent its budget; re-type the captured option text
	// and submit directly.
	log.Warn("Failed to click top element in combobox context, typing instead")
	topText, err := options[0].Text(ctx)
	if err != nil {
		return err
	}
	if line := strings.SplitN(topText, "\n", 2); len(line) > 0 {
		topText = line[0]
	}
	if err := box.Clear(ctx); err != nil {
		return err
	}
	if err := box.SendKeys(ctx, topText); err != nil {
		return err
	}
	return box.SendKey(ctx, driver.KeyEnter)
}

// escape dismisses a pulldown that is still visible: an explicit escape
// click when configured, else an escape keypress. A negative escape delay
// disables dismissal entirely; zero dismisses immediately.
func (w *ComboBox) escape(ctx context.Context, b *Binding, box driver.Handle, options []driver.Handle, log *zap.Logger) error {
	if w.escapeDelay < 0 {
		return nil
	}
	if w.escapeDelay > 0 {
		log.Debug("Waiting before escaping combobox", zap.Duration("delay", w.escapeDelay))
		if err := retry.Sleep(ctx, w.escapeDelay); err != nil {
			return err
		}
	}
	if len(options) == 0 {
		return nil
	}
	shown, derr := options[0].Displayed(ctx)
	if derr != nil {
		// A vanished pulldown needs no escaping.
		return nil
	}
	enabled, eerr := options[0].Enabled(ctx)
	if eerr != nil {
		return nil
	}
	if !shown && !enabled {
		return nil
	}
	if !w.clickEscape.IsZero() {
		log.Debug("Clicking out of combobox")
		h, err := b.engine().Until(ctx, wait.Clickable(w.clickEscape), 0)
		if err != nil {
			return nil
		}
		if err := h.Click(ctx); err != nil && !driver.IsTransient(err) && !errors.Is(err, driver.ErrNotFound) {
			return err
		}
		return nil
	}
	log.Debug("Escaping out of combobox")
	if err := box.SendKey(ctx, driver.KeyEscape); err != nil && !driver.IsTransient(err) && !errors.Is(err, driver.ErrNotFound) {
		return err
	}
	return nil
}
