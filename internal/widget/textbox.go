package widget

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/widgetry/internal/driver"
	"github.com/xkilldash9x/widgetry/internal/retry"
	"github.com/xkilldash9x/widgetry/internal/wait"
)

// KindTextBox is the TextBox kind key.
const KindTextBox = "textbox"

// TextBox reads and assigns a plain text field. Hidden textboxes (file
// inputs and similar) wait for presence instead of clickability.
//
// Options:
//
//	<locator>   path to the textbox element
//	hidden      whether this textbox is hidden
type TextBox struct {
	Element
	hidden bool
}

// NewTextBox constructs a TextBox from its configuration mapping.
func NewTextBox(opts Options) (*TextBox, error) {
	o := newOptions(KindTextBox, opts)
	loc, err := o.takeLocator()
	if err != nil {
		return nil, err
	}
	tb := &TextBox{Element: newElement(KindTextBox, loc)}
	if tb.hidden, err = o.takeBool("hidden"); err != nil {
		return nil, err
	}
	if err := o.finish(); err != nil {
		return nil, err
	}
	return tb, nil
}

// waitInteractable waits for the textbox with the semantics the hidden flag
// selects.
func (w *TextBox) waitInteractable(ctx context.Context, b *Binding) (driver.Handle, error) {
	if w.hidden {
		return w.WaitUntilPresent(ctx, b, 0)
	}
	return w.WaitUntilClickable(ctx, b, 0)
}

// Get waits for the textbox and returns its current value.
func (w *TextBox) Get(ctx context.Context, b *Binding) (string, error) {
	if _, err := w.waitInteractable(ctx, b); err != nil {
		return "", err
	}
	return w.Value(ctx, b)
}

// Set replaces the textbox contents: wait until interactable, clear the
// existing text with an end-then-backspace-per-character sequence (fields
// backed by a value attribute reject a native clear), then type the new
// value. A transient interaction failure falls back to the composite input
// path performing the same sequence.
func (w *TextBox) Set(ctx context.Context, b *Binding, value string) error {
	log := b.widgetLog(w.Name())
	err := w.setDirect(ctx, b, value, log)
	if err == nil {
		return nil
	}
	if !errors.Is(err, driver.ErrNotInteractable) && !wait.IsTimeout(err) {
		return err
	}
	log.Warn("Encountered error while setting textbox, retrying with composite input", zap.Error(err))
	return w.setViaActions(ctx, b, value, log)
}

func (w *TextBox) setDirect(ctx context.Context, b *Binding, value string, log *zap.Logger) error {
	h, err := w.waitInteractable(ctx, b)
	if err != nil {
		return err
	}
	existing, err := w.Value(ctx, b)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Debug("Clearing existing value", zap.String("existing", existing))
		if err := clearByBackspace(ctx, h, len(existing)); err != nil {
			// Fall back to a native clear for fields that tolerate it.
			if cerr := h.Clear(ctx); cerr != nil {
				return err
			}
		}
	}
	if len(value) > 0 {
		if err := h.SendKeys(ctx, value); err != nil {
			return err
		}
	}
	log.Debug("Set textbox value", zap.String("value", value))
	return nil
}

func (w *TextBox) setViaActions(ctx context.Context, b *Binding, value string, log *zap.Logger) error {
	h, err := w.WaitUntilPresent(ctx, b, 0)
	if err != nil {
		return err
	}
	existing, err := w.Value(ctx, b)
	if err != nil {
		return err
	}
	acts := b.Driver.Actions()
	if len(existing) > 0 {
		log.Debug("Clearing existing value", zap.String("existing", existing))
		if err := acts.MoveTo(ctx, h); err != nil {
			return err
		}
		if err := h.Click(ctx); err != nil {
			return err
		}
		if err := retry.Sleep(ctx, time.Second); err != nil {
			return err
		}
		if err := acts.SendKey(ctx, driver.KeyEnd); err != nil {
			return err
		}
		for range existing {
			if err := acts.SendKey(ctx, driver.KeyBackspace); err != nil {
				return err
			}
		}
	}
	if err := acts.MoveTo(ctx, h); err != nil {
		return err
	}
	if err := h.Click(ctx); err != nil {
		return err
	}
	if err := retry.Sleep(ctx, time.Second); err != nil {
		return err
	}
	if err := acts.SendKeys(ctx, value); err != nil {
		return err
	}
	log.Debug("Set textbox value", zap.String("value", value))
	return nil
}

// clearByBackspace presses END then one backspace per existing character.
func clearByBackspace(ctx context.Context, h driver.Handle, count int) error {
	if err := h.SendKey(ctx, driver.KeyEnd); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		if err := h.SendKey(ctx, driver.KeyBackspace); err != nil {
			return err
		}
	}
	return nil
}
