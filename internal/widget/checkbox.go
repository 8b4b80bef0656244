package widget

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/widgetry/internal/locator"
)

// KindCheckbox is the Checkbox kind key.
const KindCheckbox = "checkbox"

// Checkbox reads and assigns a native checkbox. Disjointed checkboxes, whose
// clickable toggle differs from the element carrying the selected state,
// configure a separate toggle locator.
//
// Options:
//
//	<locator>   checkbox element the selected state is read from
//	toggle      xpath of the element clicked to toggle (defaults to the
//	            checkbox itself)
type Checkbox struct {
	Element
	toggle locator.Locator
}

// NewCheckbox constructs a Checkbox from its configuration mapping.
func NewCheckbox(opts Options) (*Checkbox, error) {
	o := newOptions(KindCheckbox, opts)
	loc, err := o.takeLocator()
	if err != nil {
		return nil, err
	}
	cb := &Checkbox{Element: newElement(KindCheckbox, loc)}
	if toggle, ok := o.takeXPath("toggle"); ok {
		cb.toggle = toggle
	} else {
		cb.toggle = loc
	}
	if err := o.finish(); err != nil {
		return nil, err
	}
	return cb, nil
}

// Get reads the checkbox's current selected state.
func (w *Checkbox) Get(ctx context.Context, b *Binding) (bool, error) {
	h, err := w.Locate(ctx, b)
	if err != nil {
		return false, err
	}
	return h.Selected(ctx)
}

// Set drives the checkbox to the target state. Assignment is idempotent:
// the toggle is clicked only when the current state differs.
func (w *Checkbox) Set(ctx context.Context, b *Binding, checked bool) error {
	current, err := w.Get(ctx, b)
	if err != nil {
		return err
	}
	if current == checked {
		return nil
	}
	b.widgetLog(w.Name()).Debug("Toggling checkbox",
		zap.Bool("from", current), zap.Bool("to", checked))
	h, err := b.Driver.LocateOne(ctx, w.toggle)
	if err != nil {
		return err
	}
	if err := b.Driver.ScrollIntoView(ctx, h); err != nil {
		return err
	}
	return h.Click(ctx)
}
