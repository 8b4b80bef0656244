package widget

import (
	"context"
	"errors"

	"github.com/xkilldash9x/widgetry/internal/driver"
	"github.com/xkilldash9x/widgetry/internal/locator"
	"github.com/xkilldash9x/widgetry/internal/wait"
)

// KindToggledElement is the ToggledElement kind key.
const KindToggledElement = "toggled_element"

// ToggledElement is a control that flips state on click but does not expose
// that state natively. State is inferred from the visibility of a configured
// indicator element: a positive indicator means "visible = on", a negative
// one means "visible = off". Exactly one indicator must be configured.
//
// Options:
//
//	<locator>                 element clicked to toggle
//	positive_element_xpath    indicator read as the on state
//	negative_element_xpath    indicator read as the off state
//	alt_toggle_xpath          element clicked for the turn-off direction,
//	                          when distinct from the primary toggle
type ToggledElement struct {
	Element
	altToggle locator.Locator
	check     locator.Locator
	// positive reports whether the indicator's visibility maps to "on".
	positive bool
}

// NewToggledElement constructs a ToggledElement from its configuration
// mapping.
func NewToggledElement(opts Options) (*ToggledElement, error) {
	o := newOptions(KindToggledElement, opts)
	loc, err := o.takeLocator()
	if err != nil {
		return nil, err
	}
	te := &ToggledElement{Element: newElement(KindToggledElement, loc)}
	if alt, ok := o.takeXPath("alt_toggle_xpath"); ok {
		te.altToggle = alt
	}
	neg, hasNeg := o.takeXPath("negative_element_xpath")
	pos, hasPos := o.takeXPath("positive_element_xpath")
	if hasNeg == hasPos {
		return nil, configErrorf(KindToggledElement, "exactly one check condition is required (positive_element_xpath or negative_element_xpath)")
	}
	if hasPos {
		te.check = pos
		te.positive = true
	} else {
		te.check = neg
	}
	if err := o.finish(); err != nil {
		return nil, err
	}
	return te, nil
}

// Get infers the toggled state from the indicator's visibility. An absent
// indicator counts as not displayed.
func (w *ToggledElement) Get(ctx context.Context, b *Binding) (bool, error) {
	h, err := b.Driver.LocateOne(ctx, w.check)
	if err != nil {
		if errors.Is(err, driver.ErrNotFound) {
			return !w.positive, nil
		}
		return false, err
	}
	shown, err := h.Displayed(ctx)
	if err != nil {
		return false, err
	}
	if w.positive {
		return shown, nil
	}
	return !shown, nil
}

// Set drives the element to the target state, clicking only on mismatch.
// The alternate toggle locator, when configured, serves the turn-off
// direction.
func (w *ToggledElement) Set(ctx context.Context, b *Binding, on bool) error {
	current, err := w.Get(ctx, b)
	if err != nil {
		return err
	}
	if current == on {
		return nil
	}
	b.widgetLog(w.Name()).Debug("Toggling toggleable element")
	loc := w.Locator()
	if !w.altToggle.IsZero() && !on {
		loc = w.altToggle
	}
	h, err := b.engine().Until(ctx, wait.Clickable(loc), 0)
	if err != nil {
		return err
	}
	if err := b.Driver.ScrollIntoView(ctx, h); err != nil {
		return err
	}
	return h.Click(ctx)
}
