package widget

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/widgetry/internal/locator"
	"github.com/xkilldash9x/widgetry/internal/wait"
)

// KindRadioSelection is the RadioSelection kind key.
const KindRadioSelection = "radio_selection"

// RadioSelection drives a radio group through a static option→locator
// mapping. There is no mechanism to discover the group's initial state from
// the DOM; reads reflect the last successful write.
//
// Options: every key names a radio option, mapping to the xpath clicked to
// select it.
type RadioSelection struct {
	Element
	options map[string]locator.Locator

	mu      sync.Mutex
	current locator.Locator
	value   string
}

// NewRadioSelection constructs a RadioSelection from its configuration
// mapping. The current locator starts at the explicit locator key if given,
// else the first declared option.
func NewRadioSelection(opts Options) (*RadioSelection, error) {
	o := newOptions(KindRadioSelection, opts)
	loc, err := o.takeLocator()
	if err != nil {
		return nil, err
	}
	rs := &RadioSelection{Element: newElement(KindRadioSelection, loc)}
	rs.options = o.takeRemainingXPaths()
	rs.current = loc
	if rs.current.IsZero() {
		for _, name := range sortedKeys(rs.options) {
			rs.current = rs.options[name]
			break
		}
	}
	return rs, nil
}

// Get returns the option name of the last successful write; empty until the
// first write.
func (w *RadioSelection) Get() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

// Set clicks the named option's locator and records it as the current
// selection, keeping subsequent reads self-consistent with the last write.
// An unknown option name is a caller error.
func (w *RadioSelection) Set(ctx context.Context, b *Binding, value string) error {
	loc, ok := w.options[value]
	if !ok {
		return valueErrorf("illegal radio option %q; choose from %v", value, sortedKeys(w.options))
	}
	b.widgetLog(w.Name()).Debug("Selecting radio option", zap.String("option", value))
	h, err := b.engine().Until(ctx, wait.Clickable(loc), 0)
	if err != nil {
		return err
	}
	if err := b.Driver.ScrollIntoView(ctx, h); err != nil {
		return err
	}
	if err := h.Click(ctx); err != nil {
		return err
	}
	w.mu.Lock()
	w.current = loc
	w.value = value
	w.mu.Unlock()
	return nil
}

// Current returns the locator of the last written option.
func (w *RadioSelection) Current() locator.Locator {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}
