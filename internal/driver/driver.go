// Package driver defines the capability surface the widget layer consumes
// from a browser automation backend. Widget code depends only on these
// interfaces; concrete backends (driver/cdp) and test fakes
// (driver/drivertest) implement them.
package driver

import (
	"context"

	"github.com/xkilldash9x/widgetry/internal/locator"
)

// Key names a special keyboard key for composite input sequences. Backends
// translate these to their own key encodings.
type Key string

const (
	KeyHome       Key = "Home"
	KeyEnd        Key = "End"
	KeyBackspace  Key = "Backspace"
	KeyEscape     Key = "Escape"
	KeyEnter      Key = "Enter"
	KeyArrowUp    Key = "ArrowUp"
	KeyArrowDown  Key = "ArrowDown"
	KeyArrowLeft  Key = "ArrowLeft"
	KeyArrowRight Key = "ArrowRight"
)

// Driver locates elements and performs page-level operations.
type Driver interface {
	// LocateOne resolves a locator to a single element handle. Returns an
	// error satisfying errors.Is(err, ErrNotFound) when nothing matches.
	LocateOne(ctx context.Context, loc locator.Locator) (Handle, error)

	// LocateMany resolves a locator to every matching element, in document
	// order. An empty result is not an error.
	LocateMany(ctx context.Context, loc locator.Locator) ([]Handle, error)

	// ScrollIntoView scrolls the viewport until the element is centered.
	ScrollIntoView(ctx context.Context, h Handle) error

	// ExecuteScript runs a script against the element (used for force-click
	// and other overlay-bypassing operations).
	ExecuteScript(ctx context.Context, script string, h Handle) error

	// Actions returns the composite keyboard/mouse input dispatcher.
	Actions() Actions
}

// Handle is a reference to a located remote element. Handles can go stale
// when the page re-renders; operations on a stale handle return an error
// satisfying errors.Is(err, ErrStale).
type Handle interface {
	Text(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, error)
	// Markup returns the element's serialized markup (outer HTML), used for
	// structural option matching.
	Markup(ctx context.Context) (string, error)
	Displayed(ctx context.Context) (bool, error)
	Enabled(ctx context.Context) (bool, error)
	Selected(ctx context.Context) (bool, error)
	Click(ctx context.Context) error
	SendKeys(ctx context.Context, text string) error
	SendKey(ctx context.Context, key Key) error
	Clear(ctx context.Context) error
	// Find resolves a locator relative to this element.
	Find(ctx context.Context, loc locator.Locator) (Handle, error)
}

// Actions dispatches composite input events that are not bound to a single
// element operation (drag sequences, hovers, free-standing key presses).
type Actions interface {
	Hold(ctx context.Context, h Handle) error
	MoveTo(ctx context.Context, h Handle) error
	Release(ctx context.Context, h Handle) error
	Hover(ctx context.Context, h Handle) error
	// SendKeys types into whatever currently holds focus.
	SendKeys(ctx context.Context, text string) error
	SendKey(ctx context.Context, key Key) error
}
