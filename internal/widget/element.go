// Package widget implements the descriptor layer: typed, declaratively
// configured interaction protocols (button, textbox, dropdown, table, pager,
// …) bound at call time to a page context. Each kind is a small state
// machine over the abstract driver, built on the wait engine for condition
// polling and the retry policy for action re-attempts.
package widget

import (
	"context"
	"time"

	"github.com/xkilldash9x/widgetry/internal/driver"
	"github.com/xkilldash9x/widgetry/internal/locator"
	"github.com/xkilldash9x/widgetry/internal/retry"
	"github.com/xkilldash9x/widgetry/internal/wait"
)

// Widget is the minimal contract the registry stores.
type Widget interface {
	Kind() string
	Name() string
}

// Element is the base capability set every kind specializes: locate, read,
// presence/visibility queries, scrolling, force-click, hover, drag, and the
// wait-until variants.
type Element struct {
	kind string
	name string
	loc  locator.Locator
}

func newElement(kind string, loc locator.Locator) Element {
	return Element{kind: kind, loc: loc}
}

// Kind returns the widget kind key.
func (e *Element) Kind() string { return e.kind }

// Name returns the registered descriptor name; empty until registration.
func (e *Element) Name() string { return e.name }

// setName is called once at registration time.
func (e *Element) setName(name string) { e.name = name }

// Locator returns the element's primary locator.
func (e *Element) Locator() locator.Locator { return e.loc }

// Locate resolves the element against the live page.
func (e *Element) Locate(ctx context.Context, b *Binding) (driver.Handle, error) {
	if e.loc.IsZero() {
		return nil, valueErrorf("page element of type %q does not have a standard locator", e.kind)
	}
	return b.Driver.LocateOne(ctx, e.loc)
}

// Text returns the element's rendered text.
func (e *Element) Text(ctx context.Context, b *Binding) (string, error) {
	h, err := e.Locate(ctx, b)
	if err != nil {
		return "", err
	}
	return h.Text(ctx)
}

// Value scrolls the element into view and returns its value attribute.
func (e *Element) Value(ctx context.Context, b *Binding) (string, error) {
	h, err := e.Locate(ctx, b)
	if err != nil {
		return "", err
	}
	if err := b.Driver.ScrollIntoView(ctx, h); err != nil {
		return "", err
	}
	return h.Attribute(ctx, "value")
}

// IsPresent reports whether the element currently exists in the DOM.
func (e *Element) IsPresent(ctx context.Context, b *Binding) bool {
	_, err := e.Locate(ctx, b)
	return err == nil
}

// IsVisible reports whether the element exists and is displayed.
func (e *Element) IsVisible(ctx context.Context, b *Binding) bool {
	h, err := e.Locate(ctx, b)
	if err != nil {
		return false
	}
	shown, err := h.Displayed(ctx)
	return err == nil && shown
}

// IsInvisible reports whether the element exists but is not displayed.
func (e *Element) IsInvisible(ctx context.Context, b *Binding) bool {
	h, err := e.Locate(ctx, b)
	if err != nil {
		return false
	}
	shown, err := h.Displayed(ctx)
	return err == nil && !shown
}

// IsClickable reports whether the element exists and is enabled.
func (e *Element) IsClickable(ctx context.Context, b *Binding) bool {
	h, err := e.Locate(ctx, b)
	if err != nil {
		return false
	}
	enabled, err := h.Enabled(ctx)
	return err == nil && enabled
}

// ScrollIntoView centers the element in the viewport.
func (e *Element) ScrollIntoView(ctx context.Context, b *Binding) error {
	h, err := e.Locate(ctx, b)
	if err != nil {
		return err
	}
	return b.Driver.ScrollIntoView(ctx, h)
}

// forceClickScript dispatches a click directly, bypassing UI overlays. It
// does not simulate user behavior and is reserved for last-resort paths.
const forceClickScript = "function() { this.click(); }"

// ForceClick submits a click event straight to the element.
func (e *Element) ForceClick(ctx context.Context, b *Binding) error {
	h, err := e.Locate(ctx, b)
	if err != nil {
		return err
	}
	return b.Driver.ExecuteScript(ctx, forceClickScript, h)
}

// Hover moves the pointer over the element, optionally clicking after.
func (e *Element) Hover(ctx context.Context, b *Binding, click bool) error {
	h, err := e.Locate(ctx, b)
	if err != nil {
		return err
	}
	acts := b.Driver.Actions()
	if err := acts.Hover(ctx, h); err != nil {
		return err
	}
	if click {
		return h.Click(ctx)
	}
	return nil
}

// DragOnto drags this element onto the target, waiting the given delay
// before releasing.
func (e *Element) DragOnto(ctx context.Context, b *Binding, target *Element, delay time.Duration) error {
	src, err := e.Locate(ctx, b)
	if err != nil {
		return err
	}
	dst, err := target.Locate(ctx, b)
	if err != nil {
		return err
	}
	acts := b.Driver.Actions()
	if err := acts.Hold(ctx, src); err != nil {
		return err
	}
	if err := acts.MoveTo(ctx, dst); err != nil {
		return err
	}
	if err := retry.Sleep(ctx, delay); err != nil {
		return err
	}
	return acts.Release(ctx, dst)
}

// WaitUntilPresent blocks until the element exists. A non-positive timeout
// uses the binding default.
func (e *Element) WaitUntilPresent(ctx context.Context, b *Binding, timeout time.Duration) (driver.Handle, error) {
	return b.engine().Until(ctx, wait.Present(e.loc), timeout)
}

// WaitUntilVisible blocks until the element is displayed.
func (e *Element) WaitUntilVisible(ctx context.Context, b *Binding, timeout time.Duration) (driver.Handle, error) {
	return b.engine().Until(ctx, wait.Visible(e.loc), timeout)
}

// WaitUntilInvisible blocks until the element is absent or hidden.
func (e *Element) WaitUntilInvisible(ctx context.Context, b *Binding, timeout time.Duration) error {
	return b.engine().UntilTrue(ctx, wait.IsInvisible(e.loc), timeout)
}

// WaitUntilClickable blocks until the element is displayed and enabled.
func (e *Element) WaitUntilClickable(ctx context.Context, b *Binding, timeout time.Duration) (driver.Handle, error) {
	return b.engine().Until(ctx, wait.Clickable(e.loc), timeout)
}

// KindPageElement is the bare single-element kind key.
const KindPageElement = "page_element"

// PageElement is a directly declarable bare element: just the base
// capabilities, no kind-specific protocol.
type PageElement struct {
	Element
}

// NewPageElement constructs a PageElement from its configuration mapping.
func NewPageElement(opts Options) (*PageElement, error) {
	o := newOptions(KindPageElement, opts)
	loc, err := o.takeLocator()
	if err != nil {
		return nil, err
	}
	if err := o.finish(); err != nil {
		return nil, err
	}
	return &PageElement{Element: newElement(KindPageElement, loc)}, nil
}

// Get reads the element's rendered text.
func (w *PageElement) Get(ctx context.Context, b *Binding) (string, error) {
	return w.Text(ctx, b)
}
