// Package drivertest provides a scripted in-memory driver for widget and
// wait-engine tests. Elements are registered per locator; hooks let a test
// mutate the fake page in response to clicks, which is enough to model
// asynchronous rendering without a browser.
package drivertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/xkilldash9x/widgetry/internal/driver"
	"github.com/xkilldash9x/widgetry/internal/locator"
)

// Fake implements driver.Driver over locator-keyed element lists.
type Fake struct {
	mu       sync.Mutex
	elements map[string][]*Elem
	acts     *FakeActions

	// Scrolled records every handle passed to ScrollIntoView, in order.
	Scrolled []driver.Handle
	// Scripts records every script passed to ExecuteScript, in order.
	Scripts []string
}

// New returns an empty fake page.
func New() *Fake {
	return &Fake{
		elements: map[string][]*Elem{},
		acts:     &FakeActions{},
	}
}

// Set replaces the elements a locator resolves to.
func (f *Fake) Set(loc locator.Locator, els ...*Elem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.elements[loc.String()] = els
}

// Add appends elements to a locator's match list.
func (f *Fake) Add(loc locator.Locator, els ...*Elem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := loc.String()
	f.elements[key] = append(f.elements[key], els...)
}

// Remove clears a locator's match list, making it resolve to nothing.
func (f *Fake) Remove(loc locator.Locator) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.elements, loc.String())
}

func (f *Fake) lookup(loc locator.Locator) []*Elem {
	f.mu.Lock()
	defer f.mu.Unlock()
	els := f.elements[loc.String()]
	out := make([]*Elem, len(els))
	copy(out, els)
	return out
}

// LocateOne resolves a locator to its first registered element.
func (f *Fake) LocateOne(ctx context.Context, loc locator.Locator) (driver.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	els := f.lookup(loc)
	if len(els) == 0 {
		return nil, fmt.Errorf("%s: %w", loc, driver.ErrNotFound)
	}
	return els[0], nil
}

// LocateMany resolves a locator to every registered element.
func (f *Fake) LocateMany(ctx context.Context, loc locator.Locator) ([]driver.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	els := f.lookup(loc)
	out := make([]driver.Handle, len(els))
	for i, e := range els {
		out[i] = e
	}
	return out, nil
}

// ScrollIntoView records the scroll.
func (f *Fake) ScrollIntoView(ctx context.Context, h driver.Handle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.Scrolled = append(f.Scrolled, h)
	f.mu.Unlock()
	if e, ok := h.(*Elem); ok && e.ScrollErr != nil {
		return e.ScrollErr
	}
	return nil
}

// ExecuteScript records the script and counts a force-click on the target.
func (f *Fake) ExecuteScript(ctx context.Context, script string, h driver.Handle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.Scripts = append(f.Scripts, script)
	f.mu.Unlock()
	if e, ok := h.(*Elem); ok {
		e.mu.Lock()
		e.ForceClicks++
		e.mu.Unlock()
	}
	return nil
}

// Actions returns the shared recording dispatcher.
func (f *Fake) Actions() driver.Actions { return f.acts }

// ActionLog returns the recording dispatcher for assertions.
func (f *Fake) ActionLog() *FakeActions { return f.acts }

// Elem implements driver.Handle. Zero-valued flags mean hidden and disabled;
// use NewElem for an ordinary visible, enabled element.
type Elem struct {
	mu sync.Mutex

	TextValue   string
	MarkupValue string
	Attrs       map[string]string
	Shown       bool
	IsEnabled   bool
	IsSelected  bool

	// Stale makes every operation fail with driver.ErrStale.
	Stale bool
	// NotInteractable makes input operations fail with
	// driver.ErrNotInteractable.
	NotInteractable bool
	// ScrollErr is returned by Fake.ScrollIntoView for this element.
	ScrollErr error
	// ClickErr is returned by Click after the hook runs.
	ClickErr error
	// OnClick runs on every successful click, before ClickErr is applied.
	OnClick func(e *Elem)

	// Children backs Find, keyed by locator string.
	Children map[string]driver.Handle

	Clicks      int
	ForceClicks int
	Typed       []string
	Keys        []driver.Key
	Clears      int
}

// NewElem returns a visible, enabled element with the given text.
func NewElem(text string) *Elem {
	return &Elem{
		TextValue: text,
		Attrs:     map[string]string{},
		Shown:     true,
		IsEnabled: true,
	}
}

func (e *Elem) guard() error {
	if e.Stale {
		return driver.ErrStale
	}
	return nil
}

func (e *Elem) Text(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return "", err
	}
	return e.TextValue, nil
}

func (e *Elem) Attribute(ctx context.Context, name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return "", err
	}
	return e.Attrs[name], nil
}

func (e *Elem) Markup(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return "", err
	}
	return e.MarkupValue, nil
}

func (e *Elem) Displayed(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return false, err
	}
	return e.Shown, nil
}

func (e *Elem) Enabled(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return false, err
	}
	return e.IsEnabled, nil
}

func (e *Elem) Selected(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return false, err
	}
	return e.IsSelected, nil
}

func (e *Elem) Click(ctx context.Context) error {
	e.mu.Lock()
	if err := e.guard(); err != nil {
		e.mu.Unlock()
		return err
	}
	if e.NotInteractable {
		e.mu.Unlock()
		return driver.ErrNotInteractable
	}
	e.Clicks++
	hook := e.OnClick
	clickErr := e.ClickErr
	e.mu.Unlock()
	if hook != nil {
		hook(e)
	}
	return clickErr
}

// SendKeys types text, appending it to the value attribute the way a real
// input accumulates keystrokes.
func (e *Elem) SendKeys(ctx context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	if e.NotInteractable {
		return driver.ErrNotInteractable
	}
	e.Typed = append(e.Typed, text)
	if e.Attrs == nil {
		e.Attrs = map[string]string{}
	}
	e.Attrs["value"] += text
	return nil
}

// SendKey records the key. Backspace trims the value attribute by one rune so
// clear-by-backspace loops behave like a real input.
func (e *Elem) SendKey(ctx context.Context, key driver.Key) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	if e.NotInteractable {
		return driver.ErrNotInteractable
	}
	e.Keys = append(e.Keys, key)
	if key == driver.KeyBackspace && e.Attrs != nil {
		if val := []rune(e.Attrs["value"]); len(val) > 0 {
			e.Attrs["value"] = string(val[:len(val)-1])
		}
	}
	return nil
}

func (e *Elem) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	if e.NotInteractable {
		return driver.ErrNotInteractable
	}
	e.Clears++
	if e.Attrs != nil {
		e.Attrs["value"] = ""
	}
	return nil
}

func (e *Elem) Find(ctx context.Context, loc locator.Locator) (driver.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return nil, err
	}
	h, ok := e.Children[loc.String()]
	if !ok {
		return nil, fmt.Errorf("%s: %w", loc, driver.ErrNotFound)
	}
	return h, nil
}

// SetShown flips visibility; safe to call from a timer goroutine while the
// engine polls.
func (e *Elem) SetShown(shown bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Shown = shown
}

// SetText replaces the element text; safe to call concurrently with reads.
func (e *Elem) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.TextValue = text
}

// Value returns the current value attribute.
func (e *Elem) Value() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Attrs["value"]
}

// ClickCount returns the number of native clicks received.
func (e *Elem) ClickCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Clicks
}

// FakeActions records composite input dispatches.
type FakeActions struct {
	mu       sync.Mutex
	Held     []driver.Handle
	Moved    []driver.Handle
	Released []driver.Handle
	Hovered  []driver.Handle
	Typed    []string
	Keys     []driver.Key

	// Focus receives Actions-level keystrokes when set, so tests can model
	// typing into a composite input.
	Focus *Elem
}

func (a *FakeActions) Hold(ctx context.Context, h driver.Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Held = append(a.Held, h)
	return nil
}

func (a *FakeActions) MoveTo(ctx context.Context, h driver.Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Moved = append(a.Moved, h)
	return nil
}

func (a *FakeActions) Release(ctx context.Context, h driver.Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Released = append(a.Released, h)
	return nil
}

func (a *FakeActions) Hover(ctx context.Context, h driver.Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Hovered = append(a.Hovered, h)
	return nil
}

func (a *FakeActions) SendKeys(ctx context.Context, text string) error {
	a.mu.Lock()
	a.Typed = append(a.Typed, text)
	focus := a.Focus
	a.mu.Unlock()
	if focus != nil {
		focus.mu.Lock()
		if focus.Attrs == nil {
			focus.Attrs = map[string]string{}
		}
		focus.Attrs["value"] += text
		focus.mu.Unlock()
	}
	return nil
}

func (a *FakeActions) SendKey(ctx context.Context, key driver.Key) error {
	a.mu.Lock()
	a.Keys = append(a.Keys, key)
	focus := a.Focus
	a.mu.Unlock()
	if focus != nil && key == driver.KeyBackspace {
		focus.mu.Lock()
		if focus.Attrs != nil {
			if val := []rune(focus.Attrs["value"]); len(val) > 0 {
				focus.Attrs["value"] = string(val[:len(val)-1])
			}
		}
		focus.mu.Unlock()
	}
	return nil
}
