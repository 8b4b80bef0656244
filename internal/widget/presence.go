package widget

import (
	"context"
	"errors"
	"time"

	"github.com/xkilldash9x/widgetry/internal/driver"
	"github.com/xkilldash9x/widgetry/internal/wait"
)

// Kind keys for the presence-check widgets.
const (
	KindPositiveElement      = "positive_element"
	KindPositiveElementGroup = "positive_element_group"
	KindNegativeElement      = "negative_element"
)

// PositiveElement expects an element to appear. Get reports whether it
// became visible within the timeout budget; timing out is an expected
// outcome, not an error.
type PositiveElement struct {
	Element
}

// NewPositiveElement constructs a PositiveElement from its configuration
// mapping.
func NewPositiveElement(opts Options) (*PositiveElement, error) {
	o := newOptions(KindPositiveElement, opts)
	loc, err := o.takeLocator()
	if err != nil {
		return nil, err
	}
	if err := o.finish(); err != nil {
		return nil, err
	}
	return &PositiveElement{Element: newElement(KindPositiveElement, loc)}, nil
}

// Get reports whether the element became visible in time.
func (w *PositiveElement) Get(ctx context.Context, b *Binding) (bool, error) {
	_, err := w.WaitUntilVisible(ctx, b, 0)
	if err != nil {
		if wait.IsTimeout(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PositiveElementGroup expects any of a group of elements to appear.
type PositiveElementGroup struct {
	Group
}

// NewPositiveElementGroup constructs a PositiveElementGroup from its
// configuration mapping.
func NewPositiveElementGroup(opts Options) (*PositiveElementGroup, error) {
	o := newOptions(KindPositiveElementGroup, opts)
	loc, err := o.takeLocator()
	if err != nil {
		return nil, err
	}
	if err := o.finish(); err != nil {
		return nil, err
	}
	return &PositiveElementGroup{Group: newGroup(KindPositiveElementGroup, loc)}, nil
}

// Get reports whether any match became visible in time.
func (w *PositiveElementGroup) Get(ctx context.Context, b *Binding) (bool, error) {
	_, err := w.WaitUntilVisible(ctx, b, 0, false)
	if err != nil {
		if wait.IsTimeout(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// NegativeElement expects matching elements to disappear, be deleted, or
// become hidden. Generally paired with loaders and deleted rows.
type NegativeElement struct {
	Element
}

// NewNegativeElement constructs a NegativeElement from its configuration
// mapping.
func NewNegativeElement(opts Options) (*NegativeElement, error) {
	o := newOptions(KindNegativeElement, opts)
	loc, err := o.takeLocator()
	if err != nil {
		return nil, err
	}
	if err := o.finish(); err != nil {
		return nil, err
	}
	return &NegativeElement{Element: newElement(KindNegativeElement, loc)}, nil
}

// Get waits for every currently displayed match to stop being displayed,
// under one deadline shared across all matches. A handle that goes stale
// counts as gone. Returns false when the deadline elapses first.
func (w *NegativeElement) Get(ctx context.Context, b *Binding) (bool, error) {
	deadline := time.Now().Add(b.timeout())
	engine := b.engine()
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		matches, err := b.Driver.LocateMany(ctx, w.Locator())
		if err != nil {
			return false, err
		}
		stillDisplayed := false
		for _, h := range matches {
			shown, derr := h.Displayed(ctx)
			if derr != nil {
				if errors.Is(derr, driver.ErrStale) || errors.Is(derr, driver.ErrNotFound) {
					// Stale elements have disappeared.
					continue
				}
				return false, derr
			}
			if !shown {
				continue
			}
			stillDisplayed = true
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return false, nil
			}
			if werr := engine.UntilNot(ctx, wait.DisplayedOf(h), remaining); werr != nil {
				if wait.IsTimeout(werr) {
					return false, nil
				}
				return false, werr
			}
			// This one disappeared; re-run the lookup in case the page
			// re-rendered while we waited.
			break
		}
		if !stillDisplayed {
			return true, nil
		}
	}
	return false, nil
}
