package widget

import (
	"context"
	"time"

	"github.com/xkilldash9x/widgetry/internal/driver"
	"github.com/xkilldash9x/widgetry/internal/locator"
	"github.com/xkilldash9x/widgetry/internal/wait"
)

// Group is the multi-match variant of Element: the same capability set
// vectorized over every element the locator matches.
type Group struct {
	kind string
	name string
	loc  locator.Locator
}

func newGroup(kind string, loc locator.Locator) Group {
	return Group{kind: kind, loc: loc}
}

func (g *Group) Kind() string             { return g.kind }
func (g *Group) Name() string             { return g.name }
func (g *Group) setName(name string)      { g.name = name }
func (g *Group) Locator() locator.Locator { return g.loc }

// Locate resolves every match, in document order.
func (g *Group) Locate(ctx context.Context, b *Binding) ([]driver.Handle, error) {
	if g.loc.IsZero() {
		return nil, valueErrorf("page element of type %q does not have a standard locator", g.kind)
	}
	return b.Driver.LocateMany(ctx, g.loc)
}

// Texts returns the rendered text of every match.
func (g *Group) Texts(ctx context.Context, b *Binding) ([]string, error) {
	hs, err := g.Locate(ctx, b)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		text, err := h.Text(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, nil
}

// Values scrolls each match into view and collects its value attribute.
func (g *Group) Values(ctx context.Context, b *Binding) ([]string, error) {
	hs, err := g.Locate(ctx, b)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		if err := b.Driver.ScrollIntoView(ctx, h); err != nil {
			return nil, err
		}
		val, err := h.Attribute(ctx, "value")
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

// IsPresent reports whether at least one match exists.
func (g *Group) IsPresent(ctx context.Context, b *Binding) bool {
	hs, err := g.Locate(ctx, b)
	return err == nil && len(hs) > 0
}

// IsVisible reports whether any match is displayed.
func (g *Group) IsVisible(ctx context.Context, b *Binding) bool {
	hs, err := g.Locate(ctx, b)
	if err != nil {
		return false
	}
	for _, h := range hs {
		if shown, err := h.Displayed(ctx); err == nil && shown {
			return true
		}
	}
	return false
}

// IsInvisible reports whether any match is hidden.
func (g *Group) IsInvisible(ctx context.Context, b *Binding) bool {
	hs, err := g.Locate(ctx, b)
	if err != nil {
		return false
	}
	for _, h := range hs {
		if shown, err := h.Displayed(ctx); err == nil && !shown {
			return true
		}
	}
	return false
}

// IsClickable reports whether any match is enabled.
func (g *Group) IsClickable(ctx context.Context, b *Binding) bool {
	hs, err := g.Locate(ctx, b)
	if err != nil {
		return false
	}
	for _, h := range hs {
		if enabled, err := h.Enabled(ctx); err == nil && enabled {
			return true
		}
	}
	return false
}

// WaitUntilPresent blocks until at least one match exists.
func (g *Group) WaitUntilPresent(ctx context.Context, b *Binding, timeout time.Duration) ([]driver.Handle, error) {
	return b.engine().UntilMany(ctx, wait.AllPresent(g.loc), timeout)
}

// WaitUntilVisible blocks until matches are displayed; all selects between
// any-match and every-match semantics.
func (g *Group) WaitUntilVisible(ctx context.Context, b *Binding, timeout time.Duration, all bool) ([]driver.Handle, error) {
	cond := wait.AnyVisible(g.loc)
	if all {
		cond = wait.AllVisible(g.loc)
	}
	return b.engine().UntilMany(ctx, cond, timeout)
}

// WaitUntilInvisible blocks until matches are hidden.
func (g *Group) WaitUntilInvisible(ctx context.Context, b *Binding, timeout time.Duration, all bool) ([]driver.Handle, error) {
	cond := wait.AnyInvisible(g.loc)
	if all {
		cond = wait.AllInvisible(g.loc)
	}
	return b.engine().UntilMany(ctx, cond, timeout)
}

// WaitUntilClickable blocks until matches are enabled.
func (g *Group) WaitUntilClickable(ctx context.Context, b *Binding, timeout time.Duration, all bool) ([]driver.Handle, error) {
	cond := wait.AnyClickable(g.loc)
	if all {
		cond = wait.AllClickable(g.loc)
	}
	return b.engine().UntilMany(ctx, cond, timeout)
}

// KindPageElementGroup is the bare multi-element kind key.
const KindPageElementGroup = "page_element_group"

// PageElementGroup is a directly declarable bare group.
type PageElementGroup struct {
	Group
}

// NewPageElementGroup constructs a PageElementGroup from its configuration
// mapping.
func NewPageElementGroup(opts Options) (*PageElementGroup, error) {
	o := newOptions(KindPageElementGroup, opts)
	loc, err := o.takeLocator()
	if err != nil {
		return nil, err
	}
	if err := o.finish(); err != nil {
		return nil, err
	}
	return &PageElementGroup{Group: newGroup(KindPageElementGroup, loc)}, nil
}
