package wait

import (
	"context"

	"github.com/xkilldash9x/widgetry/internal/driver"
	"github.com/xkilldash9x/widgetry/internal/locator"
)

// Condition is a pollable expectation over a single element. Eval must be
// safe to call repeatedly; each call re-resolves the locator against the
// live page.
type Condition struct {
	Desc string
	Eval func(ctx context.Context, d driver.Driver) (driver.Handle, bool)
}

// GroupCondition is a pollable expectation over a set of elements.
type GroupCondition struct {
	Desc string
	Eval func(ctx context.Context, d driver.Driver) ([]driver.Handle, bool)
}

// BoolCondition is a pollable predicate with no element result.
type BoolCondition struct {
	Desc string
	Eval func(ctx context.Context, d driver.Driver) bool
}

func one(ctx context.Context, d driver.Driver, loc locator.Locator) (driver.Handle, bool) {
	h, err := d.LocateOne(ctx, loc)
	if err != nil {
		return nil, false
	}
	return h, true
}

// Present expects the element to exist in the DOM, visible or not.
func Present(loc locator.Locator) Condition {
	return Condition{
		Desc: "presence of " + loc.String(),
		Eval: func(ctx context.Context, d driver.Driver) (driver.Handle, bool) {
			return one(ctx, d, loc)
		},
	}
}

// Visible expects the element to exist and be displayed.
func Visible(loc locator.Locator) Condition {
	return Condition{
		Desc: "visibility of " + loc.String(),
		Eval: func(ctx context.Context, d driver.Driver) (driver.Handle, bool) {
			h, ok := one(ctx, d, loc)
			if !ok {
				return nil, false
			}
			shown, err := h.Displayed(ctx)
			if err != nil || !shown {
				return nil, false
			}
			return h, true
		},
	}
}

// Clickable expects the element to be displayed and enabled.
func Clickable(loc locator.Locator) Condition {
	return Condition{
		Desc: "clickability of " + loc.String(),
		Eval: func(ctx context.Context, d driver.Driver) (driver.Handle, bool) {
			h, ok := one(ctx, d, loc)
			if !ok {
				return nil, false
			}
			shown, err := h.Displayed(ctx)
			if err != nil || !shown {
				return nil, false
			}
			enabled, err := h.Enabled(ctx)
			if err != nil || !enabled {
				return nil, false
			}
			return h, true
		},
	}
}

// IsInvisible is the boolean form of invisibility: the element is either
// absent or present but not displayed.
func IsInvisible(loc locator.Locator) BoolCondition {
	return BoolCondition{
		Desc: "invisibility of " + loc.String(),
		Eval: func(ctx context.Context, d driver.Driver) bool {
			h, err := d.LocateOne(ctx, loc)
			if err != nil {
				return true
			}
			shown, err := h.Displayed(ctx)
			if err != nil {
				// A handle that went stale mid-check has disappeared.
				return true
			}
			return !shown
		},
	}
}

// IsVisible is the boolean form of Visible.
func IsVisible(loc locator.Locator) BoolCondition {
	return BoolCondition{
		Desc: "visibility of " + loc.String(),
		Eval: func(ctx context.Context, d driver.Driver) bool {
			_, ok := Visible(loc).Eval(ctx, d)
			return ok
		},
	}
}

// DisplayedOf expects an already-located handle to report displayed. Stale
// handles report false.
func DisplayedOf(h driver.Handle) BoolCondition {
	return BoolCondition{
		Desc: "visibility of located element",
		Eval: func(ctx context.Context, d driver.Driver) bool {
			shown, err := h.Displayed(ctx)
			return err == nil && shown
		},
	}
}

// AllPresent expects at least one match and returns every match.
func AllPresent(loc locator.Locator) GroupCondition {
	return GroupCondition{
		Desc: "presence of all " + loc.String(),
		Eval: func(ctx context.Context, d driver.Driver) ([]driver.Handle, bool) {
			hs, err := d.LocateMany(ctx, loc)
			if err != nil || len(hs) == 0 {
				return nil, false
			}
			return hs, true
		},
	}
}

// AnyVisible expects at least one displayed match and returns the displayed
// subset.
func AnyVisible(loc locator.Locator) GroupCondition {
	return GroupCondition{
		Desc: "visibility of any " + loc.String(),
		Eval: func(ctx context.Context, d driver.Driver) ([]driver.Handle, bool) {
			hs, err := d.LocateMany(ctx, loc)
			if err != nil {
				return nil, false
			}
			var shown []driver.Handle
			for _, h := range hs {
				if ok, err := h.Displayed(ctx); err == nil && ok {
					shown = append(shown, h)
				}
			}
			return shown, len(shown) > 0
		},
	}
}

// AllVisible expects at least one match and every match displayed.
func AllVisible(loc locator.Locator) GroupCondition {
	return GroupCondition{
		Desc: "visibility of all " + loc.String(),
		Eval: func(ctx context.Context, d driver.Driver) ([]driver.Handle, bool) {
			hs, err := d.LocateMany(ctx, loc)
			if err != nil || len(hs) == 0 {
				return nil, false
			}
			for _, h := range hs {
				if ok, err := h.Displayed(ctx); err != nil || !ok {
					return nil, false
				}
			}
			return hs, true
		},
	}
}

// AnyClickable expects at least one enabled match and returns the enabled
// subset.
func AnyClickable(loc locator.Locator) GroupCondition {
	return GroupCondition{
		Desc: "clickability of any " + loc.String(),
		Eval: func(ctx context.Context, d driver.Driver) ([]driver.Handle, bool) {
			hs, err := d.LocateMany(ctx, loc)
			if err != nil {
				return nil, false
			}
			var enabled []driver.Handle
			for _, h := range hs {
				if ok, err := h.Enabled(ctx); err == nil && ok {
					enabled = append(enabled, h)
				}
			}
			return enabled, len(enabled) > 0
		},
	}
}

// AllClickable expects at least one match and every match enabled.
func AllClickable(loc locator.Locator) GroupCondition {
	return GroupCondition{
		Desc: "clickability of all " + loc.String(),
		Eval: func(ctx context.Context, d driver.Driver) ([]driver.Handle, bool) {
			hs, err := d.LocateMany(ctx, loc)
			if err != nil || len(hs) == 0 {
				return nil, false
			}
			for _, h := range hs {
				if ok, err := h.Enabled(ctx); err != nil || !ok {
					return nil, false
				}
			}
			return hs, true
		},
	}
}

// AnyInvisible expects at least one hidden match and returns the hidden
// subset.
func AnyInvisible(loc locator.Locator) GroupCondition {
	return GroupCondition{
		Desc: "invisibility of any " + loc.String(),
		Eval: func(ctx context.Context, d driver.Driver) ([]driver.Handle, bool) {
			hs, err := d.LocateMany(ctx, loc)
			if err != nil {
				return nil, false
			}
			var hidden []driver.Handle
			for _, h := range hs {
				if ok, err := h.Displayed(ctx); err == nil && !ok {
					hidden = append(hidden, h)
				}
			}
			return hidden, len(hidden) > 0
		},
	}
}

// AllInvisible expects at least one match and every match hidden.
func AllInvisible(loc locator.Locator) GroupCondition {
	return GroupCondition{
		Desc: "invisibility of all " + loc.String(),
		Eval: func(ctx context.Context, d driver.Driver) ([]driver.Handle, bool) {
			hs, err := d.LocateMany(ctx, loc)
			if err != nil || len(hs) == 0 {
				return nil, false
			}
			for _, h := range hs {
				if ok, err := h.Displayed(ctx); err != nil || ok {
					return nil, false
				}
			}
			return hs, true
		},
	}
}
