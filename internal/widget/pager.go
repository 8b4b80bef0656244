package widget

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/widgetry/internal/driver"
	"github.com/xkilldash9x/widgetry/internal/locator"
	"github.com/xkilldash9x/widgetry/internal/retry"
	"github.com/xkilldash9x/widgetry/internal/wait"
)

// KindTabPager is the TabPager kind key.
const KindTabPager = "pager"

// defaultTabWait is the settle time between tab clicks.
const defaultTabWait = 2 * time.Second

// TabPager drives tabbed pagination controls, e.g. "[Prev] [1] [2] ... [10]
// [Next]". Assigning an integer steps or jumps toward that page; assigning
// "previous" or "next" clicks the corresponding button once; assigning a
// declared page name clicks its fixed locator. Reads return the active tab's
// text.
//
// Options:
//
//	active_xpath          element showing the current tab (required)
//	prev_xpath            the "previous" button (required)
//	next_xpath            the "next" button (required)
//	prev_disabled_xpath   indicator that "previous" is disabled
//	next_disabled_xpath   indicator that "next" is disabled
//	page_group_xpath      group of directly clickable integer-labeled tabs
//	page_xpath_<key>      fixed locator for a named page
//	tab_wait              settle seconds between clicks (default 2)
type TabPager struct {
	Element
	active       locator.Locator
	prev         locator.Locator
	next         locator.Locator
	prevDisabled locator.Locator
	nextDisabled locator.Locator
	pageGroup    locator.Locator
	pages        map[string]locator.Locator
	tabWait      time.Duration
}

// NewTabPager constructs a TabPager from its configuration mapping. The
// active, previous, and next locators are all mandatory.
func NewTabPager(opts Options) (*TabPager, error) {
	o := newOptions(KindTabPager, opts)
	loc, err := o.takeLocator()
	if err != nil {
		return nil, err
	}
	p := &TabPager{Element: newElement(KindTabPager, loc)}
	p.active, _ = o.takeXPath("active_xpath")
	p.prev, _ = o.takeXPath("prev_xpath")
	p.next, _ = o.takeXPath("next_xpath")
	p.prevDisabled, _ = o.takeXPath("prev_disabled_xpath")
	p.nextDisabled, _ = o.takeXPath("next_disabled_xpath")
	p.pageGroup, _ = o.takeXPath("page_group_xpath")
	if p.pages, err = o.takePrefixed("page_xpath_"); err != nil {
		return nil, err
	}
	if p.tabWait, err = o.takeSeconds("tab_wait", defaultTabWait); err != nil {
		return nil, err
	}
	if err := o.finish(); err != nil {
		return nil, err
	}
	if p.active.IsZero() {
		return nil, configErrorf(KindTabPager, "active xpath is required for tab pagers")
	}
	if p.prev.IsZero() {
		return nil, configErrorf(KindTabPager, "prev xpath is required for tab pagers")
	}
	if p.next.IsZero() {
		return nil, configErrorf(KindTabPager, "next xpath is required for tab pagers")
	}
	return p, nil
}

// Get returns the active tab's text.
func (w *TabPager) Get(ctx context.Context, b *Binding) (string, error) {
	h, err := b.engine().Until(ctx, wait.Present(w.active), 0)
	if err != nil {
		return "", err
	}
	return h.Text(ctx)
}

// Set pages to the given value. A declared page name clicks its fixed
// locator. "previous" and "next" click the corresponding button once and
// require the active tab to actually change. Anything else must parse as an
// integer target, reached by jumping through the page group when configured
// and stepping with previous/next otherwise.
func (w *TabPager) Set(ctx context.Context, b *Binding, value string) error {
	log := b.widgetLog(w.Name())
	log.Debug("Setting tab pager", zap.String("value", value))

	if loc, ok := w.pages[value]; ok {
		log.Debug("Tab pager has fixed locator defined", zap.String("page", value))
		h, err := b.engine().Until(ctx, wait.Clickable(loc), 0)
		if err != nil {
			return err
		}
		if err := b.Driver.ScrollIntoView(ctx, h); err != nil {
			return err
		}
		return h.Click(ctx)
	}

	if value == "previous" || value == "next" {
		return w.step(ctx, b, value, log)
	}

	target, err := strconv.Atoi(value)
	if err != nil {
		return valueErrorf("non-integer tab assignment %q requires a declared page_xpath_<key> option", value)
	}
	return w.seek(ctx, b, target, log)
}

// step clicks the previous or next button once and verifies the active tab
// changed.
func (w *TabPager) step(ctx context.Context, b *Binding, direction string, log *zap.Logger) error {
	before, err := w.Get(ctx, b)
	if err != nil {
		return err
	}
	log.Debug("Tab pager clicking step button", zap.String("direction", direction))
	h, err := w.stepButton(ctx, b, direction, log)
	if err != nil {
		return err
	}
	if err := h.Click(ctx); err != nil {
		return err
	}
	if err := retry.Sleep(ctx, w.tabWait); err != nil {
		return err
	}
	after, err := w.Get(ctx, b)
	if err != nil {
		return err
	}
	if after == before {
		serr := stateErrorf("tab did not change despite clicking %q button (tab state: %s)", direction, after)
		log.Warn("Tab pager step had no effect", zap.Error(serr))
		return serr
	}
	return nil
}

// stepButton resolves the previous or next button, failing when its
// configured disabled indicator is present.
func (w *TabPager) stepButton(ctx context.Context, b *Binding, direction string, log *zap.Logger) (driver.Handle, error) {
	button, disabled := w.next, w.nextDisabled
	if direction == "previous" {
		button, disabled = w.prev, w.prevDisabled
	}
	if !disabled.IsZero() {
		if _, err := b.Driver.LocateOne(ctx, disabled); err == nil {
			serr := stateErrorf("%q button is disabled", direction)
			log.Error("Tab pager button is disabled", zap.Error(serr))
			return nil, serr
		}
		log.Debug("No disabled indicator present", zap.String("direction", direction))
	}
	h, err := b.engine().Until(ctx, wait.Clickable(button), 0)
	if err != nil {
		return nil, err
	}
	if err := b.Driver.ScrollIntoView(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// seek pages toward an integer target. With a page group configured it jumps
// through the integer-labeled tab nearest the target each round; otherwise it
// steps one page at a time. A round that makes no progress ends the seek
// early with a warning rather than looping forever.
//
// TODO: bound the number of rounds; a pager whose active tab oscillates
// between two values other than the target never terminates.
func (w *TabPager) seek(ctx context.Context, b *Binding, target int, log *zap.Logger) error {
	last := 0
	hasLast := false
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		text, err := w.Get(ctx, b)
		if err != nil {
			return err
		}
		current, err := strconv.Atoi(text)
		if err != nil {
			return valueErrorf("integer tab assignment requires all tabs to be integer, active tab reads %q", text)
		}
		if current == target {
			log.Debug("Tab pager is in target state", zap.Int("page", target))
			return nil
		}
		if hasLast && current == last {
			log.Warn("No tab change occurred, breaking early",
				zap.Int("current", current), zap.Int("target", target))
			return nil
		}

		var button driver.Handle
		switch {
		case !w.pageGroup.IsZero():
			button, err = w.nearestGroupTab(ctx, b, target)
			if err != nil {
				return err
			}
			log.Debug("Tab pager jumping through page group",
				zap.Int("current", current), zap.Int("target", target))
		case current > target:
			log.Debug("Tab pager clicking previous button",
				zap.Int("current", current), zap.Int("target", target))
			button, err = w.stepButton(ctx, b, "previous", log)
			if err != nil {
				return err
			}
		default:
			log.Debug("Tab pager clicking next button",
				zap.Int("current", current), zap.Int("target", target))
			button, err = w.stepButton(ctx, b, "next", log)
			if err != nil {
				return err
			}
		}

		last, hasLast = current, true
		if err := button.Click(ctx); err != nil {
			return err
		}
		if err := retry.Sleep(ctx, w.tabWait); err != nil {
			return err
		}
	}
}

// nearestGroupTab picks the page-group tab whose integer label is closest to
// the target, preferring the first encountered on ties.
func (w *TabPager) nearestGroupTab(ctx context.Context, b *Binding, target int) (driver.Handle, error) {
	tabs, err := b.engine().UntilMany(ctx, wait.AllPresent(w.pageGroup), 0)
	if err != nil {
		return nil, err
	}
	var best driver.Handle
	bestOffset := 0
	for _, tab := range tabs {
		text, terr := tab.Text(ctx)
		if terr != nil {
			return nil, terr
		}
		val, perr := strconv.Atoi(text)
		if perr != nil {
			return nil, valueErrorf("all page group tab labels must be integers, got %q", text)
		}
		offset := target - val
		if offset < 0 {
			offset = -offset
		}
		if best == nil || offset < bestOffset {
			best, bestOffset = tab, offset
		}
	}
	if best == nil {
		return nil, stateErrorf("page group %s matched no tabs", w.pageGroup)
	}
	if err := b.Driver.ScrollIntoView(ctx, best); err != nil {
		return nil, err
	}
	return best, nil
}
