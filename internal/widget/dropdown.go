package widget

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/widgetry/internal/driver"
	"github.com/xkilldash9x/widgetry/internal/locator"
	"github.com/xkilldash9x/widgetry/internal/retry"
	"github.com/xkilldash9x/widgetry/internal/wait"
)

// KindDropdownSelector is the DropdownSelector kind key.
const KindDropdownSelector = "dropdown"

// dropdownAttempts bounds full open-and-match cycles.
const dropdownAttempts = 3

// DropdownSelector drives a dropdown context. Static mode assigns one of a
// fixed option→locator mapping. Dynamic mode (lookup context + regex format,
// mutually required) scans the context's immediate children and matches each
// candidate's serialized markup against the formatted pattern; exactly one
// match is required.
//
// Options:
//
//	<locator>                 button opening the dropdown (required)
//	lookup_ctx_xpath          container whose children are scanned
//	lookup_ctx_regex_format   pattern template; "{}" is replaced with the
//	                          regexp-quoted assigned value
//	populate_delay            seconds to wait after opening the dropdown
//	<anything else>           a named option mapping to its xpath
type DropdownSelector struct {
	Element
	lookupCtx     locator.Locator
	lookupFormat  string
	options       map[string]locator.Locator
	populateDelay time.Duration
}

// NewDropdownSelector constructs a DropdownSelector from its configuration
// mapping.
func NewDropdownSelector(opts Options) (*DropdownSelector, error) {
	o := newOptions(KindDropdownSelector, opts)
	loc, err := o.takeLocator()
	if err != nil {
		return nil, err
	}
	if loc.IsZero() {
		return nil, configErrorf(KindDropdownSelector, "dropdown contexts must define a locator")
	}
	dd := &DropdownSelector{Element: newElement(KindDropdownSelector, loc)}
	dd.lookupCtx, _ = o.takeXPath("lookup_ctx_xpath")
	dd.lookupFormat, _ = o.takeString("lookup_ctx_regex_format")
	if dd.populateDelay, err = o.takeSeconds("populate_delay", 0); err != nil {
		return nil, err
	}
	hasCtx, hasFmt := !dd.lookupCtx.IsZero(), dd.lookupFormat != ""
	if hasCtx != hasFmt {
		return nil, configErrorf(KindDropdownSelector, "pattern-based dropdown context must define both a lookup context and a regex format")
	}
	if hasFmt {
		// Validate the template at construction time so a malformed pattern
		// never waits for a live assignment to surface.
		if _, err := regexp.Compile(formatPattern(dd.lookupFormat, "probe")); err != nil {
			return nil, configErrorf(KindDropdownSelector, "invalid lookup_ctx_regex_format %q: %v", dd.lookupFormat, err)
		}
	}
	dd.options = o.takeRemainingXPaths()
	return dd, nil
}

// formatPattern substitutes the regexp-quoted value into the template.
func formatPattern(format, value string) string {
	return strings.ReplaceAll(format, "{}", regexp.QuoteMeta(value))
}

// Set selects a dropdown option. Declared options are checked first; with a
// lookup context configured, any other value is pattern-matched against the
// context's children. The full open-and-match sequence is retried on
// timeouts and transient driver failures.
func (w *DropdownSelector) Set(ctx context.Context, b *Binding, value string) error {
	log := b.widgetLog(w.Name())
	log.Debug("Setting dropdown value", zap.String("value", value))
	var lastErr error
	for attempt := dropdownAttempts; attempt > 0; attempt-- {
		err := w.selectOnce(ctx, b, value, log)
		if err == nil {
			return nil
		}
		if !wait.IsTimeout(err) && !driver.IsTransient(err) {
			// ValueError and StateError are fatal, never retried.
			log.Error("Dropdown selection failed", zap.String("value", value), zap.Error(err))
			return err
		}
		lastErr = err
		if attempt > 1 {
			log.Warn("Failed to assign dropdown value; retrying",
				zap.String("value", value), zap.Error(err))
			if serr := retry.Sleep(ctx, b.retryDelay()); serr != nil {
				return serr
			}
		}
	}
	log.Error("Dropdown selection failed", zap.String("value", value), zap.Error(lastErr))
	return lastErr
}

func (w *DropdownSelector) selectOnce(ctx context.Context, b *Binding, value string, log *zap.Logger) error {
	if err := w.open(ctx, b); err != nil {
		return err
	}
	if err := retry.Sleep(ctx, w.populateDelay); err != nil {
		return err
	}
	if optLoc, ok := w.options[value]; ok {
		h, err := b.engine().Until(ctx, wait.Visible(optLoc), 0)
		if err != nil {
			return err
		}
		if err := b.Driver.ScrollIntoView(ctx, h); err != nil {
			return err
		}
		return h.Click(ctx)
	}
	if w.lookupCtx.IsZero() {
		return valueErrorf("illegal dropdown option %q; choose from %v", value, sortedKeys(w.options))
	}
	return w.matchDynamic(ctx, b, value, log)
}

// open clicks the dropdown trigger unless the lookup context is already
// showing.
func (w *DropdownSelector) open(ctx context.Context, b *Binding) error {
	if !w.lookupCtx.IsZero() {
		if h, err := b.Driver.LocateOne(ctx, w.lookupCtx); err == nil {
			if shown, derr := h.Displayed(ctx); derr == nil && shown {
				return nil
			}
		}
	}
	h, err := w.WaitUntilVisible(ctx, b, 0)
	if err != nil {
		return err
	}
	if err := b.Driver.ScrollIntoView(ctx, h); err != nil {
		return err
	}
	return h.Click(ctx)
}

// matchDynamic scans the lookup context's immediate children and requires
// exactly one whose markup matches the formatted pattern. Zero matches and
// multiple matches are both structural errors; ambiguity is never silently
// resolved.
func (w *DropdownSelector) matchDynamic(ctx context.Context, b *Binding, value string, log *zap.Logger) error {
	if _, err := b.engine().Until(ctx, wait.Present(w.lookupCtx), 0); err != nil {
		return err
	}
	children, err := w.lookupCtx.Children()
	if err != nil {
		return err
	}
	candidates, err := b.Driver.LocateMany(ctx, children)
	if err != nil {
		return err
	}
	pattern, err := regexp.Compile(formatPattern(w.lookupFormat, value))
	if err != nil {
		return valueErrorf("invalid dropdown pattern for value %q: %v", value, err)
	}
	var match driver.Handle
	var matchMarkup string
	for _, candidate := range candidates {
		markup, merr := candidate.Markup(ctx)
		if merr != nil {
			return merr
		}
		if !pattern.MatchString(markup) {
			continue
		}
		log.Debug("Matched dropdown option",
			zap.String("pattern", pattern.String()), zap.String("markup", markup))
		if match != nil {
			return stateErrorf("multiple matches for dropdown option found; try using a more specific regular expression:\n%s\n%s", matchMarkup, markup)
		}
		match = candidate
		matchMarkup = markup
	}
	if match == nil {
		return stateErrorf("no matches found for dropdown option %q with pattern %q; try using a less specific regular expression", value, pattern.String())
	}
	if err := b.Driver.ScrollIntoView(ctx, match); err != nil {
		return err
	}
	return match.Click(ctx)
}
