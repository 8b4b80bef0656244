package page

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/widgetry/internal/driver"
	"github.com/xkilldash9x/widgetry/internal/locator"
	"github.com/xkilldash9x/widgetry/internal/widget"
)

// Book holds every constructed page registry from one definition set.
// Construction validates all descriptors up front, so a bad option surfaces
// at load time with page and widget identity rather than mid-run.
type Book struct {
	pages map[string]*pageEntry
}

type pageEntry struct {
	registry *widget.Registry
	spinner  locator.Locator
}

// Build constructs registries for every defined page.
func Build(defs *Definitions) (*Book, error) {
	book := &Book{pages: map[string]*pageEntry{}}
	for pageName, pd := range defs.Pages {
		reg := widget.NewRegistry(pageName)
		for widgetName, wd := range pd.Widgets {
			w, err := widget.New(wd.Kind, widget.Options(wd.Options))
			if err != nil {
				return nil, fmt.Errorf("page %q widget %q: %w", pageName, widgetName, err)
			}
			if err := reg.Add(widgetName, w); err != nil {
				return nil, fmt.Errorf("page %q widget %q: %w", pageName, widgetName, err)
			}
		}
		entry := &pageEntry{registry: reg}
		if pd.SpinnerXPath != "" {
			entry.spinner = locator.XPath(pd.SpinnerXPath)
		}
		book.pages[pageName] = entry
	}
	return book, nil
}

// Names returns the defined page names, unsorted.
func (bk *Book) Names() []string {
	names := make([]string, 0, len(bk.pages))
	for name := range bk.pages {
		names = append(names, name)
	}
	return names
}

// BindOptions carries the per-session tuning a page is bound with.
type BindOptions struct {
	// Timeout is the default element wait budget; zero means 10s.
	Timeout time.Duration
	// Interval overrides the polling step.
	Interval time.Duration
	// RetryDelay overrides the pause between action retries.
	RetryDelay time.Duration
	Log        *zap.Logger
}

// Open binds the named page's registry to a driver session. Each open page
// carries a unique instance id so concurrent sessions against the same page
// definition stay distinguishable in logs.
func (bk *Book) Open(name string, drv driver.Driver, opts BindOptions) (*Page, error) {
	entry, ok := bk.pages[name]
	if !ok {
		return nil, &widget.NameError{Context: "page definitions", Name: name}
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()[:8]
	p := &Page{
		name:       name,
		id:         id,
		registry:   entry.registry,
		spinner:    entry.spinner,
		drv:        drv,
		timeout:    opts.Timeout,
		interval:   opts.Interval,
		retryDelay: opts.RetryDelay,
		log:        log.Named("page"),
	}
	p.log.Debug("Opened page", zap.String("page", name), zap.String("instance", id))
	return p, nil
}

// Page is one bound page context: a registry plus the driver, budgets, and
// logger its widgets operate with.
type Page struct {
	name       string
	id         string
	registry   *widget.Registry
	spinner    locator.Locator
	drv        driver.Driver
	timeout    time.Duration
	interval   time.Duration
	retryDelay time.Duration
	log        *zap.Logger
}

// Name returns the page's definition name.
func (p *Page) Name() string { return p.name }

// ID returns the bound instance id.
func (p *Page) ID() string { return p.id }

// Widget resolves a named widget.
func (p *Page) Widget(name string) (widget.Widget, error) {
	return p.registry.Get(name)
}

// Widgets returns the page's attribute names, sorted.
func (p *Page) Widgets() []string { return p.registry.Names() }

// WithTimeout returns a view of the page whose operations use the given wait
// budget, leaving the receiver untouched. Mirrors a one-off timed lookup.
func (p *Page) WithTimeout(timeout time.Duration) *Page {
	clone := *p
	clone.timeout = timeout
	return &clone
}

// Binding builds the per-call binding widget operations take.
func (p *Page) Binding() *widget.Binding {
	return &widget.Binding{
		Context:    fmt.Sprintf("%s[%s]", p.name, p.id),
		Driver:     p.drv,
		Timeout:    p.timeout,
		Interval:   p.interval,
		RetryDelay: p.retryDelay,
		Log:        p.log,
		Spinner:    p.spinner,
		Lookup:     p.registry.Get,
	}
}

// GetString reads a named widget's string value.
func (p *Page) GetString(ctx context.Context, name string) (string, error) {
	return p.registry.GetString(ctx, p.Binding(), name)
}

// SetString assigns a named widget's string value.
func (p *Page) SetString(ctx context.Context, name, value string) error {
	return p.registry.SetString(ctx, p.Binding(), name, value)
}

// GetBool reads a named widget's boolean state.
func (p *Page) GetBool(ctx context.Context, name string) (bool, error) {
	return p.registry.GetBool(ctx, p.Binding(), name)
}

// SetBool drives a named widget's boolean state.
func (p *Page) SetBool(ctx context.Context, name string, on bool) error {
	return p.registry.SetBool(ctx, p.Binding(), name, on)
}

// Click clicks a named widget.
func (p *Page) Click(ctx context.Context, name string) error {
	return p.registry.Click(ctx, p.Binding(), name)
}
