package widget

import (
	"context"
	"sort"
)

// Capability interfaces. Callers that only know a widget's name assert the
// capability they need; a widget that lacks it fails with a typed error
// rather than silently reading an attribute nobody declared.
type (
	// BoolReader reads an on/off state (checkbox, toggle, presence checks).
	BoolReader interface {
		Widget
		Get(ctx context.Context, b *Binding) (bool, error)
	}

	// BoolWriter drives an on/off state.
	BoolWriter interface {
		Widget
		Set(ctx context.Context, b *Binding, on bool) error
	}

	// StringReader reads a textual value from the live page.
	StringReader interface {
		Widget
		Get(ctx context.Context, b *Binding) (string, error)
	}

	// StringWriter assigns a textual value.
	StringWriter interface {
		Widget
		Set(ctx context.Context, b *Binding, value string) error
	}

	// MultiWriter assigns several values in order (multi-select combobox).
	MultiWriter interface {
		Widget
		Set(ctx context.Context, b *Binding, values ...string) error
	}

	// Clicker is a widget whose primary operation is a guarded click.
	Clicker interface {
		Widget
		Click(ctx context.Context, b *Binding) error
	}

	// TableReader snapshots tabular structure.
	TableReader interface {
		Widget
		Read(ctx context.Context, b *Binding) (*Table, error)
	}

	// StaticReader reads without touching the page (radio last-write,
	// raw paths).
	StaticReader interface {
		Widget
		Get() string
	}
)

// Factory constructs a widget kind from its configuration mapping.
type Factory func(Options) (Widget, error)

// factories maps kind keys to constructors. Wrapping is needed because each
// constructor returns its concrete type.
var factories = map[string]Factory{
	KindPageElement:          func(o Options) (Widget, error) { return NewPageElement(o) },
	KindPageElementGroup:     func(o Options) (Widget, error) { return NewPageElementGroup(o) },
	KindButton:               func(o Options) (Widget, error) { return NewButton(o) },
	KindCheckbox:             func(o Options) (Widget, error) { return NewCheckbox(o) },
	KindToggledElement:       func(o Options) (Widget, error) { return NewToggledElement(o) },
	KindTextBox:              func(o Options) (Widget, error) { return NewTextBox(o) },
	KindComboBox:             func(o Options) (Widget, error) { return NewComboBox(o) },
	KindDropdownSelector:     func(o Options) (Widget, error) { return NewDropdownSelector(o) },
	KindRadioSelection:       func(o Options) (Widget, error) { return NewRadioSelection(o) },
	KindTableSelection:       func(o Options) (Widget, error) { return NewTableSelection(o) },
	KindTabPager:             func(o Options) (Widget, error) { return NewTabPager(o) },
	KindPositiveElement:      func(o Options) (Widget, error) { return NewPositiveElement(o) },
	KindPositiveElementGroup: func(o Options) (Widget, error) { return NewPositiveElementGroup(o) },
	KindNegativeElement:      func(o Options) (Widget, error) { return NewNegativeElement(o) },
	KindRawPath:              func(o Options) (Widget, error) { return NewRawPath(o) },
}

// Kinds returns the registered kind keys, sorted.
func Kinds() []string {
	return sortedKeys(factories)
}

// New constructs a widget of the named kind.
func New(kind string, opts Options) (Widget, error) {
	factory, ok := factories[kind]
	if !ok {
		return nil, configErrorf(kind, "unknown widget kind %q; choose from %v", kind, Kinds())
	}
	return factory(opts)
}

// named is satisfied by every kind via its Element or Group embed.
type named interface {
	setName(name string)
}

// Registry holds a page context's widgets by attribute name. Lookups of
// unknown names fail with a NameError carrying the context identity, so a
// typo'd attribute is always attributable to its page.
type Registry struct {
	context string
	widgets map[string]Widget
}

// NewRegistry creates an empty registry for the named page context.
func NewRegistry(context string) *Registry {
	return &Registry{context: context, widgets: map[string]Widget{}}
}

// Context returns the owning page context's name.
func (r *Registry) Context() string { return r.context }

// Add registers a widget under an attribute name, stamping the name onto the
// widget for log attribution. Re-registering a name is a caller error.
func (r *Registry) Add(name string, w Widget) error {
	if name == "" {
		return valueErrorf("widget name must not be empty")
	}
	if _, exists := r.widgets[name]; exists {
		return valueErrorf("widget %q is already registered in %q", name, r.context)
	}
	if n, ok := w.(named); ok {
		n.setName(name)
	}
	r.widgets[name] = w
	return nil
}

// Get returns the named widget.
func (r *Registry) Get(name string) (Widget, error) {
	w, ok := r.widgets[name]
	if !ok {
		return nil, &NameError{Context: r.context, Name: name}
	}
	return w, nil
}

// Names returns the registered attribute names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.widgets))
	for name := range r.widgets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered widgets.
func (r *Registry) Len() int { return len(r.widgets) }

// GetString reads the named widget's string value, requiring the
// StringReader capability.
func (r *Registry) GetString(ctx context.Context, b *Binding, name string) (string, error) {
	w, err := r.Get(name)
	if err != nil {
		return "", err
	}
	reader, ok := w.(StringReader)
	if !ok {
		return "", valueErrorf("widget %q (%s) in %q is not readable as a string", name, w.Kind(), r.context)
	}
	return reader.Get(ctx, b)
}

// SetString assigns the named widget's string value, requiring the
// StringWriter capability.
func (r *Registry) SetString(ctx context.Context, b *Binding, name, value string) error {
	w, err := r.Get(name)
	if err != nil {
		return err
	}
	writer, ok := w.(StringWriter)
	if !ok {
		return valueErrorf("widget %q (%s) in %q is not writable as a string", name, w.Kind(), r.context)
	}
	return writer.Set(ctx, b, value)
}

// GetBool reads the named widget's boolean state, requiring the BoolReader
// capability.
func (r *Registry) GetBool(ctx context.Context, b *Binding, name string) (bool, error) {
	w, err := r.Get(name)
	if err != nil {
		return false, err
	}
	reader, ok := w.(BoolReader)
	if !ok {
		return false, valueErrorf("widget %q (%s) in %q is not readable as a boolean", name, w.Kind(), r.context)
	}
	return reader.Get(ctx, b)
}

// SetBool drives the named widget's boolean state, requiring the BoolWriter
// capability.
func (r *Registry) SetBool(ctx context.Context, b *Binding, name string, on bool) error {
	w, err := r.Get(name)
	if err != nil {
		return err
	}
	writer, ok := w.(BoolWriter)
	if !ok {
		return valueErrorf("widget %q (%s) in %q is not writable as a boolean", name, w.Kind(), r.context)
	}
	return writer.Set(ctx, b, on)
}

// Click clicks the named widget, requiring the Clicker capability.
func (r *Registry) Click(ctx context.Context, b *Binding, name string) error {
	w, err := r.Get(name)
	if err != nil {
		return err
	}
	clicker, ok := w.(Clicker)
	if !ok {
		return valueErrorf("widget %q (%s) in %q is not clickable", name, w.Kind(), r.context)
	}
	return clicker.Click(ctx, b)
}
