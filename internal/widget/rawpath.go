package widget

// KindRawPath is the RawPath kind key.
const KindRawPath = "raw_path"

// RawPath exposes a locator's raw value with no driver interaction. It is
// used for composing other widgets' configuration.
type RawPath struct {
	Element
}

// NewRawPath constructs a RawPath from its configuration mapping. RawPath
// takes a locator and nothing else.
func NewRawPath(opts Options) (*RawPath, error) {
	o := newOptions(KindRawPath, opts)
	loc, err := o.takeLocator()
	if err != nil {
		return nil, err
	}
	if err := o.finish(); err != nil {
		return nil, err
	}
	return &RawPath{Element: newElement(KindRawPath, loc)}, nil
}

// Get returns the raw locator value.
func (w *RawPath) Get() string {
	return w.Locator().Value
}
