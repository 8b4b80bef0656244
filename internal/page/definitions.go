// Package page loads declarative page definitions and binds their widget
// registries to a live driver session. A definition file names pages; each
// page names widgets; each widget is a kind plus its flat option mapping.
package page

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// WidgetDef is one widget declaration: its kind key and option mapping.
type WidgetDef struct {
	Kind    string            `yaml:"kind"`
	Options map[string]string `yaml:"options"`
}

// PageDef declares one page: its widgets and the optional page-level spinner
// consulted by navigation settling.
type PageDef struct {
	SpinnerXPath string               `yaml:"spinner_xpath"`
	Widgets      map[string]WidgetDef `yaml:"widgets"`
}

// Definitions is the root of a definition file.
type Definitions struct {
	Pages map[string]PageDef `yaml:"pages"`
}

// Parse decodes definitions from a reader. Unknown fields are rejected so a
// misspelled key fails loudly instead of silently dropping a widget.
func Parse(r io.Reader) (*Definitions, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var defs Definitions
	if err := dec.Decode(&defs); err != nil {
		return nil, fmt.Errorf("decoding page definitions: %w", err)
	}
	if len(defs.Pages) == 0 {
		return nil, fmt.Errorf("page definitions declare no pages")
	}
	for pageName, pd := range defs.Pages {
		if len(pd.Widgets) == 0 {
			return nil, fmt.Errorf("page %q declares no widgets", pageName)
		}
		for widgetName, wd := range pd.Widgets {
			if wd.Kind == "" {
				return nil, fmt.Errorf("page %q widget %q has no kind", pageName, widgetName)
			}
		}
	}
	return &defs, nil
}

// ParseFile decodes definitions from a YAML file.
func ParseFile(path string) (*Definitions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening page definitions: %w", err)
	}
	defer f.Close()
	return Parse(f)
}
