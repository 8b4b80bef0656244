// Package locator models the (strategy, value) pairs that identify remote
// elements. A Locator is an immutable value; equality is structural.
package locator

import "fmt"

// Strategy enumerates the supported element location strategies.
type Strategy string

const (
	ByID              Strategy = "id"
	ByName            Strategy = "name"
	ByCSS             Strategy = "css selector"
	ByXPath           Strategy = "xpath"
	ByLinkText        Strategy = "link text"
	ByPartialLinkText Strategy = "partial link text"
	ByTagName         Strategy = "tag name"
	ByClassName       Strategy = "class name"
)

// keyMapping translates descriptor option keys to strategies. Several keys
// are aliases for the same strategy, mirroring common shorthand.
var keyMapping = map[string]Strategy{
	"class":             ByClassName,
	"class_name":        ByClassName,
	"css":               ByCSS,
	"css_selector":      ByCSS,
	"id":                ByID,
	"link":              ByLinkText,
	"link_text":         ByLinkText,
	"name":              ByName,
	"partial_link":      ByPartialLinkText,
	"partial_link_text": ByPartialLinkText,
	"tag":               ByTagName,
	"tag_name":          ByTagName,
	"xpath":             ByXPath,
}

// Locator identifies zero, one, or many remote elements.
type Locator struct {
	Strategy Strategy
	Value    string
}

// New builds a Locator from a strategy and value.
func New(strategy Strategy, value string) Locator {
	return Locator{Strategy: strategy, Value: value}
}

// XPath is shorthand for an XPath locator, the strategy every kind-specific
// descriptor option uses.
func XPath(value string) Locator {
	return Locator{Strategy: ByXPath, Value: value}
}

// IsZero reports whether l is the zero Locator (no strategy configured).
func (l Locator) IsZero() bool {
	return l.Strategy == "" && l.Value == ""
}

func (l Locator) String() string {
	return fmt.Sprintf("%s=%q", string(l.Strategy), l.Value)
}

// IsLocatorKey reports whether a descriptor option key names a location
// strategy.
func IsLocatorKey(key string) bool {
	_, ok := keyMapping[key]
	return ok
}

// FromKey builds a Locator from a descriptor option key and its value.
func FromKey(key, value string) (Locator, error) {
	strategy, ok := keyMapping[key]
	if !ok {
		return Locator{}, fmt.Errorf("unknown locator key %q", key)
	}
	return Locator{Strategy: strategy, Value: value}, nil
}

// Children returns a locator matching the immediate children of an XPath
// locator. Only XPath locators support structural composition.
func (l Locator) Children() (Locator, error) {
	if l.Strategy != ByXPath {
		return Locator{}, fmt.Errorf("children lookup requires an xpath locator, got %s", l.Strategy)
	}
	return XPath(l.Value + "/*"), nil
}

// FirstChild returns a locator matching the first immediate child of an
// XPath locator.
func (l Locator) FirstChild() (Locator, error) {
	if l.Strategy != ByXPath {
		return Locator{}, fmt.Errorf("first-child lookup requires an xpath locator, got %s", l.Strategy)
	}
	return XPath(l.Value + "/*[1]"), nil
}
