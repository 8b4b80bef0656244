package widget

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xkilldash9x/widgetry/internal/locator"
)

// Options is the flat configuration mapping a descriptor is constructed
// from. Keys are consumed as they are parsed; anything left over is an
// unknown option and fails construction.
type Options map[string]string

// options wraps an Options map with destructive take-style accessors.
type options struct {
	kind string
	m    map[string]string
}

func newOptions(kind string, opts Options) *options {
	m := make(map[string]string, len(opts))
	for k, v := range opts {
		m[k] = v
	}
	return &options{kind: kind, m: m}
}

// takeLocator removes the (at most one) locator-strategy key and returns the
// corresponding locator. More than one strategy key is a configuration
// error; none at all yields the zero locator, which some kinds allow.
func (o *options) takeLocator() (locator.Locator, error) {
	var keys []string
	for k := range o.m {
		if locator.IsLocatorKey(k) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return locator.Locator{}, nil
	}
	if len(keys) > 1 {
		sort.Strings(keys)
		return locator.Locator{}, configErrorf(o.kind, "a maximum of 1 locator is supported; got: %s", strings.Join(keys, ", "))
	}
	key := keys[0]
	val := o.m[key]
	delete(o.m, key)
	loc, err := locator.FromKey(key, val)
	if err != nil {
		return locator.Locator{}, configErrorf(o.kind, "%v", err)
	}
	return loc, nil
}

// takeXPath removes a kind-specific option whose value is an XPath.
func (o *options) takeXPath(key string) (locator.Locator, bool) {
	val, ok := o.m[key]
	if !ok {
		return locator.Locator{}, false
	}
	delete(o.m, key)
	return locator.XPath(val), true
}

func (o *options) takeString(key string) (string, bool) {
	val, ok := o.m[key]
	if ok {
		delete(o.m, key)
	}
	return val, ok
}

// takeBool removes a flag option. An empty value counts as true so that a
// bare YAML key enables the flag.
func (o *options) takeBool(key string) (bool, error) {
	val, ok := o.m[key]
	if !ok {
		return false, nil
	}
	delete(o.m, key)
	if val == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, configErrorf(o.kind, "option %q wants a boolean, got %q", key, val)
	}
	return b, nil
}

// takeSeconds removes a duration option expressed in seconds.
func (o *options) takeSeconds(key string, def time.Duration) (time.Duration, error) {
	val, ok := o.m[key]
	if !ok {
		return def, nil
	}
	delete(o.m, key)
	secs, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, configErrorf(o.kind, "option %q wants a number of seconds, got %q", key, val)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// takePrefixed removes every option starting with prefix and returns a map
// from the remaining suffix to an XPath locator. An empty suffix is a
// configuration error.
func (o *options) takePrefixed(prefix string) (map[string]locator.Locator, error) {
	out := map[string]locator.Locator{}
	for k, v := range o.m {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		suffix := strings.TrimPrefix(k, prefix)
		if suffix == "" {
			return nil, configErrorf(o.kind, "invalid option %q: missing key suffix", k)
		}
		out[suffix] = locator.XPath(v)
		delete(o.m, k)
	}
	return out, nil
}

// takeRemainingXPaths drains every leftover key as a name→XPath mapping.
// Used by the option-map kinds (dropdown, radio) where arbitrary keys name
// selectable options.
func (o *options) takeRemainingXPaths() map[string]locator.Locator {
	out := make(map[string]locator.Locator, len(o.m))
	for k, v := range o.m {
		out[k] = locator.XPath(v)
		delete(o.m, k)
	}
	return out
}

// finish fails construction if any unrecognized option keys remain.
func (o *options) finish() error {
	if len(o.m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(o.m))
	for k := range o.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return configErrorf(o.kind, "unknown %s option %q", o.kind, strings.Join(keys, ", "))
}

// sortedKeys is a small helper for deterministic option listings in errors.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
