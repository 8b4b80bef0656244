package widget

import "fmt"

// ConfigError reports invalid or unknown descriptor configuration. It is
// raised at construction time, before any driver interaction, and is never
// retried.
type ConfigError struct {
	Kind string
	Msg  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s config: %s", e.Kind, e.Msg)
}

func configErrorf(kind, format string, args ...any) *ConfigError {
	return &ConfigError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// ValueError reports caller misuse: an unknown option name, an assignment of
// the wrong shape, an operation a kind does not support.
type ValueError struct {
	Msg string
}

func (e *ValueError) Error() string { return e.Msg }

func valueErrorf(format string, args ...any) *ValueError {
	return &ValueError{Msg: fmt.Sprintf(format, args...)}
}

// StateError reports a violated structural invariant: ambiguous matches,
// misaligned table columns, duplicate row labels, a disabled control
// clicked, a stalled pager. Always fatal, never downgraded.
type StateError struct {
	Msg string
}

func (e *StateError) Error() string { return e.Msg }

func stateErrorf(format string, args ...any) *StateError {
	return &StateError{Msg: fmt.Sprintf(format, args...)}
}

// NameError reports a lookup of a widget name the registry does not know.
type NameError struct {
	Context string
	Name    string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("no element named %q in group %q", e.Name, e.Context)
}
