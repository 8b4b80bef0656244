package driver

import (
	"errors"
	"fmt"
)

// Sentinel failure classes surfaced by backends. Widgets classify retry
// eligibility through IsTransient rather than matching backend errors.
var (
	// ErrNotFound reports that a locator matched nothing.
	ErrNotFound = errors.New("element not found")

	// ErrStale reports that a handle no longer corresponds to a live node.
	ErrStale = errors.New("element is stale or detached from the document")

	// ErrNotInteractable reports that an element cannot currently receive
	// input (hidden, covered, or zero-sized).
	ErrNotInteractable = errors.New("element is not interactable")
)

// Error wraps a generic backend fault. It is transient for retry purposes.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("driver: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap tags a backend fault with the operation that produced it.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// IsTransient reports whether an error belongs to the retryable class:
// stale references, non-interactable elements, and generic driver faults.
// Not-found is deliberately excluded; absence is a condition the wait engine
// polls for, not a fault to retry blindly.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrStale) || errors.Is(err, ErrNotInteractable) {
		return true
	}
	var derr *Error
	return errors.As(err, &derr)
}
