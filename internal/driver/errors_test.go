package driver

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"stale", ErrStale, true},
		{"not interactable", ErrNotInteractable, true},
		{"wrapped stale", fmt.Errorf("clicking: %w", ErrStale), true},
		{"generic driver fault", Wrap("click", errors.New("ws closed")), true},
		{"not found", ErrNotFound, false},
		{"wrapped not found", fmt.Errorf("locating: %w", ErrNotFound), false},
		{"unrelated", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap("noop", nil))

	cause := errors.New("target crashed")
	err := Wrap("navigate", cause)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "navigate")

	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "navigate", derr.Op)
}
