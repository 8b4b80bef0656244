package widget_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/widgetry/internal/driver/drivertest"
	"github.com/xkilldash9x/widgetry/internal/locator"
	"github.com/xkilldash9x/widgetry/internal/widget"
)

func TestToggledElementConstruction(t *testing.T) {
	tests := []struct {
		name    string
		opts    widget.Options
		wantErr bool
	}{
		{
			name: "positive indicator",
			opts: widget.Options{"xpath": "//sw", "positive_element_xpath": "//on"},
		},
		{
			name: "negative indicator",
			opts: widget.Options{"xpath": "//sw", "negative_element_xpath": "//off"},
		},
		{
			name:    "no indicator",
			opts:    widget.Options{"xpath": "//sw"},
			wantErr: true,
		},
		{
			name: "both indicators",
			opts: widget.Options{
				"xpath":                  "//sw",
				"positive_element_xpath": "//on",
				"negative_element_xpath": "//off",
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := widget.NewToggledElement(tt.opts)
			if tt.wantErr {
				var cerr *widget.ConfigError
				require.ErrorAs(t, err, &cerr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestToggledElementGetPositive(t *testing.T) {
	te, err := widget.NewToggledElement(widget.Options{
		"xpath":                  "//sw",
		"positive_element_xpath": "//on",
	})
	require.NoError(t, err)

	fake := drivertest.New()
	b := newBinding(t, fake)

	// Indicator absent: off.
	on, err := te.Get(context.Background(), b)
	require.NoError(t, err)
	assert.False(t, on)

	// Indicator visible: on.
	fake.Set(locator.XPath("//on"), drivertest.NewElem("on"))
	on, err = te.Get(context.Background(), b)
	require.NoError(t, err)
	assert.True(t, on)
}

func TestToggledElementGetNegative(t *testing.T) {
	te, err := widget.NewToggledElement(widget.Options{
		"xpath":                  "//sw",
		"negative_element_xpath": "//off",
	})
	require.NoError(t, err)

	fake := drivertest.New()
	b := newBinding(t, fake)

	// Negative indicator absent: on.
	on, err := te.Get(context.Background(), b)
	require.NoError(t, err)
	assert.True(t, on)

	// Negative indicator visible: off.
	fake.Set(locator.XPath("//off"), drivertest.NewElem("off"))
	on, err = te.Get(context.Background(), b)
	require.NoError(t, err)
	assert.False(t, on)
}

func TestToggledElementSetIdempotent(t *testing.T) {
	te, err := widget.NewToggledElement(widget.Options{
		"xpath":                  "//sw",
		"positive_element_xpath": "//on",
	})
	require.NoError(t, err)

	fake := drivertest.New()
	sw := drivertest.NewElem("switch")
	fake.Set(locator.XPath("//sw"), sw)
	fake.Set(locator.XPath("//on"), drivertest.NewElem("on"))

	require.NoError(t, te.Set(context.Background(), newBinding(t, fake), true))
	assert.Equal(t, 0, sw.ClickCount())
}

func TestToggledElementSetClicksOnMismatch(t *testing.T) {
	te, err := widget.NewToggledElement(widget.Options{
		"xpath":                  "//sw",
		"positive_element_xpath": "//on",
	})
	require.NoError(t, err)

	fake := drivertest.New()
	sw := drivertest.NewElem("switch")
	sw.OnClick = func(*drivertest.Elem) {
		fake.Set(locator.XPath("//on"), drivertest.NewElem("on"))
	}
	fake.Set(locator.XPath("//sw"), sw)

	b := newBinding(t, fake)
	require.NoError(t, te.Set(context.Background(), b, true))
	assert.Equal(t, 1, sw.ClickCount())

	on, err := te.Get(context.Background(), b)
	require.NoError(t, err)
	assert.True(t, on)
}

func TestToggledElementAltToggle(t *testing.T) {
	te, err := widget.NewToggledElement(widget.Options{
		"xpath":                  "//sw",
		"alt_toggle_xpath":       "//sw-off",
		"positive_element_xpath": "//on",
	})
	require.NoError(t, err)

	fake := drivertest.New()
	sw := drivertest.NewElem("switch")
	alt := drivertest.NewElem("switch off")
	fake.Set(locator.XPath("//sw"), sw)
	fake.Set(locator.XPath("//sw-off"), alt)
	fake.Set(locator.XPath("//on"), drivertest.NewElem("on"))

	require.NoError(t, te.Set(context.Background(), newBinding(t, fake), false))
	assert.Equal(t, 1, alt.ClickCount())
	assert.Equal(t, 0, sw.ClickCount())
}
