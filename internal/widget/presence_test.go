package widget_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/widgetry/internal/driver/drivertest"
	"github.com/xkilldash9x/widgetry/internal/locator"
	"github.com/xkilldash9x/widgetry/internal/widget"
)

func TestPositiveElementAppears(t *testing.T) {
	pe, err := widget.NewPositiveElement(widget.Options{"xpath": "//banner"})
	require.NoError(t, err)

	fake := drivertest.New()
	loc := locator.XPath("//banner")
	time.AfterFunc(30*time.Millisecond, func() {
		fake.Set(loc, drivertest.NewElem("welcome"))
	})

	appeared, err := pe.Get(context.Background(), newBinding(t, fake))
	require.NoError(t, err)
	assert.True(t, appeared)
}

func TestPositiveElementTimeoutIsNotAnError(t *testing.T) {
	pe, err := widget.NewPositiveElement(widget.Options{"xpath": "//banner"})
	require.NoError(t, err)

	appeared, err := pe.Get(context.Background(), newBinding(t, drivertest.New()))
	require.NoError(t, err)
	assert.False(t, appeared)
}

func TestPositiveElementGroupAnyMatch(t *testing.T) {
	pg, err := widget.NewPositiveElementGroup(widget.Options{"xpath": "//toast"})
	require.NoError(t, err)

	fake := drivertest.New()
	hidden := drivertest.NewElem("stale toast")
	hidden.Shown = false
	fake.Set(locator.XPath("//toast"), hidden, drivertest.NewElem("saved"))

	appeared, err := pg.Get(context.Background(), newBinding(t, fake))
	require.NoError(t, err)
	assert.True(t, appeared)
}

func TestNegativeElementAlreadyGone(t *testing.T) {
	ne, err := widget.NewNegativeElement(widget.Options{"xpath": "//spinner"})
	require.NoError(t, err)

	gone, err := ne.Get(context.Background(), newBinding(t, drivertest.New()))
	require.NoError(t, err)
	assert.True(t, gone)
}

func TestNegativeElementDisappears(t *testing.T) {
	ne, err := widget.NewNegativeElement(widget.Options{"xpath": "//spinner"})
	require.NoError(t, err)

	fake := drivertest.New()
	el := drivertest.NewElem("loading")
	fake.Set(locator.XPath("//spinner"), el)
	time.AfterFunc(30*time.Millisecond, func() { el.SetShown(false) })

	gone, err := ne.Get(context.Background(), newBinding(t, fake))
	require.NoError(t, err)
	assert.True(t, gone)
}

func TestNegativeElementStays(t *testing.T) {
	ne, err := widget.NewNegativeElement(widget.Options{"xpath": "//spinner"})
	require.NoError(t, err)

	fake := drivertest.New()
	fake.Set(locator.XPath("//spinner"), drivertest.NewElem("loading"))

	gone, err := ne.Get(context.Background(), newBinding(t, fake))
	require.NoError(t, err)
	assert.False(t, gone)
}

func TestNegativeElementStaleCountsAsGone(t *testing.T) {
	ne, err := widget.NewNegativeElement(widget.Options{"xpath": "//spinner"})
	require.NoError(t, err)

	fake := drivertest.New()
	el := drivertest.NewElem("loading")
	el.Stale = true
	fake.Set(locator.XPath("//spinner"), el)

	gone, err := ne.Get(context.Background(), newBinding(t, fake))
	require.NoError(t, err)
	assert.True(t, gone)
}

func TestRawPathGet(t *testing.T) {
	rp, err := widget.NewRawPath(widget.Options{"xpath": "//section[@id='x']"})
	require.NoError(t, err)
	assert.Equal(t, "//section[@id='x']", rp.Get())
}
