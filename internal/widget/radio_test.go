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

func TestRadioSelectionSet(t *testing.T) {
	rs, err := widget.NewRadioSelection(widget.Options{
		"cash":   "//input[@value='cash']",
		"credit": "//input[@value='credit']",
	})
	require.NoError(t, err)

	fake := drivertest.New()
	cash := drivertest.NewElem("cash")
	credit := drivertest.NewElem("credit")
	fake.Set(locator.XPath("//input[@value='cash']"), cash)
	fake.Set(locator.XPath("//input[@value='credit']"), credit)

	b := newBinding(t, fake)
	assert.Empty(t, rs.Get(), "no selection before the first write")

	require.NoError(t, rs.Set(context.Background(), b, "credit"))
	assert.Equal(t, 1, credit.ClickCount())
	assert.Equal(t, 0, cash.ClickCount())
	assert.Equal(t, "credit", rs.Get())
	assert.Equal(t, locator.XPath("//input[@value='credit']"), rs.Current())
}

func TestRadioSelectionSetUnknownOption(t *testing.T) {
	rs, err := widget.NewRadioSelection(widget.Options{
		"cash":   "//input[@value='cash']",
		"credit": "//input[@value='credit']",
	})
	require.NoError(t, err)

	err = rs.Set(context.Background(), newBinding(t, drivertest.New()), "bitcoin")
	var verr *widget.ValueError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Msg, "cash")
	assert.Contains(t, verr.Msg, "credit")
	assert.Empty(t, rs.Get(), "a failed write leaves the recorded state untouched")
}

func TestRadioSelectionFailedClickNotRecorded(t *testing.T) {
	rs, err := widget.NewRadioSelection(widget.Options{
		"cash": "//input[@value='cash']",
	})
	require.NoError(t, err)

	fake := drivertest.New()
	cash := drivertest.NewElem("cash")
	cash.ClickErr = assert.AnError
	fake.Set(locator.XPath("//input[@value='cash']"), cash)

	err = rs.Set(context.Background(), newBinding(t, fake), "cash")
	require.Error(t, err)
	assert.Empty(t, rs.Get())
}
