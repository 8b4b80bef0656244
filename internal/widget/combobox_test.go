package widget_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/widgetry/internal/driver"
	"github.com/xkilldash9x/widgetry/internal/driver/drivertest"
	"github.com/xkilldash9x/widgetry/internal/locator"
	"github.com/xkilldash9x/widgetry/internal/wait"
	"github.com/xkilldash9x/widgetry/internal/widget"
)

func TestComboBoxSetSelectsTopOption(t *testing.T) {
	cb, err := widget.NewComboBox(widget.Options{
		"xpath":            "//input",
		"lookup_ctx_xpath": "//ul",
		"populate_delay":   "0",
		"escape_delay":     "-1",
	})
	require.NoError(t, err)

	fake := drivertest.New()
	box := drivertest.NewElem("")
	fake.Set(locator.XPath("//input"), box)
	list := drivertest.NewElem("results")
	fake.Set(locator.XPath("//ul"), list)
	top := drivertest.NewElem("Go")
	fake.Set(locator.XPath("//ul/*[1]"), top)

	require.NoError(t, cb.Set(context.Background(), newBinding(t, fake), "Go"))
	assert.Equal(t, 1, top.ClickCount())
	assert.Contains(t, box.Typed, "Go")
}

func TestComboBoxEscapesAfterSelecting(t *testing.T) {
	cb, err := widget.NewComboBox(widget.Options{
		"xpath":            "//input",
		"lookup_ctx_xpath": "//ul",
		"populate_delay":   "0",
	})
	require.NoError(t, err)

	fake := drivertest.New()
	box := drivertest.NewElem("")
	fake.Set(locator.XPath("//input"), box)
	fake.Set(locator.XPath("//ul"), drivertest.NewElem("results"))
	top := drivertest.NewElem("Go")
	fake.Set(locator.XPath("//ul/*[1]"), top)

	require.NoError(t, cb.Set(context.Background(), newBinding(t, fake), "Go"))
	assert.Equal(t, 1, top.ClickCount())
	// The pulldown was still showing, so it gets an escape keypress.
	assert.Contains(t, box.Keys, driver.KeyEscape)
}

func TestComboBoxNoLookupContextSubmitsRaw(t *testing.T) {
	cb, err := widget.NewComboBox(widget.Options{"xpath": "//input"})
	require.NoError(t, err)

	fake := drivertest.New()
	box := drivertest.NewElem("")
	fake.Set(locator.XPath("//input"), box)

	require.NoError(t, cb.Set(context.Background(), newBinding(t, fake), "raw text"))
	assert.Contains(t, box.Typed, "raw text")
	assert.Contains(t, box.Keys, driver.KeyEnter)
}

func TestComboBoxMultiselectClearsCountedSelections(t *testing.T) {
	cb, err := widget.NewComboBox(widget.Options{
		"xpath":               "//input",
		"lookup_ctx_xpath":    "//ul",
		"multiselect_counter": "//li[@class='chip']",
		"populate_delay":      "0",
		"escape_delay":        "-1",
	})
	require.NoError(t, err)

	fake := drivertest.New()
	box := drivertest.NewElem("")
	fake.Set(locator.XPath("//input"), box)
	fake.Set(locator.XPath("//li[@class='chip']"),
		drivertest.NewElem("a"), drivertest.NewElem("b"))
	fake.Set(locator.XPath("//ul"), drivertest.NewElem("results"))
	fake.Set(locator.XPath("//ul/*[1]"), drivertest.NewElem("c"))

	require.NoError(t, cb.Set(context.Background(), newBinding(t, fake), "c"))
	backspaces := 0
	for _, key := range box.Keys {
		if key == driver.KeyBackspace {
			backspaces++
		}
	}
	assert.Equal(t, 2, backspaces, "one backspace per existing selection")
}

func TestComboBoxLoadingNeverResolves(t *testing.T) {
	cb, err := widget.NewComboBox(widget.Options{
		"xpath":            "//input",
		"lookup_ctx_xpath": "//ul",
		"populate_delay":   "0",
		"escape_delay":     "-1",
	})
	require.NoError(t, err)

	fake := drivertest.New()
	box := drivertest.NewElem("")
	fake.Set(locator.XPath("//input"), box)
	fake.Set(locator.XPath("//ul"), drivertest.NewElem("results"))
	top := drivertest.NewElem("Loading...")
	fake.Set(locator.XPath("//ul/*[1]"), top)

	// The placeholder never resolves; each cycle waits the retry delay, so
	// this test deliberately takes a few seconds.
	err = cb.Set(context.Background(), newBinding(t, fake), "Go")
	require.Error(t, err)
	assert.True(t, wait.IsTimeout(err))
	assert.Equal(t, 0, top.ClickCount())
}

func TestComboBoxIgnoreSelections(t *testing.T) {
	cb, err := widget.NewComboBox(widget.Options{
		"xpath":             "//input",
		"lookup_ctx_xpath":  "//ul",
		"ignore_selections": "true",
		"populate_delay":    "0",
		"escape_delay":      "-1",
	})
	require.NoError(t, err)

	fake := drivertest.New()
	box := drivertest.NewElem("")
	fake.Set(locator.XPath("//input"), box)
	fake.Set(locator.XPath("//ul"), drivertest.NewElem("results"))
	top := drivertest.NewElem("Go")
	fake.Set(locator.XPath("//ul/*[1]"), top)

	require.NoError(t, cb.Set(context.Background(), newBinding(t, fake), "Go"))
	assert.Equal(t, 0, top.ClickCount())
	assert.Contains(t, box.Keys, driver.KeyEnter)
}
