package widget_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/widgetry/internal/driver"
	"github.com/xkilldash9x/widgetry/internal/driver/drivertest"
	"github.com/xkilldash9x/widgetry/internal/locator"
	"github.com/xkilldash9x/widgetry/internal/widget"
)

func TestTableSelectionConstruction(t *testing.T) {
	tests := []struct {
		name    string
		opts    widget.Options
		wantErr bool
	}{
		{
			name: "label only",
			opts: widget.Options{"label_xpath": "//td[1]"},
		},
		{
			name: "full selection table",
			opts: widget.Options{
				"label_xpath":  "//td[1]",
				"input_xpath":  "//td[2]/input",
				"toggle_xpath": "//td[2]",
			},
		},
		{
			name:    "missing label",
			opts:    widget.Options{"input_xpath": "//td[2]/input", "toggle_xpath": "//td[2]"},
			wantErr: true,
		},
		{
			name:    "input without toggle",
			opts:    widget.Options{"label_xpath": "//td[1]", "input_xpath": "//td[2]/input"},
			wantErr: true,
		},
		{
			name:    "empty info suffix",
			opts:    widget.Options{"label_xpath": "//td[1]", "info_xpath_": "//td[3]"},
			wantErr: true,
		},
		{
			name:    "malformed label_parse",
			opts:    widget.Options{"label_xpath": "//td[1]", "label_parse": "[unclosed"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := widget.NewTableSelection(tt.opts)
			if tt.wantErr {
				var cerr *widget.ConfigError
				require.ErrorAs(t, err, &cerr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func labelTable(t *testing.T, opts widget.Options, labels ...string) (*widget.TableSelection, *drivertest.Fake, []*drivertest.Elem) {
	t.Helper()
	if opts == nil {
		opts = widget.Options{}
	}
	opts["label_xpath"] = "//td[@class='label']"
	ts, err := widget.NewTableSelection(opts)
	require.NoError(t, err)

	fake := drivertest.New()
	els := make([]*drivertest.Elem, len(labels))
	for i, label := range labels {
		els[i] = drivertest.NewElem(label)
	}
	fake.Set(locator.XPath("//td[@class='label']"), els...)
	return ts, fake, els
}

func TestTableSelectionRead(t *testing.T) {
	ts, fake, _ := labelTable(t, nil, "alpha", "beta", "gamma")

	table, err := ts.Read(context.Background(), newBinding(t, fake))
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
	if diff := cmp.Diff([]string{"alpha", "beta", "gamma"}, table.Keys()); diff != "" {
		t.Errorf("row keys mismatch (-want +got):\n%s", diff)
	}

	row, ok := table.Row("beta")
	require.True(t, ok)
	assert.Equal(t, 1, row.Idx)
	assert.Equal(t, "beta", row.Label)
	assert.Same(t, row, table.At(1))
}

func TestTableSelectionReadEmpty(t *testing.T) {
	ts, err := widget.NewTableSelection(widget.Options{"label_xpath": "//td"})
	require.NoError(t, err)

	table, err := ts.Read(context.Background(), newBinding(t, drivertest.New()))
	require.NoError(t, err)
	assert.Zero(t, table.Len())
}

func TestTableSelectionReadAnonymous(t *testing.T) {
	ts, fake, _ := labelTable(t, widget.Options{"anonymous": "true"}, "dup", "dup2")

	table, err := ts.Read(context.Background(), newBinding(t, fake))
	require.NoError(t, err)
	assert.Equal(t, []string{"<0: dup>", "<1: dup2>"}, table.Keys())
}

func TestTableSelectionLabelParse(t *testing.T) {
	ts, fake, _ := labelTable(t, widget.Options{"label_parse": `id=(\d+)`}, "row id=42 active", "unparseable")

	table, err := ts.Read(context.Background(), newBinding(t, fake))
	require.NoError(t, err)
	// A failed parse falls back to the raw label.
	assert.Equal(t, []string{"42", "unparseable"}, table.Keys())
}

func TestTableSelectionDuplicateLabels(t *testing.T) {
	ts, fake, _ := labelTable(t, nil, "same", "same")

	_, err := ts.Read(context.Background(), newBinding(t, fake))
	var serr *widget.StateError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Msg, "non-unique")
}

func TestTableSelectionMisalignedColumns(t *testing.T) {
	ts, fake, _ := labelTable(t, widget.Options{
		"input_xpath":  "//td/input",
		"toggle_xpath": "//td[@class='toggle']",
	}, "a", "b", "c")
	fake.Set(locator.XPath("//td/input"), drivertest.NewElem(""), drivertest.NewElem(""))
	fake.Set(locator.XPath("//td[@class='toggle']"),
		drivertest.NewElem(""), drivertest.NewElem(""), drivertest.NewElem(""))

	_, err := ts.Read(context.Background(), newBinding(t, fake))
	var serr *widget.StateError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Msg, "misaligned")
}

func TestTableRowSelection(t *testing.T) {
	ts, fake, _ := labelTable(t, widget.Options{
		"input_xpath":  "//td/input",
		"toggle_xpath": "//td[@class='toggle']",
	}, "a", "b")

	inputA, inputB := drivertest.NewElem(""), drivertest.NewElem("")
	toggleA, toggleB := drivertest.NewElem(""), drivertest.NewElem("")
	toggleB.OnClick = func(*drivertest.Elem) { inputB.IsSelected = !inputB.IsSelected }
	fake.Set(locator.XPath("//td/input"), inputA, inputB)
	fake.Set(locator.XPath("//td[@class='toggle']"), toggleA, toggleB)

	b := newBinding(t, fake)
	table, err := ts.Read(context.Background(), b)
	require.NoError(t, err)
	row, ok := table.Row("b")
	require.True(t, ok)

	selected, err := row.IsSelected(context.Background(), b)
	require.NoError(t, err)
	assert.False(t, selected)

	require.NoError(t, row.SetSelected(context.Background(), b, true))
	assert.Equal(t, 1, toggleB.ClickCount())
	assert.Equal(t, 0, toggleA.ClickCount())

	// Already selected: no further click.
	require.NoError(t, row.SetSelected(context.Background(), b, true))
	assert.Equal(t, 1, toggleB.ClickCount())
}

func TestTableRowSelectionUnsupported(t *testing.T) {
	ts, fake, _ := labelTable(t, nil, "a")

	b := newBinding(t, fake)
	table, err := ts.Read(context.Background(), b)
	require.NoError(t, err)

	_, err = table.At(0).IsSelected(context.Background(), b)
	var verr *widget.ValueError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Msg, "row selection")
}

func TestTableRowInfo(t *testing.T) {
	ts, fake, _ := labelTable(t, widget.Options{"info_xpath_status": "//td[@class='status']"}, "a", "b")
	statusA := drivertest.NewElem("active")
	statusB := drivertest.NewElem("expired")
	fake.Set(locator.XPath("//td[@class='status']"), statusA, statusB)

	b := newBinding(t, fake)
	table, err := ts.Read(context.Background(), b)
	require.NoError(t, err)

	h, err := table.At(1).Info(context.Background(), b, "status")
	require.NoError(t, err)
	text, err := h.Text(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "expired", text)

	_, err = table.At(1).Info(context.Background(), b, "owner")
	var verr *widget.ValueError
	require.ErrorAs(t, err, &verr)
}

func TestTableRowOptionRel(t *testing.T) {
	ts, fake, els := labelTable(t, widget.Options{"option_rel_xpath_delete": "./a[@class='delete']"}, "a", "b")
	del := drivertest.NewElem("x")
	els[0].Children = map[string]driver.Handle{
		locator.XPath("./a[@class='delete']").String(): del,
	}

	b := newBinding(t, fake)
	table, err := ts.Read(context.Background(), b)
	require.NoError(t, err)

	h, err := table.At(0).OptionRel(context.Background(), b, "delete")
	require.NoError(t, err)
	assert.Same(t, driver.Handle(del), h)

	// The second row has no delete anchor; that reads as absent, not an error.
	h, err = table.At(1).OptionRel(context.Background(), b, "delete")
	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestTableSelectionScroller(t *testing.T) {
	ts, err := widget.NewTableSelection(widget.Options{
		"label_xpath": "//td",
		"scroll_el":   "//div[@class='viewport']",
	})
	require.NoError(t, err)

	fake := drivertest.New()
	scroller := drivertest.NewElem("viewport")
	fake.Set(locator.XPath("//div[@class='viewport']"), scroller)
	row := drivertest.NewElem("late row")
	fake.Set(locator.XPath("//td"), row)

	table, terr := ts.Read(context.Background(), newBinding(t, fake))
	require.NoError(t, terr)
	assert.Equal(t, []string{"late row"}, table.Keys())
	assert.Equal(t, 1, scroller.ClickCount())
	assert.Contains(t, fake.ActionLog().Keys, driver.KeyHome)
}

func TestTableSelectionScrollerMissing(t *testing.T) {
	ts, err := widget.NewTableSelection(widget.Options{
		"label_xpath": "//td",
		"scroll_el":   "//div[@class='viewport']",
	})
	require.NoError(t, err)

	_, err = ts.Read(context.Background(), newBinding(t, drivertest.New()))
	var serr *widget.StateError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Msg, "scroller")
}

func TestTableSelectionScrollExhausted(t *testing.T) {
	ts, err := widget.NewTableSelection(widget.Options{
		"label_xpath": "//td",
		"scroll_el":   "//div[@class='viewport']",
	})
	require.NoError(t, err)

	fake := drivertest.New()
	fake.Set(locator.XPath("//div[@class='viewport']"), drivertest.NewElem("viewport"))

	_, err = ts.Read(context.Background(), newBinding(t, fake))
	var serr *widget.StateError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Msg, "failed to scroll")
}
