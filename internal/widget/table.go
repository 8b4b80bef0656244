package widget

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/xkilldash9x/widgetry/internal/driver"
	"github.com/xkilldash9x/widgetry/internal/locator"
	"github.com/xkilldash9x/widgetry/internal/wait"
)

// KindTableSelection is the TableSelection kind key.
const KindTableSelection = "table_selection"

// maxScrollAttempts bounds the scroll-and-retry discovery loop for
// virtualized tables.
const maxScrollAttempts = 10

// TableSelection binds a dynamic table by structure: one locator per logical
// column, aligned by match order. Row i of the table is the i-th match of
// every column locator; unequal match counts are a fatal state error.
//
// Options:
//
//	label_xpath            row identity column (required); its text keys rows
//	input_xpath            selected-state element per row
//	toggle_xpath           click target per row (both-or-neither with input)
//	info_xpath_<key>       extra column, matched positionally
//	option_rel_xpath_<key> extra column located relative to the row's label
//	                       element; a missing entry reads as absent
//	label_parse            regex whose first capture group keys the row
//	negative_element       indicator that the table is legitimately empty
//	scroll_el[_right]      scroller for lazily rendered tables; the _right
//	                       suffix scrolls horizontally
//	anonymous              key rows by synthetic index tag instead of label
type TableSelection struct {
	Element
	labels      locator.Locator
	inputs      locator.Locator
	toggles     locator.Locator
	infos       map[string]locator.Locator
	optionRels  map[string]locator.Locator
	labelParse  *regexp.Regexp
	negative    locator.Locator
	scroller    locator.Locator
	scrollRight bool
	anonymous   bool
}

// NewTableSelection constructs a TableSelection from its configuration
// mapping. The input/toggle pair must be configured together or not at all.
func NewTableSelection(opts Options) (*TableSelection, error) {
	o := newOptions(KindTableSelection, opts)
	loc, err := o.takeLocator()
	if err != nil {
		return nil, err
	}
	ts := &TableSelection{Element: newElement(KindTableSelection, loc)}
	ts.labels, _ = o.takeXPath("label_xpath")
	ts.inputs, _ = o.takeXPath("input_xpath")
	ts.toggles, _ = o.takeXPath("toggle_xpath")
	if ts.infos, err = o.takePrefixed("info_xpath_"); err != nil {
		return nil, err
	}
	if ts.optionRels, err = o.takePrefixed("option_rel_xpath_"); err != nil {
		return nil, err
	}
	if parse, ok := o.takeString("label_parse"); ok {
		if ts.labelParse, err = regexp.Compile(parse); err != nil {
			return nil, configErrorf(KindTableSelection, "invalid label_parse %q: %v", parse, err)
		}
	}
	ts.negative, _ = o.takeXPath("negative_element")
	if scroller, ok := o.takeXPath("scroll_el"); ok {
		ts.scroller = scroller
	} else if scroller, ok := o.takeXPath("scroll_el_right"); ok {
		ts.scroller = scroller
		ts.scrollRight = true
	}
	if ts.anonymous, err = o.takeBool("anonymous"); err != nil {
		return nil, err
	}
	if err := o.finish(); err != nil {
		return nil, err
	}
	if ts.labels.IsZero() {
		return nil, configErrorf(KindTableSelection, "label_xpath is required for table selections")
	}
	if ts.inputs.IsZero() != ts.toggles.IsZero() {
		return nil, configErrorf(KindTableSelection, "input and toggle xpaths must either both be provided or neither")
	}
	return ts, nil
}

// Table is an ephemeral per-read snapshot of the live table: an ordered
// mapping from row key to row. It is rebuilt from the DOM on every read and
// never cached, since the DOM mutates between reads.
type Table struct {
	rows  []*TableRow
	byKey map[string]*TableRow
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns the rows in index order.
func (t *Table) Rows() []*TableRow { return t.rows }

// Row looks a row up by its key.
func (t *Table) Row(key string) (*TableRow, bool) {
	r, ok := t.byKey[key]
	return r, ok
}

// At returns the row at the given index.
func (t *Table) At(i int) *TableRow { return t.rows[i] }

// Keys returns the row keys in index order.
func (t *Table) Keys() []string {
	keys := make([]string, len(t.rows))
	for i, r := range t.rows {
		keys[i] = r.Key
	}
	return keys
}

// TableRow is one row of a snapshot, bound to its index. Column values are
// re-located on access; the row never caches handles.
type TableRow struct {
	table *TableSelection
	// Idx is the row's position; column N's Idx-th match belongs to it.
	Idx int
	// Label is the (possibly regex-parsed) label text.
	Label string
	// Key is the lookup key: Label, or the synthetic index tag in
	// anonymous mode.
	Key string
}

// Read builds a fresh snapshot from the live DOM. Label elements are
// discovered (through the scroller loop when configured), each downstream
// column is aligned positionally, and duplicate row labels fail the read.
func (w *TableSelection) Read(ctx context.Context, b *Binding) (*Table, error) {
	log := b.widgetLog(w.Name())
	if w.anonymous {
		log.Debug("Constructing anonymous table selection")
	} else {
		log.Debug("Constructing table selection")
	}
	labels, err := w.findTableElements(ctx, b, w.labels)
	if err != nil {
		return nil, err
	}
	if err := w.checkAlignment(ctx, b, len(labels)); err != nil {
		log.Error("Table columns are misaligned", zap.Error(err))
		return nil, err
	}

	table := &Table{byKey: map[string]*TableRow{}}
	seen := map[string]int{}
	for idx, labelEl := range labels {
		if err := b.Driver.ScrollIntoView(ctx, labelEl); err != nil {
			return nil, err
		}
		raw, err := labelEl.Text(ctx)
		if err != nil {
			return nil, err
		}
		label := w.parseLabel(raw, log)
		if prev, dup := seen[label]; dup {
			serr := stateErrorf("encountered non-unique row label %q (rows %d and %d)", label, prev, idx)
			log.Error("Duplicate table row label", zap.Error(serr))
			return nil, serr
		}
		seen[label] = idx
		key := label
		if w.anonymous {
			key = fmt.Sprintf("<%d: %s>", idx, label)
		}
		row := &TableRow{table: w, Idx: idx, Label: label, Key: key}
		table.rows = append(table.rows, row)
		table.byKey[key] = row
		log.Debug("Table row", zap.Int("idx", idx), zap.String("label", label))
	}
	return table, nil
}

// parseLabel extracts the row key from the raw label text. A parse that
// fails falls back to the raw text with a warning, never an error.
func (w *TableSelection) parseLabel(raw string, log *zap.Logger) string {
	if w.labelParse == nil {
		return raw
	}
	groups := w.labelParse.FindStringSubmatch(raw)
	if len(groups) < 2 {
		log.Warn("Failed to parse table label, using original string",
			zap.String("label", raw), zap.String("pattern", w.labelParse.String()))
		return raw
	}
	return groups[1]
}

// checkAlignment verifies that every positionally bound column produces the
// same match count as the label column. The same index order underlies every
// column; a count mismatch means silent misbinding, so it is fatal.
func (w *TableSelection) checkAlignment(ctx context.Context, b *Binding, labelCount int) error {
	check := func(name string, loc locator.Locator) error {
		if loc.IsZero() {
			return nil
		}
		els, err := b.Driver.LocateMany(ctx, loc)
		if err != nil {
			return err
		}
		if len(els) != labelCount {
			return stateErrorf("row elements are misaligned: %d label matches but %d %s matches (locator %s)",
				labelCount, len(els), name, loc)
		}
		return nil
	}
	if err := check("input", w.inputs); err != nil {
		return err
	}
	if err := check("toggle", w.toggles); err != nil {
		return err
	}
	for _, key := range sortedKeys(w.infos) {
		if err := check("info_"+key, w.infos[key]); err != nil {
			return err
		}
	}
	return nil
}

// findTableElements locates a column's matches. Without a scroller a
// presence timeout reads as an empty table (with the configured negative
// indicator consulted for confirmation); with one, the scroller is clicked,
// reset to home, and nudged directionally until matches render.
func (w *TableSelection) findTableElements(ctx context.Context, b *Binding, loc locator.Locator) ([]driver.Handle, error) {
	log := b.widgetLog(w.Name())
	if w.scroller.IsZero() {
		els, err := b.engine().UntilMany(ctx, wait.AllPresent(loc), 0)
		if err != nil {
			if !wait.IsTimeout(err) {
				return nil, err
			}
			if w.confirmedEmpty(ctx, b) {
				log.Debug("Table empty indicator is showing")
			} else {
				log.Warn("Failed to find table elements, assuming empty table")
			}
			return nil, nil
		}
		return els, nil
	}

	scroller, err := b.engine().Until(ctx, wait.Clickable(w.scroller), 0)
	if err != nil {
		if wait.IsTimeout(err) {
			return nil, stateErrorf("failed to locate scroller element: %s", w.scroller)
		}
		return nil, err
	}
	if err := scroller.Click(ctx); err != nil {
		return nil, err
	}
	acts := b.Driver.Actions()
	if err := acts.SendKey(ctx, driver.KeyHome); err != nil {
		return nil, err
	}
	step := driver.KeyArrowDown
	if w.scrollRight {
		step = driver.KeyArrowRight
	}
	log.Debug("Finding table elements", zap.String("locator", loc.String()))
	for attempt := 0; attempt < maxScrollAttempts; attempt++ {
		els, err := b.Driver.LocateMany(ctx, loc)
		if err != nil {
			return nil, err
		}
		if len(els) > 0 {
			return els, nil
		}
		if err := acts.SendKey(ctx, step); err != nil {
			return nil, err
		}
	}
	return nil, stateErrorf("failed to scroll element into view in %d attempts", maxScrollAttempts)
}

// confirmedEmpty reports whether the configured empty-table indicator is
// currently showing.
func (w *TableSelection) confirmedEmpty(ctx context.Context, b *Binding) bool {
	if w.negative.IsZero() {
		return false
	}
	h, err := b.Driver.LocateOne(ctx, w.negative)
	if err != nil {
		return false
	}
	shown, err := h.Displayed(ctx)
	return err == nil && shown
}

// find re-locates a column and returns this row's positional match, scrolled
// into view.
func (r *TableRow) find(ctx context.Context, b *Binding, loc locator.Locator) (driver.Handle, error) {
	els, err := r.table.findTableElements(ctx, b, loc)
	if err != nil {
		return nil, err
	}
	if r.Idx >= len(els) {
		return nil, stateErrorf("row elements are misaligned, check construction on locator %s: %d matches, element index %d",
			loc, len(els), r.Idx)
	}
	el := els[r.Idx]
	if err := b.Driver.ScrollIntoView(ctx, el); err != nil {
		return nil, err
	}
	return el, nil
}

// IsSelected reads the row's selected state. Tables without an input
// locator do not support row selection.
func (r *TableRow) IsSelected(ctx context.Context, b *Binding) (bool, error) {
	if r.table.inputs.IsZero() {
		return false, valueErrorf("table does not allow row selection")
	}
	h, err := r.find(ctx, b, r.table.inputs)
	if err != nil {
		return false, err
	}
	return h.Selected(ctx)
}

// SetSelected drives the row's selection to the target state, clicking the
// toggle only on mismatch.
func (r *TableRow) SetSelected(ctx context.Context, b *Binding, selected bool) error {
	current, err := r.IsSelected(ctx, b)
	if err != nil {
		return err
	}
	if current == selected {
		return nil
	}
	h, err := r.find(ctx, b, r.table.toggles)
	if err != nil {
		return err
	}
	return h.Click(ctx)
}

// Info returns this row's entry in a named positional extra column.
func (r *TableRow) Info(ctx context.Context, b *Binding, key string) (driver.Handle, error) {
	loc, ok := r.table.infos[key]
	if !ok {
		return nil, valueErrorf("table has no info column %q", key)
	}
	return r.find(ctx, b, loc)
}

// OptionRel returns this row's entry in a named label-relative extra
// column, or nil when the entry does not exist for this row.
func (r *TableRow) OptionRel(ctx context.Context, b *Binding, key string) (driver.Handle, error) {
	loc, ok := r.table.optionRels[key]
	if !ok {
		return nil, valueErrorf("table has no option-relative column %q", key)
	}
	labelEl, err := r.find(ctx, b, r.table.labels)
	if err != nil {
		return nil, err
	}
	h, err := labelEl.Find(ctx, loc)
	if err != nil {
		if errors.Is(err, driver.ErrNotFound) {
			b.widgetLog(r.table.Name()).Warn("Couldn't find optional column entry in row",
				zap.String("column", key), zap.Int("idx", r.Idx))
			return nil, nil
		}
		return nil, err
	}
	return h, nil
}
