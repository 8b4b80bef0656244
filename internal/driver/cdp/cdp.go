package cdp

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/xkilldash9x/widgetry/internal/driver"
	"github.com/xkilldash9x/widgetry/internal/locator"
)

// Driver implements driver.Driver against one browser tab.
type Driver struct {
	session context.Context
	log     *zap.Logger
}

// run executes chromedp actions on the session context while honoring the
// caller's cancellation. chromedp actions must run on the session's context
// chain, so the caller context is bridged in rather than passed down.
func (d *Driver) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithCancel(d.session)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	err := chromedp.Run(runCtx, actions...)
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	return err
}

// query translates a locator into a chromedp selector and query option.
func query(loc locator.Locator) (string, chromedp.QueryOption, error) {
	switch loc.Strategy {
	case locator.ByXPath:
		return loc.Value, chromedp.BySearch, nil
	case locator.ByCSS:
		return loc.Value, chromedp.ByQueryAll, nil
	case locator.ByID:
		return "#" + loc.Value, chromedp.ByQueryAll, nil
	case locator.ByName:
		return fmt.Sprintf("[name=%q]", loc.Value), chromedp.ByQueryAll, nil
	case locator.ByClassName:
		return "." + loc.Value, chromedp.ByQueryAll, nil
	case locator.ByTagName:
		return loc.Value, chromedp.ByQueryAll, nil
	case locator.ByLinkText:
		return fmt.Sprintf(`//a[normalize-space(.)=%q]`, loc.Value), chromedp.BySearch, nil
	case locator.ByPartialLinkText:
		return fmt.Sprintf(`//a[contains(., %q)]`, loc.Value), chromedp.BySearch, nil
	default:
		return "", nil, fmt.Errorf("unsupported locator strategy %q", loc.Strategy)
	}
}

// locate resolves a locator to zero or more DOM nodes without waiting.
func (d *Driver) locate(ctx context.Context, loc locator.Locator) ([]*cdp.Node, error) {
	sel, opt, err := query(loc)
	if err != nil {
		return nil, err
	}
	var nodes []*cdp.Node
	if err := d.run(ctx, chromedp.Nodes(sel, &nodes, opt, chromedp.AtLeast(0))); err != nil {
		return nil, mapErr("locate "+loc.String(), err)
	}
	return nodes, nil
}

// LocateOne resolves a locator to its first match.
func (d *Driver) LocateOne(ctx context.Context, loc locator.Locator) (driver.Handle, error) {
	nodes, err := d.locate(ctx, loc)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%s: %w", loc, driver.ErrNotFound)
	}
	return &handle{d: d, node: nodes[0]}, nil
}

// LocateMany resolves a locator to every match, in document order.
func (d *Driver) LocateMany(ctx context.Context, loc locator.Locator) ([]driver.Handle, error) {
	nodes, err := d.locate(ctx, loc)
	if err != nil {
		return nil, err
	}
	out := make([]driver.Handle, len(nodes))
	for i, n := range nodes {
		out[i] = &handle{d: d, node: n}
	}
	return out, nil
}

// ScrollIntoView centers the element in the viewport.
func (d *Driver) ScrollIntoView(ctx context.Context, h driver.Handle) error {
	hh, err := asHandle(h)
	if err != nil {
		return err
	}
	err = d.run(ctx, chromedp.ActionFunc(func(c context.Context) error {
		return dom.ScrollIntoViewIfNeeded().WithNodeID(hh.node.NodeID).Do(c)
	}))
	return mapErr("scroll into view", err)
}

// ExecuteScript calls a function declaration with the element bound as this.
func (d *Driver) ExecuteScript(ctx context.Context, script string, h driver.Handle) error {
	hh, err := asHandle(h)
	if err != nil {
		return err
	}
	return hh.call(ctx, script, nil)
}

// Actions returns the composite input dispatcher for this tab.
func (d *Driver) Actions() driver.Actions {
	return &actions{d: d}
}

func asHandle(h driver.Handle) (*handle, error) {
	hh, ok := h.(*handle)
	if !ok {
		return nil, fmt.Errorf("foreign handle type %T", h)
	}
	return hh, nil
}

// mapErr classifies chromedp/CDP failures into the driver error taxonomy.
// Node-identity failures mean the page re-rendered underneath us and the
// handle is stale.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if err == context.Canceled || err == context.DeadlineExceeded {
		return err
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "could not find node"),
		strings.Contains(msg, "no node with given id"),
		strings.Contains(msg, "node with given id does not belong"),
		strings.Contains(msg, "node is detached"):
		return fmt.Errorf("%s: %w: %v", op, driver.ErrStale, err)
	case strings.Contains(msg, "not visible"),
		strings.Contains(msg, "not clickable"),
		strings.Contains(msg, "has no content quads"),
		strings.Contains(msg, "element is not focusable"):
		return fmt.Errorf("%s: %w: %v", op, driver.ErrNotInteractable, err)
	}
	return driver.Wrap(op, err)
}

// handle implements driver.Handle over a resolved DOM node.
type handle struct {
	d    *Driver
	node *cdp.Node
}

func (h *handle) ids() []cdp.NodeID { return []cdp.NodeID{h.node.NodeID} }

// call invokes a function declaration with this element as the receiver and
// unmarshals the return value when res is non-nil.
func (h *handle) call(ctx context.Context, decl string, res interface{}) error {
	err := h.d.run(ctx, chromedp.ActionFunc(func(c context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(h.node.NodeID).Do(c)
		if err != nil {
			return err
		}
		return chromedp.CallFunctionOn(decl, res,
			func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
				return p.WithObjectID(obj.ObjectID)
			},
		).Do(c)
	}))
	return mapErr("call function", err)
}

func (h *handle) Text(ctx context.Context) (string, error) {
	var out string
	err := h.d.run(ctx, chromedp.Text(h.ids(), &out, chromedp.ByNodeID))
	return out, mapErr("text", err)
}

func (h *handle) Attribute(ctx context.Context, name string) (string, error) {
	// Properties like value diverge from attributes once the user types, so
	// read the live property first and fall back to the attribute map.
	var out string
	err := h.call(ctx, fmt.Sprintf(`function() {
		const v = this[%q];
		if (v !== undefined && v !== null) { return String(v); }
		return this.getAttribute(%q) ?? "";
	}`, name, name), &out)
	return out, err
}

func (h *handle) Markup(ctx context.Context) (string, error) {
	var out string
	err := h.d.run(ctx, chromedp.ActionFunc(func(c context.Context) error {
		html, err := dom.GetOuterHTML().WithNodeID(h.node.NodeID).Do(c)
		out = html
		return err
	}))
	return out, mapErr("outer html", err)
}

const displayedScript = `function() {
	if (!this.isConnected) { return false; }
	const style = window.getComputedStyle(this);
	if (style.display === 'none' || style.visibility === 'hidden') { return false; }
	const rect = this.getBoundingClientRect();
	return rect.width > 0 && rect.height > 0;
}`

func (h *handle) Displayed(ctx context.Context) (bool, error) {
	var out bool
	err := h.call(ctx, displayedScript, &out)
	return out, err
}

func (h *handle) Enabled(ctx context.Context) (bool, error) {
	var out bool
	err := h.call(ctx, `function() { return this.disabled !== true; }`, &out)
	return out, err
}

func (h *handle) Selected(ctx context.Context) (bool, error) {
	var out bool
	err := h.call(ctx, `function() {
		if (this.tagName === 'OPTION') { return this.selected === true; }
		return this.checked === true;
	}`, &out)
	return out, err
}

func (h *handle) Click(ctx context.Context) error {
	err := h.d.run(ctx, chromedp.MouseClickNode(h.node))
	return mapErr("click", err)
}

func (h *handle) SendKeys(ctx context.Context, text string) error {
	err := h.d.run(ctx, chromedp.SendKeys(h.ids(), text, chromedp.ByNodeID))
	return mapErr("send keys", err)
}

func (h *handle) SendKey(ctx context.Context, key driver.Key) error {
	seq, err := keySequence(key)
	if err != nil {
		return err
	}
	rerr := h.d.run(ctx, chromedp.SendKeys(h.ids(), seq, chromedp.ByNodeID))
	return mapErr("send key", rerr)
}

func (h *handle) Clear(ctx context.Context) error {
	err := h.d.run(ctx, chromedp.Clear(h.ids(), chromedp.ByNodeID))
	return mapErr("clear", err)
}

// Find resolves an XPath locator relative to this element by anchoring it at
// the element's absolute document path.
func (h *handle) Find(ctx context.Context, loc locator.Locator) (driver.Handle, error) {
	if loc.Strategy != locator.ByXPath {
		return nil, fmt.Errorf("relative lookup requires an xpath locator, got %s", loc.Strategy)
	}
	rel := strings.TrimPrefix(loc.Value, ".")
	if !strings.HasPrefix(rel, "/") {
		rel = "/" + rel
	}
	abs := locator.XPath(h.node.FullXPath() + rel)
	return h.d.LocateOne(ctx, abs)
}

// keySequence maps the abstract key names onto chromedp's keyboard encoding.
func keySequence(key driver.Key) (string, error) {
	switch key {
	case driver.KeyHome:
		return kb.Home, nil
	case driver.KeyEnd:
		return kb.End, nil
	case driver.KeyBackspace:
		return kb.Backspace, nil
	case driver.KeyEscape:
		return kb.Escape, nil
	case driver.KeyEnter:
		return kb.Enter, nil
	case driver.KeyArrowUp:
		return kb.ArrowUp, nil
	case driver.KeyArrowDown:
		return kb.ArrowDown, nil
	case driver.KeyArrowLeft:
		return kb.ArrowLeft, nil
	case driver.KeyArrowRight:
		return kb.ArrowRight, nil
	default:
		return "", fmt.Errorf("unsupported key %q", key)
	}
}

// actions implements driver.Actions with low-level input dispatch.
type actions struct {
	d *Driver
}

// center computes the centroid of the node's first content quad.
func center(c context.Context, node *cdp.Node) (float64, float64, error) {
	quads, err := dom.GetContentQuads().WithNodeID(node.NodeID).Do(c)
	if err != nil {
		return 0, 0, err
	}
	if len(quads) == 0 || len(quads[0]) < 8 {
		return 0, 0, fmt.Errorf("node has no content quads: %w", driver.ErrNotInteractable)
	}
	q := quads[0]
	x := (q[0] + q[2] + q[4] + q[6]) / 4
	y := (q[1] + q[3] + q[5] + q[7]) / 4
	return x, y, nil
}

func (a *actions) mouse(ctx context.Context, h driver.Handle, kind input.MouseType, button input.MouseButton) error {
	hh, err := asHandle(h)
	if err != nil {
		return err
	}
	rerr := a.d.run(ctx, chromedp.ActionFunc(func(c context.Context) error {
		x, y, err := center(c, hh.node)
		if err != nil {
			return err
		}
		p := input.DispatchMouseEvent(kind, x, y).WithButton(button)
		if kind == input.MousePressed || kind == input.MouseReleased {
			p = p.WithClickCount(1)
		}
		return p.Do(c)
	}))
	return mapErr("mouse "+string(kind), rerr)
}

func (a *actions) Hold(ctx context.Context, h driver.Handle) error {
	if err := a.mouse(ctx, h, input.MouseMoved, input.None); err != nil {
		return err
	}
	return a.mouse(ctx, h, input.MousePressed, input.Left)
}

func (a *actions) MoveTo(ctx context.Context, h driver.Handle) error {
	return a.mouse(ctx, h, input.MouseMoved, input.Left)
}

func (a *actions) Release(ctx context.Context, h driver.Handle) error {
	return a.mouse(ctx, h, input.MouseReleased, input.Left)
}

func (a *actions) Hover(ctx context.Context, h driver.Handle) error {
	return a.mouse(ctx, h, input.MouseMoved, input.None)
}

// SendKeys types into whatever currently holds focus.
func (a *actions) SendKeys(ctx context.Context, text string) error {
	err := a.d.run(ctx, chromedp.SendKeys("document.activeElement", text, chromedp.ByJSPath))
	return mapErr("send keys", err)
}

func (a *actions) SendKey(ctx context.Context, key driver.Key) error {
	seq, err := keySequence(key)
	if err != nil {
		return err
	}
	rerr := a.d.run(ctx, chromedp.SendKeys("document.activeElement", seq, chromedp.ByJSPath))
	return mapErr("send key", rerr)
}
