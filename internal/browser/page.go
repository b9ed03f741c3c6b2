package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/goapply/goapply/internal/dom"
)

// keyAttr is stamped on every element handed out. Handles address their
// node through it, so they go stale the way the node does.
const keyAttr = "data-goapply-key"

// Page is one Chrome tab.
type Page struct {
	tab      context.Context
	loadWait time.Duration
}

// run executes the actions on the tab until they finish or ctx is done.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (p *Page) URL(ctx context.Context) (string, error) {
	var u string
	err := p.run(ctx, chromedp.Location(&u))
	return u, err
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	actions := []chromedp.Action{chromedp.Navigate(url)}
	if p.loadWait > 0 {
		actions = append(actions, chromedp.Sleep(p.loadWait))
	}
	if err := p.run(ctx, actions...); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

func (p *Page) QueryAll(ctx context.Context, selector string) ([]dom.Element, error) {
	return p.query(ctx, "", selector)
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

type queryResult struct {
	Stale bool     `json:"stale"`
	Error string   `json:"error"`
	Keys  []string `json:"keys"`
}

func (p *Page) query(ctx context.Context, scope, selector string) ([]dom.Element, error) {
	var res queryResult
	if err := p.run(ctx, chromedp.Evaluate(queryScript(scope, selector), &res)); err != nil {
		return nil, err
	}
	if res.Stale {
		return nil, dom.ErrStaleElement
	}
	if res.Error != "" {
		return nil, fmt.Errorf("invalid selector %q: %s", selector, res.Error)
	}
	elems := make([]dom.Element, 0, len(res.Keys))
	for _, k := range res.Keys {
		elems = append(elems, &element{p: p, key: k})
	}
	return elems, nil
}

// element is a handle to a node tagged with keyAttr.
type element struct {
	p   *Page
	key string
}

func (e *element) Key() string {
	return e.key
}

func (e *element) selector() string {
	return keySelector(e.key)
}

func (e *element) QueryAll(ctx context.Context, selector string) ([]dom.Element, error) {
	return e.p.query(ctx, e.key, selector)
}

type infoResult struct {
	dom.ElementInfo
	Stale bool `json:"stale"`
}

func (e *element) Info(ctx context.Context) (dom.ElementInfo, error) {
	var res infoResult
	if err := e.p.run(ctx, chromedp.Evaluate(infoScript(e.key), &res)); err != nil {
		return dom.ElementInfo{}, err
	}
	if res.Stale {
		return dom.ElementInfo{}, dom.ErrStaleElement
	}
	info := res.ElementInfo
	if info.Attrs == nil {
		info.Attrs = map[string]string{}
	}
	delete(info.Attrs, keyAttr)
	info.Text = dom.NormalizeSpace(info.Text)
	info.LabelText = dom.NormalizeSpace(info.LabelText)
	info.ForLabelText = dom.NormalizeSpace(info.ForLabelText)
	info.FormText = dom.NormalizeSpace(info.FormText)
	for i := range info.Options {
		info.Options[i].Text = dom.NormalizeSpace(info.Options[i].Text)
	}
	return info, nil
}

// node resolves the handle to the current cdp node.
func (e *element) node(ctx context.Context) (*cdp.Node, error) {
	var nodes []*cdp.Node
	if err := e.p.run(ctx, chromedp.Nodes(e.selector(), &nodes, chromedp.ByQuery, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, dom.ErrStaleElement
	}
	return nodes[0], nil
}

// Click dispatches a real mouse click at the centre of the node. Nodes
// without a box, such as visually hidden radio inputs, get a DOM click
// instead.
func (e *element) Click(ctx context.Context) error {
	if err := e.ScrollIntoView(ctx); err != nil {
		return err
	}
	n, err := e.node(ctx)
	if err != nil {
		return err
	}
	if err := e.p.run(ctx, chromedp.MouseClickNode(n)); err == nil || ctx.Err() != nil {
		return err
	}
	return e.eval(ctx, domClickScript(e.key))
}

func (e *element) SetValue(ctx context.Context, value string) error {
	return e.eval(ctx, setValueScript(e.key, value))
}

func (e *element) SelectOption(ctx context.Context, value string) error {
	return e.eval(ctx, selectScript(e.key, value))
}

func (e *element) ScrollIntoView(ctx context.Context) error {
	return e.eval(ctx, scrollScript(e.key))
}

func (e *element) PressEnter(ctx context.Context) error {
	if _, err := e.node(ctx); err != nil {
		return err
	}
	return e.p.run(ctx, chromedp.SendKeys(e.selector(), kb.Enter, chromedp.ByQuery))
}

type actionResult struct {
	Stale bool   `json:"stale"`
	Error string `json:"error"`
}

// eval runs a script that reports staleness or a failure reason.
func (e *element) eval(ctx context.Context, script string) error {
	var res actionResult
	if err := e.p.run(ctx, chromedp.Evaluate(script, &res)); err != nil {
		return err
	}
	if res.Stale {
		return dom.ErrStaleElement
	}
	if res.Error != "" {
		return errors.New(res.Error)
	}
	return nil
}

func keySelector(key string) string {
	return fmt.Sprintf(`[%s="%s"]`, keyAttr, key)
}

// jsString quotes s as a javascript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
