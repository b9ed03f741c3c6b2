package fakedom

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/goapply/goapply/internal/dom"
	"golang.org/x/net/html"
)

type element struct {
	p    *Page
	node *html.Node
}

func (e *element) Key() string {
	return fmt.Sprintf("%p", e.node)
}

func (e *element) sel() *goquery.Selection {
	return e.p.doc.FindNodes(e.node)
}

func (e *element) QueryAll(ctx context.Context, selector string) ([]dom.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	e.p.applyTimedLocked()
	if !e.p.attachedLocked(e.node) {
		return nil, dom.ErrStaleElement
	}
	return e.p.queryLocked(e.sel(), selector)
}

func (e *element) Info(ctx context.Context) (dom.ElementInfo, error) {
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	if !e.p.attachedLocked(e.node) {
		return dom.ElementInfo{}, dom.ErrStaleElement
	}
	s := e.sel()
	info := dom.ElementInfo{
		Tag:     strings.ToLower(e.node.Data),
		Attrs:   map[string]string{},
		Text:    dom.NormalizeSpace(s.Text()),
		Visible: visible(e.node),
	}
	for _, a := range e.node.Attr {
		info.Attrs[strings.ToLower(a.Key)] = a.Val
	}
	info.Disabled = info.HasAttr("disabled")
	info.Checked = info.HasAttr("checked")

	switch info.Tag {
	case "input":
		info.Value = info.Attr("value")
	case "textarea":
		info.Value = strings.TrimSpace(s.Text())
	case "select":
		selected := -1
		s.Find("option").Each(func(i int, o *goquery.Selection) {
			v, ok := o.Attr("value")
			if !ok {
				v = dom.NormalizeSpace(o.Text())
			}
			_, sel := o.Attr("selected")
			if sel && selected < 0 {
				selected = i
			}
			info.Options = append(info.Options, dom.Option{Value: v, Text: dom.NormalizeSpace(o.Text())})
		})
		// a select without an explicit selection shows its first option
		if selected < 0 && len(info.Options) > 0 {
			selected = 0
		}
		if selected >= 0 {
			info.Options[selected].Selected = true
			info.Value = info.Options[selected].Value
		}
	}

	info.LabelText = dom.NormalizeSpace(s.Closest("label").Text())
	if id := info.Attr("id"); id != "" {
		forLabel := e.p.doc.Find("label").FilterFunction(func(_ int, l *goquery.Selection) bool {
			v, _ := l.Attr("for")
			return v == id
		}).First()
		info.ForLabelText = dom.NormalizeSpace(forLabel.Text())
	}
	info.FormText = dom.NormalizeSpace(s.Closest("form").Text())
	return info, nil
}

func (e *element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	if !e.p.attachedLocked(e.node) {
		return dom.ErrStaleElement
	}
	e.p.clicks = append(e.p.clicks, describe(e.node))
	s := e.sel()
	if _, disabled := s.Attr("disabled"); disabled {
		return nil
	}
	if strings.EqualFold(e.node.Data, "input") {
		t, _ := s.Attr("type")
		switch strings.ToLower(t) {
		case "radio":
			name, _ := s.Attr("name")
			if name != "" {
				e.p.doc.Find("input[type=radio]").FilterFunction(func(_ int, r *goquery.Selection) bool {
					n, _ := r.Attr("name")
					return n == name
				}).RemoveAttr("checked")
			}
			s.SetAttr("checked", "checked")
		case "checkbox":
			if _, checked := s.Attr("checked"); checked {
				s.RemoveAttr("checked")
			} else {
				s.SetAttr("checked", "checked")
			}
		}
	}
	e.p.dispatchLocked(e.p.clickHandlers, e.node)
	if strings.EqualFold(e.node.Data, "a") {
		if href, ok := s.Attr("href"); ok {
			if _, registered := e.p.pagesMap[href]; registered {
				return e.p.navigateLocked(href)
			}
		}
	}
	return nil
}

func (e *element) SetValue(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	if !e.p.attachedLocked(e.node) {
		return dom.ErrStaleElement
	}
	s := e.sel()
	if _, disabled := s.Attr("disabled"); disabled {
		return fmt.Errorf("cannot set value of disabled %s", describe(e.node))
	}
	switch strings.ToLower(e.node.Data) {
	case "input":
		s.SetAttr("value", value)
	case "textarea":
		s.SetText(value)
	default:
		return fmt.Errorf("cannot set value of %s", describe(e.node))
	}
	e.p.typed = append(e.p.typed, Typed{Target: describe(e.node), Value: value})
	return nil
}

func (e *element) SelectOption(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	if !e.p.attachedLocked(e.node) {
		return dom.ErrStaleElement
	}
	options := e.sel().Find("option")
	match := options.FilterFunction(func(_ int, o *goquery.Selection) bool {
		v, ok := o.Attr("value")
		if !ok {
			v = dom.NormalizeSpace(o.Text())
		}
		return v == value
	}).First()
	if match.Length() == 0 {
		return fmt.Errorf("no option with value %q in %s", value, describe(e.node))
	}
	options.RemoveAttr("selected")
	match.SetAttr("selected", "selected")
	e.p.typed = append(e.p.typed, Typed{Target: describe(e.node), Value: value})
	return nil
}

func (e *element) ScrollIntoView(ctx context.Context) error {
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	if !e.p.attachedLocked(e.node) {
		return dom.ErrStaleElement
	}
	return nil
}

func (e *element) PressEnter(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	if !e.p.attachedLocked(e.node) {
		return dom.ErrStaleElement
	}
	e.p.dispatchLocked(e.p.enterHandlers, e.node)
	return nil
}

// visible approximates a rendered box: the node and its ancestors are not
// hidden and not display:none.
func visible(n *html.Node) bool {
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		for _, a := range cur.Attr {
			switch strings.ToLower(a.Key) {
			case "hidden":
				return false
			case "style":
				style := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
				if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
					return false
				}
			case "type":
				if cur == n && strings.EqualFold(cur.Data, "input") && strings.EqualFold(a.Val, "hidden") {
					return false
				}
			}
		}
	}
	return true
}

// describe names a node for the click and typing logs.
func describe(n *html.Node) string {
	var id, class string
	for _, a := range n.Attr {
		switch a.Key {
		case "id":
			id = a.Val
		case "class":
			class = a.Val
		}
	}
	switch {
	case id != "":
		return n.Data + "#" + id
	case class != "":
		return n.Data + "." + strings.Join(strings.Fields(class), ".")
	default:
		return n.Data
	}
}
