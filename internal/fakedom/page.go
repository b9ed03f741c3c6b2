// Package fakedom is an in-memory implementation of dom.Page backed by
// goquery. Tests register canned pages by URL and script the reaction of the
// document to clicks, enter presses and the passage of virtual time.
package fakedom

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/goapply/goapply/internal/clock"
	"github.com/goapply/goapply/internal/dom"
	"golang.org/x/net/html"
)

// ErrPageNotFound is returned by Navigate for an unregistered URL.
var ErrPageNotFound = errors.New("page not found")

// Event is passed to click and enter handlers. The page lock is held while a
// handler runs, so handlers mutate Doc directly instead of calling Page
// methods.
type Event struct {
	Doc    *goquery.Document
	Target *goquery.Selection
	page   *Page
}

// Navigate replaces the document with a registered page.
func (e *Event) Navigate(u string) error {
	if err := e.page.navigateLocked(u); err != nil {
		return err
	}
	e.Doc = e.page.doc
	return nil
}

// Handler reacts to a user action.
type Handler func(e *Event)

type handler struct {
	selector string
	matcher  cascadia.Selector
	fn       Handler
}

type timedMutation struct {
	at   time.Time
	fn   func(doc *goquery.Document)
	done bool
}

// Typed records one SetValue call.
type Typed struct {
	Target string
	Value  string
}

// Page is a scripted browser tab.
type Page struct {
	mu            sync.Mutex
	clk           clock.Clock
	pagesMap      map[string]string
	url           string
	doc           *goquery.Document
	clickHandlers []handler
	enterHandlers []handler
	timed         []*timedMutation
	clicks        []string
	typed         []Typed
	navigations   []string
}

// New returns an empty page at about:blank.
func New(clk clock.Clock) *Page {
	if clk == nil {
		clk = clock.Real{}
	}
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	return &Page{
		clk:      clk,
		pagesMap: map[string]string{},
		url:      "about:blank",
		doc:      doc,
	}
}

// AddPage registers the content returned when u is navigated to.
func (p *Page) AddPage(u, content string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pagesMap[u] = content
}

// Load registers a page and navigates to it.
func (p *Page) Load(u, content string) error {
	p.AddPage(u, content)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.navigateLocked(u)
}

// OnClick runs fn whenever an element matching selector, or one of its
// descendants, is clicked.
func (p *Page) OnClick(selector string, fn Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clickHandlers = append(p.clickHandlers, handler{selector, cascadia.MustCompile(selector), fn})
}

// OnEnter runs fn when enter is pressed inside an element matching selector.
func (p *Page) OnEnter(selector string, fn Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enterHandlers = append(p.enterHandlers, handler{selector, cascadia.MustCompile(selector), fn})
}

// After schedules a mutation once the clock has moved d past now. Pending
// mutations are applied lazily on the next query.
func (p *Page) After(d time.Duration, fn func(doc *goquery.Document)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timed = append(p.timed, &timedMutation{at: p.clk.Now().Add(d), fn: fn})
}

// Mutate changes the current document.
func (p *Page) Mutate(fn func(doc *goquery.Document)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.doc)
}

// Clicks returns a description of every click in order.
func (p *Page) Clicks() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.clicks...)
}

// Typed returns every value written with SetValue.
func (p *Page) Typed() []Typed {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Typed{}, p.typed...)
}

// Navigations returns every URL navigated to.
func (p *Page) Navigations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.navigations...)
}

// HTML renders the current document.
func (p *Page) HTML() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, _ := p.doc.Html()
	return s
}

// Count returns the number of elements matching selector.
func (p *Page) Count(selector string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyTimedLocked()
	return p.doc.Find(selector).Length()
}

// Attr returns an attribute of the first element matching selector.
func (p *Page) Attr(selector, name string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Find(selector).First().Attr(name)
}

func (p *Page) URL(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyTimedLocked()
	return p.url, nil
}

func (p *Page) Navigate(ctx context.Context, u string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.navigateLocked(u)
}

func (p *Page) QueryAll(ctx context.Context, selector string) ([]dom.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyTimedLocked()
	return p.queryLocked(p.doc.Selection, selector)
}

// Screenshot returns the rendered document in place of an image.
func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	return []byte(p.HTML()), nil
}

func (p *Page) navigateLocked(u string) error {
	content, ok := p.pagesMap[u]
	if !ok {
		if parsed, err := url.Parse(u); err == nil {
			parsed.RawQuery = ""
			parsed.Fragment = ""
			content, ok = p.pagesMap[parsed.String()]
		}
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrPageNotFound, u)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return err
	}
	p.doc = doc
	p.url = u
	p.navigations = append(p.navigations, u)
	return nil
}

func (p *Page) applyTimedLocked() {
	now := p.clk.Now()
	for _, m := range p.timed {
		if !m.done && !now.Before(m.at) {
			m.done = true
			m.fn(p.doc)
		}
	}
}

func (p *Page) queryLocked(root *goquery.Selection, selector string) ([]dom.Element, error) {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	found := root.FindMatcher(m)
	elems := make([]dom.Element, 0, found.Length())
	for _, n := range found.Nodes {
		elems = append(elems, &element{p: p, node: n})
	}
	return elems, nil
}

func (p *Page) attachedLocked(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n.Parent == nil {
			return len(p.doc.Nodes) > 0 && n == p.doc.Nodes[0]
		}
	}
	return false
}

// dispatchLocked runs the handlers of every element from n up to the root,
// each handler at most once.
func (p *Page) dispatchLocked(handlers []handler, n *html.Node) {
	fired := map[int]bool{}
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		for i, h := range handlers {
			if fired[i] || !h.matcher.Match(cur) {
				continue
			}
			fired[i] = true
			h.fn(&Event{Doc: p.doc, Target: p.doc.FindNodes(cur), page: p})
		}
	}
}
