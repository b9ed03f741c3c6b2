package fakedom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/goapply/goapply/internal/clock"
	"github.com/goapply/goapply/internal/dom"
)

const formHTML = `<html><body>
<form>
  <label>Years of experience <input id="exp" type="number"></label>
  <label for="city">City</label><input id="city" name="city" value="Berlin">
  <input type="hidden" name="token" value="x">
  <div style="display: none"><input id="ghost" name="ghost"></div>
  <select id="size"><option value="">Select an option</option><option value="s">Small</option></select>
  <input type="radio" name="rel" id="yes" value="Yes"><input type="radio" name="rel" id="no" value="No" checked>
  <input type="checkbox" id="terms">
  <button id="next" type="button">Next</button>
</form>
</body></html>`

func newPage(t *testing.T) (*Page, *clock.Fake) {
	clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	p := New(clk)
	if err := p.Load("https://example.com/form", formHTML); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p, clk
}

func first(t *testing.T, q dom.Queryable, sel string) dom.Element {
	elems, err := q.QueryAll(context.Background(), sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elems) == 0 {
		t.Fatalf("expected an element for %s", sel)
	}
	return elems[0]
}

func TestInfo(t *testing.T) {
	p, _ := newPage(t)
	ctx := context.Background()

	info, err := first(t, p, "#exp").Info(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.LabelText != "Years of experience" {
		t.Fatalf("expected enclosing label text but got %q", info.LabelText)
	}
	if !info.Visible {
		t.Fatalf("expected #exp to be visible")
	}

	info, _ = first(t, p, "#city").Info(ctx)
	if info.ForLabelText != "City" || info.Value != "Berlin" {
		t.Fatalf("expected label City and value Berlin but got %q and %q", info.ForLabelText, info.Value)
	}
	if info.FormText == "" {
		t.Fatalf("expected form text to be set")
	}

	for _, sel := range []string{"input[name=token]", "#ghost"} {
		info, _ = first(t, p, sel).Info(ctx)
		if info.Visible {
			t.Fatalf("expected %s to be invisible", sel)
		}
	}

	info, _ = first(t, p, "#size").Info(ctx)
	if info.Value != "" || len(info.Options) != 2 || !info.Options[0].Selected {
		t.Fatalf("expected the placeholder option to be selected but got %+v", info.Options)
	}
}

func TestClickSemantics(t *testing.T) {
	p, _ := newPage(t)
	ctx := context.Background()

	if err := first(t, p, "#yes").Click(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, checked := p.Attr("#no", "checked"); checked {
		t.Fatalf("expected clicking #yes to uncheck #no")
	}
	if _, checked := p.Attr("#yes", "checked"); !checked {
		t.Fatalf("expected #yes to be checked")
	}

	terms := first(t, p, "#terms")
	terms.Click(ctx)
	if _, checked := p.Attr("#terms", "checked"); !checked {
		t.Fatalf("expected #terms to be checked")
	}
	terms.Click(ctx)
	if _, checked := p.Attr("#terms", "checked"); checked {
		t.Fatalf("expected a second click to uncheck #terms")
	}
}

func TestClickHandlerAndStaleness(t *testing.T) {
	p, _ := newPage(t)
	ctx := context.Background()
	p.OnClick("#next", func(e *Event) {
		e.Doc.Find("form").ReplaceWithHtml(`<div class="done">ok</div>`)
	})
	exp := first(t, p, "#exp")
	if err := first(t, p, "#next").Click(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Count(".done") != 1 {
		t.Fatalf("expected the click handler to replace the form")
	}
	if _, err := exp.Info(ctx); !errors.Is(err, dom.ErrStaleElement) {
		t.Fatalf("expected ErrStaleElement but got %v", err)
	}
}

func TestSetValueAndSelect(t *testing.T) {
	p, _ := newPage(t)
	ctx := context.Background()
	if err := first(t, p, "#exp").SetValue(ctx, "4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := p.Attr("#exp", "value"); v != "4" {
		t.Fatalf("expected value 4 but got %q", v)
	}
	if err := first(t, p, "#size").SelectOption(ctx, "s"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, _ := first(t, p, "#size").Info(ctx)
	if info.Value != "s" {
		t.Fatalf("expected selected value s but got %q", info.Value)
	}
	if err := first(t, p, "#size").SelectOption(ctx, "xl"); err == nil {
		t.Fatalf("expected an error for a missing option")
	}
	if len(p.Typed()) != 2 {
		t.Fatalf("expected 2 typed entries but got %d", len(p.Typed()))
	}
}

func TestTimedMutation(t *testing.T) {
	p, clk := newPage(t)
	p.After(2*time.Second, func(doc *goquery.Document) {
		doc.Find("body").AppendHtml(`<div id="late"></div>`)
	})
	if p.Count("#late") != 0 {
		t.Fatalf("expected #late to be absent before the clock advances")
	}
	clk.Advance(2 * time.Second)
	if p.Count("#late") != 1 {
		t.Fatalf("expected #late to appear after 2s")
	}
}

func TestNavigate(t *testing.T) {
	p, _ := newPage(t)
	ctx := context.Background()
	p.AddPage("https://example.com/jobs", `<div id="jobs"></div>`)
	if err := p.Navigate(ctx, "https://example.com/jobs?keywords=go"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u, _ := p.URL(ctx); u != "https://example.com/jobs?keywords=go" {
		t.Fatalf("expected the full url to be kept but got %s", u)
	}
	if err := p.Navigate(ctx, "https://example.com/nope"); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound but got %v", err)
	}
	if _, err := p.QueryAll(ctx, "div[["); err == nil {
		t.Fatalf("expected an error for an invalid selector")
	}
}
