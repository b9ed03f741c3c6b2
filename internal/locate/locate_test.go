package locate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/goapply/goapply/internal/clock"
	"github.com/goapply/goapply/internal/fakedom"
)

func setup(t *testing.T, content string) (*fakedom.Page, *clock.Fake, *Locator) {
	clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	p := fakedom.New(clk)
	if err := p.Load("https://example.com", content); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p, clk, New(clk, 0, 0)
}

func TestAnyFirstCandidateWins(t *testing.T) {
	p, _, l := setup(t, `<div class="b">b</div><div class="a">a</div>`)
	_, sel, err := l.Any(context.Background(), p, []string{".a", ".b"}, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel != ".a" {
		t.Fatalf("expected the first candidate .a to win but got %s", sel)
	}
}

func TestAnySkipsInvisible(t *testing.T) {
	p, _, l := setup(t, `<div class="a" style="display:none">a</div><div class="b">b</div>`)
	_, sel, err := l.Any(context.Background(), p, []string{".a", ".b"}, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel != ".b" {
		t.Fatalf("expected .b since .a is hidden but got %s", sel)
	}
}

func TestAnyWaitsForLateElement(t *testing.T) {
	p, clk, l := setup(t, `<body></body>`)
	p.After(3*time.Second, func(doc *goquery.Document) {
		doc.Find("body").AppendHtml(`<button id="late">go</button>`)
	})
	start := clk.Now()
	if _, err := l.WaitFor(context.Background(), p, "#late", 10*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if waited := clk.Now().Sub(start); waited != 3*time.Second {
		t.Fatalf("expected to wait 3s but waited %v", waited)
	}
}

func TestAnyTimeout(t *testing.T) {
	p, clk, l := setup(t, `<body></body>`)
	start := clk.Now()
	_, _, err := l.Any(context.Background(), p, []string{"#x", "#y"}, 2*time.Second)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError but got %v", err)
	}
	if len(nf.Selectors) != 2 || nf.Elapsed != 2*time.Second {
		t.Fatalf("expected 2 selectors and 2s elapsed but got %v and %v", nf.Selectors, nf.Elapsed)
	}
	if clk.Now().Sub(start) != 2*time.Second {
		t.Fatalf("expected the wait not to overshoot the timeout")
	}
}

func TestAnyInvalidSelectorIsNotAMatch(t *testing.T) {
	p, _, l := setup(t, `<div class="ok"></div>`)
	_, sel, err := l.Any(context.Background(), p, []string{"div[[", ".ok"}, time.Second)
	if err != nil || sel != ".ok" {
		t.Fatalf("expected .ok but got %q (%v)", sel, err)
	}
}

func TestAnyCancelled(t *testing.T) {
	p, _, l := setup(t, `<body></body>`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := l.Any(ctx, p, []string{"#x"}, time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled but got %v", err)
	}
}

func TestVisibleDeduplicates(t *testing.T) {
	p, _, l := setup(t, `<li class="card job">1</li><li class="card">2</li><li class="card" hidden>3</li>`)
	got := l.Visible(context.Background(), p, ".job", ".card")
	if len(got) != 2 {
		t.Fatalf("expected 2 visible cards but got %d", len(got))
	}
}
