// Package locate waits for elements to appear in a changing document.
package locate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goapply/goapply/internal/clock"
	"github.com/goapply/goapply/internal/dom"
	"github.com/goapply/goapply/internal/log"
)

const (
	DefaultInterval = 500 * time.Millisecond
	DefaultTimeout  = 30 * time.Second
)

// NotFoundError is returned when no candidate selector produced a visible
// element before the timeout.
type NotFoundError struct {
	Selectors []string
	Elapsed   time.Duration
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("none of [%s] found after %v", strings.Join(e.Selectors, ", "), e.Elapsed)
}

// Locator polls a document on a clock.
type Locator struct {
	Clock    clock.Clock
	Interval time.Duration
	Timeout  time.Duration
}

// New returns a Locator. Zero durations fall back to the defaults.
func New(clk clock.Clock, interval, timeout time.Duration) *Locator {
	if clk == nil {
		clk = clock.Real{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Locator{Clock: clk, Interval: interval, Timeout: timeout}
}

// Find makes a single pass over the candidates in order and returns the
// first visible match together with the selector that produced it.
func (l *Locator) Find(ctx context.Context, root dom.Queryable, selectors ...string) (dom.Element, string, bool) {
	logger := log.LoggerFromContext(ctx)
	for _, sel := range selectors {
		elems, err := root.QueryAll(ctx, sel)
		if err != nil {
			logger.Debug("selector query failed", slog.String("selector", sel), slog.String("err", err.Error()))
			continue
		}
		for _, el := range elems {
			info, err := el.Info(ctx)
			if err != nil {
				continue
			}
			if info.Visible {
				return el, sel, true
			}
		}
	}
	return nil, "", false
}

// Any polls until one of the selectors yields a visible element. The first
// candidate that matches wins, not the best one. A timeout <= 0 uses the
// locator default.
func (l *Locator) Any(ctx context.Context, root dom.Queryable, selectors []string, timeout time.Duration) (dom.Element, string, error) {
	if timeout <= 0 {
		timeout = l.Timeout
	}
	start := l.Clock.Now()
	for {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		if el, sel, ok := l.Find(ctx, root, selectors...); ok {
			return el, sel, nil
		}
		elapsed := l.Clock.Now().Sub(start)
		if elapsed >= timeout {
			return nil, "", &NotFoundError{Selectors: selectors, Elapsed: elapsed}
		}
		wait := min(l.Interval, timeout-elapsed)
		if err := l.Clock.Sleep(ctx, wait); err != nil {
			return nil, "", err
		}
	}
}

// WaitFor is Any for a single selector.
func (l *Locator) WaitFor(ctx context.Context, root dom.Queryable, selector string, timeout time.Duration) (dom.Element, error) {
	el, _, err := l.Any(ctx, root, []string{selector}, timeout)
	return el, err
}

// Visible returns every visible element matching any of the selectors, in
// selector order, without waiting. Duplicates across selectors are only
// returned once.
func (l *Locator) Visible(ctx context.Context, root dom.Queryable, selectors ...string) []dom.Element {
	var out []dom.Element
	seen := map[string]bool{}
	for _, sel := range selectors {
		elems, err := root.QueryAll(ctx, sel)
		if err != nil {
			continue
		}
		for _, el := range elems {
			if seen[el.Key()] {
				continue
			}
			if info, err := el.Info(ctx); err == nil && info.Visible {
				seen[el.Key()] = true
				out = append(out, el)
			}
		}
	}
	return out
}
