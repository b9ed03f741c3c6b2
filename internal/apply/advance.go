// Package apply drives a multi-step application form from the first step to
// the final submission.
package apply

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/goapply/goapply/internal/clock"
	"github.com/goapply/goapply/internal/dom"
	"github.com/goapply/goapply/internal/locate"
	"github.com/goapply/goapply/internal/log"
)

// StepResult is the outcome of one advance attempt.
type StepResult int

const (
	// Advanced means a continuation action was clicked and the form is
	// still open without errors.
	Advanced StepResult = iota
	// Completed means the form is gone.
	Completed
	// ValidationError means the form is still open and shows an inline
	// error.
	ValidationError
	// NoActionFound means no eligible button was visible.
	NoActionFound
)

func (r StepResult) String() string {
	switch r {
	case Advanced:
		return "advanced"
	case Completed:
		return "completed"
	case ValidationError:
		return "validation error"
	case NoActionFound:
		return "no action found"
	default:
		return "unknown"
	}
}

// Selectors describe the application form of one platform.
type Selectors struct {
	// Modal is the container of the form. When empty the form is considered
	// complete once a submit action was clicked.
	Modal []string `yaml:"modal"`
	// StepButtons are searched in priority order.
	StepButtons []string `yaml:"step_buttons"`
	// ActionWords must appear in the text or aria-label of a step button.
	ActionWords []string `yaml:"action_words"`
	// SubmitWords mark the terminal action.
	SubmitWords []string `yaml:"submit_words"`
	// DismissWords exclude buttons that close the form.
	DismissWords     []string `yaml:"dismiss_words"`
	ErrorIndicator   []string `yaml:"error_indicator"`
	PostSubmitDialog []string `yaml:"post_submit_dialog"`
	PostSubmitDone   []string `yaml:"post_submit_done"`
	PostSubmitClose  []string `yaml:"post_submit_close"`
	// Discard and DiscardConfirm abandon a half filled form.
	Discard        []string `yaml:"discard"`
	DiscardConfirm []string `yaml:"discard_confirm"`
}

// Advancer clicks the next action of the current step.
type Advancer struct {
	Selectors     Selectors
	Locator       *locate.Locator
	Clock         clock.Clock
	Settle        time.Duration
	DialogTimeout time.Duration
}

// DefaultActionWords are used when the selectors name none.
var DefaultActionWords = []string{"submit", "next", "review", "continue"}

func NewAdvancer(sel Selectors, l *locate.Locator, settle, dialogTimeout time.Duration) *Advancer {
	if len(sel.ActionWords) == 0 {
		sel.ActionWords = DefaultActionWords
	}
	if len(sel.SubmitWords) == 0 {
		sel.SubmitWords = []string{"submit"}
	}
	if len(sel.DismissWords) == 0 {
		sel.DismissWords = []string{"dismiss"}
	}
	if dialogTimeout <= 0 {
		dialogTimeout = 5 * time.Second
	}
	return &Advancer{Selectors: sel, Locator: l, Clock: l.Clock, Settle: settle, DialogTimeout: dialogTimeout}
}

// Advance finds and clicks the best step button. The returned error is only
// set when ctx is done.
func (a *Advancer) Advance(ctx context.Context, page dom.Queryable) (StepResult, error) {
	logger := log.LoggerFromContext(ctx)
	if len(a.Selectors.Modal) > 0 {
		if _, _, open := a.Locator.Find(ctx, page, a.Selectors.Modal...); !open {
			logger.Debug("application form is not open")
			return Completed, ctx.Err()
		}
	}

	btn, text, submit := a.findButton(ctx, page)
	if btn == nil {
		return NoActionFound, ctx.Err()
	}
	logger.Debug("clicking step button", slog.String("text", text), slog.Bool("submit", submit))
	if err := btn.Click(ctx); err != nil {
		if ctx.Err() != nil {
			return NoActionFound, ctx.Err()
		}
		logger.Warn("failed to click step button", slog.String("text", text), slog.String("err", err.Error()))
		return NoActionFound, nil
	}
	if err := a.Clock.Sleep(ctx, a.Settle); err != nil {
		return NoActionFound, err
	}
	if submit {
		if err := a.handlePostSubmit(ctx, page); err != nil {
			return NoActionFound, err
		}
	}

	_, _, hasError := a.Locator.Find(ctx, page, a.Selectors.ErrorIndicator...)
	if len(a.Selectors.Modal) > 0 {
		if _, _, open := a.Locator.Find(ctx, page, a.Selectors.Modal...); !open {
			return Completed, nil
		}
	} else if submit && !hasError {
		return Completed, nil
	}
	if hasError {
		return ValidationError, nil
	}
	return Advanced, nil
}

// findButton returns the first eligible button in selector priority order.
func (a *Advancer) findButton(ctx context.Context, page dom.Queryable) (dom.Element, string, bool) {
	for _, sel := range a.Selectors.StepButtons {
		elems, err := page.QueryAll(ctx, sel)
		if err != nil {
			continue
		}
		for _, el := range elems {
			info, err := el.Info(ctx)
			if err != nil || !info.Visible || info.Disabled || info.Attr("aria-disabled") == "true" {
				continue
			}
			text := info.ActionText()
			if containsAny(text, a.Selectors.DismissWords) {
				continue
			}
			if !containsAny(text, a.Selectors.ActionWords) {
				continue
			}
			return el, text, containsAny(text, a.Selectors.SubmitWords)
		}
	}
	return nil, "", false
}

// handlePostSubmit closes the confirmation dialog shown after a submission,
// preferring its primary action over the close button.
func (a *Advancer) handlePostSubmit(ctx context.Context, page dom.Queryable) error {
	if len(a.Selectors.PostSubmitDialog) == 0 {
		return nil
	}
	logger := log.LoggerFromContext(ctx)
	dialog, _, err := a.Locator.Any(ctx, page, a.Selectors.PostSubmitDialog, a.DialogTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Debug("no post submit dialog", slog.String("err", err.Error()))
		return nil
	}
	for _, candidates := range [][]string{a.Selectors.PostSubmitDone, a.Selectors.PostSubmitClose} {
		btn, sel, ok := a.Locator.Find(ctx, dialog, candidates...)
		if !ok {
			btn, sel, ok = a.Locator.Find(ctx, page, candidates...)
		}
		if !ok {
			continue
		}
		logger.Debug("closing post submit dialog", slog.String("selector", sel))
		if err := btn.Click(ctx); err != nil {
			logger.Warn("failed to close post submit dialog", slog.String("err", err.Error()))
			continue
		}
		return a.Clock.Sleep(ctx, a.Settle)
	}
	return nil
}

// Discard abandons the open form. Every step is best effort.
func (a *Advancer) Discard(ctx context.Context, page dom.Queryable) {
	logger := log.LoggerFromContext(ctx)
	for _, candidates := range [][]string{a.Selectors.Discard, a.Selectors.DiscardConfirm} {
		if len(candidates) == 0 {
			continue
		}
		btn, _, ok := a.Locator.Find(ctx, page, candidates...)
		if !ok {
			continue
		}
		if err := btn.Click(ctx); err != nil {
			logger.Debug("discard click failed", slog.String("err", err.Error()))
			return
		}
		if err := a.Clock.Sleep(ctx, a.Settle); err != nil {
			return
		}
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, strings.ToLower(w)) {
			return true
		}
	}
	return false
}
