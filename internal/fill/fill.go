// Package fill writes values into every visible form control of the current
// application step.
package fill

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/goapply/goapply/internal/classify"
	"github.com/goapply/goapply/internal/clock"
	"github.com/goapply/goapply/internal/dom"
	"github.com/goapply/goapply/internal/log"
	"github.com/goapply/goapply/internal/types"
)

const (
	DefaultSettle = 500 * time.Millisecond
	fieldSelector = "input, select, textarea"

	// Only sentinels at least this long are matched fuzzily.
	fuzzyMinLen      = 8
	fuzzyMaxDistance = 2
)

var (
	affirmativeWords  = []string{"yes", "agree", "accept", "confirm"}
	agreementWords    = []string{"agree", "terms", "consent", "privacy"}
	notificationWords = []string{"notification", "subscribe", "email", "contact"}
	placeholders      = []string{"", "select an option", "--", "please select"}
	firstNumberRe     = regexp.MustCompile(`\d+`)
)

// Report summarizes one pass over a step.
type Report struct {
	Seen   int
	Filled int
	Errors []error
}

// Filler fills one step of an application form.
type Filler struct {
	Classifier *classify.Classifier
	Clock      clock.Clock
	// Settle is slept after each field so the page can react to the write.
	Settle time.Duration
}

func New(c *classify.Classifier, clk clock.Clock, settle time.Duration) *Filler {
	if clk == nil {
		clk = clock.Real{}
	}
	if settle < 0 {
		settle = DefaultSettle
	}
	return &Filler{Classifier: c, Clock: clk, Settle: settle}
}

// Fill visits every visible and enabled control under root. Errors of single
// fields are collected in the report and do not stop the pass; only a done
// context does.
func (f *Filler) Fill(ctx context.Context, root dom.Queryable, sc types.SearchCriteria) (Report, error) {
	logger := log.LoggerFromContext(ctx)
	var rep Report
	elems, err := root.QueryAll(ctx, fieldSelector)
	if err != nil {
		return rep, fmt.Errorf("listing form fields: %w", err)
	}
	for _, el := range elems {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		info, err := el.Info(ctx)
		if err != nil {
			logger.Debug("skipping field", slog.String("err", err.Error()))
			continue
		}
		field, ok := dom.NewFormField(info)
		if !ok || !field.Fillable() {
			continue
		}
		rep.Seen++
		logger.Debug("processing field", slog.String("label", field.Label), slog.String("kind", string(field.Kind)))
		filled, err := f.fillField(ctx, el, field, sc)
		if err != nil {
			logger.Warn("error filling field", slog.String("label", field.Label), slog.String("err", err.Error()))
			rep.Errors = append(rep.Errors, fmt.Errorf("field %q: %w", field.Label, err))
		} else if filled {
			rep.Filled++
		}
		if err := f.Clock.Sleep(ctx, f.Settle); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

func (f *Filler) fillField(ctx context.Context, el dom.Element, field dom.FormField, sc types.SearchCriteria) (bool, error) {
	switch field.Kind {
	case dom.KindRadio:
		return fillRadio(ctx, el, field)
	case dom.KindCheckbox:
		return fillCheckbox(ctx, el, field)
	case dom.KindSelect:
		return fillSelect(ctx, el, field, sc)
	default:
		if field.Info.Value != "" {
			return false, nil
		}
		res := f.Classifier.Classify(classify.Input{Field: field, Criteria: sc})
		log.LoggerFromContext(ctx).Debug("classified field",
			slog.String("label", field.Label),
			slog.String("category", string(res.Category)),
			slog.String("rule", res.Rule))
		if err := el.SetValue(ctx, res.Value); err != nil {
			return false, err
		}
		return true, nil
	}
}

func fillRadio(ctx context.Context, el dom.Element, field dom.FormField) (bool, error) {
	if field.Info.Checked {
		return false, nil
	}
	if !classify.ContainsWord(field.Label, affirmativeWords...) && !strings.EqualFold(field.Info.Attr("value"), "yes") {
		return false, nil
	}
	return true, el.Click(ctx)
}

func fillCheckbox(ctx context.Context, el dom.Element, field dom.FormField) (bool, error) {
	if field.Info.Checked {
		return false, nil
	}
	if !classify.ContainsWord(field.Label, agreementWords...) && classify.ContainsWord(field.Label, notificationWords...) {
		return false, nil
	}
	return true, el.Click(ctx)
}

func fillSelect(ctx context.Context, el dom.Element, field dom.FormField, sc types.SearchCriteria) (bool, error) {
	if !IsPlaceholder(field.Info.Value) && !IsPlaceholder(field.Info.SelectedText()) {
		return false, nil
	}
	var choice dom.Option
	var ok bool
	if classify.IsNumeric(field) {
		target := 0
		switch {
		case strings.Contains(field.Label, "experience"):
			target = sc.ExperienceYears
		case strings.Contains(field.Label, "salary"):
			target = sc.ExpectedSalary
		}
		choice, ok = ClosestNumericOption(field.Info.Options, target)
	}
	if !ok {
		choice, ok = FirstRealOption(field.Info.Options)
	}
	if !ok {
		return false, nil
	}
	return true, el.SelectOption(ctx, choice.Value)
}

// IsPlaceholder reports whether an option value or text is a "nothing
// selected" sentinel. Trailing dots and colons are ignored and near misses
// like "Selct an optin" count too.
func IsPlaceholder(s string) bool {
	s = strings.ToLower(dom.NormalizeSpace(s))
	s = strings.TrimRight(s, ".:… ")
	for _, p := range placeholders {
		if s == p {
			return true
		}
		if len(p) >= fuzzyMinLen && levenshtein.ComputeDistance(s, p) <= fuzzyMaxDistance {
			return true
		}
	}
	return strings.HasPrefix(s, "select ") || strings.HasPrefix(s, "choose ")
}

// ClosestNumericOption picks the option whose first embedded integer is
// nearest to target. Ties go to the earlier option.
func ClosestNumericOption(options []dom.Option, target int) (dom.Option, bool) {
	var best dom.Option
	bestDiff := -1
	for _, o := range options {
		if IsPlaceholder(o.Value) || IsPlaceholder(o.Text) {
			continue
		}
		m := firstNumberRe.FindString(o.Text)
		if m == "" {
			continue
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		diff := n - target
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			best, bestDiff = o, diff
		}
	}
	return best, bestDiff >= 0
}

// FirstRealOption returns the first option that is not a placeholder.
func FirstRealOption(options []dom.Option) (dom.Option, bool) {
	for _, o := range options {
		if !IsPlaceholder(o.Value) && !IsPlaceholder(o.Text) {
			return o, true
		}
	}
	return dom.Option{}, false
}
