package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"runtime/debug"
	"slices"
	"strconv"
	"strings"

	"github.com/goapply/goapply/internal/apply"
	"github.com/goapply/goapply/internal/artifacts"
	"github.com/goapply/goapply/internal/dom"
	"github.com/goapply/goapply/internal/events"
	"github.com/goapply/goapply/internal/fill"
	"github.com/goapply/goapply/internal/locate"
	"github.com/goapply/goapply/internal/log"
	"github.com/goapply/goapply/internal/platform"
	"github.com/goapply/goapply/internal/types"
	"github.com/google/uuid"
)

// appliedTextTags are the descendants of a card whose text is compared
// against the applied phrases of the adapter.
const appliedTextTags = "li, span, div, p, strong, time"

// Controller drives one run on one page.
type Controller struct {
	// RunID is generated when empty.
	RunID    string
	adapter  *platform.Adapter
	page     dom.Page
	opts     Options
	locator  *locate.Locator
	advancer *apply.Advancer
	stepper  *apply.Stepper
	// observe receives a summary after every state change.
	observe func(types.RunSummary)
}

func NewController(a *platform.Adapter, page dom.Page, opts Options) *Controller {
	opts = opts.withDefaults()
	t := opts.Timing
	l := locate.New(opts.Clock, t.PollInterval, t.LocateTimeout)
	adv := apply.NewAdvancer(a.Application, l, t.StepSettle, t.DialogTimeout)
	f := fill.New(opts.Classifier, opts.Clock, t.FieldDelay)
	return &Controller{
		adapter:  a,
		page:     page,
		opts:     opts,
		locator:  l,
		advancer: adv,
		stepper:  apply.NewStepper(f, adv, t.StepBudget),
	}
}

// Run executes the state machine until the target is reached, the pages are
// exhausted, a fatal error occurs or ctx is cancelled. Per card and per
// filter failures never end the run.
func (c *Controller) Run(ctx context.Context, sc types.SearchCriteria) (sum types.RunSummary, err error) {
	if c.RunID == "" {
		c.RunID = uuid.NewString()
	}
	st := newRunState(c.RunID, c.adapter.Name, sc, c.opts.Clock.Now())
	logger := log.LoggerFromContext(ctx).With(
		slog.String("platform", string(c.adapter.Name)),
		slog.String("run", c.RunID))
	ctx = log.ContextWithLogger(ctx, logger)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("run panicked", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
			err = &FatalError{Phase: st.State, Err: fmt.Errorf("panic: %v", r)}
		}
		if err != nil {
			c.finish(ctx, st, err)
		}
		sum = st.Summary()
	}()

	if err := sc.Validate(); err != nil {
		return sum, &FatalError{Phase: StateIdle, Err: err}
	}
	logger.Info("starting run",
		slog.String("keywords", sc.Keywords),
		slog.String("location", sc.Location),
		slog.Int("target", sc.TargetApplicationCount))

	c.transition(ctx, st, StateNavigating)
	searchReady, err := c.navigate(ctx)
	if err != nil {
		return sum, c.fatal(ctx, StateNavigating, err)
	}

	c.transition(ctx, st, StateSearching)
	if err := c.search(ctx, sc, searchReady); err != nil {
		return sum, c.fatal(ctx, StateSearching, err)
	}

	c.transition(ctx, st, StateFilterApplying)
	if err := c.applyFilters(ctx, sc); err != nil {
		return sum, err
	}

	for {
		if err := c.processPage(ctx, st); err != nil {
			return sum, err
		}
		if st.Applied >= sc.TargetApplicationCount {
			break
		}
		c.transition(ctx, st, StatePaginating)
		more, err := c.nextPage(ctx, st)
		if err != nil {
			return sum, err
		}
		if !more {
			logger.Info("no more result pages", slog.Int("pages", st.Page))
			break
		}
	}

	c.finish(ctx, st, nil)
	return sum, nil
}

func (c *Controller) transition(ctx context.Context, st *RunState, to State) {
	if st.State == to {
		return
	}
	log.LoggerFromContext(ctx).Debug("state transition", slog.String("from", string(st.State)), slog.String("to", string(to)))
	st.State = to
	c.notify(st)
}

func (c *Controller) notify(st *RunState) {
	if c.observe != nil {
		c.observe(st.Summary())
	}
}

func (c *Controller) fatal(ctx context.Context, phase State, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return &FatalError{Phase: phase, Err: err}
}

// finish records the terminal state and emits the matching event. A
// cancelled run ends in Done with whatever count it reached.
func (c *Controller) finish(ctx context.Context, st *RunState, err error) {
	logger := log.LoggerFromContext(ctx)
	st.End = c.opts.Clock.Now()
	var fe *FatalError
	switch {
	case errors.As(err, &fe):
		st.Err = err
		c.transition(ctx, st, StateFailed)
		logger.Error("run failed", slog.String("err", err.Error()))
		c.opts.Events.Emit(events.Error(st.RunID, st.Platform, err))
	case err != nil:
		st.Err = err
		c.transition(ctx, st, StateDone)
		logger.Info("run stopped", slog.Int("applied", st.Applied))
		c.opts.Events.Emit(events.Complete(st.RunID, st.Platform, st.Applied))
	default:
		c.transition(ctx, st, StateDone)
		logger.Info("run finished",
			slog.Int("applied", st.Applied),
			slog.Int("target", st.Criteria.TargetApplicationCount),
			slog.Int("failures", st.Failures),
			slog.Int("pages", st.Page))
		c.opts.Events.Emit(events.Complete(st.RunID, st.Platform, st.Applied))
	}
}

// navigate reports whether the search box became ready.
func (c *Controller) navigate(ctx context.Context) (bool, error) {
	logger := log.LoggerFromContext(ctx)
	current, err := c.page.URL(ctx)
	if err != nil {
		return false, err
	}
	if !c.adapter.OnJobsPage(current) {
		logger.Info("navigating to job search", slog.String("url", c.adapter.JobsURL))
		if err := c.gotoURL(ctx, c.adapter.JobsURL); err != nil {
			return false, err
		}
	}
	if len(c.adapter.Search.Box) == 0 {
		return false, nil
	}
	if _, _, err := c.locator.Any(ctx, c.page, c.adapter.Search.Box, c.opts.Timing.LocateTimeout); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		logger.Warn("search box did not become ready", slog.String("err", err.Error()))
		return false, nil
	}
	return true, nil
}

func (c *Controller) gotoURL(ctx context.Context, u string) error {
	if err := c.page.Navigate(ctx, u); err != nil {
		return fmt.Errorf("navigating to %s: %w", u, err)
	}
	landed, err := c.page.URL(ctx)
	if err != nil {
		return err
	}
	if !c.adapter.InDomain(landed) {
		return fmt.Errorf("navigation ended on %s which is outside of %s", landed, c.adapter.Domain)
	}
	return nil
}

func (c *Controller) search(ctx context.Context, sc types.SearchCriteria, searchReady bool) error {
	logger := log.LoggerFromContext(ctx)
	var kw dom.Element
	if searchReady {
		kw, _, _ = c.locator.Find(ctx, c.page, c.adapter.Search.Keyword...)
	}
	switch {
	case kw != nil:
		if err := c.submitSearch(ctx, kw, sc); err != nil {
			return err
		}
	case c.adapter.SearchURL != "":
		u := c.adapter.SearchURLFor(sc)
		logger.Info("search form not found, using the search url", slog.String("url", u))
		if err := c.gotoURL(ctx, u); err != nil {
			return err
		}
	default:
		logger.Warn("search form not found, using the current listing")
	}

	if len(c.adapter.Search.Results) > 0 {
		if _, _, err := c.locator.Any(ctx, c.page, c.adapter.Search.Results, c.opts.Timing.ResultsTimeout); err != nil {
			return fmt.Errorf("results list never appeared: %w", err)
		}
	}
	return c.opts.Clock.Sleep(ctx, c.opts.Timing.CardSettle)
}

func (c *Controller) submitSearch(ctx context.Context, kw dom.Element, sc types.SearchCriteria) error {
	logger := log.LoggerFromContext(ctx)
	if err := kw.SetValue(ctx, sc.Keywords); err != nil {
		return fmt.Errorf("entering keywords: %w", err)
	}
	if sc.Location != "" && len(c.adapter.Search.Location) > 0 {
		if loc, _, ok := c.locator.Find(ctx, c.page, c.adapter.Search.Location...); ok {
			if err := loc.SetValue(ctx, sc.Location); err != nil {
				logger.Warn("failed to enter location", slog.String("err", err.Error()))
			}
		} else {
			logger.Debug("location input not found")
		}
	}
	if btn, _, ok := c.locator.Find(ctx, c.page, c.adapter.Search.Submit...); ok {
		if err := btn.Click(ctx); err == nil {
			return nil
		}
	}
	if err := kw.PressEnter(ctx); err != nil {
		return fmt.Errorf("submitting search: %w", err)
	}
	return nil
}

// applyFilters applies each requested filter independently. Only a
// cancelled context is returned.
func (c *Controller) applyFilters(ctx context.Context, sc types.SearchCriteria) error {
	logger := log.LoggerFromContext(ctx)
	filters := []struct {
		name  string
		apply func(context.Context, types.SearchCriteria) error
	}{
		{"easy apply", c.filterEasyApply},
		{"date posted", c.filterDatePosted},
		{"workplace type", c.filterWorkplace},
		{"categories", c.filterCategories},
		{"experience", c.filterExperience},
	}
	for _, f := range filters {
		if err := f.apply(ctx, sc); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("filter not applied", slog.String("filter", f.name), slog.String("err", err.Error()))
		}
	}
	return nil
}

var errFilterUnavailable = errors.New("filter control not available")

func (c *Controller) clickFirst(ctx context.Context, root dom.Queryable, selectors ...string) error {
	el, _, ok := c.locator.Find(ctx, root, selectors...)
	if !ok {
		return errFilterUnavailable
	}
	if err := el.Click(ctx); err != nil {
		return err
	}
	return c.opts.Clock.Sleep(ctx, c.opts.Timing.StepSettle)
}

func (c *Controller) filterEasyApply(ctx context.Context, sc types.SearchCriteria) error {
	if !sc.WantsEasyApplyOnly() || len(c.adapter.Filters.EasyApply) == 0 {
		return nil
	}
	el, _, ok := c.locator.Find(ctx, c.page, c.adapter.Filters.EasyApply...)
	if !ok {
		return errFilterUnavailable
	}
	info, err := el.Info(ctx)
	if err != nil {
		return err
	}
	if info.Checked || info.Attr("aria-pressed") == "true" || info.Attr("aria-checked") == "true" {
		return nil
	}
	if err := el.Click(ctx); err != nil {
		return err
	}
	return c.opts.Clock.Sleep(ctx, c.opts.Timing.CardSettle)
}

func (c *Controller) filterDatePosted(ctx context.Context, sc types.SearchCriteria) error {
	if sc.DatePosted == "" || sc.DatePosted == types.DatePostedAny {
		return nil
	}
	option := c.adapter.DatePostedOption(sc.DatePosted)
	if option == "" {
		return fmt.Errorf("no date posted option for %q", sc.DatePosted)
	}
	if err := c.clickFirst(ctx, c.page, c.adapter.Filters.DatePostedControl...); err != nil {
		return err
	}
	el, err := c.locator.WaitFor(ctx, c.page, option, c.opts.Timing.ApplyTimeout)
	if err != nil {
		return err
	}
	if err := el.Click(ctx); err != nil {
		return err
	}
	return c.confirmFilter(ctx)
}

func (c *Controller) filterWorkplace(ctx context.Context, sc types.SearchCriteria) error {
	if len(sc.WorkplaceTypes) == 0 || len(c.adapter.Filters.WorkplaceControl) == 0 {
		return nil
	}
	// Without an option template the control is a single remote toggle.
	if c.adapter.Filters.WorkplaceOption == "" {
		if !slices.Contains(sc.WorkplaceTypes, types.WorkplaceRemote) {
			return nil
		}
		el, _, ok := c.locator.Find(ctx, c.page, c.adapter.Filters.WorkplaceControl...)
		if !ok {
			return errFilterUnavailable
		}
		if info, err := el.Info(ctx); err == nil && info.Checked {
			return nil
		}
		if err := el.Click(ctx); err != nil {
			return err
		}
		return c.opts.Clock.Sleep(ctx, c.opts.Timing.CardSettle)
	}

	if err := c.clickFirst(ctx, c.page, c.adapter.Filters.WorkplaceControl...); err != nil {
		return err
	}
	var errs []error
	for _, w := range sc.WorkplaceTypes {
		option := c.adapter.WorkplaceOption(w)
		if option == "" {
			errs = append(errs, fmt.Errorf("no workplace option for %q", w))
			continue
		}
		el, err := c.locator.WaitFor(ctx, c.page, option, c.opts.Timing.ApplyTimeout)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if info, err := el.Info(ctx); err == nil && info.Checked {
			continue
		}
		if err := el.Click(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.confirmFilter(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Controller) filterCategories(ctx context.Context, sc types.SearchCriteria) error {
	if len(sc.Categories) == 0 || len(c.adapter.Filters.CategoryControl) == 0 {
		return nil
	}
	var errs []error
	for _, cat := range sc.Categories {
		if err := c.clickFirst(ctx, c.page, c.adapter.Filters.CategoryControl...); err != nil {
			return err
		}
		input, _, err := c.locator.Any(ctx, c.page, c.adapter.Filters.CategoryInput, c.opts.Timing.ApplyTimeout)
		if err != nil {
			errs = append(errs, fmt.Errorf("category %q: %w", cat, err))
			continue
		}
		if err := input.SetValue(ctx, cat); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := input.PressEnter(ctx); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := c.opts.Clock.Sleep(ctx, c.opts.Timing.CardSettle); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}

// filterExperience picks the years of experience either in a select
// element or in the dropdown opened by the control.
func (c *Controller) filterExperience(ctx context.Context, sc types.SearchCriteria) error {
	if sc.ExperienceYears <= 0 || len(c.adapter.Filters.ExperienceControl) == 0 {
		return nil
	}
	years := sc.ExperienceYears
	el, _, ok := c.locator.Find(ctx, c.page, c.adapter.Filters.ExperienceControl...)
	if !ok {
		return errFilterUnavailable
	}
	info, err := el.Info(ctx)
	if err != nil {
		return err
	}
	if strings.EqualFold(info.Tag, "select") {
		if err := el.SelectOption(ctx, strconv.Itoa(years)); err != nil {
			return err
		}
		return c.opts.Clock.Sleep(ctx, c.opts.Timing.CardSettle)
	}
	option := c.adapter.ExperienceOption(years)
	if option == "" {
		return fmt.Errorf("no experience option for %d years", years)
	}
	if err := el.Click(ctx); err != nil {
		return err
	}
	if err := c.opts.Clock.Sleep(ctx, c.opts.Timing.StepSettle); err != nil {
		return err
	}
	opt, err := c.locator.WaitFor(ctx, c.page, option, c.opts.Timing.ApplyTimeout)
	if err != nil {
		return err
	}
	if err := opt.Click(ctx); err != nil {
		return err
	}
	return c.opts.Clock.Sleep(ctx, c.opts.Timing.CardSettle)
}

// confirmFilter clicks the show results action, found by selector or by the
// text of a visible button.
func (c *Controller) confirmFilter(ctx context.Context) error {
	f := c.adapter.Filters
	if el, _, ok := c.locator.Find(ctx, c.page, f.ShowResults...); ok {
		if err := el.Click(ctx); err != nil {
			return err
		}
		return c.opts.Clock.Sleep(ctx, c.opts.Timing.CardSettle)
	}
	if len(f.ShowResultsText) == 0 {
		return nil
	}
	for _, btn := range c.locator.Visible(ctx, c.page, "button") {
		info, err := btn.Info(ctx)
		if err != nil || info.Disabled {
			continue
		}
		text := info.ActionText()
		for _, want := range f.ShowResultsText {
			if strings.Contains(text, strings.ToLower(want)) {
				if err := btn.Click(ctx); err != nil {
					return err
				}
				return c.opts.Clock.Sleep(ctx, c.opts.Timing.CardSettle)
			}
		}
	}
	log.LoggerFromContext(ctx).Debug("no show results action found")
	return nil
}

// processPage applies to the cards of the current page until the target is
// reached or no unprocessed card is left. The card list is queried again
// after every application since the document changes underneath.
func (c *Controller) processPage(ctx context.Context, st *RunState) error {
	logger := log.LoggerFromContext(ctx)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if st.Applied >= st.Criteria.TargetApplicationCount {
			return nil
		}
		c.transition(ctx, st, StateListing)
		card, key, ok := c.nextCard(ctx, st)
		if !ok {
			logger.Debug("no unprocessed cards left on page", slog.Int("page", st.Page))
			return nil
		}
		st.Processed[key] = true

		c.transition(ctx, st, StatePerCardApplying)
		rec, err := c.applyToCard(ctx, card, st)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			st.Failures++
			logger.Warn("application failed",
				slog.String("job", rec.JobTitle),
				slog.String("company", rec.Company),
				slog.String("err", err.Error()))
			c.captureFailure(ctx, rec)
			c.advancer.Discard(ctx, c.page)
			c.notify(st)
			continue
		}

		st.Applied++
		logger.Info("applied",
			slog.String("job", rec.JobTitle),
			slog.String("company", rec.Company),
			slog.Int("total", st.Applied),
			slog.Int("target", st.Criteria.TargetApplicationCount))
		c.opts.Events.Emit(events.Progress(st.RunID, st.Platform, st.Applied, st.Criteria.TargetApplicationCount))
		c.saveRecord(ctx, rec)
		c.notify(st)
	}
}

// nextCard returns the first visible card that is neither applied nor
// processed. The first card selector that matches anything wins.
func (c *Controller) nextCard(ctx context.Context, st *RunState) (dom.Element, string, bool) {
	logger := log.LoggerFromContext(ctx)
	for _, sel := range c.adapter.Cards.Card {
		cards := c.locator.Visible(ctx, c.page, sel)
		if len(cards) == 0 {
			continue
		}
		for _, card := range cards {
			info, err := card.Info(ctx)
			if err != nil {
				continue
			}
			key := c.cardKey(ctx, card, info)
			if st.Processed[key] {
				continue
			}
			if c.isApplied(ctx, card) {
				logger.Debug("skipping applied job", slog.String("card", key))
				st.Processed[key] = true
				continue
			}
			return card, key, true
		}
		return nil, "", false
	}
	return nil, "", false
}

func (c *Controller) cardKey(ctx context.Context, card dom.Element, info dom.ElementInfo) string {
	for _, attr := range c.adapter.Cards.KeyAttrs {
		if v := info.Attr(attr); v != "" {
			return v
		}
	}
	if link, _, ok := c.locator.Find(ctx, card, c.adapter.Cards.Link...); ok {
		if li, err := link.Info(ctx); err == nil && li.Attr("href") != "" {
			return li.Attr("href")
		}
	}
	return dom.NormalizeSpace(info.Text)
}

func (c *Controller) isApplied(ctx context.Context, card dom.Element) bool {
	if _, _, ok := c.locator.Find(ctx, card, c.adapter.Cards.AppliedMarkers...); ok {
		return true
	}
	if len(c.adapter.Cards.AppliedText) == 0 {
		return false
	}
	elems, err := card.QueryAll(ctx, appliedTextTags)
	if err != nil {
		return false
	}
	for _, el := range elems {
		info, err := el.Info(ctx)
		if err != nil || !info.Visible {
			continue
		}
		text := strings.ToLower(dom.NormalizeSpace(info.Text))
		for _, want := range c.adapter.Cards.AppliedText {
			if text == strings.ToLower(want) {
				return true
			}
		}
	}
	return false
}

// describeCard reads the job details shown on a card.
func (c *Controller) describeCard(ctx context.Context, card dom.Element, st *RunState) types.ApplicationRecord {
	text := func(selectors []string) string {
		el, _, ok := c.locator.Find(ctx, card, selectors...)
		if !ok {
			return ""
		}
		info, err := el.Info(ctx)
		if err != nil {
			return ""
		}
		return dom.NormalizeSpace(info.Text)
	}
	return types.ApplicationRecord{
		RunID:    st.RunID,
		JobTitle: text(c.adapter.Cards.Title),
		Company:  text(c.adapter.Cards.Company),
		Location: text(c.adapter.Cards.Location),
		Platform: st.Platform,
		Status:   types.StatusApplied,
	}
}

// applyToCard opens the card, starts its application and steps through the
// form. The returned record carries whatever details were read even when an
// error is returned.
func (c *Controller) applyToCard(ctx context.Context, card dom.Element, st *RunState) (types.ApplicationRecord, error) {
	logger := log.LoggerFromContext(ctx)
	t := c.opts.Timing
	rec := c.describeCard(ctx, card, st)

	if err := card.ScrollIntoView(ctx); err != nil {
		return rec, fmt.Errorf("scrolling to card: %w", err)
	}
	target := card
	if link, _, ok := c.locator.Find(ctx, card, c.adapter.Cards.Link...); ok {
		target = link
		if info, err := link.Info(ctx); err == nil {
			rec.SourceURL = c.absoluteURL(ctx, info.Attr("href"))
		}
	}
	logger.Debug("opening job", slog.String("job", rec.JobTitle))
	if err := target.Click(ctx); err != nil {
		return rec, fmt.Errorf("opening job: %w", err)
	}
	if err := c.opts.Clock.Sleep(ctx, t.CardSettle); err != nil {
		return rec, err
	}
	if rec.SourceURL == "" {
		rec.SourceURL, _ = c.page.URL(ctx)
	}

	btn, _, err := c.locator.Any(ctx, c.page, c.adapter.Cards.ApplyButton, t.ApplyTimeout)
	if err != nil {
		return rec, fmt.Errorf("apply action: %w", err)
	}
	if err := btn.Click(ctx); err != nil {
		return rec, fmt.Errorf("starting application: %w", err)
	}
	if err := c.opts.Clock.Sleep(ctx, t.StepSettle); err != nil {
		return rec, err
	}
	if len(c.adapter.Application.Modal) > 0 {
		if _, _, err := c.locator.Any(ctx, c.page, c.adapter.Application.Modal, t.ApplyTimeout); err != nil {
			return rec, fmt.Errorf("application form did not open: %w", err)
		}
	}

	steps, err := c.stepper.Run(ctx, c.page, st.Criteria)
	if err != nil {
		return rec, err
	}
	logger.Debug("application submitted", slog.Int("steps", steps))
	rec.AppliedAt = c.opts.Clock.Now()
	return rec, nil
}

func (c *Controller) absoluteURL(ctx context.Context, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	current, err := c.page.URL(ctx)
	if err != nil {
		return href
	}
	base, err := url.Parse(current)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func (c *Controller) saveRecord(ctx context.Context, rec types.ApplicationRecord) {
	if c.opts.Records == nil {
		return
	}
	select {
	case c.opts.Records <- rec:
	default:
		log.LoggerFromContext(ctx).Warn("record queue is full, dropping record", slog.String("job", rec.JobTitle))
	}
}

func (c *Controller) captureFailure(ctx context.Context, rec types.ApplicationRecord) {
	if c.opts.Artifacts == nil {
		return
	}
	shooter, ok := c.page.(dom.Screenshotter)
	if !ok {
		return
	}
	logger := log.LoggerFromContext(ctx)
	data, err := shooter.Screenshot(ctx)
	if err != nil {
		logger.Debug("failed to capture screenshot", slog.String("err", err.Error()))
		return
	}
	name, err := artifacts.Name(string(rec.Platform), rec.JobTitle, c.opts.Clock.Now())
	if err != nil {
		return
	}
	loc, err := c.opts.Artifacts.Save(ctx, name, data)
	if err != nil {
		logger.Warn("failed to store screenshot", slog.String("err", err.Error()))
		return
	}
	logger.Info("stored screenshot of failed application", slog.String("location", loc))
}

// nextPage clicks the control leading to the following result page. A
// missing or disabled control ends the run normally.
func (c *Controller) nextPage(ctx context.Context, st *RunState) (bool, error) {
	logger := log.LoggerFromContext(ctx)
	var candidates []string
	if sel := c.adapter.PageButton(st.Page + 1); sel != "" {
		candidates = append(candidates, sel)
	}
	candidates = append(candidates, c.adapter.Pagination.Next...)

	var next dom.Element
	for _, el := range c.locator.Visible(ctx, c.page, candidates...) {
		info, err := el.Info(ctx)
		if err != nil || info.Disabled || info.Attr("aria-disabled") == "true" {
			continue
		}
		next = el
		break
	}
	if next == nil {
		return false, ctx.Err()
	}
	if err := next.ScrollIntoView(ctx); err != nil {
		logger.Debug("failed to scroll to pagination", slog.String("err", err.Error()))
	}
	if err := next.Click(ctx); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		logger.Warn("failed to open the next page", slog.String("err", err.Error()))
		return false, nil
	}
	st.Page++
	logger.Info("opened result page", slog.Int("page", st.Page))
	if err := c.opts.Clock.Sleep(ctx, c.opts.Timing.CardSettle); err != nil {
		return false, err
	}
	if len(c.adapter.Search.Results) > 0 {
		if _, _, err := c.locator.Any(ctx, c.page, c.adapter.Search.Results, c.opts.Timing.ResultsTimeout); err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			logger.Warn("results list missing after pagination", slog.String("err", err.Error()))
			return false, nil
		}
	}
	return true, nil
}
