// Package platform holds the per site knowledge of the engine: selector
// tables, URL templates, filter tokens and button vocabulary. The engine
// itself is the same for every site.
package platform

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/goapply/goapply/internal/apply"
	"github.com/goapply/goapply/internal/types"
)

// SearchSelectors locate the search form.
type SearchSelectors struct {
	// Box is waited for to decide that the search UI is ready.
	Box      []string `yaml:"box"`
	Keyword  []string `yaml:"keyword"`
	Location []string `yaml:"location"`
	Submit   []string `yaml:"submit"`
	Results  []string `yaml:"results"`
}

// FilterSelectors locate the optional result filters. Option selectors are
// templates where %s is replaced by the platform token of the value.
type FilterSelectors struct {
	EasyApply         []string `yaml:"easy_apply"`
	DatePostedControl []string `yaml:"date_posted_control"`
	DatePostedOption  string   `yaml:"date_posted_option"`
	WorkplaceControl  []string `yaml:"workplace_control"`
	WorkplaceOption   string   `yaml:"workplace_option"`
	CategoryControl   []string `yaml:"category_control"`
	CategoryInput     []string `yaml:"category_input"`
	ShowResults       []string `yaml:"show_results"`
	// ShowResultsText is matched against button text when no ShowResults
	// selector is visible.
	ShowResultsText []string `yaml:"show_results_text"`
	// ExperienceControl is a dropdown button or a select element.
	ExperienceControl []string `yaml:"experience_control"`
	// ExperienceOption is a template where %d is replaced by the years of
	// experience. Unused when the control is a select element.
	ExperienceOption string `yaml:"experience_option"`
}

// FilterTokens encode filter values the way the site expects them.
type FilterTokens struct {
	DatePosted map[types.DatePosted]string    `yaml:"date_posted"`
	Workplace  map[types.WorkplaceType]string `yaml:"workplace"`
}

// CardSelectors describe one entry of the result list.
type CardSelectors struct {
	Card []string `yaml:"card"`
	// KeyAttrs are tried in order to build a stable identity for a card.
	KeyAttrs       []string `yaml:"key_attrs"`
	AppliedMarkers []string `yaml:"applied_markers"`
	AppliedText    []string `yaml:"applied_text"`
	// Link is clicked to open the job. The card itself is clicked when no
	// link matches.
	Link        []string `yaml:"link"`
	Title       []string `yaml:"title"`
	Company     []string `yaml:"company"`
	Location    []string `yaml:"location"`
	ApplyButton []string `yaml:"apply_button"`
}

// PaginationSelectors locate the control leading to the next result page.
type PaginationSelectors struct {
	// PageButton is a template where %d is replaced by the page number.
	PageButton string   `yaml:"page_button"`
	Next       []string `yaml:"next"`
}

// Adapter specializes the engine to one site.
type Adapter struct {
	Name        types.Platform `yaml:"name"`
	DisplayName string         `yaml:"display_name"`
	// Domain is the registrable host suffix, e.g. linkedin.com.
	Domain string `yaml:"domain"`
	// JobsURL is navigated to when the page is not already on a URL
	// containing JobsURLContains.
	JobsURL         string `yaml:"jobs_url"`
	JobsURLContains string `yaml:"jobs_url_contains"`
	// SearchURL is used when the search form cannot be found. {keywords}
	// and {location} are replaced by the query escaped criteria.
	SearchURL   string              `yaml:"search_url"`
	Search      SearchSelectors     `yaml:"search"`
	Filters     FilterSelectors     `yaml:"filters"`
	Tokens      FilterTokens        `yaml:"tokens"`
	Cards       CardSelectors       `yaml:"cards"`
	Application apply.Selectors     `yaml:"application"`
	Pagination  PaginationSelectors `yaml:"pagination"`
}

// Validate checks that the selectors the engine cannot work without are set.
func (a *Adapter) Validate() error {
	var errs []error
	if a.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if a.Domain == "" {
		errs = append(errs, errors.New("domain is required"))
	}
	if a.JobsURL == "" {
		errs = append(errs, errors.New("jobs_url is required"))
	}
	if len(a.Cards.Card) == 0 {
		errs = append(errs, errors.New("cards.card needs at least one selector"))
	}
	if len(a.Cards.ApplyButton) == 0 {
		errs = append(errs, errors.New("cards.apply_button needs at least one selector"))
	}
	if len(a.Application.StepButtons) == 0 {
		errs = append(errs, errors.New("application.step_buttons needs at least one selector"))
	}
	if len(a.Application.ActionWords) == 0 {
		errs = append(errs, errors.New("application.action_words needs at least one word"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("platform %s: %w", a.Name, err)
	}
	return nil
}

// OnJobsPage reports whether u is already the job search page.
func (a *Adapter) OnJobsPage(u string) bool {
	marker := a.JobsURLContains
	if marker == "" {
		marker = a.JobsURL
	}
	return strings.Contains(u, marker)
}

// InDomain reports whether u points to the platform.
func (a *Adapter) InDomain(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	domain := strings.ToLower(a.Domain)
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// SearchURLFor fills the search URL template.
func (a *Adapter) SearchURLFor(sc types.SearchCriteria) string {
	if a.SearchURL == "" {
		return ""
	}
	r := strings.NewReplacer(
		"{keywords}", url.QueryEscape(sc.Keywords),
		"{location}", url.QueryEscape(sc.Location),
	)
	return r.Replace(a.SearchURL)
}

// DatePostedOption returns the selector of the option for d, or "" when the
// platform has no token for it.
func (a *Adapter) DatePostedOption(d types.DatePosted) string {
	token, ok := a.Tokens.DatePosted[d]
	if !ok || a.Filters.DatePostedOption == "" {
		return ""
	}
	return fmt.Sprintf(a.Filters.DatePostedOption, token)
}

// WorkplaceOption returns the selector of the option for w.
func (a *Adapter) WorkplaceOption(w types.WorkplaceType) string {
	token, ok := a.Tokens.Workplace[w]
	if !ok || a.Filters.WorkplaceOption == "" {
		return ""
	}
	return fmt.Sprintf(a.Filters.WorkplaceOption, token)
}

// ExperienceOption returns the selector of the dropdown entry for years.
func (a *Adapter) ExperienceOption(years int) string {
	if a.Filters.ExperienceOption == "" {
		return ""
	}
	return fmt.Sprintf(a.Filters.ExperienceOption, years)
}

// PageButton returns the selector for page n.
func (a *Adapter) PageButton(n int) string {
	if a.Pagination.PageButton == "" {
		return ""
	}
	return fmt.Sprintf(a.Pagination.PageButton, n)
}
