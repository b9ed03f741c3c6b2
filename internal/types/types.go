// Package types defines shared types used across the application.
package types

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Platform identifies a recruiting site.
type Platform string

const (
	PlatformLinkedIn    Platform = "linkedin"
	PlatformIndeed      Platform = "indeed"
	PlatformNaukri      Platform = "naukri"
	PlatformInternshala Platform = "internshala"
	PlatformUnstop      Platform = "unstop"
)

// Platforms lists every supported platform in display order.
var Platforms = []Platform{PlatformLinkedIn, PlatformIndeed, PlatformNaukri, PlatformInternshala, PlatformUnstop}

// ParsePlatform accepts any casing of a platform name.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Platforms, p) {
		return "", fmt.Errorf("unknown platform %q", s)
	}
	return p, nil
}

// DatePosted restricts results to recently posted jobs.
type DatePosted string

const (
	DatePostedAny   DatePosted = "any"
	DatePosted24h   DatePosted = "24h"
	DatePostedWeek  DatePosted = "week"
	DatePostedMonth DatePosted = "month"
)

// WorkplaceType is one of the on-site, remote or hybrid filters.
type WorkplaceType string

const (
	WorkplaceOnsite WorkplaceType = "onsite"
	WorkplaceRemote WorkplaceType = "remote"
	WorkplaceHybrid WorkplaceType = "hybrid"
)

// MaxApplications caps the target of a single run.
const MaxApplications = 50

// SearchCriteria is the immutable input of one run.
type SearchCriteria struct {
	Keywords        string          `yaml:"keywords" json:"keywords"`
	Location        string          `yaml:"location" json:"location"`
	DatePosted      DatePosted      `yaml:"date_posted" json:"datePosted"`
	WorkplaceTypes  []WorkplaceType `yaml:"workplace_types" json:"workplaceTypes"`
	ExperienceYears int             `yaml:"experience" json:"experience"`
	CurrentSalary   int             `yaml:"current_salary" json:"currentSalary"`
	ExpectedSalary  int             `yaml:"expected_salary" json:"expectedSalary"`
	// TargetApplicationCount is the number of successful applications after
	// which the run stops.
	TargetApplicationCount int `yaml:"total_jobs_to_apply" json:"totalJobsToApply"`
	// EasyApplyOnly is a pointer so that an absent value defaults to true.
	EasyApplyOnly *bool    `yaml:"easy_apply_only,omitempty" json:"easyApplyOnly,omitempty"`
	Categories    []string `yaml:"categories,omitempty" json:"categories,omitempty"`
}

// WantsEasyApplyOnly defaults to true when unset.
func (c SearchCriteria) WantsEasyApplyOnly() bool {
	return c.EasyApplyOnly == nil || *c.EasyApplyOnly
}

// Validate checks ranges and enums. It does not modify c.
func (c SearchCriteria) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Keywords) == "" {
		errs = append(errs, errors.New("keywords must not be empty"))
	}
	switch c.DatePosted {
	case "", DatePostedAny, DatePosted24h, DatePostedWeek, DatePostedMonth:
	default:
		errs = append(errs, fmt.Errorf("unknown date posted filter %q", c.DatePosted))
	}
	for _, w := range c.WorkplaceTypes {
		switch w {
		case WorkplaceOnsite, WorkplaceRemote, WorkplaceHybrid:
		default:
			errs = append(errs, fmt.Errorf("unknown workplace type %q", w))
		}
	}
	if c.ExperienceYears < 0 {
		errs = append(errs, errors.New("experience must not be negative"))
	}
	if c.CurrentSalary < 0 || c.ExpectedSalary < 0 {
		errs = append(errs, errors.New("salaries must not be negative"))
	}
	if c.TargetApplicationCount < 1 || c.TargetApplicationCount > MaxApplications {
		errs = append(errs, fmt.Errorf("number of jobs to apply must be between 1 and %d, got %d", MaxApplications, c.TargetApplicationCount))
	}
	return errors.Join(errs...)
}

// ApplicationStatus is the outcome stored with an application record.
type ApplicationStatus string

const (
	StatusApplied ApplicationStatus = "applied"
)

// ApplicationRecord is persisted once per successful application.
type ApplicationRecord struct {
	RunID     string            `json:"runId"`
	JobTitle  string            `json:"jobTitle"`
	Company   string            `json:"company"`
	Location  string            `json:"location"`
	Platform  Platform          `json:"platform"`
	AppliedAt time.Time         `json:"appliedAt"`
	SourceURL string            `json:"sourceUrl"`
	Status    ApplicationStatus `json:"status"`
}

// RunSummary represents the outcome of one run.
type RunSummary struct {
	RunID      string    `json:"runId"`
	Platform   Platform  `json:"platform"`
	Applied    int       `json:"applied"`
	Target     int       `json:"target"`
	NrFailures int       `json:"nrFailures"`
	Pages      int       `json:"pages"`
	State      string    `json:"state"`
	Error      string    `json:"error,omitempty"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}
