package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goapply/goapply/internal/config"
	"github.com/goapply/goapply/internal/platform"
	"github.com/goapply/goapply/internal/types"
)

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	sums := []types.RunSummary{
		{Platform: types.PlatformLinkedIn, Applied: 3, Target: 3, NrFailures: 1, Pages: 2, State: "done"},
		{Platform: types.PlatformInternshala, Applied: 1, Target: 5, Pages: 1, State: "failed", Error: "fatal error while searching: results list never appeared"},
	}
	if err := printSummary(&buf, sums); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Linkedin", "Internshala", "Total", "appeared"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected the summary to contain %q but got:\n%s", want, out)
		}
	}
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	recs := []types.ApplicationRecord{{
		JobTitle:  "Senior Backend Engineer (Go, Kubernetes, Postgres) for our Platform Team",
		Company:   "Acme",
		Location:  "Berlin",
		Platform:  types.PlatformNaukri,
		AppliedAt: time.Date(2024, 3, 5, 10, 0, 0, 0, time.Local),
	}}
	if err := printHistory(&buf, recs, "de_DE"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Naukri", "Acme", "Mär", "Kubernetes,..."} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected the history to contain %q but got:\n%s", want, out)
		}
	}
}

func TestPrintPlatforms(t *testing.T) {
	var buf bytes.Buffer
	if err := printPlatforms(&buf, platform.Builtin()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"linkedin.com", "indeed.com", "naukri.com", "internshala.com", "unstop.com", "workplace", "experience"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected the platform list to contain %q but got:\n%s", want, out)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := formatDate(time.Time{}, "en_US"); got != "-" {
		t.Fatalf("expected - for a zero time but got %s", got)
	}
}

func TestRunCriteriaMergesFlags(t *testing.T) {
	c := &config.Config{Criteria: types.SearchCriteria{
		Keywords:               "golang",
		Location:               "Berlin",
		WorkplaceTypes:         []types.WorkplaceType{types.WorkplaceOnsite},
		TargetApplicationCount: 5,
	}}
	r := &RunCmd{Location: "Remote", Target: 2, DatePosted: "WEEK", Workplace: []string{"Remote", "hybrid"}}
	sc := r.criteria(c)
	if sc.Keywords != "golang" || sc.Location != "Remote" || sc.TargetApplicationCount != 2 {
		t.Fatalf("expected flags to override the configured criteria but got %+v", sc)
	}
	if sc.DatePosted != types.DatePostedWeek {
		t.Fatalf("expected date posted week but got %s", sc.DatePosted)
	}
	if len(sc.WorkplaceTypes) != 2 || sc.WorkplaceTypes[0] != types.WorkplaceRemote {
		t.Fatalf("expected the workplace flags to replace the configured ones but got %v", sc.WorkplaceTypes)
	}
	if len(c.Criteria.WorkplaceTypes) != 1 {
		t.Fatalf("expected the configured criteria to stay untouched")
	}
}
