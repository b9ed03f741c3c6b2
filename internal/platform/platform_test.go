package platform

import (
	"strings"
	"testing"

	"github.com/goapply/goapply/internal/types"
	"gopkg.in/yaml.v3"
)

func TestBuiltinAdaptersAreValid(t *testing.T) {
	r := Builtin()
	for _, p := range types.Platforms {
		a, err := r.Get(p)
		if err != nil {
			t.Fatalf("expected an adapter for %s but got %v", p, err)
		}
		if err := a.Validate(); err != nil {
			t.Fatalf("expected %s to be valid but got %v", p, err)
		}
		if !a.InDomain(a.JobsURL) {
			t.Fatalf("expected the jobs url of %s to be inside its domain", p)
		}
	}
	if got := r.Platforms(); len(got) != len(types.Platforms) || got[0] != types.PlatformLinkedIn {
		t.Fatalf("expected platforms in display order but got %v", got)
	}
}

func TestInDomain(t *testing.T) {
	a := linkedIn()
	tests := []struct {
		u    string
		want bool
	}{
		{"https://www.linkedin.com/jobs/", true},
		{"https://linkedin.com/feed", true},
		{"https://evil-linkedin.com/jobs", false},
		{"https://linkedin.com.example.org/jobs", false},
		{"::", false},
	}
	for _, tc := range tests {
		if got := a.InDomain(tc.u); got != tc.want {
			t.Fatalf("expected InDomain(%q) to be %v but got %v", tc.u, tc.want, got)
		}
	}
}

func TestFilterOptionSelectors(t *testing.T) {
	a := linkedIn()
	if got := a.DatePostedOption(types.DatePostedWeek); got != "#timePostedRange-r604800" {
		t.Fatalf("expected the week option selector but got %q", got)
	}
	if got := a.DatePostedOption(types.DatePostedAny); got != "" {
		t.Fatalf("expected no selector for any but got %q", got)
	}
	if got := a.WorkplaceOption(types.WorkplaceHybrid); got != "#workplaceType-3" {
		t.Fatalf("expected the hybrid option selector but got %q", got)
	}
	if got := a.PageButton(3); got != `button[aria-label="Page 3"]` {
		t.Fatalf("expected the page 3 button but got %q", got)
	}
	if got := naukri().PageButton(2); got != "" {
		t.Fatalf("expected no page button template but got %q", got)
	}
	if got := naukri().ExperienceOption(4); got != `.dropdownList li[title^="4"]` {
		t.Fatalf("expected the 4 years dropdown entry but got %q", got)
	}
	if got := a.ExperienceOption(4); got != "" {
		t.Fatalf("expected no experience option but got %q", got)
	}
}

func TestSearchURLFor(t *testing.T) {
	got := indeed().SearchURLFor(types.SearchCriteria{Keywords: "Backend Engineer", Location: "Remote"})
	if got != "https://www.indeed.com/jobs?q=Backend+Engineer&l=Remote" {
		t.Fatalf("expected the escaped search url but got %q", got)
	}
	if got := unstop().SearchURLFor(types.SearchCriteria{Keywords: "go"}); got != "" {
		t.Fatalf("expected no search url but got %q", got)
	}
}

func TestOverride(t *testing.T) {
	var overrides map[string]yaml.Node
	doc := `
LinkedIn:
  cards:
    card: [".my-card"]
  tokens:
    date_posted:
      24h: r3600
`
	if err := yaml.Unmarshal([]byte(doc), &overrides); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := Builtin()
	if err := r.Override(overrides); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, _ := r.Get(types.PlatformLinkedIn)
	if len(a.Cards.Card) != 1 || a.Cards.Card[0] != ".my-card" {
		t.Fatalf("expected the card selectors to be replaced but got %v", a.Cards.Card)
	}
	if got := a.DatePostedOption(types.DatePosted24h); got != "#timePostedRange-r3600" {
		t.Fatalf("expected the overridden token but got %q", got)
	}
	if got := a.DatePostedOption(types.DatePostedMonth); got != "#timePostedRange-r2592000" {
		t.Fatalf("expected untouched tokens to survive but got %q", got)
	}
	if len(a.Application.StepButtons) != 7 {
		t.Fatalf("expected the step buttons to be kept but got %d", len(a.Application.StepButtons))
	}
	if fresh := linkedIn(); fresh.Cards.Card[0] == ".my-card" {
		t.Fatalf("expected the builtin table to be left untouched")
	}
}

func TestOverrideRejectsInvalid(t *testing.T) {
	var overrides map[string]yaml.Node
	if err := yaml.Unmarshal([]byte("indeed:\n  cards:\n    card: []\n"), &overrides); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Builtin().Override(overrides); err == nil {
		t.Fatalf("expected an error for an adapter without card selectors")
	}
	overrides = nil
	if err := yaml.Unmarshal([]byte("naukri:\n  application:\n    action_words: []\n"), &overrides); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := Builtin().Override(overrides)
	if err == nil || !strings.Contains(err.Error(), "action_words") {
		t.Fatalf("expected an error for an adapter without action words but got %v", err)
	}
	overrides = nil
	if err := yaml.Unmarshal([]byte("monster: {}\n"), &overrides); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Builtin().Override(overrides); err == nil {
		t.Fatalf("expected an error for an unknown platform")
	}
}
