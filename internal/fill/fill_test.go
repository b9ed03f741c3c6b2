package fill

import (
	"context"
	"testing"
	"time"

	"github.com/goapply/goapply/internal/classify"
	"github.com/goapply/goapply/internal/clock"
	"github.com/goapply/goapply/internal/dom"
	"github.com/goapply/goapply/internal/fakedom"
	"github.com/goapply/goapply/internal/types"
)

const stepHTML = `<html><body><div class="modal"><form>
<label>First name <input id="first" type="text"></label>
<label>City <input id="city" type="text" value="Berlin"></label>
<label>How many years of work experience do you have? <input id="exp" type="text"></label>
<label>Expected salary <input id="salary" type="number"></label>
<label>Nickname <input id="disabled" type="text" disabled></label>
<div hidden><label>Secret <input id="hidden" type="text"></label></div>
<label>Years of experience
  <select id="expsel">
    <option value="">Select an option</option>
    <option value="a">0-1 years</option>
    <option value="b">2-3 years</option>
    <option value="c">5+ years</option>
  </select>
</label>
<label>Country <select id="country"><option>Please select</option><option value="de">Germany</option></select></label>
<label>Size <select id="size"><option value="m" selected>Medium</option><option value="l">Large</option></select></label>
<label><input type="checkbox" id="terms"> I agree to the terms</label>
<label><input type="checkbox" id="news"> Subscribe to job alerts by email</label>
<label><input type="checkbox" id="relocate"> Willing to relocate</label>
<fieldset><label><input type="radio" name="auth" id="auth-yes" value="Yes"> Yes</label>
<label><input type="radio" name="auth" id="auth-no" value="No"> No</label></fieldset>
<label>Why should we hire you? <textarea id="why" class="cover"></textarea></label>
<input type="hidden" name="csrf" value="">
<input type="submit" value="Next">
</form></div></body></html>`

func TestFill(t *testing.T) {
	clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	p := fakedom.New(clk)
	if err := p.Load("https://example.com/apply", stepHTML); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := New(classify.New(classify.DefaultProfile()), clk, DefaultSettle)
	sc := types.SearchCriteria{Keywords: "go", ExperienceYears: 4, ExpectedSalary: 90000, TargetApplicationCount: 1}

	rep, err := f.Fill(context.Background(), p, sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rep.Errors) != 0 {
		t.Fatalf("expected no field errors but got %v", rep.Errors)
	}

	values := map[string]string{
		"#first":  "John",
		"#city":   "Berlin",
		"#exp":    "4",
		"#salary": "90000",
	}
	for sel, want := range values {
		if got, _ := p.Attr(sel, "value"); got != want {
			t.Fatalf("expected %s to hold %q but got %q", sel, want, got)
		}
	}
	for _, sel := range []string{"#disabled", "#hidden"} {
		if v, _ := p.Attr(sel, "value"); v != "" {
			t.Fatalf("expected %s to be left alone but got %q", sel, v)
		}
	}

	selected := map[string]string{
		"#expsel option[value=c]":   "5+ years",
		"#country option[value=de]": "Germany",
		"#size option[value=m]":     "Medium",
	}
	for sel, name := range selected {
		if _, ok := p.Attr(sel, "selected"); !ok {
			t.Fatalf("expected %s to be selected", name)
		}
	}

	checked := map[string]bool{"#terms": true, "#news": false, "#relocate": true, "#auth-yes": true, "#auth-no": false}
	for sel, want := range checked {
		if _, got := p.Attr(sel, "checked"); got != want {
			t.Fatalf("expected checked=%v for %s but got %v", want, sel, got)
		}
	}

	// seen: first, city, exp, salary, expsel, country, size, terms, news,
	// relocate, two radios, textarea
	if rep.Seen != 13 {
		t.Fatalf("expected 13 fields to be seen but got %d", rep.Seen)
	}
	if clk.Slept() != time.Duration(rep.Seen)*DefaultSettle {
		t.Fatalf("expected to settle after every field but slept %v", clk.Slept())
	}
}

func TestFillRespectsCancellation(t *testing.T) {
	p := fakedom.New(clock.NewFake(time.Now()))
	if err := p.Load("https://example.com/apply", stepHTML); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := New(classify.New(classify.DefaultProfile()), clock.NewFake(time.Now()), DefaultSettle)
	if _, err := f.Fill(ctx, p, types.SearchCriteria{}); err == nil {
		t.Fatalf("expected an error for a cancelled context")
	}
}

func TestClosestNumericOption(t *testing.T) {
	options := []dom.Option{
		{Value: "", Text: "Select an option"},
		{Value: "a", Text: "0-1 years"},
		{Value: "b", Text: "2-3 years"},
		{Value: "c", Text: "5+ years"},
	}
	tests := []struct {
		target int
		want   string
	}{
		{4, "5+ years"},
		{1, "0-1 years"},
		{0, "0-1 years"},
		{3, "2-3 years"},
		{100, "5+ years"},
	}
	for _, tt := range tests {
		got, ok := ClosestNumericOption(options, tt.target)
		if !ok || got.Text != tt.want {
			t.Fatalf("expected %q for target %d but got %q", tt.want, tt.target, got.Text)
		}
	}
}

func TestClosestNumericOptionTieGoesToFirst(t *testing.T) {
	options := []dom.Option{{Value: "x", Text: "2 years"}, {Value: "y", Text: "4 years"}}
	got, _ := ClosestNumericOption(options, 3)
	if got.Value != "x" {
		t.Fatalf("expected the tie to go to the first option but got %q", got.Text)
	}
	if _, ok := ClosestNumericOption([]dom.Option{{Value: "n", Text: "None"}}, 3); ok {
		t.Fatalf("expected no match when no option has a number")
	}
}

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"--", true},
		{"Select an option", true},
		{"Please select...", true},
		{"Select your country", true},
		{"Choose one:", true},
		{"Selct an optin", true},
		{"Plase slct", false},
		{"0", false},
		{"Germany", false},
		{"No", false},
		{"Yes", false},
	}
	for _, tt := range tests {
		if got := IsPlaceholder(tt.in); got != tt.want {
			t.Fatalf("expected IsPlaceholder(%q) to be %v but got %v", tt.in, tt.want, got)
		}
	}
}
