package classify

import (
	"regexp"
	"strings"

	"github.com/goapply/goapply/internal/dom"
)

var (
	salaryWords      = []string{"salary", "ctc", "compensation", "package", "annual"}
	shortSalaryWords = []string{"salary", "ctc", "compensation", "package", "pay"}
	phoneWords       = []string{"phone", "mobile", "contact"}
	zipWords         = []string{"zip", "postal", "pincode"}
	expWords         = []string{"exp", "year", "duration", "period"}
	incomeWords      = []string{"income", "annual", "monthly", "expected", "current"}
	firstNameWords   = []string{"first name", "firstname"}
	coverLetterWords = []string{"cover letter", "cover", "why should", "about yourself", "why are you"}
)

var currentSalaryPatterns = compileAll(
	`current.+salary`,
	`present.+salary`,
	`current.+ctc`,
	`present.+ctc`,
	`current.+compensation`,
	`current.+package`,
	`salary.+drawing`,
	`current.+annual`,
)

var expectedSalaryPatterns = compileAll(
	`expected.+salary`,
	`desired.+salary`,
	`expected.+ctc`,
	`expected.+compensation`,
	`expected.+package`,
	`salary.+expectation`,
	`expected.+annual`,
)

var experiencePatterns = compileAll(
	`total.+experience`,
	`years?.+experience`,
	`experience.+years?`,
	`work.+experience`,
	`professional.+experience`,
	`(ml|ai|machine learning|artificial intelligence).+experience`,
	`relevant.+experience`,
	`overall.+experience`,
)

func compileAll(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		res[i] = regexp.MustCompile(`(?i)` + e)
	}
	return res
}

func matchesAny(s string, res []*regexp.Regexp) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// DefaultRules returns a fresh copy of the built in rule list.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "salary", Kind: Numeric, Match: matchSalary},
		{Name: "experience", Kind: Numeric, Match: matchExperience},
		{Name: "short-salary", Kind: Numeric, Match: keywordRule(shortSalaryWords, SalaryExpected)},
		{Name: "phone", Kind: Numeric, Match: keywordRule(phoneWords, Phone)},
		{Name: "zip", Kind: Numeric, Match: keywordRule(zipWords, ZipCode)},
		{Name: "duration", Kind: Numeric, Match: keywordRule(expWords, Experience)},
		{Name: "income", Kind: Numeric, Match: keywordRule(incomeWords, SalaryExpected)},
		{Name: "first-name", Kind: Text, Match: keywordRule(firstNameWords, FirstName)},
		{Name: "cover-letter", Kind: Text, Match: matchCoverLetter},
	}
}

func keywordRule(words []string, cat Category) func(Input) (Category, bool) {
	return func(in Input) (Category, bool) {
		return cat, ContainsWord(in.Field.Label, words...)
	}
}

// matchSalary splits salary questions by the full label. An ambiguous
// salary field is resolved from the text of its form and defaults to the
// expected salary.
func matchSalary(in Input) (Category, bool) {
	full := in.Field.FullLabel
	if !ContainsWord(full, salaryWords...) {
		return "", false
	}
	if matchesAny(full, currentSalaryPatterns) {
		return SalaryCurrent, true
	}
	if matchesAny(full, expectedSalaryPatterns) {
		return SalaryExpected, true
	}
	form := strings.ToLower(in.Field.Info.FormText)
	switch {
	case strings.Contains(form, "current"), strings.Contains(form, "present"):
		return SalaryCurrent, true
	default:
		return SalaryExpected, true
	}
}

func matchExperience(in Input) (Category, bool) {
	full := in.Field.FullLabel
	if matchesAny(full, experiencePatterns) {
		return Experience, true
	}
	if strings.Contains(full, "experience") && (strings.Contains(full, "year") || strings.Contains(full, "yr")) {
		return Experience, true
	}
	return "", false
}

// matchCoverLetter only applies to textareas.
func matchCoverLetter(in Input) (Category, bool) {
	if in.Field.Kind != dom.KindTextArea {
		return "", false
	}
	return GenericText, ContainsWord(in.Field.Label+" "+in.Field.FullLabel, coverLetterWords...)
}
