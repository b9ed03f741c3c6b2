// Package classify decides what to type into a form field.
//
// Classification is an ordered list of rules, first match wins. The default
// rules encode keyword heuristics for the questions recruiting sites ask most
// often: years of experience, salary, phone, postal code and first name. A
// field no rule recognizes still gets a generic answer since an empty
// required field stops the application.
package classify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goapply/goapply/internal/dom"
	"github.com/goapply/goapply/internal/types"
)

// Kind separates numeric fields from free text.
type Kind string

const (
	Text    Kind = "text"
	Numeric Kind = "numeric"
)

// Category is the semantic meaning of a field.
type Category string

const (
	Experience     Category = "experience"
	SalaryCurrent  Category = "salaryCurrent"
	SalaryExpected Category = "salaryExpected"
	Phone          Category = "phone"
	ZipCode        Category = "zipCode"
	FirstName      Category = "firstName"
	GenericYes     Category = "genericYes"
	GenericOne     Category = "genericOne"
	GenericText    Category = "genericText"
)

// Profile holds the personal defaults typed into fields the search criteria
// do not cover.
type Profile struct {
	FirstName   string `yaml:"first_name" env:"PROFILE_FIRST_NAME" env-default:"John"`
	Phone       string `yaml:"phone" env:"PROFILE_PHONE" env-default:"1234567890"`
	ZipCode     string `yaml:"zip_code" env:"PROFILE_ZIP_CODE" env-default:"10001"`
	CoverLetter string `yaml:"cover_letter" env:"PROFILE_COVER_LETTER"`
}

// DefaultCoverLetter is used when the profile has none.
const DefaultCoverLetter = "I am writing to express my interest in this opportunity. My skills and experience align well with the requirements you've outlined, and I'm excited about the possibility of contributing to your team."

// DefaultProfile returns the built in defaults.
func DefaultProfile() Profile {
	return Profile{FirstName: "John", Phone: "1234567890", ZipCode: "10001", CoverLetter: DefaultCoverLetter}
}

// Input is everything a rule may look at.
type Input struct {
	Field    dom.FormField
	Criteria types.SearchCriteria
}

// Result is the outcome of a classification.
type Result struct {
	Kind     Kind
	Category Category
	Value    string
	Rule     string
}

// Rule recognizes one category. Rules only apply to fields of their Kind.
type Rule struct {
	Name  string
	Kind  Kind
	Match func(in Input) (Category, bool)
}

// Classifier applies rules in order.
type Classifier struct {
	Rules   []Rule
	Profile Profile
}

// New returns a classifier with the default rules.
func New(profile Profile) *Classifier {
	if profile.CoverLetter == "" {
		profile.CoverLetter = DefaultCoverLetter
	}
	return &Classifier{Rules: DefaultRules(), Profile: profile}
}

// Register adds a rule in front of the existing ones.
func (c *Classifier) Register(r Rule) {
	c.Rules = append([]Rule{r}, c.Rules...)
}

// Classify is deterministic: the same input always yields the same result.
func (c *Classifier) Classify(in Input) Result {
	kind := Text
	if IsNumeric(in.Field) {
		kind = Numeric
	}
	for _, r := range c.Rules {
		if r.Kind != kind {
			continue
		}
		if cat, ok := r.Match(in); ok {
			return Result{Kind: kind, Category: cat, Value: c.Value(cat, in.Criteria), Rule: r.Name}
		}
	}
	cat := GenericYes
	if kind == Numeric {
		cat = GenericOne
	}
	return Result{Kind: kind, Category: cat, Value: c.Value(cat, in.Criteria), Rule: "fallback"}
}

// Value resolves a category to the string typed into the field.
func (c *Classifier) Value(cat Category, sc types.SearchCriteria) string {
	switch cat {
	case Experience:
		return strconv.Itoa(sc.ExperienceYears)
	case SalaryCurrent:
		return strconv.Itoa(sc.CurrentSalary)
	case SalaryExpected:
		return strconv.Itoa(sc.ExpectedSalary)
	case Phone:
		return c.Profile.Phone
	case ZipCode:
		return c.Profile.ZipCode
	case FirstName:
		return c.Profile.FirstName
	case GenericText:
		return c.Profile.CoverLetter
	case GenericOne:
		return "1"
	default:
		return "Yes"
	}
}

var numericKeywords = []string{
	"year", "yrs",
	"salary", "ctc", "compensation", "pay", "package",
	"phone", "mobile", "contact",
	"zip", "postal", "pincode",
	"age", "duration", "period",
	"digit", "numeric", "number",
	"amount", "quantity", "count",
	"gpa", "score", "percentage",
	"experience", "exp",
}

var numericNameRe = regexp.MustCompile(`(?i)(?:^|\W)(number|amount|count|quantity|value|digit|numeric)(?:$|\W)`)

// IsNumeric reports whether a field expects a number, from its attributes or
// from keywords in its label. Textareas are always free text.
func IsNumeric(f dom.FormField) bool {
	info := f.Info
	switch {
	case f.Kind == dom.KindTextArea:
		return false
	case f.Kind == dom.KindNumeric:
		return true
	case info.Type() == "number", info.Type() == "tel":
		return true
	case strings.EqualFold(info.Attr("inputmode"), "numeric"):
		return true
	case strings.Contains(info.Attr("pattern"), "[0-9]"), strings.Contains(info.Attr("pattern"), `\d`):
		return true
	case info.HasAttr("min"), info.HasAttr("max"), info.HasAttr("step"):
		return true
	}
	name := info.Attr("name")
	if name == "" {
		name = info.Attr("id")
	}
	if numericNameRe.MatchString(name) {
		return true
	}
	return ContainsWord(f.Label, numericKeywords...)
}

var wordRes = map[string]*regexp.Regexp{}

// ContainsWord reports whether any keyword starts a word in s. Matching at
// word starts keeps "pay" from matching "company" and "age" from matching
// "language" while "year" still matches "years".
func ContainsWord(s string, keywords ...string) bool {
	for _, k := range keywords {
		re, ok := wordRes[k]
		if !ok {
			re = regexp.MustCompile(`\b` + regexp.QuoteMeta(k))
		}
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func init() {
	for _, list := range [][]string{numericKeywords, salaryWords, shortSalaryWords, phoneWords, zipWords, expWords, incomeWords, firstNameWords, coverLetterWords} {
		for _, k := range list {
			wordRes[k] = regexp.MustCompile(`\b` + regexp.QuoteMeta(k))
		}
	}
}
