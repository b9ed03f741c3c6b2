package dom

import "strings"

// FieldKind is the control type of a form field.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindNumeric  FieldKind = "numeric"
	KindTextArea FieldKind = "textarea"
	KindSelect   FieldKind = "select"
	KindRadio    FieldKind = "radio"
	KindCheckbox FieldKind = "checkbox"
)

// skippedInputTypes are input types that never receive a value.
var skippedInputTypes = map[string]bool{
	"hidden": true,
	"submit": true,
	"button": true,
	"image":  true,
	"reset":  true,
	"file":   true,
}

// FormField is a transient view over one input, select or textarea.
type FormField struct {
	Kind FieldKind
	// Label is the lower cased short label: aria-label, enclosing label,
	// label[for], placeholder, name. First non-empty wins.
	Label string
	// FullLabel is the lower cased descriptive label: enclosing label,
	// label[for], aria-label, placeholder.
	FullLabel string
	Info      ElementInfo
}

// NewFormField derives the field view from an element snapshot. The second
// return value is false for controls that are never filled.
func NewFormField(info ElementInfo) (FormField, bool) {
	f := FormField{Info: info}
	switch strings.ToLower(info.Tag) {
	case "select":
		f.Kind = KindSelect
	case "textarea":
		f.Kind = KindTextArea
	case "input":
		t := info.Type()
		if skippedInputTypes[t] {
			return f, false
		}
		switch t {
		case "radio":
			f.Kind = KindRadio
		case "checkbox":
			f.Kind = KindCheckbox
		default:
			f.Kind = KindText
		}
	default:
		return f, false
	}
	f.Label = firstNonEmpty(
		info.Attr("aria-label"),
		info.LabelText,
		info.ForLabelText,
		info.Attr("placeholder"),
		info.Attr("name"),
	)
	f.FullLabel = firstNonEmpty(
		info.LabelText,
		info.ForLabelText,
		info.Attr("aria-label"),
		info.Attr("placeholder"),
	)
	return f, true
}

// Fillable reports whether the field is visible and enabled.
func (f FormField) Fillable() bool {
	return f.Info.Visible && !f.Info.Disabled
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = NormalizeSpace(v); v != "" {
			return strings.ToLower(v)
		}
	}
	return ""
}
