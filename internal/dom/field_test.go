package dom

import "testing"

func TestNewFormFieldLabels(t *testing.T) {
	tests := []struct {
		name      string
		info      ElementInfo
		kind      FieldKind
		label     string
		fullLabel string
	}{
		{
			name: "aria label wins the short label",
			info: ElementInfo{Tag: "input", Attrs: map[string]string{"type": "text", "aria-label": "Phone", "name": "p"}, LabelText: "Mobile phone number"},
			kind: KindText, label: "phone", fullLabel: "mobile phone number",
		},
		{
			name: "label for is used when there is no enclosing label",
			info: ElementInfo{Tag: "input", Attrs: map[string]string{"id": "x"}, ForLabelText: "  Years of   experience "},
			kind: KindText, label: "years of experience", fullLabel: "years of experience",
		},
		{
			name: "name is the last resort",
			info: ElementInfo{Tag: "textarea", Attrs: map[string]string{"name": "cover"}},
			kind: KindTextArea, label: "cover", fullLabel: "",
		},
		{
			name: "checkbox",
			info: ElementInfo{Tag: "INPUT", Attrs: map[string]string{"type": "Checkbox", "placeholder": "Agree"}},
			kind: KindCheckbox, label: "agree", fullLabel: "agree",
		},
		{
			name: "select",
			info: ElementInfo{Tag: "select", Attrs: map[string]string{"aria-label": "Experience"}},
			kind: KindSelect, label: "experience", fullLabel: "experience",
		},
	}
	for _, tt := range tests {
		f, ok := NewFormField(tt.info)
		if !ok {
			t.Fatalf("%s: expected a fillable field", tt.name)
		}
		if f.Kind != tt.kind {
			t.Fatalf("%s: expected kind %s but got %s", tt.name, tt.kind, f.Kind)
		}
		if f.Label != tt.label {
			t.Fatalf("%s: expected label %q but got %q", tt.name, tt.label, f.Label)
		}
		if f.FullLabel != tt.fullLabel {
			t.Fatalf("%s: expected full label %q but got %q", tt.name, tt.fullLabel, f.FullLabel)
		}
	}
}

func TestNewFormFieldSkipsButtons(t *testing.T) {
	for _, typ := range []string{"submit", "hidden", "button", "file", "image", "reset"} {
		if _, ok := NewFormField(ElementInfo{Tag: "input", Attrs: map[string]string{"type": typ}}); ok {
			t.Fatalf("expected input type %s to be skipped", typ)
		}
	}
	if _, ok := NewFormField(ElementInfo{Tag: "button"}); ok {
		t.Fatalf("expected button element to be skipped")
	}
}
