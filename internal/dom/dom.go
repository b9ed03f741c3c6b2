// Package dom defines the narrow view of a browser page the automation engine
// works against. Both the Chrome driver and the in-memory test document
// implement it.
package dom

import (
	"context"
	"errors"
	"strings"
)

// ErrStaleElement is returned when an element handle outlived the node it
// pointed to.
var ErrStaleElement = errors.New("element is no longer attached to the document")

// Queryable is anything selectors can be run against.
type Queryable interface {
	// QueryAll returns all elements matching the css selector in document
	// order. An invalid selector is an error, no match is not.
	QueryAll(ctx context.Context, selector string) ([]Element, error)
}

// Page is one browser tab.
type Page interface {
	Queryable
	URL(ctx context.Context) (string, error)
	Navigate(ctx context.Context, url string) error
}

// Element is a handle to one node. Handles may go stale after any mutation
// of the document; callers re-query instead of caching them.
type Element interface {
	Queryable
	// Key identifies the underlying node. Two handles to the same node have
	// the same key.
	Key() string
	// Info snapshots the attributes and derived state of the element.
	Info(ctx context.Context) (ElementInfo, error)
	Click(ctx context.Context) error
	// SetValue replaces the value of a text control and dispatches the
	// input, change and blur events.
	SetValue(ctx context.Context, value string) error
	// SelectOption selects the option with the given value and dispatches
	// a change event.
	SelectOption(ctx context.Context, value string) error
	ScrollIntoView(ctx context.Context) error
	PressEnter(ctx context.Context) error
}

// Screenshotter is implemented by pages that can capture the viewport.
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// Option is one entry of a select element.
type Option struct {
	Value    string `json:"value"`
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
}

// ElementInfo is a point in time snapshot of an element.
type ElementInfo struct {
	Tag      string            `json:"tag"`
	Attrs    map[string]string `json:"attrs"`
	Text     string            `json:"text"`
	Value    string            `json:"value"`
	Visible  bool              `json:"visible"`
	Disabled bool              `json:"disabled"`
	Checked  bool              `json:"checked"`
	Options  []Option          `json:"options"`
	// LabelText is the text of the enclosing label element.
	LabelText string `json:"labelText"`
	// ForLabelText is the text of a label whose for attribute names this
	// element's id.
	ForLabelText string `json:"forLabelText"`
	// FormText is the text of the enclosing form.
	FormText string `json:"formText"`
}

// Attr returns the attribute value or "" if it is absent.
func (i ElementInfo) Attr(name string) string {
	return i.Attrs[name]
}

// HasAttr reports whether the attribute is present, even if empty.
func (i ElementInfo) HasAttr(name string) bool {
	_, ok := i.Attrs[name]
	return ok
}

// Type returns the lower cased type attribute.
func (i ElementInfo) Type() string {
	return strings.ToLower(i.Attr("type"))
}

// SelectedText returns the text of the currently selected option.
func (i ElementInfo) SelectedText() string {
	for _, o := range i.Options {
		if o.Selected {
			return o.Text
		}
	}
	return ""
}

// ActionText is the text and aria-label of a button, lower cased.
func (i ElementInfo) ActionText() string {
	return strings.ToLower(strings.TrimSpace(i.Text + " " + i.Attr("aria-label")))
}

// NormalizeSpace trims s and collapses internal whitespace runs.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
