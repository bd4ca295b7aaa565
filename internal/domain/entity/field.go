package entity

import "strings"

// FieldKind is the closed set of control shapes the engine knows how to fill.
type FieldKind string

const (
	KindText         FieldKind = "text"
	KindTextarea     FieldKind = "textarea"
	KindRadio        FieldKind = "radio"
	KindCheckbox     FieldKind = "checkbox"
	KindSingleSelect FieldKind = "single-select"
	KindMultiSelect  FieldKind = "multi-select"
	KindDate         FieldKind = "date"
	KindFile         FieldKind = "file"
	KindUnknown      FieldKind = "unknown"
)

// HasOptions reports whether the kind carries a bounded option set.
func (k FieldKind) HasOptions() bool {
	switch k {
	case KindRadio, KindSingleSelect, KindMultiSelect:
		return true
	case KindText, KindTextarea, KindCheckbox, KindDate, KindFile, KindUnknown:
		return false
	default:
		return false
	}
}

// IsFreeText reports whether any trimmed string is an acceptable value.
func (k FieldKind) IsFreeText() bool {
	switch k {
	case KindText, KindTextarea:
		return true
	case KindRadio, KindSingleSelect, KindMultiSelect, KindCheckbox, KindDate, KindFile, KindUnknown:
		return false
	default:
		return false
	}
}

type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DateParts holds refs of the separate month/day/year inputs of a
// composite date control. Empty refs mean the part is not present.
type DateParts struct {
	Month string `json:"month,omitempty"`
	Day   string `json:"day,omitempty"`
	Year  string `json:"year,omitempty"`
}

func (d DateParts) Empty() bool {
	return d.Month == "" && d.Day == "" && d.Year == ""
}

// FieldDescriptor describes one form control as read from a section
// snapshot. Descriptors are valid only for the read that produced them.
type FieldDescriptor struct {
	ID        string    `json:"id"`
	Ref       string    `json:"ref"`
	ReadID    string    `json:"read_id"`
	Name      string    `json:"name,omitempty"`
	Label     string    `json:"label"`
	Kind      FieldKind `json:"kind"`
	Options   []Option  `json:"options,omitempty"`
	Required  bool      `json:"required"`
	Current   string    `json:"current,omitempty"`
	Checked   bool      `json:"checked,omitempty"`
	Sensitive bool      `json:"sensitive,omitempty"`
	Tagged    bool      `json:"tagged,omitempty"`
	DateParts DateParts `json:"date_parts,omitempty"`
	// AutomationID is the data-automation-id of the control or its form
	// field container, when the site uses them.
	AutomationID string `json:"automation_id,omitempty"`
}

// OptionValues returns a copy of the option values in order.
func (f FieldDescriptor) OptionValues() []string {
	values := make([]string, 0, len(f.Options))
	for _, o := range f.Options {
		values = append(values, o.Value)
	}
	return values
}

// MatchOption finds the option equal to answer, first by exact value and
// then by case/whitespace-insensitive comparison against value and label.
func (f FieldDescriptor) MatchOption(answer string) (Option, bool) {
	for _, o := range f.Options {
		if o.Value == answer {
			return o, true
		}
	}

	norm := NormalizeText(answer)
	if norm == "" {
		return Option{}, false
	}
	for _, o := range f.Options {
		if NormalizeText(o.Value) == norm || NormalizeText(o.Label) == norm {
			return o, true
		}
	}
	return Option{}, false
}

// NormalizeText lowercases s and collapses whitespace runs.
func NormalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
