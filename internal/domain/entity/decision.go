package entity

import (
	"fmt"
	"strings"
)

type DecisionSource string

const (
	SourceDeterministic DecisionSource = "deterministic-mapping"
	SourceOracle        DecisionSource = "oracle-inferred"
	SourceSkipped       DecisionSource = "skipped"
)

// FillDecision is the resolved value for one field of one read.
type FillDecision struct {
	FieldID          string         `json:"field_id"`
	Ref              string         `json:"ref"`
	ReadID           string         `json:"read_id"`
	Label            string         `json:"label"`
	Kind             FieldKind      `json:"kind"`
	Values           []string       `json:"values,omitempty"`
	Date             *DateValue     `json:"date,omitempty"`
	Source           DecisionSource `json:"source"`
	Rationale        string         `json:"rationale"`
	Required         bool           `json:"required"`
	RequiredUnfilled bool           `json:"required_unfilled,omitempty"`
	Sensitive        bool           `json:"sensitive,omitempty"`
}

// NewDecision starts a decision bound to field.
func NewDecision(field FieldDescriptor) FillDecision {
	return FillDecision{
		FieldID:   field.ID,
		Ref:       field.Ref,
		ReadID:    field.ReadID,
		Label:     field.Label,
		Kind:      field.Kind,
		Required:  field.Required,
		Sensitive: field.Sensitive,
	}
}

func (d FillDecision) Skipped() bool {
	return d.Source == SourceSkipped
}

// Value returns the first value or "".
func (d FillDecision) Value() string {
	if len(d.Values) == 0 {
		return ""
	}
	return d.Values[0]
}

// Skip turns d into a skip, keeping the existing rationale and appending
// detail. Required fields are flagged as unfilled.
func (d FillDecision) Skip(detail string) FillDecision {
	d.Source = SourceSkipped
	d.Values = nil
	d.Date = nil
	switch {
	case d.Rationale == "":
		d.Rationale = detail
	case detail != "":
		d.Rationale = d.Rationale + "; " + detail
	}
	d.RequiredUnfilled = d.Required
	return d
}

// Matches reports whether d was produced from the same read as field.
func (d FillDecision) Matches(field FieldDescriptor) bool {
	return d.FieldID == field.ID && d.ReadID == field.ReadID
}

// Display renders the values for logs, masking sensitive fields.
func (d FillDecision) Display() string {
	if d.Sensitive && (len(d.Values) > 0 || d.Date != nil) {
		return "***"
	}
	if d.Date != nil {
		return d.Date.String()
	}
	return strings.Join(d.Values, ", ")
}

func (d FillDecision) String() string {
	return fmt.Sprintf("%s[%s]=%q (%s)", d.Label, d.Kind, d.Display(), d.Source)
}
