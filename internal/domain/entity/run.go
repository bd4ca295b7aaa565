package entity

import "time"

type Outcome string

const (
	OutcomeFilled    Outcome = "filled"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// RunEntry is one line of the run record: a field, the decision taken for
// it and what happened when it was applied.
type RunEntry struct {
	RunID            string         `json:"run_id"`
	Time             time.Time      `json:"time"`
	Section          State          `json:"section"`
	Panel            int            `json:"panel,omitempty"`
	FieldID          string         `json:"field_id,omitempty"`
	Label            string         `json:"label,omitempty"`
	Kind             FieldKind      `json:"kind,omitempty"`
	Source           DecisionSource `json:"source,omitempty"`
	Value            string         `json:"value,omitempty"`
	Rationale        string         `json:"rationale,omitempty"`
	Outcome          Outcome        `json:"outcome"`
	Attempts         int            `json:"attempts,omitempty"`
	RequiredUnfilled bool           `json:"required_unfilled,omitempty"`
	Error            string         `json:"error,omitempty"`
}

// EntryFor builds the record line for an applied decision.
func EntryFor(section State, panel int, d FillDecision, outcome Outcome, attempts int, err error) RunEntry {
	e := RunEntry{
		Section:          section,
		Panel:            panel,
		FieldID:          d.FieldID,
		Label:            d.Label,
		Kind:             d.Kind,
		Source:           d.Source,
		Value:            d.Display(),
		Rationale:        d.Rationale,
		Outcome:          outcome,
		Attempts:         attempts,
		RequiredUnfilled: d.RequiredUnfilled,
	}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// SectionReport summarizes one visited section.
type SectionReport struct {
	Section          State    `json:"section"`
	Panels           int      `json:"panels"`
	Adds             int      `json:"adds"`
	Filled           int      `json:"filled"`
	Unchanged        int      `json:"unchanged"`
	Skipped          int      `json:"skipped"`
	RequiredUnfilled []string `json:"required_unfilled,omitempty"`
	Errors           []string `json:"errors,omitempty"`
	Absent           bool     `json:"absent,omitempty"`
	Complete         bool     `json:"complete"`
}

// Count tallies one applied decision.
func (r *SectionReport) Count(d FillDecision, outcome Outcome) {
	switch outcome {
	case OutcomeFilled:
		r.Filled++
	case OutcomeUnchanged:
		r.Unchanged++
	case OutcomeSkipped, OutcomeFailed:
		r.Skipped++
	}
	if d.RequiredUnfilled {
		r.RequiredUnfilled = append(r.RequiredUnfilled, d.Label)
	}
}
