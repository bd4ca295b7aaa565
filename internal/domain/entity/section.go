package entity

import (
	"fmt"
	"strings"
)

// State is a step of the application workflow.
type State string

const (
	StateAuth         State = "auth"
	StatePersonalInfo State = "personal-info"
	StateExperience   State = "experience"
	StateEducation    State = "education"
	StateLanguages    State = "languages"
	StateSkills       State = "skills"
	StateResume       State = "resume"
	StateQuestions    State = "questions"
	StateDisclosures  State = "disclosures"
	StateSelfIdentify State = "self-identify"
	StateReview       State = "review"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// DefaultOrder is the section order used when a site does not override it.
var DefaultOrder = []State{
	StateAuth,
	StatePersonalInfo,
	StateExperience,
	StateEducation,
	StateLanguages,
	StateSkills,
	StateResume,
	StateQuestions,
	StateDisclosures,
	StateSelfIdentify,
	StateReview,
}

func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Disclosure reports whether the section asks for voluntary self
// identification, where declining is always an acceptable answer.
func (s State) Disclosure() bool {
	return s == StateDisclosures || s == StateSelfIdentify
}

// ParseState accepts the state names above, case-insensitively.
func ParseState(s string) (State, error) {
	st := State(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range DefaultOrder {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown section %q", s)
}

// RepeatPolicy controls how many panels a section gets.
type RepeatPolicy string

const (
	// RepeatFixed fills FixedCount panels (1 by default) that already exist.
	RepeatFixed RepeatPolicy = "fixed"
	// RepeatPerEntry expects one panel on the page and adds one per
	// remaining profile entry.
	RepeatPerEntry RepeatPolicy = "per-entry"
	// RepeatUntilExhausted expects no panel and adds one per profile entry.
	RepeatUntilExhausted RepeatPolicy = "until-exhausted"
)

// Escalation decides what happens when a section's completion predicate
// fails after all fields were attempted.
type Escalation string

const (
	EscalateContinue Escalation = "continue"
	EscalateAbort    Escalation = "abort"
)

type SectionSpec struct {
	Name  State  `yaml:"name"`
	Title string `yaml:"title"`
	// Selector locates the section container.
	Selector string `yaml:"selector"`
	// PanelSelector is a printf template taking the 1-based panel index.
	PanelSelector string       `yaml:"panel_selector"`
	AddButton     string       `yaml:"add_button"`
	NextButton    string       `yaml:"next_button"`
	Repeat        RepeatPolicy `yaml:"repeat"`
	FixedCount    int          `yaml:"fixed_count"`
	Optional      bool         `yaml:"optional"`
	AllowOracle   bool         `yaml:"allow_oracle"`
	Escalation    Escalation   `yaml:"escalation"`
}

// Panel returns the locator of the i-th (1-based) panel, or the section
// itself when the section has no panels.
func (s SectionSpec) Panel(i int) string {
	if s.PanelSelector == "" {
		return s.Selector
	}
	return fmt.Sprintf(s.PanelSelector, i)
}

// Repeats reports whether the section is driven by a profile list.
func (s SectionSpec) Repeats() bool {
	return s.Repeat == RepeatPerEntry || s.Repeat == RepeatUntilExhausted
}

// PanelCount is the number of panels to fill for a profile list of n
// entries.
func (s SectionSpec) PanelCount(n int) int {
	switch s.Repeat {
	case RepeatPerEntry, RepeatUntilExhausted:
		return n
	case RepeatFixed:
		if s.FixedCount > 0 {
			return s.FixedCount
		}
		return 1
	default:
		return 1
	}
}

// NeedsAdd reports whether panel i (0-based) must be created with the add
// button before it can be filled.
func (s SectionSpec) NeedsAdd(i int) bool {
	switch s.Repeat {
	case RepeatPerEntry:
		return i > 0
	case RepeatUntilExhausted:
		return true
	case RepeatFixed:
		return false
	default:
		return false
	}
}

type AuthMode string

const (
	AuthSignIn AuthMode = "sign-in"
	AuthSignUp AuthMode = "sign-up"
)

func ParseAuthMode(s string) (AuthMode, error) {
	switch AuthMode(strings.ToLower(strings.TrimSpace(s))) {
	case AuthSignIn, "signin", "login":
		return AuthSignIn, nil
	case AuthSignUp, "signup", "register":
		return AuthSignUp, nil
	}
	return "", fmt.Errorf("unknown auth mode %q", s)
}

// AuthFlow is the page interaction for one auth mode.
type AuthFlow struct {
	// Entry is clicked first to reveal the form, when set.
	Entry  string `yaml:"entry"`
	Form   string `yaml:"form"`
	Submit string `yaml:"submit"`
	// Error appears on the page when the credentials were rejected.
	Error string `yaml:"error"`
	// Success appears once the applicant is signed in.
	Success string `yaml:"success"`
}

type AuthSpec struct {
	SignIn AuthFlow `yaml:"sign_in"`
	SignUp AuthFlow `yaml:"sign_up"`
}

func (a AuthSpec) Flow(mode AuthMode) AuthFlow {
	if mode == AuthSignUp {
		return a.SignUp
	}
	return a.SignIn
}

// SiteConfig is the immutable description of one employer's application
// flow.
type SiteConfig struct {
	Name         string        `yaml:"name"`
	Layout       string        `yaml:"layout"`
	URL          string        `yaml:"url"`
	Auth         AuthSpec      `yaml:"auth"`
	Sections     []SectionSpec `yaml:"sections"`
	SubmitButton string        `yaml:"submit_button"`
	MaxSkills    int           `yaml:"max_skills"`
}

// Section finds the spec for state.
func (c SiteConfig) Section(state State) (SectionSpec, bool) {
	for _, s := range c.Sections {
		if s.Name == state {
			return s, true
		}
	}
	return SectionSpec{}, false
}

// Validate checks the ordering rules: auth first, review last, no
// duplicates.
func (c SiteConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("site name is required")
	}
	if c.URL == "" {
		return fmt.Errorf("site %s: url is required", c.Name)
	}
	if len(c.Sections) < 2 {
		return fmt.Errorf("site %s: at least auth and review sections are required", c.Name)
	}
	if c.Sections[0].Name != StateAuth {
		return fmt.Errorf("site %s: first section must be %s", c.Name, StateAuth)
	}
	if c.Sections[len(c.Sections)-1].Name != StateReview {
		return fmt.Errorf("site %s: last section must be %s", c.Name, StateReview)
	}

	seen := make(map[State]bool, len(c.Sections))
	for _, s := range c.Sections {
		if _, err := ParseState(string(s.Name)); err != nil {
			return fmt.Errorf("site %s: %w", c.Name, err)
		}
		if seen[s.Name] {
			return fmt.Errorf("site %s: duplicate section %s", c.Name, s.Name)
		}
		seen[s.Name] = true
		if s.Repeats() && s.PanelSelector == "" {
			return fmt.Errorf("site %s: section %s repeats but has no panel selector", c.Name, s.Name)
		}
		if s.Repeats() && s.AddButton == "" {
			return fmt.Errorf("site %s: section %s repeats but has no add button", c.Name, s.Name)
		}
	}
	return nil
}
