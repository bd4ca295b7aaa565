package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"apply-agent/internal/application/port/output"
	"apply-agent/internal/domain/entity"
	"apply-agent/internal/usecase/recovery"
)

// Scope is the context a field is resolved in.
type Scope struct {
	Section entity.State
	// Panel is the 0-based index into the profile list backing a repeated
	// section.
	Panel       int
	Profile     *entity.UserProfile
	AllowOracle bool
}

type Resolver struct {
	oracle   output.Oracle
	recovery *recovery.Recovery
	logger   output.LoggerPort
	now      func() time.Time
	exists   func(string) bool
}

type Option func(*Resolver)

// WithClock replaces time.Now, used for "date signed" style fields.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithFileCheck replaces the resume existence check.
func WithFileCheck(exists func(string) bool) Option {
	return func(r *Resolver) { r.exists = exists }
}

func New(oracle output.Oracle, rec *recovery.Recovery, logger output.LoggerPort, opts ...Option) *Resolver {
	r := &Resolver{
		oracle:   oracle,
		recovery: rec,
		logger:   logger,
		now:      time.Now,
		exists:   fileExists,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve produces the decision for one field. Failures to find an answer
// never surface as errors: they become skipped decisions carrying the
// reason. The only error returned is the context's.
func (r *Resolver) Resolve(ctx context.Context, field entity.FieldDescriptor, scope Scope) (entity.FillDecision, error) {
	if err := ctx.Err(); err != nil {
		return entity.FillDecision{}, err
	}

	d := entity.NewDecision(field)
	if field.Kind == entity.KindUnknown {
		return d.Skip(entity.ErrUnsupportedField.Error()), nil
	}

	in := lookup{
		profile: scope.Profile,
		panel:   scope.Panel,
		field:   field,
		now:     r.now(),
		exists:  r.exists,
	}

	if rl, key, ok := match(scope.Section, field); ok {
		ans, has := rl.get(in)
		switch {
		case has && ans.settled:
			d = d.Skip(ans.note)
			d.RequiredUnfilled = false
			return d, nil
		case has:
			if fitted, ok := fit(d, field, ans); ok {
				fitted.Source = entity.SourceDeterministic
				fitted.Rationale = fmt.Sprintf("label matched %q", key)
				return fitted, nil
			}
			d.Rationale = fmt.Sprintf("label matched %q but the profile value fits no option", key)
		case scope.Section.Disclosure() || scope.Section == entity.StateQuestions:
			// Fall through to the decline option or the oracle below.
		default:
			note := ans.note
			if note == "" {
				note = fmt.Sprintf("profile has no value for %q", key)
			}
			return d.Skip(note), nil
		}
	}

	if scope.Section.Disclosure() && field.Kind.HasOptions() {
		if opt, ok := declineOption(field.Options); ok {
			d.Values = []string{opt.Value}
			d.Source = entity.SourceDeterministic
			d.Rationale = "no disclosure in profile; declined"
			return d, nil
		}
	}

	return r.infer(ctx, d, field, scope)
}

func (r *Resolver) infer(ctx context.Context, d entity.FillDecision, field entity.FieldDescriptor, scope Scope) (entity.FillDecision, error) {
	if !scope.AllowOracle || r.oracle == nil {
		return d.Skip("no deterministic mapping"), nil
	}
	ex := excerpt(scope)
	if ex == "" {
		return d.Skip("empty profile slice"), nil
	}

	req := output.OracleRequest{
		Label:    field.Label,
		Kind:     field.Kind,
		Options:  append([]entity.Option(nil), field.Options...),
		Excerpt:  ex,
		Multiple: field.Kind == entity.KindMultiSelect,
	}

	switch field.Kind {
	case entity.KindCheckbox:
		req.Options = []entity.Option{{Label: "Yes", Value: "true"}, {Label: "No", Value: "false"}}
		field.Options = req.Options
	case entity.KindMultiSelect:
		if field.Tagged {
			// Tag inputs only accept entries that exist in the profile.
			req.Options = optionsOf(scope.Profile.Skills())
			field.Options = req.Options
		}
	case entity.KindDate, entity.KindFile:
		return d.Skip("no deterministic mapping for " + string(field.Kind)), nil
	case entity.KindText, entity.KindTextarea, entity.KindRadio, entity.KindSingleSelect, entity.KindUnknown:
	}

	if field.Kind.HasOptions() || field.Kind == entity.KindCheckbox {
		if len(req.Options) == 0 {
			return d.Skip("no options to choose from"), nil
		}
	}

	resp, err := r.ask(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return d, ctxErr
		}
		if errors.Is(err, entity.ErrAmbiguousField) {
			return d.Skip(err.Error()), nil
		}
		return d.Skip(fmt.Sprintf("oracle: %v", err)), nil
	}
	if resp.NoMatch || len(resp.Values) == 0 {
		return d.Skip(entity.ErrNoConfidentMatch.Error()), nil
	}

	d.Source = entity.SourceOracle
	d.Rationale = fmt.Sprintf("inferred by %s", r.oracle.Name())

	if field.Kind.IsFreeText() {
		v := strings.TrimSpace(resp.Values[0])
		if v == "" {
			return d.Skip(entity.ErrNoConfidentMatch.Error()), nil
		}
		d.Values = []string{v}
		return d, nil
	}

	if field.Kind == entity.KindMultiSelect {
		d.Values = matchAll(field, resp.Values)
		if len(d.Values) == 0 {
			return d.Skip(fmt.Sprintf("%v: oracle answered %q", entity.ErrAmbiguousField, resp.Values)), nil
		}
		if field.Tagged {
			d.Values = inOrder(d.Values, scope.Profile.Skills())
		}
		return d, nil
	}

	opt, ok := field.MatchOption(resp.Values[0])
	if !ok {
		return d.Skip(fmt.Sprintf("%v: oracle answered %q", entity.ErrAmbiguousField, resp.Values[0])), nil
	}
	d.Values = []string{opt.Value}
	return d, nil
}

func (r *Resolver) ask(ctx context.Context, req output.OracleRequest) (*output.OracleResponse, error) {
	var resp *output.OracleResponse
	call := func(ctx context.Context) error {
		var err error
		resp, err = r.oracle.Ask(ctx, req)
		return err
	}

	if r.recovery == nil {
		return resp, call(ctx)
	}
	_, err := r.recovery.Do(ctx, "oracle "+req.Label, call)
	return resp, err
}

// fit converts a deterministic answer into decision values, checking
// option fields against their option set.
func fit(d entity.FillDecision, field entity.FieldDescriptor, ans answer) (entity.FillDecision, bool) {
	switch field.Kind {
	case entity.KindDate:
		if ans.date == nil {
			return d, false
		}
		d.Date = ans.date
		return d, true
	case entity.KindCheckbox:
		if len(ans.values) != 1 || (ans.values[0] != "true" && ans.values[0] != "false") {
			return d, false
		}
		d.Values = ans.values
		return d, true
	case entity.KindRadio, entity.KindSingleSelect:
		if len(ans.values) == 0 {
			return d, false
		}
		opt, ok := field.MatchOption(ans.values[0])
		if !ok {
			return d, false
		}
		d.Values = []string{opt.Value}
		return d, true
	case entity.KindMultiSelect:
		if field.Tagged {
			d.Values = append([]string(nil), ans.values...)
			return d, len(d.Values) > 0
		}
		d.Values = matchAll(field, ans.values)
		return d, len(d.Values) > 0
	case entity.KindText, entity.KindTextarea, entity.KindFile:
		if len(ans.values) == 0 || ans.values[0] == "" {
			return d, false
		}
		d.Values = ans.values[:1]
		return d, true
	case entity.KindUnknown:
		return d, false
	default:
		return d, false
	}
}

// matchAll keeps the answers that name an option, as option values, in
// answer order and without duplicates.
func matchAll(field entity.FieldDescriptor, answers []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range answers {
		opt, ok := field.MatchOption(a)
		if !ok || seen[opt.Value] {
			continue
		}
		seen[opt.Value] = true
		out = append(out, opt.Value)
	}
	return out
}

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

func normalize(s string) string {
	return strings.TrimSpace(nonWord.ReplaceAllString(strings.ToLower(s), " "))
}

// match finds the rule whose key is the longest match for the field label.
// An automation id hit beats any label key.
func match(section entity.State, field entity.FieldDescriptor) (rule, string, bool) {
	label := normalize(field.Label)
	padded := " " + label + " "
	automation := strings.ToLower(field.AutomationID)

	var (
		best    rule
		bestKey string
		bestLen = -1
	)
	for _, rl := range tables[section] {
		if !rl.accepts(field.Kind) {
			continue
		}
		for _, a := range rl.automation {
			if automation != "" && strings.Contains(automation, a) && bestLen < 1000 {
				best, bestKey, bestLen = rl, field.AutomationID, 1000
			}
		}
		for _, k := range rl.keys {
			exact := strings.HasPrefix(k, "=")
			nk := normalize(strings.TrimPrefix(k, "="))
			hit := label == nk
			if !exact && !hit {
				hit = strings.Contains(padded, " "+nk+" ")
			}
			if hit && len(nk) > bestLen {
				best, bestKey, bestLen = rl, nk, len(nk)
			}
		}
	}
	return best, bestKey, bestLen >= 0
}

// inOrder sorts values by their position in order. Values missing from
// order keep their relative position at the end.
func inOrder(values, order []string) []string {
	rank := make(map[string]int, len(order))
	for i, v := range order {
		if _, ok := rank[v]; !ok {
			rank[v] = i
		}
	}
	out := append([]string(nil), values...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iok := rank[out[i]]
		rj, jok := rank[out[j]]
		if iok && jok {
			return ri < rj
		}
		return iok && !jok
	})
	return out
}

func declineOption(options []entity.Option) (entity.Option, bool) {
	for _, marker := range declineMarkers {
		for _, o := range options {
			if strings.Contains(strings.ToLower(o.Label), marker) {
				return o, true
			}
		}
	}
	return entity.Option{}, false
}

func optionsOf(values []string) []entity.Option {
	out := make([]entity.Option, 0, len(values))
	for _, v := range values {
		out = append(out, entity.Option{Label: v, Value: v})
	}
	return out
}

// excerpt renders the slice of the profile relevant to the section. The
// password never leaves the process.
func excerpt(scope Scope) string {
	p := scope.Profile
	if p == nil {
		return ""
	}

	personal := p.PersonalInformation
	personal.Password = ""

	var v any
	switch scope.Section {
	case entity.StateExperience:
		if scope.Panel >= 0 && scope.Panel < len(p.WorkExperience) {
			v = p.WorkExperience[scope.Panel]
		}
	case entity.StateEducation:
		if scope.Panel >= 0 && scope.Panel < len(p.Education) {
			v = p.Education[scope.Panel]
		}
	case entity.StateLanguages:
		if scope.Panel >= 0 && scope.Panel < len(p.FluentLanguages) {
			v = p.FluentLanguages[scope.Panel]
		}
	case entity.StateSkills:
		if list := p.Skills(); len(list) > 0 {
			v = map[string]any{"skills": list}
		}
	case entity.StateQuestions:
		full := *p
		full.PersonalInformation = personal
		v = full
	case entity.StateDisclosures, entity.StateSelfIdentify:
		v = map[string]any{
			"voluntary_disclosures": p.VoluntaryDisclosures,
			"country":               personal.Address.Country,
		}
	case entity.StateAuth, entity.StateResume:
		return ""
	case entity.StatePersonalInfo, entity.StateReview, entity.StateDone, entity.StateFailed:
		v = personal
	default:
		v = personal
	}
	if v == nil {
		return ""
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IsFatal reports whether err returned by Resolve must stop the run.
func IsFatal(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
