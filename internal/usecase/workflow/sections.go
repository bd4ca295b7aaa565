package workflow

import (
	"context"
	"errors"
	"fmt"

	"apply-agent/internal/domain/entity"
	"apply-agent/internal/usecase/recovery"
	"apply-agent/internal/usecase/resolver"
)

// fillSection fills every panel of a form section and moves on with the
// section's next button.
func (uc *UseCase) fillSection(ctx context.Context, r *run, spec entity.SectionSpec) (entity.SectionReport, error) {
	report := entity.SectionReport{Section: spec.Name}

	present, err := uc.page.WaitSection(ctx, spec.Selector)
	if err != nil {
		return report, uc.pageErr(ctx, spec, err)
	}
	if !present {
		if spec.Optional {
			r.logger.Info("Optional section not on page", "section", string(spec.Name))
			report.Absent = true
			report.Complete = true
			return report, nil
		}
		return report, fmt.Errorf("%w: %s not found at %s", entity.ErrSectionUnrecognized, spec.Name, spec.Selector)
	}

	panels := spec.PanelCount(entries(r.req.Profile, spec.Name))
	for i := 0; i < panels; i++ {
		locator := spec.Panel(i + 1)

		if spec.NeedsAdd(i) {
			_, err := uc.recovery.Do(ctx, fmt.Sprintf("add %s panel %d", spec.Name, i+1), func(ctx context.Context) error {
				return uc.exec.Click(ctx, spec.AddButton)
			})
			if err != nil {
				if recovery.Classify(err) == recovery.Fatal {
					return report, err
				}
				report.Errors = append(report.Errors, fmt.Sprintf("add panel %d: %v", i+1, err))
				break
			}
			report.Adds++
		}

		if spec.PanelSelector != "" {
			ok, err := uc.page.WaitSection(ctx, locator)
			if err != nil {
				return report, uc.pageErr(ctx, spec, err)
			}
			if !ok {
				report.Errors = append(report.Errors, fmt.Sprintf("panel %d did not appear at %s", i+1, locator))
				break
			}
		}

		if uc.ui != nil {
			uc.ui.ShowSection(ctx, spec.Name, i+1, panels)
		}
		scope := resolver.Scope{
			Section:     spec.Name,
			Panel:       i,
			Profile:     r.req.Profile,
			AllowOracle: spec.AllowOracle,
		}
		if err := uc.fillPanel(ctx, r, locator, scope, &report); err != nil {
			return report, err
		}
		report.Panels++
	}

	report.Complete = len(report.RequiredUnfilled) == 0 && len(report.Errors) == 0
	if !report.Complete && spec.Escalation == entity.EscalateAbort {
		return report, nil
	}

	if spec.NextButton != "" {
		_, err := uc.recovery.Do(ctx, "next from "+string(spec.Name), func(ctx context.Context) error {
			return uc.exec.Click(ctx, spec.NextButton)
		})
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			return report, fmt.Errorf("%w: leave %s: %v", entity.ErrNavigation, spec.Name, err)
		}
	}

	r.logger.Info("Section finished",
		"section", string(spec.Name),
		"panels", report.Panels,
		"adds", report.Adds,
		"filled", report.Filled,
		"unchanged", report.Unchanged,
		"skipped", report.Skipped,
	)
	return report, nil
}

// fillPanel reads the controls under locator once and applies a decision to
// each of them. Only fatal failures are returned.
func (uc *UseCase) fillPanel(ctx context.Context, r *run, locator string, scope resolver.Scope, report *entity.SectionReport) error {
	fields, err := uc.read(ctx, locator)
	if err != nil {
		return uc.pageErr(ctx, entity.SectionSpec{Name: scope.Section}, err)
	}
	r.logger.Debug("Panel read", "section", string(scope.Section), "panel", scope.Panel+1, "fields", len(fields))

	maxItems := r.req.Site.MaxSkills
	for _, field := range fields {
		reread := uc.rereader(locator, field)

		if field.Kind == entity.KindMultiSelect {
			res := uc.multi.Fill(ctx, field, scope, maxItems, reread)
			for _, it := range res.Items {
				item := res.Decision
				item.Values = []string{it.Item}
				uc.record(r, entity.EntryFor(scope.Section, scope.Panel+1, item, it.Outcome, it.Attempts, it.Err))
			}
			uc.applied(ctx, r, scope, report, res.Decision, res.Outcome, 0, nil)
			if res.Err != nil {
				return res.Err
			}
			continue
		}

		d, err := uc.resolver.Resolve(ctx, field, scope)
		if err != nil {
			if resolver.IsFatal(err) {
				return err
			}
			d = entity.NewDecision(field).Skip(err.Error())
		}
		res := uc.recovery.Apply(ctx, d, field, reread)
		uc.applied(ctx, r, scope, report, res.Decision, res.Outcome, res.Attempts, res.Err)
		if res.Fatal() {
			return res.Err
		}
	}
	return nil
}

func (uc *UseCase) applied(ctx context.Context, r *run, scope resolver.Scope, report *entity.SectionReport, d entity.FillDecision, outcome entity.Outcome, attempts int, err error) {
	report.Count(d, outcome)
	uc.record(r, entity.EntryFor(scope.Section, scope.Panel+1, d, outcome, attempts, err))
	if uc.ui != nil {
		uc.ui.ShowDecision(ctx, d, outcome)
	}

	args := []any{
		"section", string(scope.Section),
		"field", d.Label,
		"source", string(d.Source),
		"outcome", string(outcome),
	}
	if outcome == entity.OutcomeSkipped {
		args = append(args, "rationale", d.Rationale)
	}
	r.logger.Debug("Field applied", args...)
}

func (uc *UseCase) read(ctx context.Context, locator string) ([]entity.FieldDescriptor, error) {
	snap, err := uc.page.Snapshot(ctx, locator)
	if err != nil {
		return nil, err
	}
	return uc.extractor.Extract(snap)
}

// rereader returns a fresh descriptor of field from a new snapshot of the
// panel. Fields are matched by id, then by label and kind.
func (uc *UseCase) rereader(locator string, field entity.FieldDescriptor) recovery.Reread {
	return func(ctx context.Context) (entity.FieldDescriptor, error) {
		fields, err := uc.read(ctx, locator)
		if err != nil {
			return entity.FieldDescriptor{}, err
		}
		for _, f := range fields {
			if f.ID == field.ID {
				return f, nil
			}
		}
		for _, f := range fields {
			if f.Kind == field.Kind && entity.NormalizeText(f.Label) == entity.NormalizeText(field.Label) {
				return f, nil
			}
		}
		return entity.FieldDescriptor{}, fmt.Errorf("%w: %s", entity.ErrElementNotFound, field.Label)
	}
}

// auth signs in or signs up. Every failure here is fatal.
func (uc *UseCase) auth(ctx context.Context, r *run, spec entity.SectionSpec) (entity.SectionReport, error) {
	report := entity.SectionReport{Section: entity.StateAuth}
	flow := r.req.Site.Auth.Flow(r.req.Auth)

	if flow.Entry != "" {
		_, err := uc.recovery.Do(ctx, "open "+string(r.req.Auth), func(ctx context.Context) error {
			return uc.exec.Click(ctx, flow.Entry)
		})
		if err != nil {
			return report, authErr(ctx, "open %s form: %v", r.req.Auth, err)
		}
	}

	form := flow.Form
	if form == "" {
		form = spec.Selector
	}
	present, err := uc.page.WaitSection(ctx, form)
	if err != nil {
		return report, authErr(ctx, "wait for %s form: %v", r.req.Auth, err)
	}
	if !present {
		return report, fmt.Errorf("%w: %s form not found at %s", entity.ErrAuthenticationFailure, r.req.Auth, form)
	}

	scope := resolver.Scope{Section: entity.StateAuth, Profile: r.req.Profile}
	if err := uc.fillPanel(ctx, r, form, scope, &report); err != nil {
		return report, err
	}
	report.Panels = 1
	if len(report.RequiredUnfilled) > 0 {
		return report, fmt.Errorf("%w: unfilled %v", entity.ErrAuthenticationFailure, report.RequiredUnfilled)
	}

	// Submitting twice can create two accounts, so no retry here.
	if flow.Submit != "" {
		if err := uc.exec.Click(ctx, flow.Submit); err != nil {
			return report, authErr(ctx, "submit %s: %v", r.req.Auth, err)
		}
	}

	if flow.Error != "" {
		rejected, err := uc.page.Visible(ctx, flow.Error)
		if err != nil && ctx.Err() != nil {
			return report, ctx.Err()
		}
		if rejected {
			return report, fmt.Errorf("%w: %s rejected by site", entity.ErrAuthenticationFailure, r.req.Auth)
		}
	}
	if flow.Success != "" {
		ok, err := uc.page.WaitSection(ctx, flow.Success)
		if err != nil {
			return report, authErr(ctx, "wait for %s result: %v", r.req.Auth, err)
		}
		if !ok {
			return report, fmt.Errorf("%w: no signed-in page after %s", entity.ErrAuthenticationFailure, r.req.Auth)
		}
	}

	if r.req.PauseAfterAuth && uc.ui != nil {
		if err := uc.ui.WaitForUserAction(ctx, "Signed in. Finish any verification in the browser, then continue."); err != nil {
			return report, err
		}
	}

	report.Complete = true
	r.logger.Info("Authenticated", "mode", string(r.req.Auth), "url", uc.page.CurrentURL())
	return report, nil
}

// review stops at the final page. The application is submitted only when
// the run asks for it.
func (uc *UseCase) review(ctx context.Context, r *run, spec entity.SectionSpec) (entity.SectionReport, error) {
	report := entity.SectionReport{Section: entity.StateReview}

	present, err := uc.page.WaitSection(ctx, spec.Selector)
	if err != nil {
		return report, uc.pageErr(ctx, spec, err)
	}
	if !present {
		if spec.Optional {
			report.Absent = true
			report.Complete = !r.req.Submit
			return report, nil
		}
		return report, fmt.Errorf("%w: %s not found at %s", entity.ErrSectionUnrecognized, spec.Name, spec.Selector)
	}
	report.Panels = 1

	if !r.req.Submit {
		r.logger.Info("Review reached, submission left to the operator")
		report.Complete = true
		return report, nil
	}

	button := r.req.Site.SubmitButton
	enabled, err := uc.exec.Enabled(ctx, button)
	if err != nil {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Errors = append(report.Errors, fmt.Sprintf("submit button: %v", err))
		return report, nil
	}
	if !enabled {
		report.Errors = append(report.Errors, "submit button is disabled")
		return report, nil
	}

	if err := uc.exec.Click(ctx, button); err != nil {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Errors = append(report.Errors, fmt.Sprintf("submit: %v", err))
		return report, nil
	}

	r.result.Submitted = true
	report.Complete = true
	uc.record(r, entity.RunEntry{
		Section: entity.StateReview,
		Label:   "submit",
		Outcome: entity.OutcomeFilled,
	})
	r.logger.Info("Application submitted", "url", uc.page.CurrentURL())
	return report, nil
}

// pageErr keeps fatal errors as they are and reports anything else as a
// navigation failure.
func (uc *UseCase) pageErr(ctx context.Context, spec entity.SectionSpec, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if recovery.Classify(err) == recovery.Fatal {
		return err
	}
	return fmt.Errorf("%w: %s: %v", entity.ErrNavigation, spec.Name, err)
}

func authErr(ctx context.Context, format string, args ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s", entity.ErrAuthenticationFailure, fmt.Sprintf(format, args...))
}

// entries is the length of the profile list behind a repeated section.
func entries(p *entity.UserProfile, section entity.State) int {
	if p == nil {
		return 0
	}
	switch section {
	case entity.StateExperience:
		return len(p.WorkExperience)
	case entity.StateEducation:
		return len(p.Education)
	case entity.StateLanguages:
		return len(p.FluentLanguages)
	case entity.StateSkills:
		return len(p.Skills())
	case entity.StateAuth, entity.StatePersonalInfo, entity.StateResume,
		entity.StateQuestions, entity.StateDisclosures, entity.StateSelfIdentify,
		entity.StateReview, entity.StateDone, entity.StateFailed:
		return 1
	default:
		return 1
	}
}

// IsAuthFailure reports whether a run ended on rejected credentials.
func IsAuthFailure(err error) bool {
	return errors.Is(err, entity.ErrAuthenticationFailure)
}
