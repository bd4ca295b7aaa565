package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"apply-agent/internal/application/port/input"
	"apply-agent/internal/application/port/output"
	"apply-agent/internal/domain/entity"
	"apply-agent/internal/usecase/extractor"
	"apply-agent/internal/usecase/multiselect"
	"apply-agent/internal/usecase/recovery"
	"apply-agent/internal/usecase/resolver"

	"github.com/google/uuid"
)

var _ input.RunExecutor = (*UseCase)(nil)

const screenshotTimeout = 15 * time.Second

type Deps struct {
	Page      output.PagePort
	Exec      output.ActionExecutor
	Extractor *extractor.Extractor
	Resolver  *resolver.Resolver
	Multi     *multiselect.Handler
	Recovery  *recovery.Recovery
	Recorder  output.RunRecorder
	Logger    output.LoggerPort
	// UI is optional; without it the run never pauses for the operator.
	UI    output.UserInteractionPort
	NewID func() string
}

// UseCase drives one application through its sections.
type UseCase struct {
	page      output.PagePort
	exec      output.ActionExecutor
	extractor *extractor.Extractor
	resolver  *resolver.Resolver
	multi     *multiselect.Handler
	recovery  *recovery.Recovery
	recorder  output.RunRecorder
	logger    output.LoggerPort
	ui        output.UserInteractionPort
	newID     func() string
}

func New(deps Deps) *UseCase {
	newID := deps.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &UseCase{
		page:      deps.Page,
		exec:      deps.Exec,
		extractor: deps.Extractor,
		resolver:  deps.Resolver,
		multi:     deps.Multi,
		recovery:  deps.Recovery,
		recorder:  deps.Recorder,
		logger:    deps.Logger,
		ui:        deps.UI,
		newID:     newID,
	}
}

// run is the state of one Execute call.
type run struct {
	id     string
	req    input.RunRequest
	state  entity.State
	logger output.LoggerPort
	result *input.RunResult
}

// Execute walks the site's sections in order. The run ends in Done, or in
// Failed on authentication failure, an unrecognized required section, a
// navigation failure, an aborting escalation or cancellation.
func (uc *UseCase) Execute(ctx context.Context, req input.RunRequest) (*input.RunResult, error) {
	if req.Profile == nil {
		return nil, errors.New("profile is required")
	}
	if err := req.Site.Validate(); err != nil {
		return nil, fmt.Errorf("invalid site config: %w", err)
	}
	if req.StartAt != "" {
		if _, ok := req.Site.Section(req.StartAt); !ok {
			return nil, fmt.Errorf("start section %s is not part of site %s", req.StartAt, req.Site.Name)
		}
	}

	r := &run{
		id:    uc.newID(),
		req:   req,
		state: entity.StateAuth,
	}
	r.result = &input.RunResult{RunID: r.id, FinalState: entity.StateAuth}
	r.logger = uc.logger.WithFields(map[string]any{
		"runId": r.id,
		"site":  req.Site.Name,
		"auth":  string(req.Auth),
	})

	r.logger.Info("Run started", "url", req.Site.URL, "startAt", string(req.StartAt))

	if err := uc.page.Open(ctx, req.Site.URL); err != nil {
		if ctx.Err() != nil {
			return uc.fail(ctx, r, ctx.Err())
		}
		return uc.fail(ctx, r, fmt.Errorf("%w: open %s: %v", entity.ErrNavigation, req.Site.URL, err))
	}

	skipping := req.StartAt != "" && req.StartAt != entity.StateAuth
	for _, spec := range req.Site.Sections {
		if err := ctx.Err(); err != nil {
			return uc.fail(ctx, r, err)
		}

		if skipping && spec.Name != entity.StateAuth {
			if spec.Name != req.StartAt {
				r.logger.Debug("Section skipped by start point", "section", string(spec.Name))
				continue
			}
			skipping = false
		}

		r.state = spec.Name
		r.result.FinalState = spec.Name

		report, err := uc.runSection(ctx, r, spec)
		r.result.Sections = append(r.result.Sections, report)
		if err != nil {
			return uc.fail(ctx, r, err)
		}

		if !report.Complete {
			r.result.Incomplete = true
			r.logger.Warn("Section incomplete",
				"section", string(spec.Name),
				"requiredUnfilled", report.RequiredUnfilled,
				"errors", report.Errors,
			)
			if spec.Escalation == entity.EscalateAbort {
				return uc.fail(ctx, r, fmt.Errorf("%w: %s", entity.ErrSectionIncomplete, spec.Name))
			}
		}
	}

	r.state = entity.StateDone
	r.result.FinalState = entity.StateDone
	r.logger.Info("Run finished",
		"incomplete", r.result.Incomplete,
		"submitted", r.result.Submitted,
		"sections", len(r.result.Sections),
	)
	return r.result, nil
}

func (uc *UseCase) runSection(ctx context.Context, r *run, spec entity.SectionSpec) (entity.SectionReport, error) {
	if uc.ui != nil {
		uc.ui.ShowSection(ctx, spec.Name, 0, 0)
	}
	r.logger.Info("Section started", "section", string(spec.Name))

	switch spec.Name {
	case entity.StateAuth:
		return uc.auth(ctx, r, spec)
	case entity.StateReview:
		return uc.review(ctx, r, spec)
	case entity.StatePersonalInfo, entity.StateExperience, entity.StateEducation,
		entity.StateLanguages, entity.StateSkills, entity.StateResume,
		entity.StateQuestions, entity.StateDisclosures, entity.StateSelfIdentify:
		return uc.fillSection(ctx, r, spec)
	case entity.StateDone, entity.StateFailed:
		return entity.SectionReport{Section: spec.Name}, fmt.Errorf("%w: %s is not a section", entity.ErrSectionUnrecognized, spec.Name)
	default:
		return entity.SectionReport{Section: spec.Name}, fmt.Errorf("%w: %s", entity.ErrSectionUnrecognized, spec.Name)
	}
}

// fail moves the run to Failed, records why and keeps a screenshot of the
// page for the operator.
func (uc *UseCase) fail(ctx context.Context, r *run, err error) (*input.RunResult, error) {
	failedIn := r.state
	r.state = entity.StateFailed
	r.result.FinalState = entity.StateFailed
	r.result.Err = err

	r.logger.Error("Run failed", "section", string(failedIn), "error", err.Error())
	uc.record(r, entity.RunEntry{
		Section: failedIn,
		Outcome: entity.OutcomeFailed,
		Error:   err.Error(),
	})

	shotCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), screenshotTimeout)
	defer cancel()

	shot, shotErr := uc.page.Screenshot(shotCtx)
	if shotErr != nil {
		r.logger.Warn("Failure screenshot not taken", "error", shotErr.Error())
		return r.result, err
	}
	path, saveErr := uc.recorder.SaveScreenshot(fmt.Sprintf("failed_%s", failedIn), shot)
	if saveErr != nil {
		r.logger.Warn("Failure screenshot not saved", "error", saveErr.Error())
		return r.result, err
	}
	r.logger.Info("Failure screenshot saved", "path", path)
	return r.result, err
}

func (uc *UseCase) record(r *run, entry entity.RunEntry) {
	entry.RunID = r.id
	if entry.Time.IsZero() {
		entry.Time = time.Now()
	}
	if err := uc.recorder.Record(entry); err != nil {
		r.logger.Warn("Run record write failed", "error", err.Error())
	}
}
