package input

import (
	"context"

	"apply-agent/internal/domain/entity"
)

type RunRequest struct {
	Site    entity.SiteConfig
	Auth    entity.AuthMode
	Profile *entity.UserProfile
	// StartAt skips the sections before it. Auth always runs.
	StartAt entity.State
	Submit  bool
	// PauseAfterAuth waits for the operator after signing in, e.g. to
	// confirm a verification email.
	PauseAfterAuth bool
}

type RunResult struct {
	RunID      string
	FinalState entity.State
	Incomplete bool
	Submitted  bool
	Sections   []entity.SectionReport
	Err        error
}

type RunExecutor interface {
	Execute(ctx context.Context, req RunRequest) (*RunResult, error)
}
