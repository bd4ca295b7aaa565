package output

import (
	"context"

	"apply-agent/internal/domain/entity"
)

type UserInteractionPort interface {
	Choose(ctx context.Context, label string, items []string) (string, error)
	AskQuestion(ctx context.Context, question string) (string, error)
	WaitForUserAction(ctx context.Context, message string) error

	ShowSection(ctx context.Context, section entity.State, panel, panels int)
	ShowDecision(ctx context.Context, decision entity.FillDecision, outcome entity.Outcome)
}
