package userinteraction

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"apply-agent/internal/application/port/output"
	"apply-agent/internal/domain/entity"

	"github.com/manifoldco/promptui"
)

var _ output.UserInteractionPort = (*ConsoleUserInteraction)(nil)

var (
	sectionStyle = promptui.Styler(promptui.FGCyan, promptui.FGBold)
	filledStyle  = promptui.Styler(promptui.FGGreen)
	skippedStyle = promptui.Styler(promptui.FGYellow)
	failedStyle  = promptui.Styler(promptui.FGRed)
	dimStyle     = promptui.Styler(promptui.FGFaint)
)

type ConsoleUserInteraction struct {
	stdin  io.ReadCloser
	stdout io.WriteCloser
}

func NewConsoleUserInteraction() *ConsoleUserInteraction {
	return &ConsoleUserInteraction{stdin: os.Stdin, stdout: os.Stdout}
}

// NewConsoleUserInteractionWith reads from in and writes to out.
func NewConsoleUserInteractionWith(in io.ReadCloser, out io.WriteCloser) *ConsoleUserInteraction {
	return &ConsoleUserInteraction{stdin: in, stdout: out}
}

func (u *ConsoleUserInteraction) Choose(ctx context.Context, label string, items []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", fmt.Errorf("nothing to choose for %q", label)
	}

	prompt := promptui.Select{
		Label:  label,
		Items:  items,
		Size:   min(len(items), 10),
		Stdin:  u.stdin,
		Stdout: u.stdout,
	}
	_, choice, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("failed to read choice: %w", err)
	}
	return choice, nil
}

func (u *ConsoleUserInteraction) AskQuestion(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	prompt := promptui.Prompt{
		Label:  question,
		Stdin:  u.stdin,
		Stdout: u.stdout,
	}
	answer, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("failed to read user input: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

func (u *ConsoleUserInteraction) WaitForUserAction(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prompt := promptui.Prompt{
		Label:  message + " (press Enter when done)",
		Stdin:  u.stdin,
		Stdout: u.stdout,
	}
	if _, err := prompt.Run(); err != nil {
		return fmt.Errorf("failed to wait for user: %w", err)
	}
	return nil
}

func (u *ConsoleUserInteraction) ShowSection(ctx context.Context, section entity.State, panel, panels int) {
	title := string(section)
	if panels > 1 {
		title = fmt.Sprintf("%s %d/%d", section, panel, panels)
	}
	fmt.Fprintf(u.stdout, "\n%s\n", sectionStyle("━━━ "+title+" ━━━"))
}

func (u *ConsoleUserInteraction) ShowDecision(ctx context.Context, decision entity.FillDecision, outcome entity.Outcome) {
	label := truncate(decision.Label, 60)
	if label == "" {
		label = decision.FieldID
	}

	switch outcome {
	case entity.OutcomeFilled:
		fmt.Fprintf(u.stdout, "%s %s → %s\n", filledStyle("✓"), label, truncate(decision.Display(), 40))
	case entity.OutcomeUnchanged:
		fmt.Fprintf(u.stdout, "%s %s\n", dimStyle("="), dimStyle(label))
	case entity.OutcomeSkipped:
		marker := skippedStyle("–")
		if decision.RequiredUnfilled {
			marker = failedStyle("!")
		}
		fmt.Fprintf(u.stdout, "%s %s %s\n", marker, label, dimStyle(truncate(decision.Rationale, 80)))
	case entity.OutcomeFailed:
		fmt.Fprintf(u.stdout, "%s %s %s\n", failedStyle("✗"), label, dimStyle(truncate(decision.Rationale, 80)))
	}
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
