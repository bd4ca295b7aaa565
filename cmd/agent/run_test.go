package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"apply-agent/internal/application/port/input"
	"apply-agent/internal/application/service"
	"apply-agent/internal/domain/entity"
	"apply-agent/internal/infrastructure/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUI struct {
	pick   string
	err    error
	labels []string
}

func (u *fakeUI) Choose(_ context.Context, label string, _ []string) (string, error) {
	u.labels = append(u.labels, label)
	return u.pick, u.err
}

func (u *fakeUI) AskQuestion(context.Context, string) (string, error) { return "", nil }

func (u *fakeUI) WaitForUserAction(context.Context, string) error { return nil }

func (u *fakeUI) ShowSection(context.Context, entity.State, int, int) {}

func (u *fakeUI) ShowDecision(context.Context, entity.FillDecision, entity.Outcome) {}

func testRegistry(t *testing.T) *service.SiteRegistry {
	t.Helper()
	registry, err := config.LoadSites("", entity.EscalateContinue)
	require.NoError(t, err)
	return registry
}

func TestChooseSite(t *testing.T) {
	registry := testRegistry(t)
	ctx := context.Background()

	ui := &fakeUI{}
	site, err := chooseSite(ctx, ui, registry, "nvidia")
	require.NoError(t, err)
	assert.Equal(t, "nvidia", site.Name)
	assert.Empty(t, ui.labels)

	ui = &fakeUI{pick: "icf"}
	site, err = chooseSite(ctx, ui, registry, "")
	require.NoError(t, err)
	assert.Equal(t, "icf", site.Name)
	assert.Equal(t, []string{"Site"}, ui.labels)

	_, err = chooseSite(ctx, &fakeUI{}, registry, "unknown")
	assert.ErrorContains(t, err, `unknown site "unknown"`)

	_, err = chooseSite(ctx, &fakeUI{err: context.Canceled}, registry, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChooseAuth(t *testing.T) {
	ctx := context.Background()

	mode, err := chooseAuth(ctx, &fakeUI{}, "signup")
	require.NoError(t, err)
	assert.Equal(t, entity.AuthSignUp, mode)

	mode, err = chooseAuth(ctx, &fakeUI{pick: "sign-in"}, "")
	require.NoError(t, err)
	assert.Equal(t, entity.AuthSignIn, mode)

	_, err = chooseAuth(ctx, &fakeUI{}, "oauth")
	assert.Error(t, err)
}

func TestOutcomeAndExitCode(t *testing.T) {
	tests := []struct {
		name   string
		result *input.RunResult
		err    error
		code   int
	}{
		{"done", &input.RunResult{FinalState: entity.StateDone}, nil, 0},
		{"incomplete", &input.RunResult{FinalState: entity.StateDone, Incomplete: true}, nil, 3},
		{"auth", &input.RunResult{FinalState: entity.StateFailed}, fmt.Errorf("%w: bad password", entity.ErrAuthenticationFailure), 2},
		{"cancelled", &input.RunResult{FinalState: entity.StateFailed}, context.Canceled, 130},
		{"navigation", nil, entity.ErrNavigation, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, exitCode(outcome(tt.result, tt.err)))
		})
	}

	err := outcome(nil, fmt.Errorf("%w: locked", entity.ErrAuthenticationFailure))
	assert.True(t, errors.Is(err, errAuthFailed))
	assert.ErrorContains(t, err, "locked")
}

func TestSummarize(t *testing.T) {
	var buf bytes.Buffer
	summarize(&buf, &input.RunResult{
		RunID:      "run-1",
		FinalState: entity.StateDone,
		Submitted:  true,
		Sections: []entity.SectionReport{
			{Section: entity.StatePersonalInfo, Filled: 4, Unchanged: 1, Complete: true},
			{Section: entity.StateDisclosures, Filled: 1, RequiredUnfilled: []string{"Gender"}},
			{Section: entity.StateSkills, Absent: true, Complete: true},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "run run-1 ended in done")
	assert.Contains(t, out, "incomplete (1 required unfilled)")
	assert.Contains(t, out, "absent")
	assert.Contains(t, out, "application submitted")
}

func TestSitesCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"sites"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	out := buf.String()
	for _, name := range []string{"nvidia", "salesforce", "hitachi", "icf", "harris"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "auth > personal-info")
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "apply-agent version: unknown\n", buf.String())
}

func TestBindFlag(t *testing.T) {
	v := viper.New()
	cmd := &cobra.Command{Use: "run"}
	cmd.Flags().Bool("headless", false, "")

	require.NoError(t, bindFlag(v, cmd, "browser.headless", "headless"))
	require.NoError(t, cmd.Flags().Set("headless", "true"))
	assert.True(t, v.GetBool("browser.headless"))

	err := bindFlag(v, cmd, "browser.slow", "slow-motion")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--slow-motion")
}

func TestRunFlagsAreBound(t *testing.T) {
	for _, name := range []string{"profile", "headless"} {
		assert.NotNil(t, runCmd.Flag(name), name)
	}
	for _, name := range []string{"debug", "json", "sites-file"} {
		assert.NotNil(t, rootCmd.Flag(name), name)
	}
}
