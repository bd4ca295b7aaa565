package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"apply-agent/internal/application/port/input"
	"apply-agent/internal/application/port/output"
	"apply-agent/internal/application/service"
	"apply-agent/internal/di"
	"apply-agent/internal/domain/entity"
	"apply-agent/internal/infrastructure/config"
	"apply-agent/internal/infrastructure/env"
	"apply-agent/internal/infrastructure/logger"
	"apply-agent/internal/infrastructure/profile"
	"apply-agent/internal/infrastructure/userinteraction"
	"apply-agent/internal/usecase/workflow"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	errAuthFailed = errors.New("authentication failed")
	errIncomplete = errors.New("application incomplete")
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fill an application on one site",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("site", "s", "", "site to apply on (asked when empty)")
	runCmd.Flags().StringP("auth", "a", "", "sign-in or sign-up (asked when empty)")
	runCmd.Flags().StringP("profile", "p", "", "profile file (default is user_data.json)")
	runCmd.Flags().String("start-at", "", "skip the sections before this one")
	runCmd.Flags().Bool("submit", false, "press submit on the review page")
	runCmd.Flags().Bool("pause-after-auth", false, "wait for the operator after signing in")
	runCmd.Flags().Bool("headless", false, "run the browser without a window")

	if err := bindFlag(viper.GetViper(), runCmd, "profile", "profile"); err != nil {
		log.Fatal(err)
	}
	if err := bindFlag(viper.GetViper(), runCmd, "browser.headless", "headless"); err != nil {
		log.Fatal(err)
	}
}

// run is the main command for the cli.
func run(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zl, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	base := logger.NewLoggerAdapter(zl)
	defer base.Close()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	base.Info("Starting", "app", app, "version", version)

	secrets := env.NewEnvService(cfg.EnvDir, base)

	registry, err := config.LoadSites(cfg.SitesFile, cfg.Escalation)
	if err != nil {
		return fmt.Errorf("loading sites: %w", err)
	}

	ui := userinteraction.NewConsoleUserInteraction()

	flags := cmd.Flags()
	siteFlag, _ := flags.GetString("site")
	site, err := chooseSite(ctx, ui, registry, siteFlag)
	if err != nil {
		return err
	}

	authFlag, _ := flags.GetString("auth")
	auth, err := chooseAuth(ctx, ui, authFlag)
	if err != nil {
		return err
	}

	var startAt entity.State
	if raw, _ := flags.GetString("start-at"); raw != "" {
		if startAt, err = entity.ParseState(raw); err != nil {
			return err
		}
	}

	userProfile, err := profile.NewFileStore(cfg.Profile).Load(ctx)
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}

	container, err := di.NewContainer(ctx, di.Config{
		App:     cfg,
		Site:    site,
		Debug:   viper.GetBool("debug"),
		Logger:  base,
		Secrets: secrets,
		UI:      ui,
	})
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	defer container.Close()

	submit, _ := flags.GetBool("submit")
	pause, _ := flags.GetBool("pause-after-auth")

	result, runErr := container.Runner.Execute(ctx, input.RunRequest{
		Site:           site,
		Auth:           auth,
		Profile:        userProfile,
		StartAt:        startAt,
		Submit:         submit,
		PauseAfterAuth: pause,
	})
	if result != nil {
		summarize(cmd.OutOrStdout(), result)
		fmt.Fprintf(cmd.OutOrStdout(), "run record: %s\n", container.Recorder.Dir())
	}
	return outcome(result, runErr)
}

func chooseSite(ctx context.Context, ui output.UserInteractionPort, registry *service.SiteRegistry, name string) (entity.SiteConfig, error) {
	if name == "" {
		if registry.Len() == 0 {
			return entity.SiteConfig{}, errors.New("no sites configured")
		}
		picked, err := ui.Choose(ctx, "Site", registry.Names())
		if err != nil {
			return entity.SiteConfig{}, fmt.Errorf("choosing site: %w", err)
		}
		name = picked
	}

	site, ok := registry.Get(name)
	if !ok {
		return entity.SiteConfig{}, fmt.Errorf("unknown site %q, known: %v", name, registry.Names())
	}
	return site, nil
}

func chooseAuth(ctx context.Context, ui output.UserInteractionPort, raw string) (entity.AuthMode, error) {
	if raw == "" {
		picked, err := ui.Choose(ctx, "Authentication", []string{string(entity.AuthSignIn), string(entity.AuthSignUp)})
		if err != nil {
			return "", fmt.Errorf("choosing authentication: %w", err)
		}
		raw = picked
	}
	return entity.ParseAuthMode(raw)
}

func summarize(w io.Writer, result *input.RunResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "run %s ended in %s\n", result.RunID, result.FinalState)
	fmt.Fprintln(tw, "SECTION\tFILLED\tUNCHANGED\tSKIPPED\tSTATUS")
	for _, s := range result.Sections {
		status := "complete"
		switch {
		case s.Absent:
			status = "absent"
		case !s.Complete:
			status = fmt.Sprintf("incomplete (%d required unfilled)", len(s.RequiredUnfilled))
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", s.Section, s.Filled, s.Unchanged, s.Skipped, status)
	}
	tw.Flush()

	if result.Submitted {
		fmt.Fprintln(w, "application submitted")
	}
}

// outcome turns the run result into the command error that picks the exit
// code.
func outcome(result *input.RunResult, err error) error {
	switch {
	case err != nil && workflow.IsAuthFailure(err):
		return fmt.Errorf("%w: %v", errAuthFailed, err)
	case err != nil:
		return err
	case result != nil && result.Incomplete:
		return errIncomplete
	default:
		return nil
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errAuthFailed):
		return 2
	case errors.Is(err, errIncomplete):
		return 3
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}
