package di

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"apply-agent/internal/application/port/input"
	"apply-agent/internal/application/port/output"
	"apply-agent/internal/domain/entity"
	"apply-agent/internal/infrastructure/browser/rod"
	"apply-agent/internal/infrastructure/config"
	"apply-agent/internal/infrastructure/llm/gemini"
	"apply-agent/internal/infrastructure/llm/openrouter"
	"apply-agent/internal/infrastructure/llm/static"
	"apply-agent/internal/infrastructure/logger"
	"apply-agent/internal/infrastructure/record"
	"apply-agent/internal/usecase/extractor"
	"apply-agent/internal/usecase/multiselect"
	"apply-agent/internal/usecase/recovery"
	"apply-agent/internal/usecase/resolver"
	"apply-agent/internal/usecase/workflow"
)

const (
	defaultOpenRouterModel = "openai/gpt-4o-mini"
	defaultGeminiModel     = "gemini-2.5-flash"
)

type Container struct {
	Browser  *rod.BrowserAdapter
	Oracle   output.Oracle
	Logger   output.LoggerPort
	Recorder output.RunRecorder
	Runner   input.RunExecutor
}

type Config struct {
	App     *config.AppConfig
	Site    entity.SiteConfig
	Debug   bool
	Logger  *logger.LoggerAdapter
	Secrets output.SecretsPort
	UI      output.UserInteractionPort
	Now     func() time.Time
}

// NewContainer wires one run: its record directory, a logger teed into that
// directory, the oracle, the browser and the section workflow on top.
func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	if cfg.App == nil {
		return nil, fmt.Errorf("app config is required")
	}
	base := cfg.Logger
	if base == nil {
		base = logger.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	recorder, err := record.NewJSONLRecorder(cfg.App.RunDir, cfg.Site.Name, now())
	if err != nil {
		return nil, fmt.Errorf("failed to create run record: %w", err)
	}

	log, err := base.TeeFile(filepath.Join(recorder.Dir(), "agent.log"), cfg.Debug)
	if err != nil {
		base.Warn("Run log file not created", "error", err.Error())
		log = base
	}

	c := &Container{
		Logger:   log,
		Recorder: recorder,
	}

	oracle, err := newOracle(ctx, cfg.App.Oracle, cfg.Secrets, log)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create oracle: %w", err)
	}
	c.Oracle = oracle
	if oracle != nil {
		log.Info("Oracle ready", "oracle", oracle.Name())
	} else {
		log.Info("Oracle disabled")
	}

	browser, err := rod.NewBrowserAdapter(ctx, cfg.App.Browser)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}
	c.Browser = browser

	rec := recovery.New(cfg.App.Retry, browser, log)
	res := resolver.New(oracle, rec, log)

	c.Runner = workflow.New(workflow.Deps{
		Page:      browser,
		Exec:      browser,
		Extractor: extractor.New(log),
		Resolver:  res,
		Multi:     multiselect.New(res, rec, browser, log),
		Recovery:  rec,
		Recorder:  recorder,
		Logger:    log,
		UI:        cfg.UI,
	})

	log.Info("Container ready", "site", cfg.Site.Name, "runDir", recorder.Dir())
	return c, nil
}

// newOracle returns a nil Oracle for the none provider. The resolver then
// skips the oracle step entirely.
func newOracle(ctx context.Context, cfg config.OracleConfig, secrets output.SecretsPort, log output.LoggerPort) (output.Oracle, error) {
	switch cfg.Provider {
	case config.ProviderOpenRouter:
		if secrets == nil {
			return nil, fmt.Errorf("secrets are required for %s", cfg.Provider)
		}
		key, err := secrets.Require("OPENROUTER_API_KEY")
		if err != nil {
			return nil, err
		}
		model := cfg.Model
		if model == "" {
			model = secrets.GetWithDefault("OPENROUTER_MODEL_NAME", defaultOpenRouterModel)
		}
		orCfg := openrouter.DefaultConfig(key, model)
		if cfg.BaseURL != "" {
			orCfg.BaseURL = cfg.BaseURL
		}
		if cfg.Timeout > 0 {
			orCfg.Timeout = cfg.Timeout
		}
		orCfg.Logger = log
		return openrouter.NewOpenRouterAdapter(orCfg)

	case config.ProviderGemini:
		if secrets == nil {
			return nil, fmt.Errorf("secrets are required for %s", cfg.Provider)
		}
		key, err := secrets.Require("GEMINI_API_KEY")
		if err != nil {
			return nil, err
		}
		model := cfg.Model
		if model == "" {
			model = secrets.GetWithDefault("GEMINI_MODEL_NAME", defaultGeminiModel)
		}
		return gemini.New(ctx, gemini.Config{
			APIKey:  key,
			Model:   model,
			Timeout: cfg.Timeout,
			Logger:  log,
		})

	case config.ProviderStatic:
		return static.Load(cfg.AnswersFile)

	case config.ProviderNone, "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
}

// Close shuts the browser, then the run record, then the log.
func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.Recorder != nil {
		if err := c.Recorder.Close(); err != nil && c.Logger != nil {
			c.Logger.Warn("Run record close failed", "error", err.Error())
		}
	}
	if c.Logger != nil {
		_ = c.Logger.Close()
	}
}
