package config

import (
	"fmt"
	"strings"
	"time"

	"apply-agent/internal/domain/entity"
	"apply-agent/internal/infrastructure/browser/rod"
	"apply-agent/internal/usecase/recovery"

	"github.com/spf13/viper"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderStatic     = "static"
	ProviderNone       = "none"
)

type AppConfig struct {
	Profile    string            `mapstructure:"profile"`
	SitesFile  string            `mapstructure:"sites-file"`
	RunDir     string            `mapstructure:"run-dir"`
	EnvDir     string            `mapstructure:"env-dir"`
	Escalation entity.Escalation `mapstructure:"escalation"`
	Browser    rod.BrowserConfig `mapstructure:"browser"`
	Retry      recovery.Policy   `mapstructure:"retry"`
	Oracle     OracleConfig      `mapstructure:"oracle"`
}

type OracleConfig struct {
	Provider string        `mapstructure:"provider"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base-url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	// AnswersFile feeds the static provider.
	AnswersFile string `mapstructure:"answers-file"`
}

// SetDefaults registers the default values on v so that a partial config
// file still yields a complete AppConfig.
func SetDefaults(v *viper.Viper) {
	browser := rod.DefaultConfig()
	retry := recovery.DefaultPolicy()

	v.SetDefault("profile", "user_data.json")
	v.SetDefault("sites-file", "")
	v.SetDefault("run-dir", "runs")
	v.SetDefault("env-dir", ".")
	v.SetDefault("escalation", string(entity.EscalateContinue))

	v.SetDefault("browser.headless", browser.Headless)
	v.SetDefault("browser.slow-motion", browser.SlowMotion)
	v.SetDefault("browser.timeout", browser.Timeout)
	v.SetDefault("browser.section-timeout", browser.SectionTimeout)
	v.SetDefault("browser.no-sandbox", browser.NoSandbox)
	v.SetDefault("browser.devtools", browser.DevTools)
	v.SetDefault("browser.disable-security-features", browser.DisableSecurityFeatures)

	v.SetDefault("retry.max-attempts", retry.MaxAttempts)
	v.SetDefault("retry.base-delay", retry.BaseDelay)
	v.SetDefault("retry.max-delay", retry.MaxDelay)
	v.SetDefault("retry.multiplier", retry.Multiplier)

	v.SetDefault("oracle.provider", ProviderOpenRouter)
	// An empty model lets each provider pick its own default.
	v.SetDefault("oracle.model", "")
	v.SetDefault("oracle.base-url", "")
	v.SetDefault("oracle.timeout", 30*time.Second)
	v.SetDefault("oracle.answers-file", "")
}

func Load(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Oracle.Provider = strings.ToLower(strings.TrimSpace(cfg.Oracle.Provider))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	switch c.Escalation {
	case entity.EscalateContinue, entity.EscalateAbort:
	default:
		return fmt.Errorf("unknown escalation %q", c.Escalation)
	}

	switch c.Oracle.Provider {
	case ProviderOpenRouter, ProviderGemini, ProviderNone:
	case ProviderStatic:
		if c.Oracle.AnswersFile == "" {
			return fmt.Errorf("oracle provider %s needs answers-file", ProviderStatic)
		}
	default:
		return fmt.Errorf("unknown oracle provider %q", c.Oracle.Provider)
	}

	if c.RunDir == "" {
		return fmt.Errorf("run-dir is required")
	}
	return nil
}
