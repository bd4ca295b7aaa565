package di

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"apply-agent/internal/infrastructure/config"
	"apply-agent/internal/usecase/usecasetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSecrets map[string]string

func (m mapSecrets) Get(key string) string { return m[key] }

func (m mapSecrets) Require(key string) (string, error) {
	if v := m[key]; v != "" {
		return v, nil
	}
	return "", fmt.Errorf("ENV %s is missing", key)
}

func (m mapSecrets) GetWithDefault(key, def string) string {
	if v := m[key]; v != "" {
		return v
	}
	return def
}

func TestNewOracle_OpenRouter(t *testing.T) {
	ctx := context.Background()
	log := usecasetest.NopLogger{}

	_, err := newOracle(ctx, config.OracleConfig{Provider: config.ProviderOpenRouter}, mapSecrets{}, log)
	assert.ErrorContains(t, err, "OPENROUTER_API_KEY")

	oracle, err := newOracle(ctx, config.OracleConfig{Provider: config.ProviderOpenRouter}, mapSecrets{"OPENROUTER_API_KEY": "k"}, log)
	require.NoError(t, err)
	assert.Equal(t, "openrouter:"+defaultOpenRouterModel, oracle.Name())

	oracle, err = newOracle(ctx, config.OracleConfig{Provider: config.ProviderOpenRouter, Timeout: time.Second}, mapSecrets{
		"OPENROUTER_API_KEY":    "k",
		"OPENROUTER_MODEL_NAME": "anthropic/claude-3.5-haiku",
	}, log)
	require.NoError(t, err)
	assert.Equal(t, "openrouter:anthropic/claude-3.5-haiku", oracle.Name())

	oracle, err = newOracle(ctx, config.OracleConfig{Provider: config.ProviderOpenRouter, Model: "openai/gpt-4o"}, mapSecrets{
		"OPENROUTER_API_KEY":    "k",
		"OPENROUTER_MODEL_NAME": "ignored",
	}, log)
	require.NoError(t, err)
	assert.Equal(t, "openrouter:openai/gpt-4o", oracle.Name())
}

func TestNewOracle_Gemini(t *testing.T) {
	_, err := newOracle(context.Background(), config.OracleConfig{Provider: config.ProviderGemini}, mapSecrets{}, usecasetest.NopLogger{})
	assert.ErrorContains(t, err, "GEMINI_API_KEY")

	_, err = newOracle(context.Background(), config.OracleConfig{Provider: config.ProviderGemini}, nil, usecasetest.NopLogger{})
	assert.Error(t, err)
}

func TestNewOracle_Static(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("answers:\n  Gender: Decline to answer\n"), 0o600))

	oracle, err := newOracle(context.Background(), config.OracleConfig{Provider: config.ProviderStatic, AnswersFile: path}, nil, usecasetest.NopLogger{})
	require.NoError(t, err)
	assert.Equal(t, "static", oracle.Name())

	_, err = newOracle(context.Background(), config.OracleConfig{Provider: config.ProviderStatic, AnswersFile: filepath.Join(t.TempDir(), "missing.yaml")}, nil, usecasetest.NopLogger{})
	assert.Error(t, err)
}

func TestNewOracle_NoneAndUnknown(t *testing.T) {
	oracle, err := newOracle(context.Background(), config.OracleConfig{Provider: config.ProviderNone}, nil, usecasetest.NopLogger{})
	require.NoError(t, err)
	assert.Nil(t, oracle)

	_, err = newOracle(context.Background(), config.OracleConfig{Provider: "claude"}, nil, usecasetest.NopLogger{})
	assert.ErrorContains(t, err, `unknown oracle provider "claude"`)
}

func TestNewContainer_RequiresConfig(t *testing.T) {
	_, err := NewContainer(context.Background(), Config{})
	assert.Error(t, err)
}
