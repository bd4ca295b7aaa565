package env

import (
	"os"
	"path/filepath"
	"testing"

	"apply-agent/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvService_LoadsFilesWithOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("APPLY_AGENT_TEST_KEY=base\nAPPLY_AGENT_TEST_ONLY_BASE=1\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("APPLY_AGENT_TEST_KEY=override\n"), 0o600))

	t.Setenv("APP_ENV", "test")
	t.Setenv("APPLY_AGENT_TEST_KEY", "")
	t.Setenv("APPLY_AGENT_TEST_ONLY_BASE", "")
	os.Unsetenv("APPLY_AGENT_TEST_KEY")
	os.Unsetenv("APPLY_AGENT_TEST_ONLY_BASE")

	svc := NewEnvService(dir, logger.NewNop())

	assert.Equal(t, "override", svc.Get("APPLY_AGENT_TEST_KEY"))
	assert.Equal(t, "1", svc.Get("APPLY_AGENT_TEST_ONLY_BASE"))
}

func TestEnvService_Accessors(t *testing.T) {
	t.Setenv("APP_ENV", "none")
	svc := NewEnvService(t.TempDir(), logger.NewNop())

	t.Setenv("APPLY_AGENT_SET", "value")
	t.Setenv("APPLY_AGENT_EMPTY", "")

	v, err := svc.Require("APPLY_AGENT_SET")
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	_, err = svc.Require("APPLY_AGENT_EMPTY")
	assert.ErrorContains(t, err, "APPLY_AGENT_EMPTY")

	assert.Equal(t, "value", svc.GetWithDefault("APPLY_AGENT_SET", "d"))
	assert.Equal(t, "d", svc.GetWithDefault("APPLY_AGENT_EMPTY", "d"))
}
