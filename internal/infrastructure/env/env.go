package env

import (
	"fmt"
	"os"
	"path/filepath"

	"apply-agent/internal/application/port/output"

	"github.com/joho/godotenv"
)

var _ output.SecretsPort = (*EnvService)(nil)

type EnvService struct{}

// NewEnvService loads dir/.env and then dir/.env.<APP_ENV>, the latter
// overriding the former. Missing files are not an error.
func NewEnvService(dir string, logger output.LoggerPort) *EnvService {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil {
		logger.Debug("No .env file with secrets found", "dir", dir)
	}

	envFile := filepath.Join(dir, fmt.Sprintf(".env.%s", appEnv))
	if err := godotenv.Overload(envFile); err != nil {
		logger.Debug("Could not load env file", "file", envFile, "error", err)
	}

	logger.Debug("Environment loaded", "appEnv", appEnv)

	return &EnvService{}
}

func (e *EnvService) Get(key string) string {
	return os.Getenv(key)
}

func (e *EnvService) Require(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("ENV %s is missing", key)
	}
	return val, nil
}

func (e *EnvService) GetWithDefault(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}
