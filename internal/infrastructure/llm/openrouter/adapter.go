package openrouter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"apply-agent/internal/application/port/output"
	"apply-agent/internal/domain/entity"
	"apply-agent/internal/infrastructure/logger"
	"apply-agent/internal/infrastructure/prompts"

	"github.com/sashabaranov/go-openai"
)

var _ output.Oracle = (*OpenRouterAdapter)(nil)

const (
	defaultTimeout = 30 * time.Second
	maxLogLength   = 200
)

type OpenRouterAdapter struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	prompts *prompts.Generator
	logger  output.LoggerPort
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Logger  output.LoggerPort
}

func DefaultConfig(apiKey, model string) Config {
	return Config{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: "https://openrouter.ai/api/v1",
		Timeout: defaultTimeout,
	}
}

// loggingTransport logs request metadata at debug level. Bodies carry
// profile excerpts and are only logged by size.
type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.logger != nil {
		var bodyBytes []byte
		if req.Body != nil {
			bodyBytes, _ = io.ReadAll(req.Body)
			req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		t.logger.Debug("HTTP Request",
			"method", req.Method,
			"url", req.URL.String(),
			"bodyBytes", len(bodyBytes),
		)
	}

	resp, err := t.base.RoundTrip(req)

	if t.logger != nil && resp != nil {
		t.logger.Debug("HTTP Response",
			"status", resp.Status,
			"statusCode", resp.StatusCode,
		)
	}

	return resp, err
}

func NewOpenRouterAdapter(cfg Config) (*OpenRouterAdapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("openrouter model is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	if cfg.Logger != nil {
		transport := &loggingTransport{
			base:   http.DefaultTransport,
			logger: cfg.Logger,
		}
		config.HTTPClient = &http.Client{
			Transport: transport,
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &OpenRouterAdapter{
		client:  openai.NewClientWithConfig(config),
		model:   cfg.Model,
		timeout: timeout,
		prompts: prompts.NewGenerator(),
		logger:  cfg.Logger,
	}, nil
}

func (a *OpenRouterAdapter) Name() string {
	return "openrouter:" + a.model
}

func (a *OpenRouterAdapter) Ask(ctx context.Context, req output.OracleRequest) (*output.OracleResponse, error) {
	p, err := a.prompts.Field(req)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, a.classify(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", entity.ErrOracleError)
	}

	content := resp.Choices[0].Message.Content
	if a.logger != nil {
		a.logger.Debug("Oracle answered",
			"model", a.model,
			"label", req.Label,
			"response", logger.TruncateForLog(content, maxLogLength),
		)
	}

	answer, err := prompts.ParseResponse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrAmbiguousField, err)
	}
	return answer, nil
}

// classify maps client failures onto the oracle sentinels. Only 429, 5xx
// and timeouts come back as transient.
func (a *OpenRouterAdapter) classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", entity.ErrOracleTimeout, err)
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError || status == 0 {
		return fmt.Errorf("%w: %v", entity.ErrOracleError, err)
	}
	return fmt.Errorf("chat completion failed: %w", err)
}

