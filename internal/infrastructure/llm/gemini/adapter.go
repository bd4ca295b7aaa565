package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"apply-agent/internal/application/port/output"
	"apply-agent/internal/domain/entity"
	"apply-agent/internal/infrastructure/prompts"

	"google.golang.org/genai"
)

var _ output.Oracle = (*Adapter)(nil)

const (
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 30 * time.Second
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Adapter answers oracle requests with a single Gemini generation.
type Adapter struct {
	models    contentGenerator
	modelName string
	timeout   time.Duration
	prompts   *prompts.Generator
	logger    output.LoggerPort
}

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	Logger  output.LoggerPort
}

func New(ctx context.Context, cfg Config) (*Adapter, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newAdapter(client.Models, cfg), nil
}

func newAdapter(models contentGenerator, cfg Config) *Adapter {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Adapter{
		models:    models,
		modelName: model,
		timeout:   timeout,
		prompts:   prompts.NewGenerator(),
		logger:    cfg.Logger,
	}
}

func (a *Adapter) Name() string {
	return "gemini:" + a.modelName
}

func (a *Adapter) Ask(ctx context.Context, req output.OracleRequest) (*output.OracleResponse, error) {
	p, err := a.prompts.Field(req)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	temperature := float32(0)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(p.System, genai.RoleUser),
		Temperature:       &temperature,
		ResponseMIMEType:  "application/json",
	}

	resp, err := a.models.GenerateContent(callCtx, a.modelName, genai.Text(p.User), config)
	if err != nil {
		return nil, classify(ctx, err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("%w: gemini api returned empty response", entity.ErrOracleError)
	}

	if a.logger != nil {
		a.logger.Debug("Oracle answered",
			"model", a.modelName,
			"label", req.Label,
			"responseLen", len(text),
		)
	}

	answer, err := prompts.ParseResponse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrAmbiguousField, err)
	}
	return answer, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
		// First candidate with text wins.
		if builder.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(builder.String())
}

func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", entity.ErrOracleTimeout, err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %v", entity.ErrOracleError, err)
		}
		return fmt.Errorf("generate content: %w", err)
	}
	return fmt.Errorf("%w: %v", entity.ErrOracleError, err)
}
