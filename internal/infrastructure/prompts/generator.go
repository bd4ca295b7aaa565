package prompts

import (
	"fmt"
	"strings"

	"apply-agent/internal/application/port/output"

	"github.com/tmc/langchaingo/prompts"
)

// Prompt is the rendered pair sent to a chat-style oracle.
type Prompt struct {
	System string
	User   string
}

// Generator renders oracle prompts from the embedded templates.
type Generator struct {
	system prompts.PromptTemplate
	field  prompts.PromptTemplate
}

func NewGenerator() *Generator {
	return NewGeneratorFrom(SystemPrompt, FieldPrompt)
}

// NewGeneratorFrom builds a generator from custom templates. The field
// template sees label, kind, options, multiple and excerpt.
func NewGeneratorFrom(system, field string) *Generator {
	return &Generator{
		system: prompts.NewPromptTemplate(system, nil),
		field:  prompts.NewPromptTemplate(field, []string{"label", "kind", "options", "multiple", "excerpt"}),
	}
}

func (g *Generator) Field(req output.OracleRequest) (Prompt, error) {
	if strings.TrimSpace(req.Label) == "" {
		return Prompt{}, fmt.Errorf("field label is required")
	}

	options := make([]string, 0, len(req.Options))
	for _, o := range req.Options {
		if label := strings.TrimSpace(o.Label); label != "" {
			options = append(options, label)
		} else {
			options = append(options, o.Value)
		}
	}

	excerpt := strings.TrimSpace(req.Excerpt)
	if excerpt == "" {
		excerpt = "(empty)"
	}

	system, err := g.system.Format(map[string]any{})
	if err != nil {
		return Prompt{}, fmt.Errorf("render system prompt: %w", err)
	}
	user, err := g.field.Format(map[string]any{
		"label":    req.Label,
		"kind":     string(req.Kind),
		"options":  options,
		"multiple": req.Multiple,
		"excerpt":  excerpt,
	})
	if err != nil {
		return Prompt{}, fmt.Errorf("render field prompt: %w", err)
	}

	return Prompt{System: strings.TrimSpace(system), User: strings.TrimSpace(user)}, nil
}

// Combined joins both halves for single-turn providers.
func (p Prompt) Combined() string {
	return p.System + "\n\n" + p.User
}
