package prompts

import (
	"strings"
	"testing"

	"apply-agent/internal/application/port/output"
	"apply-agent/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_FieldWithOptions(t *testing.T) {
	p, err := NewGenerator().Field(output.OracleRequest{
		Label:   "Country",
		Kind:    entity.KindSingleSelect,
		Options: []entity.Option{{Label: "Canada", Value: "CA"}, {Label: "", Value: "MX"}},
		Excerpt: "Country: Canada",
	})
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		"Field: Country",
		"Kind: single-select",
		"Allowed options (answer with the option text exactly as written):",
		"- Canada",
		"- MX",
		"Choose exactly one option.",
		"",
		"Candidate excerpt:",
		"Country: Canada",
	}, "\n"), p.User)
	assert.Contains(t, p.System, `"no_match"`)
}

func TestGenerator_MultipleAndFreeText(t *testing.T) {
	g := NewGenerator()

	p, err := g.Field(output.OracleRequest{
		Label:    "Languages",
		Kind:     entity.KindMultiSelect,
		Options:  []entity.Option{{Label: "English"}, {Label: "German"}},
		Multiple: true,
	})
	require.NoError(t, err)
	assert.Contains(t, p.User, "Several options may be chosen.")
	assert.Contains(t, p.User, "Candidate excerpt:\n(empty)")

	p, err = g.Field(output.OracleRequest{Label: "Why us?", Kind: entity.KindTextarea, Excerpt: "Summary: builds things"})
	require.NoError(t, err)
	assert.Contains(t, p.User, "Answer with the value to type into the field.")
	assert.NotContains(t, p.User, "Allowed options")
}

func TestGenerator_RequiresLabel(t *testing.T) {
	_, err := NewGenerator().Field(output.OracleRequest{Label: "  "})
	assert.Error(t, err)
}

func TestGenerator_CustomTemplates(t *testing.T) {
	g := NewGeneratorFrom("sys", "{{.label}}={{.excerpt}}")

	p, err := g.Field(output.OracleRequest{Label: "City", Excerpt: "City: Austin"})
	require.NoError(t, err)
	assert.Equal(t, Prompt{System: "sys", User: "City=City: Austin"}, p)
	assert.Equal(t, "sys\n\nCity=City: Austin", p.Combined())
}
