package gemini

import (
	"context"
	"net/http"
	"testing"
	"time"

	"apply-agent/internal/application/port/output"
	"apply-agent/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	resp  *genai.GenerateContentResponse
	err   error
	calls []fakeCall
	block bool
}

type fakeCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls = append(f.calls, fakeCall{model: model, contents: contents, config: config})
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func radioRequest() output.OracleRequest {
	return output.OracleRequest{
		Label:   "Are you legally authorized to work in this country?",
		Kind:    entity.KindRadio,
		Options: []entity.Option{{Label: "Yes", Value: "1"}, {Label: "No", Value: "0"}},
		Excerpt: "Country: Canada",
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{APIKey: " "})
	assert.Error(t, err)
}

func TestAsk_ParsesAnswer(t *testing.T) {
	models := &fakeModels{resp: textResponse("```json\n{\"values\": [\"Yes\"]}\n```")}
	a := newAdapter(models, Config{})

	resp, err := a.Ask(context.Background(), radioRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"Yes"}, resp.Values)

	require.Len(t, models.calls, 1)
	call := models.calls[0]
	assert.Equal(t, defaultModel, call.model)
	assert.Equal(t, "application/json", call.config.ResponseMIMEType)
	require.NotNil(t, call.config.Temperature)
	assert.Zero(t, *call.config.Temperature)
	require.Len(t, call.contents, 1)
	assert.Contains(t, call.contents[0].Parts[0].Text, "- No")
	assert.Equal(t, "gemini:"+defaultModel, a.Name())
}

func TestAsk_Errors(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeModels
		want error
	}{
		{"server error", &fakeModels{err: genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}}, entity.ErrOracleError},
		{"rate limited", &fakeModels{err: genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}}, entity.ErrOracleError},
		{"empty", &fakeModels{resp: &genai.GenerateContentResponse{}}, entity.ErrOracleError},
		{"not json", &fakeModels{resp: textResponse("Yes")}, entity.ErrAmbiguousField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newAdapter(tt.fake, Config{}).Ask(context.Background(), radioRequest())
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("not json is not an oracle error", func(t *testing.T) {
		_, err := newAdapter(&fakeModels{resp: textResponse("I think Yes")}, Config{}).Ask(context.Background(), radioRequest())
		require.Error(t, err)
		assert.NotErrorIs(t, err, entity.ErrOracleError)
	})

	t.Run("bad request is permanent", func(t *testing.T) {
		fake := &fakeModels{err: genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"}}
		_, err := newAdapter(fake, Config{}).Ask(context.Background(), radioRequest())
		require.Error(t, err)
		assert.NotErrorIs(t, err, entity.ErrOracleError)
	})
}

func TestAsk_Timeout(t *testing.T) {
	a := newAdapter(&fakeModels{block: true}, Config{Model: "gemini-pro", Timeout: 20 * time.Millisecond})

	_, err := a.Ask(context.Background(), radioRequest())
	assert.ErrorIs(t, err, entity.ErrOracleTimeout)
}

func TestResponseText_FirstCandidateWithText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			nil,
			{Content: &genai.Content{Parts: []*genai.Part{{Text: " a "}, nil, {Text: "b"}}}},
			{Content: &genai.Content{Parts: []*genai.Part{{Text: "c"}}}},
		},
	}
	assert.Equal(t, "a\nb", responseText(resp))
	assert.Empty(t, responseText(nil))
}
