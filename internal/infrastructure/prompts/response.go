package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"apply-agent/internal/application/port/output"
)

type answer struct {
	Values  json.RawMessage `json:"values"`
	Value   json.RawMessage `json:"value"`
	NoMatch bool            `json:"no_match"`
}

// ParseResponse decodes an oracle reply. Markdown code fences and prose
// around the JSON object are tolerated; "values" may be a list or a
// single string.
func ParseResponse(raw string) (*output.OracleResponse, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty oracle response")
	}

	var a answer
	if err := json.Unmarshal([]byte(cleaned), &a); err != nil {
		return nil, fmt.Errorf("parse oracle response: %w", err)
	}

	field := a.Values
	if len(field) == 0 {
		field = a.Value
	}
	values, err := decodeValues(field)
	if err != nil {
		return nil, fmt.Errorf("parse oracle values: %w", err)
	}

	resp := &output.OracleResponse{Raw: raw, NoMatch: a.NoMatch}
	if !a.NoMatch {
		resp.Values = values
	}
	return resp, nil
}

func decodeValues(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var list []any
	if err := json.Unmarshal(raw, &list); err != nil {
		var single any
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, err
		}
		list = []any{single}
	}

	values := make([]string, 0, len(list))
	for _, v := range list {
		var s string
		switch val := v.(type) {
		case string:
			s = val
		case nil:
			continue
		default:
			s = fmt.Sprint(val)
		}
		if s = strings.TrimSpace(s); s != "" {
			values = append(values, s)
		}
	}
	return values, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.TrimSpace(raw)

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return raw
	}
	return raw[start : end+1]
}
