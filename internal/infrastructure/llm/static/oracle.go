// Package static provides a deterministic oracle answering from a fixed
// label table. It backs dry runs and tests.
package static

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"apply-agent/internal/application/port/output"
	"apply-agent/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

var _ output.Oracle = (*Oracle)(nil)

type Oracle struct {
	answers map[string][]string
	calls   atomic.Int64
}

// New builds an oracle from label → answer pairs. Labels are matched
// case- and whitespace-insensitively.
func New(answers map[string][]string) *Oracle {
	o := &Oracle{answers: make(map[string][]string, len(answers))}
	for label, values := range answers {
		o.answers[entity.NormalizeText(label)] = append([]string(nil), values...)
	}
	return o
}

type file struct {
	Answers map[string]answerList `yaml:"answers"`
}

// answerList accepts either a scalar or a sequence.
type answerList []string

func (a *answerList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*a = answerList{node.Value}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*a = list
	return nil
}

// Load reads an answers file:
//
//	answers:
//	  "Are you at least 18 years old?": "Yes"
//	  "Languages": ["English", "German"]
func Load(path string) (*Oracle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse answers file %s: %w", path, err)
	}

	answers := make(map[string][]string, len(f.Answers))
	for label, values := range f.Answers {
		answers[label] = values
	}
	return New(answers), nil
}

func (o *Oracle) Name() string {
	return "static"
}

func (o *Oracle) Ask(ctx context.Context, req output.OracleRequest) (*output.OracleResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.calls.Add(1)

	values, ok := o.answers[entity.NormalizeText(req.Label)]
	if !ok || len(values) == 0 {
		return &output.OracleResponse{NoMatch: true}, nil
	}
	return &output.OracleResponse{Values: append([]string(nil), values...)}, nil
}

// Calls reports how many requests reached the oracle.
func (o *Oracle) Calls() int {
	return int(o.calls.Load())
}
