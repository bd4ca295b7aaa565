package output

import (
	"context"

	"apply-agent/internal/domain/entity"
)

// OracleRequest carries only what the oracle needs to answer one field:
// the label, the option set and the section-scoped profile excerpt.
type OracleRequest struct {
	Label    string
	Kind     entity.FieldKind
	Options  []entity.Option
	Excerpt  string
	Multiple bool
}

type OracleResponse struct {
	Values  []string
	NoMatch bool
	Raw     string
}

type Oracle interface {
	Ask(ctx context.Context, req OracleRequest) (*OracleResponse, error)
	Name() string
}
