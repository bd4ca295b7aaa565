package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"apply-agent/internal/application/port/output"
	"apply-agent/internal/domain/entity"

	"github.com/go-playground/validator/v10"
)

var _ output.ProfileStore = (*FileStore)(nil)

// FileStore loads the applicant profile from a JSON file. Unknown keys are
// ignored.
type FileStore struct {
	path     string
	validate *validator.Validate
}

func NewFileStore(path string) *FileStore {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &FileStore{path: path, validate: validate}
}

func (s *FileStore) Load(ctx context.Context) (*entity.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var p entity.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", s.path, err)
	}

	if err := s.validate.Struct(&p); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", s.path, describe(err))
	}
	return &p, nil
}

// describe flattens validator errors into "path: tag" pairs keyed by the
// JSON field names.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if i := strings.Index(path, "."); i >= 0 {
			path = path[i+1:]
		}
		parts = append(parts, fmt.Sprintf("%s: %s", path, fe.Tag()))
	}
	return errors.New(strings.Join(parts, "; "))
}
