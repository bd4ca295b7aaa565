package output

import (
	"context"

	"apply-agent/internal/domain/entity"
)

type ProfileStore interface {
	Load(ctx context.Context) (*entity.UserProfile, error)
}
