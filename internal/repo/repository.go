package repo

import (
	"context"

	"github.com/hamed0406/campusnet/internal/domain"
)

// AttemptStore keeps the history of session runs.
type AttemptStore interface {
	Append(ctx context.Context, a *domain.Attempt) error
	// List returns the newest attempts first, at most limit (all when limit <= 0).
	List(ctx context.Context, limit int) ([]domain.Attempt, error)
	// Latest returns nil, nil when nothing was recorded yet.
	Latest(ctx context.Context) (*domain.Attempt, error)
}
