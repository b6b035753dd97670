package outbox

import (
	"context"

	domain "gymdesk/internal/domain/outbox"
)

// Store persists outbox entries for the billing and email workers.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	Save(ctx context.Context, e domain.Entry) error
	Delete(ctx context.Context, id string) error
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)
	ListFailed(ctx context.Context, limit int) ([]domain.Entry, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}
