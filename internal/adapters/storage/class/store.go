package class

import (
	"context"

	domain "gymdesk/internal/domain/class"
)

// Store persists Class state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Class, error)
	Save(ctx context.Context, value domain.Class) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Class, error)
	ListByClassTypeID(ctx context.Context, classTypeID string) ([]domain.Class, error)
}
