package schedule

import (
	"context"
	"errors"

	domain "gymdesk/internal/domain/schedule"
)

// Slot reservation errors. ReserveSlot and ReleaseSlot fold the capacity
// check into a single conditional UPDATE so concurrent enrollments cannot
// both win the last slot.
var (
	ErrNoSlot        = errors.New("schedule is full or not open")
	ErrNothingToFree = errors.New("no reserved slot to release")
)

// Store persists Schedule state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Schedule, error)
	GetByCode(ctx context.Context, code string) (domain.Schedule, error)
	Save(ctx context.Context, value domain.Schedule) error
	SaveIfTrainerFree(ctx context.Context, value domain.Schedule) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Schedule, error)
	ListByDate(ctx context.Context, date string) ([]domain.Schedule, error)
	ListByTrainerAndDate(ctx context.Context, trainerID, date string) ([]domain.Schedule, error)
	ListByClassID(ctx context.Context, classID string) ([]domain.Schedule, error)
	ReserveSlot(ctx context.Context, id string) error
	ReleaseSlot(ctx context.Context, id string) error
}
