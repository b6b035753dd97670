package enrollment

import (
	"context"

	domain "gymdesk/internal/domain/enrollment"
)

// Store persists Enrollment state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Enrollment, error)
	GetByScheduleAndMember(ctx context.Context, scheduleID, memberID string) (domain.Enrollment, error)
	Save(ctx context.Context, value domain.Enrollment) error
	Delete(ctx context.Context, id string) error
	ListBySchedule(ctx context.Context, scheduleID string) ([]domain.Enrollment, error)
	ListByMember(ctx context.Context, memberID string) ([]domain.Enrollment, error)
	ListActiveByMemberOnDate(ctx context.Context, memberID, date string) ([]domain.Enrollment, error)
	SetInvoiceRef(ctx context.Context, id, invoiceRef string) error
}
