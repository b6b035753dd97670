package projections

import (
	"context"

	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/class"
	"gymdesk/internal/domain/classtype"
	"gymdesk/internal/domain/member"
	"gymdesk/internal/domain/schedule"
)

// ClassStore interface for class lookups shared across projections.
type ClassStore interface {
	GetByID(ctx context.Context, id string) (class.Class, error)
}

// ClassTypeStore interface for class type lookups shared across projections.
type ClassTypeStore interface {
	GetByID(ctx context.Context, id string) (classtype.ClassType, error)
}

// MemberStore interface for member lookups shared across projections.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
}

// AccountStore interface for account lookups shared across projections.
type AccountStore interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// ScheduleLookupStore interface for single schedule lookups.
type ScheduleLookupStore interface {
	GetByID(ctx context.Context, id string) (schedule.Schedule, error)
}
