package projections

import (
	"context"
	"sort"
	"time"

	"gymdesk/internal/domain/enrollment"
)

// MemberScheduleEnrollmentStore defines the enrollment store interface for this projection.
type MemberScheduleEnrollmentStore interface {
	ListByMember(ctx context.Context, memberID string) ([]enrollment.Enrollment, error)
}

// GetMemberScheduleQuery carries query parameters.
type GetMemberScheduleQuery struct {
	MemberID         string
	IncludeCancelled bool
}

// MemberScheduleEntry is one booking on a member's schedule page.
type MemberScheduleEntry struct {
	EnrollmentID string
	ScheduleID   string
	ScheduleCode string
	ClassName    string
	Room         string
	Date         string
	StartTime    time.Time
	EndTime      time.Time
	Status       string
	CheckinTime  time.Time
	CheckoutTime time.Time
	InvoiceRef   string
	Upcoming     bool
}

// GetMemberScheduleDeps holds dependencies for GetMemberSchedule.
type GetMemberScheduleDeps struct {
	EnrollmentStore MemberScheduleEnrollmentStore
	ScheduleStore   ScheduleLookupStore
	ClassStore      ClassStore
	Now             func() time.Time
}

// QueryGetMemberSchedule lists a member's bookings newest first, flagging
// upcoming sessions so the UI can offer cancellation.
// PRE: MemberID is non-empty
// POST: Returns bookings sorted by session start, newest first
func QueryGetMemberSchedule(ctx context.Context, query GetMemberScheduleQuery, deps GetMemberScheduleDeps) ([]MemberScheduleEntry, error) {
	enrollments, err := deps.EnrollmentStore.ListByMember(ctx, query.MemberID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}

	var entries []MemberScheduleEntry
	for _, e := range enrollments {
		if e.Status == enrollment.StatusCancelled && !query.IncludeCancelled {
			continue
		}

		sched, err := deps.ScheduleStore.GetByID(ctx, e.ScheduleID)
		if err != nil {
			continue
		}

		entry := MemberScheduleEntry{
			EnrollmentID: e.ID,
			ScheduleID:   sched.ID,
			ScheduleCode: sched.Code,
			Room:         sched.Room,
			Date:         sched.Date,
			StartTime:    sched.StartTime,
			EndTime:      sched.EndTime,
			Status:       e.Status,
			CheckinTime:  e.CheckinTime,
			CheckoutTime: e.CheckoutTime,
			InvoiceRef:   e.InvoiceRef,
			Upcoming:     e.Status == enrollment.StatusEnrolled && sched.StartTime.After(now),
		}
		if cls, err := deps.ClassStore.GetByID(ctx, sched.ClassID); err == nil {
			entry.ClassName = cls.Name
		}

		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StartTime.After(entries[j].StartTime)
	})

	return entries, nil
}
