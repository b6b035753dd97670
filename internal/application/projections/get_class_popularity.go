package projections

import (
	"context"
	"sort"

	"gymdesk/internal/domain/enrollment"
	"gymdesk/internal/domain/schedule"
)

// PopularityScheduleStore defines the schedule store interface for this projection.
type PopularityScheduleStore interface {
	List(ctx context.Context) ([]schedule.Schedule, error)
}

// ClassPopularityRow aggregates bookings, attendance, and revenue per class.
type ClassPopularityRow struct {
	ClassID       string
	ClassName     string
	PriceCents    int64
	Sessions      int
	Bookings      int // non-cancelled enrollments across all sessions
	Attended      int
	CapacityTotal int
	FillRate      float64 // bookings / capacity across non-cancelled sessions
	RevenueCents  int64   // price * bookings
}

// GetClassPopularityDeps holds dependencies for GetClassPopularity.
type GetClassPopularityDeps struct {
	ScheduleStore   PopularityScheduleStore
	EnrollmentStore AttendanceEnrollmentStore
	ClassStore      ClassStore
}

// QueryGetClassPopularity aggregates every class's sessions into booking,
// attendance, fill-rate, and revenue figures, most booked first. Cancelled
// sessions are excluded from the denominators.
// PRE: Stores are wired
// POST: Returns one row per class that has at least one session
func QueryGetClassPopularity(ctx context.Context, deps GetClassPopularityDeps) ([]ClassPopularityRow, error) {
	schedules, err := deps.ScheduleStore.List(ctx)
	if err != nil {
		return nil, err
	}

	rows := make(map[string]*ClassPopularityRow)
	for _, s := range schedules {
		if s.Status == schedule.StatusCancelled {
			continue
		}

		row, ok := rows[s.ClassID]
		if !ok {
			row = &ClassPopularityRow{ClassID: s.ClassID}
			if cls, err := deps.ClassStore.GetByID(ctx, s.ClassID); err == nil {
				row.ClassName = cls.Name
				row.PriceCents = cls.PriceCents
			}
			rows[s.ClassID] = row
		}
		row.Sessions++
		row.CapacityTotal += s.MaxParticipants

		enrollments, err := deps.EnrollmentStore.ListBySchedule(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		for _, e := range enrollments {
			if e.Status == enrollment.StatusCancelled {
				continue
			}
			row.Bookings++
			if e.Status == enrollment.StatusAttended {
				row.Attended++
			}
		}
	}

	out := make([]ClassPopularityRow, 0, len(rows))
	for _, row := range rows {
		if row.CapacityTotal > 0 {
			row.FillRate = float64(row.Bookings) / float64(row.CapacityTotal)
		}
		row.RevenueCents = row.PriceCents * int64(row.Bookings)
		out = append(out, *row)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Bookings == out[j].Bookings {
			return out[i].ClassName < out[j].ClassName
		}
		return out[i].Bookings > out[j].Bookings
	})

	return out, nil
}
