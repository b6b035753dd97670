package projections

import (
	"context"
	"sort"
	"time"

	"gymdesk/internal/domain/enrollment"
	"gymdesk/internal/domain/schedule"
)

// AttendanceScheduleStore defines the schedule store interface for this projection.
type AttendanceScheduleStore interface {
	ListByDate(ctx context.Context, date string) ([]schedule.Schedule, error)
}

// AttendanceEnrollmentStore defines the enrollment store interface for this projection.
type AttendanceEnrollmentStore interface {
	ListBySchedule(ctx context.Context, scheduleID string) ([]enrollment.Enrollment, error)
}

// GetAttendanceTodayQuery carries query parameters. Date defaults to today.
type GetAttendanceTodayQuery struct {
	Date string // YYYY-MM-DD
}

// AttendanceRow is one member's attendance state for a session.
type AttendanceRow struct {
	EnrollmentID string
	MemberID     string
	MemberName   string
	MemberCode   string
	ScheduleID   string
	ClassName    string
	StartTime    time.Time
	Status       string
	CheckinTime  time.Time
	CheckoutTime time.Time
}

// GetAttendanceTodayResult carries the query result with summary counts for
// the front-desk dashboard.
type GetAttendanceTodayResult struct {
	Rows       []AttendanceRow
	Enrolled   int
	CheckedIn  int
	CheckedOut int
}

// GetAttendanceTodayDeps holds dependencies for GetAttendanceToday.
type GetAttendanceTodayDeps struct {
	ScheduleStore   AttendanceScheduleStore
	EnrollmentStore AttendanceEnrollmentStore
	MemberStore     MemberStore
	ClassStore      ClassStore
}

// QueryGetAttendanceToday lists every booking across the day's sessions with
// its attendance state, ordered by session start then member name.
// PRE: Date is YYYY-MM-DD or empty for today
// POST: Returns rows plus headline counts; cancelled bookings excluded
func QueryGetAttendanceToday(ctx context.Context, query GetAttendanceTodayQuery, deps GetAttendanceTodayDeps) (GetAttendanceTodayResult, error) {
	date := query.Date
	if date == "" {
		date = time.Now().Format(schedule.DateFormat)
	}

	schedules, err := deps.ScheduleStore.ListByDate(ctx, date)
	if err != nil {
		return GetAttendanceTodayResult{}, err
	}

	result := GetAttendanceTodayResult{}
	for _, s := range schedules {
		if s.Status == schedule.StatusCancelled {
			continue
		}

		className := ""
		if cls, err := deps.ClassStore.GetByID(ctx, s.ClassID); err == nil {
			className = cls.Name
		}

		enrollments, err := deps.EnrollmentStore.ListBySchedule(ctx, s.ID)
		if err != nil {
			return GetAttendanceTodayResult{}, err
		}
		for _, e := range enrollments {
			if e.Status == enrollment.StatusCancelled {
				continue
			}

			row := AttendanceRow{
				EnrollmentID: e.ID,
				MemberID:     e.MemberID,
				ScheduleID:   s.ID,
				ClassName:    className,
				StartTime:    s.StartTime,
				Status:       e.Status,
				CheckinTime:  e.CheckinTime,
				CheckoutTime: e.CheckoutTime,
			}
			if m, err := deps.MemberStore.GetByID(ctx, e.MemberID); err == nil {
				row.MemberName = m.Name
				row.MemberCode = m.Code
			}

			result.Rows = append(result.Rows, row)
			result.Enrolled++
			if e.IsCheckedIn() {
				result.CheckedIn++
			}
			if e.IsCheckedOut() {
				result.CheckedOut++
			}
		}
	}

	sort.Slice(result.Rows, func(i, j int) bool {
		if result.Rows[i].StartTime.Equal(result.Rows[j].StartTime) {
			return result.Rows[i].MemberName < result.Rows[j].MemberName
		}
		return result.Rows[i].StartTime.Before(result.Rows[j].StartTime)
	})

	return result, nil
}
