package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gymdesk/internal/domain/enrollment"
	"gymdesk/internal/domain/fault"
	"gymdesk/internal/domain/member"
	"gymdesk/internal/domain/schedule"
)

// QuickCheckInMemberStore resolves members from kiosk identifiers.
type QuickCheckInMemberStore interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
	GetByCode(ctx context.Context, code string) (member.Member, error)
}

// QuickCheckInScheduleStore resolves schedules from kiosk identifiers.
type QuickCheckInScheduleStore interface {
	GetByID(ctx context.Context, id string) (schedule.Schedule, error)
	GetByCode(ctx context.Context, code string) (schedule.Schedule, error)
}

// QuickCheckInEnrollmentStore defines the enrollment store interface for kiosk check-in.
type QuickCheckInEnrollmentStore interface {
	GetByScheduleAndMember(ctx context.Context, scheduleID, memberID string) (enrollment.Enrollment, error)
	ListActiveByMemberOnDate(ctx context.Context, memberID, date string) ([]enrollment.Enrollment, error)
	Save(ctx context.Context, value enrollment.Enrollment) error
}

// QuickCheckInInput carries input for the kiosk quick check-in. Member and
// Schedule accept either the entity id or the short code printed on cards
// and timetables.
type QuickCheckInInput struct {
	Member   string // member id or GD- code
	Schedule string // schedule id or short code
}

// QuickCheckInDeps holds dependencies for QuickCheckIn.
type QuickCheckInDeps struct {
	MemberStore     QuickCheckInMemberStore
	ScheduleStore   QuickCheckInScheduleStore
	EnrollmentStore QuickCheckInEnrollmentStore
	Now             func() time.Time
}

// QuickCheckInResult reports the outcome of a kiosk tap.
type QuickCheckInResult struct {
	EnrollmentID     string
	MemberName       string
	AlreadyCheckedIn bool
}

// ExecuteQuickCheckIn is the kiosk path: resolve the member and schedule by
// id or short code and check the member in against a widened window (15
// minutes before through 30 minutes after the start). A second tap is
// idempotent and reports already-checked-in instead of failing.
// PRE: Member and Schedule identifiers are non-empty
// POST: Enrollment is attended; repeat calls leave it unchanged
func ExecuteQuickCheckIn(ctx context.Context, input QuickCheckInInput, deps QuickCheckInDeps) (QuickCheckInResult, error) {
	if input.Member == "" || input.Schedule == "" {
		return QuickCheckInResult{}, fault.New(fault.Validation, "member and schedule are required")
	}

	m, err := deps.MemberStore.GetByCode(ctx, input.Member)
	if errors.Is(err, member.ErrNotFound) {
		m, err = deps.MemberStore.GetByID(ctx, input.Member)
	}
	if err != nil {
		if errors.Is(err, member.ErrNotFound) {
			return QuickCheckInResult{}, fault.New(fault.NotFound, "member not found")
		}
		return QuickCheckInResult{}, err
	}

	sched, err := deps.ScheduleStore.GetByCode(ctx, input.Schedule)
	if errors.Is(err, schedule.ErrNotFound) {
		sched, err = deps.ScheduleStore.GetByID(ctx, input.Schedule)
	}
	if err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			return QuickCheckInResult{}, fault.New(fault.NotFound, "schedule not found")
		}
		return QuickCheckInResult{}, err
	}
	if !sched.IsOpen() {
		return QuickCheckInResult{}, fault.Newf(fault.State, "schedule is %s", sched.Status)
	}

	e, err := deps.EnrollmentStore.GetByScheduleAndMember(ctx, sched.ID, m.ID)
	if err != nil {
		if errors.Is(err, enrollment.ErrNotFound) {
			return QuickCheckInResult{}, fault.New(fault.NotFound, "no enrollment for this class")
		}
		return QuickCheckInResult{}, err
	}
	if !e.IsActive() {
		return QuickCheckInResult{}, fault.New(fault.NotFound, "no enrollment for this class")
	}
	if e.Status == enrollment.StatusAttended {
		return QuickCheckInResult{EnrollmentID: e.ID, MemberName: m.Name, AlreadyCheckedIn: true}, nil
	}

	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}
	if !sched.InWindow(now, schedule.WindowQuick) {
		return QuickCheckInResult{}, fault.New(fault.Policy, "kiosk check-in opens 15 minutes before the class and closes 30 minutes after the start")
	}

	if err := checkKioskAttendanceConflict(ctx, deps, e, sched); err != nil {
		return QuickCheckInResult{}, err
	}

	if err := e.CheckIn(now); err != nil {
		return QuickCheckInResult{}, fault.New(fault.State, err.Error())
	}
	if err := deps.EnrollmentStore.Save(ctx, e); err != nil {
		return QuickCheckInResult{}, err
	}

	slog.Info("attendance_event", "event", "kiosk_checked_in", "enrollment_id", e.ID, "member_id", m.ID, "schedule_id", sched.ID)
	return QuickCheckInResult{EnrollmentID: e.ID, MemberName: m.Name}, nil
}

func checkKioskAttendanceConflict(ctx context.Context, deps QuickCheckInDeps, e enrollment.Enrollment, sched schedule.Schedule) error {
	sameDay, err := deps.EnrollmentStore.ListActiveByMemberOnDate(ctx, e.MemberID, sched.Date)
	if err != nil {
		return err
	}
	for _, other := range sameDay {
		if other.ID == e.ID || !other.IsCheckedIn() {
			continue
		}
		otherSched, err := deps.ScheduleStore.GetByID(ctx, other.ScheduleID)
		if err != nil {
			if errors.Is(err, schedule.ErrNotFound) {
				continue
			}
			return err
		}
		if otherSched.Overlaps(sched.StartTime, sched.EndTime) {
			return fault.New(fault.Conflict, "member is still checked in to an overlapping class")
		}
	}
	return nil
}
