package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gymdesk/internal/domain/enrollment"
	"gymdesk/internal/domain/fault"
	"gymdesk/internal/domain/schedule"
)

// CheckInEnrollmentStore defines the enrollment store interface for check-in.
type CheckInEnrollmentStore interface {
	GetByID(ctx context.Context, id string) (enrollment.Enrollment, error)
	ListActiveByMemberOnDate(ctx context.Context, memberID, date string) ([]enrollment.Enrollment, error)
	Save(ctx context.Context, value enrollment.Enrollment) error
}

// CheckInInput carries input for the check-in orchestrator.
type CheckInInput struct {
	EnrollmentID string
	Bypass       bool // staff override for the timing window
}

// CheckInDeps holds dependencies for CheckIn.
type CheckInDeps struct {
	EnrollmentStore CheckInEnrollmentStore
	ScheduleStore   EnrollScheduleStore
	Now             func() time.Time
}

// ExecuteCheckIn marks the member as attending. The member must be in the
// enrolled state, inside the admission window around the start time, and not
// currently attending another overlapping class without having checked out.
// Staff can bypass the window, never the state machine.
// PRE: EnrollmentID refers to an existing enrollment
// POST: Enrollment status is attended, check-in time recorded
func ExecuteCheckIn(ctx context.Context, input CheckInInput, deps CheckInDeps) error {
	e, err := deps.EnrollmentStore.GetByID(ctx, input.EnrollmentID)
	if err != nil {
		return fault.New(fault.NotFound, "enrollment not found")
	}

	sched, err := deps.ScheduleStore.GetByID(ctx, e.ScheduleID)
	if err != nil {
		return fault.New(fault.NotFound, "schedule not found")
	}

	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}

	if !input.Bypass {
		if !sched.IsOpen() {
			return fault.Newf(fault.State, "schedule is %s", sched.Status)
		}
		if !sched.InWindow(now, schedule.WindowStandard) {
			return fault.New(fault.Policy, "check-in opens 15 minutes before the class and closes 15 minutes after the start")
		}
	}

	if err := checkAttendanceConflict(ctx, deps.EnrollmentStore, deps.ScheduleStore, e, sched); err != nil {
		return err
	}

	if err := e.CheckIn(now); err != nil {
		return fault.New(fault.State, err.Error())
	}
	if err := deps.EnrollmentStore.Save(ctx, e); err != nil {
		return err
	}

	slog.Info("attendance_event", "event", "member_checked_in", "enrollment_id", e.ID, "member_id", e.MemberID, "schedule_id", e.ScheduleID, "bypass", input.Bypass)
	return nil
}

// checkAttendanceConflict rejects a check-in while the member is attending an
// overlapping class they have not checked out of.
func checkAttendanceConflict(ctx context.Context, enrollments CheckInEnrollmentStore, schedules EnrollScheduleStore, e enrollment.Enrollment, sched schedule.Schedule) error {
	sameDay, err := enrollments.ListActiveByMemberOnDate(ctx, e.MemberID, sched.Date)
	if err != nil {
		return err
	}
	for _, other := range sameDay {
		if other.ID == e.ID || !other.IsCheckedIn() {
			continue
		}
		otherSched, err := schedules.GetByID(ctx, other.ScheduleID)
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

// CheckOutInput carries input for the check-out orchestrator.
type CheckOutInput struct {
	EnrollmentID string
}

// CheckOutDeps holds dependencies for CheckOut.
type CheckOutDeps struct {
	EnrollmentStore CheckInEnrollmentStore
	Now             func() time.Time
}

// ExecuteCheckOut closes the attendance session. There is no timing window;
// the only requirement is an open attended session.
// PRE: EnrollmentID refers to an attended, not-yet-checked-out enrollment
// POST: Check-out time recorded
func ExecuteCheckOut(ctx context.Context, input CheckOutInput, deps CheckOutDeps) error {
	e, err := deps.EnrollmentStore.GetByID(ctx, input.EnrollmentID)
	if err != nil {
		return fault.New(fault.NotFound, "enrollment not found")
	}

	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}

	if err := e.CheckOut(now); err != nil {
		return fault.New(fault.State, err.Error())
	}
	if err := deps.EnrollmentStore.Save(ctx, e); err != nil {
		return err
	}

	slog.Info("attendance_event", "event", "member_checked_out", "enrollment_id", e.ID, "member_id", e.MemberID, "duration_min", e.Duration().Minutes())
	return nil
}
