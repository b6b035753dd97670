package enrollment

import (
	"errors"
	"time"
)

// Status constants for the enrollment lifecycle. Check-out is a sub-state of
// attended (CheckoutTime set), not a separate top-level status.
const (
	StatusEnrolled  = "enrolled"
	StatusAttended  = "attended"
	StatusCancelled = "cancelled"
)

// Domain errors
var (
	ErrEmptyScheduleID    = errors.New("enrollment must reference a schedule")
	ErrEmptyMemberID      = errors.New("enrollment must reference a member")
	ErrInvalidStatus      = errors.New("status must be 'enrolled', 'attended', or 'cancelled'")
	ErrNotEnrolled        = errors.New("member is not in enrolled state")
	ErrNotAttended        = errors.New("member has not checked in")
	ErrAlreadyCheckedOut  = errors.New("member has already checked out")
	ErrAlreadyCancelled   = errors.New("enrollment is already cancelled")
	ErrCheckinBeforeState = errors.New("check-in time is only valid in attended state")
	ErrNotFound           = errors.New("enrollment not found")
)

// Enrollment binds one member to one schedule and owns the attendance
// lifecycle: enrolled -> attended (check-in), attended + CheckoutTime set
// (check-out), cancelled from either state. Transitions go through the
// methods below; the timestamps are never interpreted as state on their own.
type Enrollment struct {
	ID           string
	ScheduleID   string
	MemberID     string
	Status       string
	EnrolledAt   time.Time
	CheckinTime  time.Time
	CheckoutTime time.Time
	InvoiceRef   string // human-readable invoice reference, set by billing
}

// Validate checks if the Enrollment has valid data.
// PRE: Enrollment struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: timestamps agree with Status
func (e *Enrollment) Validate() error {
	if e.ScheduleID == "" {
		return ErrEmptyScheduleID
	}
	if e.MemberID == "" {
		return ErrEmptyMemberID
	}
	switch e.Status {
	case StatusEnrolled, StatusAttended, StatusCancelled:
	default:
		return ErrInvalidStatus
	}
	if e.Status == StatusEnrolled && !e.CheckinTime.IsZero() {
		return ErrCheckinBeforeState
	}
	if !e.CheckoutTime.IsZero() && e.CheckoutTime.Before(e.CheckinTime) {
		return errors.New("check-out time cannot be before check-in time")
	}
	return nil
}

// IsActive returns true for enrollments that hold a capacity slot
// (anything not cancelled).
// INVARIANT: Enrollment fields are not mutated
func (e *Enrollment) IsActive() bool {
	return e.Status != StatusCancelled
}

// IsCheckedIn returns true while the member is attending and has not
// checked out.
// INVARIANT: Enrollment fields are not mutated
func (e *Enrollment) IsCheckedIn() bool {
	return e.Status == StatusAttended && e.CheckoutTime.IsZero()
}

// IsCheckedOut returns true once the attendance session is complete.
// INVARIANT: Enrollment fields are not mutated
func (e *Enrollment) IsCheckedOut() bool {
	return e.Status == StatusAttended && !e.CheckoutTime.IsZero()
}

// CheckIn transitions enrolled -> attended and records the time.
// PRE: Status is enrolled
// POST: Status is attended, CheckinTime set
func (e *Enrollment) CheckIn(now time.Time) error {
	if e.Status != StatusEnrolled {
		return ErrNotEnrolled
	}
	e.Status = StatusAttended
	e.CheckinTime = now
	return nil
}

// CheckOut records the end of the attendance session.
// PRE: Status is attended, CheckoutTime unset
// POST: CheckoutTime set
func (e *Enrollment) CheckOut(now time.Time) error {
	if e.Status != StatusAttended || e.CheckinTime.IsZero() {
		return ErrNotAttended
	}
	if !e.CheckoutTime.IsZero() {
		return ErrAlreadyCheckedOut
	}
	e.CheckoutTime = now
	return nil
}

// Cancel retires the enrollment from either live state. Cancelling an
// already-cancelled enrollment returns ErrAlreadyCancelled so cascades can
// treat it as a no-op rather than a failure.
// PRE: Status is enrolled or attended
// POST: Status is cancelled
func (e *Enrollment) Cancel() error {
	if e.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	e.Status = StatusCancelled
	return nil
}

// Duration returns the length of the attendance session so far.
// PRE: member has checked in
// POST: Returns duration, or time since check-in if not checked out
func (e *Enrollment) Duration() time.Duration {
	if e.CheckinTime.IsZero() {
		return 0
	}
	if e.IsCheckedOut() {
		return e.CheckoutTime.Sub(e.CheckinTime)
	}
	return time.Since(e.CheckinTime)
}
