package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Wire formats for dates and wall-clock times.
const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04"
)

// Status constants for the schedule lifecycle.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Max length constants.
const (
	MaxRoomLength  = 100
	MaxNotesLength = 2000
)

// Domain errors
var (
	ErrEmptyClassID      = errors.New("class ID cannot be empty")
	ErrEmptyTrainerID    = errors.New("trainer ID cannot be empty")
	ErrInvalidDate       = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidTime       = errors.New("time must be in HH:MM format")
	ErrEndNotAfterStart  = errors.New("end time must be after start time")
	ErrInvalidCapacity   = errors.New("max participants must be greater than zero")
	ErrInvalidStatus     = errors.New("status must be 'scheduled', 'completed', or 'cancelled'")
	ErrCompleted         = errors.New("schedule is completed and can no longer change")
	ErrAlreadyCancelled  = errors.New("schedule is already cancelled")
	ErrCounterOutOfRange = errors.New("current participants out of range")
	ErrNotFound          = errors.New("schedule not found")
	ErrTrainerBusy       = errors.New("trainer already has an overlapping session")
)

// Schedule is one dated, timed occurrence of a Class taught by a trainer.
// StartTime and EndTime are full timestamps derived from Date plus wall-clock
// times; Date is kept alongside them because conflict detection groups by
// trainer and calendar day.
type Schedule struct {
	ID                  string
	Code                string // short code for kiosk quick check-in
	ClassID             string
	TrainerID           string
	Date                string // YYYY-MM-DD
	StartTime           time.Time
	EndTime             time.Time
	Room                string
	MaxParticipants     int
	CurrentParticipants int
	Status              string
	Notes               string
}

// CombineDateTime builds a full timestamp from a YYYY-MM-DD date and an HH:MM
// wall-clock time. Both parts are validated strictly against their formats.
func CombineDateTime(date, clock string) (time.Time, error) {
	if _, err := time.Parse(DateFormat, date); err != nil {
		return time.Time{}, ErrInvalidDate
	}
	if _, err := time.Parse(TimeFormat, clock); err != nil {
		return time.Time{}, ErrInvalidTime
	}
	ts, err := time.Parse(DateFormat+" "+TimeFormat, date+" "+clock)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return ts, nil
}

// Validate checks if the Schedule has valid data.
// PRE: Schedule struct is populated, timestamps already combined
// POST: Returns nil if valid, error otherwise
// INVARIANT: CurrentParticipants stays within [0, MaxParticipants]
func (s *Schedule) Validate() error {
	if strings.TrimSpace(s.ClassID) == "" {
		return ErrEmptyClassID
	}
	if strings.TrimSpace(s.TrainerID) == "" {
		return ErrEmptyTrainerID
	}
	if _, err := time.Parse(DateFormat, s.Date); err != nil {
		return ErrInvalidDate
	}
	if s.StartTime.IsZero() || s.EndTime.IsZero() {
		return ErrInvalidTime
	}
	if !s.EndTime.After(s.StartTime) {
		return ErrEndNotAfterStart
	}
	if s.MaxParticipants <= 0 {
		return ErrInvalidCapacity
	}
	if s.CurrentParticipants < 0 || s.CurrentParticipants > s.MaxParticipants {
		return ErrCounterOutOfRange
	}
	switch s.Status {
	case StatusScheduled, StatusCompleted, StatusCancelled:
	default:
		return ErrInvalidStatus
	}
	if len(s.Room) > MaxRoomLength {
		return fmt.Errorf("room cannot exceed %d characters", MaxRoomLength)
	}
	if len(s.Notes) > MaxNotesLength {
		return fmt.Errorf("notes cannot exceed %d characters", MaxNotesLength)
	}
	return nil
}

// Overlaps reports whether the candidate interval [start, end) collides with
// this schedule's interval. Three-way test: candidate start falls inside,
// candidate end falls inside, or the candidate fully contains this interval.
// INVARIANT: Schedule fields are not mutated
func (s *Schedule) Overlaps(start, end time.Time) bool {
	startInside := (start.After(s.StartTime) || start.Equal(s.StartTime)) && start.Before(s.EndTime)
	endInside := end.After(s.StartTime) && (end.Before(s.EndTime) || end.Equal(s.EndTime))
	contains := (start.Before(s.StartTime) || start.Equal(s.StartTime)) && (end.After(s.EndTime) || end.Equal(s.EndTime))
	return startInside || endInside || contains
}

// IsOpen returns true if the schedule is accepting enrollments.
// INVARIANT: Schedule fields are not mutated
func (s *Schedule) IsOpen() bool {
	return s.Status == StatusScheduled
}

// IsCompleted returns true for completed schedules, which are immutable.
// INVARIANT: Schedule fields are not mutated
func (s *Schedule) IsCompleted() bool {
	return s.Status == StatusCompleted
}

// IsFull returns true when no slots remain.
// INVARIANT: Schedule fields are not mutated
func (s *Schedule) IsFull() bool {
	return s.CurrentParticipants >= s.MaxParticipants
}

// Cancel retires the schedule. Completed schedules cannot be cancelled and
// re-cancelling is rejected so callers can distinguish the no-op.
// PRE: Status is scheduled
// POST: Status is cancelled
func (s *Schedule) Cancel() error {
	if s.Status == StatusCompleted {
		return ErrCompleted
	}
	if s.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	s.Status = StatusCancelled
	return nil
}

// CheckInWindow is the admission window around the schedule start.
type CheckInWindow struct {
	Before time.Duration
	After  time.Duration
}

// Standard admission windows.
var (
	// WindowStandard is the regular check-in window: 15 minutes either side
	// of the start.
	WindowStandard = CheckInWindow{Before: 15 * time.Minute, After: 15 * time.Minute}
	// WindowQuick is the widened kiosk window: 15 minutes before through
	// 30 minutes after the start.
	WindowQuick = CheckInWindow{Before: 15 * time.Minute, After: 30 * time.Minute}
)

// InWindow reports whether now falls inside the admission window around the
// schedule's start time (inclusive at both edges).
// INVARIANT: Schedule fields are not mutated
func (s *Schedule) InWindow(now time.Time, w CheckInWindow) bool {
	earliest := s.StartTime.Add(-w.Before)
	latest := s.StartTime.Add(w.After)
	return !now.Before(earliest) && !now.After(latest)
}
