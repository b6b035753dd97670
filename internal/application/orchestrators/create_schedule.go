package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/class"
	"gymdesk/internal/domain/fault"
	"gymdesk/internal/domain/schedule"
)

// ScheduleStore defines the schedule persistence needed by schedule
// orchestrators. SaveIfTrainerFree re-runs the trainer overlap predicate
// inside the write, so the pre-check in checkTrainerConflict only supplies
// the descriptive error message.
type ScheduleStore interface {
	GetByID(ctx context.Context, id string) (schedule.Schedule, error)
	Save(ctx context.Context, value schedule.Schedule) error
	SaveIfTrainerFree(ctx context.Context, value schedule.Schedule) error
	ListByTrainerAndDate(ctx context.Context, trainerID, date string) ([]schedule.Schedule, error)
}

// ClassLookupStore defines the class store interface needed when stamping a schedule.
type ClassLookupStore interface {
	GetByID(ctx context.Context, id string) (class.Class, error)
}

// AccountLookupStore defines the account store interface for role checks.
type AccountLookupStore interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// CreateScheduleInput carries input for the create-schedule orchestrator.
// StartTime is HH:MM wall clock; EndTime is derived from the class duration
// when empty.
type CreateScheduleInput struct {
	ClassID         string
	TrainerID       string
	Date            string // YYYY-MM-DD
	StartTime       string // HH:MM
	EndTime         string // HH:MM, optional
	Room            string // optional, inherits from class
	MaxParticipants int    // optional, inherits from class capacity
	Notes           string
}

// CreateScheduleDeps holds dependencies for CreateSchedule.
type CreateScheduleDeps struct {
	ScheduleStore ScheduleStore
	ClassStore    ClassLookupStore
	AccountStore  AccountLookupStore
	GenerateID    func() string
}

// CreateScheduleResult carries the created schedule.
type CreateScheduleResult struct {
	Schedule schedule.Schedule
}

// ExecuteCreateSchedule places a class occurrence on the calendar. The trainer
// must hold the trainer role and must not already teach an overlapping
// session on the same day.
// PRE: ClassID, TrainerID, Date, StartTime are populated
// POST: Schedule persisted with status=scheduled, zero participants
func ExecuteCreateSchedule(ctx context.Context, input CreateScheduleInput, deps CreateScheduleDeps) (CreateScheduleResult, error) {
	cls, err := deps.ClassStore.GetByID(ctx, input.ClassID)
	if err != nil {
		return CreateScheduleResult{}, fault.New(fault.NotFound, "class not found")
	}

	trainer, err := deps.AccountStore.GetByID(ctx, input.TrainerID)
	if err != nil {
		return CreateScheduleResult{}, fault.New(fault.NotFound, "trainer not found")
	}
	if !trainer.CanTeach() {
		return CreateScheduleResult{}, fault.New(fault.Authorization, "account cannot be assigned as a trainer")
	}

	start, err := schedule.CombineDateTime(input.Date, input.StartTime)
	if err != nil {
		return CreateScheduleResult{}, fault.New(fault.Validation, err.Error())
	}

	var end time.Time
	if input.EndTime != "" {
		end, err = schedule.CombineDateTime(input.Date, input.EndTime)
		if err != nil {
			return CreateScheduleResult{}, fault.New(fault.Validation, err.Error())
		}
	} else {
		end = start.Add(time.Duration(cls.DurationMin) * time.Minute)
	}
	if !end.After(start) {
		return CreateScheduleResult{}, fault.New(fault.Validation, schedule.ErrEndNotAfterStart.Error())
	}

	// Inherit capacity and room from the class when not given.
	maxParticipants := input.MaxParticipants
	if maxParticipants <= 0 {
		maxParticipants = cls.Capacity
	}
	room := input.Room
	if room == "" {
		room = cls.Room
	}

	if err := checkTrainerConflict(ctx, deps.ScheduleStore, input.TrainerID, input.Date, start, end, ""); err != nil {
		return CreateScheduleResult{}, err
	}

	entity := schedule.Schedule{
		ID:              deps.GenerateID(),
		ClassID:         input.ClassID,
		TrainerID:       input.TrainerID,
		Date:            input.Date,
		StartTime:       start,
		EndTime:         end,
		Room:            room,
		MaxParticipants: maxParticipants,
		Status:          schedule.StatusScheduled,
		Notes:           input.Notes,
	}
	entity.Code = scheduleCode(cls.Name, input.StartTime, entity.ID)

	if err := entity.Validate(); err != nil {
		return CreateScheduleResult{}, fault.New(fault.Validation, err.Error())
	}
	// The guarded save closes the window between the pre-check above and the
	// write: a concurrent create that slipped in first loses here.
	if err := deps.ScheduleStore.SaveIfTrainerFree(ctx, entity); err != nil {
		if errors.Is(err, schedule.ErrTrainerBusy) {
			return CreateScheduleResult{}, fault.Newf(fault.Conflict, "trainer already teaches an overlapping session on %s", input.Date)
		}
		return CreateScheduleResult{}, err
	}

	slog.Info("schedule_event", "event", "schedule_created", "schedule_id", entity.ID, "class_id", input.ClassID, "trainer_id", input.TrainerID, "date", input.Date)

	return CreateScheduleResult{Schedule: entity}, nil
}

// checkTrainerConflict rejects the candidate interval when the trainer
// already teaches an overlapping, non-cancelled session that day. excludeID
// skips the schedule being moved during an update. This pre-check names the
// conflicting interval in its error; the race-free guarantee comes from
// SaveIfTrainerFree at write time.
func checkTrainerConflict(ctx context.Context, store ScheduleStore, trainerID, date string, start, end time.Time, excludeID string) error {
	existing, err := store.ListByTrainerAndDate(ctx, trainerID, date)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == excludeID || other.Status == schedule.StatusCancelled {
			continue
		}
		if other.Overlaps(start, end) {
			return fault.Newf(fault.Conflict, "trainer already teaches %s-%s on %s",
				other.StartTime.Format(schedule.TimeFormat), other.EndTime.Format(schedule.TimeFormat), date)
		}
	}
	return nil
}

// scheduleCode builds the short kiosk code: class prefix, start time digits,
// and an id fragment for uniqueness.
func scheduleCode(className, startTime, id string) string {
	prefix := strings.ToUpper(strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return r
		}
		return -1
	}, className))
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	if prefix == "" {
		prefix = "CLS"
	}
	digits := strings.ReplaceAll(startTime, ":", "")
	frag := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(frag) > 4 {
		frag = frag[:4]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, digits, frag)
}
