package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gymdesk/internal/domain/fault"
	"gymdesk/internal/domain/schedule"
)

// UpdateScheduleInput carries the partial update for a schedule. Nil pointers
// leave the corresponding field untouched.
type UpdateScheduleInput struct {
	ScheduleID      string
	TrainerID       *string
	Date            *string // YYYY-MM-DD
	StartTime       *string // HH:MM
	EndTime         *string // HH:MM
	Room            *string
	MaxParticipants *int
	Notes           *string
}

// UpdateScheduleDeps holds dependencies for UpdateSchedule.
type UpdateScheduleDeps struct {
	ScheduleStore ScheduleStore
	AccountStore  AccountLookupStore
}

// UpdateScheduleResult carries the updated schedule.
type UpdateScheduleResult struct {
	Schedule schedule.Schedule
}

// ExecuteUpdateSchedule applies a partial update to a schedule. Completed
// schedules are immutable, cancelled ones too. Moving the session in time or
// handing it to another trainer re-runs conflict detection; shrinking
// capacity below the current headcount is rejected.
// PRE: ScheduleID refers to an existing schedule
// POST: Schedule persisted with the merged fields
func ExecuteUpdateSchedule(ctx context.Context, input UpdateScheduleInput, deps UpdateScheduleDeps) (UpdateScheduleResult, error) {
	entity, err := deps.ScheduleStore.GetByID(ctx, input.ScheduleID)
	if err != nil {
		return UpdateScheduleResult{}, fault.New(fault.NotFound, "schedule not found")
	}
	if entity.IsCompleted() {
		return UpdateScheduleResult{}, fault.New(fault.State, "completed schedules cannot be changed")
	}
	if entity.Status == schedule.StatusCancelled {
		return UpdateScheduleResult{}, fault.New(fault.State, "cancelled schedules cannot be changed")
	}

	timingChanged := false

	if input.TrainerID != nil && *input.TrainerID != entity.TrainerID {
		trainer, err := deps.AccountStore.GetByID(ctx, *input.TrainerID)
		if err != nil {
			return UpdateScheduleResult{}, fault.New(fault.NotFound, "trainer not found")
		}
		if !trainer.CanTeach() {
			return UpdateScheduleResult{}, fault.New(fault.Authorization, "account cannot be assigned as a trainer")
		}
		entity.TrainerID = *input.TrainerID
		timingChanged = true
	}

	date := entity.Date
	startClock := entity.StartTime.Format(schedule.TimeFormat)
	endClock := entity.EndTime.Format(schedule.TimeFormat)
	if input.Date != nil {
		date = *input.Date
		timingChanged = true
	}
	if input.StartTime != nil {
		startClock = *input.StartTime
		timingChanged = true
	}
	if input.EndTime != nil {
		endClock = *input.EndTime
		timingChanged = true
	}
	if timingChanged {
		start, err := schedule.CombineDateTime(date, startClock)
		if err != nil {
			return UpdateScheduleResult{}, fault.New(fault.Validation, err.Error())
		}
		end, err := schedule.CombineDateTime(date, endClock)
		if err != nil {
			return UpdateScheduleResult{}, fault.New(fault.Validation, err.Error())
		}
		if !end.After(start) {
			return UpdateScheduleResult{}, fault.New(fault.Validation, schedule.ErrEndNotAfterStart.Error())
		}
		entity.Date = date
		entity.StartTime = start
		entity.EndTime = end

		if err := checkTrainerConflict(ctx, deps.ScheduleStore, entity.TrainerID, date, start, end, entity.ID); err != nil {
			return UpdateScheduleResult{}, err
		}
	}

	if input.Room != nil {
		entity.Room = *input.Room
	}
	if input.Notes != nil {
		entity.Notes = *input.Notes
	}
	if input.MaxParticipants != nil {
		if *input.MaxParticipants < entity.CurrentParticipants {
			return UpdateScheduleResult{}, fault.Newf(fault.Capacity, "capacity %d is below current headcount %d",
				*input.MaxParticipants, entity.CurrentParticipants)
		}
		entity.MaxParticipants = *input.MaxParticipants
	}

	if err := entity.Validate(); err != nil {
		return UpdateScheduleResult{}, fault.New(fault.Validation, err.Error())
	}
	if timingChanged {
		// Guarded save: a concurrent move into the same interval loses at
		// the write, even when both passed the pre-check.
		if err := deps.ScheduleStore.SaveIfTrainerFree(ctx, entity); err != nil {
			if errors.Is(err, schedule.ErrTrainerBusy) {
				return UpdateScheduleResult{}, fault.Newf(fault.Conflict, "trainer already teaches an overlapping session on %s", entity.Date)
			}
			return UpdateScheduleResult{}, err
		}
	} else if err := deps.ScheduleStore.Save(ctx, entity); err != nil {
		return UpdateScheduleResult{}, err
	}

	slog.Info("schedule_event", "event", "schedule_updated", "schedule_id", entity.ID, "timing_changed", timingChanged)

	return UpdateScheduleResult{Schedule: entity}, nil
}

// CompleteScheduleInput carries input for marking a schedule completed.
type CompleteScheduleInput struct {
	ScheduleID string
}

// CompleteScheduleDeps holds dependencies for CompleteSchedule.
type CompleteScheduleDeps struct {
	ScheduleStore ScheduleStore
	Now           func() time.Time
}

// ExecuteCompleteSchedule marks a schedule as completed after its end time.
// PRE: schedule exists and is in scheduled status
// POST: Status is completed; the schedule is immutable afterwards
func ExecuteCompleteSchedule(ctx context.Context, input CompleteScheduleInput, deps CompleteScheduleDeps) error {
	entity, err := deps.ScheduleStore.GetByID(ctx, input.ScheduleID)
	if err != nil {
		return fault.New(fault.NotFound, "schedule not found")
	}
	if entity.Status != schedule.StatusScheduled {
		return fault.Newf(fault.State, "schedule is %s", entity.Status)
	}

	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}
	if now.Before(entity.EndTime) {
		return fault.New(fault.Policy, "schedule has not ended yet")
	}

	entity.Status = schedule.StatusCompleted
	if err := deps.ScheduleStore.Save(ctx, entity); err != nil {
		return err
	}

	slog.Info("schedule_event", "event", "schedule_completed", "schedule_id", entity.ID)
	return nil
}
