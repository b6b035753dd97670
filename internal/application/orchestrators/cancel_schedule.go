package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"gymdesk/internal/domain/enrollment"
	"gymdesk/internal/domain/fault"
	"gymdesk/internal/domain/schedule"
)

// CancelScheduleEnrollmentStore defines the enrollment store interface for the cascade.
type CancelScheduleEnrollmentStore interface {
	ListBySchedule(ctx context.Context, scheduleID string) ([]enrollment.Enrollment, error)
	Save(ctx context.Context, value enrollment.Enrollment) error
}

// CancelScheduleInput carries input for the cancel-schedule orchestrator.
type CancelScheduleInput struct {
	ScheduleID string
	Reason     string
}

// CancelScheduleDeps holds dependencies for CancelSchedule.
type CancelScheduleDeps struct {
	ScheduleStore   ScheduleStore
	EnrollmentStore CancelScheduleEnrollmentStore
}

// CancelScheduleResult reports what the cascade touched.
type CancelScheduleResult struct {
	CancelledEnrollments int
	FailedEnrollments    int
}

// ExecuteCancelSchedule cancels a schedule and cascades the cancellation to
// every live enrollment. The cascade runs first: enrollments that are already
// cancelled are skipped, and a save failure on one enrollment does not stop
// the others. The schedule itself is only marked cancelled once the whole
// cascade succeeded, so a partial failure leaves it retryable; the retry
// converges because cancelled enrollments are no-ops.
// PRE: ScheduleID refers to an existing schedule
// POST: On success the schedule and all its enrollments are cancelled
func ExecuteCancelSchedule(ctx context.Context, input CancelScheduleInput, deps CancelScheduleDeps) (CancelScheduleResult, error) {
	entity, err := deps.ScheduleStore.GetByID(ctx, input.ScheduleID)
	if err != nil {
		return CancelScheduleResult{}, fault.New(fault.NotFound, "schedule not found")
	}

	if err := entity.Cancel(); err != nil {
		if errors.Is(err, schedule.ErrAlreadyCancelled) {
			// Re-cancelling is a no-op so a retried request converges.
			return CancelScheduleResult{}, nil
		}
		return CancelScheduleResult{}, fault.New(fault.State, err.Error())
	}

	enrollments, err := deps.EnrollmentStore.ListBySchedule(ctx, input.ScheduleID)
	if err != nil {
		return CancelScheduleResult{}, err
	}

	result := CancelScheduleResult{}
	for _, e := range enrollments {
		if err := e.Cancel(); err != nil {
			continue // already cancelled
		}
		if err := deps.EnrollmentStore.Save(ctx, e); err != nil {
			slog.Warn("schedule_event", "event", "cascade_cancel_failed", "schedule_id", input.ScheduleID, "enrollment_id", e.ID, "error", err)
			result.FailedEnrollments++
			continue
		}
		result.CancelledEnrollments++
	}

	if result.FailedEnrollments > 0 {
		// Leave the schedule live so the caller can retry the cascade.
		return result, fault.Newf(fault.Conflict, "%d of %d enrollments could not be cancelled",
			result.FailedEnrollments, result.FailedEnrollments+result.CancelledEnrollments)
	}

	if err := deps.ScheduleStore.Save(ctx, entity); err != nil {
		return result, err
	}

	slog.Info("schedule_event", "event", "schedule_cancelled", "schedule_id", input.ScheduleID,
		"reason", input.Reason, "cancelled_enrollments", result.CancelledEnrollments)

	return result, nil
}
