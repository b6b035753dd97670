package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gymdesk/internal/domain/enrollment"
	"gymdesk/internal/domain/fault"
	"gymdesk/internal/domain/member"
)

// CancelCutoff is how close to the start a member may still cancel.
// Trainers and admins are not bound by it.
const CancelCutoff = 2 * time.Hour

// CancelEnrollmentStore defines the enrollment store interface for cancellation.
type CancelEnrollmentStore interface {
	GetByID(ctx context.Context, id string) (enrollment.Enrollment, error)
	Save(ctx context.Context, value enrollment.Enrollment) error
}

// CancelMemberLookupStore resolves the member record owned by an account.
type CancelMemberLookupStore interface {
	GetByAccountID(ctx context.Context, accountID string) (member.Member, error)
}

// CancelEnrollmentInput carries input for the cancel-enrollment orchestrator.
// ActorAccountID identifies who is cancelling; ownership and role decide
// whether the cutoff applies.
type CancelEnrollmentInput struct {
	EnrollmentID   string
	ActorAccountID string
}

// CancelEnrollmentDeps holds dependencies for CancelEnrollment.
type CancelEnrollmentDeps struct {
	EnrollmentStore CancelEnrollmentStore
	ScheduleStore   EnrollScheduleStore
	AccountStore    AccountLookupStore
	MemberStore     CancelMemberLookupStore
	Now             func() time.Time
}

// ExecuteCancelEnrollment releases a member's place in a class. Members may
// only cancel their own enrollment and only up to the cutoff before the
// start; trainers and admins may cancel anyone at any time. The reserved
// capacity slot is returned on success.
// PRE: EnrollmentID and ActorAccountID are non-empty
// POST: Enrollment status is cancelled, participant counter decremented
func ExecuteCancelEnrollment(ctx context.Context, input CancelEnrollmentInput, deps CancelEnrollmentDeps) error {
	e, err := deps.EnrollmentStore.GetByID(ctx, input.EnrollmentID)
	if err != nil {
		return fault.New(fault.NotFound, "enrollment not found")
	}

	actor, err := deps.AccountStore.GetByID(ctx, input.ActorAccountID)
	if err != nil {
		return fault.New(fault.NotFound, "account not found")
	}
	privileged := actor.IsStaff()
	if !privileged {
		m, err := deps.MemberStore.GetByAccountID(ctx, input.ActorAccountID)
		if err != nil || m.ID != e.MemberID {
			return fault.New(fault.Authorization, "members may only cancel their own enrollment")
		}
	}

	sched, err := deps.ScheduleStore.GetByID(ctx, e.ScheduleID)
	if err != nil {
		return fault.New(fault.NotFound, "schedule not found")
	}

	if !privileged {
		now := time.Now()
		if deps.Now != nil {
			now = deps.Now()
		}
		if sched.StartTime.Sub(now) < CancelCutoff {
			return fault.Newf(fault.Policy, "cancellation closes %s before the class starts", CancelCutoff)
		}
	}

	if err := e.Cancel(); err != nil {
		if errors.Is(err, enrollment.ErrAlreadyCancelled) {
			return fault.New(fault.State, "enrollment is already cancelled")
		}
		return fault.New(fault.State, err.Error())
	}
	if err := deps.EnrollmentStore.Save(ctx, e); err != nil {
		return err
	}

	if err := deps.ScheduleStore.ReleaseSlot(ctx, e.ScheduleID); err != nil {
		// The enrollment is already cancelled; an unreleased slot only
		// under-fills the class, so log and move on.
		slog.Warn("enrollment_event", "event", "slot_release_failed", "schedule_id", e.ScheduleID, "enrollment_id", e.ID, "error", err)
	}

	slog.Info("enrollment_event", "event", "enrollment_cancelled", "enrollment_id", e.ID, "member_id", e.MemberID, "actor", input.ActorAccountID, "privileged", privileged)
	return nil
}
