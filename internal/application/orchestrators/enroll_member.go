package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/billing"
	"gymdesk/internal/domain/enrollment"
	"gymdesk/internal/domain/fault"
	"gymdesk/internal/domain/member"
	"gymdesk/internal/domain/outbox"
	"gymdesk/internal/domain/schedule"
)

// EnrollMemberStore defines the member store interface needed for enrollment.
type EnrollMemberStore interface {
	GetByAccountID(ctx context.Context, accountID string) (member.Member, error)
	Save(ctx context.Context, value member.Member) error
}

// EnrollScheduleStore defines the schedule store interface needed for enrollment.
type EnrollScheduleStore interface {
	GetByID(ctx context.Context, id string) (schedule.Schedule, error)
	ReserveSlot(ctx context.Context, id string) error
	ReleaseSlot(ctx context.Context, id string) error
}

// EnrollEnrollmentStore defines the enrollment store interface needed for enrollment.
type EnrollEnrollmentStore interface {
	GetByScheduleAndMember(ctx context.Context, scheduleID, memberID string) (enrollment.Enrollment, error)
	ListActiveByMemberOnDate(ctx context.Context, memberID, date string) ([]enrollment.Enrollment, error)
	Save(ctx context.Context, value enrollment.Enrollment) error
}

// EnrollOutboxStore defines the outbox store interface for the invoice event.
type EnrollOutboxStore interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// EnrollMemberInput carries input for the enroll orchestrator. AccountID is
// the identity being enrolled; the HTTP edge has already decided the caller
// may act for it.
type EnrollMemberInput struct {
	AccountID  string
	ScheduleID string
}

// EnrollMemberDeps holds dependencies for EnrollMember.
type EnrollMemberDeps struct {
	AccountStore    AccountLookupStore
	MemberStore     EnrollMemberStore
	ScheduleStore   EnrollScheduleStore
	EnrollmentStore EnrollEnrollmentStore
	ClassStore      ClassLookupStore
	OutboxStore     EnrollOutboxStore
	GenerateID      func() string
	Now             func() time.Time
}

// EnrollMemberResult carries the created enrollment. InvoiceQueued reports
// whether the billing event made it into the outbox; false with a non-free
// class means the enqueue failed and billing needs a manual nudge.
type EnrollMemberResult struct {
	Enrollment    enrollment.Enrollment
	InvoiceQueued bool
	Warning       string
}

// ExecuteEnrollMember admits an identity into a scheduled class. Admission
// checks run in a fixed order so concurrent duplicates and capacity races
// resolve deterministically: schedule open, start in the future, slot
// reservation, duplicate enrollment, same-day overlap. The slot reservation
// is a conditional update, so two racing requests for the last slot get
// exactly one winner; later check failures return the reserved slot.
// PRE: AccountID and ScheduleID are non-empty
// POST: Enrollment persisted with status=enrolled; invoice event queued for
// priced classes
func ExecuteEnrollMember(ctx context.Context, input EnrollMemberInput, deps EnrollMemberDeps) (EnrollMemberResult, error) {
	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return EnrollMemberResult{}, fault.New(fault.NotFound, "account not found")
	}
	if !acct.CanEnroll() {
		return EnrollMemberResult{}, fault.New(fault.Authorization, "only members can enroll in classes")
	}

	m, err := provisionMember(ctx, deps.MemberStore, acct)
	if err != nil {
		return EnrollMemberResult{}, err
	}

	sched, err := deps.ScheduleStore.GetByID(ctx, input.ScheduleID)
	if err != nil {
		return EnrollMemberResult{}, fault.New(fault.NotFound, "schedule not found")
	}
	if !sched.IsOpen() {
		return EnrollMemberResult{}, fault.Newf(fault.State, "schedule is %s", sched.Status)
	}

	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}
	if !now.Before(sched.StartTime) {
		return EnrollMemberResult{}, fault.New(fault.State, "schedule has already started")
	}

	// Claim the slot before the remaining checks; give it back on failure.
	if err := deps.ScheduleStore.ReserveSlot(ctx, input.ScheduleID); err != nil {
		return EnrollMemberResult{}, fault.New(fault.Capacity, "class is full")
	}
	release := func() {
		if err := deps.ScheduleStore.ReleaseSlot(ctx, input.ScheduleID); err != nil {
			slog.Warn("enrollment_event", "event", "slot_release_failed", "schedule_id", input.ScheduleID, "error", err)
		}
	}

	existing, err := deps.EnrollmentStore.GetByScheduleAndMember(ctx, input.ScheduleID, m.ID)
	if err != nil && !errors.Is(err, enrollment.ErrNotFound) {
		// A failing read must not be mistaken for absence.
		release()
		return EnrollMemberResult{}, err
	}
	if err == nil && existing.IsActive() {
		release()
		return EnrollMemberResult{}, fault.New(fault.Conflict, "member is already enrolled in this class")
	}

	sameDay, err := deps.EnrollmentStore.ListActiveByMemberOnDate(ctx, m.ID, sched.Date)
	if err != nil {
		release()
		return EnrollMemberResult{}, err
	}
	for _, other := range sameDay {
		otherSched, err := deps.ScheduleStore.GetByID(ctx, other.ScheduleID)
		if err != nil {
			if errors.Is(err, schedule.ErrNotFound) {
				continue
			}
			release()
			return EnrollMemberResult{}, err
		}
		if otherSched.Status == schedule.StatusCancelled {
			continue
		}
		if otherSched.Overlaps(sched.StartTime, sched.EndTime) {
			release()
			return EnrollMemberResult{}, fault.Newf(fault.Conflict, "member already has a class %s-%s that day",
				otherSched.StartTime.Format(schedule.TimeFormat), otherSched.EndTime.Format(schedule.TimeFormat))
		}
	}

	e := enrollment.Enrollment{
		ID:         deps.GenerateID(),
		ScheduleID: input.ScheduleID,
		MemberID:   m.ID,
		Status:     enrollment.StatusEnrolled,
		EnrolledAt: now,
	}
	if err := e.Validate(); err != nil {
		release()
		return EnrollMemberResult{}, fault.New(fault.Validation, err.Error())
	}
	if err := deps.EnrollmentStore.Save(ctx, e); err != nil {
		release()
		return EnrollMemberResult{}, err
	}

	slog.Info("enrollment_event", "event", "member_enrolled", "enrollment_id", e.ID, "member_id", m.ID, "schedule_id", input.ScheduleID)

	result := EnrollMemberResult{Enrollment: e}
	result.InvoiceQueued, result.Warning = queueInvoice(ctx, deps, e, m, sched, now)
	return result, nil
}

// provisionMember returns the Member record for an account, creating one on
// first contact. The code derivation is deterministic, so retried
// provisioning converges on the same record.
func provisionMember(ctx context.Context, store EnrollMemberStore, acct account.Account) (member.Member, error) {
	m, err := store.GetByAccountID(ctx, acct.ID)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, member.ErrNotFound) {
		return member.Member{}, err
	}
	m = member.Member{
		ID:        acct.ID,
		AccountID: acct.ID,
		Code:      member.CodeFromAccountID(acct.ID),
		Name:      acct.Name,
		Email:     acct.Email,
		Status:    member.StatusActive,
	}
	if err := m.Validate(); err != nil {
		return member.Member{}, fault.New(fault.Validation, err.Error())
	}
	if err := store.Save(ctx, m); err != nil {
		return member.Member{}, err
	}
	slog.Info("member_event", "event", "member_provisioned", "member_id", m.ID, "code", m.Code)
	return m, nil
}

// queueInvoice enqueues the post-commit billing event for priced classes.
// Failure to enqueue never rolls back the enrollment; the caller gets a
// warning instead.
func queueInvoice(ctx context.Context, deps EnrollMemberDeps, e enrollment.Enrollment, m member.Member, sched schedule.Schedule, now time.Time) (bool, string) {
	if deps.OutboxStore == nil || deps.ClassStore == nil {
		return false, ""
	}
	cls, err := deps.ClassStore.GetByID(ctx, sched.ClassID)
	if err != nil || cls.IsFree() {
		return false, ""
	}

	req := billing.InvoiceRequest{
		EnrollmentID: e.ID,
		MemberID:     m.ID,
		ClassID:      cls.ID,
		ClassName:    cls.Name,
		SessionCount: 1,
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return false, "invoice could not be queued"
	}

	entry := outbox.Entry{
		ID:          deps.GenerateID(),
		ActionType:  outbox.ActionTypeInvoice,
		Payload:     string(payload),
		Status:      outbox.StatusPending,
		MaxAttempts: 5,
		CreatedAt:   now,
	}
	if err := deps.OutboxStore.Save(ctx, entry); err != nil {
		slog.Warn("enrollment_event", "event", "invoice_enqueue_failed", "enrollment_id", e.ID, "error", err)
		return false, "enrollment confirmed but invoice could not be queued"
	}
	return true, ""
}
