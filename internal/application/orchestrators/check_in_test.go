package orchestrators

import (
	"context"
	"errors"
	"testing"

	"gymdesk/internal/domain/enrollment"
	"gymdesk/internal/domain/fault"
)

type checkInFixtures struct {
	deps        CheckInDeps
	schedules   *mockScheduleStore
	enrollments *mockEnrollmentStore
}

func newCheckInFixtures() checkInFixtures {
	schedules := newMockScheduleStore()
	schedules.schedules["sch-1"] = mustSchedule("sch-1", "trainer-1", "2024-01-10", "09:00", "10:00", 10)

	enrollments := newMockEnrollmentStore()
	enrollments.scheduleDates = map[string]string{"sch-1": "2024-01-10"}
	enrollments.enrollments["e-1"] = enrollment.Enrollment{ID: "e-1", ScheduleID: "sch-1", MemberID: "mem-1", Status: enrollment.StatusEnrolled}

	return checkInFixtures{
		deps: CheckInDeps{
			EnrollmentStore: enrollments,
			ScheduleStore:   schedules,
			Now:             nowAt("2024-01-10 09:00"),
		},
		schedules:   schedules,
		enrollments: enrollments,
	}
}

// TestExecuteCheckIn_AtStart tests check-in exactly at the start time.
func TestExecuteCheckIn_AtStart(t *testing.T) {
	f := newCheckInFixtures()

	if err := ExecuteCheckIn(context.Background(), CheckInInput{EnrollmentID: "e-1"}, f.deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := f.enrollments.enrollments["e-1"]
	if e.Status != enrollment.StatusAttended {
		t.Errorf("expected attended, got %s", e.Status)
	}
	if e.CheckinTime.IsZero() {
		t.Error("expected check-in time recorded")
	}
}

// TestExecuteCheckIn_WindowEdges tests the 15-minute window boundaries.
func TestExecuteCheckIn_WindowEdges(t *testing.T) {
	tests := []struct {
		name    string
		now     string
		wantErr bool
	}{
		{"20 min early", "2024-01-10 08:40", true},
		{"exactly 15 min early", "2024-01-10 08:45", false},
		{"exactly 15 min late", "2024-01-10 09:15", false},
		{"16 min late", "2024-01-10 09:16", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckInFixtures()
			f.deps.Now = nowAt(tt.now)
			err := ExecuteCheckIn(context.Background(), CheckInInput{EnrollmentID: "e-1"}, f.deps)
			if tt.wantErr {
				if !fault.IsKind(err, fault.Policy) {
					t.Errorf("expected policy error, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// TestExecuteCheckIn_BypassWindow tests the staff override.
func TestExecuteCheckIn_BypassWindow(t *testing.T) {
	f := newCheckInFixtures()
	f.deps.Now = nowAt("2024-01-10 08:00")

	if err := ExecuteCheckIn(context.Background(), CheckInInput{EnrollmentID: "e-1", Bypass: true}, f.deps); err != nil {
		t.Errorf("bypass should skip the window: %v", err)
	}
}

// TestExecuteCheckIn_BypassCannotSkipState tests that bypass never overrides
// the state machine.
func TestExecuteCheckIn_BypassCannotSkipState(t *testing.T) {
	f := newCheckInFixtures()
	e := f.enrollments.enrollments["e-1"]
	e.Status = enrollment.StatusCancelled
	f.enrollments.enrollments["e-1"] = e

	err := ExecuteCheckIn(context.Background(), CheckInInput{EnrollmentID: "e-1", Bypass: true}, f.deps)
	if !fault.IsKind(err, fault.State) {
		t.Errorf("expected state error, got %v", err)
	}
}

// TestExecuteCheckIn_CrossScheduleConflict tests that a member still checked
// in to an overlapping class is rejected.
func TestExecuteCheckIn_CrossScheduleConflict(t *testing.T) {
	f := newCheckInFixtures()
	f.schedules.schedules["sch-2"] = mustSchedule("sch-2", "trainer-2", "2024-01-10", "08:30", "09:30", 10)
	f.enrollments.scheduleDates["sch-2"] = "2024-01-10"
	f.enrollments.enrollments["e-2"] = enrollment.Enrollment{
		ID: "e-2", ScheduleID: "sch-2", MemberID: "mem-1",
		Status: enrollment.StatusAttended, CheckinTime: nowAt("2024-01-10 08:30")(),
	}

	err := ExecuteCheckIn(context.Background(), CheckInInput{EnrollmentID: "e-1"}, f.deps)
	if !fault.IsKind(err, fault.Conflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

// TestExecuteCheckIn_AfterCheckoutNoConflict tests that checking out of the
// earlier class clears the conflict.
func TestExecuteCheckIn_AfterCheckoutNoConflict(t *testing.T) {
	f := newCheckInFixtures()
	f.schedules.schedules["sch-2"] = mustSchedule("sch-2", "trainer-2", "2024-01-10", "08:30", "09:30", 10)
	f.enrollments.scheduleDates["sch-2"] = "2024-01-10"
	f.enrollments.enrollments["e-2"] = enrollment.Enrollment{
		ID: "e-2", ScheduleID: "sch-2", MemberID: "mem-1",
		Status:      enrollment.StatusAttended,
		CheckinTime: nowAt("2024-01-10 08:30")(), CheckoutTime: nowAt("2024-01-10 08:55")(),
	}

	if err := ExecuteCheckIn(context.Background(), CheckInInput{EnrollmentID: "e-1"}, f.deps); err != nil {
		t.Errorf("checked-out session should not conflict: %v", err)
	}
}

// TestExecuteCheckOut_Valid tests the attended -> checked-out transition.
func TestExecuteCheckOut_Valid(t *testing.T) {
	f := newCheckInFixtures()
	if err := ExecuteCheckIn(context.Background(), CheckInInput{EnrollmentID: "e-1"}, f.deps); err != nil {
		t.Fatalf("check-in failed: %v", err)
	}

	outDeps := CheckOutDeps{EnrollmentStore: f.enrollments, Now: nowAt("2024-01-10 10:00")}
	if err := ExecuteCheckOut(context.Background(), CheckOutInput{EnrollmentID: "e-1"}, outDeps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := f.enrollments.enrollments["e-1"]
	if !e.IsCheckedOut() {
		t.Error("expected checked out")
	}
	if e.Duration().Minutes() != 60 {
		t.Errorf("expected 60 minute session, got %v", e.Duration())
	}
}

// TestExecuteCheckOut_WithoutCheckIn tests check-out from the enrolled state.
func TestExecuteCheckOut_WithoutCheckIn(t *testing.T) {
	f := newCheckInFixtures()
	outDeps := CheckOutDeps{EnrollmentStore: f.enrollments, Now: nowAt("2024-01-10 10:00")}

	err := ExecuteCheckOut(context.Background(), CheckOutInput{EnrollmentID: "e-1"}, outDeps)
	if !fault.IsKind(err, fault.State) {
		t.Errorf("expected state error, got %v", err)
	}
}

// TestExecuteCheckOut_Twice tests double check-out.
func TestExecuteCheckOut_Twice(t *testing.T) {
	f := newCheckInFixtures()
	if err := ExecuteCheckIn(context.Background(), CheckInInput{EnrollmentID: "e-1"}, f.deps); err != nil {
		t.Fatalf("check-in failed: %v", err)
	}
	outDeps := CheckOutDeps{EnrollmentStore: f.enrollments, Now: nowAt("2024-01-10 10:00")}
	if err := ExecuteCheckOut(context.Background(), CheckOutInput{EnrollmentID: "e-1"}, outDeps); err != nil {
		t.Fatalf("first check-out failed: %v", err)
	}

	err := ExecuteCheckOut(context.Background(), CheckOutInput{EnrollmentID: "e-1"}, outDeps)
	if !fault.IsKind(err, fault.State) {
		t.Errorf("expected state error on second check-out, got %v", err)
	}
}

// TestExecuteCheckIn_ConflictLookupError tests that a failing schedule read
// during the cross-schedule scan fails the check-in instead of waving it
// through.
func TestExecuteCheckIn_ConflictLookupError(t *testing.T) {
	f := newCheckInFixtures()
	f.enrollments.scheduleDates["sch-2"] = "2024-01-10"
	f.enrollments.enrollments["e-2"] = enrollment.Enrollment{
		ID: "e-2", ScheduleID: "sch-2", MemberID: "mem-1",
		Status: enrollment.StatusAttended, CheckinTime: nowAt("2024-01-10 08:30")(),
	}
	f.schedules.getErrs = map[string]error{"sch-2": errors.New("disk I/O error")}

	err := ExecuteCheckIn(context.Background(), CheckInInput{EnrollmentID: "e-1"}, f.deps)
	if err == nil {
		t.Fatal("expected the store error to surface")
	}
	if fault.KindOf(err) != "" {
		t.Errorf("store failure must not be classified, got kind %q", fault.KindOf(err))
	}
	if f.enrollments.enrollments["e-1"].Status != enrollment.StatusEnrolled {
		t.Error("enrollment must stay enrolled when the conflict scan cannot run")
	}
}
