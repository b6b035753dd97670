package orchestrators

import (
	"context"
	"testing"

	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/fault"
	"gymdesk/internal/domain/schedule"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func updateScheduleFixtures() (UpdateScheduleDeps, *mockScheduleStore) {
	accounts := newMockAccountStore()
	accounts.accounts["trainer-1"] = account.Account{ID: "trainer-1", Email: "t1@example.com", Role: account.RoleTrainer}
	accounts.accounts["trainer-2"] = account.Account{ID: "trainer-2", Email: "t2@example.com", Role: account.RoleTrainer}
	accounts.accounts["member-1"] = account.Account{ID: "member-1", Email: "m@example.com", Role: account.RoleMember}

	schedules := newMockScheduleStore()
	schedules.schedules["sch-1"] = mustSchedule("sch-1", "trainer-1", "2024-01-10", "09:00", "10:00", 10)

	return UpdateScheduleDeps{ScheduleStore: schedules, AccountStore: accounts}, schedules
}

// TestExecuteUpdateSchedule_MoveTime tests a timing change with conflict recheck.
func TestExecuteUpdateSchedule_MoveTime(t *testing.T) {
	deps, schedules := updateScheduleFixtures()

	result, err := ExecuteUpdateSchedule(context.Background(), UpdateScheduleInput{
		ScheduleID: "sch-1",
		StartTime:  strPtr("10:00"),
		EndTime:    strPtr("11:00"),
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Schedule.StartTime.Hour() != 10 {
		t.Errorf("expected start moved to 10:00, got %v", result.Schedule.StartTime)
	}
	if schedules.schedules["sch-1"].StartTime.Hour() != 10 {
		t.Error("expected change persisted")
	}
}

// TestExecuteUpdateSchedule_SelfNoConflict tests that a schedule does not
// conflict with its own old slot.
func TestExecuteUpdateSchedule_SelfNoConflict(t *testing.T) {
	deps, _ := updateScheduleFixtures()

	_, err := ExecuteUpdateSchedule(context.Background(), UpdateScheduleInput{
		ScheduleID: "sch-1",
		StartTime:  strPtr("09:30"),
		EndTime:    strPtr("10:30"),
	}, deps)
	if err != nil {
		t.Errorf("overlap with itself must not conflict: %v", err)
	}
}

// TestExecuteUpdateSchedule_MoveIntoConflict tests moving onto another session.
func TestExecuteUpdateSchedule_MoveIntoConflict(t *testing.T) {
	deps, schedules := updateScheduleFixtures()
	schedules.schedules["sch-2"] = mustSchedule("sch-2", "trainer-1", "2024-01-10", "11:00", "12:00", 10)

	_, err := ExecuteUpdateSchedule(context.Background(), UpdateScheduleInput{
		ScheduleID: "sch-1",
		StartTime:  strPtr("11:30"),
		EndTime:    strPtr("12:30"),
	}, deps)
	if !fault.IsKind(err, fault.Conflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

// TestExecuteUpdateSchedule_Reassign tests handing the session to another trainer.
func TestExecuteUpdateSchedule_Reassign(t *testing.T) {
	deps, _ := updateScheduleFixtures()

	result, err := ExecuteUpdateSchedule(context.Background(), UpdateScheduleInput{
		ScheduleID: "sch-1",
		TrainerID:  strPtr("trainer-2"),
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Schedule.TrainerID != "trainer-2" {
		t.Errorf("expected reassigned trainer, got %s", result.Schedule.TrainerID)
	}
}

// TestExecuteUpdateSchedule_ReassignToMember tests the teaching role guard.
func TestExecuteUpdateSchedule_ReassignToMember(t *testing.T) {
	deps, _ := updateScheduleFixtures()

	_, err := ExecuteUpdateSchedule(context.Background(), UpdateScheduleInput{
		ScheduleID: "sch-1",
		TrainerID:  strPtr("member-1"),
	}, deps)
	if !fault.IsKind(err, fault.Authorization) {
		t.Errorf("expected authorization error, got %v", err)
	}
}

// TestExecuteUpdateSchedule_ShrinkBelowHeadcount tests the capacity floor.
func TestExecuteUpdateSchedule_ShrinkBelowHeadcount(t *testing.T) {
	deps, schedules := updateScheduleFixtures()
	s := schedules.schedules["sch-1"]
	s.CurrentParticipants = 5
	schedules.schedules["sch-1"] = s

	_, err := ExecuteUpdateSchedule(context.Background(), UpdateScheduleInput{
		ScheduleID:      "sch-1",
		MaxParticipants: intPtr(4),
	}, deps)
	if !fault.IsKind(err, fault.Capacity) {
		t.Errorf("expected capacity error, got %v", err)
	}

	// Shrinking to exactly the headcount is allowed.
	if _, err := ExecuteUpdateSchedule(context.Background(), UpdateScheduleInput{
		ScheduleID:      "sch-1",
		MaxParticipants: intPtr(5),
	}, deps); err != nil {
		t.Errorf("shrink to headcount should succeed: %v", err)
	}
}

// TestExecuteUpdateSchedule_ImmutableStates tests completed and cancelled sessions.
func TestExecuteUpdateSchedule_ImmutableStates(t *testing.T) {
	for _, status := range []string{schedule.StatusCompleted, schedule.StatusCancelled} {
		deps, schedules := updateScheduleFixtures()
		s := schedules.schedules["sch-1"]
		s.Status = status
		schedules.schedules["sch-1"] = s

		_, err := ExecuteUpdateSchedule(context.Background(), UpdateScheduleInput{
			ScheduleID: "sch-1",
			Notes:      strPtr("moved rooms"),
		}, deps)
		if !fault.IsKind(err, fault.State) {
			t.Errorf("status %s: expected state error, got %v", status, err)
		}
	}
}

// TestExecuteCompleteSchedule tests completion after the end time.
func TestExecuteCompleteSchedule(t *testing.T) {
	deps, schedules := updateScheduleFixtures()
	completeDeps := CompleteScheduleDeps{ScheduleStore: deps.ScheduleStore, Now: nowAt("2024-01-10 10:01")}

	if err := ExecuteCompleteSchedule(context.Background(), CompleteScheduleInput{ScheduleID: "sch-1"}, completeDeps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if schedules.schedules["sch-1"].Status != schedule.StatusCompleted {
		t.Error("expected schedule completed")
	}
}

// TestExecuteCompleteSchedule_TooEarly tests completing a running session.
func TestExecuteCompleteSchedule_TooEarly(t *testing.T) {
	deps, _ := updateScheduleFixtures()
	completeDeps := CompleteScheduleDeps{ScheduleStore: deps.ScheduleStore, Now: nowAt("2024-01-10 09:30")}

	err := ExecuteCompleteSchedule(context.Background(), CompleteScheduleInput{ScheduleID: "sch-1"}, completeDeps)
	if !fault.IsKind(err, fault.Policy) {
		t.Errorf("expected policy error before end time, got %v", err)
	}
}
