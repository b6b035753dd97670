package schedule_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"

	_ "modernc.org/sqlite"

	"gymdesk/internal/adapters/storage"
	store "gymdesk/internal/adapters/storage/schedule"
	domain "gymdesk/internal/domain/schedule"
)

func openStoreTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	// Satisfy foreign keys for schedule rows.
	mustExec(t, db, `INSERT INTO account (id, email, role, created_at) VALUES ('trainer-1', 't@example.com', 'trainer', '2024-01-01T00:00:00Z')`)
	mustExec(t, db, `INSERT INTO class_type (id, name, duration_min, default_capacity, difficulty) VALUES ('ct-1', 'Spin', 60, 20, 'beginner')`)
	mustExec(t, db, `INSERT INTO class (id, class_type_id, name, duration_min, capacity) VALUES ('cls-1', 'ct-1', 'Morning Spin', 60, 20)`)
	return db
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %s: %v", query, err)
	}
}

func testSchedule(id, code string, maxParticipants int) domain.Schedule {
	start, _ := domain.CombineDateTime("2024-01-10", "09:00")
	end, _ := domain.CombineDateTime("2024-01-10", "10:00")
	return domain.Schedule{
		ID:              id,
		Code:            code,
		ClassID:         "cls-1",
		TrainerID:       "trainer-1",
		Date:            "2024-01-10",
		StartTime:       start,
		EndTime:         end,
		MaxParticipants: maxParticipants,
		Status:          domain.StatusScheduled,
	}
}

// TestSQLiteStore_SaveAndGet tests round-tripping a schedule.
func TestSQLiteStore_SaveAndGet(t *testing.T) {
	db := openStoreTestDB(t)
	s := store.NewSQLiteStore(db)
	ctx := context.Background()

	entity := testSchedule("sch-1", "SPIN-0910", 20)
	entity.Room = "Studio A"
	entity.Notes = "bring a towel"
	if err := s.Save(ctx, entity); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.GetByID(ctx, "sch-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Code != "SPIN-0910" || got.Room != "Studio A" || got.Notes != "bring a towel" {
		t.Errorf("unexpected fields: %+v", got)
	}
	if !got.StartTime.Equal(entity.StartTime) || !got.EndTime.Equal(entity.EndTime) {
		t.Errorf("timestamps did not survive round trip: %v / %v", got.StartTime, got.EndTime)
	}

	byCode, err := s.GetByCode(ctx, "SPIN-0910")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if byCode.ID != "sch-1" {
		t.Errorf("GetByCode returned %s, want sch-1", byCode.ID)
	}
}

// TestSQLiteStore_ListByTrainerAndDate tests the conflict-detection query.
func TestSQLiteStore_ListByTrainerAndDate(t *testing.T) {
	db := openStoreTestDB(t)
	s := store.NewSQLiteStore(db)
	ctx := context.Background()

	a := testSchedule("sch-1", "A", 20)
	b := testSchedule("sch-2", "B", 20)
	b.Date = "2024-01-11"
	start, _ := domain.CombineDateTime("2024-01-11", "09:00")
	end, _ := domain.CombineDateTime("2024-01-11", "10:00")
	b.StartTime, b.EndTime = start, end
	for _, e := range []domain.Schedule{a, b} {
		if err := s.Save(ctx, e); err != nil {
			t.Fatalf("Save %s: %v", e.ID, err)
		}
	}

	got, err := s.ListByTrainerAndDate(ctx, "trainer-1", "2024-01-10")
	if err != nil {
		t.Fatalf("ListByTrainerAndDate: %v", err)
	}
	if len(got) != 1 || got[0].ID != "sch-1" {
		t.Errorf("expected only sch-1 on 2024-01-10, got %+v", got)
	}
}

// TestSQLiteStore_ReserveSlot tests the conditional-update capacity guard.
func TestSQLiteStore_ReserveSlot(t *testing.T) {
	db := openStoreTestDB(t)
	s := store.NewSQLiteStore(db)
	ctx := context.Background()

	if err := s.Save(ctx, testSchedule("sch-1", "A", 1)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := s.ReserveSlot(ctx, "sch-1"); err != nil {
		t.Fatalf("first ReserveSlot: %v", err)
	}
	if err := s.ReserveSlot(ctx, "sch-1"); err != store.ErrNoSlot {
		t.Errorf("second ReserveSlot = %v, want ErrNoSlot", err)
	}

	got, _ := s.GetByID(ctx, "sch-1")
	if got.CurrentParticipants != 1 {
		t.Errorf("CurrentParticipants = %d, want 1", got.CurrentParticipants)
	}
}

// TestSQLiteStore_ReserveSlot_NotOpen tests that cancelled schedules reject reservations.
func TestSQLiteStore_ReserveSlot_NotOpen(t *testing.T) {
	db := openStoreTestDB(t)
	s := store.NewSQLiteStore(db)
	ctx := context.Background()

	entity := testSchedule("sch-1", "A", 10)
	entity.Status = domain.StatusCancelled
	if err := s.Save(ctx, entity); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := s.ReserveSlot(ctx, "sch-1"); err != store.ErrNoSlot {
		t.Errorf("ReserveSlot on cancelled = %v, want ErrNoSlot", err)
	}
}

// TestSQLiteStore_ReleaseSlot tests slot release and the zero floor.
func TestSQLiteStore_ReleaseSlot(t *testing.T) {
	db := openStoreTestDB(t)
	s := store.NewSQLiteStore(db)
	ctx := context.Background()

	if err := s.Save(ctx, testSchedule("sch-1", "A", 2)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.ReserveSlot(ctx, "sch-1"); err != nil {
		t.Fatalf("ReserveSlot: %v", err)
	}
	if err := s.ReleaseSlot(ctx, "sch-1"); err != nil {
		t.Fatalf("ReleaseSlot: %v", err)
	}
	if err := s.ReleaseSlot(ctx, "sch-1"); err != store.ErrNothingToFree {
		t.Errorf("ReleaseSlot at zero = %v, want ErrNothingToFree", err)
	}
}

// TestSQLiteStore_ReserveSlot_Concurrent races many reservations against a
// small capacity and checks exactly capacity winners come through.
func TestSQLiteStore_ReserveSlot_Concurrent(t *testing.T) {
	db := openStoreTestDB(t)
	db.SetMaxOpenConns(1) // in-memory sqlite shares one connection
	s := store.NewSQLiteStore(db)
	ctx := context.Background()

	const capacity = 3
	const attempts = 20
	if err := s.Save(ctx, testSchedule("sch-1", "A", capacity)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.ReserveSlot(ctx, "sch-1")
		}()
	}
	wg.Wait()
	close(results)

	won := 0
	for err := range results {
		if err == nil {
			won++
		} else if err != store.ErrNoSlot {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if won != capacity {
		t.Errorf("winners = %d, want %d", won, capacity)
	}

	got, _ := s.GetByID(ctx, "sch-1")
	if got.CurrentParticipants != capacity {
		t.Errorf("CurrentParticipants = %d, want %d", got.CurrentParticipants, capacity)
	}
}

// TestSQLiteStore_SaveIfTrainerFree tests the in-statement overlap guard.
func TestSQLiteStore_SaveIfTrainerFree(t *testing.T) {
	db := openStoreTestDB(t)
	mustExec(t, db, `INSERT INTO account (id, email, role, created_at) VALUES ('trainer-2', 't2@example.com', 'trainer', '2024-01-01T00:00:00Z')`)
	s := store.NewSQLiteStore(db)
	ctx := context.Background()

	if err := s.SaveIfTrainerFree(ctx, testSchedule("sch-1", "A", 20)); err != nil {
		t.Fatalf("first save: %v", err)
	}

	overlap := testSchedule("sch-2", "B", 20)
	overlap.StartTime, _ = domain.CombineDateTime("2024-01-10", "09:30")
	overlap.EndTime, _ = domain.CombineDateTime("2024-01-10", "10:30")
	if err := s.SaveIfTrainerFree(ctx, overlap); !errors.Is(err, domain.ErrTrainerBusy) {
		t.Errorf("overlapping save = %v, want ErrTrainerBusy", err)
	}
	if _, err := s.GetByID(ctx, "sch-2"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("losing schedule must not be persisted")
	}

	// Another trainer may teach the same interval.
	other := overlap
	other.ID, other.Code, other.TrainerID = "sch-3", "C", "trainer-2"
	if err := s.SaveIfTrainerFree(ctx, other); err != nil {
		t.Errorf("different trainer: %v", err)
	}

	// Back-to-back intervals touch but do not overlap.
	later := testSchedule("sch-4", "D", 20)
	later.StartTime, _ = domain.CombineDateTime("2024-01-10", "10:00")
	later.EndTime, _ = domain.CombineDateTime("2024-01-10", "11:00")
	if err := s.SaveIfTrainerFree(ctx, later); err != nil {
		t.Errorf("back-to-back: %v", err)
	}

	// Re-saving the winner itself is not a self-conflict.
	moved := testSchedule("sch-1", "A", 20)
	moved.StartTime, _ = domain.CombineDateTime("2024-01-10", "09:15")
	moved.EndTime, _ = domain.CombineDateTime("2024-01-10", "09:45")
	if err := s.SaveIfTrainerFree(ctx, moved); err != nil {
		t.Errorf("self update: %v", err)
	}
}

// TestSQLiteStore_SaveIfTrainerFree_CancelledIgnored tests that a cancelled
// session frees its interval.
func TestSQLiteStore_SaveIfTrainerFree_CancelledIgnored(t *testing.T) {
	db := openStoreTestDB(t)
	s := store.NewSQLiteStore(db)
	ctx := context.Background()

	cancelled := testSchedule("sch-1", "A", 20)
	cancelled.Status = domain.StatusCancelled
	if err := s.Save(ctx, cancelled); err != nil {
		t.Fatalf("Save: %v", err)
	}

	replacement := testSchedule("sch-2", "B", 20)
	if err := s.SaveIfTrainerFree(ctx, replacement); err != nil {
		t.Errorf("cancelled session must not block: %v", err)
	}
}

// TestSQLiteStore_SaveIfTrainerFree_Concurrent races many inserts for the
// same trainer and interval and checks exactly one lands.
func TestSQLiteStore_SaveIfTrainerFree_Concurrent(t *testing.T) {
	db := openStoreTestDB(t)
	db.SetMaxOpenConns(1) // in-memory sqlite shares one connection
	s := store.NewSQLiteStore(db)
	ctx := context.Background()

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		entity := testSchedule(fmt.Sprintf("sch-%d", i), fmt.Sprintf("C%d", i), 20)
		go func() {
			defer wg.Done()
			results <- s.SaveIfTrainerFree(ctx, entity)
		}()
	}
	wg.Wait()
	close(results)

	won := 0
	for err := range results {
		if err == nil {
			won++
		} else if !errors.Is(err, domain.ErrTrainerBusy) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Errorf("winners = %d, want 1", won)
	}

	rows, err := s.ListByTrainerAndDate(ctx, "trainer-1", "2024-01-10")
	if err != nil {
		t.Fatalf("ListByTrainerAndDate: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("persisted rows = %d, want 1", len(rows))
	}
}
