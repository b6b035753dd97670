package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/schedule"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ScheduleStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const scheduleColumns = "id, code, class_id, trainer_id, class_date, start_time, end_time, room, max_participants, current_participants, status, notes"

// GetByID retrieves a Schedule by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Schedule, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+scheduleColumns+" FROM schedule WHERE id = ?", id)
	entity, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return domain.Schedule{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return entity, err
}

// GetByCode retrieves a Schedule by its short kiosk code.
// PRE: code is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByCode(ctx context.Context, code string) (domain.Schedule, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+scheduleColumns+" FROM schedule WHERE code = ?", code)
	entity, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return domain.Schedule{}, fmt.Errorf("%w: %s", domain.ErrNotFound, code)
	}
	return entity, err
}

// Save persists a Schedule to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Schedule) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schedule (id, code, class_id, trainer_id, class_date, start_time, end_time, room, max_participants, current_participants, status, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   code=excluded.code, class_id=excluded.class_id, trainer_id=excluded.trainer_id,
		   class_date=excluded.class_date, start_time=excluded.start_time, end_time=excluded.end_time,
		   room=excluded.room, max_participants=excluded.max_participants,
		   current_participants=excluded.current_participants, status=excluded.status, notes=excluded.notes`,
		entity.ID, entity.Code, entity.ClassID, entity.TrainerID, entity.Date,
		entity.StartTime.Format(dateLayout), entity.EndTime.Format(dateLayout),
		entity.Room, entity.MaxParticipants, entity.CurrentParticipants, entity.Status, entity.Notes,
	)
	return err
}

// SaveIfTrainerFree persists the schedule only when the trainer has no other
// overlapping non-cancelled session that day. The overlap predicate runs
// inside the write statement itself, so two racing saves for the same trainer
// resolve to exactly one winner, the same way ReserveSlot closes the capacity
// race.
// PRE: entity has been validated
// POST: Entity persisted, or domain.ErrTrainerBusy with no write
func (s *SQLiteStore) SaveIfTrainerFree(ctx context.Context, entity domain.Schedule) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO schedule (id, code, class_id, trainer_id, class_date, start_time, end_time, room, max_participants, current_participants, status, notes)
		 SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		 WHERE NOT EXISTS (
		   SELECT 1 FROM schedule
		   WHERE trainer_id = ? AND class_date = ? AND id != ? AND status != ?
		     AND start_time < ? AND end_time > ?
		 )
		 ON CONFLICT(id) DO UPDATE SET
		   code=excluded.code, class_id=excluded.class_id, trainer_id=excluded.trainer_id,
		   class_date=excluded.class_date, start_time=excluded.start_time, end_time=excluded.end_time,
		   room=excluded.room, max_participants=excluded.max_participants,
		   current_participants=excluded.current_participants, status=excluded.status, notes=excluded.notes`,
		entity.ID, entity.Code, entity.ClassID, entity.TrainerID, entity.Date,
		entity.StartTime.Format(dateLayout), entity.EndTime.Format(dateLayout),
		entity.Room, entity.MaxParticipants, entity.CurrentParticipants, entity.Status, entity.Notes,
		entity.TrainerID, entity.Date, entity.ID, domain.StatusCancelled,
		entity.EndTime.Format(dateLayout), entity.StartTime.Format(dateLayout),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrTrainerBusy
	}
	return nil
}

// Delete removes a Schedule from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM schedule WHERE id = ?", id)
	return err
}

// List retrieves all Schedules.
// POST: Returns all entities ordered by date and start time
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Schedule, error) {
	return s.querySchedules(ctx, "SELECT "+scheduleColumns+" FROM schedule ORDER BY class_date, start_time")
}

// ListByDate retrieves Schedules on a specific calendar day.
// PRE: date is in YYYY-MM-DD format
// POST: Returns schedules for the given day ordered by start time
func (s *SQLiteStore) ListByDate(ctx context.Context, date string) ([]domain.Schedule, error) {
	return s.querySchedules(ctx, "SELECT "+scheduleColumns+" FROM schedule WHERE class_date = ? ORDER BY start_time", date)
}

// ListByTrainerAndDate retrieves a trainer's Schedules on a specific day.
// The conflict pre-check loads this set for its error message; the binding
// overlap check happens inside SaveIfTrainerFree.
// PRE: trainerID is non-empty, date is in YYYY-MM-DD format
// POST: Returns matching schedules ordered by start time
func (s *SQLiteStore) ListByTrainerAndDate(ctx context.Context, trainerID, date string) ([]domain.Schedule, error) {
	return s.querySchedules(ctx, "SELECT "+scheduleColumns+" FROM schedule WHERE trainer_id = ? AND class_date = ? ORDER BY start_time", trainerID, date)
}

// ListByClassID retrieves Schedules for a specific class.
// PRE: classID is non-empty
// POST: Returns matching schedules ordered by date and start time
func (s *SQLiteStore) ListByClassID(ctx context.Context, classID string) ([]domain.Schedule, error) {
	return s.querySchedules(ctx, "SELECT "+scheduleColumns+" FROM schedule WHERE class_id = ? ORDER BY class_date, start_time", classID)
}

// ReserveSlot atomically claims one capacity slot. The guard on status and
// current_participants lives inside the UPDATE, so two racing enrollments on
// the last slot resolve to exactly one winner.
// PRE: id is non-empty
// POST: current_participants incremented, or ErrNoSlot if full or not open
func (s *SQLiteStore) ReserveSlot(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE schedule SET current_participants = current_participants + 1
		 WHERE id = ? AND status = ? AND current_participants < max_participants`,
		id, domain.StatusScheduled)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoSlot
	}
	return nil
}

// ReleaseSlot atomically returns one capacity slot. The counter never goes
// below zero even if a release races a concurrent cancel.
// PRE: id is non-empty
// POST: current_participants decremented, or ErrNothingToFree at zero
func (s *SQLiteStore) ReleaseSlot(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE schedule SET current_participants = current_participants - 1
		 WHERE id = ? AND current_participants > 0`,
		id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNothingToFree
	}
	return nil
}

func (s *SQLiteStore) querySchedules(ctx context.Context, query string, args ...interface{}) ([]domain.Schedule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Schedule
	for rows.Next() {
		entity, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(r rowScanner) (domain.Schedule, error) {
	var entity domain.Schedule
	var startTime, endTime string
	err := r.Scan(&entity.ID, &entity.Code, &entity.ClassID, &entity.TrainerID, &entity.Date,
		&startTime, &endTime, &entity.Room, &entity.MaxParticipants,
		&entity.CurrentParticipants, &entity.Status, &entity.Notes)
	if err != nil {
		return domain.Schedule{}, err
	}
	entity.StartTime, _ = time.Parse(dateLayout, startTime)
	entity.EndTime, _ = time.Parse(dateLayout, endTime)
	return entity, nil
}
