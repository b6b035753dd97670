package enrollment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/enrollment"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new EnrollmentStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const enrollmentColumns = "id, schedule_id, member_id, status, enrolled_at, checkin_time, checkout_time, invoice_ref"

// GetByID retrieves an Enrollment by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Enrollment, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+enrollmentColumns+" FROM enrollment WHERE id = ?", id)
	entity, err := scanEnrollment(row)
	if err == sql.ErrNoRows {
		return domain.Enrollment{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return entity, err
}

// GetByScheduleAndMember retrieves the enrollment binding a member to a
// schedule, cancelled or not. Duplicate detection inspects the status. The id
// tie-breaker keeps the pick deterministic for same-timestamp re-enrollments.
// PRE: scheduleID and memberID are non-empty
// POST: Returns the most recent binding or domain.ErrNotFound
func (s *SQLiteStore) GetByScheduleAndMember(ctx context.Context, scheduleID, memberID string) (domain.Enrollment, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+enrollmentColumns+" FROM enrollment WHERE schedule_id = ? AND member_id = ? ORDER BY enrolled_at DESC, id DESC LIMIT 1",
		scheduleID, memberID)
	entity, err := scanEnrollment(row)
	if err == sql.ErrNoRows {
		return domain.Enrollment{}, fmt.Errorf("%w: %s/%s", domain.ErrNotFound, scheduleID, memberID)
	}
	return entity, err
}

// Save persists an Enrollment to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Enrollment) error {
	checkin := ""
	if !entity.CheckinTime.IsZero() {
		checkin = entity.CheckinTime.Format(dateLayout)
	}
	checkout := ""
	if !entity.CheckoutTime.IsZero() {
		checkout = entity.CheckoutTime.Format(dateLayout)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO enrollment (id, schedule_id, member_id, status, enrolled_at, checkin_time, checkout_time, invoice_ref)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   schedule_id=excluded.schedule_id, member_id=excluded.member_id, status=excluded.status,
		   checkin_time=excluded.checkin_time, checkout_time=excluded.checkout_time,
		   invoice_ref=excluded.invoice_ref`,
		entity.ID, entity.ScheduleID, entity.MemberID, entity.Status,
		entity.EnrolledAt.Format(dateLayout), checkin, checkout, entity.InvoiceRef,
	)
	return err
}

// Delete removes an Enrollment from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM enrollment WHERE id = ?", id)
	return err
}

// ListBySchedule retrieves Enrollments for a specific schedule.
// PRE: scheduleID is non-empty
// POST: Returns matching entities ordered by enrollment time
func (s *SQLiteStore) ListBySchedule(ctx context.Context, scheduleID string) ([]domain.Enrollment, error) {
	return s.queryEnrollments(ctx,
		"SELECT "+enrollmentColumns+" FROM enrollment WHERE schedule_id = ? ORDER BY enrolled_at", scheduleID)
}

// ListByMember retrieves Enrollments for a specific member.
// PRE: memberID is non-empty
// POST: Returns matching entities, newest first
func (s *SQLiteStore) ListByMember(ctx context.Context, memberID string) ([]domain.Enrollment, error) {
	return s.queryEnrollments(ctx,
		"SELECT "+enrollmentColumns+" FROM enrollment WHERE member_id = ? ORDER BY enrolled_at DESC", memberID)
}

// ListActiveByMemberOnDate retrieves a member's non-cancelled enrollments
// whose schedule falls on the given day. Double-booking and cross-schedule
// check-in conflicts test against this set.
// PRE: memberID is non-empty, date is in YYYY-MM-DD format
// POST: Returns matching entities ordered by schedule start time
func (s *SQLiteStore) ListActiveByMemberOnDate(ctx context.Context, memberID, date string) ([]domain.Enrollment, error) {
	return s.queryEnrollments(ctx,
		`SELECT e.id, e.schedule_id, e.member_id, e.status, e.enrolled_at, e.checkin_time, e.checkout_time, e.invoice_ref
		 FROM enrollment e
		 JOIN schedule s ON s.id = e.schedule_id
		 WHERE e.member_id = ? AND e.status != ? AND s.class_date = ?
		 ORDER BY s.start_time`,
		memberID, domain.StatusCancelled, date)
}

// SetInvoiceRef records the invoice reference produced by the billing worker.
// PRE: id is non-empty
// POST: invoice_ref column updated
func (s *SQLiteStore) SetInvoiceRef(ctx context.Context, id, invoiceRef string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE enrollment SET invoice_ref = ? WHERE id = ?", invoiceRef, id)
	return err
}

func (s *SQLiteStore) queryEnrollments(ctx context.Context, query string, args ...interface{}) ([]domain.Enrollment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Enrollment
	for rows.Next() {
		entity, err := scanEnrollment(rows)
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

func scanEnrollment(r rowScanner) (domain.Enrollment, error) {
	var entity domain.Enrollment
	var enrolledAt string
	var checkin, checkout sql.NullString
	err := r.Scan(&entity.ID, &entity.ScheduleID, &entity.MemberID, &entity.Status,
		&enrolledAt, &checkin, &checkout, &entity.InvoiceRef)
	if err != nil {
		return domain.Enrollment{}, err
	}
	entity.EnrolledAt, _ = time.Parse(dateLayout, enrolledAt)
	if checkin.Valid && checkin.String != "" {
		entity.CheckinTime, _ = time.Parse(dateLayout, checkin.String)
	}
	if checkout.Valid && checkout.String != "" {
		entity.CheckoutTime, _ = time.Parse(dateLayout, checkout.String)
	}
	return entity, nil
}
