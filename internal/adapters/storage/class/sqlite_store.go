package class

import (
	"context"
	"database/sql"
	"fmt"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/class"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ClassStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const classColumns = "id, class_type_id, name, price_cents, duration_min, capacity, trainer_id, room"

// GetByID retrieves a Class by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Class, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+classColumns+" FROM class WHERE id = ?", id)
	entity, err := scanClass(row)
	if err == sql.ErrNoRows {
		return domain.Class{}, fmt.Errorf("class not found: %w", err)
	}
	return entity, err
}

// Save persists a Class to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Class) error {
	var trainerID any
	if entity.TrainerID != "" {
		trainerID = entity.TrainerID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO class (id, class_type_id, name, price_cents, duration_min, capacity, trainer_id, room)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   class_type_id=excluded.class_type_id, name=excluded.name, price_cents=excluded.price_cents,
		   duration_min=excluded.duration_min, capacity=excluded.capacity,
		   trainer_id=excluded.trainer_id, room=excluded.room`,
		entity.ID, entity.ClassTypeID, entity.Name, entity.PriceCents,
		entity.DurationMin, entity.Capacity, trainerID, entity.Room,
	)
	return err
}

// Delete removes a Class from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM class WHERE id = ?", id)
	return err
}

// List retrieves all Classes.
// POST: Returns all entities ordered by name
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Class, error) {
	return s.queryClasses(ctx, "SELECT "+classColumns+" FROM class ORDER BY name")
}

// ListByClassTypeID retrieves Classes stamped from a specific class type.
// PRE: classTypeID is non-empty
// POST: Returns matching entities ordered by name
func (s *SQLiteStore) ListByClassTypeID(ctx context.Context, classTypeID string) ([]domain.Class, error) {
	return s.queryClasses(ctx, "SELECT "+classColumns+" FROM class WHERE class_type_id = ? ORDER BY name", classTypeID)
}

func (s *SQLiteStore) queryClasses(ctx context.Context, query string, args ...interface{}) ([]domain.Class, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Class
	for rows.Next() {
		entity, err := scanClass(rows)
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

func scanClass(r rowScanner) (domain.Class, error) {
	var entity domain.Class
	var trainerID sql.NullString
	err := r.Scan(&entity.ID, &entity.ClassTypeID, &entity.Name, &entity.PriceCents,
		&entity.DurationMin, &entity.Capacity, &trainerID, &entity.Room)
	if err != nil {
		return domain.Class{}, err
	}
	entity.TrainerID = trainerID.String
	return entity, nil
}
