package classtype

import (
	"context"
	"database/sql"
	"fmt"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/classtype"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ClassTypeStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const classTypeColumns = "id, name, duration_min, default_capacity, difficulty, description, color"

// GetByID retrieves a ClassType by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.ClassType, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+classTypeColumns+" FROM class_type WHERE id = ?", id)
	var entity domain.ClassType
	err := row.Scan(&entity.ID, &entity.Name, &entity.DurationMin, &entity.DefaultCapacity,
		&entity.Difficulty, &entity.Description, &entity.Color)
	if err == sql.ErrNoRows {
		return domain.ClassType{}, fmt.Errorf("class type not found: %w", err)
	}
	return entity, err
}

// Save persists a ClassType to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.ClassType) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO class_type (id, name, duration_min, default_capacity, difficulty, description, color)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, duration_min=excluded.duration_min,
		   default_capacity=excluded.default_capacity, difficulty=excluded.difficulty,
		   description=excluded.description, color=excluded.color`,
		entity.ID, entity.Name, entity.DurationMin, entity.DefaultCapacity,
		entity.Difficulty, entity.Description, entity.Color,
	)
	return err
}

// Delete removes a ClassType from the database. Dependent classes are removed
// by the schema's cascade rule.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM class_type WHERE id = ?", id)
	return err
}

// List retrieves all ClassTypes.
// POST: Returns all entities ordered by name
func (s *SQLiteStore) List(ctx context.Context) ([]domain.ClassType, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+classTypeColumns+" FROM class_type ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.ClassType
	for rows.Next() {
		var entity domain.ClassType
		if err := rows.Scan(&entity.ID, &entity.Name, &entity.DurationMin, &entity.DefaultCapacity,
			&entity.Difficulty, &entity.Description, &entity.Color); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
