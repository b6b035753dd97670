package member

import (
	"context"
	"database/sql"
	"fmt"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/member"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new MemberStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const memberColumns = "id, account_id, code, name, email, status"

// GetByID retrieves a Member by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM member WHERE id = ?", id)
	return scanNotFound(scanMember(row))
}

// GetByAccountID retrieves the Member provisioned for an account.
// PRE: accountID is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByAccountID(ctx context.Context, accountID string) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM member WHERE account_id = ?", accountID)
	return scanNotFound(scanMember(row))
}

// GetByCode retrieves a Member by the short kiosk code.
// PRE: code is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByCode(ctx context.Context, code string) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM member WHERE code = ?", code)
	return scanNotFound(scanMember(row))
}

// Save persists a Member to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Member) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO member (id, account_id, code, name, email, status)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   account_id=excluded.account_id, code=excluded.code, name=excluded.name,
		   email=excluded.email, status=excluded.status`,
		entity.ID, entity.AccountID, entity.Code, entity.Name, entity.Email, entity.Status,
	)
	return err
}

// Delete removes a Member from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM member WHERE id = ?", id)
	return err
}

// List retrieves all Members.
// POST: Returns all entities ordered by name
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Member, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+memberColumns+" FROM member ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Member
	for rows.Next() {
		entity, err := scanMember(rows)
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

func scanMember(r rowScanner) (domain.Member, error) {
	var entity domain.Member
	err := r.Scan(&entity.ID, &entity.AccountID, &entity.Code, &entity.Name, &entity.Email, &entity.Status)
	return entity, err
}

func scanNotFound(entity domain.Member, err error) (domain.Member, error) {
	if err == sql.ErrNoRows {
		return domain.Member{}, fmt.Errorf("%w", domain.ErrNotFound)
	}
	return entity, err
}
