package member

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Business rule constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Domain errors
var (
	ErrEmptyName    = errors.New("member name cannot be empty")
	ErrInvalidEmail = errors.New("member email must be valid")
	ErrNotFound     = errors.New("member not found")
)

// Member is the attendee record bound to an identity account. Members are
// auto-provisioned the first time an identity enrolls, so AccountID is the
// stable link back to the identity provider.
type Member struct {
	ID        string
	AccountID string
	Code      string // short human-readable member code, e.g. GD-1A2B3C4D
	Name      string
	Email     string
	Status    string
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if len(m.Name) > MaxNameLength {
		return errors.New("member name cannot exceed 100 characters")
	}
	if !strings.Contains(m.Email, "@") {
		return ErrInvalidEmail
	}
	if m.Status != StatusActive && m.Status != StatusInactive {
		return errors.New("status must be 'active' or 'inactive'")
	}
	return nil
}

// IsActive returns true if the member is currently active.
// INVARIANT: Member fields are not mutated
func (m *Member) IsActive() bool {
	return m.Status == StatusActive
}

// CodeFromAccountID derives the deterministic member code for an identity.
// The same identity always maps to the same code, which keeps
// auto-provisioning idempotent.
func CodeFromAccountID(accountID string) string {
	cleaned := strings.ReplaceAll(accountID, "-", "")
	if len(cleaned) > 8 {
		cleaned = cleaned[:8]
	}
	return "GD-" + strings.ToUpper(cleaned)
}
