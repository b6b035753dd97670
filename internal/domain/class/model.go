package class

import (
	"errors"
	"fmt"
	"strings"
)

// Max length constants.
const (
	MaxNameLength = 200
	MaxRoomLength = 100
)

// Domain errors
var (
	ErrEmptyName        = errors.New("class name cannot be empty")
	ErrEmptyClassTypeID = errors.New("class type ID cannot be empty")
	ErrNegativePrice    = errors.New("price cannot be negative")
	ErrInvalidDuration  = errors.New("duration must be greater than zero")
	ErrInvalidCapacity  = errors.New("capacity must be greater than zero")
)

// Class is a bookable offering stamped from a ClassType. Schedules reference
// a Class and inherit its capacity and room when none are given.
type Class struct {
	ID          string
	ClassTypeID string
	Name        string
	PriceCents  int64
	DurationMin int
	Capacity    int
	TrainerID   string // default trainer; a schedule may override
	Room        string
}

// Validate checks if the Class has valid data.
// PRE: Class struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Class) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return fmt.Errorf("class name cannot exceed %d characters", MaxNameLength)
	}
	if strings.TrimSpace(c.ClassTypeID) == "" {
		return ErrEmptyClassTypeID
	}
	if c.PriceCents < 0 {
		return ErrNegativePrice
	}
	if c.DurationMin <= 0 {
		return ErrInvalidDuration
	}
	if c.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if len(c.Room) > MaxRoomLength {
		return fmt.Errorf("room cannot exceed %d characters", MaxRoomLength)
	}
	return nil
}

// IsFree returns true when enrolling in this class generates no invoice.
// INVARIANT: Class fields are not mutated
func (c *Class) IsFree() bool {
	return c.PriceCents == 0
}
