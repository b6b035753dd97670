package classtype

import (
	"errors"
	"fmt"
	"strings"
)

// Difficulty constants.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Max length constants.
const (
	MaxNameLength        = 200
	MaxDescriptionLength = 2000
)

// Domain errors
var (
	ErrEmptyName         = errors.New("class type name cannot be empty")
	ErrInvalidDuration   = errors.New("duration must be greater than zero")
	ErrInvalidCapacity   = errors.New("default capacity must be greater than zero")
	ErrInvalidDifficulty = errors.New("difficulty must be 'beginner', 'intermediate', or 'advanced'")
)

// ClassType is the activity template classes are stamped from
// (e.g. Spin, HIIT, Yoga Flow).
type ClassType struct {
	ID              string
	Name            string
	DurationMin     int
	DefaultCapacity int
	Difficulty      string

	// Optional metadata for timetable display.
	Description string // optional, markdown/plain text
	Color       string // optional hex tag for calendar rendering
}

// Validate checks if the ClassType has valid data.
// PRE: ClassType struct is populated
// POST: Returns nil if valid, error otherwise
func (c *ClassType) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return fmt.Errorf("class type name cannot exceed %d characters", MaxNameLength)
	}
	if c.DurationMin <= 0 {
		return ErrInvalidDuration
	}
	if c.DefaultCapacity <= 0 {
		return ErrInvalidCapacity
	}
	if len(c.Description) > MaxDescriptionLength {
		return fmt.Errorf("class type description cannot exceed %d characters", MaxDescriptionLength)
	}
	switch c.Difficulty {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
	default:
		return ErrInvalidDifficulty
	}
	return nil
}
