package orchestrators

import (
	"context"
	"log/slog"

	"gymdesk/internal/domain/class"
	"gymdesk/internal/domain/classtype"
	"gymdesk/internal/domain/fault"
	"gymdesk/internal/domain/schedule"
)

// ClassTypeStore defines class type persistence for the catalog orchestrators.
type ClassTypeStore interface {
	GetByID(ctx context.Context, id string) (classtype.ClassType, error)
	Save(ctx context.Context, value classtype.ClassType) error
	Delete(ctx context.Context, id string) error
}

// ClassStore defines class persistence for the catalog orchestrators.
type ClassStore interface {
	GetByID(ctx context.Context, id string) (class.Class, error)
	Save(ctx context.Context, value class.Class) error
	Delete(ctx context.Context, id string) error
	ListByClassTypeID(ctx context.Context, classTypeID string) ([]class.Class, error)
}

// CatalogScheduleStore checks for schedules that block catalog deletions.
type CatalogScheduleStore interface {
	ListByClassID(ctx context.Context, classID string) ([]schedule.Schedule, error)
}

// SaveClassTypeInput carries input for creating or updating a class type.
// An empty ID means create.
type SaveClassTypeInput struct {
	ID              string
	Name            string
	DurationMin     int
	DefaultCapacity int
	Difficulty      string
	Description     string
	Color           string
}

// CatalogDeps holds dependencies for the catalog orchestrators.
type CatalogDeps struct {
	ClassTypeStore ClassTypeStore
	ClassStore     ClassStore
	ScheduleStore  CatalogScheduleStore
	GenerateID     func() string
}

// ExecuteSaveClassType creates or updates a class type template.
// PRE: input fields satisfy classtype validation
// POST: Class type persisted; returns its id
func ExecuteSaveClassType(ctx context.Context, input SaveClassTypeInput, deps CatalogDeps) (string, error) {
	id := input.ID
	creating := id == ""
	if creating {
		id = deps.GenerateID()
	} else if _, err := deps.ClassTypeStore.GetByID(ctx, id); err != nil {
		return "", fault.New(fault.NotFound, "class type not found")
	}

	entity := classtype.ClassType{
		ID:              id,
		Name:            input.Name,
		DurationMin:     input.DurationMin,
		DefaultCapacity: input.DefaultCapacity,
		Difficulty:      input.Difficulty,
		Description:     input.Description,
		Color:           input.Color,
	}
	if err := entity.Validate(); err != nil {
		return "", fault.New(fault.Validation, err.Error())
	}
	if err := deps.ClassTypeStore.Save(ctx, entity); err != nil {
		return "", err
	}

	slog.Info("catalog_event", "event", "class_type_saved", "class_type_id", id, "created", creating)
	return id, nil
}

// ExecuteDeleteClassType removes a class type and its classes. Deletion is
// blocked while any stamped class still has schedules.
// PRE: id is non-empty
// POST: Class type and dependent classes removed
func ExecuteDeleteClassType(ctx context.Context, id string, deps CatalogDeps) error {
	if _, err := deps.ClassTypeStore.GetByID(ctx, id); err != nil {
		return fault.New(fault.NotFound, "class type not found")
	}

	classes, err := deps.ClassStore.ListByClassTypeID(ctx, id)
	if err != nil {
		return err
	}
	for _, cls := range classes {
		schedules, err := deps.ScheduleStore.ListByClassID(ctx, cls.ID)
		if err != nil {
			return err
		}
		if len(schedules) > 0 {
			return fault.Newf(fault.Conflict, "class %q still has schedules", cls.Name)
		}
	}

	if err := deps.ClassTypeStore.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("catalog_event", "event", "class_type_deleted", "class_type_id", id, "cascaded_classes", len(classes))
	return nil
}

// SaveClassInput carries input for creating or updating a class. An empty ID
// means create. Duration and capacity inherit from the class type when zero.
type SaveClassInput struct {
	ID          string
	ClassTypeID string
	Name        string
	PriceCents  int64
	DurationMin int
	Capacity    int
	TrainerID   string
	Room        string
}

// ExecuteSaveClass creates or updates a bookable class.
// PRE: ClassTypeID refers to an existing class type
// POST: Class persisted; returns its id
func ExecuteSaveClass(ctx context.Context, input SaveClassInput, deps CatalogDeps) (string, error) {
	ct, err := deps.ClassTypeStore.GetByID(ctx, input.ClassTypeID)
	if err != nil {
		return "", fault.New(fault.NotFound, "class type not found")
	}

	id := input.ID
	creating := id == ""
	if creating {
		id = deps.GenerateID()
	} else if _, err := deps.ClassStore.GetByID(ctx, id); err != nil {
		return "", fault.New(fault.NotFound, "class not found")
	}

	duration := input.DurationMin
	if duration <= 0 {
		duration = ct.DurationMin
	}
	capacity := input.Capacity
	if capacity <= 0 {
		capacity = ct.DefaultCapacity
	}

	entity := class.Class{
		ID:          id,
		ClassTypeID: input.ClassTypeID,
		Name:        input.Name,
		PriceCents:  input.PriceCents,
		DurationMin: duration,
		Capacity:    capacity,
		TrainerID:   input.TrainerID,
		Room:        input.Room,
	}
	if err := entity.Validate(); err != nil {
		return "", fault.New(fault.Validation, err.Error())
	}
	if err := deps.ClassStore.Save(ctx, entity); err != nil {
		return "", err
	}

	slog.Info("catalog_event", "event", "class_saved", "class_id", id, "created", creating)
	return id, nil
}

// ExecuteDeleteClass removes a class. Classes with schedules cannot be
// deleted; cancel the schedules first.
// PRE: id is non-empty
// POST: Class removed
func ExecuteDeleteClass(ctx context.Context, id string, deps CatalogDeps) error {
	if _, err := deps.ClassStore.GetByID(ctx, id); err != nil {
		return fault.New(fault.NotFound, "class not found")
	}

	schedules, err := deps.ScheduleStore.ListByClassID(ctx, id)
	if err != nil {
		return err
	}
	if len(schedules) > 0 {
		return fault.New(fault.Conflict, "class still has schedules")
	}

	if err := deps.ClassStore.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("catalog_event", "event", "class_deleted", "class_id", id)
	return nil
}
