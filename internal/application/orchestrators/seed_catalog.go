package orchestrators

import (
	"context"
	"log/slog"

	"gymdesk/internal/domain/classtype"
)

// CatalogSeedStore defines the class type store interface for seeding.
type CatalogSeedStore interface {
	List(ctx context.Context) ([]classtype.ClassType, error)
	Save(ctx context.Context, value classtype.ClassType) error
}

// defaultClassTypes is the starter catalog for a fresh install.
var defaultClassTypes = []classtype.ClassType{
	{Name: "Spin", DurationMin: 45, DefaultCapacity: 20, Difficulty: classtype.DifficultyBeginner, Description: "Indoor cycling to music.", Color: "#e74c3c"},
	{Name: "HIIT", DurationMin: 30, DefaultCapacity: 16, Difficulty: classtype.DifficultyIntermediate, Description: "High intensity interval training.", Color: "#f39c12"},
	{Name: "Yoga Flow", DurationMin: 60, DefaultCapacity: 24, Difficulty: classtype.DifficultyBeginner, Description: "Vinyasa-style flow for all levels.", Color: "#27ae60"},
	{Name: "Strength", DurationMin: 60, DefaultCapacity: 12, Difficulty: classtype.DifficultyAdvanced, Description: "Barbell-focused strength work.", Color: "#2980b9"},
}

// ExecuteSeedCatalog installs the starter class types when the catalog is empty.
// PRE: Database is initialized
// POST: Default class types created if none exist
func ExecuteSeedCatalog(ctx context.Context, store CatalogSeedStore, generateID func() string) error {
	existing, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil // catalog already populated, skip seeding
	}

	for _, ct := range defaultClassTypes {
		ct.ID = generateID()
		if err := ct.Validate(); err != nil {
			return err
		}
		if err := store.Save(ctx, ct); err != nil {
			return err
		}
	}

	slog.Info("catalog_event", "event", "catalog_seeded", "class_types", len(defaultClassTypes))
	return nil
}
