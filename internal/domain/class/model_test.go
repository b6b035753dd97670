package class_test

import (
	"testing"

	"gymdesk/internal/domain/class"
)

// TestClass_Validate tests validation of Class.
func TestClass_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cls     class.Class
		wantErr bool
	}{
		{
			name:    "valid class",
			cls:     class.Class{ID: "1", ClassTypeID: "ct-1", Name: "Morning Spin", PriceCents: 1500, DurationMin: 45, Capacity: 20, Room: "Studio A"},
			wantErr: false,
		},
		{
			name:    "free class",
			cls:     class.Class{ID: "2", ClassTypeID: "ct-1", Name: "Open Gym", PriceCents: 0, DurationMin: 60, Capacity: 40},
			wantErr: false,
		},
		{
			name:    "empty name",
			cls:     class.Class{ID: "3", ClassTypeID: "ct-1", Name: "", DurationMin: 45, Capacity: 20},
			wantErr: true,
		},
		{
			name:    "empty class type",
			cls:     class.Class{ID: "4", ClassTypeID: "", Name: "Morning Spin", DurationMin: 45, Capacity: 20},
			wantErr: true,
		},
		{
			name:    "negative price",
			cls:     class.Class{ID: "5", ClassTypeID: "ct-1", Name: "Morning Spin", PriceCents: -1, DurationMin: 45, Capacity: 20},
			wantErr: true,
		},
		{
			name:    "zero capacity",
			cls:     class.Class{ID: "6", ClassTypeID: "ct-1", Name: "Morning Spin", DurationMin: 45, Capacity: 0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cls.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Class.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestClass_IsFree tests the invoice trigger predicate.
func TestClass_IsFree(t *testing.T) {
	paid := class.Class{PriceCents: 1500}
	if paid.IsFree() {
		t.Error("expected paid class not to be free")
	}
	free := class.Class{PriceCents: 0}
	if !free.IsFree() {
		t.Error("expected zero-price class to be free")
	}
}
