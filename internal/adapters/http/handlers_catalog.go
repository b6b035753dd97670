package web

import (
	"net/http"

	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/domain/account"
)

func catalogDeps() orchestrators.CatalogDeps {
	return orchestrators.CatalogDeps{
		ClassTypeStore: stores.ClassTypeStore,
		ClassStore:     stores.ClassStore,
		ScheduleStore:  stores.ScheduleStore,
		GenerateID:     generateID,
	}
}

// handleListClassTypes lists the class type templates. Any logged-in user.
func handleListClassTypes(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}
	list, err := stores.ClassTypeStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// handleSaveClassType creates or updates a class type. Admin only.
// An empty id in the body means create.
func handleSaveClassType(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin); !ok {
		return
	}

	var req struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		DurationMin     int    `json:"duration_min"`
		DefaultCapacity int    `json:"default_capacity"`
		Difficulty      string `json:"difficulty"`
		Description     string `json:"description"`
		Color           string `json:"color"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := orchestrators.ExecuteSaveClassType(r.Context(), orchestrators.SaveClassTypeInput{
		ID:              req.ID,
		Name:            req.Name,
		DurationMin:     req.DurationMin,
		DefaultCapacity: req.DefaultCapacity,
		Difficulty:      req.Difficulty,
		Description:     req.Description,
		Color:           req.Color,
	}, catalogDeps())
	if err != nil {
		writeFault(w, err)
		return
	}

	status := http.StatusOK
	if req.ID == "" {
		status = http.StatusCreated
	}
	respondJSON(w, status, map[string]string{"id": id})
}

// handleDeleteClassType deletes a class type template. Admin only.
func handleDeleteClassType(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin); !ok {
		return
	}
	if err := orchestrators.ExecuteDeleteClassType(r.Context(), r.PathValue("id"), catalogDeps()); err != nil {
		writeFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListClasses lists the bookable classes. Any logged-in user.
func handleListClasses(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}
	list, err := stores.ClassStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// handleSaveClass creates or updates a bookable class. Admin only.
func handleSaveClass(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin); !ok {
		return
	}

	var req struct {
		ID          string `json:"id"`
		ClassTypeID string `json:"class_type_id"`
		Name        string `json:"name"`
		PriceCents  int64  `json:"price_cents"`
		DurationMin int    `json:"duration_min"`
		Capacity    int    `json:"capacity"`
		TrainerID   string `json:"trainer_id"`
		Room        string `json:"room"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := orchestrators.ExecuteSaveClass(r.Context(), orchestrators.SaveClassInput{
		ID:          req.ID,
		ClassTypeID: req.ClassTypeID,
		Name:        req.Name,
		PriceCents:  req.PriceCents,
		DurationMin: req.DurationMin,
		Capacity:    req.Capacity,
		TrainerID:   req.TrainerID,
		Room:        req.Room,
	}, catalogDeps())
	if err != nil {
		writeFault(w, err)
		return
	}

	status := http.StatusOK
	if req.ID == "" {
		status = http.StatusCreated
	}
	respondJSON(w, status, map[string]string{"id": id})
}

// handleDeleteClass deletes a class. Admin only.
func handleDeleteClass(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin); !ok {
		return
	}
	if err := orchestrators.ExecuteDeleteClass(r.Context(), r.PathValue("id"), catalogDeps()); err != nil {
		writeFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
