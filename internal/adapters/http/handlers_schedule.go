package web

import (
	"net/http"

	"gymdesk/internal/adapters/http/middleware"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/application/projections"
	"gymdesk/internal/domain/account"
)

// handleTimetable returns the public timetable for one day.
// Query params: date (YYYY-MM-DD, defaults to today), include_cancelled.
func handleTimetable(w http.ResponseWriter, r *http.Request) {
	includeCancelled := r.URL.Query().Get("include_cancelled") == "true" &&
		middleware.IsStaff(r.Context())

	entries, err := projections.QueryGetTimetable(r.Context(), projections.GetTimetableQuery{
		Date:             r.URL.Query().Get("date"),
		IncludeCancelled: includeCancelled,
	}, projections.GetTimetableDeps{
		ScheduleStore:  stores.ScheduleStore,
		ClassStore:     stores.ClassStore,
		ClassTypeStore: stores.ClassTypeStore,
		AccountStore:   stores.AccountStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// handleCreateSchedule places a class occurrence on the calendar. Staff only.
func handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin, account.RoleTrainer); !ok {
		return
	}

	var req struct {
		ClassID         string `json:"class_id"`
		TrainerID       string `json:"trainer_id"`
		Date            string `json:"date"`
		StartTime       string `json:"start_time"`
		EndTime         string `json:"end_time"`
		Room            string `json:"room"`
		MaxParticipants int    `json:"max_participants"`
		Notes           string `json:"notes"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := orchestrators.ExecuteCreateSchedule(r.Context(), orchestrators.CreateScheduleInput{
		ClassID:         req.ClassID,
		TrainerID:       req.TrainerID,
		Date:            req.Date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Room:            req.Room,
		MaxParticipants: req.MaxParticipants,
		Notes:           req.Notes,
	}, orchestrators.CreateScheduleDeps{
		ScheduleStore: stores.ScheduleStore,
		ClassStore:    stores.ClassStore,
		AccountStore:  stores.AccountStore,
		GenerateID:    generateID,
	})
	if err != nil {
		writeFault(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result.Schedule)
}

// handleUpdateSchedule applies a partial update to a schedule. Staff only.
// Absent fields keep their current values.
func handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin, account.RoleTrainer); !ok {
		return
	}

	var req struct {
		TrainerID       *string `json:"trainer_id"`
		Date            *string `json:"date"`
		StartTime       *string `json:"start_time"`
		EndTime         *string `json:"end_time"`
		Room            *string `json:"room"`
		MaxParticipants *int    `json:"max_participants"`
		Notes           *string `json:"notes"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := orchestrators.ExecuteUpdateSchedule(r.Context(), orchestrators.UpdateScheduleInput{
		ScheduleID:      r.PathValue("id"),
		TrainerID:       req.TrainerID,
		Date:            req.Date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Room:            req.Room,
		MaxParticipants: req.MaxParticipants,
		Notes:           req.Notes,
	}, orchestrators.UpdateScheduleDeps{
		ScheduleStore: stores.ScheduleStore,
		AccountStore:  stores.AccountStore,
	})
	if err != nil {
		writeFault(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result.Schedule)
}

// handleCancelSchedule cancels a schedule and cascades to its enrollments.
// Staff only. A partial cascade failure returns 409 and leaves the schedule
// live so the call can be retried.
func handleCancelSchedule(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin, account.RoleTrainer); !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength > 0 {
		if err := strictDecode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := orchestrators.ExecuteCancelSchedule(r.Context(), orchestrators.CancelScheduleInput{
		ScheduleID: r.PathValue("id"),
		Reason:     req.Reason,
	}, orchestrators.CancelScheduleDeps{
		ScheduleStore:   stores.ScheduleStore,
		EnrollmentStore: stores.EnrollmentStore,
	})
	if err != nil {
		writeFault(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{
		"cancelled_enrollments": result.CancelledEnrollments,
	})
}

// handleCompleteSchedule marks a schedule completed after its end time. Staff only.
func handleCompleteSchedule(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin, account.RoleTrainer); !ok {
		return
	}

	err := orchestrators.ExecuteCompleteSchedule(r.Context(), orchestrators.CompleteScheduleInput{
		ScheduleID: r.PathValue("id"),
	}, orchestrators.CompleteScheduleDeps{
		ScheduleStore: stores.ScheduleStore,
		Now:           timeNow,
	})
	if err != nil {
		writeFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTrainerSchedule returns a trainer's day sheet. Trainers see their
// own; admins may pass trainer_id.
func handleTrainerSchedule(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleAdmin, account.RoleTrainer)
	if !ok {
		return
	}

	trainerID := sess.AccountID
	if requested := r.URL.Query().Get("trainer_id"); requested != "" {
		if requested != sess.AccountID && sess.Role != account.RoleAdmin {
			writeError(w, http.StatusForbidden, "trainers can only view their own schedule")
			return
		}
		trainerID = requested
	}

	entries, err := projections.QueryGetTrainerSchedule(r.Context(), projections.GetTrainerScheduleQuery{
		TrainerID: trainerID,
		Date:      r.URL.Query().Get("date"),
	}, projections.GetTrainerScheduleDeps{
		ScheduleStore: stores.ScheduleStore,
		ClassStore:    stores.ClassStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
