package web

import (
	"net/http"

	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/application/projections"
	"gymdesk/internal/domain/account"
)

// handleEnroll books the caller into a scheduled class. Members enroll
// themselves; staff may enroll any account by passing account_id.
func handleEnroll(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req struct {
		ScheduleID string `json:"schedule_id"`
		AccountID  string `json:"account_id"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accountID := sess.AccountID
	if req.AccountID != "" && req.AccountID != sess.AccountID {
		if sess.Role == account.RoleMember {
			writeError(w, http.StatusForbidden, "members can only enroll themselves")
			return
		}
		accountID = req.AccountID
	}

	result, err := orchestrators.ExecuteEnrollMember(r.Context(), orchestrators.EnrollMemberInput{
		AccountID:  accountID,
		ScheduleID: req.ScheduleID,
	}, orchestrators.EnrollMemberDeps{
		AccountStore:    stores.AccountStore,
		MemberStore:     stores.MemberStore,
		ScheduleStore:   stores.ScheduleStore,
		EnrollmentStore: stores.EnrollmentStore,
		ClassStore:      stores.ClassStore,
		OutboxStore:     stores.OutboxStore,
		GenerateID:      generateID,
		Now:             timeNow,
	})
	if err != nil {
		writeFault(w, err)
		return
	}

	resp := map[string]any{
		"enrollment":     result.Enrollment,
		"invoice_queued": result.InvoiceQueued,
	}
	if result.Warning != "" {
		resp["warning"] = result.Warning
	}
	respondJSON(w, http.StatusCreated, resp)
}

// handleCancelEnrollment releases a booking. Members may cancel their own up
// to the cutoff; staff may cancel anyone at any time. The ownership and
// cutoff rules live in the orchestrator.
func handleCancelEnrollment(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	err := orchestrators.ExecuteCancelEnrollment(r.Context(), orchestrators.CancelEnrollmentInput{
		EnrollmentID:   r.PathValue("id"),
		ActorAccountID: sess.AccountID,
	}, orchestrators.CancelEnrollmentDeps{
		EnrollmentStore: stores.EnrollmentStore,
		ScheduleStore:   stores.ScheduleStore,
		AccountStore:    stores.AccountStore,
		MemberStore:     stores.MemberStore,
		Now:             timeNow,
	})
	if err != nil {
		writeFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func memberScheduleDeps() projections.GetMemberScheduleDeps {
	return projections.GetMemberScheduleDeps{
		EnrollmentStore: stores.EnrollmentStore,
		ScheduleStore:   stores.ScheduleStore,
		ClassStore:      stores.ClassStore,
		Now:             timeNow,
	}
}

// handleMySchedule lists the caller's bookings, newest first.
func handleMySchedule(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	m, err := stores.MemberStore.GetByAccountID(r.Context(), sess.AccountID)
	if err != nil {
		// No member record yet means no bookings.
		respondJSON(w, http.StatusOK, []projections.MemberScheduleEntry{})
		return
	}

	entries, err := projections.QueryGetMemberSchedule(r.Context(), projections.GetMemberScheduleQuery{
		MemberID:         m.ID,
		IncludeCancelled: r.URL.Query().Get("include_cancelled") == "true",
	}, memberScheduleDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// handleMemberSchedule lists a member's bookings for the front desk. Staff only.
func handleMemberSchedule(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin, account.RoleTrainer); !ok {
		return
	}

	entries, err := projections.QueryGetMemberSchedule(r.Context(), projections.GetMemberScheduleQuery{
		MemberID:         r.PathValue("id"),
		IncludeCancelled: r.URL.Query().Get("include_cancelled") == "true",
	}, memberScheduleDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
