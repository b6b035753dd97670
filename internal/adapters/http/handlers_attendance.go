package web

import (
	"net/http"
	"sync"

	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/application/projections"
	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/kiosk"
)

// handleCheckIn marks an enrollment as attended. Staff only; bypass skips
// the timing window but never the state machine.
func handleCheckIn(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin, account.RoleTrainer); !ok {
		return
	}

	var req struct {
		Bypass bool `json:"bypass"`
	}
	if r.ContentLength > 0 {
		if err := strictDecode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	err := orchestrators.ExecuteCheckIn(r.Context(), orchestrators.CheckInInput{
		EnrollmentID: r.PathValue("id"),
		Bypass:       req.Bypass,
	}, orchestrators.CheckInDeps{
		EnrollmentStore: stores.EnrollmentStore,
		ScheduleStore:   stores.ScheduleStore,
		Now:             timeNow,
	})
	if err != nil {
		writeFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCheckOut closes an attendance session. Staff only.
func handleCheckOut(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin, account.RoleTrainer); !ok {
		return
	}

	err := orchestrators.ExecuteCheckOut(r.Context(), orchestrators.CheckOutInput{
		EnrollmentID: r.PathValue("id"),
	}, orchestrators.CheckOutDeps{
		EnrollmentStore: stores.EnrollmentStore,
		Now:             timeNow,
	})
	if err != nil {
		writeFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// kioskSessions tracks active kiosk terminals by token. Kiosk mode locks a
// front-desk tablet to check-in only; the token stands in for a login on
// the kiosk endpoints.
var kioskSessions = struct {
	mu       sync.Mutex
	sessions map[string]kiosk.Session
}{sessions: make(map[string]kiosk.Session)}

// activeKioskSession resolves the kiosk token from the request header.
func activeKioskSession(r *http.Request) (kiosk.Session, bool) {
	token := r.Header.Get("X-Kiosk-Token")
	if token == "" {
		return kiosk.Session{}, false
	}
	kioskSessions.mu.Lock()
	defer kioskSessions.mu.Unlock()
	ks, ok := kioskSessions.sessions[token]
	if !ok || !ks.IsActive() {
		return kiosk.Session{}, false
	}
	return ks, true
}

// handleKioskStart launches kiosk mode. Staff only; the returned token
// authorizes the terminal for kiosk check-ins until ended.
func handleKioskStart(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleAdmin, account.RoleTrainer)
	if !ok {
		return
	}

	ks := kiosk.Session{
		ID:        generateID(),
		AccountID: sess.AccountID,
		StartedAt: timeNow(),
	}
	if err := ks.Validate(); err != nil {
		internalError(w, err)
		return
	}

	kioskSessions.mu.Lock()
	kioskSessions.sessions[ks.ID] = ks
	kioskSessions.mu.Unlock()

	respondJSON(w, http.StatusCreated, map[string]string{"kiosk_token": ks.ID})
}

// handleKioskEnd exits kiosk mode. Requires a staff login, so a member
// cannot unlock the terminal from the kiosk screen.
func handleKioskEnd(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin, account.RoleTrainer); !ok {
		return
	}

	token := r.Header.Get("X-Kiosk-Token")
	kioskSessions.mu.Lock()
	defer kioskSessions.mu.Unlock()
	ks, ok := kioskSessions.sessions[token]
	if !ok {
		writeError(w, http.StatusNotFound, "kiosk session not found")
		return
	}
	if err := ks.End(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	delete(kioskSessions.sessions, token)
	w.WriteHeader(http.StatusNoContent)
}

// handleKioskCheckIn is the self-service tap: member code or id plus
// schedule code or id, authorized by an active kiosk session instead of a
// login. A second tap reports already-checked-in instead of failing.
func handleKioskCheckIn(w http.ResponseWriter, r *http.Request) {
	if _, ok := activeKioskSession(r); !ok {
		writeError(w, http.StatusUnauthorized, "kiosk session required")
		return
	}

	var req struct {
		Member   string `json:"member"`
		Schedule string `json:"schedule"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := orchestrators.ExecuteQuickCheckIn(r.Context(), orchestrators.QuickCheckInInput{
		Member:   req.Member,
		Schedule: req.Schedule,
	}, orchestrators.QuickCheckInDeps{
		MemberStore:     stores.MemberStore,
		ScheduleStore:   stores.ScheduleStore,
		EnrollmentStore: stores.EnrollmentStore,
		Now:             timeNow,
	})
	if err != nil {
		writeFault(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"enrollment_id":      result.EnrollmentID,
		"member_name":        result.MemberName,
		"already_checked_in": result.AlreadyCheckedIn,
	})
}

// handleAttendanceReport returns the front-desk attendance sheet for one
// day. Staff only.
func handleAttendanceReport(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin, account.RoleTrainer); !ok {
		return
	}

	result, err := projections.QueryGetAttendanceToday(r.Context(), projections.GetAttendanceTodayQuery{
		Date: r.URL.Query().Get("date"),
	}, projections.GetAttendanceTodayDeps{
		ScheduleStore:   stores.ScheduleStore,
		EnrollmentStore: stores.EnrollmentStore,
		MemberStore:     stores.MemberStore,
		ClassStore:      stores.ClassStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// handlePopularityReport returns per-class booking and revenue aggregates.
// Staff only.
func handlePopularityReport(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin, account.RoleTrainer); !ok {
		return
	}

	rows, err := projections.QueryGetClassPopularity(r.Context(), projections.GetClassPopularityDeps{
		ScheduleStore:   stores.ScheduleStore,
		EnrollmentStore: stores.EnrollmentStore,
		ClassStore:      stores.ClassStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}
