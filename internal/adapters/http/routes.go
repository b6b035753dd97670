package web

import "net/http"

// registerRoutes binds every API endpoint. Method and path matching is done
// by the mux; role checks live in the handlers.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealthz)

	// Auth
	mux.HandleFunc("POST /api/login", handleLogin)
	mux.HandleFunc("POST /api/logout", handleLogout)
	mux.HandleFunc("GET /api/me", handleMe)
	mux.HandleFunc("POST /api/accounts", handleCreateAccount)

	// Catalog
	mux.HandleFunc("GET /api/classtypes", handleListClassTypes)
	mux.HandleFunc("POST /api/classtypes", handleSaveClassType)
	mux.HandleFunc("DELETE /api/classtypes/{id}", handleDeleteClassType)
	mux.HandleFunc("GET /api/classes", handleListClasses)
	mux.HandleFunc("POST /api/classes", handleSaveClass)
	mux.HandleFunc("DELETE /api/classes/{id}", handleDeleteClass)

	// Scheduling
	mux.HandleFunc("GET /api/timetable", handleTimetable)
	mux.HandleFunc("POST /api/schedules", handleCreateSchedule)
	mux.HandleFunc("PATCH /api/schedules/{id}", handleUpdateSchedule)
	mux.HandleFunc("POST /api/schedules/{id}/cancel", handleCancelSchedule)
	mux.HandleFunc("POST /api/schedules/{id}/complete", handleCompleteSchedule)

	// Enrollment
	mux.HandleFunc("POST /api/enrollments", handleEnroll)
	mux.HandleFunc("POST /api/enrollments/{id}/cancel", handleCancelEnrollment)
	mux.HandleFunc("GET /api/my/schedule", handleMySchedule)
	mux.HandleFunc("GET /api/members/{id}/schedule", handleMemberSchedule)

	// Attendance
	mux.HandleFunc("POST /api/enrollments/{id}/checkin", handleCheckIn)
	mux.HandleFunc("POST /api/enrollments/{id}/checkout", handleCheckOut)
	mux.HandleFunc("POST /api/kiosk/start", handleKioskStart)
	mux.HandleFunc("POST /api/kiosk/checkin", handleKioskCheckIn)
	mux.HandleFunc("POST /api/kiosk/end", handleKioskEnd)

	// Reporting
	mux.HandleFunc("GET /api/trainer/schedule", handleTrainerSchedule)
	mux.HandleFunc("GET /api/reports/attendance", handleAttendanceReport)
	mux.HandleFunc("GET /api/reports/popularity", handlePopularityReport)

	// Admin
	mux.HandleFunc("GET /api/admin/outbox", handleOutboxHealth)
	mux.HandleFunc("POST /api/admin/outbox/{id}/retry", handleOutboxRetry)
	mux.HandleFunc("POST /api/admin/outbox/{id}/abandon", handleOutboxAbandon)
	mux.HandleFunc("GET /api/admin/perf", handlePerfSnapshot)
}

// handleHealthz is the liveness probe.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
