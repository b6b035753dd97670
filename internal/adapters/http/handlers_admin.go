package web

import (
	"net/http"
	"strconv"
	"time"

	"gymdesk/internal/application/projections"
	"gymdesk/internal/domain/account"
)

// handleOutboxHealth reports the billing outbox status counts plus the
// failed entries needing attention. Admin only.
func handleOutboxHealth(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin); !ok {
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	result, err := projections.QueryGetOutboxHealth(r.Context(), stores.OutboxStore, limit)
	if err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// handleOutboxRetry reprocesses one outbox entry immediately, ignoring the
// backoff gate. Admin only.
func handleOutboxRetry(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin); !ok {
		return
	}
	if outboxProcessor == nil {
		writeError(w, http.StatusServiceUnavailable, "outbox processor not running")
		return
	}
	if err := outboxProcessor.ProcessSingle(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleOutboxAbandon marks an outbox entry as abandoned. Admin only.
func handleOutboxAbandon(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin); !ok {
		return
	}
	if outboxProcessor == nil {
		writeError(w, http.StatusServiceUnavailable, "outbox processor not running")
		return
	}
	if err := outboxProcessor.AbandonEntry(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePerfSnapshot returns request and query timing aggregates from the
// ring buffer. Admin only. Query param: window_min (default 60).
func handlePerfSnapshot(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin); !ok {
		return
	}
	if perfCollector == nil {
		writeError(w, http.StatusServiceUnavailable, "perf collector not configured")
		return
	}

	windowMin := 60
	if v := r.URL.Query().Get("window_min"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			windowMin = n
		}
	}

	snap := perfCollector.Snapshot(timeNow().Add(-time.Duration(windowMin)*time.Minute), 20)
	respondJSON(w, http.StatusOK, snap)
}
