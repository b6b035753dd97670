package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"gymdesk/internal/adapters/http/middleware"
	"gymdesk/internal/domain/fault"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// writeError writes a plain JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Error: message})
}

// faultStatus maps failure classifications to HTTP status codes.
var faultStatus = map[fault.Kind]int{
	fault.Validation:    http.StatusBadRequest,
	fault.NotFound:      http.StatusNotFound,
	fault.Authorization: http.StatusForbidden,
	fault.Conflict:      http.StatusConflict,
	fault.Capacity:      http.StatusConflict,
	fault.State:         http.StatusConflict,
	fault.Policy:        http.StatusUnprocessableEntity,
}

// writeFault translates a classified orchestrator error into an HTTP
// response. Unclassified errors are treated as internal.
func writeFault(w http.ResponseWriter, err error) {
	kind := fault.KindOf(err)
	status, ok := faultStatus[kind]
	if !ok {
		internalError(w, err)
		return
	}
	respondJSON(w, status, errorBody{Error: err.Error(), Kind: string(kind)})
}

// requireSession blocks unauthenticated requests.
func requireSession(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return middleware.Session{}, false
	}
	return sess, true
}

// requireRole blocks requests whose session lacks all of the given roles.
func requireRole(w http.ResponseWriter, r *http.Request, roles ...string) (middleware.Session, bool) {
	sess, ok := requireSession(w, r)
	if !ok {
		return middleware.Session{}, false
	}
	for _, role := range roles {
		if sess.Role == role {
			return sess, true
		}
	}
	writeError(w, http.StatusForbidden, "insufficient role")
	return middleware.Session{}, false
}
