// internal/api/handler/respond.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fairsplit/internal/util"
)

// DefaultTimeout bounds every request handled by the router.
const DefaultTimeout = 15 * time.Second

// responder carries the JSON helpers shared by all handlers.
type responder struct {
	logger *slog.Logger
}

// Helper function to send JSON responses.
func (h responder) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps err to a status code, logs it with the operation name and
// the entity attributes, and writes the JSON error body.
func (h responder) respondWithError(w http.ResponseWriter, r *http.Request, op string, err error, attrs ...any) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"
	level := slog.LevelError

	switch {
	case util.IsError(err, util.ErrCreationFailed):
		message = "Group could not be created"
	case util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
		level = slog.LevelInfo
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error()
		level = slog.LevelInfo
	case util.IsError(err, util.ErrAlreadyMember):
		statusCode = http.StatusBadRequest
		message = "User is already a member of this group"
		level = slog.LevelInfo
	case util.IsError(err, util.ErrNotMember):
		statusCode = http.StatusBadRequest
		message = "User is not a member of this group"
		level = slog.LevelInfo
	case util.IsError(err, util.ErrForbidden):
		statusCode = http.StatusForbidden
		message = "Forbidden"
		level = slog.LevelInfo
	case util.IsError(err, util.ErrStoreUnavailable):
		statusCode = http.StatusServiceUnavailable
		message = "Service temporarily unavailable"
	}

	args := append([]any{"op", op, "status", statusCode, "error", err}, attrs...)
	h.logger.Log(r.Context(), level, "Request failed", args...)

	h.respondWithJSON(w, statusCode, map[string]string{"error": message})
}

// decodeJSON decodes the request body into dest, rejecting unknown fields.
func decodeJSON(r *http.Request, dest interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return util.ErrInvalidInput
	}
	return nil
}

// groupIDParam parses the {groupID} path segment.
func groupIDParam(r *http.Request) (int64, error) {
	return idParam(r, "groupID")
}

// idParam parses a positive integer path segment.
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, util.ErrInvalidInput
	}
	return id, nil
}
