// internal/api/handler/user.go
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fairsplit/internal/service"
)

// UserHandler exposes read-only user lookups.
type UserHandler struct {
	responder
	directory service.UserDirectory
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(directory service.UserDirectory, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		responder: responder{logger: logger},
		directory: directory,
	}
}

// GetByUsername handles the lookup of an active user by username.
// GET /users/by-username/{username}
func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	const op = "get_user_by_username"
	username := chi.URLParam(r, "username")

	user, err := h.directory.GetActiveByUsername(r.Context(), username)
	if err != nil {
		h.respondWithError(w, r, op, err, "username", username)
		return
	}

	h.respondWithJSON(w, http.StatusOK, user)
}
