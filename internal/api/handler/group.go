// internal/api/handler/group.go
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fairsplit/internal/api/middleware"
	"fairsplit/internal/cache"
	"fairsplit/internal/domain"
	"fairsplit/internal/service"
	"fairsplit/internal/util"
)

// GroupHandler handles HTTP requests related to groups and their rosters.
type GroupHandler struct {
	responder
	service service.GroupService
	cache   cache.GroupCache
}

// NewGroupHandler creates a new GroupHandler. A nil cache disables caching.
func NewGroupHandler(svc service.GroupService, groupCache cache.GroupCache, logger *slog.Logger) *GroupHandler {
	if groupCache == nil {
		groupCache = cache.Noop{}
	}
	return &GroupHandler{
		responder: responder{logger: logger},
		service:   svc,
		cache:     groupCache,
	}
}

// CreateGroupRequest represents the request body for group creation.
type CreateGroupRequest struct {
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active"`
}

// AddUserRequest represents the request body for adding a member.
type AddUserRequest struct {
	UserID string `json:"user_id"`
}

// ListGroups handles the group listing request.
// GET /groups[?is_active=bool][&name=string]
func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	const op = "list_groups"
	query := r.URL.Query()

	var isActive *bool
	if raw := query.Get("is_active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.respondWithError(w, r, op, util.ErrInvalidInput, "is_active", raw)
			return
		}
		isActive = &v
	}

	var (
		groups []domain.Group
		err    error
	)
	switch {
	case query.Has("name"):
		groups, err = h.service.FindGroupsByName(r.Context(), query.Get("name"))
		if err == nil && isActive != nil {
			groups = filterByStatus(groups, *isActive)
		}
	case isActive != nil:
		groups, err = h.service.ListGroupsByStatus(r.Context(), *isActive)
	default:
		groups, err = h.service.ListGroups(r.Context())
	}
	if err != nil {
		h.respondWithError(w, r, op, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, groups)
}

func filterByStatus(groups []domain.Group, isActive bool) []domain.Group {
	out := make([]domain.Group, 0, len(groups))
	for _, g := range groups {
		if g.IsActive == isActive {
			out = append(out, g)
		}
	}
	return out
}

// CreateGroup handles the group creation request. The caller becomes the first member.
// POST /groups
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	const op = "create_group"
	callerID, ok := middleware.CallerID(r.Context())
	if !ok {
		h.respondWithJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	var req CreateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, r, op, err, "user_id", callerID)
		return
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	group, err := h.service.CreateGroup(r.Context(), req.Name, isActive, callerID)
	if err != nil {
		h.respondWithError(w, r, op, err, "user_id", callerID)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, group)
}

// GetGroup handles the get group request.
// GET /groups/{groupID}
func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	const op = "get_group"
	groupID, err := groupIDParam(r)
	if err != nil {
		h.respondWithError(w, r, op, err, "group_id", chi.URLParam(r, "groupID"))
		return
	}

	group, err := h.service.GetGroup(r.Context(), groupID)
	if err != nil {
		h.respondWithError(w, r, op, err, "group_id", groupID)
		return
	}

	h.respondWithJSON(w, http.StatusOK, group)
}

// GetGroupWithMembers handles the group roster request, served from the cache when possible.
// GET /groups/{groupID}/users
func (h *GroupHandler) GetGroupWithMembers(w http.ResponseWriter, r *http.Request) {
	const op = "get_group_with_members"
	groupID, err := groupIDParam(r)
	if err != nil {
		h.respondWithError(w, r, op, err, "group_id", chi.URLParam(r, "groupID"))
		return
	}

	cached, version, hit, cacheErr := h.cache.Get(r.Context(), groupID)
	if cacheErr != nil {
		h.logger.Warn("Group cache read failed", "op", op, "group_id", groupID, "error", cacheErr)
	}
	if hit {
		h.respondWithJSON(w, http.StatusOK, cached)
		return
	}

	group, err := h.service.GetGroupWithMembers(r.Context(), groupID)
	if err != nil {
		h.respondWithError(w, r, op, err, "group_id", groupID)
		return
	}
	// The version read before loading fences the fill against writes that
	// invalidated in between. Without one there is nothing to fence with.
	if cacheErr == nil {
		if _, err := h.cache.Set(r.Context(), group, version); err != nil {
			h.logger.Warn("Group cache write failed", "op", op, "group_id", groupID, "error", err)
		}
	}

	h.respondWithJSON(w, http.StatusOK, group)
}

// UpdateGroup handles the partial group update request.
// PUT /groups/{groupID}
func (h *GroupHandler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	const op = "update_group"
	groupID, err := groupIDParam(r)
	if err != nil {
		h.respondWithError(w, r, op, err, "group_id", chi.URLParam(r, "groupID"))
		return
	}

	var req domain.GroupUpdate
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, r, op, err, "group_id", groupID)
		return
	}

	group, err := h.service.UpdateGroup(r.Context(), groupID, req)
	if err != nil {
		h.respondWithError(w, r, op, err, "group_id", groupID)
		return
	}
	h.invalidate(r, op, groupID)

	h.respondWithJSON(w, http.StatusOK, group)
}

// DeleteGroup handles the group deletion request. Unknown ids succeed.
// DELETE /groups/{groupID}
func (h *GroupHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	const op = "delete_group"
	groupID, err := groupIDParam(r)
	if err != nil {
		h.respondWithError(w, r, op, err, "group_id", chi.URLParam(r, "groupID"))
		return
	}

	if err := h.service.DeleteGroup(r.Context(), groupID); err != nil {
		h.respondWithError(w, r, op, err, "group_id", groupID)
		return
	}
	h.invalidate(r, op, groupID)

	w.WriteHeader(http.StatusNoContent)
}

// AddUserToGroup handles the add member request.
// POST /groups/{groupID}/users
func (h *GroupHandler) AddUserToGroup(w http.ResponseWriter, r *http.Request) {
	const op = "add_user_to_group"
	groupID, err := groupIDParam(r)
	if err != nil {
		h.respondWithError(w, r, op, err, "group_id", chi.URLParam(r, "groupID"))
		return
	}

	var req AddUserRequest
	if err := decodeJSON(r, &req); err != nil || req.UserID == "" {
		h.respondWithError(w, r, op, util.ErrInvalidInput, "group_id", groupID)
		return
	}

	group, err := h.service.AddUserToGroup(r.Context(), groupID, req.UserID)
	if err != nil {
		h.respondWithError(w, r, op, err, "group_id", groupID, "user_id", req.UserID)
		return
	}
	h.invalidate(r, op, groupID)

	h.respondWithJSON(w, http.StatusOK, group)
}

// RemoveUserFromGroup handles the remove member request.
// DELETE /groups/{groupID}/users/{userID}
func (h *GroupHandler) RemoveUserFromGroup(w http.ResponseWriter, r *http.Request) {
	const op = "remove_user_from_group"
	groupID, err := groupIDParam(r)
	if err != nil {
		h.respondWithError(w, r, op, err, "group_id", chi.URLParam(r, "groupID"))
		return
	}
	userID := chi.URLParam(r, "userID")

	group, err := h.service.RemoveUserFromGroup(r.Context(), groupID, userID)
	if err != nil {
		h.respondWithError(w, r, op, err, "group_id", groupID, "user_id", userID)
		return
	}
	h.invalidate(r, op, groupID)

	h.respondWithJSON(w, http.StatusOK, group)
}

// ListGroupsForUser handles the request for a user's groups.
// GET /users/{userID}/groups
func (h *GroupHandler) ListGroupsForUser(w http.ResponseWriter, r *http.Request) {
	const op = "list_groups_for_user"
	userID := chi.URLParam(r, "userID")

	groups, err := h.service.ListGroupsForUser(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, r, op, err, "user_id", userID)
		return
	}

	h.respondWithJSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) invalidate(r *http.Request, op string, groupID int64) {
	if err := h.cache.Invalidate(r.Context(), groupID); err != nil {
		h.logger.Warn("Group cache invalidation failed", "op", op, "group_id", groupID, "error", err)
	}
}
