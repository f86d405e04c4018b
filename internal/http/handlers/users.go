package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/payflowhq/payflow-backend/internal/http/respond"
	"github.com/payflowhq/payflow-backend/internal/middleware"
	"github.com/payflowhq/payflow-backend/internal/models/dto"
	"github.com/payflowhq/payflow-backend/internal/storage"
)

// UsersHandler serves the user directory and profile updates.
type UsersHandler struct {
	store storage.UserStore
	log   *slog.Logger
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(store storage.UserStore, log *slog.Logger) *UsersHandler {
	return &UsersHandler{store: store, log: log}
}

// List returns every registered user except the caller.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	users, err := h.store.ListOthers(r.Context(), userID)
	if err != nil {
		h.log.Error("list users failed", "error", err, "user_id", userID)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	summaries := make([]dto.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, dto.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	respond.JSON(w, http.StatusOK, "ok", dto.UsersResponse{Users: summaries})
}

// Update applies the fields present in the request to the caller's profile.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	current, err := h.store.FindByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error("fetch user failed", "error", err, "user_id", userID)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var update storage.UserUpdate
	if req.Password != nil {
		if len(*req.Password) < 8 {
			respond.Error(w, http.StatusBadRequest, "password must be at least 8 characters")
			return
		}
		hash, err := hashPassword(*req.Password)
		if err != nil {
			respond.Error(w, http.StatusInternalServerError, "failed to hash password")
			return
		}
		update.PasswordHash = &hash
	}
	if req.FirstName != nil || req.LastName != nil {
		name := mergeName(current.Name, req.FirstName, req.LastName)
		update.Name = &name
	}

	updated, err := h.store.UpdateUser(r.Context(), userID, update)
	if err != nil {
		h.log.Error("update user failed", "error", err, "user_id", userID)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respond.JSON(w, http.StatusOK, "profile updated", updated)
}

// mergeName combines the provided first/last name parts with the existing
// display name, keeping whichever half was not supplied.
func mergeName(current string, firstName, lastName *string) string {
	parts := strings.SplitN(current, " ", 2)
	first := parts[0]
	last := ""
	if len(parts) == 2 {
		last = parts[1]
	}
	if firstName != nil && strings.TrimSpace(*firstName) != "" {
		first = strings.TrimSpace(*firstName)
	}
	if lastName != nil && strings.TrimSpace(*lastName) != "" {
		last = strings.TrimSpace(*lastName)
	}
	return strings.TrimSpace(first + " " + last)
}
