package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mlecomte/foyer/internal/auth"
	"github.com/mlecomte/foyer/internal/avatar"
	"github.com/mlecomte/foyer/internal/store"
)

type ProfileHandler struct {
	users    *store.UserStore
	sessions *store.SessionStore
	avatars  *avatar.Service
	logger   *slog.Logger
}

func NewProfileHandler(us *store.UserStore, ss *store.SessionStore, av *avatar.Service, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{users: us, sessions: ss, avatars: av, logger: logger}
}

// Get handles GET /api/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("load profile", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	Username             string `json:"username"`
	Gender               string `json:"gender"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

// Update handles PUT /api/profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Username == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username is required"})
		return
	}

	user, err := h.users.UpdateProfile(auth.UserID(r.Context()), req.Username, req.Gender, req.NotificationsEnabled)
	if err != nil {
		h.logger.Error("update profile", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UploadAvatar handles POST /api/profile/avatar (multipart form, field "avatar")
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if !h.avatars.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "avatar storage not configured"})
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "avatar file is required"})
		return
	}
	defer file.Close()

	userID := auth.UserID(r.Context())
	current, err := h.users.GetByID(userID)
	if err != nil || current == nil {
		h.logger.Error("load user for avatar", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	url, key, err := h.avatars.Upload(r.Context(), userID, header.Filename, file)
	if err != nil {
		h.logger.Error("upload avatar", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "avatar upload failed"})
		return
	}

	user, err := h.users.SetAvatar(userID, url, key)
	if err != nil {
		h.logger.Error("save avatar", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	// Old object is unreachable once the new URL is saved
	if current.AvatarKey != "" {
		if err := h.avatars.Delete(r.Context(), current.AvatarKey); err != nil {
			h.logger.Error("delete old avatar", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, user)
}

// DeleteAccount handles DELETE /api/profile
func (h *ProfileHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	user, err := h.users.GetByID(userID)
	if err != nil {
		h.logger.Error("load user for delete", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	if user.AvatarKey != "" {
		if err := h.avatars.Delete(r.Context(), user.AvatarKey); err != nil {
			h.logger.Error("delete avatar on account removal", "error", err)
		}
	}
	if err := h.sessions.DeleteByUserID(userID); err != nil {
		h.logger.Error("delete sessions", "error", err)
	}
	if err := h.users.Delete(userID); err != nil {
		h.logger.Error("delete user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
