package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bensuskins/habit-hub/internal/services"
	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	auth           *services.AdminAuth
	profileService *services.ProfileService
}

func NewAdminHandler(auth *services.AdminAuth, profileService *services.ProfileService) *AdminHandler {
	return &AdminHandler{
		auth:           auth,
		profileService: profileService,
	}
}

type adminProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// Access signs the admin in from a form post.
func (handler *AdminHandler) Access(w http.ResponseWriter, r *http.Request) {
	user := r.FormValue("user")
	password := r.FormValue("password")

	if err := handler.auth.CheckCredentials(user, password); err != nil {
		if errors.Is(err, services.ErrAdminDisabled) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin access is disabled"})
			return
		}
		slog.Warn("rejected admin login", "user", user)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	if err := handler.auth.SetSession(w, user); err != nil {
		slog.Error("setting admin session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not start session"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"admin": user})
}

func (handler *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	handler.auth.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

func (handler *AdminHandler) Profiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := handler.profileService.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "listing profiles")
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (handler *AdminHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var request adminProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	profile, err := handler.profileService.Update(r.Context(), chi.URLParam(r, "id"), services.ProfileUpdate{
		Name:  request.Name,
		Email: request.Email,
	})
	if err != nil {
		writeServiceError(w, err, "updating profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (handler *AdminHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := handler.profileService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err, "deleting profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := handler.profileService.Stats(r.Context(), time.Now())
	if err != nil {
		writeServiceError(w, err, "collecting stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
