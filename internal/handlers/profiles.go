package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bensuskins/habit-hub/internal/apperr"
	"github.com/bensuskins/habit-hub/internal/models"
	"github.com/bensuskins/habit-hub/internal/services"
	"github.com/go-chi/chi/v5"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (handler *ProfileHandler) Register(w http.ResponseWriter, r *http.Request) {
	var registration services.Registration
	if err := json.NewDecoder(r.Body).Decode(&registration); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	profile, err := handler.profileService.Register(r.Context(), registration)
	if err != nil {
		writeServiceError(w, err, "registering profile")
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (handler *ProfileHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request loginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	profile, err := handler.profileService.Login(r.Context(), request.Email, request.Password)
	if err != nil {
		writeServiceError(w, err, "logging in")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (handler *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := handler.profileService.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "listing profiles")
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (handler *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := handler.profileService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "getting profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (handler *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var update services.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	profile, err := handler.profileService.Update(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		writeServiceError(w, err, "updating profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (handler *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := handler.profileService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err, "deleting profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *ProfileHandler) AddScheduledHabit(w http.ResponseWriter, r *http.Request) {
	var habit models.ScheduledHabit
	if err := json.NewDecoder(r.Body).Decode(&habit); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	created, err := handler.profileService.AddScheduledHabit(r.Context(), chi.URLParam(r, "id"), habit)
	if err != nil {
		writeServiceError(w, err, "adding scheduled habit")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// RemoveScheduledHabit deletes by name and time. Matching nothing still
// answers 204 so repeated deletes from agents are harmless.
func (handler *ProfileHandler) RemoveScheduledHabit(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	habitTime := r.URL.Query().Get("time")
	if name == "" || habitTime == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and time are required"})
		return
	}

	deleted, err := handler.profileService.RemoveScheduledHabit(r.Context(), chi.URLParam(r, "id"), name, habitTime)
	if err != nil {
		writeServiceError(w, err, "removing scheduled habit")
		return
	}
	slog.Debug("removed scheduled habits", "profile", chi.URLParam(r, "id"), "count", deleted)
	w.WriteHeader(http.StatusNoContent)
}

func (handler *ProfileHandler) AddHistoryEntry(w http.ResponseWriter, r *http.Request) {
	var entry models.HistoryEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	created, err := handler.profileService.AddHistoryEntry(r.Context(), chi.URLParam(r, "id"), entry)
	if err != nil {
		writeServiceError(w, err, "adding history entry")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func writeServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case apperr.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrProfileNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
	case errors.Is(err, services.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "email already registered"})
	case errors.Is(err, services.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
	default:
		slog.Error(action, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
