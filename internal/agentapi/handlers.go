package agentapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bensuskins/habit-hub/internal/apperr"
	"github.com/bensuskins/habit-hub/internal/controller"
	"github.com/bensuskins/habit-hub/internal/habits"
	"github.com/bensuskins/habit-hub/internal/models"
	"github.com/bensuskins/habit-hub/internal/remotesync"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	agent Agent
}

func NewHandler(agent Agent) *Handler {
	return &Handler{agent: agent}
}

type habitRequest struct {
	Name string `json:"name"`
	Time string `json:"time"`
}

type updateRequest struct {
	Field habits.Field `json:"field"`
	Value string       `json:"value"`
}

type clockRequest struct {
	Time string `json:"time"`
}

type syncResponse struct {
	Merge remotesync.MergeSummary `json:"merge"`
	Error string                  `json:"error,omitempty"`
}

func (handler *Handler) State(w http.ResponseWriter, r *http.Request) {
	snapshot, err := handler.agent.Snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (handler *Handler) Activities(w http.ResponseWriter, r *http.Request) {
	filter := models.ActivityFilter(r.URL.Query().Get("filter"))
	switch filter {
	case "", models.FilterAll, models.FilterCompleted, models.FilterMissed:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "filter must be all, completed or missed"})
		return
	}

	activities, err := handler.agent.Activities(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	writeJSON(w, http.StatusOK, activities)
}

func (handler *Handler) AddHabit(w http.ResponseWriter, r *http.Request) {
	var request habitRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := handler.agent.Dispatch(r.Context(), controller.Action{
		Kind: controller.ActionAddHabit,
		Name: request.Name,
		Time: request.Time,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (handler *Handler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	var request updateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := handler.agent.Dispatch(r.Context(), controller.Action{
		Kind:    controller.ActionUpdateHabit,
		HabitID: chi.URLParam(r, "id"),
		Field:   request.Field,
		Value:   request.Value,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (handler *Handler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	_, err := handler.agent.Dispatch(r.Context(), controller.Action{
		Kind:    controller.ActionDeleteHabit,
		HabitID: chi.URLParam(r, "id"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) StopAlarm(w http.ResponseWriter, r *http.Request) {
	result, err := handler.agent.Dispatch(r.Context(), controller.Action{Kind: controller.ActionStopAlarm})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"stopped": result.Stopped})
}

func (handler *Handler) SetClock(w http.ResponseWriter, r *http.Request) {
	var request clockRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if _, err := handler.agent.Dispatch(r.Context(), controller.Action{Kind: controller.ActionSetClock, Time: request.Time}); err != nil {
		writeError(w, err)
		return
	}
	handler.State(w, r)
}

func (handler *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if _, err := handler.agent.Dispatch(r.Context(), controller.Action{Kind: controller.ActionUpdateSettings, Settings: &settings}); err != nil {
		writeError(w, err)
		return
	}
	handler.State(w, r)
}

func (handler *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	summary, err := handler.agent.SyncNow(r.Context())
	switch {
	case errors.Is(err, remotesync.ErrNoProfile):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no profile configured"})
	case apperr.IsSync(err):
		slog.Warn("manual sync finished with errors", "error", err)
		writeJSON(w, http.StatusBadGateway, syncResponse{Merge: summary, Error: err.Error()})
	case err != nil:
		writeError(w, err)
	default:
		writeJSON(w, http.StatusOK, syncResponse{Merge: summary})
	}
}

func (handler *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if _, err := handler.agent.Dispatch(r.Context(), controller.Action{Kind: controller.ActionReset}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case apperr.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, habits.ErrHabitNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "habit not found"})
	case errors.Is(err, controller.ErrStopped):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "agent is shutting down"})
	default:
		slog.Error("handling agent request", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
