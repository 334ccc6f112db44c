package agentapi

import (
	"context"
	"net/http"

	"github.com/bensuskins/habit-hub/internal/controller"
	"github.com/bensuskins/habit-hub/internal/middleware"
	"github.com/bensuskins/habit-hub/internal/models"
	"github.com/bensuskins/habit-hub/internal/remotesync"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Agent is the part of the controller the local API drives.
type Agent interface {
	Dispatch(ctx context.Context, action controller.Action) (controller.Result, error)
	Snapshot(ctx context.Context) (controller.Snapshot, error)
	Activities(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, error)
	SyncNow(ctx context.Context) (remotesync.MergeSummary, error)
}

func NewRouter(agent Agent) http.Handler {
	handler := NewHandler(agent)

	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Metrics)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Get("/state", handler.State)
	router.Get("/activities", handler.Activities)

	router.Post("/habits", handler.AddHabit)
	router.Patch("/habits/{id}", handler.UpdateHabit)
	router.Delete("/habits/{id}", handler.DeleteHabit)

	router.Post("/alarm/stop", handler.StopAlarm)
	router.Post("/clock", handler.SetClock)
	router.Put("/settings", handler.UpdateSettings)
	router.Post("/sync", handler.Sync)
	router.Post("/reset", handler.Reset)

	return router
}
