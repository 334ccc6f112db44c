package server

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bensuskins/habit-hub/internal/config"
	"github.com/bensuskins/habit-hub/internal/handlers"
	"github.com/bensuskins/habit-hub/internal/middleware"
	"github.com/bensuskins/habit-hub/internal/repository"
	"github.com/bensuskins/habit-hub/internal/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	router *chi.Mux
	config config.Config
}

func New(database *sql.DB, cfg config.Config) *Server {
	profileRepo := repository.NewProfileRepository(database)
	habitRepo := repository.NewScheduledHabitRepository(database)
	historyRepo := repository.NewHistoryRepository(database)

	profileService := services.NewProfileService(profileRepo, habitRepo, historyRepo)
	adminAuth := services.NewAdminAuth(cfg.SessionSecret, cfg.AdminUser, cfg.AdminPassword)

	profileHandler := handlers.NewProfileHandler(profileService)
	adminHandler := handlers.NewAdminHandler(adminAuth, profileService)
	calendarHandler := handlers.NewCalendarHandler(profileService, cfg.BaseURL)

	router := chi.NewRouter()

	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Metrics)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Post("/profiles", profileHandler.Register)
	router.Post("/profiles/login", profileHandler.Login)
	router.Get("/profiles/{id}", profileHandler.Get)
	router.Put("/profiles/{id}", profileHandler.Update)
	router.Post("/profiles/{id}/scheduled-habits", profileHandler.AddScheduledHabit)
	router.Delete("/profiles/{id}/scheduled-habits", profileHandler.RemoveScheduledHabit)
	router.Post("/profiles/{id}/history", profileHandler.AddHistoryEntry)
	router.Get("/profiles/{id}/calendar.ics", calendarHandler.Feed)

	router.Post("/admin/access", adminHandler.Access)
	router.Post("/admin/logout", adminHandler.Logout)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(adminAuth))

		r.Get("/profiles", profileHandler.List)
		r.Delete("/profiles/{id}", profileHandler.Delete)

		r.Get("/admin/profiles", adminHandler.Profiles)
		r.Put("/admin/profiles/{id}", adminHandler.UpdateProfile)
		r.Delete("/admin/profiles/{id}", adminHandler.DeleteProfile)
		r.Get("/admin/stats", adminHandler.Stats)
	})

	server := &Server{
		router: router,
		config: cfg,
	}

	return server
}

func (server *Server) Handler() http.Handler {
	return server.router
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (server *Server) Start(ctx context.Context) error {
	return ListenAndServe(ctx, ":"+server.config.Port, server.router)
}

func ListenAndServe(ctx context.Context, address string, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		slog.Info("starting server", "address", address)
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server", "address", address)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
