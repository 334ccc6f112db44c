package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bensuskins/habit-hub/internal/alarm"
	"github.com/bensuskins/habit-hub/internal/clock"
	"github.com/bensuskins/habit-hub/internal/habits"
	"github.com/bensuskins/habit-hub/internal/ledger"
	"github.com/bensuskins/habit-hub/internal/localstore"
	"github.com/bensuskins/habit-hub/internal/models"
	"github.com/bensuskins/habit-hub/internal/remotesync"
	"github.com/bensuskins/habit-hub/internal/scheduler"
)

var (
	ErrStopped       = errors.New("controller stopped")
	ErrUnknownAction = errors.New("unknown action")
)

// Presenter is everything the controller shows to the user.
type Presenter interface {
	alarm.Presenter
	RenderHabits(habits []models.Habit)
	RenderActivities(activities []models.Activity, counts ledger.Counts)
	Notify(message string)
}

// Syncer pushes local changes to the remote profile store and pulls it back.
type Syncer interface {
	Enabled() bool
	ProfileID() string
	PushCreate(habit models.Habit)
	PushDelete(habit models.Habit)
	PushEdit(before, after models.Habit)
	PushHistory(activity models.Activity, recordedAt time.Time)
	SyncNow(ctx context.Context, local []models.Habit) (models.Profile, error)
}

type Options struct {
	Clock       *clock.Clock
	Persistence localstore.Persistence
	Syncer      Syncer
	Presenter   Presenter
	Chime       alarm.Chime

	// Scheduler defaults to real timers delivered on the event loop.
	Scheduler    scheduler.Scheduler
	TickInterval time.Duration
	RingTimeout  time.Duration
}

// Controller owns the agent state. Every change runs on the single goroutine
// started by Run, so handlers never overlap.
type Controller struct {
	clock       *clock.Clock
	store       *habits.Store
	ledger      *ledger.Ledger
	engine      *alarm.Engine
	persistence localstore.Persistence
	syncer      Syncer
	presenter   Presenter
	settings    models.Settings
	routes      map[ActionKind]route

	events  chan func()
	stopped chan struct{}
}

func New(options Options) *Controller {
	controller := &Controller{
		clock:       options.Clock,
		store:       habits.NewStore(),
		ledger:      ledger.New(),
		persistence: options.Persistence,
		syncer:      options.Syncer,
		presenter:   options.Presenter,
		settings:    models.Settings{ActivityFilter: models.FilterAll},
		events:      make(chan func(), 64),
		stopped:     make(chan struct{}),
	}
	if controller.clock == nil {
		controller.clock = clock.New(nil)
	}
	if controller.presenter == nil {
		controller.presenter = silentPresenter{}
	}

	sched := options.Scheduler
	if sched == nil {
		sched = scheduler.NewLoop(controller.post)
	}

	controller.engine = alarm.NewEngine(alarm.Dependencies{
		Clock:        controller.clock,
		Store:        controller.store,
		Ledger:       controller.ledger,
		Scheduler:    sched,
		Presenter:    controller.presenter,
		Chime:        options.Chime,
		TickInterval: options.TickInterval,
		RingTimeout:  options.RingTimeout,
		OnResolved:   controller.onResolved,
	})
	controller.routes = controller.dispatchTable()
	return controller
}

// Load restores persisted state. Call it before Run.
func (controller *Controller) Load() error {
	if controller.persistence == nil {
		return nil
	}

	storedHabits, err := controller.persistence.LoadHabits()
	if err != nil {
		return fmt.Errorf("loading habits: %w", err)
	}
	if assigned := controller.store.Load(storedHabits); assigned > 0 {
		slog.Info("assigned ids to stored habits", "count", assigned)
		controller.persist()
	}

	activities, err := controller.persistence.LoadActivities()
	if err != nil {
		return fmt.Errorf("loading activities: %w", err)
	}
	controller.ledger.Load(activities)

	settings, err := controller.persistence.LoadSettings()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	controller.settings = settings

	slog.Info("loaded local state", "habits", controller.store.Len(), "activities", controller.ledger.Len())
	return nil
}

// Run starts the alarm tick and processes events until ctx is done.
func (controller *Controller) Run(ctx context.Context) {
	controller.engine.Start()
	controller.presenter.RenderHabits(controller.store.List())

	for {
		select {
		case <-ctx.Done():
			controller.engine.Shutdown()
			close(controller.stopped)
			return
		case event := <-controller.events:
			event()
		}
	}
}

// Call runs fn on the event loop and waits for it to finish.
func (controller *Controller) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	event := func() {
		defer close(done)
		fn()
	}

	select {
	case controller.events <- event:
	case <-controller.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-controller.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch runs one user action on the event loop.
func (controller *Controller) Dispatch(ctx context.Context, action Action) (Result, error) {
	route, ok := controller.routes[action.Kind]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownAction, action.Kind)
	}

	// buffered so a handler that runs after the caller gave up never blocks
	outcome := make(chan dispatchOutcome, 1)
	err := controller.Call(ctx, func() {
		result, err := route.handle(action)
		if err == nil && route.persists {
			controller.persist()
		}
		outcome <- dispatchOutcome{result: result, err: err}
	})
	if err != nil {
		return Result{}, err
	}
	done := <-outcome
	return done.result, done.err
}

type dispatchOutcome struct {
	result Result
	err    error
}

// SyncNow pushes local habits the remote lacks, then merges the reloaded
// profile. The network calls run off the event loop.
func (controller *Controller) SyncNow(ctx context.Context) (remotesync.MergeSummary, error) {
	if controller.syncer == nil || !controller.syncer.Enabled() {
		return remotesync.MergeSummary{}, remotesync.ErrNoProfile
	}

	var local []models.Habit
	if err := controller.Call(ctx, func() { local = controller.store.List() }); err != nil {
		return remotesync.MergeSummary{}, err
	}

	profile, syncErr := controller.syncer.SyncNow(ctx, local)
	if profile.ID == "" && syncErr != nil {
		return remotesync.MergeSummary{}, syncErr
	}

	result, err := controller.Dispatch(ctx, Action{Kind: ActionApplyProfile, Profile: &profile})
	if err != nil {
		return remotesync.MergeSummary{}, err
	}
	return *result.Merge, syncErr
}

// ApplyProfile merges a pulled profile into local state.
func (controller *Controller) ApplyProfile(ctx context.Context, profile models.Profile) (remotesync.MergeSummary, error) {
	result, err := controller.Dispatch(ctx, Action{Kind: ActionApplyProfile, Profile: &profile})
	if err != nil {
		return remotesync.MergeSummary{}, err
	}
	return *result.Merge, nil
}

// post queues fn without waiting. Events posted after Run returns are dropped.
func (controller *Controller) post(fn func()) {
	select {
	case controller.events <- fn:
	case <-controller.stopped:
	}
}

func (controller *Controller) persist() {
	if controller.persistence == nil {
		return
	}
	if err := controller.persistence.SaveHabits(controller.store.List()); err != nil {
		slog.Error("saving habits", "error", err)
	}
	if err := controller.persistence.SaveActivities(controller.ledger.All()); err != nil {
		slog.Error("saving activities", "error", err)
	}
}

func (controller *Controller) onResolved(resolution alarm.Resolution) {
	controller.persist()

	if controller.syncer != nil && resolution.Result == ledger.Inserted {
		controller.syncer.PushHistory(resolution.Activity, controller.clock.Wall())
	}
	if controller.syncer != nil && resolution.Removed {
		controller.syncer.PushDelete(resolution.Habit)
	}

	controller.presenter.RenderHabits(controller.store.List())
	controller.presenter.RenderActivities(controller.ledger.List(controller.settings.ActivityFilter), controller.ledger.Counts())
}

type silentPresenter struct{}

func (silentPresenter) ShowAlarm(string)                                  {}
func (silentPresenter) HideAlarm()                                        {}
func (silentPresenter) RenderHabits([]models.Habit)                       {}
func (silentPresenter) RenderActivities([]models.Activity, ledger.Counts) {}
func (silentPresenter) Notify(string)                                     {}
