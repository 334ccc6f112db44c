package alarm

import (
	"log/slog"
	"time"

	"github.com/bensuskins/habit-hub/internal/apperr"
	"github.com/bensuskins/habit-hub/internal/clock"
	"github.com/bensuskins/habit-hub/internal/habits"
	"github.com/bensuskins/habit-hub/internal/ledger"
	"github.com/bensuskins/habit-hub/internal/metrics"
	"github.com/bensuskins/habit-hub/internal/models"
	"github.com/bensuskins/habit-hub/internal/scheduler"
)

const (
	DefaultTickInterval = time.Second
	DefaultRingTimeout  = 10 * time.Second
)

type State string

const (
	StateIdle    State = "idle"
	StateRinging State = "ringing"
)

// Presenter shows and hides the ringing alarm.
type Presenter interface {
	ShowAlarm(habitName string)
	HideAlarm()
}

// Chime is the audible cue. Play failures are logged and otherwise ignored.
type Chime interface {
	Play() error
	Stop()
}

type Session struct {
	Habit     models.Habit `json:"habit"`
	StartedAt time.Time    `json:"startedAt"`
}

type Resolution struct {
	Habit    models.Habit
	Activity models.Activity
	Outcome  models.Outcome
	Result   ledger.Result
	Removed  bool
}

type Dependencies struct {
	Clock        *clock.Clock
	Store        *habits.Store
	Ledger       *ledger.Ledger
	Scheduler    scheduler.Scheduler
	Presenter    Presenter
	Chime        Chime
	TickInterval time.Duration
	RingTimeout  time.Duration

	// OnResolved runs after every resolution, on the engine's goroutine.
	OnResolved func(Resolution)
}

// Engine raises at most one alarm at a time and resolves it as completed
// (StopAlarm inside the ring window) or missed (the window runs out). All
// methods must be called from the goroutine the scheduler delivers to.
type Engine struct {
	clock        *clock.Clock
	store        *habits.Store
	ledger       *ledger.Ledger
	scheduler    scheduler.Scheduler
	presenter    Presenter
	chime        Chime
	tickInterval time.Duration
	ringTimeout  time.Duration
	onResolved   func(Resolution)

	state   State
	session *Session
	ticker  scheduler.Handle
	timeout scheduler.Handle
}

func NewEngine(deps Dependencies) *Engine {
	engine := &Engine{
		clock:        deps.Clock,
		store:        deps.Store,
		ledger:       deps.Ledger,
		scheduler:    deps.Scheduler,
		presenter:    deps.Presenter,
		chime:        deps.Chime,
		tickInterval: deps.TickInterval,
		ringTimeout:  deps.RingTimeout,
		onResolved:   deps.OnResolved,
		state:        StateIdle,
	}
	if engine.presenter == nil {
		engine.presenter = nopPresenter{}
	}
	if engine.chime == nil {
		engine.chime = SilentChime{}
	}
	if engine.tickInterval <= 0 {
		engine.tickInterval = DefaultTickInterval
	}
	if engine.ringTimeout <= 0 {
		engine.ringTimeout = DefaultRingTimeout
	}
	return engine
}

// Start registers the tick. Calling it twice keeps a single tick.
func (engine *Engine) Start() {
	if engine.ticker != nil {
		return
	}
	engine.ticker = engine.scheduler.Every(engine.tickInterval, engine.Tick)
}

// Shutdown cancels the tick and any pending ring timeout without recording
// anything.
func (engine *Engine) Shutdown() {
	if engine.ticker != nil {
		engine.ticker.Cancel()
		engine.ticker = nil
	}
	if engine.timeout != nil {
		engine.timeout.Cancel()
		engine.timeout = nil
	}
	if engine.state == StateRinging {
		engine.chime.Stop()
	}
}

func (engine *Engine) State() State {
	return engine.state
}

func (engine *Engine) Session() (Session, bool) {
	if engine.session == nil {
		return Session{}, false
	}
	return *engine.session, true
}

// Tick advances the clock one step and, when idle, rings the first habit in
// time order that is due now and has no activity for today. Matches skipped
// while another alarm rings are not retried.
func (engine *Engine) Tick() {
	engine.clock.Advance()
	if engine.state == StateRinging {
		return
	}

	current := engine.clock.HourMinute()
	wall := engine.clock.Wall()
	for _, habit := range engine.store.List() {
		if habit.Time != current {
			continue
		}
		if engine.ledger.Logged(habit.ID, wall) {
			continue
		}
		engine.ring(habit)
		return
	}
}

// StopAlarm resolves the ringing alarm as completed. It reports false when
// nothing is ringing.
func (engine *Engine) StopAlarm() bool {
	if engine.state != StateRinging {
		return false
	}
	engine.resolve(models.OutcomeCompleted)
	return true
}

func (engine *Engine) ring(habit models.Habit) {
	engine.state = StateRinging
	engine.session = &Session{Habit: habit, StartedAt: engine.clock.Now()}
	metrics.AlarmsRaised.Inc()
	slog.Info("alarm ringing", "habit_id", habit.ID, "name", habit.Name, "time", habit.Time)

	engine.presenter.ShowAlarm(habit.Name)
	if err := engine.chime.Play(); err != nil {
		playbackErr := &apperr.PlaybackError{Err: err}
		metrics.PlaybackFailures.Inc()
		slog.Warn("alarm sound unavailable", "error", playbackErr)
	}

	engine.timeout = engine.scheduler.After(engine.ringTimeout, func() {
		engine.timeout = nil
		if engine.state == StateRinging {
			engine.resolve(models.OutcomeMissed)
		}
	})
}

func (engine *Engine) resolve(outcome models.Outcome) {
	habit := engine.session.Habit
	// edits made while ringing (such as the repeat flag) apply
	if current, ok := engine.store.Get(habit.ID); ok {
		habit = current
	}

	activity, result := engine.ledger.Record(habit, outcome, engine.clock.Wall())
	metrics.LedgerWrites.WithLabelValues(result.String()).Inc()
	if result == ledger.Duplicate {
		slog.Warn("activity already recorded today", "habit_id", habit.ID, "date", activity.Date)
	}

	removed := false
	if !habit.Repeat {
		removed = engine.store.Delete(habit.ID)
	}

	if engine.timeout != nil {
		engine.timeout.Cancel()
		engine.timeout = nil
	}
	engine.chime.Stop()
	engine.session = nil
	engine.state = StateIdle

	metrics.AlarmsResolved.WithLabelValues(string(outcome)).Inc()
	slog.Info("alarm resolved", "habit_id", habit.ID, "outcome", outcome, "removed", removed)
	engine.presenter.HideAlarm()

	if engine.onResolved != nil {
		engine.onResolved(Resolution{
			Habit:    habit,
			Activity: activity,
			Outcome:  outcome,
			Result:   result,
			Removed:  removed,
		})
	}
}

type nopPresenter struct{}

func (nopPresenter) ShowAlarm(string) {}
func (nopPresenter) HideAlarm()       {}

// SilentChime plays nothing.
type SilentChime struct{}

func (SilentChime) Play() error { return nil }
func (SilentChime) Stop()       {}
