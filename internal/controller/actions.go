package controller

import (
	"context"

	"github.com/bensuskins/habit-hub/internal/alarm"
	"github.com/bensuskins/habit-hub/internal/apperr"
	"github.com/bensuskins/habit-hub/internal/clock"
	"github.com/bensuskins/habit-hub/internal/habits"
	"github.com/bensuskins/habit-hub/internal/ledger"
	"github.com/bensuskins/habit-hub/internal/models"
	"github.com/bensuskins/habit-hub/internal/remotesync"
)

type ActionKind string

const (
	ActionAddHabit       ActionKind = "add_habit"
	ActionUpdateHabit    ActionKind = "update_habit"
	ActionDeleteHabit    ActionKind = "delete_habit"
	ActionStopAlarm      ActionKind = "stop_alarm"
	ActionSetClock       ActionKind = "set_clock"
	ActionUpdateSettings ActionKind = "update_settings"
	ActionApplyProfile   ActionKind = "apply_profile"
	ActionReset          ActionKind = "reset"
)

type Action struct {
	Kind     ActionKind
	HabitID  string
	Name     string
	Time     string
	Field    habits.Field
	Value    string
	Settings *models.Settings
	Profile  *models.Profile
}

type Result struct {
	Habit *models.Habit `json:"habit,omitempty"`

	// RingsTomorrow is set when a new habit's time has already passed today.
	RingsTomorrow bool                     `json:"ringsTomorrow,omitempty"`
	Deleted       bool                     `json:"deleted,omitempty"`
	Stopped       bool                     `json:"stopped,omitempty"`
	Merge         *remotesync.MergeSummary `json:"merge,omitempty"`
}

type route struct {
	handle   func(action Action) (Result, error)
	persists bool
}

func (controller *Controller) dispatchTable() map[ActionKind]route {
	return map[ActionKind]route{
		ActionAddHabit:       {handle: controller.addHabit, persists: true},
		ActionUpdateHabit:    {handle: controller.updateHabit, persists: true},
		ActionDeleteHabit:    {handle: controller.deleteHabit, persists: true},
		ActionStopAlarm:      {handle: controller.stopAlarm},
		ActionSetClock:       {handle: controller.setClock},
		ActionUpdateSettings: {handle: controller.updateSettings},
		ActionApplyProfile:   {handle: controller.applyProfile},
		ActionReset:          {handle: controller.reset},
	}
}

func (controller *Controller) addHabit(action Action) (Result, error) {
	habit, err := controller.store.Add(action.Name, action.Time)
	if err != nil {
		return Result{}, err
	}

	if controller.syncer != nil {
		controller.syncer.PushCreate(habit)
	}
	controller.presenter.RenderHabits(controller.store.List())

	result := Result{Habit: &habit}
	if habit.Time < controller.clock.HourMinute() {
		result.RingsTomorrow = true
		controller.presenter.Notify("That time has already passed today, the alarm will ring tomorrow.")
	}
	return result, nil
}

func (controller *Controller) updateHabit(action Action) (Result, error) {
	before, _ := controller.store.Get(action.HabitID)
	updated, err := controller.store.Update(action.HabitID, action.Field, action.Value)
	if err != nil {
		// redraw the last committed list over the rejected edit
		controller.presenter.RenderHabits(controller.store.List())
		return Result{}, err
	}

	if controller.syncer != nil && updated != before {
		controller.syncer.PushEdit(before, updated)
	}
	controller.presenter.RenderHabits(controller.store.List())
	return Result{Habit: &updated}, nil
}

func (controller *Controller) deleteHabit(action Action) (Result, error) {
	habit, known := controller.store.Get(action.HabitID)
	deleted := controller.store.Delete(action.HabitID)

	if controller.syncer != nil && known {
		controller.syncer.PushDelete(habit)
	}
	controller.presenter.RenderHabits(controller.store.List())
	return Result{Deleted: deleted}, nil
}

func (controller *Controller) stopAlarm(Action) (Result, error) {
	return Result{Stopped: controller.engine.StopAlarm()}, nil
}

func (controller *Controller) setClock(action Action) (Result, error) {
	if err := controller.clock.SetManual(action.Time); err != nil {
		return Result{}, err
	}
	controller.presenter.Notify("Clock set to " + controller.clock.Display(controller.settings.TwelveHour))
	return Result{}, nil
}

func (controller *Controller) updateSettings(action Action) (Result, error) {
	if action.Settings == nil {
		return Result{}, apperr.Validation("settings", "settings required")
	}
	settings := *action.Settings
	switch settings.ActivityFilter {
	case "":
		settings.ActivityFilter = models.FilterAll
	case models.FilterAll, models.FilterCompleted, models.FilterMissed:
	default:
		return Result{}, apperr.Validation("activityFilter", "filter must be all, completed or missed")
	}

	controller.settings = settings
	if controller.persistence != nil {
		if err := controller.persistence.SaveSettings(settings); err != nil {
			return Result{}, err
		}
	}
	controller.presenter.RenderActivities(controller.ledger.List(settings.ActivityFilter), controller.ledger.Counts())
	return Result{}, nil
}

func (controller *Controller) applyProfile(action Action) (Result, error) {
	if action.Profile == nil {
		return Result{}, apperr.Validation("profile", "profile required")
	}

	summary := remotesync.MergeProfile(controller.store, controller.ledger, *action.Profile)
	if summary.Changed() {
		controller.persist()
		controller.presenter.RenderHabits(controller.store.List())
		controller.presenter.RenderActivities(controller.ledger.List(controller.settings.ActivityFilter), controller.ledger.Counts())
	}
	return Result{Merge: &summary}, nil
}

// reset clears every local habit, activity and setting.
func (controller *Controller) reset(Action) (Result, error) {
	if controller.engine.State() == alarm.StateRinging {
		return Result{}, apperr.Validation("alarm", "stop the ringing alarm first")
	}

	controller.store.Clear()
	controller.ledger.Clear()
	controller.settings = models.Settings{ActivityFilter: models.FilterAll}
	if controller.persistence != nil {
		if err := controller.persistence.Reset(); err != nil {
			return Result{}, err
		}
	}
	controller.presenter.RenderHabits(nil)
	return Result{}, nil
}

type Snapshot struct {
	Clock      string          `json:"clock"`
	ClockMode  clock.Mode      `json:"clockMode"`
	AlarmState alarm.State     `json:"alarmState"`
	Ringing    *alarm.Session  `json:"ringing,omitempty"`
	Habits     []models.Habit  `json:"habits"`
	Counts     ledger.Counts   `json:"counts"`
	Settings   models.Settings `json:"settings"`
	ProfileID  string          `json:"profileId,omitempty"`
}

func (controller *Controller) Snapshot(ctx context.Context) (Snapshot, error) {
	var snapshot Snapshot
	err := controller.Call(ctx, func() {
		snapshot = Snapshot{
			Clock:      controller.clock.Display(controller.settings.TwelveHour),
			ClockMode:  controller.clock.Mode(),
			AlarmState: controller.engine.State(),
			Habits:     controller.store.List(),
			Counts:     controller.ledger.Counts(),
			Settings:   controller.settings,
		}
		if session, ok := controller.engine.Session(); ok {
			snapshot.Ringing = &session
		}
		if controller.syncer != nil {
			snapshot.ProfileID = controller.syncer.ProfileID()
		}
	})
	return snapshot, err
}

// Activities lists history newest first. An empty filter uses the saved one.
func (controller *Controller) Activities(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, error) {
	var activities []models.Activity
	err := controller.Call(ctx, func() {
		if filter == "" {
			filter = controller.settings.ActivityFilter
		}
		activities = controller.ledger.List(filter)
	})
	return activities, err
}
