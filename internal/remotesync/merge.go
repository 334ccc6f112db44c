package remotesync

import (
	"log/slog"
	"time"

	"github.com/bensuskins/habit-hub/internal/habits"
	"github.com/bensuskins/habit-hub/internal/ledger"
	"github.com/bensuskins/habit-hub/internal/models"
)

type MergeSummary struct {
	HabitsAdded   int `json:"habitsAdded"`
	HabitsSkipped int `json:"habitsSkipped"`
	HistoryAdded  int `json:"historyAdded"`
}

func (summary MergeSummary) Changed() bool {
	return summary.HabitsAdded > 0 || summary.HistoryAdded > 0
}

// MergeProfile adds remote habits and history that are not known locally.
// Nothing local is ever removed or overwritten.
func MergeProfile(store *habits.Store, activities *ledger.Ledger, profile models.Profile) MergeSummary {
	var summary MergeSummary

	for _, scheduled := range profile.ScheduledHabits {
		switch store.Merge(ToHabit(scheduled)) {
		case habits.MergeAdded:
			summary.HabitsAdded++
		case habits.MergeConflict, habits.MergeInvalid:
			summary.HabitsSkipped++
			slog.Warn("skipping remote habit", "id", scheduled.ID, "name", scheduled.Name, "time", scheduled.Time)
		}
	}

	for _, entry := range profile.History {
		if activities.Merge(ToActivity(entry)) {
			summary.HistoryAdded++
		}
	}

	return summary
}

func ToHabit(scheduled models.ScheduledHabit) models.Habit {
	return models.Habit{
		ID:     scheduled.ID,
		Name:   scheduled.Name,
		Time:   scheduled.Time,
		Repeat: scheduled.Active,
	}
}

func ToScheduledHabit(habit models.Habit) models.ScheduledHabit {
	return models.ScheduledHabit{
		ID:       habit.ID,
		Name:     habit.Name,
		Time:     habit.Time,
		Category: DefaultCategory,
		Active:   habit.Repeat,
	}
}

// ToActivity keys a remote record by the habit it came from, falling back to
// the record's own id for entries pushed without one.
func ToActivity(entry models.HistoryEntry) models.Activity {
	originatingID := entry.HabitID
	if originatingID == "" {
		originatingID = entry.ID
	}

	outcome := models.OutcomeMissed
	if entry.Status == models.HistoryStatusCompleted {
		outcome = models.OutcomeCompleted
	}

	return models.Activity{
		HabitID: originatingID,
		Name:    entry.Name,
		Time:    entry.Time,
		Outcome: outcome,
		Date:    ledger.DateOf(entry.RecordedAt.Local()),
	}
}

func ToHistoryEntry(activity models.Activity, recordedAt time.Time) models.HistoryEntry {
	status := models.HistoryStatusMissed
	if activity.Outcome == models.OutcomeCompleted {
		status = models.HistoryStatusCompleted
	}
	return models.HistoryEntry{
		HabitID:    activity.HabitID,
		Name:       activity.Name,
		Time:       activity.Time,
		Status:     status,
		RecordedAt: recordedAt,
	}
}
