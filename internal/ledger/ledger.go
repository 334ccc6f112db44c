package ledger

import (
	"time"

	"github.com/bensuskins/habit-hub/internal/models"
)

// DateLayout is the calendar-day key of every activity (day/month/year).
const DateLayout = "02/01/2006"

type Result int

const (
	Inserted Result = iota
	Duplicate
)

func (result Result) String() string {
	if result == Duplicate {
		return "duplicate"
	}
	return "inserted"
}

type Counts struct {
	Completed int `json:"completed"`
	Missed    int `json:"missed"`
}

// Ledger is the append-only activity history. It holds at most one record per
// habit per calendar day. Not safe for concurrent use.
type Ledger struct {
	activities []models.Activity
}

func New() *Ledger {
	return &Ledger{}
}

func DateOf(moment time.Time) string {
	return moment.Format(DateLayout)
}

// Record appends the outcome of a habit's alarm for the day of wall. A second
// record for the same habit and day is refused and reported as Duplicate.
func (ledger *Ledger) Record(habit models.Habit, outcome models.Outcome, wall time.Time) (models.Activity, Result) {
	date := DateOf(wall)
	if existing, ok := ledger.find(habit.ID, date); ok {
		return existing, Duplicate
	}

	activity := models.Activity{
		HabitID: habit.ID,
		Name:    habit.Name,
		Time:    habit.Time,
		Outcome: outcome,
		Date:    date,
	}
	ledger.activities = append(ledger.activities, activity)
	return activity, Inserted
}

func (ledger *Ledger) Logged(habitID string, wall time.Time) bool {
	_, ok := ledger.find(habitID, DateOf(wall))
	return ok
}

// Merge adds a remote history record unless the ledger already holds one for
// the same habit and day.
func (ledger *Ledger) Merge(activity models.Activity) bool {
	if activity.HabitID == "" || activity.Date == "" {
		return false
	}
	if _, ok := ledger.find(activity.HabitID, activity.Date); ok {
		return false
	}
	ledger.activities = append(ledger.activities, activity)
	return true
}

// List returns activities newest first, narrowed by filter.
func (ledger *Ledger) List(filter models.ActivityFilter) []models.Activity {
	list := make([]models.Activity, 0, len(ledger.activities))
	for i := len(ledger.activities) - 1; i >= 0; i-- {
		activity := ledger.activities[i]
		switch filter {
		case models.FilterCompleted:
			if activity.Outcome != models.OutcomeCompleted {
				continue
			}
		case models.FilterMissed:
			if activity.Outcome != models.OutcomeMissed {
				continue
			}
		}
		list = append(list, activity)
	}
	return list
}

// All returns activities in the order they were recorded.
func (ledger *Ledger) All() []models.Activity {
	list := make([]models.Activity, len(ledger.activities))
	copy(list, ledger.activities)
	return list
}

func (ledger *Ledger) Counts() Counts {
	var counts Counts
	for _, activity := range ledger.activities {
		switch activity.Outcome {
		case models.OutcomeCompleted:
			counts.Completed++
		case models.OutcomeMissed:
			counts.Missed++
		}
	}
	return counts
}

func (ledger *Ledger) Len() int {
	return len(ledger.activities)
}

// Load replaces the contents with persisted activities, dropping any record
// that repeats a habit and day already loaded.
func (ledger *Ledger) Load(list []models.Activity) {
	ledger.activities = nil
	for _, activity := range list {
		if _, ok := ledger.find(activity.HabitID, activity.Date); ok {
			continue
		}
		ledger.activities = append(ledger.activities, activity)
	}
}

func (ledger *Ledger) Clear() {
	ledger.activities = nil
}

func (ledger *Ledger) find(habitID, date string) (models.Activity, bool) {
	for _, activity := range ledger.activities {
		if activity.HabitID == habitID && activity.Date == date {
			return activity, true
		}
	}
	return models.Activity{}, false
}
