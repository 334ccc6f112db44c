package models

import "time"

type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeMissed    Outcome = "missed"
)

// Habit is a locally scheduled daily reminder. Time is always normalized "HH:MM".
type Habit struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Time   string `json:"time"`
	Repeat bool   `json:"repeat"`
}

// Activity is one resolved alarm. Date is the wall-clock calendar day.
type Activity struct {
	HabitID string  `json:"habitId"`
	Name    string  `json:"name"`
	Time    string  `json:"time"`
	Outcome Outcome `json:"outcome"`
	Date    string  `json:"date"`
}

type ActivityFilter string

const (
	FilterAll       ActivityFilter = "all"
	FilterCompleted ActivityFilter = "completed"
	FilterMissed    ActivityFilter = "missed"
)

type Settings struct {
	TwelveHour     bool           `json:"twelveHour"`
	ActivityFilter ActivityFilter `json:"activityFilter"`
}

type HistoryStatus string

const (
	HistoryStatusCompleted HistoryStatus = "completed"
	HistoryStatusMissed    HistoryStatus = "missed"
)

type Profile struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Email           string           `json:"email"`
	PasswordHash    string           `json:"-"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	ScheduledHabits []ScheduledHabit `json:"scheduledHabits"`
	History         []HistoryEntry   `json:"history"`
}

// ScheduledHabit is the remote copy of a Habit. Active mirrors Habit.Repeat.
type ScheduledHabit struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profileId"`
	Name      string    `json:"name"`
	Time      string    `json:"time"`
	Category  string    `json:"category"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

type HistoryEntry struct {
	ID         string        `json:"id"`
	ProfileID  string        `json:"profileId"`
	HabitID    string        `json:"habitId,omitempty"`
	Name       string        `json:"name"`
	Time       string        `json:"time"`
	Status     HistoryStatus `json:"status"`
	RecordedAt time.Time     `json:"recordedAt"`
}

type AdminStats struct {
	TotalProfiles    int `json:"totalProfiles"`
	TotalHistory     int `json:"totalHistory"`
	CompletedHistory int `json:"completedHistory"`
	HistoryToday     int `json:"historyToday"`
}
