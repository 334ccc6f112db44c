package clock

import (
	"strings"
	"time"

	"github.com/bensuskins/habit-hub/internal/apperr"
	"github.com/bensuskins/habit-hub/internal/habits"
)

type Mode string

const (
	ModeReal   Mode = "real"
	ModeManual Mode = "manual"
)

// Clock is the time source of the alarm engine. In manual mode it only moves
// when Advance is called, once per engine tick. It is not safe for
// concurrent use; the controller loop owns it.
type Clock struct {
	wall   func() time.Time
	mode   Mode
	manual time.Time
}

func New(wall func() time.Time) *Clock {
	if wall == nil {
		wall = time.Now
	}
	return &Clock{wall: wall, mode: ModeReal}
}

func (clock *Clock) Mode() Mode {
	return clock.mode
}

func (clock *Clock) Now() time.Time {
	if clock.mode == ModeManual {
		return clock.manual
	}
	return clock.wall()
}

// Wall always reports real time, whatever the mode.
func (clock *Clock) Wall() time.Time {
	return clock.wall()
}

// SetManual seeds the simulated clock at today's date and the given "HH:MM".
// There is no way back to real mode within a session.
func (clock *Clock) SetManual(value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Validation("time", "time required")
	}
	normalized, err := habits.NormalizeTime(value)
	if err != nil {
		return err
	}
	parsed, err := time.Parse("15:04", normalized)
	if err != nil {
		return apperr.Validation("time", "invalid time")
	}

	today := clock.wall()
	clock.manual = time.Date(today.Year(), today.Month(), today.Day(), parsed.Hour(), parsed.Minute(), 0, 0, today.Location())
	clock.mode = ModeManual
	return nil
}

func (clock *Clock) Advance() {
	if clock.mode == ModeManual {
		clock.manual = clock.manual.Add(time.Second)
	}
}

// HourMinute is the "HH:MM" key habits are matched against.
func (clock *Clock) HourMinute() string {
	return clock.Now().Format("15:04")
}

func (clock *Clock) Display(twelveHour bool) string {
	if twelveHour {
		return clock.Now().Format("03:04:05 PM")
	}
	return clock.Now().Format("15:04:05")
}
