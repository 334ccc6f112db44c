package clock_test

import (
	"testing"
	"time"

	"github.com/bensuskins/habit-hub/internal/apperr"
	"github.com/bensuskins/habit-hub/internal/clock"
)

func fixedWall(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestClock_RealModeFollowsWall(t *testing.T) {
	wall := time.Date(2026, 3, 14, 7, 30, 12, 0, time.Local)
	c := clock.New(fixedWall(wall))

	if c.Mode() != clock.ModeReal {
		t.Fatalf("expected real mode, got %s", c.Mode())
	}
	if !c.Now().Equal(wall) {
		t.Errorf("expected %v, got %v", wall, c.Now())
	}

	c.Advance()
	if !c.Now().Equal(wall) {
		t.Error("expected advance to be a no-op in real mode")
	}
}

func TestClock_ManualNinetyTicks(t *testing.T) {
	wall := time.Date(2026, 3, 14, 17, 45, 0, 0, time.Local)
	c := clock.New(fixedWall(wall))

	if err := c.SetManual("08:00"); err != nil {
		t.Fatalf("setting manual time: %v", err)
	}
	for i := 0; i < 90; i++ {
		c.Advance()
	}

	if got := c.Display(false); got != "08:01:30" {
		t.Errorf("expected '08:01:30', got '%s'", got)
	}
	if got := c.HourMinute(); got != "08:01" {
		t.Errorf("expected '08:01', got '%s'", got)
	}
	if c.Now().Day() != 14 {
		t.Errorf("expected manual clock on today's date, got day %d", c.Now().Day())
	}
}

func TestClock_ManualDoesNotTouchWall(t *testing.T) {
	wall := time.Date(2026, 3, 14, 17, 45, 0, 0, time.Local)
	c := clock.New(fixedWall(wall))
	c.SetManual("6:5")

	if got := c.HourMinute(); got != "06:05" {
		t.Errorf("expected '06:05', got '%s'", got)
	}
	if !c.Wall().Equal(wall) {
		t.Errorf("expected wall time %v, got %v", wall, c.Wall())
	}
}

func TestClock_SetManualValidation(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "empty", value: ""},
		{name: "blank", value: "   "},
		{name: "garbage", value: "noon"},
		{name: "hour out of range", value: "25:00"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := clock.New(nil)
			err := c.SetManual(test.value)
			if !apperr.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if c.Mode() != clock.ModeReal {
				t.Error("expected clock to stay in real mode")
			}
		})
	}
}

func TestClock_EmptyValueMessage(t *testing.T) {
	err := clock.New(nil).SetManual("")
	if err == nil || err.Error() != "time: time required" {
		t.Errorf("expected 'time: time required', got %v", err)
	}
}

func TestClock_TwelveHourDisplay(t *testing.T) {
	c := clock.New(fixedWall(time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)))
	c.SetManual("21:15")

	if got := c.Display(true); got != "09:15:00 PM" {
		t.Errorf("expected '09:15:00 PM', got '%s'", got)
	}
}
