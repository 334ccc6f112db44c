package presentation

import (
	"fmt"
	"io"
	"sync"

	"github.com/bensuskins/habit-hub/internal/ledger"
	"github.com/bensuskins/habit-hub/internal/models"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

// Console renders agent state as plain lines and tables on a terminal.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (console *Console) ShowAlarm(habitName string) {
	console.mu.Lock()
	defer console.mu.Unlock()

	alert := color.New(color.FgHiRed, color.Bold)
	hint := color.New(color.Faint)
	_, _ = alert.Fprintf(console.out, "⏰ Time for %s!\n", habitName)
	_, _ = hint.Fprintln(console.out, "   stop the alarm to mark it done: POST /alarm/stop")
}

func (console *Console) HideAlarm() {
	console.mu.Lock()
	defer console.mu.Unlock()

	_, _ = color.New(color.Faint).Fprintln(console.out, "alarm cleared")
}

func (console *Console) RenderHabits(habits []models.Habit) {
	console.mu.Lock()
	defer console.mu.Unlock()

	title := color.New(color.Bold, color.Underline)
	if len(habits) == 0 {
		_, _ = title.Fprintln(console.out, "Habits")
		_, _ = color.New(color.Faint, color.Italic).Fprint(console.out, " none\n\n")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("TIME", "NAME", "REPEAT")
	for _, habit := range habits {
		repeat := "no"
		if habit.Repeat {
			repeat = "daily"
		}
		tbl.AddRow(habit.Time, habit.Name, repeat)
	}
	_, _ = title.Fprintln(console.out, "Habits")
	_, _ = fmt.Fprintln(console.out, tbl)
}

func (console *Console) RenderActivities(activities []models.Activity, counts ledger.Counts) {
	console.mu.Lock()
	defer console.mu.Unlock()

	_, _ = color.New(color.Bold, color.Underline).Fprint(console.out, "Activity")
	_, _ = color.New(color.Faint).Fprintf(console.out, " - %d done, %d missed\n", counts.Completed, counts.Missed)

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, activity := range activities {
		status := color.GreenString("done")
		if activity.Outcome == models.OutcomeMissed {
			status = color.RedString("missed")
		}
		tbl.AddRow(activity.Date, activity.Time, activity.Name, status)
	}
	_, _ = fmt.Fprintln(console.out, tbl)
}

func (console *Console) Notify(message string) {
	console.mu.Lock()
	defer console.mu.Unlock()

	_, _ = color.New(color.FgYellow).Fprintln(console.out, message)
}

// Bell rings the terminal bell.
type Bell struct {
	out io.Writer
}

func NewBell(out io.Writer) *Bell {
	return &Bell{out: out}
}

func (bell *Bell) Play() error {
	if _, err := io.WriteString(bell.out, "\a"); err != nil {
		return fmt.Errorf("writing bell: %w", err)
	}
	return nil
}

func (bell *Bell) Stop() {}
