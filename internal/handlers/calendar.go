package handlers

import (
	"fmt"
	"net/http"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/bensuskins/habit-hub/internal/models"
	"github.com/bensuskins/habit-hub/internal/services"
	"github.com/go-chi/chi/v5"
)

const habitEventLength = 15 * time.Minute

type CalendarHandler struct {
	profileService *services.ProfileService
	baseURL        string
}

func NewCalendarHandler(profileService *services.ProfileService, baseURL string) *CalendarHandler {
	return &CalendarHandler{profileService: profileService, baseURL: baseURL}
}

// Feed serves the profile's scheduled habits as an iCalendar file. Repeating
// habits recur daily; the rest appear once at their next occurrence.
func (handler *CalendarHandler) Feed(w http.ResponseWriter, r *http.Request) {
	profile, err := handler.profileService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "loading calendar profile")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "inline; filename=habits.ics")
	w.Write([]byte(BuildCalendar(profile, time.Now(), handler.baseURL)))
}

func BuildCalendar(profile models.Profile, now time.Time, baseURL string) string {
	calendar := ical.NewCalendar()
	calendar.SetMethod(ical.MethodPublish)
	calendar.SetProductId("-//habit-hub//habits//EN")
	calendar.SetXWRCalName(profile.Name + " habits")

	for _, habit := range profile.ScheduledHabits {
		start, err := firstOccurrence(habit, now)
		if err != nil {
			continue
		}

		event := calendar.AddEvent(fmt.Sprintf("%s-%s@habit-hub", profile.ID, habit.ID))
		event.SetDtStampTime(habit.CreatedAt.UTC())
		event.SetStartAt(start)
		event.SetEndAt(start.Add(habitEventLength))
		event.SetSummary(habit.Name)
		event.SetDescription(fmt.Sprintf("Category: %s", habit.Category))
		if baseURL != "" {
			event.SetURL(fmt.Sprintf("%s/profiles/%s", baseURL, profile.ID))
		}
		if habit.Active {
			event.AddRrule("FREQ=DAILY")
		}
	}

	return calendar.Serialize()
}

// firstOccurrence places the habit on the day it was created, or on the next
// day its time comes round for one-off habits.
func firstOccurrence(habit models.ScheduledHabit, now time.Time) (time.Time, error) {
	clock, err := time.Parse("15:04", habit.Time)
	if err != nil {
		return time.Time{}, err
	}

	day := now
	if habit.Active && !habit.CreatedAt.IsZero() {
		day = habit.CreatedAt.In(now.Location())
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())
	if !habit.Active && start.Before(now) {
		start = start.AddDate(0, 0, 1)
	}
	return start, nil
}
