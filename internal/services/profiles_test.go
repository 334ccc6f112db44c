package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bensuskins/habit-hub/internal/apperr"
	"github.com/bensuskins/habit-hub/internal/models"
	"github.com/bensuskins/habit-hub/internal/repository"
	"github.com/bensuskins/habit-hub/internal/services"
	"github.com/bensuskins/habit-hub/internal/testutil"
)

func newProfileService(t *testing.T) *services.ProfileService {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	return services.NewProfileService(
		repository.NewProfileRepository(db),
		repository.NewScheduledHabitRepository(db),
		repository.NewHistoryRepository(db),
	)
}

func register(t *testing.T, service *services.ProfileService, email string) models.Profile {
	t.Helper()
	profile, err := service.Register(context.Background(), services.Registration{Name: "Ana", Email: email, Password: "pw"})
	if err != nil {
		t.Fatalf("registering: %v", err)
	}
	return profile
}

func TestProfileService_Register(t *testing.T) {
	service := newProfileService(t)
	register(t, service, "ana@example.com")

	tests := []struct {
		name         string
		registration services.Registration
		validation   bool
		expected     error
	}{
		{name: "missing name", registration: services.Registration{Email: "x@example.com", Password: "pw"}, validation: true},
		{name: "bad email", registration: services.Registration{Name: "X", Email: "not-an-email", Password: "pw"}, validation: true},
		{name: "missing password", registration: services.Registration{Name: "X", Email: "x@example.com"}, validation: true},
		{name: "taken email", registration: services.Registration{Name: "X", Email: " ANA@example.com ", Password: "pw"}, expected: services.ErrEmailTaken},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := service.Register(context.Background(), test.registration)
			if test.validation && !apperr.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
			if test.expected != nil && !errors.Is(err, test.expected) {
				t.Errorf("expected %v, got %v", test.expected, err)
			}
		})
	}
}

func TestProfileService_Login(t *testing.T) {
	service := newProfileService(t)
	created := register(t, service, "login@example.com")
	ctx := context.Background()

	profile, err := service.Login(ctx, "Login@Example.com", "pw")
	if err != nil {
		t.Fatalf("logging in: %v", err)
	}
	if profile.ID != created.ID {
		t.Errorf("expected profile %s, got %s", created.ID, profile.ID)
	}

	if _, err := service.Login(ctx, "login@example.com", "wrong"); !errors.Is(err, services.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := service.Login(ctx, "nobody@example.com", "pw"); !errors.Is(err, services.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestProfileService_UpdatePartialFields(t *testing.T) {
	service := newProfileService(t)
	profile := register(t, service, "update@example.com")
	register(t, service, "other@example.com")
	ctx := context.Background()

	name := "Ana Maria"
	updated, err := service.Update(ctx, profile.ID, services.ProfileUpdate{Name: &name})
	if err != nil {
		t.Fatalf("updating name: %v", err)
	}
	if updated.Name != "Ana Maria" || updated.Email != "update@example.com" {
		t.Errorf("expected only the name to change, got %+v", updated)
	}

	taken := "other@example.com"
	if _, err := service.Update(ctx, profile.ID, services.ProfileUpdate{Email: &taken}); !errors.Is(err, services.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	habits := []models.ScheduledHabit{{ID: "h1", Name: "Read", Time: "9:00", Active: true}}
	updated, err = service.Update(ctx, profile.ID, services.ProfileUpdate{ScheduledHabits: &habits})
	if err != nil {
		t.Fatalf("replacing habits: %v", err)
	}
	if len(updated.ScheduledHabits) != 1 || updated.ScheduledHabits[0].Time != "09:00" || updated.ScheduledHabits[0].Category != services.DefaultCategory {
		t.Errorf("expected normalized replaced habit, got %+v", updated.ScheduledHabits)
	}

	password := "new-pw"
	if _, err := service.Update(ctx, profile.ID, services.ProfileUpdate{Password: &password}); err != nil {
		t.Fatalf("updating password: %v", err)
	}
	if _, err := service.Login(ctx, "update@example.com", "new-pw"); err != nil {
		t.Errorf("expected login with new password, got %v", err)
	}

	if _, err := service.Update(ctx, "missing", services.ProfileUpdate{Name: &name}); !errors.Is(err, services.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfileService_ScheduledHabits(t *testing.T) {
	service := newProfileService(t)
	profile := register(t, service, "habits@example.com")
	ctx := context.Background()

	created, err := service.AddScheduledHabit(ctx, profile.ID, models.ScheduledHabit{ID: "local-1", Name: "Walk", Time: "7:30"})
	if err != nil {
		t.Fatalf("adding habit: %v", err)
	}
	if created.ID != "local-1" || created.Time != "07:30" {
		t.Errorf("unexpected habit %+v", created)
	}

	if _, err := service.AddScheduledHabit(ctx, profile.ID, models.ScheduledHabit{Name: "Bad", Time: "24:00"}); !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}

	deleted, err := service.RemoveScheduledHabit(ctx, profile.ID, "Walk", "7:30")
	if err != nil {
		t.Fatalf("removing habit: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}

	if _, err := service.AddScheduledHabit(ctx, "missing", models.ScheduledHabit{Name: "Walk", Time: "07:30"}); !errors.Is(err, services.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfileService_CompletedHistoryRemovesOneOffHabit(t *testing.T) {
	service := newProfileService(t)
	profile := register(t, service, "history@example.com")
	ctx := context.Background()

	service.AddScheduledHabit(ctx, profile.ID, models.ScheduledHabit{ID: "once", Name: "Dentist", Time: "10:00", Active: false})
	service.AddScheduledHabit(ctx, profile.ID, models.ScheduledHabit{ID: "daily", Name: "Floss", Time: "22:00", Active: true})

	tests := []struct {
		name    string
		habitID string
		status  models.HistoryStatus
	}{
		{name: "missed keeps habit", habitID: "once", status: models.HistoryStatusMissed},
		{name: "completed repeating keeps habit", habitID: "daily", status: models.HistoryStatusCompleted},
		{name: "completed one-off removes habit", habitID: "once", status: models.HistoryStatusCompleted},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := service.AddHistoryEntry(ctx, profile.ID, models.HistoryEntry{
				HabitID: test.habitID, Name: "x", Time: "10:00", Status: test.status, RecordedAt: time.Now(),
			})
			if err != nil {
				t.Fatalf("adding history: %v", err)
			}
		})
	}

	loaded, err := service.Get(ctx, profile.ID)
	if err != nil {
		t.Fatalf("getting profile: %v", err)
	}
	if len(loaded.ScheduledHabits) != 1 || loaded.ScheduledHabits[0].ID != "daily" {
		t.Errorf("expected only the daily habit to remain, got %+v", loaded.ScheduledHabits)
	}
	if len(loaded.History) != 3 {
		t.Errorf("expected 3 history entries, got %d", len(loaded.History))
	}

	_, err = service.AddHistoryEntry(ctx, profile.ID, models.HistoryEntry{Name: "x", Time: "10:00", Status: "done"})
	if !apperr.IsValidation(err) {
		t.Errorf("expected validation error for unknown status, got %v", err)
	}
}

func TestProfileService_StatsAndDelete(t *testing.T) {
	service := newProfileService(t)
	profile := register(t, service, "stats@example.com")
	register(t, service, "stats2@example.com")
	ctx := context.Background()

	service.AddHistoryEntry(ctx, profile.ID, models.HistoryEntry{Name: "Read", Time: "08:00", Status: models.HistoryStatusCompleted, RecordedAt: time.Now()})
	service.AddHistoryEntry(ctx, profile.ID, models.HistoryEntry{Name: "Read", Time: "08:00", Status: models.HistoryStatusMissed, RecordedAt: time.Now().Add(-72 * time.Hour)})

	stats, err := service.Stats(ctx, time.Now())
	if err != nil {
		t.Fatalf("collecting stats: %v", err)
	}
	expected := models.AdminStats{TotalProfiles: 2, TotalHistory: 2, CompletedHistory: 1, HistoryToday: 1}
	if stats != expected {
		t.Errorf("expected %+v, got %+v", expected, stats)
	}

	if err := service.Delete(ctx, profile.ID); err != nil {
		t.Fatalf("deleting profile: %v", err)
	}
	if err := service.Delete(ctx, profile.ID); !errors.Is(err, services.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}
