package repository_test

import (
	"context"
	"testing"

	"github.com/bensuskins/habit-hub/internal/models"
	"github.com/bensuskins/habit-hub/internal/repository"
	"github.com/bensuskins/habit-hub/internal/testutil"
)

func TestScheduledHabitRepository_CreateKeepsGivenID(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	profile := createProfile(t, repository.NewProfileRepository(db), "habits@example.com")
	repo := repository.NewScheduledHabitRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.ScheduledHabit{
		ID: "1717000000000-abcd1234", ProfileID: profile.ID, Name: "Read", Time: "21:00", Category: "health", Active: true,
	})
	if err != nil {
		t.Fatalf("creating habit: %v", err)
	}
	if created.ID != "1717000000000-abcd1234" {
		t.Errorf("expected given id, got '%s'", created.ID)
	}

	generated, err := repo.Create(ctx, models.ScheduledHabit{ProfileID: profile.ID, Name: "Walk", Time: "07:00", Category: "health"})
	if err != nil {
		t.Fatalf("creating habit: %v", err)
	}
	if generated.ID == "" {
		t.Error("expected generated id")
	}

	habits, err := repo.FindByProfile(ctx, profile.ID)
	if err != nil {
		t.Fatalf("finding habits: %v", err)
	}
	if len(habits) != 2 || habits[0].Name != "Walk" {
		t.Errorf("expected habits ordered by time, got %+v", habits)
	}
	if !habits[1].Active {
		t.Error("expected active flag to round-trip")
	}
}

func TestScheduledHabitRepository_CreateReplacesSameID(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	profile := createProfile(t, repository.NewProfileRepository(db), "replace@example.com")
	repo := repository.NewScheduledHabitRepository(db)
	ctx := context.Background()

	repo.Create(ctx, models.ScheduledHabit{ID: "h1", ProfileID: profile.ID, Name: "Read", Time: "21:00", Category: "health"})
	repo.Create(ctx, models.ScheduledHabit{ID: "h1", ProfileID: profile.ID, Name: "Read more", Time: "21:30", Category: "health"})

	habits, _ := repo.FindByProfile(ctx, profile.ID)
	if len(habits) != 1 || habits[0].Name != "Read more" {
		t.Errorf("expected single replaced habit, got %+v", habits)
	}
}

func TestScheduledHabitRepository_DeleteByMatch(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	profile := createProfile(t, repository.NewProfileRepository(db), "match@example.com")
	repo := repository.NewScheduledHabitRepository(db)
	ctx := context.Background()

	repo.Create(ctx, models.ScheduledHabit{ProfileID: profile.ID, Name: "Read", Time: "21:00", Category: "health"})
	repo.Create(ctx, models.ScheduledHabit{ProfileID: profile.ID, Name: "Read", Time: "22:00", Category: "health"})

	tests := []struct {
		name     string
		habit    string
		time     string
		expected int64
	}{
		{name: "matching pair", habit: "Read", time: "21:00", expected: 1},
		{name: "already gone", habit: "Read", time: "21:00", expected: 0},
		{name: "name alone does not match", habit: "Read", time: "23:00", expected: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			deleted, err := repo.DeleteByMatch(ctx, profile.ID, test.habit, test.time)
			if err != nil {
				t.Fatalf("deleting: %v", err)
			}
			if deleted != test.expected {
				t.Errorf("expected %d deleted, got %d", test.expected, deleted)
			}
		})
	}
}

func TestScheduledHabitRepository_ReplaceForProfile(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	profile := createProfile(t, repository.NewProfileRepository(db), "list@example.com")
	repo := repository.NewScheduledHabitRepository(db)
	ctx := context.Background()

	repo.Create(ctx, models.ScheduledHabit{ProfileID: profile.ID, Name: "Old", Time: "06:00", Category: "health"})

	err := repo.ReplaceForProfile(ctx, profile.ID, []models.ScheduledHabit{
		{ID: "n1", Name: "New", Time: "09:00", Category: "health", Active: true},
	})
	if err != nil {
		t.Fatalf("replacing habits: %v", err)
	}

	habits, _ := repo.FindByProfile(ctx, profile.ID)
	if len(habits) != 1 || habits[0].ID != "n1" || habits[0].ProfileID != profile.ID {
		t.Errorf("expected replaced list, got %+v", habits)
	}
}
