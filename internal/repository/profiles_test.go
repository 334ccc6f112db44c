package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/bensuskins/habit-hub/internal/models"
	"github.com/bensuskins/habit-hub/internal/repository"
	"github.com/bensuskins/habit-hub/internal/testutil"
)

func createProfile(t *testing.T, repo *repository.SQLProfileRepository, email string) models.Profile {
	t.Helper()
	created, err := repo.Create(context.Background(), models.Profile{Name: "Test User", Email: email, PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("creating profile: %v", err)
	}
	return created
}

func TestProfileRepository_CreateAndFindByID(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewProfileRepository(db)
	ctx := context.Background()

	created := createProfile(t, repo, "test@example.com")
	if created.ID == "" {
		t.Fatal("expected non-empty ID")
	}

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("finding profile: %v", err)
	}
	if found.Name != "Test User" {
		t.Errorf("expected name 'Test User', got '%s'", found.Name)
	}
	if found.PasswordHash != "hash" {
		t.Errorf("expected stored hash, got '%s'", found.PasswordHash)
	}
}

func TestProfileRepository_FindByEmail(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewProfileRepository(db)

	created := createProfile(t, repo, "unique@example.com")

	found, err := repo.FindByEmail(context.Background(), "unique@example.com")
	if err != nil {
		t.Fatalf("finding profile by email: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("expected id '%s', got '%s'", created.ID, found.ID)
	}

	_, err = repo.FindByEmail(context.Background(), "missing@example.com")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestProfileRepository_DuplicateEmail(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewProfileRepository(db)

	createProfile(t, repo, "same@example.com")
	_, err := repo.Create(context.Background(), models.Profile{Name: "Other", Email: "same@example.com", PasswordHash: "x"})
	if err == nil {
		t.Error("expected unique constraint error")
	}
}

func TestProfileRepository_UpdateAndCount(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewProfileRepository(db)
	ctx := context.Background()

	created := createProfile(t, repo, "a@example.com")
	createProfile(t, repo, "b@example.com")

	created.Name = "Renamed"
	if err := repo.Update(ctx, created); err != nil {
		t.Fatalf("updating profile: %v", err)
	}
	found, _ := repo.FindByID(ctx, created.ID)
	if found.Name != "Renamed" {
		t.Errorf("expected 'Renamed', got '%s'", found.Name)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("counting: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 profiles, got %d", count)
	}

	err = repo.Update(ctx, models.Profile{ID: "missing", Name: "x", Email: "x@example.com"})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows for missing profile, got %v", err)
	}
}

func TestProfileRepository_DeleteRemovesChildren(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	profiles := repository.NewProfileRepository(db)
	habits := repository.NewScheduledHabitRepository(db)
	history := repository.NewHistoryRepository(db)
	ctx := context.Background()

	profile := createProfile(t, profiles, "gone@example.com")
	habits.Create(ctx, models.ScheduledHabit{ProfileID: profile.ID, Name: "Read", Time: "08:00", Category: "health"})
	history.Create(ctx, models.HistoryEntry{ProfileID: profile.ID, Name: "Read", Time: "08:00", Status: models.HistoryStatusMissed, RecordedAt: time.Now()})

	if err := profiles.Delete(ctx, profile.ID); err != nil {
		t.Fatalf("deleting profile: %v", err)
	}

	remaining, _ := habits.FindByProfile(ctx, profile.ID)
	if len(remaining) != 0 {
		t.Errorf("expected habits deleted, got %d", len(remaining))
	}
	entries, _ := history.FindByProfile(ctx, profile.ID)
	if len(entries) != 0 {
		t.Errorf("expected history deleted, got %d", len(entries))
	}

	if err := profiles.Delete(ctx, profile.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows deleting twice, got %v", err)
	}
}
