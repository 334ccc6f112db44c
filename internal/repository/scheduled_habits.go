package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bensuskins/habit-hub/internal/models"
	"github.com/google/uuid"
)

type ScheduledHabitRepository interface {
	FindByProfile(ctx context.Context, profileID string) ([]models.ScheduledHabit, error)
	FindByID(ctx context.Context, profileID, id string) (models.ScheduledHabit, error)
	Create(ctx context.Context, habit models.ScheduledHabit) (models.ScheduledHabit, error)
	Delete(ctx context.Context, profileID, id string) error
	DeleteByMatch(ctx context.Context, profileID, name, habitTime string) (int64, error)
	ReplaceForProfile(ctx context.Context, profileID string, habits []models.ScheduledHabit) error
}

type SQLScheduledHabitRepository struct {
	database *sql.DB
}

func NewScheduledHabitRepository(database *sql.DB) *SQLScheduledHabitRepository {
	return &SQLScheduledHabitRepository{database: database}
}

const scheduledHabitColumns = "id, profile_id, name, habit_time, category, active, created_at"

func scanScheduledHabit(row interface{ Scan(...any) error }) (models.ScheduledHabit, error) {
	var habit models.ScheduledHabit
	err := row.Scan(&habit.ID, &habit.ProfileID, &habit.Name, &habit.Time, &habit.Category, &habit.Active, &habit.CreatedAt)
	return habit, err
}

func (repository *SQLScheduledHabitRepository) FindByProfile(ctx context.Context, profileID string) ([]models.ScheduledHabit, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+scheduledHabitColumns+" FROM scheduled_habits WHERE profile_id = ? ORDER BY habit_time, created_at",
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding scheduled habits: %w", err)
	}
	defer rows.Close()

	habits := []models.ScheduledHabit{}
	for rows.Next() {
		habit, err := scanScheduledHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning scheduled habit: %w", err)
		}
		habits = append(habits, habit)
	}
	return habits, rows.Err()
}

func (repository *SQLScheduledHabitRepository) FindByID(ctx context.Context, profileID, id string) (models.ScheduledHabit, error) {
	habit, err := scanScheduledHabit(repository.database.QueryRowContext(ctx,
		"SELECT "+scheduledHabitColumns+" FROM scheduled_habits WHERE profile_id = ? AND id = ?",
		profileID, id,
	))
	if err != nil {
		return models.ScheduledHabit{}, fmt.Errorf("finding scheduled habit: %w", err)
	}
	return habit, nil
}

// Create stores the habit under its own id when it has one, replacing any
// earlier copy with that id.
func (repository *SQLScheduledHabitRepository) Create(ctx context.Context, habit models.ScheduledHabit) (models.ScheduledHabit, error) {
	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return models.ScheduledHabit{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	habit, err = insertScheduledHabit(ctx, transaction, habit)
	if err != nil {
		return models.ScheduledHabit{}, err
	}
	if err := transaction.Commit(); err != nil {
		return models.ScheduledHabit{}, fmt.Errorf("committing scheduled habit: %w", err)
	}
	return habit, nil
}

func insertScheduledHabit(ctx context.Context, transaction *sql.Tx, habit models.ScheduledHabit) (models.ScheduledHabit, error) {
	if habit.ID == "" {
		habit.ID = uuid.New().String()
	}
	if habit.CreatedAt.IsZero() {
		habit.CreatedAt = time.Now().UTC()
	}

	if _, err := transaction.ExecContext(ctx,
		"DELETE FROM scheduled_habits WHERE profile_id = ? AND id = ?", habit.ProfileID, habit.ID,
	); err != nil {
		return models.ScheduledHabit{}, fmt.Errorf("replacing scheduled habit: %w", err)
	}

	_, err := transaction.ExecContext(ctx,
		"INSERT INTO scheduled_habits (id, profile_id, name, habit_time, category, active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		habit.ID, habit.ProfileID, habit.Name, habit.Time, habit.Category, habit.Active, habit.CreatedAt,
	)
	if err != nil {
		return models.ScheduledHabit{}, fmt.Errorf("creating scheduled habit: %w", err)
	}
	return habit, nil
}

func (repository *SQLScheduledHabitRepository) Delete(ctx context.Context, profileID, id string) error {
	_, err := repository.database.ExecContext(ctx,
		"DELETE FROM scheduled_habits WHERE profile_id = ? AND id = ?", profileID, id,
	)
	if err != nil {
		return fmt.Errorf("deleting scheduled habit: %w", err)
	}
	return nil
}

// DeleteByMatch removes every habit of the profile with this name and time.
func (repository *SQLScheduledHabitRepository) DeleteByMatch(ctx context.Context, profileID, name, habitTime string) (int64, error) {
	result, err := repository.database.ExecContext(ctx,
		"DELETE FROM scheduled_habits WHERE profile_id = ? AND name = ? AND habit_time = ?",
		profileID, name, habitTime,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting matching scheduled habits: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected, nil
}

func (repository *SQLScheduledHabitRepository) ReplaceForProfile(ctx context.Context, profileID string, habits []models.ScheduledHabit) error {
	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	if _, err := transaction.ExecContext(ctx, "DELETE FROM scheduled_habits WHERE profile_id = ?", profileID); err != nil {
		return fmt.Errorf("clearing scheduled habits: %w", err)
	}
	for _, habit := range habits {
		habit.ProfileID = profileID
		if _, err := insertScheduledHabit(ctx, transaction, habit); err != nil {
			return err
		}
	}

	return transaction.Commit()
}
