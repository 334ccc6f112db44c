package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bensuskins/habit-hub/internal/models"
	"github.com/google/uuid"
)

type HistoryRepository interface {
	FindByProfile(ctx context.Context, profileID string) ([]models.HistoryEntry, error)
	Create(ctx context.Context, entry models.HistoryEntry) (models.HistoryEntry, error)
	ReplaceForProfile(ctx context.Context, profileID string, entries []models.HistoryEntry) error
	Stats(ctx context.Context, since time.Time) (HistoryStats, error)
}

type HistoryStats struct {
	Total     int
	Completed int
	Since     int
}

type SQLHistoryRepository struct {
	database *sql.DB
}

func NewHistoryRepository(database *sql.DB) *SQLHistoryRepository {
	return &SQLHistoryRepository{database: database}
}

func (repository *SQLHistoryRepository) FindByProfile(ctx context.Context, profileID string) ([]models.HistoryEntry, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT id, profile_id, habit_id, name, habit_time, status, recorded_at FROM history_entries WHERE profile_id = ? ORDER BY recorded_at",
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding history entries: %w", err)
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var entry models.HistoryEntry
		if err := rows.Scan(&entry.ID, &entry.ProfileID, &entry.HabitID, &entry.Name, &entry.Time, &entry.Status, &entry.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (repository *SQLHistoryRepository) Create(ctx context.Context, entry models.HistoryEntry) (models.HistoryEntry, error) {
	entry = prepareHistoryEntry(entry)
	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO history_entries (id, profile_id, habit_id, name, habit_time, status, recorded_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		entry.ID, entry.ProfileID, entry.HabitID, entry.Name, entry.Time, entry.Status, entry.RecordedAt,
	)
	if err != nil {
		return models.HistoryEntry{}, fmt.Errorf("creating history entry: %w", err)
	}
	return entry, nil
}

func (repository *SQLHistoryRepository) ReplaceForProfile(ctx context.Context, profileID string, entries []models.HistoryEntry) error {
	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	if _, err := transaction.ExecContext(ctx, "DELETE FROM history_entries WHERE profile_id = ?", profileID); err != nil {
		return fmt.Errorf("clearing history entries: %w", err)
	}
	for _, entry := range entries {
		entry.ProfileID = profileID
		entry.ID = ""
		entry = prepareHistoryEntry(entry)
		if _, err := transaction.ExecContext(ctx,
			"INSERT INTO history_entries (id, profile_id, habit_id, name, habit_time, status, recorded_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			entry.ID, entry.ProfileID, entry.HabitID, entry.Name, entry.Time, entry.Status, entry.RecordedAt,
		); err != nil {
			return fmt.Errorf("creating history entry: %w", err)
		}
	}

	return transaction.Commit()
}

func (repository *SQLHistoryRepository) Stats(ctx context.Context, since time.Time) (HistoryStats, error) {
	var stats HistoryStats
	err := repository.database.QueryRowContext(ctx, "SELECT COUNT(*) FROM history_entries").Scan(&stats.Total)
	if err != nil {
		return HistoryStats{}, fmt.Errorf("counting history entries: %w", err)
	}
	err = repository.database.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM history_entries WHERE status = ?", models.HistoryStatusCompleted,
	).Scan(&stats.Completed)
	if err != nil {
		return HistoryStats{}, fmt.Errorf("counting completed entries: %w", err)
	}
	err = repository.database.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM history_entries WHERE recorded_at >= ?", since.UTC(),
	).Scan(&stats.Since)
	if err != nil {
		return HistoryStats{}, fmt.Errorf("counting recent entries: %w", err)
	}
	return stats, nil
}

func prepareHistoryEntry(entry models.HistoryEntry) models.HistoryEntry {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}
	entry.RecordedAt = entry.RecordedAt.UTC()
	return entry
}
