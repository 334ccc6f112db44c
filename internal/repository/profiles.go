package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bensuskins/habit-hub/internal/models"
	"github.com/google/uuid"
)

type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (models.Profile, error)
	FindByEmail(ctx context.Context, email string) (models.Profile, error)
	FindAll(ctx context.Context) ([]models.Profile, error)
	Create(ctx context.Context, profile models.Profile) (models.Profile, error)
	Update(ctx context.Context, profile models.Profile) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// SQLProfileRepository stores profiles in SQLite or MySQL. Queries stick to
// the syntax both accept.
type SQLProfileRepository struct {
	database *sql.DB
}

func NewProfileRepository(database *sql.DB) *SQLProfileRepository {
	return &SQLProfileRepository{database: database}
}

const profileColumns = "id, name, email, password_hash, created_at, updated_at"

func scanProfile(row interface{ Scan(...any) error }) (models.Profile, error) {
	var profile models.Profile
	err := row.Scan(&profile.ID, &profile.Name, &profile.Email, &profile.PasswordHash, &profile.CreatedAt, &profile.UpdatedAt)
	return profile, err
}

func (repository *SQLProfileRepository) FindByID(ctx context.Context, id string) (models.Profile, error) {
	profile, err := scanProfile(repository.database.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE id = ?", id,
	))
	if err != nil {
		return models.Profile{}, fmt.Errorf("finding profile by id: %w", err)
	}
	return profile, nil
}

func (repository *SQLProfileRepository) FindByEmail(ctx context.Context, email string) (models.Profile, error) {
	profile, err := scanProfile(repository.database.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE email = ?", email,
	))
	if err != nil {
		return models.Profile{}, fmt.Errorf("finding profile by email: %w", err)
	}
	return profile, nil
}

func (repository *SQLProfileRepository) FindAll(ctx context.Context) ([]models.Profile, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM profiles ORDER BY created_at, name",
	)
	if err != nil {
		return nil, fmt.Errorf("finding all profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

func (repository *SQLProfileRepository) Create(ctx context.Context, profile models.Profile) (models.Profile, error) {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO profiles (id, name, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		profile.ID, profile.Name, profile.Email, profile.PasswordHash, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return models.Profile{}, fmt.Errorf("creating profile: %w", err)
	}
	return profile, nil
}

func (repository *SQLProfileRepository) Update(ctx context.Context, profile models.Profile) error {
	result, err := repository.database.ExecContext(ctx,
		"UPDATE profiles SET name = ?, email = ?, password_hash = ?, updated_at = ? WHERE id = ?",
		profile.Name, profile.Email, profile.PasswordHash, time.Now().UTC(), profile.ID,
	)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("updating profile: %w", sql.ErrNoRows)
	}
	return nil
}

// Delete removes the profile with its habits and history.
func (repository *SQLProfileRepository) Delete(ctx context.Context, id string) error {
	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	for _, statement := range []string{
		"DELETE FROM history_entries WHERE profile_id = ?",
		"DELETE FROM scheduled_habits WHERE profile_id = ?",
	} {
		if _, err := transaction.ExecContext(ctx, statement, id); err != nil {
			return fmt.Errorf("deleting profile data: %w", err)
		}
	}

	result, err := transaction.ExecContext(ctx, "DELETE FROM profiles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("deleting profile: %w", sql.ErrNoRows)
	}

	return transaction.Commit()
}

func (repository *SQLProfileRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := repository.database.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting profiles: %w", err)
	}
	return count, nil
}
