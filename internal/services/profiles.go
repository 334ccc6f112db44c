package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/bensuskins/habit-hub/internal/apperr"
	"github.com/bensuskins/habit-hub/internal/habits"
	"github.com/bensuskins/habit-hub/internal/models"
	"github.com/bensuskins/habit-hub/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrProfileNotFound    = errors.New("profile not found")
)

const DefaultCategory = "health"

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate carries only the fields the caller sent. Lists replace the
// stored list wholesale.
type ProfileUpdate struct {
	Name            *string                  `json:"name"`
	Email           *string                  `json:"email"`
	Password        *string                  `json:"password"`
	ScheduledHabits *[]models.ScheduledHabit `json:"scheduledHabits"`
	History         *[]models.HistoryEntry   `json:"history"`
}

type ProfileService struct {
	profileRepo repository.ProfileRepository
	habitRepo   repository.ScheduledHabitRepository
	historyRepo repository.HistoryRepository
}

func NewProfileService(
	profileRepo repository.ProfileRepository,
	habitRepo repository.ScheduledHabitRepository,
	historyRepo repository.HistoryRepository,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		habitRepo:   habitRepo,
		historyRepo: historyRepo,
	}
}

func (service *ProfileService) Register(ctx context.Context, registration Registration) (models.Profile, error) {
	name := strings.TrimSpace(registration.Name)
	email := normalizeEmail(registration.Email)
	if name == "" {
		return models.Profile{}, apperr.Validation("name", "name is required")
	}
	if err := validateEmail(email); err != nil {
		return models.Profile{}, err
	}
	if registration.Password == "" {
		return models.Profile{}, apperr.Validation("password", "password is required")
	}

	if err := service.ensureEmailFree(ctx, email, ""); err != nil {
		return models.Profile{}, err
	}

	hash, err := hashPassword(registration.Password)
	if err != nil {
		return models.Profile{}, err
	}

	created, err := service.profileRepo.Create(ctx, models.Profile{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		return models.Profile{}, fmt.Errorf("registering profile: %w", err)
	}

	slog.Info("registered profile", "id", created.ID)
	created.ScheduledHabits = []models.ScheduledHabit{}
	created.History = []models.HistoryEntry{}
	return created, nil
}

func (service *ProfileService) Login(ctx context.Context, email, password string) (models.Profile, error) {
	profile, err := service.profileRepo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Profile{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return models.Profile{}, ErrInvalidCredentials
	}
	return service.Get(ctx, profile.ID)
}

// Get loads the profile with its scheduled habits and history.
func (service *ProfileService) Get(ctx context.Context, id string) (models.Profile, error) {
	profile, err := service.findProfile(ctx, id)
	if err != nil {
		return models.Profile{}, err
	}

	profile.ScheduledHabits, err = service.habitRepo.FindByProfile(ctx, id)
	if err != nil {
		return models.Profile{}, err
	}
	profile.History, err = service.historyRepo.FindByProfile(ctx, id)
	if err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

func (service *ProfileService) List(ctx context.Context) ([]models.Profile, error) {
	profiles, err := service.profileRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []models.Profile{}
	}
	return profiles, nil
}

func (service *ProfileService) Update(ctx context.Context, id string, update ProfileUpdate) (models.Profile, error) {
	profile, err := service.findProfile(ctx, id)
	if err != nil {
		return models.Profile{}, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return models.Profile{}, apperr.Validation("name", "name is required")
		}
		profile.Name = name
	}
	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		if err := validateEmail(email); err != nil {
			return models.Profile{}, err
		}
		if err := service.ensureEmailFree(ctx, email, id); err != nil {
			return models.Profile{}, err
		}
		profile.Email = email
	}
	if update.Password != nil {
		if *update.Password == "" {
			return models.Profile{}, apperr.Validation("password", "password is required")
		}
		hash, err := hashPassword(*update.Password)
		if err != nil {
			return models.Profile{}, err
		}
		profile.PasswordHash = hash
	}

	var scheduled []models.ScheduledHabit
	if update.ScheduledHabits != nil {
		for _, habit := range *update.ScheduledHabits {
			prepared, err := prepareScheduledHabit(id, habit)
			if err != nil {
				return models.Profile{}, err
			}
			scheduled = append(scheduled, prepared)
		}
	}
	var history []models.HistoryEntry
	if update.History != nil {
		for _, entry := range *update.History {
			prepared, err := prepareHistoryEntry(id, entry)
			if err != nil {
				return models.Profile{}, err
			}
			history = append(history, prepared)
		}
	}

	if err := service.profileRepo.Update(ctx, profile); err != nil {
		return models.Profile{}, err
	}
	if update.ScheduledHabits != nil {
		if err := service.habitRepo.ReplaceForProfile(ctx, id, scheduled); err != nil {
			return models.Profile{}, err
		}
	}
	if update.History != nil {
		if err := service.historyRepo.ReplaceForProfile(ctx, id, history); err != nil {
			return models.Profile{}, err
		}
	}

	return service.Get(ctx, id)
}

func (service *ProfileService) Delete(ctx context.Context, id string) error {
	err := service.profileRepo.Delete(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProfileNotFound
	}
	if err != nil {
		return err
	}
	slog.Info("deleted profile", "id", id)
	return nil
}

func (service *ProfileService) AddScheduledHabit(ctx context.Context, profileID string, habit models.ScheduledHabit) (models.ScheduledHabit, error) {
	if _, err := service.findProfile(ctx, profileID); err != nil {
		return models.ScheduledHabit{}, err
	}
	prepared, err := prepareScheduledHabit(profileID, habit)
	if err != nil {
		return models.ScheduledHabit{}, err
	}
	return service.habitRepo.Create(ctx, prepared)
}

// RemoveScheduledHabit deletes the habits matching name and time. Matching
// nothing is not an error.
func (service *ProfileService) RemoveScheduledHabit(ctx context.Context, profileID, name, habitTime string) (int64, error) {
	if _, err := service.findProfile(ctx, profileID); err != nil {
		return 0, err
	}
	if normalized, err := habits.NormalizeTime(habitTime); err == nil {
		habitTime = normalized
	}
	return service.habitRepo.DeleteByMatch(ctx, profileID, strings.TrimSpace(name), habitTime)
}

// AddHistoryEntry records a resolved alarm. Completing a non-repeating habit
// also removes that habit from the profile.
func (service *ProfileService) AddHistoryEntry(ctx context.Context, profileID string, entry models.HistoryEntry) (models.HistoryEntry, error) {
	if _, err := service.findProfile(ctx, profileID); err != nil {
		return models.HistoryEntry{}, err
	}
	prepared, err := prepareHistoryEntry(profileID, entry)
	if err != nil {
		return models.HistoryEntry{}, err
	}

	created, err := service.historyRepo.Create(ctx, prepared)
	if err != nil {
		return models.HistoryEntry{}, err
	}

	if created.HabitID != "" && created.Status == models.HistoryStatusCompleted {
		habit, err := service.habitRepo.FindByID(ctx, profileID, created.HabitID)
		if err == nil && !habit.Active {
			if err := service.habitRepo.Delete(ctx, profileID, habit.ID); err != nil {
				slog.Error("removing completed habit", "error", err, "habit", habit.ID)
			}
		}
	}
	return created, nil
}

func (service *ProfileService) Stats(ctx context.Context, now time.Time) (models.AdminStats, error) {
	total, err := service.profileRepo.Count(ctx)
	if err != nil {
		return models.AdminStats{}, err
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	history, err := service.historyRepo.Stats(ctx, startOfDay)
	if err != nil {
		return models.AdminStats{}, err
	}

	return models.AdminStats{
		TotalProfiles:    total,
		TotalHistory:     history.Total,
		CompletedHistory: history.Completed,
		HistoryToday:     history.Since,
	}, nil
}

func (service *ProfileService) findProfile(ctx context.Context, id string) (models.Profile, error) {
	profile, err := service.profileRepo.FindByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

func (service *ProfileService) ensureEmailFree(ctx context.Context, email, ownerID string) error {
	existing, err := service.profileRepo.FindByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != ownerID {
		return ErrEmailTaken
	}
	return nil
}

func prepareScheduledHabit(profileID string, habit models.ScheduledHabit) (models.ScheduledHabit, error) {
	habit.ProfileID = profileID
	habit.Name = strings.TrimSpace(habit.Name)
	if habit.Name == "" {
		return models.ScheduledHabit{}, apperr.Validation("name", "name is required")
	}
	normalized, err := habits.NormalizeTime(habit.Time)
	if err != nil {
		return models.ScheduledHabit{}, err
	}
	habit.Time = normalized
	if habit.Category == "" {
		habit.Category = DefaultCategory
	}
	return habit, nil
}

func prepareHistoryEntry(profileID string, entry models.HistoryEntry) (models.HistoryEntry, error) {
	entry.ProfileID = profileID
	entry.Name = strings.TrimSpace(entry.Name)
	if entry.Name == "" {
		return models.HistoryEntry{}, apperr.Validation("name", "name is required")
	}
	normalized, err := habits.NormalizeTime(entry.Time)
	if err != nil {
		return models.HistoryEntry{}, err
	}
	entry.Time = normalized
	switch entry.Status {
	case models.HistoryStatusCompleted, models.HistoryStatusMissed:
	default:
		return models.HistoryEntry{}, apperr.Validation("status", "status must be completed or missed")
	}
	return entry, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return apperr.Validation("email", "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperr.Validation("email", "email is not valid")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}
