package localstore

import (
	"encoding/json"
	"fmt"

	"github.com/bensuskins/habit-hub/internal/models"
	"github.com/peterbourgon/diskv/v3"
)

const (
	habitsKey     = "habits"
	activitiesKey = "activities"
	settingsKey   = "settings"
)

// Persistence keeps the agent's state between runs. Each list is written as
// one whole document on every save.
type Persistence interface {
	LoadHabits() ([]models.Habit, error)
	SaveHabits(habits []models.Habit) error
	LoadActivities() ([]models.Activity, error)
	SaveActivities(activities []models.Activity) error
	LoadSettings() (models.Settings, error)
	SaveSettings(settings models.Settings) error
	Reset() error
}

type DiskStore struct {
	d *diskv.Diskv
}

func Open(basePath string) *DiskStore {
	return &DiskStore{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 1024 * 1024, // 1MB
	})}
}

func (store *DiskStore) LoadHabits() ([]models.Habit, error) {
	var list []models.Habit
	if err := store.read(habitsKey, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (store *DiskStore) SaveHabits(list []models.Habit) error {
	if list == nil {
		list = []models.Habit{}
	}
	return store.write(habitsKey, list)
}

func (store *DiskStore) LoadActivities() ([]models.Activity, error) {
	var list []models.Activity
	if err := store.read(activitiesKey, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (store *DiskStore) SaveActivities(list []models.Activity) error {
	if list == nil {
		list = []models.Activity{}
	}
	return store.write(activitiesKey, list)
}

func (store *DiskStore) LoadSettings() (models.Settings, error) {
	settings := models.Settings{ActivityFilter: models.FilterAll}
	if err := store.read(settingsKey, &settings); err != nil {
		return models.Settings{}, err
	}
	if settings.ActivityFilter == "" {
		settings.ActivityFilter = models.FilterAll
	}
	return settings, nil
}

func (store *DiskStore) SaveSettings(settings models.Settings) error {
	return store.write(settingsKey, settings)
}

// Reset erases everything the agent has stored.
func (store *DiskStore) Reset() error {
	if err := store.d.EraseAll(); err != nil {
		return fmt.Errorf("erasing local store: %w", err)
	}
	return nil
}

// read leaves target untouched when the key was never written.
func (store *DiskStore) read(key string, target any) error {
	if !store.d.Has(key) {
		return nil
	}
	data, err := store.d.Read(key)
	if err != nil {
		return fmt.Errorf("reading %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

func (store *DiskStore) write(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := store.d.Write(key, data); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}
