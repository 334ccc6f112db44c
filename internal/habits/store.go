package habits

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bensuskins/habit-hub/internal/apperr"
	"github.com/bensuskins/habit-hub/internal/models"
	"github.com/google/uuid"
)

const MaxNameLength = 30

var ErrHabitNotFound = errors.New("habit not found")

type Field string

const (
	FieldName   Field = "name"
	FieldTime   Field = "time"
	FieldRepeat Field = "repeat"
)

type MergeResult int

const (
	MergeAdded MergeResult = iota
	MergeKnown
	MergeConflict
	MergeInvalid
)

// Store holds habits ordered by time. No two habits share a time. It is not
// safe for concurrent use; the controller loop owns it.
type Store struct {
	habits []models.Habit
	newID  func() string
}

func NewStore() *Store {
	return &Store{newID: func() string { return NewID(time.Now()) }}
}

// NewStoreWithIDs is NewStore with a custom id source.
func NewStoreWithIDs(newID func() string) *Store {
	return &Store{newID: newID}
}

// NewID builds a habit id from the creation time and a random suffix.
func NewID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (store *Store) Add(name, value string) (models.Habit, error) {
	name, err := validateName(name)
	if err != nil {
		return models.Habit{}, err
	}
	normalized, err := NormalizeTime(value)
	if err != nil {
		return models.Habit{}, err
	}
	if err := store.checkTimeFree(normalized, ""); err != nil {
		return models.Habit{}, err
	}

	habit := models.Habit{ID: store.newID(), Name: name, Time: normalized}
	store.habits = append(store.habits, habit)
	store.sort()
	return habit, nil
}

// Update changes one field of a habit. The value is checked against every
// other habit and nothing changes when it is rejected.
func (store *Store) Update(id string, field Field, value string) (models.Habit, error) {
	index := store.indexOf(id)
	if index < 0 {
		return models.Habit{}, ErrHabitNotFound
	}
	habit := store.habits[index]

	switch field {
	case FieldName:
		name, err := validateName(value)
		if err != nil {
			return models.Habit{}, err
		}
		habit.Name = name
	case FieldTime:
		normalized, err := NormalizeTime(value)
		if err != nil {
			return models.Habit{}, err
		}
		if err := store.checkTimeFree(normalized, id); err != nil {
			return models.Habit{}, err
		}
		habit.Time = normalized
	case FieldRepeat:
		repeat, err := strconv.ParseBool(value)
		if err != nil {
			return models.Habit{}, apperr.Validation("repeat", "repeat must be true or false")
		}
		habit.Repeat = repeat
	default:
		return models.Habit{}, apperr.Validation(string(field), "unknown field")
	}

	store.habits[index] = habit
	store.sort()
	return habit, nil
}

// Delete removes the habit if present and reports whether it was.
func (store *Store) Delete(id string) bool {
	index := store.indexOf(id)
	if index < 0 {
		return false
	}
	store.habits = append(store.habits[:index], store.habits[index+1:]...)
	return true
}

func (store *Store) Get(id string) (models.Habit, bool) {
	index := store.indexOf(id)
	if index < 0 {
		return models.Habit{}, false
	}
	return store.habits[index], true
}

func (store *Store) List() []models.Habit {
	list := make([]models.Habit, len(store.habits))
	copy(list, store.habits)
	return list
}

func (store *Store) Len() int {
	return len(store.habits)
}

// Merge adds a habit fetched from the remote store unless one with the same
// id is already known. A habit whose time is taken by another local habit is
// skipped.
func (store *Store) Merge(habit models.Habit) MergeResult {
	if habit.ID == "" {
		return MergeInvalid
	}
	if store.indexOf(habit.ID) >= 0 {
		return MergeKnown
	}
	normalized, err := NormalizeTime(habit.Time)
	if err != nil {
		return MergeInvalid
	}
	name := strings.TrimSpace(habit.Name)
	if name == "" {
		return MergeInvalid
	}
	if store.checkTimeFree(normalized, "") != nil {
		return MergeConflict
	}

	habit.Name = name
	habit.Time = normalized
	store.habits = append(store.habits, habit)
	store.sort()
	return MergeAdded
}

// Load replaces the contents with persisted habits. Records saved without an
// id get one, and records that collide on time after normalization are
// dropped. It reports how many ids were assigned.
func (store *Store) Load(list []models.Habit) int {
	store.habits = nil
	assigned := 0
	for _, habit := range list {
		normalized, err := NormalizeTime(habit.Time)
		if err != nil {
			continue
		}
		if store.checkTimeFree(normalized, "") != nil {
			continue
		}
		if habit.ID == "" {
			habit.ID = store.newID()
			assigned++
		}
		habit.Time = normalized
		store.habits = append(store.habits, habit)
	}
	store.sort()
	return assigned
}

func (store *Store) Clear() {
	store.habits = nil
}

func (store *Store) indexOf(id string) int {
	for i, habit := range store.habits {
		if habit.ID == id {
			return i
		}
	}
	return -1
}

func (store *Store) checkTimeFree(value, exceptID string) error {
	for _, habit := range store.habits {
		if habit.Time == value && habit.ID != exceptID {
			return apperr.Validation("time", fmt.Sprintf("a habit is already scheduled at %s", value))
		}
	}
	return nil
}

func (store *Store) sort() {
	sort.SliceStable(store.habits, func(i, j int) bool {
		return store.habits[i].Time < store.habits[j].Time
	})
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("name", "name required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", apperr.Validation("name", fmt.Sprintf("name must be at most %d characters", MaxNameLength))
	}
	return name, nil
}
