package remotesync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bensuskins/habit-hub/internal/apperr"
	"github.com/bensuskins/habit-hub/internal/metrics"
	"github.com/bensuskins/habit-hub/internal/models"
	"github.com/cenkalti/backoff/v4"
)

const DefaultCategory = "health"

var ErrNoProfile = errors.New("no profile configured")

// Adapter reconciles local state with the remote profile store. Pushes are
// fire-and-forget: failures are logged and local state is never rolled back.
// They reach the remote one at a time in the order they were made.
type Adapter struct {
	remote    Remote
	profileID string
	timeout   time.Duration

	mu       sync.Mutex
	queue    []push
	draining bool
	pending  sync.WaitGroup
}

type push struct {
	operation string
	call      func(ctx context.Context) error
}

func NewAdapter(remote Remote, profileID string, timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Adapter{remote: remote, profileID: profileID, timeout: timeout}
}

func (adapter *Adapter) Enabled() bool {
	return adapter.remote != nil && adapter.profileID != ""
}

func (adapter *Adapter) ProfileID() string {
	return adapter.profileID
}

func (adapter *Adapter) Pull(ctx context.Context) (models.Profile, error) {
	if !adapter.Enabled() {
		return models.Profile{}, &apperr.SyncError{Op: "pull", Err: ErrNoProfile}
	}

	ctx, cancel := context.WithTimeout(ctx, adapter.timeout)
	defer cancel()

	start := time.Now()
	profile, err := adapter.remote.GetProfile(ctx, adapter.profileID)
	metrics.RecordSync("pull", err, time.Since(start))
	if err != nil {
		return models.Profile{}, &apperr.SyncError{Op: "pull", Err: err}
	}
	return profile, nil
}

// PullWithRetry retries transient pull failures with exponential backoff,
// giving up after maxElapsed.
func (adapter *Adapter) PullWithRetry(ctx context.Context, maxElapsed time.Duration) (models.Profile, error) {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxElapsed

	var profile models.Profile
	err := backoff.Retry(func() error {
		var err error
		profile, err = adapter.Pull(ctx)
		if errors.Is(err, ErrNoProfile) {
			return backoff.Permanent(err)
		}
		if err != nil {
			slog.Warn("pulling profile, will retry", "error", err)
		}
		return err
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

func (adapter *Adapter) PushCreate(habit models.Habit) {
	adapter.enqueue("create_habit", func(ctx context.Context) error {
		_, err := adapter.remote.CreateScheduledHabit(ctx, adapter.profileID, ToScheduledHabit(habit))
		return err
	})
}

func (adapter *Adapter) PushDelete(habit models.Habit) {
	adapter.enqueue("delete_habit", func(ctx context.Context) error {
		return adapter.remote.DeleteScheduledHabit(ctx, adapter.profileID, habit.Name, habit.Time)
	})
}

// PushEdit replaces the remote copy of a habit by deleting the old name and
// time and creating the new version.
func (adapter *Adapter) PushEdit(before, after models.Habit) {
	adapter.enqueue("edit_habit", func(ctx context.Context) error {
		if err := adapter.remote.DeleteScheduledHabit(ctx, adapter.profileID, before.Name, before.Time); err != nil {
			return fmt.Errorf("removing previous version: %w", err)
		}
		if _, err := adapter.remote.CreateScheduledHabit(ctx, adapter.profileID, ToScheduledHabit(after)); err != nil {
			slog.Warn("remote habit missing until next sync", "habit_id", after.ID)
			return fmt.Errorf("recreating habit: %w", err)
		}
		return nil
	})
}

func (adapter *Adapter) PushHistory(activity models.Activity, recordedAt time.Time) {
	adapter.enqueue("create_history", func(ctx context.Context) error {
		_, err := adapter.remote.CreateHistoryEntry(ctx, adapter.profileID, ToHistoryEntry(activity, recordedAt))
		return err
	})
}

// SyncNow pushes every local habit the remote does not have yet, then pulls
// the profile again. Unlike the background pushes, failures are returned.
func (adapter *Adapter) SyncNow(ctx context.Context, local []models.Habit) (models.Profile, error) {
	profile, err := adapter.Pull(ctx)
	if err != nil {
		return models.Profile{}, err
	}

	var failures []error
	for _, habit := range local {
		if hasScheduledHabit(profile, habit) {
			continue
		}
		callCtx, cancel := context.WithTimeout(ctx, adapter.timeout)
		start := time.Now()
		_, err := adapter.remote.CreateScheduledHabit(callCtx, adapter.profileID, ToScheduledHabit(habit))
		cancel()
		metrics.RecordSync("create_habit", err, time.Since(start))
		if err != nil {
			failures = append(failures, fmt.Errorf("%s at %s: %w", habit.Name, habit.Time, err))
		}
	}

	profile, err = adapter.Pull(ctx)
	if err != nil {
		return models.Profile{}, err
	}
	if len(failures) > 0 {
		return profile, &apperr.SyncError{Op: "push_all", Err: errors.Join(failures...)}
	}
	return profile, nil
}

// Wait blocks until every in-flight push has finished.
func (adapter *Adapter) Wait() {
	adapter.pending.Wait()
}

// enqueue hands a push to the worker, starting one if none is draining.
func (adapter *Adapter) enqueue(operation string, call func(ctx context.Context) error) {
	if !adapter.Enabled() {
		return
	}

	adapter.pending.Add(1)
	adapter.mu.Lock()
	adapter.queue = append(adapter.queue, push{operation: operation, call: call})
	if !adapter.draining {
		adapter.draining = true
		go adapter.drain()
	}
	adapter.mu.Unlock()
}

func (adapter *Adapter) drain() {
	for {
		adapter.mu.Lock()
		if len(adapter.queue) == 0 {
			adapter.draining = false
			adapter.mu.Unlock()
			return
		}
		next := adapter.queue[0]
		adapter.queue = adapter.queue[1:]
		adapter.mu.Unlock()

		adapter.send(next)
		adapter.pending.Done()
	}
}

func (adapter *Adapter) send(next push) {
	ctx, cancel := context.WithTimeout(context.Background(), adapter.timeout)
	defer cancel()

	start := time.Now()
	err := next.call(ctx)
	metrics.RecordSync(next.operation, err, time.Since(start))
	if err != nil {
		slog.Error("remote sync failed", "error", &apperr.SyncError{Op: next.operation, Err: err})
	}
}

func hasScheduledHabit(profile models.Profile, habit models.Habit) bool {
	for _, scheduled := range profile.ScheduledHabits {
		if scheduled.ID == habit.ID {
			return true
		}
		if strings.EqualFold(scheduled.Name, habit.Name) && scheduled.Time == habit.Time {
			return true
		}
	}
	return false
}
