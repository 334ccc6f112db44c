package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Fake is a deterministic Scheduler driven by Advance. Callbacks run on the
// goroutine calling Advance, in due order; ties keep registration order.
type Fake struct {
	mu      sync.Mutex
	elapsed time.Duration
	nextSeq int
	tasks   []*fakeTask
}

type fakeTask struct {
	owner     *Fake
	seq       int
	due       time.Duration
	period    time.Duration
	fn        func()
	cancelled bool
}

func NewFake() *Fake {
	return &Fake{}
}

func (fake *Fake) After(d time.Duration, fn func()) Handle {
	return fake.add(d, 0, fn)
}

func (fake *Fake) Every(d time.Duration, fn func()) Handle {
	return fake.add(d, d, fn)
}

func (fake *Fake) add(d, period time.Duration, fn func()) *fakeTask {
	fake.mu.Lock()
	defer fake.mu.Unlock()

	fake.nextSeq++
	task := &fakeTask{owner: fake, seq: fake.nextSeq, due: fake.elapsed + d, period: period, fn: fn}
	fake.tasks = append(fake.tasks, task)
	return task
}

func (task *fakeTask) Cancel() bool {
	fake := task.owner
	fake.mu.Lock()
	defer fake.mu.Unlock()

	if task.cancelled {
		return false
	}
	task.cancelled = true
	fake.remove(task)
	return true
}

// Advance moves fake time forward by d, firing everything that falls due.
func (fake *Fake) Advance(d time.Duration) {
	fake.mu.Lock()
	target := fake.elapsed + d
	fake.mu.Unlock()

	for {
		fake.mu.Lock()
		task := fake.nextDue(target)
		if task == nil {
			fake.elapsed = target
			fake.mu.Unlock()
			return
		}
		fake.elapsed = task.due
		if task.period > 0 {
			task.due += task.period
		} else {
			task.cancelled = true
			fake.remove(task)
		}
		fn := task.fn
		fake.mu.Unlock()

		fn()
	}
}

// Pending counts live handles.
func (fake *Fake) Pending() int {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return len(fake.tasks)
}

func (fake *Fake) nextDue(target time.Duration) *fakeTask {
	var candidates []*fakeTask
	for _, task := range fake.tasks {
		if task.due <= target {
			candidates = append(candidates, task)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].due != candidates[j].due {
			return candidates[i].due < candidates[j].due
		}
		return candidates[i].seq < candidates[j].seq
	})
	return candidates[0]
}

func (fake *Fake) remove(task *fakeTask) {
	for i, candidate := range fake.tasks {
		if candidate == task {
			fake.tasks = append(fake.tasks[:i], fake.tasks[i+1:]...)
			return
		}
	}
}
