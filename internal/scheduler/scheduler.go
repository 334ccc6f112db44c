package scheduler

import (
	"sync"
	"sync/atomic"
	"time"
)

// Handle cancels a scheduled callback. Cancel reports whether the handle was
// still active.
type Handle interface {
	Cancel() bool
}

type Scheduler interface {
	// After runs fn once, d from now.
	After(d time.Duration, fn func()) Handle
	// Every runs fn every d until cancelled.
	Every(d time.Duration, fn func()) Handle
}

// Loop schedules real timers whose callbacks are handed to post instead of
// being run on the timer goroutine. post is normally the controller's event
// queue, so callbacks never run concurrently with other events.
type Loop struct {
	post func(func())
}

func NewLoop(post func(func())) *Loop {
	return &Loop{post: post}
}

type loopHandle struct {
	cancelled atomic.Bool
	stopOnce  sync.Once
	stop      func()
}

func (handle *loopHandle) Cancel() bool {
	first := handle.cancelled.CompareAndSwap(false, true)
	handle.stopOnce.Do(handle.stop)
	return first
}

// guard drops a callback that was queued before the handle got cancelled.
func (handle *loopHandle) guard(fn func()) func() {
	return func() {
		if handle.cancelled.Load() {
			return
		}
		fn()
	}
}

func (loop *Loop) After(d time.Duration, fn func()) Handle {
	handle := &loopHandle{}
	timer := time.AfterFunc(d, func() {
		if handle.cancelled.Load() {
			return
		}
		loop.post(handle.guard(func() {
			// fired handles report inactive from now on
			handle.cancelled.Store(true)
			fn()
		}))
	})
	handle.stop = func() { timer.Stop() }
	return handle
}

func (loop *Loop) Every(d time.Duration, fn func()) Handle {
	handle := &loopHandle{}
	done := make(chan struct{})
	handle.stop = func() { close(done) }

	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				loop.post(handle.guard(fn))
			}
		}
	}()
	return handle
}
