package http

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Dispatcher decides how a connection handler task gets scheduled.
type Dispatcher interface {
	Dispatch(task func())
}

type DispatcherFunc func(task func())

func (fn DispatcherFunc) Dispatch(task func()) {
	fn(task)
}

// Detached runs every task on its own goroutine. Tasks are neither
// limited nor tracked.
func Detached() Dispatcher {
	return DispatcherFunc(func(task func()) {
		go task()
	})
}

type boundedDispatcher struct {
	sem *semaphore.Weighted
}

// Bounded runs at most limit tasks at once. Dispatch blocks while the limit
// is reached. A limit of zero or less yields Detached.
func Bounded(limit int) Dispatcher {
	if limit <= 0 {
		return Detached()
	}

	return &boundedDispatcher{
		sem: semaphore.NewWeighted(int64(limit)),
	}
}

func (d *boundedDispatcher) Dispatch(task func()) {
	// Acquire only fails on a done context
	_ = d.sem.Acquire(context.Background(), 1)

	go func() {
		defer d.sem.Release(1)
		task()
	}()
}
