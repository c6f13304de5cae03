package sched

import (
	"context"
	"log/slog"
	"sync"

	"belltower/internal/logging"
)

// Task is the handle for one dispatched playback. Its failure is observable
// to callers that kept the handle; the scheduler itself never waits on one.
type Task struct {
	label string
	done  chan struct{}
	err   error
}

// Done is closed when the task finishes, successfully or not.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx is canceled, returning the
// task's error. Lets tests await completion deterministically.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatcher spawns fire-and-forget playback tasks and tracks them so
// shutdown and tests can drain them.
type Dispatcher struct {
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewDispatcher constructs a dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{logger: logging.NewComponentLogger(logger, "dispatch")}
}

// Dispatch runs fn on its own goroutine and returns its handle immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, label string, fn func(context.Context) error) *Task {
	task := &Task{label: label, done: make(chan struct{})}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(task.done)
		if err := fn(ctx); err != nil {
			task.err = err
			d.logger.Error("playback task failed",
				logging.String(logging.FieldAlarmLabel, label),
				logging.Error(err),
				logging.String(logging.FieldEventType, "playback_failed"),
			)
		}
	}()
	return task
}

// WaitIdle blocks until every dispatched task has finished.
func (d *Dispatcher) WaitIdle() {
	d.wg.Wait()
}
