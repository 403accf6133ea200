// Package shutdownqueue runs named cleanup tasks in LIFO order when the
// process stops.
//
// Tasks are registered as resources come up (DB pool, Redis client, HTTP
// server) and drained once at the end of main:
//
//	q := shutdownqueue.New()
//	q.Add("postgres", func(ctx context.Context) error { return db.Close() })
//	...
//	err := q.Shutdown(ctx)
//
// The package-level Add and Shutdown operate on a process-wide Default queue.
// Tasks run once. Panics are recovered and reported as errors.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Task is a shutdown function. It should honor ctx and return an error
// if it can't finish (or ctx is canceled).
type Task func(ctx context.Context) error

type namedTask struct {
	name string
	run  Task
}

// Queue holds shutdown tasks. The zero value is not usable; call New.
type Queue struct {
	mu     sync.Mutex
	tasks  []namedTask
	closed bool
	logger *slog.Logger
}

// Default is the process-wide queue used by Add and Shutdown.
var Default = New()

// New returns an empty queue that logs through slog.Default at call time.
func New() *Queue {
	return &Queue{tasks: make([]namedTask, 0, 8)}
}

// WithLogger sets the logger used to report task progress.
func (q *Queue) WithLogger(l *slog.Logger) *Queue {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.logger = l

	return q
}

// Add registers a task. Nil tasks and tasks added after Shutdown started
// are ignored.
func (q *Queue) Add(name string, t Task) {
	if t == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.tasks = append(q.tasks, namedTask{name: name, run: t})
}

// Len reports the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tasks)
}

// Shutdown drains all registered tasks in LIFO order. Subsequent calls are
// no-ops.
//
// If ctx is canceled mid-drain, Shutdown stops early and returns the context
// error joined with any task errors collected so far.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()

	if q.closed && len(q.tasks) == 0 {
		q.mu.Unlock()

		return nil
	}

	q.closed = true
	tasks := q.tasks
	q.tasks = nil
	logger := q.logger

	q.mu.Unlock()

	if logger == nil {
		logger = slog.Default()
	}

	var errs []error

	for i := len(tasks) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("shutdown canceled before %q: %w", tasks[i].name, ctx.Err()))

			return errors.Join(errs...)
		default:
		}

		start := time.Now()

		err := runTask(ctx, tasks[i])
		if err != nil {
			logger.Error("shutdown task failed", "task", tasks[i].name, "error", err)
			errs = append(errs, err)

			continue
		}

		logger.Info("shutdown task done", "task", tasks[i].name, "took", time.Since(start))
	}

	return errors.Join(errs...)
}

func runTask(ctx context.Context, t namedTask) (err error) {
	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("panic in shutdown task %q: %v", t.name, r)
		}
	}()

	err = t.run(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", t.name, err)
	}

	return nil
}

// Add registers a task on the Default queue.
func Add(name string, t Task) {
	Default.Add(name, t)
}

// Shutdown drains the Default queue.
func Shutdown(ctx context.Context) error {
	return Default.Shutdown(ctx)
}
