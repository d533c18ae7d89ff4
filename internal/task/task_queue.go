package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the TaskQueue
var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// Job is a unit of background work bound to one task.
type Job interface {
	// TaskID returns the id of the task the job advances.
	TaskID() string

	// Run executes the job. Implementations record their own outcome on the
	// task; the returned error is informational.
	Run(ctx context.Context) error
}

// JobQueueReader provides read-only access to the job channel
// allowing workers to consume jobs without the ability to enqueue
type JobQueueReader interface {
	GetChannel() <-chan Job
}

// JobQueueWriter provides write access to the queue.
type JobQueueWriter interface {
	// Enqueue adds a job without blocking.
	// Returns an error if the queue is full or closed
	Enqueue(job Job) error

	// Close closes the queue, preventing further submission
	Close()

	// Len returns the number of jobs waiting to be picked up.
	Len() int
}

// TaskQueue implements a buffered job queue that satisfies both
// JobQueueReader and JobQueueWriter interfaces
type TaskQueue struct {
	mu     sync.RWMutex
	jobs   chan Job
	logger *slog.Logger
	closed bool
}

var (
	_ JobQueueReader = (*TaskQueue)(nil)
	_ JobQueueWriter = (*TaskQueue)(nil)
)

// NewTaskQueue creates a new queue with the specified buffer size
func NewTaskQueue(size int, logger *slog.Logger) *TaskQueue {
	if size < 0 {
		size = 0
	}
	return &TaskQueue{
		jobs:   make(chan Job, size),
		logger: logger,
	}
}

// Enqueue adds a job to the queue for processing
// Returns an error if the queue is full or closed
func (q *TaskQueue) Enqueue(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		q.logger.Debug("job enqueued",
			"task_id", job.TaskID(),
			"queue_len", len(q.jobs),
			"queue_cap", cap(q.jobs))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.jobs))
	}
}

// Close closes the queue, preventing further submission
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.jobs)
		q.logger.Info("task queue closed")
	}
}

// GetChannel returns a read-only channel for consuming jobs
func (q *TaskQueue) GetChannel() <-chan Job {
	return q.jobs
}

// Len returns the number of jobs waiting to be picked up.
func (q *TaskQueue) Len() int {
	return len(q.jobs)
}
