package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/questiongen/internal/domain"
	"github.com/phrazzld/questiongen/internal/events"
	"github.com/phrazzld/questiongen/internal/generation"
	"github.com/phrazzld/questiongen/internal/materials"
	"github.com/phrazzld/questiongen/internal/redact"
)

// ManagerConfig holds the queue and pool sizing for a Manager.
type ManagerConfig struct {
	// WorkerCount is the number of concurrent generation workers.
	WorkerCount int

	// QueueSize bounds how many accepted tasks may wait for a worker.
	QueueSize int

	// DefaultListLimit applies to List calls without a positive limit.
	DefaultListLimit int
}

// DefaultManagerConfig returns a ManagerConfig with reasonable defaults
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		WorkerCount:      DefaultWorkerPoolConfig().WorkerCount,
		QueueSize:        100,
		DefaultListLimit: DefaultListLimit,
	}
}

// ManagerOption configures optional Manager behaviour.
type ManagerOption func(*Manager)

// WithEmitter publishes a TaskEvent for every lifecycle transition.
func WithEmitter(e events.EventEmitter) ManagerOption {
	return func(m *Manager) { m.emitter = e }
}

// Manager owns the task lifecycle: it accepts submissions, hands them to
// the worker pool and answers status queries from the Store.
type Manager struct {
	store     *Store
	queue     JobQueueWriter
	pool      *WorkerPool
	generator generation.Generator
	emitter   events.EventEmitter
	config    ManagerConfig
	logger    *slog.Logger
}

// NewManager wires a Manager around store and generator. Call Start before
// submitting tasks.
func NewManager(
	store *Store,
	generator generation.Generator,
	config ManagerConfig,
	logger *slog.Logger,
	opts ...ManagerOption,
) *Manager {
	if config.DefaultListLimit <= 0 {
		config.DefaultListLimit = DefaultListLimit
	}
	logger = logger.With("component", "task_manager")

	queue := NewTaskQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger)

	m := &Manager{
		store:     store,
		queue:     queue,
		pool:      pool,
		generator: generator,
		config:    config,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	pool.SetErrorHandler(m.failStuck)
	return m
}

// Start launches the worker pool.
func (m *Manager) Start() {
	m.pool.Start()
}

// Shutdown stops accepting tasks, cancels running jobs and waits for the
// workers to exit or ctx to expire. Queued tasks that never started stay pending.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.queue.Close()

	done := make(chan struct{})
	go func() {
		m.pool.Stop()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("task manager stopped", "abandoned_jobs", m.queue.Len())
		return nil
	case <-ctx.Done():
		return fmt.Errorf("task manager shutdown: %w", ctx.Err())
	}
}

// Submit validates the request, records a pending task and queues its
// generation job. It never waits for generation. When the queue cannot take
// the job the task is removed and an error wrapping ErrQueueFull or
// ErrQueueClosed is returned.
func (m *Manager) Submit(ctx context.Context, req SubmitRequest) (*Task, error) {
	if err := domain.ValidateGenerationRequest(req.Materials, req.NumQuestions); err != nil {
		return nil, err
	}
	if req.Source == "" {
		req.Source = materials.SourceText
	}

	now := time.Now()
	t := &Task{
		ID:           uuid.NewString(),
		Status:       StatusPending,
		Materials:    req.Materials,
		NumQuestions: req.NumQuestions,
		Source:       req.Source,
		Filename:     req.Filename,
		CreatedAt:    now,
		UpdatedAt:    now,
		Progress:     ProgressSubmitted,
	}
	if err := m.store.Save(t); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	job := &generationJob{
		taskID:       t.ID,
		materials:    req.Materials,
		numQuestions: req.NumQuestions,
		manager:      m,
		accepted:     make(chan struct{}),
	}
	if err := m.queue.Enqueue(job); err != nil {
		m.store.Discard(t.ID)
		m.logger.Warn("task rejected", "task_id", t.ID, "error", err)
		return nil, fmt.Errorf("failed to queue task: %w", err)
	}
	// The job waits for accepted so the pending event precedes its own.
	defer close(job.accepted)
	m.emit(ctx, t.ID, "", StatusPending, t.CreatedAt)

	m.logger.Info("task submitted",
		"task_id", t.ID,
		"num_questions", t.NumQuestions,
		"source", t.Source,
		"materials_chars", len([]rune(t.Materials)))
	return t.Clone(), nil
}

// GetStatus returns the task without its result.
func (m *Manager) GetStatus(_ context.Context, id string) (*Task, error) {
	t, err := m.store.Get(id)
	if err != nil {
		return nil, err
	}
	t.Result = nil
	return t, nil
}

// GetResult returns the task including its result. The result is nil until
// the task has completed.
func (m *Manager) GetResult(_ context.Context, id string) (*Task, error) {
	return m.store.Get(id)
}

// List returns tasks newest first and the number of tasks matching the filter.
func (m *Manager) List(_ context.Context, opts ListOptions) ([]*Task, int, error) {
	if opts.Status != nil {
		if _, err := ParseStatus(string(*opts.Status)); err != nil {
			return nil, 0, err
		}
	}
	if opts.Limit < 0 {
		return nil, 0, domain.NewValidationError("limit", "must not be negative", domain.ErrValidation)
	}
	if opts.Limit == 0 {
		opts.Limit = m.config.DefaultListLimit
	}

	tasks, total := m.store.List(opts)
	return tasks, total, nil
}

// Delete removes a completed or failed task.
func (m *Manager) Delete(_ context.Context, id string) error {
	if err := m.store.DeleteTerminal(id); err != nil {
		return err
	}
	m.logger.Info("task deleted", "task_id", id)
	return nil
}

// ActiveCount returns the number of pending and processing tasks.
func (m *Manager) ActiveCount() int {
	return m.store.ActiveCount()
}

// Counts returns the number of tasks per status.
func (m *Manager) Counts() map[Status]int {
	return m.store.Counts()
}

// advance applies an outcome and publishes the transition.
func (m *Manager) advance(ctx context.Context, id string, o Outcome) error {
	from, t, err := m.store.Transition(id, o)
	if err != nil {
		m.logger.Error("task transition rejected",
			"task_id", id,
			"from", from,
			"to", o.Status(),
			"error", err)
		return err
	}

	attrs := []any{"task_id", id, "from", from, "to", t.Status}
	switch t.Status {
	case StatusFailed:
		m.logger.Warn("task failed", append(attrs,
			"error_kind", t.ErrorKind,
			"error", redact.String(t.ErrorMessage))...)
	case StatusCompleted:
		m.logger.Info("task completed", append(attrs,
			"questions", len(t.Result.Questions),
			"generation_time", t.Result.GenerationTime)...)
	default:
		m.logger.Debug("task transitioned", attrs...)
	}

	m.emit(ctx, id, from, t.Status, t.CreatedAt)
	return nil
}

// failStuck fails a task whose job returned without leaving it terminal,
// for example after a panic while recording its outcome.
func (m *Manager) failStuck(job Job, err error) {
	t, getErr := m.store.Get(job.TaskID())
	if getErr != nil || t.Status != StatusProcessing {
		return
	}
	_ = m.advance(context.Background(), job.TaskID(), Failed(err))
}

func (m *Manager) emit(ctx context.Context, id string, from, to Status, createdAt time.Time) {
	if m.emitter == nil {
		return
	}
	// Handlers must still observe transitions recorded during shutdown.
	ctx = context.WithoutCancel(ctx)
	event := events.NewTaskEvent(id, string(from), string(to), createdAt)
	if err := m.emitter.EmitEvent(ctx, event); err != nil {
		m.logger.Warn("task event handler failed", "task_id", id, "error", err)
	}
}

// IsUnavailable reports whether err means the manager could not accept work.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrQueueFull) || errors.Is(err, ErrQueueClosed)
}

// sanitizeMessage redacts credentials from error text recorded on tasks.
func sanitizeMessage(msg string) string {
	return strings.TrimSpace(redact.String(msg))
}
