package task

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/questiongen/internal/domain"
)

// DefaultListLimit is applied when ListOptions.Limit is not positive.
const DefaultListLimit = 50

// Store holds tasks in memory for the lifetime of the process.
// All reads return copies, so callers never share state with the store.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*Task
	now   func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		tasks: make(map[string]*Task),
		now:   time.Now,
	}
}

// Save inserts a new task. Saving an existing id is a conflict.
func (s *Store) Save(t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[t.ID]; exists {
		return fmt.Errorf("%w: task %s already exists", domain.ErrConflict, t.ID)
	}
	s.tasks[t.ID] = t.Clone()
	return nil
}

// Get returns a snapshot of the task.
func (s *Store) Get(id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return t.Clone(), nil
}

// Transition applies an outcome to the task if the lifecycle allows it and
// returns the previous status together with the updated snapshot.
func (s *Store) Transition(id string, o Outcome) (Status, *Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	from := t.Status
	if !canTransition(from, o.status) {
		return from, nil, fmt.Errorf("%w: cannot move task %s from %s to %s",
			domain.ErrConflict, id, from, o.status)
	}

	o.apply(t, s.now())
	return from, t.Clone(), nil
}

// DeleteTerminal removes a completed or failed task. Pending and
// processing tasks are a conflict.
func (s *Store) DeleteTerminal(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if !t.Status.Terminal() {
		return fmt.Errorf("%w: task %s is %s and cannot be deleted", domain.ErrConflict, id, t.Status)
	}
	delete(s.tasks, id)
	return nil
}

// Discard removes a task regardless of status. It exists to roll back a
// submission whose job could not be queued.
func (s *Store) Discard(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
}

// List returns snapshots newest first, optionally filtered by status, and the
// number of matching tasks before the limit was applied.
func (s *Store) List(opts ListOptions) ([]*Task, int) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	s.mu.RLock()
	matched := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if opts.Status != nil && t.Status != *opts.Status {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]*Task, len(matched))
	for i, t := range matched {
		out[i] = t.Clone()
	}
	s.mu.RUnlock()

	return out, total
}

// Counts returns the number of tasks in each status.
func (s *Store) Counts() map[Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[Status]int, len(Statuses))
	for _, st := range Statuses {
		counts[st] = 0
	}
	for _, t := range s.tasks {
		counts[t.Status]++
	}
	return counts
}

// ActiveCount returns the number of pending and processing tasks.
func (s *Store) ActiveCount() int {
	counts := s.Counts()
	return counts[StatusPending] + counts[StatusProcessing]
}

// Len returns the number of stored tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
