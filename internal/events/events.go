package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskEvent records one lifecycle transition of a task.
type TaskEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// TaskID identifies the task that changed
	TaskID string `json:"task_id"`

	// From is the previous status; empty when the task was just created
	From string `json:"from,omitempty"`

	// To is the status the task moved into
	To string `json:"to"`

	// At is when the transition happened
	At time.Time `json:"at"`

	// Duration is the time elapsed since the task was created
	Duration time.Duration `json:"duration"`
}

// Created reports whether the event records the creation of a task.
func (e *TaskEvent) Created() bool {
	return e.From == ""
}

// NewTaskEvent creates a TaskEvent stamped with the current time.
func NewTaskEvent(taskID, from, to string, createdAt time.Time) *TaskEvent {
	now := time.Now()
	duration := now.Sub(createdAt)
	if duration < 0 {
		duration = 0
	}
	return &TaskEvent{
		ID:       uuid.New(),
		TaskID:   taskID,
		From:     from,
		To:       to,
		At:       now,
		Duration: duration,
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *TaskEvent) error
}
