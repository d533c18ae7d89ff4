package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/questiongen/internal/domain"
	"github.com/phrazzld/questiongen/internal/generation"
	"github.com/phrazzld/questiongen/internal/materials"
)

// Status represents the current state of a task.
type Status string

// Possible task status values.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusProcessing, StatusCompleted, StatusFailed}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", domain.NewValidationError("status",
		fmt.Sprintf("must be one of pending, processing, completed, failed (got %q)", s), domain.ErrValidation)
}

// canTransition encodes Pending -> Processing -> Completed | Failed.
func canTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed
	default:
		return false
	}
}

// Progress messages recorded on the task as it moves through its lifecycle.
const (
	ProgressSubmitted = "Task submitted"
	ProgressStarted   = "Starting question generation..."
	ProgressCompleted = "Completed"
	ProgressFailed    = "Failed"
)

// ErrorKind classifies why a task failed.
type ErrorKind string

// Known failure kinds.
const (
	ErrorKindValidation     ErrorKind = "validation"
	ErrorKindGeneration     ErrorKind = "generation"
	ErrorKindContentBlocked ErrorKind = "content_blocked"
	ErrorKindConfiguration  ErrorKind = "configuration"
	ErrorKindTimeout        ErrorKind = "timeout"
	ErrorKindCancelled      ErrorKind = "cancelled"
	ErrorKindInternal       ErrorKind = "internal"
)

// Task is one generation request and everything known about its progress.
// Once the status is terminal exactly one of Result and ErrorMessage is set.
type Task struct {
	ID           string
	Status       Status
	Materials    string
	NumQuestions int
	Source       materials.Source
	Filename     string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time

	Progress     string
	Result       *domain.GenerationResult
	ErrorMessage string
	ErrorKind    ErrorKind
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	out := *t
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		out.CompletedAt = &completed
	}
	out.Result = t.Result.Clone()
	return &out
}

// Outcome is the change a lifecycle step applies to a task. It is built with
// Started, Succeeded or Failed and applied by Store.Transition.
type Outcome struct {
	status   Status
	progress string
	result   *domain.GenerationResult
	errMsg   string
	errKind  ErrorKind
}

// Status returns the status the outcome moves the task into.
func (o Outcome) Status() Status {
	return o.status
}

// Started moves a pending task into processing.
func Started() Outcome {
	return Outcome{status: StatusProcessing, progress: ProgressStarted}
}

// Succeeded completes a task with its result.
func Succeeded(result *domain.GenerationResult) Outcome {
	if result == nil {
		result = &domain.GenerationResult{}
	}
	return Outcome{status: StatusCompleted, progress: ProgressCompleted, result: result.Clone()}
}

// Failed completes a task with the error's message and classification.
func Failed(err error) Outcome {
	if err == nil {
		err = errors.New("unknown error")
	}
	kind := classify(err)
	msg := sanitizeMessage(err.Error())
	if msg == "" {
		msg = "unknown error (" + string(kind) + ")"
	}
	return Outcome{
		status:   StatusFailed,
		progress: ProgressFailed,
		errMsg:   msg,
		errKind:  kind,
	}
}

func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return ErrorKindValidation
	case errors.Is(err, generation.ErrContentBlocked):
		return ErrorKindContentBlocked
	case errors.Is(err, generation.ErrInvalidConfig):
		return ErrorKindConfiguration
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorKindTimeout
	case errors.Is(err, context.Canceled):
		return ErrorKindCancelled
	case errors.Is(err, generation.ErrGenerationFailed), errors.Is(err, generation.ErrInvalidResponse):
		return ErrorKindGeneration
	default:
		return ErrorKindInternal
	}
}

// apply writes the outcome into t at the given time.
func (o Outcome) apply(t *Task, now time.Time) {
	t.Status = o.status
	t.Progress = o.progress
	t.UpdatedAt = now
	if !o.status.Terminal() {
		return
	}

	t.CompletedAt = &now
	t.Result = o.result
	t.ErrorMessage = o.errMsg
	t.ErrorKind = o.errKind
}

// SubmitRequest describes a new task.
type SubmitRequest struct {
	Materials    string
	NumQuestions int
	Source       materials.Source
	Filename     string
}

// ListOptions filters and bounds Store.List and Manager.List.
type ListOptions struct {
	Status *Status
	Limit  int
}
