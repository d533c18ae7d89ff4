package task

import (
	"context"
	"fmt"

	"github.com/phrazzld/questiongen/internal/domain"
)

// generationJob runs question generation for one task. It is the only
// writer of its task once the task has been queued.
type generationJob struct {
	taskID       string
	materials    string
	numQuestions int
	manager      *Manager

	// accepted is closed once Submit has published the pending event.
	accepted chan struct{}
}

var _ Job = (*generationJob)(nil)

func (j *generationJob) TaskID() string {
	return j.taskID
}

func (j *generationJob) Run(ctx context.Context) error {
	<-j.accepted
	if err := j.manager.advance(ctx, j.taskID, Started()); err != nil {
		return fmt.Errorf("failed to start task: %w", err)
	}

	result, err := j.generate(ctx)
	if err != nil {
		if advErr := j.manager.advance(ctx, j.taskID, Failed(err)); advErr != nil {
			return fmt.Errorf("failed to record failure %v: %w", err, advErr)
		}
		return err
	}

	return j.manager.advance(ctx, j.taskID, Succeeded(result))
}

// generate calls the generator, turning a panic into an error so the task
// still reaches a terminal state.
func (j *generationJob) generate(ctx context.Context) (result *domain.GenerationResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = fmt.Errorf("generation panicked: %v", rec)
		}
	}()
	return j.manager.generator.Generate(ctx, j.materials, j.numQuestions)
}
