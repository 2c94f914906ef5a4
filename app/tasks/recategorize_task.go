package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type Recategorizer interface {
	Recategorize(ctx context.Context) (checked, changed int, err error)
}

type RecategorizeTask struct {
	Task
	pipeline Recategorizer
}

func NewRecategorizeTask(pipeline Recategorizer) *RecategorizeTask {
	return &RecategorizeTask{
		Task:     NewTask(TaskTypeRecategorize, ""),
		pipeline: pipeline,
	}
}

func (t *RecategorizeTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	checked, changed, err := t.pipeline.Recategorize(ctx)
	if err != nil {
		return fmt.Errorf("failed to recategorize articles: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"checked", checked,
		"changed", changed)

	return nil
}
