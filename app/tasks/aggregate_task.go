package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/news-comb/app/engine"
)

type Ingester interface {
	Run(ctx context.Context) (*engine.RunStats, error)
}

// AggregateTask runs one aggregation pass. Failed passes are not retried inline;
// the next scheduled pass picks the sources up again.
type AggregateTask struct {
	Task
	pipeline Ingester
}

func NewAggregateTask(pipeline Ingester) *AggregateTask {
	task := NewTask(TaskTypeAggregate, "")
	task.MaxRetries = 0

	return &AggregateTask{
		Task:     task,
		pipeline: pipeline,
	}
}

func (t *AggregateTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	stats, err := t.pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to run aggregation: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"fetched", stats.Fetched,
		"duplicates", stats.Duplicates,
		"existing", stats.Existing,
		"created", stats.Created,
		"failed", stats.Failed,
		"source_errors", stats.SourceErrors,
		"notified", stats.Notified,
		"emailed", stats.Emailed)

	return nil
}
