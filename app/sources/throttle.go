package sources

import (
	"context"
	"log/slog"
	"time"

	"github.com/lysyi3m/news-comb/app/news"
)

// RequestCounter tracks requests per source within an hourly window.
type RequestCounter interface {
	ConsumeRequest(ctx context.Context, source string, limit int, now time.Time) (bool, error)
}

type throttled struct {
	Adapter
	counter RequestCounter
	limit   int
	now     func() time.Time
}

// Throttle wraps adapter with an hourly request budget. A limit of zero or less disables it.
func Throttle(adapter Adapter, counter RequestCounter, limit int) Adapter {
	if counter == nil || limit <= 0 {
		return adapter
	}
	return &throttled{
		Adapter: adapter,
		counter: counter,
		limit:   limit,
		now:     time.Now,
	}
}

func (t *throttled) Fetch(ctx context.Context) ([]news.Article, error) {
	// config errors must not consume the budget
	if err := t.Validate(); err != nil {
		return nil, err
	}

	allowed, err := t.counter.ConsumeRequest(ctx, t.Name(), t.limit, t.now())
	if err != nil {
		slog.Warn("Failed to update request counter", "source", t.Name(), "error", err)
	} else if !allowed {
		return nil, news.TransportError(t.Name(), "hourly request limit reached", nil)
	}

	return t.Adapter.Fetch(ctx)
}
