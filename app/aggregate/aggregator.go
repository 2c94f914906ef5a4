package aggregate

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/lysyi3m/news-comb/app/news"
	"github.com/lysyi3m/news-comb/app/sources"
	"golang.org/x/sync/errgroup"
)

// Outcome is what a single adapter contributed to a run.
type Outcome struct {
	Source   string
	Articles []news.Article
	Err      error
	Duration time.Duration
}

type Result struct {
	Articles   []news.Article
	Outcomes   []Outcome
	Duplicates int
}

type Aggregator struct {
	adapters []sources.Adapter
}

func NewAggregator(adapters []sources.Adapter) *Aggregator {
	return &Aggregator{adapters: adapters}
}

func (a *Aggregator) Sources() []string {
	names := make([]string, len(a.adapters))
	for i, adapter := range a.adapters {
		names[i] = adapter.Name()
	}
	return names
}

// Run fetches every adapter concurrently and waits for all of them. A failing adapter
// contributes nothing; the others are unaffected. If ctx is cancelled the whole run is discarded.
func (a *Aggregator) Run(ctx context.Context) (*Result, error) {
	outcomes := make([]Outcome, len(a.adapters))

	// Only cancellation of ctx fails the group. Adapter errors stay in their outcome.
	g, gctx := errgroup.WithContext(ctx)
	for i, adapter := range a.adapters {
		g.Go(func() error {
			start := time.Now()
			articles, err := adapter.Fetch(gctx)
			outcomes[i] = Outcome{
				Source:   adapter.Name(),
				Articles: articles,
				Err:      err,
				Duration: time.Since(start),
			}
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range outcomes {
		if outcomes[i].Err != nil {
			logOutcome(outcomes[i])
			outcomes[i].Articles = nil
		}
	}

	merged, duplicates := Merge(outcomes)

	return &Result{
		Articles:   merged,
		Outcomes:   outcomes,
		Duplicates: duplicates,
	}, nil
}

// Merge concatenates outcomes in order, keeps the first article for every normalized
// title and sorts the result newest first.
func Merge(outcomes []Outcome) ([]news.Article, int) {
	seen := make(map[string]struct{})
	merged := make([]news.Article, 0)
	duplicates := 0

	for _, outcome := range outcomes {
		for _, article := range outcome.Articles {
			key := news.NormalizeTitle(article.Title)
			if _, ok := seen[key]; ok {
				duplicates++
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, article)
		}
	}

	slices.SortStableFunc(merged, func(x, y news.Article) int {
		return y.PublishedAt.Compare(x.PublishedAt)
	})

	return merged, duplicates
}

func logOutcome(outcome Outcome) {
	attrs := []any{"source", outcome.Source, "kind", string(news.KindOf(outcome.Err)), "error", outcome.Err}

	switch news.KindOf(outcome.Err) {
	case news.KindConfiguration:
		slog.Error("Source misconfigured, skipping", attrs...)
	case news.KindParse:
		slog.Warn("Source returned unreadable data, skipping", attrs...)
	default:
		slog.Warn("Source fetch failed, skipping", attrs...)
	}
}
