package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/news-comb/app/categorize"
	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/news"
)

type RunStats struct {
	Fetched      int
	Duplicates   int
	Existing     int
	Created      int
	Failed       int
	SourceErrors int
	Notified     int
	Emailed      int
}

// Pipeline ingests articles: aggregate, skip known URLs, categorize, persist, notify.
// A run stores its new articles in one batch, so a cancelled run leaves nothing behind.
// Runs are serialized because the existence check and the insert are not atomic.
type Pipeline struct {
	mu         sync.Mutex
	aggregator Aggregator
	articles   ArticleStore
	categories CategoryStore
	notifier   Notifier
	recorder   FetchRecorder
}

func NewPipeline(aggregator Aggregator, articles ArticleStore, categories CategoryStore, notifier Notifier, recorder FetchRecorder) *Pipeline {
	return &Pipeline{
		aggregator: aggregator,
		articles:   articles,
		categories: categories,
		notifier:   notifier,
		recorder:   recorder,
	}
}

func (p *Pipeline) Run(ctx context.Context) (*RunStats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	result, err := p.aggregator.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregation cancelled: %w", err)
	}

	stats := &RunStats{Fetched: len(result.Articles), Duplicates: result.Duplicates}

	for _, outcome := range result.Outcomes {
		if outcome.Err != nil {
			stats.SourceErrors++
		}
		if p.recorder != nil {
			if err := p.recorder.RecordFetch(ctx, outcome.Source, time.Now(), outcome.Err); err != nil {
				slog.Warn("Failed to record source fetch", "source", outcome.Source, "error", err)
			}
		}
	}

	categories, err := p.categories.GetAllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	var pending []news.Article
	for _, article := range result.Articles {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		exists, err := p.articles.ArticleExists(ctx, article.URL)
		if err != nil {
			slog.Warn("Failed to check article existence", "url", article.URL, "error", err)
			stats.Failed++
			continue
		}
		if exists {
			stats.Existing++
			continue
		}

		if id, ok := categorize.Classify(article, categories); ok {
			article.CategoryID = id
		}
		pending = append(pending, article)
	}

	var created []news.Article
	if len(pending) > 0 {
		created, err = p.articles.CreateArticles(ctx, pending)
		if err != nil {
			return stats, fmt.Errorf("failed to store articles: %w", err)
		}
	}
	stats.Created = len(created)
	stats.Failed += len(pending) - len(created)

	p.notify(ctx, created, categories, stats)

	return stats, nil
}

// notify only announces articles readers can actually see.
func (p *Pipeline) notify(ctx context.Context, created []news.Article, categories []news.Category, stats *RunStats) {
	if p.notifier == nil || len(created) == 0 {
		return
	}

	keywords, err := p.categories.GetFilteredKeywords(ctx)
	if err != nil {
		slog.Warn("Filtered keywords unavailable, skipping notifications", "error", err)
		return
	}

	visible := news.NewVisibility(keywords, categories).Run(created)

	sent, err := p.notifier.NotifyArticles(ctx, visible)
	if err != nil {
		slog.Warn("Failed to send notifications", "articles", len(visible), "error", err)
	}
	stats.Notified = sent.Notifications
	stats.Emailed = sent.Emails
}

// Recategorize re-runs the categorizer over every stored article and updates the ones
// whose category changed. Running it twice changes nothing the second time.
func (p *Pipeline) Recategorize(ctx context.Context) (checked, changed int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	categories, err := p.categories.GetAllCategories(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get categories: %w", err)
	}

	articles, err := p.articles.ListArticles(ctx, database.ArticleFilter{IncludeHidden: true})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list articles: %w", err)
	}

	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return checked, changed, err
		}
		checked++

		id, ok := categorize.Classify(article, categories)
		if !ok || id == article.CategoryID {
			continue
		}

		slog.Debug("Article recategorized", "article_id", article.ID, "from", article.CategoryID, "to", id)
		if err := p.articles.UpdateCategory(ctx, article.ID, id); err != nil {
			return checked, changed, fmt.Errorf("failed to update article %d: %w", article.ID, err)
		}
		changed++
	}

	return checked, changed, nil
}
