package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lysyi3m/news-comb/app/content"
	"github.com/lysyi3m/news-comb/app/database"
)

const maxPageSize = 5 << 20

type EnrichmentStore interface {
	GetArticlesForEnrichment(ctx context.Context, origins []string, limit int) ([]database.EnrichmentCandidate, error)
	UpdateEnrichment(ctx context.Context, id int64, description, status string) error
}

// EnrichArticlesTask replaces placeholder descriptions of one source's articles with
// the readable excerpt of the article page. Each article is attempted once.
type EnrichArticlesTask struct {
	Task
	limit      int
	timeout    time.Duration
	store      EnrichmentStore
	httpClient *http.Client
	extractor  *content.Extractor
	userAgent  string
}

func NewEnrichArticlesTask(sourceName string, limit int, timeout time.Duration, store EnrichmentStore, httpClient *http.Client, extractor *content.Extractor, userAgent string) *EnrichArticlesTask {
	return &EnrichArticlesTask{
		Task:       NewTask(TaskTypeEnrichArticles, sourceName),
		limit:      limit,
		timeout:    timeout,
		store:      store,
		httpClient: httpClient,
		extractor:  extractor,
		userAgent:  userAgent,
	}
}

func (t *EnrichArticlesTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	candidates, err := t.store.GetArticlesForEnrichment(ctx, []string{t.Scope}, t.limit)
	if err != nil {
		return fmt.Errorf("failed to get articles for enrichment: %w", err)
	}

	if len(candidates) == 0 {
		slog.Debug("No articles need enrichment", "source", t.Scope)
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, candidate := range candidates {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		excerpt, err := t.enrich(ctx, candidate)
		status := database.EnrichmentSuccess
		if err != nil {
			slog.Warn("Failed to enrich article", "article_id", candidate.ID, "url", candidate.URL, "error", err)
			status = database.EnrichmentFailed
			errorCount++
		} else {
			successCount++
		}

		if err := t.store.UpdateEnrichment(ctx, candidate.ID, excerpt, status); err != nil {
			slog.Error("Failed to update enrichment status", "article_id", candidate.ID, "error", err)
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.Scope,
		"duration", t.GetDuration(),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *EnrichArticlesTask) enrich(ctx context.Context, candidate database.EnrichmentCandidate) (string, error) {
	pageURL, err := url.Parse(candidate.URL)
	if err != nil || pageURL.Host == "" {
		return "", fmt.Errorf("invalid article URL")
	}

	data, contentType, err := t.fetchPage(ctx, candidate.URL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article page: %w", err)
	}

	extracted, err := t.extractor.Run(data, contentType, pageURL)
	if err != nil {
		return "", err
	}

	return content.Truncate(extracted.Excerpt, 500), nil
}

func (t *EnrichArticlesTask) fetchPage(ctx context.Context, target string) ([]byte, string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP error: %s", resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, "", fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	return data, contentType, nil
}
