package sources

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/lysyi3m/news-comb/app/content"
	"github.com/lysyi3m/news-comb/app/news"
)

const maxBodySize = 10 << 20

// Endpoint carries the per-source settings every adapter needs.
type Endpoint struct {
	Name        string
	URLTemplate string
	Credential  string
	Timeout     time.Duration
	MaxItems    int
	UserAgent   string
	Client      *http.Client
	Now         func() time.Time
}

func (e *Endpoint) validate(requireKey bool) error {
	if strings.TrimSpace(e.URLTemplate) == "" {
		return news.ConfigError(e.Name, "endpoint URL is missing")
	}
	if requireKey && strings.TrimSpace(e.Credential) == "" {
		return news.ConfigError(e.Name, "credential is missing or blank")
	}
	return nil
}

func (e *Endpoint) resolve() string {
	return strings.ReplaceAll(e.URLTemplate, keyPlaceholder, url.QueryEscape(strings.TrimSpace(e.Credential)))
}

func (e *Endpoint) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Endpoint) get(ctx context.Context, target string) ([]byte, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, news.ConfigError(e.Name, "endpoint URL is invalid")
	}

	req.Header.Set("User-Agent", cmp.Or(e.UserAgent, "News Comb/1.0"))

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		// The URL may carry the credential, keep it out of the error.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, news.TransportError(e.Name, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, news.TransportError(e.Name, fmt.Sprintf("HTTP error: %s", resp.Status), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, news.TransportError(e.Name, "failed to read response body", err)
	}

	return data, nil
}

type rawItem struct {
	Title       string
	Description string
	URL         string
	ImageURL    string
	Author      string
	Source      string
	PublishedAt string
	Published   *time.Time
}

// normalize maps a raw entry onto an article. Entries without a URL cannot be keyed and are rejected.
func (e *Endpoint) normalize(raw rawItem) (news.Article, bool) {
	link := strings.TrimSpace(raw.URL)
	if link == "" {
		return news.Article{}, false
	}

	now := e.now()

	article := news.Article{
		Title:       cmp.Or(content.StripHTML(raw.Title), news.FallbackTitle),
		Description: cmp.Or(content.StripHTML(raw.Description), news.FallbackDescription),
		URL:         link,
		Source:      cmp.Or(strings.TrimSpace(raw.Source), e.Name),
		Origin:      e.Name,
		ImageURL:    strings.TrimSpace(raw.ImageURL),
		Author:      strings.TrimSpace(raw.Author),
		PublishedAt: now,
		CreatedAt:   now,
	}

	if raw.Published != nil && !raw.Published.IsZero() {
		article.PublishedAt = *raw.Published
	} else if published, ok := parseTimestamp(raw.PublishedAt); ok {
		article.PublishedAt = published
	}

	return article, true
}

func (e *Endpoint) truncate(articles []news.Article) []news.Article {
	if e.MaxItems > 0 && len(articles) > e.MaxItems {
		return articles[:e.MaxItems]
	}
	return articles
}

func (e *Endpoint) skip(index int, reason string) {
	slog.Warn("Skipping malformed item", "source", e.Name, "index", index, "reason", reason)
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
