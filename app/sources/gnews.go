package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/lysyi3m/news-comb/app/news"
)

// GNews reads the top-headlines endpoint of gnews.io.
type GNews struct {
	endpoint Endpoint
}

type gnewsResponse struct {
	TotalArticles int               `json:"totalArticles"`
	Articles      []json.RawMessage `json:"articles"`
	Errors        json.RawMessage   `json:"errors"`
}

type gnewsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

func NewGNews(endpoint Endpoint) *GNews {
	if endpoint.URLTemplate == "" {
		endpoint.URLTemplate = DefaultGNewsURL
	}
	return &GNews{endpoint: endpoint}
}

func (a *GNews) Name() string {
	return a.endpoint.Name
}

func (a *GNews) Validate() error {
	return a.endpoint.validate(true)
}

func (a *GNews) Fetch(ctx context.Context) ([]news.Article, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	data, err := a.endpoint.get(ctx, a.endpoint.resolve())
	if err != nil {
		return nil, err
	}

	var body gnewsResponse
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, news.ParseError(a.Name(), "malformed response body", err)
	}

	if hasErrors(body.Errors) {
		return nil, news.TransportError(a.Name(), fmt.Sprintf("API error: %s", bytes.TrimSpace(body.Errors)), nil)
	}

	articles := make([]news.Article, 0, len(body.Articles))
	for i, raw := range body.Articles {
		var item gnewsArticle
		if err := json.Unmarshal(raw, &item); err != nil {
			a.endpoint.skip(i, "undecodable entry")
			continue
		}

		article, ok := a.endpoint.normalize(rawItem{
			Title:       item.Title,
			Description: item.Description,
			URL:         item.URL,
			ImageURL:    item.Image,
			Source:      item.Source.Name,
			PublishedAt: item.PublishedAt,
		})
		if !ok {
			a.endpoint.skip(i, "missing url")
			continue
		}
		articles = append(articles, article)
	}

	return a.endpoint.truncate(articles), nil
}

func hasErrors(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", "[]", "{}":
		return false
	}
	return true
}
