package sources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lysyi3m/news-comb/app/news"
)

// NewsAPI reads the top-headlines endpoint of newsapi.org.
type NewsAPI struct {
	endpoint Endpoint
}

type newsAPIResponse struct {
	Status   string            `json:"status"`
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Articles []json.RawMessage `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

func NewNewsAPI(endpoint Endpoint) *NewsAPI {
	if endpoint.URLTemplate == "" {
		endpoint.URLTemplate = DefaultNewsAPIURL
	}
	return &NewsAPI{endpoint: endpoint}
}

func (a *NewsAPI) Name() string {
	return a.endpoint.Name
}

func (a *NewsAPI) Validate() error {
	return a.endpoint.validate(true)
}

func (a *NewsAPI) Fetch(ctx context.Context) ([]news.Article, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	data, err := a.endpoint.get(ctx, a.endpoint.resolve())
	if err != nil {
		return nil, err
	}

	var body newsAPIResponse
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, news.ParseError(a.Name(), "malformed response body", err)
	}

	if body.Status == "error" {
		return nil, news.TransportError(a.Name(), fmt.Sprintf("API error %s: %s", body.Code, body.Message), nil)
	}

	articles := make([]news.Article, 0, len(body.Articles))
	for i, raw := range body.Articles {
		var item newsAPIArticle
		if err := json.Unmarshal(raw, &item); err != nil {
			a.endpoint.skip(i, "undecodable entry")
			continue
		}

		article, ok := a.endpoint.normalize(rawItem{
			Title:       item.Title,
			Description: item.Description,
			URL:         item.URL,
			ImageURL:    item.URLToImage,
			Author:      item.Author,
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
