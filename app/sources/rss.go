package sources

import (
	"bytes"
	"cmp"
	"context"
	"net/url"
	"strings"

	"github.com/lysyi3m/news-comb/app/news"
	"github.com/mmcdole/gofeed"
)

// RSS reads any RSS, Atom or JSON feed. Its source label is the feed's own host.
type RSS struct {
	endpoint     Endpoint
	gofeedParser *gofeed.Parser
}

func NewRSS(endpoint Endpoint) *RSS {
	return &RSS{
		endpoint:     endpoint,
		gofeedParser: gofeed.NewParser(),
	}
}

func (a *RSS) Name() string {
	return a.endpoint.Name
}

func (a *RSS) Validate() error {
	return a.endpoint.validate(strings.Contains(a.endpoint.URLTemplate, keyPlaceholder))
}

func (a *RSS) Fetch(ctx context.Context) ([]news.Article, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	target := a.endpoint.resolve()
	data, err := a.endpoint.get(ctx, target)
	if err != nil {
		return nil, err
	}

	feed, err := a.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, news.ParseError(a.Name(), "malformed feed", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, news.TransportError(a.Name(), "fetch cancelled", err)
	}

	label := cmp.Or(hostLabel(feed.Link), hostLabel(target), a.Name())

	articles := make([]news.Article, 0, len(feed.Items))
	for i, item := range feed.Items {
		if item == nil {
			a.endpoint.skip(i, "empty entry")
			continue
		}

		article, ok := a.endpoint.normalize(rawItem{
			Title:       item.Title,
			Description: cmp.Or(item.Description, item.Content),
			URL:         item.Link,
			ImageURL:    itemImage(item),
			Author:      itemAuthor(item),
			Source:      label,
			PublishedAt: cmp.Or(item.Published, item.Updated),
			Published:   cmp.Or(item.PublishedParsed, item.UpdatedParsed),
		})
		if !ok {
			a.endpoint.skip(i, "missing link")
			continue
		}
		articles = append(articles, article)
	}

	return a.endpoint.truncate(articles), nil
}

func hostLabel(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enclosure := range item.Enclosures {
		if enclosure != nil && strings.HasPrefix(enclosure.Type, "image/") {
			return enclosure.URL
		}
	}
	return ""
}

func itemAuthor(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, author := range item.Authors {
		if author != nil && author.Name != "" {
			return author.Name
		}
	}
	return ""
}
