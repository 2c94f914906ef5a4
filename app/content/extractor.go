package content

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html/charset"
)

type Extracted struct {
	Title   string
	Excerpt string
	Text    string
}

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Run extracts the readable part of an article page. contentType is the response
// Content-Type header and is used to decode non-UTF-8 pages.
func (e *Extractor) Run(data []byte, contentType string, pageURL *url.URL) (*Extracted, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("HTML data is empty")
	}

	reader, err := charset.NewReader(bytes.NewReader(data), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to decode page charset: %w", err)
	}

	article, err := readability.FromReader(reader, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract content: %w", err)
	}

	text := StripHTML(article.Content)
	if text == "" {
		return nil, fmt.Errorf("no content extracted from HTML data")
	}

	extracted := &Extracted{
		Title:   collapse(article.Title),
		Excerpt: collapse(article.Excerpt),
		Text:    text,
	}

	if extracted.Excerpt == "" {
		extracted.Excerpt = Truncate(text, 300)
	}

	slog.Debug("Content extracted successfully",
		"title", extracted.Title,
		"content_length", len(text))

	return extracted, nil
}

// Truncate shortens s to at most limit runes, cutting at a word boundary when possible.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	cut := string(runes[:limit])
	if i := strings.LastIndex(cut, " "); i > limit/2 {
		cut = cut[:i]
	}
	return cut + "…"
}
