package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/lysyi3m/news-comb/app/news"
)

// Compose builds the in-app title and the HTML body for a notification.
func Compose(article news.Article, kind news.NotificationKind) (title, body string) {
	switch kind {
	case news.NotificationCategory:
		title = "New article in a category you follow: " + article.Title
	default:
		title = "New article matching your keywords: " + article.Title
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(article.Title))
	if article.Description != "" && article.Description != news.FallbackDescription {
		fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(article.Description))
	}
	fmt.Fprintf(&b, "<p>Source: %s</p>\n", html.EscapeString(article.Source))
	fmt.Fprintf(&b, "<p><a href=\"%s\">Read the full article</a></p>\n", html.EscapeString(article.URL))

	return title, b.String()
}
