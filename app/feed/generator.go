package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"github.com/lysyi3m/news-comb/app/news"
)

// Channel describes the RSS channel wrapping a list of articles.
type Channel struct {
	Title       string
	Link        string
	Description string
	SelfLink    string
}

type Generator struct {
	version string
	now     func() time.Time
}

func NewGenerator(version string) *Generator {
	return &Generator{version: version, now: time.Now}
}

func (g *Generator) Version() string {
	return g.version
}

// Run renders articles as an RSS 2.0 document in the given order. categories maps
// category ids to the names written as item categories.
func (g *Generator) Run(channel Channel, articles []news.Article, categories map[int64]string) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", channel.Title, 4)
	g.writeElement(&buf, "link", channel.Link, 4)
	g.writeElement(&buf, "description", cmp.Or(channel.Description, channel.Title), 4)

	if channel.SelfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(channel.SelfLink)))
	}

	g.writeElement(&buf, "lastBuildDate", g.lastBuildDate(articles).Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("News-Comb/%s", g.version), 4)

	for _, article := range articles {
		g.writeItem(&buf, article, categories[article.CategoryID])
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) lastBuildDate(articles []news.Article) time.Time {
	var latest time.Time
	for _, article := range articles {
		if article.PublishedAt.After(latest) {
			latest = article.PublishedAt
		}
	}
	if latest.IsZero() {
		return g.now().In(time.Local)
	}
	return latest
}

func (g *Generator) writeItem(buf *bytes.Buffer, article news.Article, category string) {
	buf.WriteString("    <item>\n")

	if article.URL != "" {
		buf.WriteString("      <guid isPermaLink=\"true\">")
		xml.EscapeText(buf, []byte(article.URL))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "title", cmp.Or(article.Title, news.FallbackTitle), 6)
	g.writeElement(buf, "link", article.URL, 6)
	g.writeElement(buf, "description", cmp.Or(article.Description, news.FallbackDescription), 6)

	if !article.PublishedAt.IsZero() {
		g.writeElement(buf, "pubDate", article.PublishedAt.Format(time.RFC1123Z), 6)
	}

	g.writeElement(buf, "author", article.Author, 6)
	g.writeElement(buf, "category", category, 6)

	if article.Source != "" && article.URL != "" {
		buf.WriteString(fmt.Sprintf("      <source url=\"%s\">", html.EscapeString(article.URL)))
		xml.EscapeText(buf, []byte(article.Source))
		buf.WriteString("</source>\n")
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
