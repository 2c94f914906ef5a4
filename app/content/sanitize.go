package content

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML returns the visible text of an HTML fragment with whitespace collapsed.
// Plain text passes through unchanged apart from whitespace.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapse(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapse(s)
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find("p, div, br, li, h1, h2, h3, h4, h5, h6, tr").AppendHtml(" ")

	return collapse(doc.Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
