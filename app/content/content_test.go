package content

import (
	"net/url"
	"strings"
	"testing"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "  Just   text \n here ", "Just text here"},
		{"paragraphs", "<p>Hello <b>world</b></p><p>again</p>", "Hello world again"},
		{"script removed", "<div>Visible<script>alert(1)</script></div>", "Visible"},
		{"entities", "Tom &amp; Jerry", "Tom & Jerry"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Expected 'short', got %q", got)
	}

	got := Truncate("the quick brown fox jumps over the lazy dog", 20)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("Expected ellipsis suffix, got %q", got)
	}
	if len([]rune(got)) > 21 {
		t.Errorf("Expected at most 21 runes, got %d", len([]rune(got)))
	}
	if strings.Contains(got, "jum") && !strings.Contains(got, "jumps") {
		t.Errorf("Expected cut at word boundary, got %q", got)
	}
}

func TestExtractor_Run(t *testing.T) {
	extractor := NewExtractor()

	htmlContent := `
	<!DOCTYPE html>
	<html>
	<head>
		<title>Test Article</title>
	</head>
	<body>
		<header>
			<nav>Navigation</nav>
		</header>
		<main>
			<article>
				<h1>Main Article Title</h1>
				<p>This is the main content of the article. It contains several paragraphs of meaningful text that should be extracted by the readability algorithm.</p>
				<p>This is another paragraph with more content. The readability algorithm should identify this as the main content area and extract it properly.</p>
				<p>Here is some more substantial content to ensure we meet the character threshold. This paragraph adds more context and information that would be valuable to readers.</p>
			</article>
		</main>
		<footer>
			<p>Copyright 2024</p>
		</footer>
	</body>
	</html>
	`

	pageURL, _ := url.Parse("https://example.com/story")
	result, err := extractor.Run([]byte(htmlContent), "text/html; charset=utf-8", pageURL)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(result.Text, "main content of the article") {
		t.Errorf("Expected extracted text to contain main article text, got %q", result.Text)
	}
	if result.Excerpt == "" {
		t.Error("Expected non-empty excerpt")
	}
	if strings.Contains(result.Text, "<p>") {
		t.Error("Expected extracted text without markup")
	}
}

func TestExtractor_RunEmpty(t *testing.T) {
	extractor := NewExtractor()

	if _, err := extractor.Run(nil, "text/html", nil); err == nil {
		t.Error("Expected error for empty data")
	}
}
