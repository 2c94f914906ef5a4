package categorize

import (
	"testing"

	"github.com/lysyi3m/news-comb/app/news"
)

var testCategories = []news.Category{
	{ID: 10, Name: "Technology", Keywords: "software, AI, chip"},
	{ID: 20, Name: "Business", Keywords: "market, stocks, chip"},
	{ID: 30, Name: "World Politics", Keywords: "summit"},
	{ID: 40, Name: "General"},
	{ID: 50, Name: "Sports", Keywords: ""},
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		article  news.Article
		expected int64
	}{
		{"title keyword", news.Article{Title: "New AI model released"}, 10},
		{"description keyword", news.Article{Title: "Quarterly report", Description: "Stocks fell sharply"}, 20},
		{"title outweighs description", news.Article{Title: "Market opens", Description: "software update"}, 20},
		{"tie goes to earlier category", news.Article{Title: "Chip shortage"}, 10},
		{"case insensitive", news.Article{Title: "SUMMIT in Geneva"}, 30},
		{"politics fallback", news.Article{Title: "Election results announced"}, 30},
		{"disaster fallback", news.Article{Title: "Earthquake shakes region"}, 40},
		{"sports fallback", news.Article{Title: "Tennis final tonight"}, 50},
		{"first category when nothing matches", news.Article{Title: "Recipe for bread"}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := Classify(tt.article, testCategories)
			if !ok {
				t.Fatal("Expected a category")
			}
			if id != tt.expected {
				t.Errorf("Expected category %d, got %d", tt.expected, id)
			}
		})
	}
}

func TestClassify_TieBreakFollowsConfiguredOrder(t *testing.T) {
	article := news.Article{Title: "Chip shortage"}

	reversed := []news.Category{testCategories[1], testCategories[0]}
	id, _ := Classify(article, reversed)
	if id != 20 {
		t.Errorf("Expected earlier category 20 after reordering, got %d", id)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	article := news.Article{Title: "Markets react to AI chip news", Description: "Stocks and software"}

	first, _ := Classify(article, testCategories)
	for i := 0; i < 20; i++ {
		if id, _ := Classify(article, testCategories); id != first {
			t.Fatalf("Expected stable result %d, got %d on run %d", first, id, i)
		}
	}
}

func TestClassify_FallbackWithoutMatchingCategory(t *testing.T) {
	categories := []news.Category{
		{ID: 1, Name: "Tech", Keywords: "software"},
		{ID: 2, Name: "Culture"},
	}

	id, _ := Classify(news.Article{Title: "Election day"}, categories)
	if id != 1 {
		t.Errorf("Expected first category when fallback target is absent, got %d", id)
	}
}

func TestClassify_NoCategories(t *testing.T) {
	if _, ok := Classify(news.Article{Title: "Anything"}, nil); ok {
		t.Error("Expected no category for empty configuration")
	}
}

func TestScore(t *testing.T) {
	title := "ai beats humans"
	description := "new ai research"
	combined := title + " " + description

	// ai: 3 + 2 + 1, research: 2 + 1
	if got := Score(title, description, combined, []string{"ai", "research", "robot"}); got != 9 {
		t.Errorf("Expected score 9, got %d", got)
	}
}

func TestAssign(t *testing.T) {
	articles := []news.Article{
		{Title: "AI wins", CategoryID: 0},
		{Title: "Stocks slide", CategoryID: 99},
	}

	if n := Assign(articles, testCategories); n != 1 {
		t.Errorf("Expected 1 assignment, got %d", n)
	}
	if articles[0].CategoryID != 10 {
		t.Errorf("Expected category 10, got %d", articles[0].CategoryID)
	}
	if articles[1].CategoryID != 99 {
		t.Errorf("Expected existing category to be kept, got %d", articles[1].CategoryID)
	}
}
