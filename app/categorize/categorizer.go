package categorize

import (
	"strings"

	"github.com/lysyi3m/news-comb/app/news"
)

const (
	titleWeight       = 3
	descriptionWeight = 2
	combinedWeight    = 1
)

type fallback struct {
	categoryName string
	terms        []string
}

// Tried in order when no category keyword matches. categoryName is matched as a
// substring of the folded category name.
var fallbacks = []fallback{
	{
		categoryName: "politic",
		terms: []string{"war", "conflict", "election", "government", "president", "minister",
			"parliament", "senate", "congress", "military", "protest", "sanction", "ceasefire"},
	},
	{
		categoryName: "general",
		terms: []string{"earthquake", "flood", "hurricane", "storm", "wildfire", "fire", "disaster",
			"accident", "crash", "explosion", "killed", "injured", "rescue"},
	},
	{
		categoryName: "sport",
		terms: []string{"match", "tournament", "championship", "league", "olympic", "world cup",
			"football", "soccer", "basketball", "tennis", "cricket", "coach", "goal"},
	},
}

// Classify picks the category for an article. Categories are scored by keyword overlap
// in the given order and ties go to the earlier category. It is deterministic and has no
// side effects. ok is false only when categories is empty.
func Classify(article news.Article, categories []news.Category) (id int64, ok bool) {
	if len(categories) == 0 {
		return 0, false
	}

	title := news.Fold(article.Title)
	description := news.Fold(article.Description)
	combined := title + " " + description

	best := -1
	bestScore := 0
	for i, category := range categories {
		score := Score(title, description, combined, news.SplitKeywords(category.Keywords))
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	if best >= 0 {
		return categories[best].ID, true
	}

	for _, fb := range fallbacks {
		if !containsAny(combined, fb.terms) {
			continue
		}
		if category, found := findByName(categories, fb.categoryName); found {
			return category.ID, true
		}
	}

	return categories[0].ID, true
}

// Score sums keyword weights for folded title, description and their concatenation.
func Score(title, description, combined string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		if news.ContainsFolded(title, kw) {
			score += titleWeight
		}
		if news.ContainsFolded(description, kw) {
			score += descriptionWeight
		}
		if news.ContainsFolded(combined, kw) {
			score += combinedWeight
		}
	}
	return score
}

// Assign categorizes every article that has no category yet and returns how many were set.
func Assign(articles []news.Article, categories []news.Category) int {
	assigned := 0
	for i := range articles {
		if articles[i].CategoryID != 0 {
			continue
		}
		if id, ok := Classify(articles[i], categories); ok {
			articles[i].CategoryID = id
			assigned++
		}
	}
	return assigned
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func findByName(categories []news.Category, fragment string) (news.Category, bool) {
	for _, category := range categories {
		if strings.Contains(news.Fold(category.Name), fragment) {
			return category, true
		}
	}
	return news.Category{}, false
}
