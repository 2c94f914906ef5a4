package recommend

import (
	"math"
	"slices"
	"time"

	"github.com/lysyi3m/news-comb/app/news"
)

const DefaultLimit = 10

const substantiveDescription = 50

type Scored struct {
	Article news.Article
	Score   float64
}

// ScoreFunc scores one article for one user at the given time.
type ScoreFunc func(article news.Article, signals Signals, now time.Time) float64

// Score is the feed-wide relevance score.
func Score(article news.Article, signals Signals, now time.Time) float64 {
	hours := now.Sub(article.PublishedAt).Hours()

	var score float64
	switch {
	case hours <= 24:
		score += 30
	case hours <= 72:
		score += 20
	default:
		score += math.Max(0, 15-hours/24)
	}

	if signals.Liked.Has(article.ID) {
		score += 100
	}
	if signals.Saved.Has(article.ID) {
		score += 80
	}
	if signals.Read.Has(article.ID) {
		score -= 25
	}

	score += 25 * float64(keywordMatches(article, signals.Keywords))

	if article.CategoryID != 0 && signals.Categories.Has(article.CategoryID) {
		score += 30
	}

	score += popularity(article, 25)

	if len([]rune(article.Description)) > substantiveDescription {
		score += 10
	}

	return score
}

// ScoreInCategory is used when the category is already fixed, so it carries no category bonus
// and weighs recency in days.
func ScoreInCategory(article news.Article, signals Signals, now time.Time) float64 {
	days := now.Sub(article.PublishedAt).Hours() / 24

	score := math.Max(0, 20-2*days)

	if signals.Liked.Has(article.ID) {
		score += 60
	}
	if signals.Saved.Has(article.ID) {
		score += 50
	}
	if signals.Read.Has(article.ID) {
		score -= 15
	}

	score += 15 * float64(keywordMatches(article, signals.Keywords))
	score += popularity(article, 15)

	if len([]rune(article.Description)) > substantiveDescription {
		score += 5
	}

	return score
}

// Rank scores every article and returns the best limit of them, highest first.
func Rank(articles []news.Article, signals Signals, now time.Time, limit int, score ScoreFunc) []Scored {
	if limit <= 0 {
		limit = DefaultLimit
	}

	scored := make([]Scored, len(articles))
	for i, article := range articles {
		scored[i] = Scored{Article: article, Score: score(article, signals, now)}
	}

	slices.SortStableFunc(scored, func(a, b Scored) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

func keywordMatches(article news.Article, keywords []string) int {
	if len(keywords) == 0 {
		return 0
	}

	title := news.Fold(article.Title)
	description := news.Fold(article.Description)

	matches := 0
	for _, kw := range keywords {
		if news.ContainsFolded(title, kw) || news.ContainsFolded(description, kw) {
			matches++
		}
	}
	return matches
}

func popularity(article news.Article, limit int) float64 {
	net := article.Likes - article.Dislikes
	return float64(min(max(net, 0), limit))
}
