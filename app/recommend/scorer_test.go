package recommend

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/lysyi3m/news-comb/app/news"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func emptySignals() Signals {
	return Signals{
		Liked:      news.NewIDSet(),
		Read:       news.NewIDSet(),
		Saved:      news.NewIDSet(),
		Categories: news.NewIDSet(),
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore_Recency(t *testing.T) {
	tests := []struct {
		name     string
		age      time.Duration
		expected float64
	}{
		{"fresh", 2 * time.Hour, 30},
		{"exactly a day", 24 * time.Hour, 30},
		{"two days", 48 * time.Hour, 20},
		{"four days", 96 * time.Hour, 11},
		{"a month", 30 * 24 * time.Hour, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			article := news.Article{ID: 1, PublishedAt: now.Add(-tt.age)}
			if got := Score(article, emptySignals(), now); !approx(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestScore_Components(t *testing.T) {
	category := int64(7)
	base := news.Article{ID: 1, CategoryID: category, PublishedAt: now.Add(-30 * 24 * time.Hour)}

	tests := []struct {
		name     string
		article  news.Article
		signals  func(s *Signals)
		expected float64
	}{
		{"liked", base, func(s *Signals) { s.Liked[1] = struct{}{} }, 100},
		{"saved", base, func(s *Signals) { s.Saved[1] = struct{}{} }, 80},
		{"liked and saved", base, func(s *Signals) { s.Liked[1] = struct{}{}; s.Saved[1] = struct{}{} }, 180},
		{"read", base, func(s *Signals) { s.Read[1] = struct{}{} }, -25},
		{"category subscription", base, func(s *Signals) { s.Categories[category] = struct{}{} }, 30},
		{"two distinct keywords", withText(base, "Rust and Go release", "Go wins"), func(s *Signals) {
			s.Keywords = []string{"go", "rust", "java"}
		}, 50},
		{"popularity capped", withVotes(base, 40, 2), nil, 25},
		{"popularity negative floors at zero", withVotes(base, 1, 9), nil, 0},
		{"popularity net", withVotes(base, 8, 3), nil, 5},
		{"substantive description", withText(base, "t", "This description is comfortably longer than fifty characters."), nil, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := emptySignals()
			if tt.signals != nil {
				tt.signals(&signals)
			}
			if got := Score(tt.article, signals, now); !approx(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestScore_LikesMonotonic(t *testing.T) {
	signals := emptySignals()
	previous := math.Inf(-1)

	for likes := 0; likes <= 40; likes++ {
		article := news.Article{ID: 1, Likes: likes, Dislikes: 3, PublishedAt: now}
		score := Score(article, signals, now)
		if score < previous {
			t.Fatalf("Score decreased from %v to %v at %d likes", previous, score, likes)
		}
		previous = score

		inCategory := ScoreInCategory(article, signals, now)
		if likes > 0 {
			lower := ScoreInCategory(news.Article{ID: 1, Likes: likes - 1, Dislikes: 3, PublishedAt: now}, signals, now)
			if inCategory < lower {
				t.Fatalf("Category score decreased at %d likes", likes)
			}
		}
	}
}

func TestRank_LikedBeforeRead(t *testing.T) {
	x := news.Article{ID: 1, Title: "X", PublishedAt: now}
	y := news.Article{ID: 2, Title: "Y", PublishedAt: now}

	signals := emptySignals()
	signals.Liked[1] = struct{}{}
	signals.Read[2] = struct{}{}

	ranked := Rank([]news.Article{y, x}, signals, now, 10, Score)
	if len(ranked) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(ranked))
	}
	if ranked[0].Article.ID != 1 {
		t.Errorf("Expected liked article first, got %d", ranked[0].Article.ID)
	}
	if !approx(ranked[0].Score-ranked[1].Score, 125) {
		t.Errorf("Expected score gap 125, got %v", ranked[0].Score-ranked[1].Score)
	}
}

func TestRank_DefaultLimit(t *testing.T) {
	articles := make([]news.Article, 15)
	for i := range articles {
		articles[i] = news.Article{ID: int64(i + 1), PublishedAt: now.Add(-time.Duration(i) * 24 * time.Hour)}
	}

	ranked := Rank(articles, emptySignals(), now, 0, Score)
	if len(ranked) != DefaultLimit {
		t.Errorf("Expected %d results, got %d", DefaultLimit, len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Errorf("Expected descending scores at %d", i)
		}
	}
}

func TestScoreInCategory(t *testing.T) {
	category := int64(3)
	article := news.Article{ID: 5, CategoryID: category, PublishedAt: now.Add(-48 * time.Hour)}

	signals := emptySignals()
	signals.Categories[category] = struct{}{}

	// recency 20 - 2*2 = 16, no category bonus
	if got := ScoreInCategory(article, signals, now); !approx(got, 16) {
		t.Errorf("Expected 16, got %v", got)
	}

	signals.Liked[5] = struct{}{}
	signals.Saved[5] = struct{}{}
	signals.Keywords = []string{"budget"}
	article.Title = "Budget vote"

	// 16 + 60 + 50 + 15
	if got := ScoreInCategory(article, signals, now); !approx(got, 141) {
		t.Errorf("Expected 141, got %v", got)
	}

	if full := Score(article, signals, now); full <= ScoreInCategory(article, signals, now) {
		t.Errorf("Expected reduced weights in category variant, got full=%v category=%v", full, ScoreInCategory(article, signals, now))
	}
}

type fakeInteractions struct {
	sets  news.Interactions
	err   error
	calls int
}

func (f *fakeInteractions) GetUserInteractionSets(ctx context.Context, userID int64) (news.Interactions, error) {
	f.calls++
	return f.sets, f.err
}

type fakeSubscriptions struct {
	subs  []news.Subscription
	err   error
	calls int
}

func (f *fakeSubscriptions) GetUserSubscriptions(ctx context.Context, userID int64) ([]news.Subscription, error) {
	f.calls++
	return f.subs, f.err
}

func TestGather(t *testing.T) {
	sports := int64(4)
	politics := int64(5)
	interactions := &fakeInteractions{sets: news.Interactions{Liked: news.NewIDSet(1), Read: news.NewIDSet(2)}}
	subscriptions := &fakeSubscriptions{subs: []news.Subscription{
		{Enabled: true, Keywords: `["Rust", "go"]`},
		{Enabled: true, CategoryID: &sports, Keywords: "go, football"},
		{Enabled: false, CategoryID: &politics, Keywords: "election"},
	}}

	signals := Gather(context.Background(), 9, interactions, subscriptions)

	if interactions.calls != 1 || subscriptions.calls != 1 {
		t.Errorf("Expected one call per source, got %d and %d", interactions.calls, subscriptions.calls)
	}
	if !signals.Liked.Has(1) || !signals.Read.Has(2) {
		t.Error("Expected interaction sets to be copied")
	}
	if signals.Saved == nil {
		t.Error("Expected nil saved set to be replaced with an empty set")
	}
	if len(signals.Keywords) != 3 {
		t.Errorf("Expected 3 distinct keywords, got %v", signals.Keywords)
	}
	if !signals.Categories.Has(sports) || signals.Categories.Has(politics) {
		t.Errorf("Expected only enabled category subscriptions, got %v", signals.Categories)
	}
}

func TestGather_DegradesToZero(t *testing.T) {
	interactions := &fakeInteractions{err: errors.New("db down")}
	subscriptions := &fakeSubscriptions{err: errors.New("db down")}

	signals := Gather(context.Background(), 1, interactions, subscriptions)

	article := news.Article{ID: 1, CategoryID: 2, Title: "anything", PublishedAt: now}
	if got := Score(article, signals, now); !approx(got, 30) {
		t.Errorf("Expected only recency to score, got %v", got)
	}
}

func withText(article news.Article, title, description string) news.Article {
	article.Title = title
	article.Description = description
	return article
}

func withVotes(article news.Article, likes, dislikes int) news.Article {
	article.Likes = likes
	article.Dislikes = dislikes
	return article
}
