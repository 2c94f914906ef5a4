package notify

import (
	"testing"

	"github.com/lysyi3m/news-comb/app/news"
)

func subscriber(id int64, subs ...news.Subscription) news.Subscriber {
	return news.Subscriber{
		User:          news.User{ID: id, Email: "user@example.com", Active: true},
		Subscriptions: subs,
	}
}

func categoryID(id int64) *int64 {
	return &id
}

func TestMatchArticle(t *testing.T) {
	article := news.Article{ID: 1, Title: "Rust 2.0 released", Description: "The Go team reacts", CategoryID: 3}

	tests := []struct {
		name        string
		subscriber  news.Subscriber
		expected    []news.NotificationKind
		expectEmail []bool
	}{
		{
			name:        "one notification for several keywords",
			subscriber:  subscriber(1, news.Subscription{Enabled: true, Keywords: `["rust", "go"]`}),
			expected:    []news.NotificationKind{news.NotificationKeyword},
			expectEmail: []bool{false},
		},
		{
			name:        "comma separated keywords with email",
			subscriber:  subscriber(2, news.Subscription{Enabled: true, Keywords: "python, RUST", EmailEnabled: true}),
			expected:    []news.NotificationKind{news.NotificationKeyword},
			expectEmail: []bool{true},
		},
		{
			name:        "keywords merged across subscriptions",
			subscriber:  subscriber(3,
				news.Subscription{Enabled: true, Keywords: "python"},
				news.Subscription{Enabled: true, CategoryID: categoryID(9), Keywords: "go"},
			),
			expected:    []news.NotificationKind{news.NotificationKeyword},
			expectEmail: []bool{false},
		},
		{
			name:       "disabled subscription ignored",
			subscriber: subscriber(4, news.Subscription{Enabled: false, Keywords: "rust", CategoryID: categoryID(3), EmailEnabled: true}),
		},
		{
			name:       "category match requires email opt-in",
			subscriber: subscriber(5, news.Subscription{Enabled: true, CategoryID: categoryID(3)}),
		},
		{
			name:        "category match",
			subscriber:  subscriber(6, news.Subscription{Enabled: true, CategoryID: categoryID(3), EmailEnabled: true}),
			expected:    []news.NotificationKind{news.NotificationCategory},
			expectEmail: []bool{true},
		},
		{
			name:        "keyword and category for the same article",
			subscriber:  subscriber(7, news.Subscription{Enabled: true, CategoryID: categoryID(3), Keywords: "rust", EmailEnabled: true}),
			expected:    []news.NotificationKind{news.NotificationKeyword, news.NotificationCategory},
			expectEmail: []bool{true, true},
		},
		{
			name:       "no match",
			subscriber: subscriber(8, news.Subscription{Enabled: true, Keywords: "football"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := MatchArticle(article, []news.Subscriber{tt.subscriber})
			if len(matches) != len(tt.expected) {
				t.Fatalf("Expected %d matches, got %d (%+v)", len(tt.expected), len(matches), matches)
			}
			for i, m := range matches {
				if m.Kind != tt.expected[i] {
					t.Errorf("Expected kind %s, got %s", tt.expected[i], m.Kind)
				}
				if m.SendEmail != tt.expectEmail[i] {
					t.Errorf("Expected email %v, got %v", tt.expectEmail[i], m.SendEmail)
				}
				if m.User.ID != tt.subscriber.User.ID {
					t.Errorf("Expected user %d, got %d", tt.subscriber.User.ID, m.User.ID)
				}
			}
		})
	}
}

func TestMatchArticle_SkipsInactiveUsers(t *testing.T) {
	inactive := subscriber(1, news.Subscription{Enabled: true, Keywords: "rust"})
	inactive.User.Active = false

	if matches := MatchArticle(news.Article{Title: "rust"}, []news.Subscriber{inactive}); len(matches) != 0 {
		t.Errorf("Expected no matches for inactive user, got %d", len(matches))
	}
}
