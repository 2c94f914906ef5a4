package notify

import (
	"github.com/lysyi3m/news-comb/app/news"
)

// Match is one notification an article triggers for one user.
type Match struct {
	User      news.User
	Kind      news.NotificationKind
	SendEmail bool
}

// MatchArticle decides which subscribers are notified about an article. A user gets at
// most one keyword notification however many keywords match, and independently a
// category notification when they have an enabled, email-opted-in subscription for the
// article's category.
func MatchArticle(article news.Article, subscribers []news.Subscriber) []Match {
	title := news.Fold(article.Title)
	description := news.Fold(article.Description)

	var matches []Match
	for _, subscriber := range subscribers {
		if !subscriber.User.Active {
			continue
		}

		keywordHit, keywordEmail := false, false
		categoryHit := false

		for _, sub := range subscriber.Subscriptions {
			if !sub.Enabled {
				continue
			}

			if containsAnyKeyword(title, description, news.ParseKeywordList(sub.Keywords)) {
				keywordHit = true
				keywordEmail = keywordEmail || sub.EmailEnabled
			}

			if sub.EmailEnabled && sub.CategoryID != nil && article.CategoryID != 0 && *sub.CategoryID == article.CategoryID {
				categoryHit = true
			}
		}

		if keywordHit {
			matches = append(matches, Match{User: subscriber.User, Kind: news.NotificationKeyword, SendEmail: keywordEmail})
		}
		if categoryHit {
			matches = append(matches, Match{User: subscriber.User, Kind: news.NotificationCategory, SendEmail: true})
		}
	}

	return matches
}

func containsAnyKeyword(title, description string, keywords []string) bool {
	for _, kw := range keywords {
		if news.ContainsFolded(title, kw) || news.ContainsFolded(description, kw) {
			return true
		}
	}
	return false
}
