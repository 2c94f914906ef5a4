package recommend

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/news-comb/app/news"
)

type InteractionSource interface {
	GetUserInteractionSets(ctx context.Context, userID int64) (news.Interactions, error)
}

type SubscriptionSource interface {
	GetUserSubscriptions(ctx context.Context, userID int64) ([]news.Subscription, error)
}

// Signals is everything the scorers know about one user.
type Signals struct {
	Liked      news.IDSet
	Read       news.IDSet
	Saved      news.IDSet
	Keywords   []string   // distinct, folded
	Categories news.IDSet // enabled category subscriptions
}

// Gather loads a user's signals with one interaction query and one subscription query.
// A failing source leaves its part of Signals empty so the related boosts score zero.
func Gather(ctx context.Context, userID int64, interactions InteractionSource, subscriptions SubscriptionSource) Signals {
	signals := Signals{
		Liked:      news.NewIDSet(),
		Read:       news.NewIDSet(),
		Saved:      news.NewIDSet(),
		Categories: news.NewIDSet(),
	}

	if interactions != nil {
		sets, err := interactions.GetUserInteractionSets(ctx, userID)
		if err != nil {
			slog.Warn("Interaction sets unavailable, scoring without them", "user_id", userID, "error", err)
		} else {
			signals.Liked = orEmpty(sets.Liked)
			signals.Read = orEmpty(sets.Read)
			signals.Saved = orEmpty(sets.Saved)
		}
	}

	if subscriptions != nil {
		subs, err := subscriptions.GetUserSubscriptions(ctx, userID)
		if err != nil {
			slog.Warn("Subscriptions unavailable, scoring without them", "user_id", userID, "error", err)
		} else {
			signals.Keywords, signals.Categories = fromSubscriptions(subs)
		}
	}

	return signals
}

func fromSubscriptions(subs []news.Subscription) ([]string, news.IDSet) {
	var keywords []string
	categories := news.NewIDSet()

	for _, sub := range subs {
		if !sub.Enabled {
			continue
		}
		keywords = append(keywords, news.ParseKeywordList(sub.Keywords)...)
		if sub.CategoryID != nil {
			categories[*sub.CategoryID] = struct{}{}
		}
	}

	return news.UniqueKeywords(keywords), categories
}

func orEmpty(set news.IDSet) news.IDSet {
	if set == nil {
		return news.NewIDSet()
	}
	return set
}
