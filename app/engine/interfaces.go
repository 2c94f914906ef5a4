package engine

import (
	"context"
	"time"

	"github.com/lysyi3m/news-comb/app/aggregate"
	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/moderation"
	"github.com/lysyi3m/news-comb/app/news"
	"github.com/lysyi3m/news-comb/app/notify"
	"github.com/lysyi3m/news-comb/app/recommend"
)

type ArticleStore interface {
	ArticleExists(ctx context.Context, url string) (bool, error)
	CreateArticles(ctx context.Context, articles []news.Article) ([]news.Article, error)
	UpdateCategory(ctx context.Context, id, categoryID int64) error
	GetArticle(ctx context.Context, id int64) (*news.Article, error)
	ListArticles(ctx context.Context, filter database.ArticleFilter) ([]news.Article, error)
}

type CategoryStore interface {
	GetAllCategories(ctx context.Context) ([]news.Category, error)
	GetFilteredKeywords(ctx context.Context) ([]string, error)
	AddFilteredKeyword(ctx context.Context, keyword string) error
}

type InteractionStore interface {
	recommend.InteractionSource
	AddLike(ctx context.Context, userID, articleID int64) (bool, error)
	RemoveLike(ctx context.Context, userID, articleID int64) (bool, error)
	AddDislike(ctx context.Context, userID, articleID int64) (bool, error)
	MarkRead(ctx context.Context, userID, articleID int64) (bool, error)
	AddSave(ctx context.Context, userID, articleID int64) (bool, error)
	RemoveSave(ctx context.Context, userID, articleID int64) (bool, error)
}

type SubscriptionStore interface {
	recommend.SubscriptionSource
	UpsertSubscription(ctx context.Context, sub *news.Subscription) error
}

type NotificationLog interface {
	ListNotifications(ctx context.Context, userID int64, limit int) ([]news.Notification, error)
}

type Reporter interface {
	Report(ctx context.Context, userID, articleID int64, reason string) (*moderation.Outcome, error)
}

type Aggregator interface {
	Run(ctx context.Context) (*aggregate.Result, error)
}

type Notifier interface {
	NotifyArticles(ctx context.Context, articles []news.Article) (notify.Stats, error)
}

// FetchRecorder stores the outcome of each source fetch. Optional.
type FetchRecorder interface {
	RecordFetch(ctx context.Context, name string, fetchedAt time.Time, fetchErr error) error
}
