package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/news-comb/app/news"
)

type SubscriberSource interface {
	ListSubscribers(ctx context.Context) ([]news.Subscriber, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *news.Notification) error
}

type Stats struct {
	Notifications int
	Emails        int
	Failures      int
}

// Dispatcher matches new articles against subscriptions, stores the resulting
// notifications and mails the ones that ask for it.
type Dispatcher struct {
	subscribers SubscriberSource
	store       NotificationStore
	mailer      Mailer
}

func NewDispatcher(subscribers SubscriberSource, store NotificationStore, mailer Mailer) *Dispatcher {
	return &Dispatcher{subscribers: subscribers, store: store, mailer: mailer}
}

// NotifyArticles loads subscribers once and notifies them about every given article.
// Delivery is at most once per call: a failed email or store write is logged and counted.
func (d *Dispatcher) NotifyArticles(ctx context.Context, articles []news.Article) (Stats, error) {
	var stats Stats
	if len(articles) == 0 {
		return stats, nil
	}

	subscribers, err := d.subscribers.ListSubscribers(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to load subscribers: %w", err)
	}

	for _, article := range articles {
		for _, match := range MatchArticle(article, subscribers) {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			d.deliver(ctx, article, match, &stats)
		}
	}

	return stats, nil
}

func (d *Dispatcher) deliver(ctx context.Context, article news.Article, match Match, stats *Stats) {
	title, body := Compose(article, match.Kind)

	notification := news.Notification{
		UserID:    match.User.ID,
		ArticleID: article.ID,
		Kind:      match.Kind,
		Title:     title,
		Body:      body,
	}

	if match.SendEmail && match.User.Email != "" {
		notification.Emailed = d.mailer.SendEmail(ctx, match.User.Email, title, body)
		if notification.Emailed {
			stats.Emails++
		} else {
			stats.Failures++
		}
	}

	if err := d.store.CreateNotification(ctx, &notification); err != nil {
		slog.Warn("Failed to store notification", "user_id", match.User.ID, "article_id", article.ID, "error", err)
		stats.Failures++
		return
	}
	stats.Notifications++
}
