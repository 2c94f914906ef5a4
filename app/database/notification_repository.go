package database

import (
	"context"
	"fmt"
	"time"

	"github.com/lysyi3m/news-comb/app/news"
)

// NotificationRepository handles the in-app notification log
type NotificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, n *news.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (user_id, article_id, kind, title, body, emailed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, n.UserID, n.ArticleID, string(n.Kind), n.Title, n.Body, n.Emailed, n.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read notification id: %w", err)
	}
	n.ID = id
	return nil
}

// ListNotifications returns a user's notifications, newest first
func (r *NotificationRepository) ListNotifications(ctx context.Context, userID int64, limit int) ([]news.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, article_id, kind, title, body, emailed, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []news.Notification
	for rows.Next() {
		var n news.Notification
		var kind string
		if err := rows.Scan(&n.ID, &n.UserID, &n.ArticleID, &kind, &n.Title, &n.Body, &n.Emailed, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		n.Kind = news.NotificationKind(kind)
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}

	return notifications, nil
}
