package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lysyi3m/news-comb/app/news"
)

// SubscriptionRepository handles users and their notification subscriptions
type SubscriptionRepository struct {
	db *DB
}

func NewSubscriptionRepository(db *DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) CreateUser(ctx context.Context, user *news.User) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (email, name, active, created_at) VALUES (?, ?, ?, ?)
	`, user.Email, user.Name, user.Active, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return news.DomainError(fmt.Sprintf("user %s already exists", user.Email), err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	user.ID = id
	return nil
}

func (r *SubscriptionRepository) GetUserSubscriptions(ctx context.Context, userID int64) ([]news.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, category_id, enabled, keywords, email_enabled, updated_at
		FROM notification_subscriptions
		WHERE user_id = ?
		ORDER BY IFNULL(category_id, 0)
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriptions: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

// UpsertSubscription creates or replaces the subscription for (user, category).
// A nil CategoryID is the user's global keyword subscription.
func (r *SubscriptionRepository) UpsertSubscription(ctx context.Context, sub *news.Subscription) error {
	sub.UpdatedAt = time.Now().UTC()

	var category sql.NullInt64
	if sub.CategoryID != nil {
		category = sql.NullInt64{Int64: *sub.CategoryID, Valid: true}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM notification_subscriptions
		WHERE user_id = ? AND IFNULL(category_id, 0) = ?
	`, sub.UserID, category.Int64).Scan(&id)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx, `
			INSERT INTO notification_subscriptions (user_id, category_id, enabled, keywords, email_enabled, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, sub.UserID, category, sub.Enabled, sub.Keywords, sub.EmailEnabled, sub.UpdatedAt)
		if err != nil {
			if isForeignKeyViolation(err) {
				return news.DomainError(fmt.Sprintf("user %d", sub.UserID), news.ErrNotFound)
			}
			return fmt.Errorf("failed to insert subscription: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read subscription id: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to look up subscription: %w", err)
	default:
		_, err := tx.ExecContext(ctx, `
			UPDATE notification_subscriptions
			SET enabled = ?, keywords = ?, email_enabled = ?, updated_at = ?
			WHERE id = ?
		`, sub.Enabled, sub.Keywords, sub.EmailEnabled, sub.UpdatedAt, id)
		if err != nil {
			return fmt.Errorf("failed to update subscription: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit subscription: %w", err)
	}

	sub.ID = id
	return nil
}

// ListSubscribers returns every active user with all of their subscriptions
func (r *SubscriptionRepository) ListSubscribers(ctx context.Context) ([]news.Subscriber, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, email, name, active FROM users WHERE active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var subscribers []news.Subscriber
	index := make(map[int64]int)
	for rows.Next() {
		var u news.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Active); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		index[u.ID] = len(subscribers)
		subscribers = append(subscribers, news.Subscriber{User: u})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	rows.Close()

	subRows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, category_id, enabled, keywords, email_enabled, updated_at
		FROM notification_subscriptions
		ORDER BY user_id, IFNULL(category_id, 0)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer subRows.Close()

	subs, err := scanSubscriptions(subRows)
	if err != nil {
		return nil, err
	}
	for _, sub := range subs {
		if i, ok := index[sub.UserID]; ok {
			subscribers[i].Subscriptions = append(subscribers[i].Subscriptions, sub)
		}
	}

	return subscribers, nil
}

func scanSubscriptions(rows *sql.Rows) ([]news.Subscription, error) {
	var subs []news.Subscription
	for rows.Next() {
		var s news.Subscription
		var category sql.NullInt64
		if err := rows.Scan(&s.ID, &s.UserID, &category, &s.Enabled, &s.Keywords, &s.EmailEnabled, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription row: %w", err)
		}
		if category.Valid {
			id := category.Int64
			s.CategoryID = &id
		}
		subs = append(subs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscription rows: %w", err)
	}

	return subs, nil
}
