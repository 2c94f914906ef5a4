package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lysyi3m/news-comb/app/news"
)

// relation describes one (user, article) signal table and the article counter it drives
type relation struct {
	table   string
	counter string
}

var (
	likes    = relation{table: "article_likes", counter: "likes"}
	dislikes = relation{table: "article_dislikes", counter: "dislikes"}
	reads    = relation{table: "article_reads"}
	saves    = relation{table: "article_saves"}
)

// InteractionRepository handles likes, dislikes, reads and saves
type InteractionRepository struct {
	db *DB
}

func NewInteractionRepository(db *DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// GetUserInteractionSets loads the liked, read and saved article ids of a user in one query
func (r *InteractionRepository) GetUserInteractionSets(ctx context.Context, userID int64) (news.Interactions, error) {
	sets := news.Interactions{
		Liked: news.NewIDSet(),
		Read:  news.NewIDSet(),
		Saved: news.NewIDSet(),
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT 'like', article_id FROM article_likes WHERE user_id = ?
		UNION ALL
		SELECT 'read', article_id FROM article_reads WHERE user_id = ?
		UNION ALL
		SELECT 'save', article_id FROM article_saves WHERE user_id = ?
	`, userID, userID, userID)
	if err != nil {
		return sets, fmt.Errorf("failed to get interaction sets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var articleID int64
		if err := rows.Scan(&kind, &articleID); err != nil {
			return sets, fmt.Errorf("failed to scan interaction row: %w", err)
		}
		switch kind {
		case "like":
			sets.Liked[articleID] = struct{}{}
		case "read":
			sets.Read[articleID] = struct{}{}
		case "save":
			sets.Saved[articleID] = struct{}{}
		}
	}

	if err := rows.Err(); err != nil {
		return sets, fmt.Errorf("error iterating interaction rows: %w", err)
	}

	return sets, nil
}

func (r *InteractionRepository) AddLike(ctx context.Context, userID, articleID int64) (bool, error) {
	return r.add(ctx, likes, userID, articleID)
}

func (r *InteractionRepository) RemoveLike(ctx context.Context, userID, articleID int64) (bool, error) {
	return r.remove(ctx, likes, userID, articleID)
}

func (r *InteractionRepository) AddDislike(ctx context.Context, userID, articleID int64) (bool, error) {
	return r.add(ctx, dislikes, userID, articleID)
}

func (r *InteractionRepository) MarkRead(ctx context.Context, userID, articleID int64) (bool, error) {
	return r.add(ctx, reads, userID, articleID)
}

func (r *InteractionRepository) AddSave(ctx context.Context, userID, articleID int64) (bool, error) {
	return r.add(ctx, saves, userID, articleID)
}

func (r *InteractionRepository) RemoveSave(ctx context.Context, userID, articleID int64) (bool, error) {
	return r.remove(ctx, saves, userID, articleID)
}

// add inserts the pair and bumps the article counter in one transaction.
// It returns false when the pair already existed.
func (r *InteractionRepository) add(ctx context.Context, rel relation, userID, articleID int64) (bool, error) {
	return r.inTx(ctx, func(tx *sql.Tx) (bool, error) {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO `+rel.table+` (user_id, article_id, created_at) VALUES (?, ?, ?)
			 ON CONFLICT (user_id, article_id) DO NOTHING`,
			userID, articleID, time.Now().UTC())
		if err != nil {
			if isForeignKeyViolation(err) {
				return false, news.DomainError(fmt.Sprintf("user %d or article %d", userID, articleID), news.ErrNotFound)
			}
			return false, fmt.Errorf("failed to insert into %s: %w", rel.table, err)
		}
		return r.adjust(ctx, tx, rel, res, articleID, 1)
	})
}

func (r *InteractionRepository) remove(ctx context.Context, rel relation, userID, articleID int64) (bool, error) {
	return r.inTx(ctx, func(tx *sql.Tx) (bool, error) {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM `+rel.table+` WHERE user_id = ? AND article_id = ?`, userID, articleID)
		if err != nil {
			return false, fmt.Errorf("failed to delete from %s: %w", rel.table, err)
		}
		return r.adjust(ctx, tx, rel, res, articleID, -1)
	})
}

func (r *InteractionRepository) adjust(ctx context.Context, tx *sql.Tx, rel relation, res sql.Result, articleID int64, delta int) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 || rel.counter == "" {
		return n > 0, nil
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE articles SET `+rel.counter+` = MAX(`+rel.counter+` + ?, 0) WHERE id = ?`, delta, articleID)
	if err != nil {
		return false, fmt.Errorf("failed to update %s count: %w", rel.counter, err)
	}
	return true, nil
}

func (r *InteractionRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) (bool, error)) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	changed, err := fn(tx)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return changed, nil
}
