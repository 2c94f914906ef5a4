package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/news-comb/app/news"
)

const articleColumns = `id, title, description, url, source, origin, COALESCE(category_id, 0),
	image_url, author, published_at, created_at, likes, dislikes, reports, hidden`

// ArticleRepository handles database operations for articles
type ArticleRepository struct {
	db *DB
}

func NewArticleRepository(db *DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// ArticleExists reports whether an article with the given canonical URL is stored
func (r *ArticleRepository) ArticleExists(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM articles WHERE url = ?)`, url).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check article existence: %w", err)
	}
	return exists, nil
}

// CreateArticles inserts a batch in a single transaction and returns the stored articles
// with their IDs set. A row that fails to insert is logged and skipped. Cancellation rolls back the whole batch.
func (r *ArticleRepository) CreateArticles(ctx context.Context, articles []news.Article) ([]news.Article, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	created := make([]news.Article, 0, len(articles))
	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := insertArticle(ctx, tx, &article); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			slog.Warn("Failed to store article", "url", article.URL, "source", article.Source, "error", err)
			continue
		}
		created = append(created, article)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit articles: %w", err)
	}
	return created, nil
}

func insertArticle(ctx context.Context, tx *sql.Tx, article *news.Article) error {
	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now()
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO articles (
			title, description, url, source, origin, category_id, image_url, author,
			published_at, created_at, likes, dislikes, reports, hidden
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, article.Title, article.Description, article.URL, article.Source, article.Origin, nullID(article.CategoryID),
		article.ImageURL, article.Author, article.PublishedAt.UTC(), article.CreatedAt.UTC(),
		article.Likes, article.Dislikes, article.Reports, article.Hidden)
	if err != nil {
		if isUniqueViolation(err) {
			return news.DomainError(fmt.Sprintf("article %s already exists", article.URL), err)
		}
		return fmt.Errorf("failed to create article: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read article id: %w", err)
	}
	article.ID = id
	return nil
}

// UpdateCategory sets the article's category and leaves every other column alone
func (r *ArticleRepository) UpdateCategory(ctx context.Context, id, categoryID int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE articles SET category_id = ? WHERE id = ?`, nullID(categoryID), id)
	if err != nil {
		return fmt.Errorf("failed to update article category: %w", err)
	}
	return expectRow(res, fmt.Sprintf("article %d", id))
}

// ApplyReports stores the report count and hides the article when hide is set.
// The count never goes down and a hidden article stays hidden.
func (r *ArticleRepository) ApplyReports(ctx context.Context, id int64, count int, hide bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE articles SET
			reports = MAX(reports, ?),
			hidden = CASE WHEN ? THEN 1 ELSE hidden END
		WHERE id = ?
	`, count, hide, id)
	if err != nil {
		return fmt.Errorf("failed to apply reports: %w", err)
	}
	return expectRow(res, fmt.Sprintf("article %d", id))
}

// GetArticle returns the article or a domain error wrapping news.ErrNotFound
func (r *ArticleRepository) GetArticle(ctx context.Context, id int64) (*news.Article, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)

	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, news.DomainError(fmt.Sprintf("article %d", id), news.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return &article, nil
}

// ListArticles returns stored articles newest first
func (r *ArticleRepository) ListArticles(ctx context.Context, filter ArticleFilter) ([]news.Article, error) {
	var where []string
	var args []any

	if !filter.IncludeHidden {
		where = append(where, "hidden = 0")
	}
	if filter.CategoryID != 0 {
		where = append(where, "category_id = ?")
		args = append(args, filter.CategoryID)
	}

	query := `SELECT ` + articleColumns + ` FROM articles`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY published_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	var articles []news.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

// GetArticleCount returns the total number of stored articles, hidden included
func (r *ArticleRepository) GetArticleCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

// GetArticlesForEnrichment returns pending articles fetched by the given sources whose
// description is still the placeholder
func (r *ArticleRepository) GetArticlesForEnrichment(ctx context.Context, origins []string, limit int) ([]EnrichmentCandidate, error) {
	if len(origins) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(origins)), ", ")
	args := []any{EnrichmentPending, news.FallbackDescription}
	for _, origin := range origins {
		args = append(args, origin)
	}
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, url, description
		FROM articles
		WHERE enrichment_status = ?
		  AND description = ?
		  AND origin IN (`+placeholders+`)
		ORDER BY published_at DESC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles for enrichment: %w", err)
	}
	defer rows.Close()

	var candidates []EnrichmentCandidate
	for rows.Next() {
		var c EnrichmentCandidate
		if err := rows.Scan(&c.ID, &c.URL, &c.Description); err != nil {
			return nil, fmt.Errorf("failed to scan enrichment row: %w", err)
		}
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enrichment rows: %w", err)
	}

	return candidates, nil
}

// UpdateEnrichment records an enrichment attempt. An empty description keeps the current one.
func (r *ArticleRepository) UpdateEnrichment(ctx context.Context, id int64, description, status string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE articles SET
			description = CASE WHEN ? = '' THEN description ELSE ? END,
			enrichment_status = ?,
			enriched_at = ?
		WHERE id = ?
	`, description, description, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update enrichment status: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (news.Article, error) {
	var a news.Article
	err := row.Scan(
		&a.ID, &a.Title, &a.Description, &a.URL, &a.Source, &a.Origin, &a.CategoryID,
		&a.ImageURL, &a.Author, &a.PublishedAt, &a.CreatedAt,
		&a.Likes, &a.Dislikes, &a.Reports, &a.Hidden,
	)
	return a, err
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func expectRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return news.DomainError(what, news.ErrNotFound)
	}
	return nil
}
