package database

import (
	"context"
	"fmt"
	"time"

	"github.com/lysyi3m/news-comb/app/news"
)

// ReportRepository handles user reports against articles
type ReportRepository struct {
	db *DB
}

func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) HasReported(ctx context.Context, userID, articleID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM reports WHERE user_id = ? AND article_id = ?)`,
		userID, articleID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check report: %w", err)
	}
	return exists, nil
}

// CreateReport stores the report. A second report by the same user is a domain
// error wrapping news.ErrAlreadyReported.
func (r *ReportRepository) CreateReport(ctx context.Context, report *news.Report) error {
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO reports (user_id, article_id, reason, created_at) VALUES (?, ?, ?, ?)
	`, report.UserID, report.ArticleID, report.Reason, report.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return news.DomainError(fmt.Sprintf("article %d", report.ArticleID), news.ErrAlreadyReported)
		}
		if isForeignKeyViolation(err) {
			return news.DomainError(fmt.Sprintf("user %d", report.UserID), news.ErrNotFound)
		}
		return fmt.Errorf("failed to create report: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read report id: %w", err)
	}
	report.ID = id
	return nil
}

func (r *ReportRepository) GetReportCount(ctx context.Context, articleID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports WHERE article_id = ?`, articleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get report count: %w", err)
	}
	return count, nil
}
