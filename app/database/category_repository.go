package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lysyi3m/news-comb/app/news"
)

// CategoryRepository handles categories and the filtered keyword denylist
type CategoryRepository struct {
	db *DB
}

func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetAllCategories returns categories in their configured order
func (r *CategoryRepository) GetAllCategories(ctx context.Context) ([]news.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, keywords, hidden
		FROM categories
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	defer rows.Close()

	var categories []news.Category
	for rows.Next() {
		var c news.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Keywords, &c.Hidden); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepository) GetFilteredKeywords(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT keyword FROM filtered_keywords ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get filtered keywords: %w", err)
	}
	defer rows.Close()

	var keywords []string
	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return nil, fmt.Errorf("failed to scan filtered keyword: %w", err)
		}
		keywords = append(keywords, kw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating filtered keywords: %w", err)
	}

	return keywords, nil
}

// AddFilteredKeyword stores a denylist term. Adding an existing term is a no-op.
func (r *CategoryRepository) AddFilteredKeyword(ctx context.Context, keyword string) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return news.DomainError("filtered keyword is empty", nil)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO filtered_keywords (keyword, created_at) VALUES (?, ?)
		ON CONFLICT (keyword) DO NOTHING
	`, keyword, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to add filtered keyword: %w", err)
	}
	return nil
}
