package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SourceRepository tracks configured sources and their hourly request counters
type SourceRepository struct {
	db *DB
}

func NewSourceRepository(db *DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// UpsertSource records the current configuration of a source, keeping its counters
func (r *SourceRepository) UpsertSource(ctx context.Context, name, sourceType, url string, enabled bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sources (name, type, url, enabled, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			type = excluded.type,
			url = excluded.url,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`, name, sourceType, url, enabled, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}
	return nil
}

// ConsumeRequest takes one request from the source's hourly budget. The window
// resets once an hour has passed since it started. It returns false when the
// budget is spent.
func (r *SourceRepository) ConsumeRequest(ctx context.Context, name string, limit int, now time.Time) (bool, error) {
	now = now.UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sources (name, updated_at) VALUES (?, ?)
		ON CONFLICT (name) DO NOTHING
	`, name, now)
	if err != nil {
		return false, fmt.Errorf("failed to ensure source: %w", err)
	}

	var count int
	var window sql.NullTime
	err = tx.QueryRowContext(ctx,
		`SELECT requests_this_hour, window_started_at FROM sources WHERE name = ?`, name).Scan(&count, &window)
	if err != nil {
		return false, fmt.Errorf("failed to read request counter: %w", err)
	}

	started := window.Time
	if !window.Valid || now.Sub(started) >= time.Hour {
		count, started = 0, now
	}

	allowed := count < limit
	if allowed {
		count++
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE sources SET requests_this_hour = ?, window_started_at = ? WHERE name = ?
	`, count, started, name)
	if err != nil {
		return false, fmt.Errorf("failed to update request counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit request counter: %w", err)
	}
	return allowed, nil
}

// RecordFetch stores the time and error of the latest fetch of a source
func (r *SourceRepository) RecordFetch(ctx context.Context, name string, fetchedAt time.Time, fetchErr error) error {
	lastError := ""
	if fetchErr != nil {
		lastError = fetchErr.Error()
	}

	_, err := r.db.ExecContext(ctx, `
		UPDATE sources SET last_fetched_at = ?, last_error = ?, updated_at = ? WHERE name = ?
	`, fetchedAt.UTC(), lastError, time.Now().UTC(), name)
	if err != nil {
		return fmt.Errorf("failed to record fetch: %w", err)
	}
	return nil
}

func (r *SourceRepository) ListSources(ctx context.Context) ([]Source, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, type, url, enabled, requests_this_hour, window_started_at,
		       last_fetched_at, last_error, updated_at
		FROM sources
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var s Source
		var window, fetched sql.NullTime
		err := rows.Scan(&s.Name, &s.Type, &s.URL, &s.Enabled, &s.RequestsThisHour,
			&window, &fetched, &s.LastError, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		if window.Valid {
			s.WindowStartedAt = &window.Time
		}
		if fetched.Valid {
			s.LastFetchedAt = &fetched.Time
		}
		sources = append(sources, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source rows: %w", err)
	}

	return sources, nil
}
