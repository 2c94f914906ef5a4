package database

import (
	"time"
)

const (
	EnrichmentPending = "pending"
	EnrichmentSuccess = "success"
	EnrichmentFailed  = "failed"
	EnrichmentSkipped = "skipped"
)

// ArticleFilter narrows ListArticles. Zero values mean no restriction.
type ArticleFilter struct {
	CategoryID    int64
	IncludeHidden bool
	Limit         int
}

type Source struct {
	Name             string
	Type             string
	URL              string
	Enabled          bool
	RequestsThisHour int
	WindowStartedAt  *time.Time
	LastFetchedAt    *time.Time
	LastError        string
	UpdatedAt        time.Time
}

type EnrichmentCandidate struct {
	ID          int64
	URL         string
	Description string
}
