package news

import (
	"time"
)

const (
	FallbackTitle       = "No Title"
	FallbackDescription = "No Description"
)

type Article struct {
	ID          int64
	Title       string
	Description string
	URL         string // unique across the whole corpus
	Source      string // label shown to readers
	Origin      string // name of the configured source that fetched it
	CategoryID  int64  // 0 while uncategorized
	ImageURL    string
	Author      string
	PublishedAt time.Time
	CreatedAt   time.Time
	Likes       int
	Dislikes    int
	Reports     int
	Hidden      bool
}

type Category struct {
	ID       int64
	Name     string
	Keywords string // comma-separated
	Hidden   bool
}

type IDSet map[int64]struct{}

func NewIDSet(ids ...int64) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Interactions holds the article ids a user has liked, read and saved.
type Interactions struct {
	Liked IDSet
	Read  IDSet
	Saved IDSet
}

type Subscription struct {
	ID           int64
	UserID       int64
	CategoryID   *int64 // nil is the global keyword subscription
	Enabled      bool
	Keywords     string // JSON array or comma-separated
	EmailEnabled bool
	UpdatedAt    time.Time
}

type User struct {
	ID     int64
	Email  string
	Name   string
	Active bool
}

// Subscriber is an active user together with all of their subscriptions.
type Subscriber struct {
	User          User
	Subscriptions []Subscription
}

type Report struct {
	ID        int64
	UserID    int64
	ArticleID int64
	Reason    string
	CreatedAt time.Time
}

type NotificationKind string

const (
	NotificationKeyword  NotificationKind = "keyword"
	NotificationCategory NotificationKind = "category"
)

type Notification struct {
	ID        int64
	UserID    int64
	ArticleID int64
	Kind      NotificationKind
	Title     string
	Body      string
	Emailed   bool
	CreatedAt time.Time
}
