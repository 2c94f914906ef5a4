package api

import (
	"context"
	"time"

	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/engine"
	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/moderation"
	"github.com/lysyi3m/news-comb/app/news"
	"github.com/lysyi3m/news-comb/app/recommend"
	"github.com/lysyi3m/news-comb/app/sources"
	"github.com/lysyi3m/news-comb/app/tasks"
)

// Service is the part of the engine the HTTP surface exposes.
type Service interface {
	GetHeadlines(ctx context.Context, q engine.HeadlinesQuery) ([]news.Article, error)
	Search(ctx context.Context, query string, limit int) ([]news.Article, error)
	GetArticleByID(ctx context.Context, id int64) (*news.Article, error)
	GetCategories(ctx context.Context) ([]news.Category, error)
	GetRecommended(ctx context.Context, userID int64, limit int) ([]recommend.Scored, error)
	GetRecommendedInCategory(ctx context.Context, userID, categoryID int64, limit int) ([]recommend.Scored, error)
	GetNotifications(ctx context.Context, userID int64, limit int) ([]news.Notification, error)
	Interact(ctx context.Context, userID, articleID int64, action engine.Action) (*news.Article, error)
	Report(ctx context.Context, userID, articleID int64, reason string) (*moderation.Outcome, error)
	UpdateSubscription(ctx context.Context, sub news.Subscription) (*news.Subscription, error)
	AddFilteredKeyword(ctx context.Context, keyword string) error
}

var _ Service = (*engine.Engine)(nil)

type UserStore interface {
	CreateUser(ctx context.Context, user *news.User) error
}

type SourceStore interface {
	ListSources(ctx context.Context) ([]database.Source, error)
}

type ArticleCounter interface {
	GetArticleCount(ctx context.Context) (int, error)
}

var (
	_ UserStore      = (*database.SubscriptionRepository)(nil)
	_ SourceStore    = (*database.SourceRepository)(nil)
	_ ArticleCounter = (*database.ArticleRepository)(nil)
)

type Deps struct {
	Engine      Service
	Users       UserStore
	Sources     SourceStore
	Articles    ArticleCounter
	ConfigCache *sources.ConfigCache
	Scheduler   tasks.TaskSchedulerInterface
	Generator   *feed.Generator
	BaseURL     string
}

type Handler struct {
	Deps
}

type ArticleResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	CategoryID  int64     `json:"category_id,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Likes       int       `json:"likes"`
	Dislikes    int       `json:"dislikes"`
}

type ScoredArticleResponse struct {
	ArticleResponse
	Score float64 `json:"score"`
}

type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type NotificationResponse struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"article_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Emailed   bool      `json:"emailed"`
	CreatedAt time.Time `json:"created_at"`
}

type SubscriptionRequest struct {
	CategoryID   *int64 `json:"category_id"`
	Enabled      bool   `json:"enabled"`
	Keywords     string `json:"keywords"`
	EmailEnabled bool   `json:"email_enabled"`
}

type SubscriptionResponse struct {
	ID           int64     `json:"id"`
	CategoryID   *int64    `json:"category_id"`
	Enabled      bool      `json:"enabled"`
	Keywords     string    `json:"keywords"`
	EmailEnabled bool      `json:"email_enabled"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ReportRequest struct {
	Reason string `json:"reason"`
}

type KeywordRequest struct {
	Keyword string `json:"keyword" binding:"required"`
}

type UserRequest struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name"`
}

func toArticleResponse(article news.Article) ArticleResponse {
	return ArticleResponse{
		ID:          article.ID,
		Title:       article.Title,
		Description: article.Description,
		URL:         article.URL,
		Source:      article.Source,
		CategoryID:  article.CategoryID,
		ImageURL:    article.ImageURL,
		Author:      article.Author,
		PublishedAt: article.PublishedAt,
		Likes:       article.Likes,
		Dislikes:    article.Dislikes,
	}
}

func toArticleResponses(articles []news.Article) []ArticleResponse {
	responses := make([]ArticleResponse, 0, len(articles))
	for _, article := range articles {
		responses = append(responses, toArticleResponse(article))
	}
	return responses
}

func toScoredResponses(scored []recommend.Scored) []ScoredArticleResponse {
	responses := make([]ScoredArticleResponse, 0, len(scored))
	for _, s := range scored {
		responses = append(responses, ScoredArticleResponse{ArticleResponse: toArticleResponse(s.Article), Score: s.Score})
	}
	return responses
}
