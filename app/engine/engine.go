package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/news"
	"github.com/lysyi3m/news-comb/app/recommend"
)

const (
	DefaultHeadlinesLimit     = 50
	DefaultNotificationsLimit = 50
)

type Deps struct {
	Articles      ArticleStore
	Categories    CategoryStore
	Interactions  InteractionStore
	Subscriptions SubscriptionStore
	Notifications NotificationLog
	Reporter      Reporter
}

// Engine serves every read and user interaction. All read paths go through the same
// visibility filter, so hidden, filtered or hidden-category articles never leave it.
type Engine struct {
	Deps
	recommendationLimit int
	headlinesLimit      int
	now                 func() time.Time
}

func New(deps Deps, recommendationLimit, headlinesLimit int) *Engine {
	if recommendationLimit <= 0 {
		recommendationLimit = recommend.DefaultLimit
	}
	if headlinesLimit <= 0 {
		headlinesLimit = DefaultHeadlinesLimit
	}
	return &Engine{
		Deps:                deps,
		recommendationLimit: recommendationLimit,
		headlinesLimit:      headlinesLimit,
		now:                 time.Now,
	}
}

type HeadlinesQuery struct {
	CategoryID int64
	Limit      int
	Offset     int
}

// GetHeadlines returns visible articles newest first.
func (e *Engine) GetHeadlines(ctx context.Context, q HeadlinesQuery) ([]news.Article, error) {
	articles, err := e.visibleArticles(ctx, database.ArticleFilter{CategoryID: q.CategoryID})
	if err != nil {
		return nil, err
	}
	return page(articles, q.Offset, cmpLimit(q.Limit, e.headlinesLimit)), nil
}

// Search returns visible articles whose title or description contains the query,
// ignoring case.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]news.Article, error) {
	term := news.Fold(strings.TrimSpace(query))
	if term == "" {
		return nil, news.DomainError("search query is empty", nil)
	}

	articles, err := e.visibleArticles(ctx, database.ArticleFilter{})
	if err != nil {
		return nil, err
	}

	var found []news.Article
	for _, article := range articles {
		if news.ContainsFolded(news.Fold(article.Title), term) || news.ContainsFolded(news.Fold(article.Description), term) {
			found = append(found, article)
		}
	}

	return page(found, 0, cmpLimit(limit, e.headlinesLimit)), nil
}

// GetArticleByID returns a visible article. An article that exists but may not be shown
// is reported with news.ErrHidden.
func (e *Engine) GetArticleByID(ctx context.Context, id int64) (*news.Article, error) {
	article, err := e.Articles.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}

	visibility, _, err := e.visibility(ctx)
	if err != nil {
		return nil, err
	}

	if ok, reason := visibility.Check(*article); !ok {
		return nil, news.DomainError(fmt.Sprintf("article %d: %s", id, reason), news.ErrHidden)
	}
	return article, nil
}

// GetRecommended ranks every visible article for the user.
func (e *Engine) GetRecommended(ctx context.Context, userID int64, limit int) ([]recommend.Scored, error) {
	articles, err := e.visibleArticles(ctx, database.ArticleFilter{})
	if err != nil {
		return nil, err
	}

	signals := recommend.Gather(ctx, userID, e.Interactions, e.Subscriptions)
	return recommend.Rank(articles, signals, e.now(), cmpLimit(limit, e.recommendationLimit), recommend.Score), nil
}

// GetRecommendedInCategory ranks the visible articles of one category with the
// category-local weights.
func (e *Engine) GetRecommendedInCategory(ctx context.Context, userID, categoryID int64, limit int) ([]recommend.Scored, error) {
	visibility, categories, err := e.visibility(ctx)
	if err != nil {
		return nil, err
	}
	if !hasCategory(categories, categoryID) {
		return nil, news.DomainError(fmt.Sprintf("category %d", categoryID), news.ErrNotFound)
	}

	articles, err := e.Articles.ListArticles(ctx, database.ArticleFilter{CategoryID: categoryID})
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	signals := recommend.Gather(ctx, userID, e.Interactions, e.Subscriptions)
	return recommend.Rank(visibility.Run(articles), signals, e.now(), cmpLimit(limit, e.recommendationLimit), recommend.ScoreInCategory), nil
}

// GetCategories returns the categories that are not hidden, in configured order.
func (e *Engine) GetCategories(ctx context.Context) ([]news.Category, error) {
	categories, err := e.Categories.GetAllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	visible := make([]news.Category, 0, len(categories))
	for _, c := range categories {
		if !c.Hidden {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

func (e *Engine) GetNotifications(ctx context.Context, userID int64, limit int) ([]news.Notification, error) {
	return e.Notifications.ListNotifications(ctx, userID, cmpLimit(limit, DefaultNotificationsLimit))
}

// visibility loads the filter data. Read paths fail closed when it cannot be loaded.
func (e *Engine) visibility(ctx context.Context) (*news.Visibility, []news.Category, error) {
	categories, err := e.Categories.GetAllCategories(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get categories: %w", err)
	}

	keywords, err := e.Categories.GetFilteredKeywords(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get filtered keywords: %w", err)
	}

	return news.NewVisibility(keywords, categories), categories, nil
}

func (e *Engine) visibleArticles(ctx context.Context, filter database.ArticleFilter) ([]news.Article, error) {
	visibility, _, err := e.visibility(ctx)
	if err != nil {
		return nil, err
	}

	articles, err := e.Articles.ListArticles(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	return visibility.Run(articles), nil
}

func page(articles []news.Article, offset, limit int) []news.Article {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(articles) {
		return []news.Article{}
	}
	articles = articles[offset:]
	if len(articles) > limit {
		articles = articles[:limit]
	}
	return articles
}

func cmpLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}

func hasCategory(categories []news.Category, id int64) bool {
	for _, c := range categories {
		if c.ID == id {
			return true
		}
	}
	return false
}
