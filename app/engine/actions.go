package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/lysyi3m/news-comb/app/moderation"
	"github.com/lysyi3m/news-comb/app/news"
)

type Action string

const (
	ActionLike    Action = "like"
	ActionUnlike  Action = "unlike"
	ActionDislike Action = "dislike"
	ActionRead    Action = "read"
	ActionSave    Action = "save"
	ActionUnsave  Action = "unsave"
)

// Interact applies a user action to a visible article and returns the article as it is
// afterwards. Repeating an action is a no-op.
func (e *Engine) Interact(ctx context.Context, userID, articleID int64, action Action) (*news.Article, error) {
	if _, err := e.GetArticleByID(ctx, articleID); err != nil {
		return nil, err
	}

	var apply func(ctx context.Context, userID, articleID int64) (bool, error)
	switch action {
	case ActionLike:
		apply = e.Interactions.AddLike
	case ActionUnlike:
		apply = e.Interactions.RemoveLike
	case ActionDislike:
		apply = e.Interactions.AddDislike
	case ActionRead:
		apply = e.Interactions.MarkRead
	case ActionSave:
		apply = e.Interactions.AddSave
	case ActionUnsave:
		apply = e.Interactions.RemoveSave
	default:
		return nil, news.DomainError(fmt.Sprintf("unknown action %q", action), nil)
	}

	if _, err := apply(ctx, userID, articleID); err != nil {
		return nil, fmt.Errorf("failed to %s article: %w", action, err)
	}

	return e.Articles.GetArticle(ctx, articleID)
}

// Report submits a user report to the moderation gate.
func (e *Engine) Report(ctx context.Context, userID, articleID int64, reason string) (*moderation.Outcome, error) {
	return e.Reporter.Report(ctx, userID, articleID, strings.TrimSpace(reason))
}

// UpdateSubscription creates or replaces the user's subscription for its category.
// Keywords are stored in the canonical comma-separated form.
func (e *Engine) UpdateSubscription(ctx context.Context, sub news.Subscription) (*news.Subscription, error) {
	if sub.CategoryID != nil {
		categories, err := e.Categories.GetAllCategories(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get categories: %w", err)
		}
		if !hasCategory(categories, *sub.CategoryID) {
			return nil, news.DomainError(fmt.Sprintf("category %d", *sub.CategoryID), news.ErrNotFound)
		}
	}

	sub.Keywords = strings.Join(news.UniqueKeywords(news.ParseKeywordList(sub.Keywords)), ", ")

	if err := e.Subscriptions.UpsertSubscription(ctx, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (e *Engine) AddFilteredKeyword(ctx context.Context, keyword string) error {
	return e.Categories.AddFilteredKeyword(ctx, keyword)
}
