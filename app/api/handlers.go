package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/news-comb/app/engine"
	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/news"
	"github.com/lysyi3m/news-comb/app/tasks"
)

func NewHandler(deps Deps) *Handler {
	return &Handler{Deps: deps}
}

func (h *Handler) GetHeadlines(c *gin.Context) {
	categoryID, ok := queryInt64(c, "category_id")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		return
	}

	articles, err := h.Engine.GetHeadlines(c.Request.Context(), engine.HeadlinesQuery{
		CategoryID: categoryID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		respondError(c, "get_headlines", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": toArticleResponses(articles),
		"total":    len(articles),
	})
}

func (h *Handler) Search(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	articles, err := h.Engine.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, "search", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": toArticleResponses(articles),
		"total":    len(articles),
	})
}

func (h *Handler) GetArticle(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}

	article, err := h.Engine.GetArticleByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "get_article", err)
		return
	}

	c.JSON(http.StatusOK, toArticleResponse(*article))
}

func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.Engine.GetCategories(c.Request.Context())
	if err != nil {
		respondError(c, "get_categories", err)
		return
	}

	response := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		response = append(response, CategoryResponse{ID: category.ID, Name: category.Name})
	}

	c.JSON(http.StatusOK, gin.H{"categories": response})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if articleCount, err := h.Articles.GetArticleCount(c.Request.Context()); err == nil {
		health["articles"] = articleCount
	}

	health["loaded_configurations"] = h.ConfigCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetRecommended(c *gin.Context) {
	userID, ok := paramInt64(c, "user_id")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	scored, err := h.Engine.GetRecommended(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, "get_recommended", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": toScoredResponses(scored),
		"total":    len(scored),
	})
}

func (h *Handler) GetRecommendedFeed(c *gin.Context) {
	userID, ok := paramInt64(c, "user_id")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	scored, err := h.Engine.GetRecommended(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, "get_recommended_feed", err)
		return
	}

	categories, err := h.Engine.GetCategories(c.Request.Context())
	if err != nil {
		respondError(c, "get_categories", err)
		return
	}

	names := make(map[int64]string, len(categories))
	for _, category := range categories {
		names[category.ID] = category.Name
	}

	articles := make([]news.Article, 0, len(scored))
	for _, s := range scored {
		articles = append(articles, s.Article)
	}

	channel := feed.Channel{
		Title:       fmt.Sprintf("Recommended news for user %d", userID),
		Link:        h.BaseURL,
		Description: "Personalized headlines ranked by relevance",
	}
	if h.BaseURL != "" {
		channel.SelfLink = fmt.Sprintf("%s/api/users/%d/recommended.rss", h.BaseURL, userID)
	}

	rss, err := h.Generator.Run(channel, articles, names)
	if err != nil {
		slog.Error("RSS generation error", "user_id", userID, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(articles)))

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetRecommendedInCategory(c *gin.Context) {
	userID, ok := paramInt64(c, "user_id")
	if !ok {
		return
	}
	categoryID, ok := paramInt64(c, "category_id")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	scored, err := h.Engine.GetRecommendedInCategory(c.Request.Context(), userID, categoryID, limit)
	if err != nil {
		respondError(c, "get_recommended_in_category", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": toScoredResponses(scored),
		"total":    len(scored),
	})
}

// Interact returns a handler applying one interaction to the article in the path.
func (h *Handler) Interact(action engine.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := paramInt64(c, "user_id")
		if !ok {
			return
		}
		articleID, ok := paramInt64(c, "id")
		if !ok {
			return
		}

		article, err := h.Engine.Interact(c.Request.Context(), userID, articleID, action)
		if err != nil {
			respondError(c, "interact_"+string(action), err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"action":  action,
			"article": toArticleResponse(*article),
		})
	}
}

func (h *Handler) ReportArticle(c *gin.Context) {
	userID, ok := paramInt64(c, "user_id")
	if !ok {
		return
	}
	articleID, ok := paramInt64(c, "id")
	if !ok {
		return
	}

	var req ReportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
	}

	outcome, err := h.Engine.Report(c.Request.Context(), userID, articleID, req.Reason)
	if err != nil {
		respondError(c, "report_article", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":        true,
		"report_id":      outcome.Report.ID,
		"reports":        outcome.Count,
		"hidden":         outcome.Hidden,
		"admin_notified": outcome.AdminNotified,
	})
}

func (h *Handler) GetNotifications(c *gin.Context) {
	userID, ok := paramInt64(c, "user_id")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	notifications, err := h.Engine.GetNotifications(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, "get_notifications", err)
		return
	}

	response := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		response = append(response, NotificationResponse{
			ID:        n.ID,
			ArticleID: n.ArticleID,
			Kind:      string(n.Kind),
			Title:     n.Title,
			Body:      n.Body,
			Emailed:   n.Emailed,
			CreatedAt: n.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": response,
		"total":         len(response),
	})
}

func (h *Handler) UpdateSubscription(c *gin.Context) {
	userID, ok := paramInt64(c, "user_id")
	if !ok {
		return
	}

	var req SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	sub, err := h.Engine.UpdateSubscription(c.Request.Context(), news.Subscription{
		UserID:       userID,
		CategoryID:   req.CategoryID,
		Enabled:      req.Enabled,
		Keywords:     req.Keywords,
		EmailEnabled: req.EmailEnabled,
	})
	if err != nil {
		respondError(c, "update_subscription", err)
		return
	}

	c.JSON(http.StatusOK, SubscriptionResponse{
		ID:           sub.ID,
		CategoryID:   sub.CategoryID,
		Enabled:      sub.Enabled,
		Keywords:     sub.Keywords,
		EmailEnabled: sub.EmailEnabled,
		UpdatedAt:    sub.UpdatedAt,
	})
}

func (h *Handler) APICreateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	email := strings.TrimSpace(req.Email)
	if !strings.Contains(email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
		return
	}

	user := &news.User{Email: email, Name: strings.TrimSpace(req.Name), Active: true}
	if err := h.Users.CreateUser(c.Request.Context(), user); err != nil {
		respondError(c, "create_user", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":     user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"active": user.Active,
	})
}

func (h *Handler) APIAggregate(c *gin.Context) {
	id, err := h.Scheduler.EnqueueAggregate()
	h.respondEnqueued(c, tasks.TaskTypeAggregate, id, err)
}

func (h *Handler) APIRecategorize(c *gin.Context) {
	id, err := h.Scheduler.EnqueueRecategorize()
	h.respondEnqueued(c, tasks.TaskTypeRecategorize, id, err)
}

func (h *Handler) respondEnqueued(c *gin.Context, taskType tasks.TaskType, id string, err error) {
	if errors.Is(err, tasks.ErrTaskInFlight) {
		c.JSON(http.StatusConflict, gin.H{"error": "Task already queued or running", "type": taskType})
		return
	}
	if err != nil {
		slog.Error("Error enqueueing task", "type", string(taskType), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task": gin.H{
			"id":   id,
			"type": taskType,
		},
	})
}

func (h *Handler) APIAddFilteredKeyword(c *gin.Context) {
	var req KeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.Engine.AddFilteredKeyword(c.Request.Context(), req.Keyword); err != nil {
		respondError(c, "add_filtered_keyword", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"keyword": strings.TrimSpace(req.Keyword),
	})
}

func (h *Handler) APIListSources(c *gin.Context) {
	state, err := h.Sources.ListSources(c.Request.Context())
	if err != nil {
		respondError(c, "list_sources", err)
		return
	}

	configs := h.ConfigCache.GetConfigs()
	sources := make([]map[string]interface{}, 0, len(configs))

	for _, sourceConfig := range configs {
		sourceInfo := map[string]interface{}{
			"name":              sourceConfig.Name,
			"type":              sourceConfig.Type,
			"enabled":           sourceConfig.Settings.Enabled,
			"max_items":         sourceConfig.Settings.MaxItems,
			"requests_per_hour": sourceConfig.Settings.RequestsPerHour,
			"extract_content":   sourceConfig.Settings.ExtractContent,
			"timeout":           (time.Duration(sourceConfig.Settings.Timeout) * time.Second).String(),
		}

		for _, s := range state {
			if s.Name != sourceConfig.Name {
				continue
			}
			sourceInfo["requests_this_hour"] = s.RequestsThisHour
			sourceInfo["window_started_at"] = s.WindowStartedAt
			sourceInfo["last_fetched_at"] = s.LastFetchedAt
			sourceInfo["last_error"] = s.LastError
			sourceInfo["updated_at"] = s.UpdatedAt
		}

		sources = append(sources, sourceInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": sources,
		"total":   len(sources),
	})
}

func respondError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, news.ErrNotFound), errors.Is(err, news.ErrHidden):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, news.ErrAlreadyHidden), errors.Is(err, news.ErrAlreadyReported):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case news.IsKind(err, news.KindDomain):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.Error("Request failed", "operation", operation, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func paramInt64(c *gin.Context, name string) (int64, bool) {
	value, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || value <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s parameter", name)})
		return 0, false
	}
	return value, true
}

func queryInt64(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s parameter", name)})
		return 0, false
	}
	return value, true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	value, ok := queryInt64(c, name)
	return int(value), ok
}
