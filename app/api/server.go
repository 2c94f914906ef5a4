package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/news-comb/app/engine"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health"},
	}))

	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"},
		MaxAge:          12 * time.Hour,
	}))

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/headlines", handler.GetHeadlines)
	r.GET("/search", handler.Search)
	r.GET("/articles/:id", handler.GetArticle)
	r.GET("/categories", handler.GetCategories)
	r.GET("/health", handler.GetHealth)

	if apiAccessKey != "" {
		api := r.Group("/api")
		api.Use(authMiddleware(apiAccessKey))
		{
			users := api.Group("/users/:user_id")
			users.GET("/recommended", handler.GetRecommended)
			users.GET("/recommended.rss", handler.GetRecommendedFeed)
			users.GET("/categories/:category_id/recommended", handler.GetRecommendedInCategory)
			users.POST("/articles/:id/like", handler.Interact(engine.ActionLike))
			users.DELETE("/articles/:id/like", handler.Interact(engine.ActionUnlike))
			users.POST("/articles/:id/dislike", handler.Interact(engine.ActionDislike))
			users.POST("/articles/:id/read", handler.Interact(engine.ActionRead))
			users.POST("/articles/:id/save", handler.Interact(engine.ActionSave))
			users.DELETE("/articles/:id/save", handler.Interact(engine.ActionUnsave))
			users.POST("/articles/:id/report", handler.ReportArticle)
			users.GET("/notifications", handler.GetNotifications)
			users.PUT("/subscriptions", handler.UpdateSubscription)

			admin := api.Group("/admin")
			admin.POST("/users", handler.APICreateUser)
			admin.POST("/aggregate", handler.APIAggregate)
			admin.POST("/recategorize", handler.APIRecategorize)
			admin.POST("/filtered-keywords", handler.APIAddFilteredKeyword)
			admin.GET("/sources", handler.APIListSources)
		}
		slog.Info("API endpoints enabled with authentication")
	} else {
		slog.Warn("API endpoints disabled (API_ACCESS_KEY not set)")
	}

	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"headlines":  "/headlines?category_id=&limit=&offset=",
			"search":     "/search?q=",
			"article":    "/articles/<id>",
			"categories": "/categories",
			"health":     "/health",
		}

		if apiAccessKey != "" {
			endpoints["recommended"] = "/api/users/<user_id>/recommended (requires X-API-Key header)"
			endpoints["recommended_rss"] = "/api/users/<user_id>/recommended.rss (requires X-API-Key header)"
			endpoints["interactions"] = "/api/users/<user_id>/articles/<id>/{like,dislike,read,save,report} (POST, requires X-API-Key header)"
			endpoints["subscriptions"] = "/api/users/<user_id>/subscriptions (PUT, requires X-API-Key header)"
			endpoints["admin"] = "/api/admin/{users,aggregate,recategorize,filtered-keywords,sources} (requires X-API-Key header)"
		}

		c.JSON(http.StatusOK, gin.H{
			"service":     "News Comb",
			"version":     handler.Generator.Version(),
			"description": "News aggregation with categorization, moderation and personalized recommendations",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"enabled":       apiAccessKey != "",
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			return
		}

		if providedKey != apiAccessKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			return
		}

		c.Next()
	}
}
