package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/news-comb/app/aggregate"
	"github.com/lysyi3m/news-comb/app/api"
	"github.com/lysyi3m/news-comb/app/cfg"
	"github.com/lysyi3m/news-comb/app/content"
	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/engine"
	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/moderation"
	"github.com/lysyi3m/news-comb/app/notify"
	"github.com/lysyi3m/news-comb/app/sources"
	"github.com/lysyi3m/news-comb/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting News Comb server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	configCache := sources.NewConfigCache(appCfg.SourcesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load source configurations", "dir", appCfg.SourcesDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Source configurations loaded", "dir", appCfg.SourcesDir, "count", configCache.GetConfigCount())

	articleRepo := database.NewArticleRepository(db)
	categoryRepo := database.NewCategoryRepository(db)
	interactionRepo := database.NewInteractionRepository(db)
	subscriptionRepo := database.NewSubscriptionRepository(db)
	reportRepo := database.NewReportRepository(db)
	sourceRepo := database.NewSourceRepository(db)
	notificationRepo := database.NewNotificationRepository(db)

	ctx := context.Background()
	for _, sourceConfig := range configCache.GetConfigs() {
		if err := sourceRepo.UpsertSource(ctx, sourceConfig.Name, sourceConfig.Type, sourceConfig.URL, sourceConfig.Settings.Enabled); err != nil {
			slog.Warn("Failed to register source", "source", sourceConfig.Name, "error", err)
		}
	}

	httpClient := &http.Client{Timeout: 60 * time.Second}

	adapters, err := sources.NewAdapters(configCache.GetConfigs(), httpClient, appCfg.UserAgent, sourceRepo)
	if err != nil {
		slog.Error("Failed to build source adapters", "error", err)
		os.Exit(1)
	}

	var mailer notify.Mailer = notify.LogMailer{}
	if appCfg.AMQPURL != "" {
		amqpMailer, err := notify.NewAMQPMailer(appCfg.AMQPURL, appCfg.MailQueue)
		if err != nil {
			slog.Error("Failed to connect to mail queue", "queue", appCfg.MailQueue, "error", err)
			os.Exit(1)
		}
		defer amqpMailer.Close()
		mailer = amqpMailer
		slog.Info("Email jobs are published to RabbitMQ", "queue", appCfg.MailQueue)
	} else {
		slog.Warn("AMQP_URL not set, emails are only logged")
	}

	gate := moderation.NewGate(articleRepo, reportRepo, mailer, appCfg.AdminEmail, appCfg.ReportThreshold)
	dispatcher := notify.NewDispatcher(subscriptionRepo, notificationRepo, mailer)

	newsEngine := engine.New(engine.Deps{
		Articles:      articleRepo,
		Categories:    categoryRepo,
		Interactions:  interactionRepo,
		Subscriptions: subscriptionRepo,
		Notifications: notificationRepo,
		Reporter:      gate,
	}, appCfg.RecommendationLimit, appCfg.HeadlinesLimit)

	pipeline := engine.NewPipeline(aggregate.NewAggregator(adapters), articleRepo, categoryRepo, dispatcher, sourceRepo)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval_seconds", appCfg.SchedulerInterval, "adapters", len(adapters))
	scheduler := tasks.NewScheduler(pipeline, articleRepo, configCache, httpClient, content.NewExtractor())
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(api.Deps{
		Engine:      newsEngine,
		Users:       subscriptionRepo,
		Sources:     sourceRepo,
		Articles:    articleRepo,
		ConfigCache: configCache,
		Scheduler:   scheduler,
		Generator:   feed.NewGenerator(appCfg.Version),
		BaseURL:     appCfg.BaseUrl,
	})
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}
