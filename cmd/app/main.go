package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chroniclebot/chronicle/internal/config"
	"github.com/chroniclebot/chronicle/internal/database"
	"github.com/chroniclebot/chronicle/internal/database/postgres"
	"github.com/chroniclebot/chronicle/internal/handler"
	"github.com/chroniclebot/chronicle/internal/notion"
	"github.com/chroniclebot/chronicle/internal/scheduler"
	"github.com/chroniclebot/chronicle/internal/server"
	"github.com/chroniclebot/chronicle/internal/slack"
	"github.com/chroniclebot/chronicle/internal/stats"
	syncsvc "github.com/chroniclebot/chronicle/internal/sync"
	"github.com/chroniclebot/chronicle/internal/worker"
)

const (
	selfTestTimeout = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	initLogger(cfg)
	handler.InitValidator()

	dbPool, err := database.NewPool(context.Background(), cfg.GetDBConnString(), database.PoolOptions{})
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	configStore := postgres.NewConfigStore(dbPool)
	historyStore := postgres.NewHistoryStore(dbPool)

	slackClient := slack.NewClient(cfg.SlackBotToken, cfg.SlackAppToken)
	notionClient := notion.NewClient(cfg.NotionAPIKey)

	// Verify both upstream tokens before accepting any work
	selfTestCtx, cancelSelfTest := context.WithTimeout(context.Background(), selfTestTimeout)
	botUserID, err := slackClient.AuthTest(selfTestCtx)
	if err != nil {
		cancelSelfTest()
		slog.Error("Slack auth test failed", "error", err)
		os.Exit(1)
	}
	if err := notionClient.Ping(selfTestCtx); err != nil {
		cancelSelfTest()
		slog.Error("Notion connectivity check failed", "error", err)
		os.Exit(1)
	}
	cancelSelfTest()
	slog.Info("Upstream connectivity verified", "bot_user_id", botUserID)

	collector := stats.NewCollector()
	dedup := syncsvc.NewDeduplicator(syncsvc.DefaultDedupSize, syncsvc.DefaultDedupTTL)

	executor := syncsvc.NewExecutor(configStore, historyStore, slackClient, notionClient,
		dedup, collector, cfg.ConfirmationPosts)
	service := syncsvc.NewService(configStore, historyStore, executor, slackClient, collector)
	matcher := syncsvc.NewMatcher(configStore)

	pool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueLen)
	pool.Start()

	sched := scheduler.New(configStore, historyStore, service)
	service.SetWatcher(sched)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sched.Start(ctx); err != nil {
		slog.Error("Scheduler failed to start", "error", err)
		os.Exit(1)
	}

	events := slack.NewEventSource(slackClient, matcher, executor, service, pool, collector)
	go func() {
		if err := events.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("Slack event source stopped", "error", err)
			stop()
		}
	}()

	srv := server.NewServer(cfg.Port, cfg.APIKey, cfg.TrustedProxies, dbPool, service, collector)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErr:
		slog.Error("Server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	sched.Stop()
	pool.Stop()
	slog.Info("Shutdown complete")
}
