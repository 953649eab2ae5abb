package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"finkid/internal/article"
	"finkid/internal/assistant"
	"finkid/internal/bot"
	"finkid/internal/config"
	"finkid/internal/database"
	"finkid/internal/news"
	"finkid/internal/scheduler"
)

func main() {
	cfg := config.LoadConfig()

	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize db",
			"error", err,
			"dbPath", cfg.DBPath)

		return
	}
	defer func() {
		if err = db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", cfg.DBPath)
		}
	}()
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	summarizer, err := initSummarizer(ctx, cfg, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize summarizer",
			"error", err,
			"proxies", cfg.FetchProxies)

		return
	}

	headlines := initNewsService(ctx, cfg, log)

	botInst, err := bot.New(cfg.Token, bot.Deps{
		Summarizer: summarizer,
		Headlines:  headlines,
		Assistant:  initAssistant(ctx, cfg, log),
		Store:      db,
	}, cfg.AllowedUsers, cfg.NewsAPIKey, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize bot",
			"error", err,
			"allowedUsersCount", len(cfg.AllowedUsers))

		return
	}
	log.InfoContext(ctx, "Bot is initialized",
		"allowedUsersCount", len(cfg.AllowedUsers))

	sched := scheduler.New(ctx, cfg.DigestSpec, db, headlines, botInst, cfg.NewsAPIKey, log)

	if err = sched.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"spec", sched.Spec(),
			"timezone", scheduler.Timezone)

		return
	}
	defer sched.Stop()
	log.InfoContext(ctx, "Scheduler is started",
		"spec", sched.Spec(),
		"timezone", scheduler.Timezone)

	go botInst.Start(ctx)
	log.InfoContext(ctx, "Bot is started",
		"updateTimeoutSeconds", bot.BotUpdateTimeout)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	sig := <-c
	log.InfoContext(ctx, "Shutdown signal is received",
		"signal", sig.String())
	cancel()

	log.InfoContext(ctx, "Exiting...",
		"signal", sig.String(),
		"uptimeSeconds", time.Since(start).Seconds())

	botInst.Stop()
	log.InfoContext(ctx, "Bot is stopped",
		"uptimeSeconds", time.Since(start).Seconds())
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func initSummarizer(ctx context.Context, cfg config.Config, log *slog.Logger) (*article.Summarizer, error) {
	client := &http.Client{Timeout: cfg.FetchTimeout}

	specs := cfg.FetchProxies
	if len(specs) == 0 {
		specs = article.DefaultProxyTemplates
	}

	proxies, err := article.NewProxies(specs, client, log)
	if err != nil {
		return nil, err
	}

	if cfg.FetchDirect {
		proxies = append([]article.Proxy{article.NewDirectProxy(client, log)}, proxies...)
	}

	names := make([]string, 0, len(proxies))
	for _, p := range proxies {
		names = append(names, p.Name())
	}
	log.InfoContext(ctx, "Summarizer is initialized",
		"proxies", names,
		"fetchTimeout", cfg.FetchTimeout.String())

	return article.NewSummarizer(article.NewFetcher(proxies, log), article.NewExtractor(log), log), nil
}

func initNewsService(ctx context.Context, cfg config.Config, log *slog.Logger) *news.Service {
	client := &http.Client{Timeout: cfg.FetchTimeout}

	feeds := cfg.NewsFeeds
	if len(feeds) == 0 {
		feeds = news.DefaultFeeds
	}

	if cfg.NewsAPIKey == "" {
		log.InfoContext(ctx, "NEWS_API_KEY is missing so feeds are used unless users set their own key",
			"envVar", "NEWS_API_KEY",
			"feeds", len(feeds))
	}

	return news.NewService(
		news.NewNewsAPIClient(cfg.NewsAPIBaseURL, client, log),
		news.NewFeedClient(feeds, client, log),
		cfg.NewsCacheTTL,
		log,
	)
}

func initAssistant(ctx context.Context, cfg config.Config, log *slog.Logger) assistant.Assistant {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		log.WarnContext(ctx, "OPENAI_API_KEY is missing so fallback will be used",
			"envVar", "OPENAI_API_KEY")

		return assistant.Offline{}
	}

	a, err := assistant.NewOpenAIAssistant(cfg.OpenAIAPIKey, cfg.AssistantBaseURL, cfg.AssistantModel)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create assistant so fallback will be used",
			"error", err,
			"envVar", "OPENAI_API_KEY")

		return assistant.Offline{}
	}

	log.InfoContext(ctx, "Assistant is initialized",
		"baseURL", cfg.AssistantBaseURL,
		"model", cfg.AssistantModel)

	return a
}
