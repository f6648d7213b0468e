package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"repost_bot/internal/ai"
	"repost_bot/internal/api"
	"repost_bot/internal/bot"
	"repost_bot/internal/config"
	"repost_bot/internal/filter"
	"repost_bot/internal/pipeline"
	"repost_bot/internal/rss"
	"repost_bot/internal/scheduler"
	"repost_bot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log, closeLog, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		slog.Error("create logger", "error", err)
		os.Exit(1)
	}
	defer closeLog()

	for _, path := range []string{cfg.QueueFile, cfg.PublishedFile, cfg.DatabasePath} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				log.Error("create data directory", "path", dir, "error", err)
				os.Exit(1)
			}
		}
	}

	rules, err := filter.LoadRules(cfg.RulesFile)
	if err != nil {
		log.Error("load content rules", "error", err)
		os.Exit(1)
	}

	queue, err := storage.OpenFileQueue(cfg.QueueFile)
	if err != nil {
		log.Error("open queue", "path", cfg.QueueFile, "error", err)
		os.Exit(1)
	}

	published, err := storage.OpenFilePublished(cfg.PublishedFile)
	if err != nil {
		log.Error("open published set", "path", cfg.PublishedFile, "error", err)
		os.Exit(1)
	}

	archive, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open archive database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = archive.Close() }()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Error("load timezone", "tz", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	if len(cfg.SourceChatIDs) == 0 && len(cfg.RSSFeeds) == 0 {
		log.Warn("no sources configured, nothing will be ingested")
	}

	aiClient := ai.New(cfg.AnthropicAPIKey, "")
	state := scheduler.NewState()

	pipe := pipeline.New(pipeline.Options{
		Rules:               rules,
		Queue:               queue,
		Published:           published,
		Classifier:          aiClient,
		Rewriter:            aiClient,
		Counters:            state,
		SimilarityThreshold: cfg.SimilarityThreshold,
		Signature:           cfg.SignatureTag,
		SkipForwards:        cfg.SkipForwards,
		Log:                 log,
	})

	b, err := bot.New(cfg, pipe, state, queue, archive, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	sched := scheduler.New(queue, b, archive, state,
		time.Duration(cfg.PostIntervalMinutes)*time.Minute,
		cfg.StartHour, cfg.EndHour, loc, log)
	b.AttachScheduler(sched)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting bot", "queue_len", queue.Len(), "published", published.Len())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(ctx)
	}()

	if len(cfg.RSSFeeds) > 0 {
		poller := rss.NewPoller(cfg.RSSFeeds, rss.NewFetcher(http.DefaultClient), archive, pipe,
			time.Duration(cfg.RSSIntervalMinutes)*time.Minute, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			poller.Run(ctx)
		}()
	}

	if cfg.HTTPAddr != "" {
		srv := &http.Server{Addr: cfg.HTTPAddr, Handler: api.NewServer(state, queue)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("http server", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	b.NotifyOwner("✅ Bot started and listening to sources.")

	b.Run(ctx)

	// A publish cycle in flight must finish before the process exits,
	// otherwise a dequeued item could be lost mid-send.
	wg.Wait()

	log.Info("bot stopped")
}

func newLogger(level, logFile string) (*slog.Logger, func(), error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	var w io.Writer = os.Stderr
	closeLog := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
		if err != nil {
			return nil, nil, err
		}
		w = io.MultiWriter(os.Stderr, f)
		closeLog = func() { _ = f.Close() }
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), closeLog, nil
}
