package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/xtaxx12/BGR-SHRIMP/internal/archive"
	"github.com/xtaxx12/BGR-SHRIMP/internal/catalog"
	"github.com/xtaxx12/BGR-SHRIMP/internal/email"
	"github.com/xtaxx12/BGR-SHRIMP/internal/events"
	"github.com/xtaxx12/BGR-SHRIMP/internal/history"
	"github.com/xtaxx12/BGR-SHRIMP/internal/mailintake"
	"github.com/xtaxx12/BGR-SHRIMP/internal/notification"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/agent"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/engine"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/extractor"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/session"
	"github.com/xtaxx12/BGR-SHRIMP/internal/scheduler"
	"github.com/xtaxx12/BGR-SHRIMP/internal/whatsapp"
	"github.com/xtaxx12/BGR-SHRIMP/platform/config"
	"github.com/xtaxx12/BGR-SHRIMP/platform/db"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"
	"github.com/xtaxx12/BGR-SHRIMP/platform/redis"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Migrations belong to the API binary; the worker only connects.
	var pool *pgxpool.Pool
	if cfg.IsDatabaseEnabled() {
		if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
			p, err := db.NewPool(ctx, cfg)
			if err != nil {
				return err
			}
			pool = p
			return nil
		}); err != nil {
			log.Error("failed to connect to database", "error", err)
			panic("failed to connect to database: " + err.Error())
		}
		defer pool.Close()
	} else {
		log.Warn("DATABASE_URL not configured; quote history disabled")
	}

	eventBus := events.NewInMemoryBus(log)

	// Shared Redis keeps the worker looking at the same sessions as the
	// API process; without it activity checks see only local traffic.
	var (
		sessions session.Repository
		dedupe   session.Deduper
	)
	if cfg.IsRedisEnabled() {
		client, err := redis.NewClient(ctx, cfg)
		if err != nil {
			log.Error("failed to connect to redis, falling back to in-memory sessions", "error", err)
		} else {
			defer client.Close()
			sessions = session.NewRedisRepository(client, cfg)
			dedupe = session.NewRedisDeduper(client, cfg)
		}
	}
	if sessions == nil {
		log.Warn("worker sessions are in-memory and invisible to the API process")
		sessions = session.NewMemoryRepository(cfg)
		dedupe = session.NewMemoryDeduper(cfg)
	}

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	wa := whatsapp.NewClient(cfg, log)

	notificationModule := notification.New(sender, cfg, log)
	notificationModule.SetWhatsAppSender(wa)
	notificationModule.RegisterHandlers(eventBus)

	store, err := archive.NewStore(cfg)
	if err != nil {
		log.Error("failed to initialize proforma store", "error", err)
		panic("failed to initialize proforma store: " + err.Error())
	}
	if store != nil {
		if err := withRetry(ctx, log, "ensure proforma bucket", 5, 2*time.Second, func() error {
			return store.EnsureBucket(ctx)
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err)
			panic("failed to ensure storage bucket exists: " + err.Error())
		}

		archiveModule := archive.New(store, log)
		archiveModule.SetWhatsAppSender(wa)
		archiveModule.RegisterHandlers(eventBus)
	}

	var historyRepo *history.Repository
	if pool != nil {
		historyModule := history.NewModule(pool, log)
		historyModule.RegisterHandlers(eventBus)
		historyRepo = historyModule.Repository()
	}

	sources := make([]catalog.Source, 0, 3)
	if pool != nil {
		sources = append(sources, catalog.NewPostgresSource(pool))
	}
	if path := cfg.GetPriceSheetPath(); path != "" {
		sheet, err := catalog.LoadSheet(path)
		if err != nil {
			log.Error("failed to load price sheet", "error", err, "path", path)
			panic("failed to load price sheet: " + err.Error())
		}
		sources = append(sources, sheet)
	}
	sources = append(sources, catalog.NewStaticSource())
	prices := catalog.NewChain(sources...)

	var classifier extractor.Classifier
	if cfg.IsExtractorEnabled() {
		c, err := agent.NewClassifier(cfg, log)
		if err != nil {
			log.Error("failed to initialize extraction classifier", "error", err)
		} else {
			classifier = c
		}
	}
	extract := extractor.New(classifier, cfg, log)

	// Email-channel conversations run through the same engine the
	// webhook uses, so pricing and session rules never diverge.
	eng := engine.New(engine.Deps{
		Sessions:  sessions,
		Dedupe:    dedupe,
		Extractor: extract,
		Catalog:   prices,
		Bus:       eventBus,
		Pricing:   cfg,
		Session:   cfg,
		Log:       log,
	})

	poller := mailintake.NewPoller(cfg, eng, sender, eventBus, log)
	if poller == nil {
		log.Warn("IMAP_HOST not configured; email intake disabled")
	}
	go poller.Run(ctx)

	if historyRepo != nil {
		cleanupInterval := getDurationEnv("HISTORY_CLEANUP_INTERVAL", 24*time.Hour)
		retention := time.Duration(getPositiveIntEnv("HISTORY_RETENTION_DAYS", 365)) * 24 * time.Hour
		historyCleanup := scheduler.NewHistoryCleanup(historyRepo, log, cleanupInterval, retention)
		go historyCleanup.Run(ctx)
	}

	if !cfg.IsRedisEnabled() {
		log.Warn("REDIS_URL not configured; follow-up delivery disabled")
		<-ctx.Done()
		return
	}

	worker, err := scheduler.NewWorker(cfg, sessions, wa, log)
	if err != nil {
		log.Error("failed to initialize follow-up worker", "error", err)
		panic("failed to initialize follow-up worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}

func getPositiveIntEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
