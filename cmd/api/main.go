package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xtaxx12/BGR-SHRIMP/internal/admin"
	"github.com/xtaxx12/BGR-SHRIMP/internal/archive"
	"github.com/xtaxx12/BGR-SHRIMP/internal/catalog"
	"github.com/xtaxx12/BGR-SHRIMP/internal/email"
	"github.com/xtaxx12/BGR-SHRIMP/internal/events"
	"github.com/xtaxx12/BGR-SHRIMP/internal/history"
	apphttp "github.com/xtaxx12/BGR-SHRIMP/internal/http"
	"github.com/xtaxx12/BGR-SHRIMP/internal/http/router"
	"github.com/xtaxx12/BGR-SHRIMP/internal/notification"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/agent"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/engine"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/extractor"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/session"
	"github.com/xtaxx12/BGR-SHRIMP/internal/scheduler"
	"github.com/xtaxx12/BGR-SHRIMP/internal/transcribe"
	"github.com/xtaxx12/BGR-SHRIMP/internal/webhook"
	"github.com/xtaxx12/BGR-SHRIMP/internal/whatsapp"
	"github.com/xtaxx12/BGR-SHRIMP/migrations"
	"github.com/xtaxx12/BGR-SHRIMP/platform/config"
	"github.com/xtaxx12/BGR-SHRIMP/platform/db"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"
	"github.com/xtaxx12/BGR-SHRIMP/platform/redis"
	"github.com/xtaxx12/BGR-SHRIMP/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ensureBucket wraps the retry logic for verifying the proforma bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, store *archive.Store, bucket string) {
	if err := withRetry(ctx, log, "ensure proforma bucket", 5, 2*time.Second, func() error {
		return store.EnsureBucket(ctx)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if cfg.IsDatabaseEnabled() {
		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, cfg, migrations.FS, ".")
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")

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
		log.Info("database connection established")
	} else {
		log.Warn("DATABASE_URL not configured; quote history disabled, prices come from the sheet or built-in catalog")
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	sessions, dedupe, closeSessions := initSessionStore(ctx, cfg, log)
	if closeSessions != nil {
		defer closeSessions()
	}

	followUps, closeFollowUps := initFollowUpScheduler(cfg, log)
	if closeFollowUps != nil {
		defer closeFollowUps()
	}

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// Proforma document store (MinIO)
	store, err := archive.NewStore(cfg)
	if err != nil {
		log.Error("failed to initialize proforma store", "error", err)
		panic("failed to initialize proforma store: " + err.Error())
	}
	if store != nil {
		ensureBucket(ctx, log, store, cfg.GetMinioBucketProformas())
	}

	// Outbound gateway clients. Both are nil-safe when unconfigured.
	wa := whatsapp.NewClient(cfg, log)
	stt := transcribe.NewClient(cfg, log)

	prices, sheet, pgPrices := buildCatalog(cfg, pool, log)

	extract := extractor.New(initClassifier(cfg, log), cfg, log)

	// ========================================================================
	// Domain Modules
	// ========================================================================

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

	notificationModule := notification.New(sender, cfg, log)
	notificationModule.SetWhatsAppSender(wa)
	notificationModule.RegisterHandlers(eventBus)

	if store != nil {
		archiveModule := archive.New(store, log)
		archiveModule.SetWhatsAppSender(wa)
		archiveModule.RegisterHandlers(eventBus)
	} else {
		log.Warn("MINIO_ENDPOINT not configured; proforma archive disabled")
	}

	var historyRepo *history.Repository
	if pool != nil {
		historyModule := history.NewModule(pool, log)
		historyModule.RegisterHandlers(eventBus)
		historyRepo = historyModule.Repository()
	}

	if followUps != nil {
		scheduler.NewSubscriber(followUps, cfg, log).RegisterHandlers(eventBus)
	}

	webhookModule := webhook.NewModule(eng, wa, wa, stt, cfg, val, log)

	// The interface fields stay nil unless the backing store exists;
	// assigning a typed nil would defeat the service's guards.
	var hist admin.HistoryLister
	if historyRepo != nil {
		hist = historyRepo
	}
	var reloader admin.CatalogReloader
	if sheet != nil {
		reloader = sheet
	}
	var writer admin.CatalogWriter
	if pgPrices != nil {
		writer = pgPrices
	}
	adminModule := admin.NewModule(sessions, eng, hist, prices, writer, reloader, cfg, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			webhookModule,
			adminModule,
		},
	}

	srv := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.GetHTTPAddr())
		srvErr <- srv.Run(cfg.GetHTTPAddr())
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initSessionStore picks the session backend. Redis keeps conversations
// across restarts and across replicas; without it sessions live in
// process memory and die with the process.
func initSessionStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (session.Repository, session.Deduper, func()) {
	if !cfg.IsRedisEnabled() {
		log.Warn("REDIS_URL not configured; sessions are in-memory and lost on restart")
		return session.NewMemoryRepository(cfg), session.NewMemoryDeduper(cfg), nil
	}

	client, err := redis.NewClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis, falling back to in-memory sessions", "error", err)
		return session.NewMemoryRepository(cfg), session.NewMemoryDeduper(cfg), nil
	}
	log.Info("redis connection established")

	return session.NewRedisRepository(client, cfg), session.NewRedisDeduper(client, cfg), func() {
		_ = client.Close()
	}
}

// initFollowUpScheduler wires the asynq client used to queue follow-up
// nudges. Follow-ups are a nice-to-have, so failures disable them
// instead of blocking startup.
func initFollowUpScheduler(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.FollowUpScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; follow-up nudges disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize follow-up scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

// initClassifier builds the model-backed extraction strategy, or nil
// when no API key is configured so extraction runs on rules alone.
func initClassifier(cfg config.ExtractorConfig, log *logger.Logger) extractor.Classifier {
	if !cfg.IsExtractorEnabled() {
		log.Warn("EXTRACTOR_API_KEY not configured; extraction runs on rules only")
		return nil
	}

	classifier, err := agent.NewClassifier(cfg, log)
	if err != nil {
		log.Error("failed to initialize extraction classifier", "error", err)
		return nil
	}
	return classifier
}

// buildCatalog assembles the price source chain: live database prices
// first, then the operator-maintained sheet, then the built-in list so
// quoting never goes fully dark. The sheet and database handles come
// back separately because the admin surface reloads one in place and
// writes through the other.
func buildCatalog(cfg *config.Config, pool *pgxpool.Pool, log *logger.Logger) (*catalog.Chain, *catalog.ReloadableSheet, *catalog.PostgresSource) {
	sources := make([]catalog.Source, 0, 3)

	var pg *catalog.PostgresSource
	if pool != nil {
		pg = catalog.NewPostgresSource(pool)
		sources = append(sources, pg)
	}

	var sheet *catalog.ReloadableSheet
	if path := cfg.GetPriceSheetPath(); path != "" {
		s, err := catalog.LoadReloadableSheet(path)
		if err != nil {
			log.Error("failed to load price sheet", "error", err, "path", path)
			panic("failed to load price sheet: " + err.Error())
		}
		sheet = s
		sources = append(sources, sheet)
		log.Info("price sheet loaded", "path", path)
	}

	sources = append(sources, catalog.NewStaticSource())
	return catalog.NewChain(sources...), sheet, pg
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
