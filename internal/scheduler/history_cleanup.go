package scheduler

import (
	"context"
	"time"

	"github.com/xtaxx12/BGR-SHRIMP/internal/history"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"
)

const (
	defaultHistoryCleanupInterval = 24 * time.Hour
	defaultHistoryRetention       = 365 * 24 * time.Hour
)

// HistoryCleanup periodically prunes quote history rows past the
// retention window.
type HistoryCleanup struct {
	repo      *history.Repository
	log       *logger.Logger
	interval  time.Duration
	retention time.Duration
}

func NewHistoryCleanup(repo *history.Repository, log *logger.Logger, interval, retention time.Duration) *HistoryCleanup {
	if interval <= 0 {
		interval = defaultHistoryCleanupInterval
	}
	if retention <= 0 {
		retention = defaultHistoryRetention
	}

	return &HistoryCleanup{
		repo:      repo,
		log:       log,
		interval:  interval,
		retention: retention,
	}
}

func (c *HistoryCleanup) Run(ctx context.Context) {
	if c == nil || c.repo == nil {
		return
	}

	c.cleanup(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *HistoryCleanup) cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-c.retention)

	deleted, err := c.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		c.log.Warn("quote history cleanup failed", "error", err)
		return
	}

	if deleted > 0 {
		c.log.Info("quote history cleanup deleted old entries", "deleted", deleted)
	}
}
