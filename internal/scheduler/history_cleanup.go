package scheduler

import (
	"context"
	"time"

	genrepo "cardgen_backend/internal/generation/repository"
	gensvc "cardgen_backend/internal/generation/service"
	"cardgen_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultHistoryCleanupInterval = time.Hour
	defaultHistoryRetention       = 90 * 24 * time.Hour
)

// HistoryCleanup periodically removes generation history rows older than the
// retention window.
type HistoryCleanup struct {
	history   *gensvc.History
	log       *logger.Logger
	interval  time.Duration
	retention time.Duration
}

func NewHistoryCleanup(pool *pgxpool.Pool, log *logger.Logger, interval, retention time.Duration) *HistoryCleanup {
	if interval <= 0 {
		interval = defaultHistoryCleanupInterval
	}
	if retention <= 0 {
		retention = defaultHistoryRetention
	}

	return &HistoryCleanup{
		history:   gensvc.NewHistory(genrepo.New(pool), log),
		log:       log,
		interval:  interval,
		retention: retention,
	}
}

func (c *HistoryCleanup) Run(ctx context.Context) {
	if c == nil || c.history == nil {
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

	deleted, err := c.history.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		c.log.Warn("generation history cleanup failed", "error", err)
		return
	}

	if deleted > 0 {
		c.log.Info("generation history cleanup deleted rows", "deleted", deleted)
	}
}
