package scheduler

import (
	"context"
	"fmt"
	"time"

	"cardgen_backend/platform/config"
	"cardgen_backend/platform/logger"

	"github.com/hibiken/asynq"
)

const defaultQuotaSweepInterval = time.Hour

// QuotaCycleSweep periodically enqueues a cycle reset task for every known
// ledger. Resets are applied lazily on user traffic anyway; the sweep keeps
// idle ledgers accurate for the admin endpoints.
type QuotaCycleSweep struct {
	client   *asynq.Client
	queue    string
	quota    QuotaLedgers
	log      *logger.Logger
	interval time.Duration
}

func NewQuotaCycleSweep(cfg config.SchedulerConfig, quota QuotaLedgers, log *logger.Logger, interval time.Duration) (*QuotaCycleSweep, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}
	if interval <= 0 {
		interval = defaultQuotaSweepInterval
	}

	return &QuotaCycleSweep{
		client:   asynq.NewClient(opt),
		queue:    queue,
		quota:    quota,
		log:      log,
		interval: interval,
	}, nil
}

func (s *QuotaCycleSweep) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *QuotaCycleSweep) Run(ctx context.Context) {
	if s == nil || s.client == nil || s.quota == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *QuotaCycleSweep) sweep(ctx context.Context) {
	userIDs, err := s.quota.UserIDs(ctx)
	if err != nil {
		s.log.Warn("quota sweep listing failed", "error", err)
		return
	}

	enqueued := 0
	for _, userID := range userIDs {
		task, err := NewQuotaCycleResetTask(QuotaCycleResetPayload{UserID: userID})
		if err != nil {
			s.log.Warn("quota sweep task build failed", "userId", userID, "error", err)
			continue
		}
		if _, err := s.client.EnqueueContext(ctx, task, asynq.Queue(s.queue)); err != nil {
			s.log.Warn("quota sweep enqueue failed", "userId", userID, "error", err)
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		s.log.Info("quota cycle sweep enqueued resets", "users", enqueued)
	}
}
