package scheduler

import (
	"context"
	"fmt"

	"cardgen_backend/platform/config"
	"cardgen_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// QuotaLedgers is the slice of the quota service the scheduler needs:
// enumerating ledgers and applying a due monthly reset to one of them.
type QuotaLedgers interface {
	UserIDs(ctx context.Context) ([]int64, error)
	RefreshCycle(ctx context.Context, userID int64) error
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	quota  QuotaLedgers
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, quota QuotaLedgers, log *logger.Logger) (*Worker, error) {
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

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		quota:  quota,
		log:    log,
	}

	mux.HandleFunc(TaskQuotaCycleReset, w.handleQuotaCycleReset)

	return w, nil
}

func (w *Worker) handleQuotaCycleReset(ctx context.Context, task *asynq.Task) error {
	if w.quota == nil {
		return nil
	}

	payload, err := ParseQuotaCycleResetPayload(task)
	if err != nil {
		return err
	}
	if payload.UserID < 1 {
		return nil
	}

	return w.quota.RefreshCycle(ctx, payload.UserID)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
