package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	userKeyPrefix = "sub:user:"
	scanBatch     = 100
)

// Hash fields of the sub:user ledger.
const (
	fieldPlan           = "plan"
	fieldFreeUsed       = "free_used"
	fieldExtraRemaining = "extra_remaining"
	fieldPlanRemaining  = "plan_remaining"
	fieldNextResetTS    = "next_reset_ts"
)

// Repo implements Repository backed by Redis.
type Repo struct {
	client *redis.Client
}

// New creates a new quota repository.
func New(client *redis.Client) *Repo {
	return &Repo{client: client}
}

var _ Repository = (*Repo)(nil)

func userKey(userID int64) string {
	return userKeyPrefix + strconv.FormatInt(userID, 10)
}

func (r *Repo) Ledger(ctx context.Context, userID int64) (Ledger, error) {
	data, err := r.client.HGetAll(ctx, userKey(userID)).Result()
	if err != nil {
		return Ledger{}, fmt.Errorf("ledger read: %w", err)
	}

	led := Ledger{
		Plan:           data[fieldPlan],
		FreeUsed:       intField(data, fieldFreeUsed),
		ExtraRemaining: intField(data, fieldExtraRemaining),
		PlanRemaining:  intField(data, fieldPlanRemaining),
		NextResetTS:    int64Field(data, fieldNextResetTS),
	}
	if led.Plan == "" {
		led.Plan = "none"
	}
	return led, nil
}

func (r *Repo) ResetCycle(ctx context.Context, userID int64, planQuota int, nextReset time.Time) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, userKey(userID), map[string]interface{}{
			fieldPlanRemaining: planQuota,
			fieldNextResetTS:   nextReset.Unix(),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("reset cycle: %w", err)
	}
	return nil
}

func (r *Repo) ChargeFree(ctx context.Context, userID int64) error {
	if err := r.client.HIncrBy(ctx, userKey(userID), fieldFreeUsed, 1).Err(); err != nil {
		return fmt.Errorf("charge free: %w", err)
	}
	return nil
}

func (r *Repo) ChargeExtra(ctx context.Context, userID int64) error {
	if err := r.client.HIncrBy(ctx, userKey(userID), fieldExtraRemaining, -1).Err(); err != nil {
		return fmt.Errorf("charge extra: %w", err)
	}
	return nil
}

func (r *Repo) ChargePlan(ctx context.Context, userID int64) error {
	if err := r.client.HIncrBy(ctx, userKey(userID), fieldPlanRemaining, -1).Err(); err != nil {
		return fmt.Errorf("charge plan: %w", err)
	}
	return nil
}

func (r *Repo) SetPlan(ctx context.Context, userID int64, plan string, quota int, nextReset time.Time) error {
	err := r.client.HSet(ctx, userKey(userID), map[string]interface{}{
		fieldPlan:          plan,
		fieldPlanRemaining: quota,
		fieldNextResetTS:   nextReset.Unix(),
	}).Err()
	if err != nil {
		return fmt.Errorf("set plan: %w", err)
	}
	return nil
}

func (r *Repo) AddExtra(ctx context.Context, userID int64, count int) error {
	if err := r.client.HIncrBy(ctx, userKey(userID), fieldExtraRemaining, int64(count)).Err(); err != nil {
		return fmt.Errorf("add extra: %w", err)
	}
	return nil
}

func (r *Repo) UserIDs(ctx context.Context) ([]int64, error) {
	var (
		ids    []int64
		cursor uint64
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, userKeyPrefix+"*", scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("scan ledgers: %w", err)
		}
		for _, key := range keys {
			raw := strings.TrimPrefix(key, userKeyPrefix)
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
		cursor = next
		if cursor == 0 {
			return ids, nil
		}
	}
}

func intField(data map[string]string, field string) int {
	n, err := strconv.Atoi(data[field])
	if err != nil {
		return 0
	}
	return n
}

func int64Field(data map[string]string, field string) int64 {
	n, err := strconv.ParseInt(data[field], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
