// Package service implements subscription quota accounting. Every identified
// user carries a ledger of free, purchased and plan-granted requests; one
// generation costs one request, charged free first, then extras, then the
// monthly plan allowance.
package service

import (
	"context"
	"fmt"
	"time"

	"cardgen_backend/internal/events"
	"cardgen_backend/internal/quota/repository"
	"cardgen_backend/internal/scheduler"
	"cardgen_backend/platform/apperr"
	"cardgen_backend/platform/logger"
)

// Buckets a request can be charged against.
const (
	BucketFree  = "free"
	BucketExtra = "extra"
	BucketPlan  = "plan"
)

// PlanNone marks a ledger without an active subscription.
const PlanNone = "none"

// Config defines the configuration surface for quota accounting.
type Config interface {
	GetFreeRequests() int
	GetAdminUserIDs() []int64
}

// PlanCatalog resolves plan codes to their monthly request quota. Unknown
// codes resolve to 0.
type PlanCatalog interface {
	QuotaFor(code string) int
}

// Status is a user's quota state for display.
type Status struct {
	Plan           string
	FreeLeft       int
	ExtraRemaining int
	PlanRemaining  int
	NextReset      time.Time
	Unlimited      bool
}

// Service manages subscription ledgers.
type Service struct {
	repo    repository.Repository
	plans   PlanCatalog
	freeMax int
	admins  map[int64]bool
	bus     events.Bus
	sched   scheduler.CycleScheduler
	log     *logger.Logger
	now     func() time.Time
}

// New creates a quota service. bus may be nil; quota events are then skipped.
func New(repo repository.Repository, plans PlanCatalog, cfg Config, bus events.Bus, log *logger.Logger) *Service {
	admins := make(map[int64]bool)
	for _, id := range cfg.GetAdminUserIDs() {
		admins[id] = true
	}
	freeMax := cfg.GetFreeRequests()
	if freeMax < 0 {
		freeMax = 0
	}
	return &Service{
		repo:    repo,
		plans:   plans,
		freeMax: freeMax,
		admins:  admins,
		bus:     bus,
		log:     log,
		now:     time.Now,
	}
}

// SetCycleScheduler wires the background task client used to refill plan
// allowances right at the month boundary. Optional; without it the sweep and
// the lazy check cover resets.
func (s *Service) SetCycleScheduler(sched scheduler.CycleScheduler) {
	s.sched = sched
}

// IsAdmin reports whether the user bypasses quota accounting entirely.
func (s *Service) IsAdmin(userID int64) bool {
	return s.admins[userID]
}

// CanConsume reports whether the user has at least one request available.
func (s *Service) CanConsume(ctx context.Context, userID int64) (bool, error) {
	if s.admins[userID] {
		return true, nil
	}
	led, err := s.ensureCycle(ctx, userID)
	if err != nil {
		return false, err
	}
	if led.FreeUsed < s.freeMax {
		return true, nil
	}
	return led.ExtraRemaining+led.PlanRemaining > 0, nil
}

// Consume charges one request and returns how many remain afterwards;
// remaining is -1 for admins, who are never charged. An exhausted ledger
// yields a KindQuotaExceeded error and charges nothing.
func (s *Service) Consume(ctx context.Context, userID int64) (int, error) {
	if s.admins[userID] {
		return -1, nil
	}
	led, err := s.ensureCycle(ctx, userID)
	if err != nil {
		return 0, err
	}

	var bucket string
	switch {
	case led.FreeUsed < s.freeMax:
		if err := s.repo.ChargeFree(ctx, userID); err != nil {
			return 0, err
		}
		led.FreeUsed++
		bucket = BucketFree
	case led.ExtraRemaining > 0:
		if err := s.repo.ChargeExtra(ctx, userID); err != nil {
			return 0, err
		}
		led.ExtraRemaining--
		bucket = BucketExtra
	case led.PlanRemaining > 0:
		if err := s.repo.ChargePlan(ctx, userID); err != nil {
			return 0, err
		}
		led.PlanRemaining--
		bucket = BucketPlan
	default:
		return 0, apperr.QuotaExceeded("Лимит запросов исчерпан")
	}

	remaining := s.remainingOf(led)
	s.log.QuotaEvent("consumed", userID, remaining)
	if s.bus != nil {
		s.bus.Publish(ctx, events.QuotaConsumed{
			BaseEvent: events.NewBaseEvent(),
			UserID:    userID,
			Bucket:    bucket,
			Remaining: remaining,
		})
	}
	return remaining, nil
}

// Remaining returns the user's total remaining requests; -1 means unlimited.
func (s *Service) Remaining(ctx context.Context, userID int64) (int, error) {
	if s.admins[userID] {
		return -1, nil
	}
	led, err := s.ensureCycle(ctx, userID)
	if err != nil {
		return 0, err
	}
	return s.remainingOf(led), nil
}

// Status returns the user's quota state for display.
func (s *Service) Status(ctx context.Context, userID int64) (Status, error) {
	led, err := s.ensureCycle(ctx, userID)
	if err != nil {
		return Status{}, err
	}

	freeLeft := s.freeMax - led.FreeUsed
	if freeLeft < 0 {
		freeLeft = 0
	}
	st := Status{
		Plan:           led.Plan,
		FreeLeft:       freeLeft,
		ExtraRemaining: led.ExtraRemaining,
		PlanRemaining:  led.PlanRemaining,
		Unlimited:      s.admins[userID],
	}
	if led.NextResetTS > 0 {
		st.NextReset = time.Unix(led.NextResetTS, 0).UTC()
	}
	return st, nil
}

// SetPlan activates a subscription plan: the monthly allowance is refilled to
// the plan quota and the cycle restarts now. Free and extra balances keep
// their values.
func (s *Service) SetPlan(ctx context.Context, userID int64, plan string) error {
	quota := s.plans.QuotaFor(plan)
	if quota <= 0 {
		return apperr.Validation(fmt.Sprintf("Неизвестный тариф: %s", plan))
	}

	next := nextMonthStart(s.now().UTC())
	if err := s.repo.SetPlan(ctx, userID, plan, quota, next); err != nil {
		return err
	}

	if s.sched != nil {
		if err := s.sched.ScheduleCycleReset(ctx, userID, next); err != nil {
			s.log.Warn("cycle reset scheduling failed", "userId", userID, "error", err)
		}
	}

	s.log.QuotaEvent("plan_activated", userID, quota)
	if s.bus != nil {
		s.bus.Publish(ctx, events.PlanActivated{
			BaseEvent: events.NewBaseEvent(),
			UserID:    userID,
			PlanCode:  plan,
			Quota:     quota,
		})
	}
	return nil
}

// AddExtra credits purchased requests that never expire.
func (s *Service) AddExtra(ctx context.Context, userID int64, count int) error {
	if count < 1 {
		return apperr.Validation("Количество запросов должно быть положительным")
	}
	if err := s.repo.AddExtra(ctx, userID, count); err != nil {
		return err
	}
	s.log.QuotaEvent("extra_granted", userID, count)
	return nil
}

// RefreshCycle applies the monthly reset for one user if it is due. The
// background sweep calls this to keep ledgers fresh for reporting; the lazy
// path performs the same reset on demand.
func (s *Service) RefreshCycle(ctx context.Context, userID int64) error {
	_, err := s.ensureCycle(ctx, userID)
	return err
}

// UserIDs lists every user with a ledger entry.
func (s *Service) UserIDs(ctx context.Context) ([]int64, error) {
	return s.repo.UserIDs(ctx)
}

// ensureCycle refills the plan allowance once the reset timestamp has
// passed. Users without an active plan have no cycle to maintain.
func (s *Service) ensureCycle(ctx context.Context, userID int64) (repository.Ledger, error) {
	led, err := s.repo.Ledger(ctx, userID)
	if err != nil {
		return repository.Ledger{}, err
	}
	if led.Plan == "" || led.Plan == PlanNone {
		return led, nil
	}

	now := s.now().UTC()
	if now.Unix() < led.NextResetTS {
		return led, nil
	}

	quota := s.plans.QuotaFor(led.Plan)
	next := nextMonthStart(now)
	if err := s.repo.ResetCycle(ctx, userID, quota, next); err != nil {
		return repository.Ledger{}, err
	}
	led.PlanRemaining = quota
	led.NextResetTS = next.Unix()
	return led, nil
}

func (s *Service) remainingOf(led repository.Ledger) int {
	freeLeft := s.freeMax - led.FreeUsed
	if freeLeft < 0 {
		freeLeft = 0
	}
	return freeLeft + led.ExtraRemaining + led.PlanRemaining
}

// nextMonthStart returns 00:00 UTC on the first day of the following month.
func nextMonthStart(now time.Time) time.Time {
	year, month := now.Year(), now.Month()
	if month == time.December {
		year++
		month = time.January
	} else {
		month++
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}
