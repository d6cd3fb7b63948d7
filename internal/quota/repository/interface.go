// Package repository stores per-user subscription ledgers in Redis.
package repository

import (
	"context"
	"time"
)

// Ledger is a user's raw subscription state as stored in the sub:user hash.
// A user without a hash reads as the zero ledger on the "none" plan.
type Ledger struct {
	Plan           string
	FreeUsed       int
	ExtraRemaining int
	PlanRemaining  int
	NextResetTS    int64
}

// Repository provides access to subscription ledgers.
type Repository interface {
	// Ledger reads the full ledger for one user.
	Ledger(ctx context.Context, userID int64) (Ledger, error)

	// ResetCycle refills the monthly plan allowance and advances the reset
	// timestamp. Free and extra balances are untouched.
	ResetCycle(ctx context.Context, userID int64, planQuota int, nextReset time.Time) error

	// ChargeFree counts one request against the lifetime free allowance.
	ChargeFree(ctx context.Context, userID int64) error

	// ChargeExtra spends one purchased extra request.
	ChargeExtra(ctx context.Context, userID int64) error

	// ChargePlan spends one request from the monthly plan allowance.
	ChargePlan(ctx context.Context, userID int64) error

	// SetPlan activates a plan with a fresh allowance and reset timestamp.
	SetPlan(ctx context.Context, userID int64, plan string, quota int, nextReset time.Time) error

	// AddExtra credits extra requests that never expire.
	AddExtra(ctx context.Context, userID int64, count int) error

	// UserIDs lists every user that has a ledger entry.
	UserIDs(ctx context.Context) ([]int64, error)
}
