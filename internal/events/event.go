// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"cardgen_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Generation Domain Events
// =============================================================================

// GenerationCompleted is published after every generation request, whether it
// produced a normalized record or the fallback. Subscribers persist history
// off the hot path.
type GenerationCompleted struct {
	BaseEvent
	RequestID      string `json:"requestId"`
	UserID         *int64 `json:"userId,omitempty"`
	Source         string `json:"source"`
	Title          string `json:"title"`
	UsedFallback   bool   `json:"usedFallback"`
	FallbackReason string `json:"fallbackReason,omitempty"`
	Attempts       int    `json:"attempts"`
	DurationMS     int64  `json:"durationMs"`
	ObjectKey      string `json:"objectKey,omitempty"`
}

func (e GenerationCompleted) EventName() string { return "generation.completed" }

// =============================================================================
// Quota Domain Events
// =============================================================================

// QuotaConsumed is published when a user's quota balance is decremented.
type QuotaConsumed struct {
	BaseEvent
	UserID    int64  `json:"userId"`
	Bucket    string `json:"bucket"` // free, extra or plan
	Remaining int    `json:"remaining"`
}

func (e QuotaConsumed) EventName() string { return "quota.consumed" }

// PlanActivated is published when an admin grant assigns a plan to a user.
type PlanActivated struct {
	BaseEvent
	UserID   int64  `json:"userId"`
	PlanCode string `json:"planCode"`
	Quota    int    `json:"quota"`
}

func (e PlanActivated) EventName() string { return "quota.plan.activated" }
