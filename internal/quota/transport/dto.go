package transport

// QuotaStatusResponse is the admin view of a user's request balance.
type QuotaStatusResponse struct {
	UserID         int64  `json:"userId"`
	Plan           string `json:"plan"`
	FreeLeft       int    `json:"freeLeft"`
	ExtraRemaining int    `json:"extraRemaining"`
	PlanRemaining  int    `json:"planRemaining"`
	Remaining      int    `json:"remaining"`
	NextResetAt    string `json:"nextResetAt,omitempty"`
	Unlimited      bool   `json:"unlimited"`
}

// GrantRequest activates a plan, credits extra requests, or both.
type GrantRequest struct {
	Plan  string `json:"plan" validate:"omitempty,min=1"`
	Extra int    `json:"extra" validate:"omitempty,min=1"`
}

// GrantResponse reports the balance after an admin grant.
type GrantResponse struct {
	UserID    int64  `json:"userId"`
	Plan      string `json:"plan,omitempty"`
	Extra     int    `json:"extra,omitempty"`
	Remaining int    `json:"remaining"`
}
