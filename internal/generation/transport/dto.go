package transport

import "github.com/google/uuid"

// Processing types accepted by POST /generate.
const (
	TypeImageOnly = "image_only"
	TypeTextOnly  = "text_only"
	TypeBoth      = "both"
)

// GenerateRequest is the multipart form contract of POST /generate. The
// product image travels as a multipart file next to these fields.
type GenerateRequest struct {
	Type string `form:"type" validate:"required,oneof=image_only text_only both"`
	Text string `form:"text"`
}

// GenerateResponse preserves the legacy snake_case wire contract the bot
// consumes. The full description is exposed as detailed_description on this
// boundary.
type GenerateResponse struct {
	Title               string   `json:"title"`
	ShortDescription    string   `json:"short_description"`
	DetailedDescription string   `json:"detailed_description"`
	Features            []string `json:"features"`
	SEOKeywords         []string `json:"seo_keywords"`
	TargetAudience      []string `json:"target_audience"`
	RequestID           string   `json:"request_id,omitempty"`
}

// Admin history surface

type ListGenerationsRequest struct {
	UserID   int64 `form:"userId" validate:"omitempty,min=1"`
	Page     int   `form:"page" validate:"omitempty,min=1"`
	PageSize int   `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type GenerationResponse struct {
	ID             uuid.UUID `json:"id"`
	RequestID      string    `json:"requestId"`
	UserID         *int64    `json:"userId,omitempty"`
	Source         string    `json:"source"`
	Title          string    `json:"title"`
	UsedFallback   bool      `json:"usedFallback"`
	FallbackReason *string   `json:"fallbackReason,omitempty"`
	Attempts       int       `json:"attempts"`
	DurationMS     int64     `json:"durationMs"`
	ObjectKey      *string   `json:"objectKey,omitempty"`
	CreatedAt      string    `json:"createdAt"`
}

type GenerationListResponse struct {
	Items      []GenerationResponse `json:"items"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalPages int                  `json:"totalPages"`
}

type PhotoResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt"`
}
