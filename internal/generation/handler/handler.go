// Package handler exposes the content generation HTTP endpoints.
package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cardgen_backend/internal/events"
	"cardgen_backend/internal/generation/domain"
	"cardgen_backend/internal/generation/service"
	"cardgen_backend/internal/generation/transport"
	"cardgen_backend/internal/imagery"
	"cardgen_backend/platform/apperr"
	"cardgen_backend/platform/httpkit"
	"cardgen_backend/platform/logger"
	"cardgen_backend/platform/validator"
)

const (
	msgInvalidRequest      = "invalid request"
	msgValidationFailed    = "validation failed"
	msgInvalidGenerationID = "invalid generation ID"

	msgTextRequired  = "Текст обязателен для типа 'text_only'"
	msgImageRequired = "Изображение обязательно для типа 'image_only'"
	msgBothRequired  = "Изображение и текст обязательны для типа 'both'"
)

// finishTimeout bounds the off-request archive and event work.
const finishTimeout = 30 * time.Second

// QuotaGate authorizes one generation for an identified user. Implementations
// return a KindQuotaExceeded error when nothing remains; remaining < 0 means
// unlimited.
type QuotaGate interface {
	Consume(ctx context.Context, userID int64) (remaining int, err error)
}

// PhotoArchiver stores accepted uploads and serves download links for review.
type PhotoArchiver interface {
	Store(ctx context.Context, data []byte, f imagery.Format) (string, error)
	PresignedURL(ctx context.Context, key string) (string, error)
}

// Handler serves the generation endpoints.
type Handler struct {
	svc     *service.Service
	history *service.History
	quota   QuotaGate
	photos  *imagery.Validator
	archive PhotoArchiver
	bus     events.Bus
	val     *validator.Validator
	maxText int
	log     *logger.Logger
}

// New creates a generation handler. quota and archive may be nil, which
// disables quota enforcement and photo archival respectively.
func New(svc *service.Service, history *service.History, quota QuotaGate, photos *imagery.Validator, archive PhotoArchiver, bus events.Bus, val *validator.Validator, maxTextLength int, log *logger.Logger) *Handler {
	return &Handler{
		svc:     svc,
		history: history,
		quota:   quota,
		photos:  photos,
		archive: archive,
		bus:     bus,
		val:     val,
		maxText: maxTextLength,
		log:     log,
	}
}

// Generate handles POST /generate: a multipart form with type, text and an
// image file. Generation itself never fails; upstream trouble surfaces as a
// fallback record under status 200.
func (h *Handler) Generate(c *gin.Context) {
	var req transport.GenerateRequest
	if err := c.ShouldBind(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if h.maxText > 0 && utf8.RuneCountInString(req.Text) > h.maxText {
		httpkit.Error(c, http.StatusBadRequest, fmt.Sprintf("Текст превышает максимальную длину: %d символов", h.maxText), nil)
		return
	}

	file, fileErr := c.FormFile("image")
	hasImage := fileErr == nil && file != nil

	switch req.Type {
	case transport.TypeTextOnly:
		if req.Text == "" {
			httpkit.Error(c, http.StatusBadRequest, msgTextRequired, nil)
			return
		}
	case transport.TypeImageOnly:
		if !hasImage {
			httpkit.Error(c, http.StatusBadRequest, msgImageRequired, nil)
			return
		}
	case transport.TypeBoth:
		if !hasImage || req.Text == "" {
			httpkit.Error(c, http.StatusBadRequest, msgBothRequired, nil)
			return
		}
	}

	var (
		img    *domain.Image
		data   []byte
		format imagery.Format
	)
	if req.Type != transport.TypeTextOnly {
		var err error
		data, err = readUpload(file)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		format, err = h.photos.Validate(file.Filename, data)
		if err != nil {
			httpkit.HandleError(c, err)
			return
		}
		img = &domain.Image{Data: data, MIMEType: format.MIME}
	}

	// Quota is charged only after the input is known to be valid.
	userID, hasUser := headerUserID(c)
	remaining := -1
	if hasUser && h.quota != nil {
		rem, err := h.quota.Consume(c.Request.Context(), userID)
		switch {
		case err == nil:
			remaining = rem
		case apperr.Is(err, apperr.KindQuotaExceeded):
			httpkit.HandleError(c, err)
			return
		default:
			// A ledger outage must not block generation.
			h.log.QuotaEvent("consume_unavailable", userID, -1)
		}
	}
	if remaining >= 0 {
		c.Header("X-Remaining-Requests", strconv.Itoa(remaining))
	}

	ctx := c.Request.Context()
	var (
		rec domain.ContentRecord
		out service.Outcome
	)
	switch req.Type {
	case transport.TypeTextOnly:
		rec, out = h.svc.FromText(ctx, req.Text)
	case transport.TypeImageOnly:
		rec, out = h.svc.FromImage(ctx, *img)
	case transport.TypeBoth:
		rec, out = h.svc.FromBoth(ctx, *img, req.Text)
	}

	requestID := httpkit.GetRequestID(c)
	var userPtr *int64
	if hasUser {
		uid := userID
		userPtr = &uid
	}
	go h.finish(requestID, userPtr, rec, out, data, format)

	httpkit.OK(c, toGenerateResponse(rec, requestID))
}

// ListGenerations handles GET /admin/generations.
func (h *Handler) ListGenerations(c *gin.Context) {
	var req transport.ListGenerationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.history.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// GetPhoto handles GET /admin/generations/:id/photo. It returns a short-lived
// download link for the archived upload of one generation.
func (h *Handler) GetPhoto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidGenerationID, nil)
		return
	}
	if h.archive == nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "photo archive is not configured", nil)
		return
	}

	key, err := h.history.PhotoKey(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	url, err := h.archive.PresignedURL(c.Request.Context(), key)
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "failed to presign photo", err))
		return
	}

	httpkit.OK(c, transport.PhotoResponse{
		URL:       url,
		ExpiresAt: time.Now().UTC().Add(imagery.PresignTTL).Format(time.RFC3339),
	})
}

// finish archives the upload and publishes the completion event off the
// request path.
func (h *Handler) finish(requestID string, userID *int64, rec domain.ContentRecord, out service.Outcome, data []byte, format imagery.Format) {
	ctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
	defer cancel()

	objectKey := ""
	if h.archive != nil && len(data) > 0 {
		key, err := h.archive.Store(ctx, data, format)
		if err != nil {
			h.log.WithRequestID(requestID).Warn("photo archive failed", slog.String("error", err.Error()))
		} else {
			objectKey = key
		}
	}

	h.bus.Publish(ctx, events.GenerationCompleted{
		BaseEvent:      events.NewBaseEvent(),
		RequestID:      requestID,
		UserID:         userID,
		Source:         out.Source.String(),
		Title:          rec.Title,
		UsedFallback:   out.UsedFallback,
		FallbackReason: out.FallbackReason,
		Attempts:       out.Attempts,
		DurationMS:     out.Duration.Milliseconds(),
		ObjectKey:      objectKey,
	})
}

func toGenerateResponse(rec domain.ContentRecord, requestID string) transport.GenerateResponse {
	return transport.GenerateResponse{
		Title:               rec.Title,
		ShortDescription:    rec.ShortDescription,
		DetailedDescription: rec.FullDescription,
		Features:            rec.Features,
		SEOKeywords:         rec.SEOKeywords,
		TargetAudience:      rec.TargetAudience,
		RequestID:           requestID,
	}
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}

// headerUserID extracts the optional numeric X-User-ID header set by the bot
// gateway. Malformed values are treated as anonymous.
func headerUserID(c *gin.Context) (int64, bool) {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
