package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cardgen_backend/internal/generation/repository"
	"cardgen_backend/internal/generation/transport"
	"cardgen_backend/platform/apperr"
	"cardgen_backend/platform/logger"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// History records completed generations and serves the admin view over them.
type History struct {
	repo repository.Repository
	log  *logger.Logger
}

// NewHistory creates a history service.
func NewHistory(repo repository.Repository, log *logger.Logger) *History {
	return &History{repo: repo, log: log}
}

// Record persists one completed generation.
func (h *History) Record(ctx context.Context, p repository.InsertParams) error {
	if _, err := h.repo.Insert(ctx, p); err != nil {
		h.log.DatabaseError("generation_insert", err)
		return err
	}
	return nil
}

// List returns a page of recent generations, newest first.
func (h *History) List(ctx context.Context, req transport.ListGenerationsRequest) (transport.GenerationListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	params := repository.ListParams{
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	}
	if req.UserID > 0 {
		userID := req.UserID
		params.UserID = &userID
	}

	items, total, err := h.repo.List(ctx, params)
	if err != nil {
		return transport.GenerationListResponse{}, err
	}

	resp := transport.GenerationListResponse{
		Items:    make([]transport.GenerationResponse, 0, len(items)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, g := range items {
		resp.Items = append(resp.Items, toGenerationResponse(g))
	}
	if total > 0 {
		resp.TotalPages = (total + pageSize - 1) / pageSize
	}
	return resp, nil
}

// PhotoKey returns the archive object key of a generation's uploaded photo.
// Generations without an archived photo yield a not-found error.
func (h *History) PhotoKey(ctx context.Context, id uuid.UUID) (string, error) {
	generation, err := h.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if generation.ObjectKey == nil || *generation.ObjectKey == "" {
		return "", apperr.NotFound("no archived photo for this generation")
	}
	return *generation.ObjectKey, nil
}

// PurgeOlderThan removes generations recorded before the cutoff and returns
// how many rows were deleted.
func (h *History) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	deleted, err := h.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		h.log.DatabaseError("generation_purge", err)
		return 0, err
	}
	return deleted, nil
}

func toGenerationResponse(g repository.Generation) transport.GenerationResponse {
	return transport.GenerationResponse{
		ID:             g.ID,
		RequestID:      g.RequestID,
		UserID:         g.UserID,
		Source:         g.Source,
		Title:          g.Title,
		UsedFallback:   g.UsedFallback,
		FallbackReason: g.FallbackReason,
		Attempts:       g.Attempts,
		DurationMS:     g.DurationMS,
		ObjectKey:      g.ObjectKey,
		CreatedAt:      g.CreatedAt,
	}
}
