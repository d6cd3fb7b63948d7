package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"cardgen_backend/internal/generation/repository"
	"cardgen_backend/internal/generation/transport"
	"cardgen_backend/platform/apperr"
	"cardgen_backend/platform/logger"
)

type fakeGenerationRepo struct {
	inserted   []repository.InsertParams
	insertErr  error
	rows       map[uuid.UUID]repository.Generation
	listParams repository.ListParams
	listItems  []repository.Generation
	listTotal  int
	cutoff     time.Time
	deleted    int64
}

func (f *fakeGenerationRepo) Insert(_ context.Context, p repository.InsertParams) (repository.Generation, error) {
	f.inserted = append(f.inserted, p)
	if f.insertErr != nil {
		return repository.Generation{}, f.insertErr
	}
	return repository.Generation{ID: uuid.New(), RequestID: p.RequestID}, nil
}

func (f *fakeGenerationRepo) Get(_ context.Context, id uuid.UUID) (repository.Generation, error) {
	if g, ok := f.rows[id]; ok {
		return g, nil
	}
	return repository.Generation{}, apperr.NotFound("generation not found")
}

func (f *fakeGenerationRepo) List(_ context.Context, p repository.ListParams) ([]repository.Generation, int, error) {
	f.listParams = p
	return f.listItems, f.listTotal, nil
}

func (f *fakeGenerationRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.deleted, nil
}

func TestListAppliesPagingDefaults(t *testing.T) {
	repo := &fakeGenerationRepo{}
	h := NewHistory(repo, logger.New("development"))

	resp, err := h.List(context.Background(), transport.ListGenerationsRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.listParams.Offset != 0 || repo.listParams.Limit != 20 {
		t.Fatalf("expected offset 0 limit 20, got offset %d limit %d", repo.listParams.Offset, repo.listParams.Limit)
	}
	if resp.Page != 1 || resp.PageSize != 20 {
		t.Fatalf("expected page 1 size 20, got page %d size %d", resp.Page, resp.PageSize)
	}
	if repo.listParams.UserID != nil {
		t.Fatal("expected no user filter by default")
	}
}

func TestListClampsPageSizeAndComputesOffset(t *testing.T) {
	repo := &fakeGenerationRepo{}
	h := NewHistory(repo, logger.New("development"))

	_, err := h.List(context.Background(), transport.ListGenerationsRequest{Page: 3, PageSize: 500})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.listParams.Limit != 100 {
		t.Fatalf("expected page size clamped to 100, got %d", repo.listParams.Limit)
	}
	if repo.listParams.Offset != 200 {
		t.Fatalf("expected offset 200 for page 3, got %d", repo.listParams.Offset)
	}
}

func TestListComputesTotalPages(t *testing.T) {
	repo := &fakeGenerationRepo{listTotal: 45}
	h := NewHistory(repo, logger.New("development"))

	resp, err := h.List(context.Background(), transport.ListGenerationsRequest{PageSize: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalPages != 3 {
		t.Fatalf("expected 3 total pages for 45 rows, got %d", resp.TotalPages)
	}
}

func TestListFiltersByUser(t *testing.T) {
	repo := &fakeGenerationRepo{}
	h := NewHistory(repo, logger.New("development"))

	_, err := h.List(context.Background(), transport.ListGenerationsRequest{UserID: 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.listParams.UserID == nil || *repo.listParams.UserID != 42 {
		t.Fatalf("expected user filter 42, got %v", repo.listParams.UserID)
	}
}

func TestRecordPersistsParams(t *testing.T) {
	repo := &fakeGenerationRepo{}
	h := NewHistory(repo, logger.New("development"))

	err := h.Record(context.Background(), repository.InsertParams{RequestID: "req-1", Source: "text", Attempts: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("expected one insert, got %d", len(repo.inserted))
	}
	if repo.inserted[0].RequestID != "req-1" {
		t.Fatalf("unexpected request ID: %q", repo.inserted[0].RequestID)
	}
}

func TestPurgeReturnsDeletedCount(t *testing.T) {
	repo := &fakeGenerationRepo{deleted: 7}
	h := NewHistory(repo, logger.New("development"))

	cutoff := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	deleted, err := h.PurgeOlderThan(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 7 {
		t.Fatalf("expected 7 deleted, got %d", deleted)
	}
	if !repo.cutoff.Equal(cutoff) {
		t.Fatalf("expected cutoff %v, got %v", cutoff, repo.cutoff)
	}
}

func TestPhotoKeyReturnsArchiveKey(t *testing.T) {
	id := uuid.New()
	key := "2026/08/photo.jpeg"
	repo := &fakeGenerationRepo{rows: map[uuid.UUID]repository.Generation{
		id: {ID: id, ObjectKey: &key},
	}}
	h := NewHistory(repo, logger.New("development"))

	got, err := h.PhotoKey(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != key {
		t.Fatalf("expected key %q, got %q", key, got)
	}
}

func TestPhotoKeyWithoutArchiveIsNotFound(t *testing.T) {
	id := uuid.New()
	repo := &fakeGenerationRepo{rows: map[uuid.UUID]repository.Generation{
		id: {ID: id},
	}}
	h := NewHistory(repo, logger.New("development"))

	_, err := h.PhotoKey(context.Background(), id)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestPhotoKeyUnknownGeneration(t *testing.T) {
	repo := &fakeGenerationRepo{}
	h := NewHistory(repo, logger.New("development"))

	_, err := h.PhotoKey(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
