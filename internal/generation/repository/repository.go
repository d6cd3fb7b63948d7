package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cardgen_backend/platform/apperr"
)

// Repo implements the generation history repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new generation history repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Insert records one generation outcome.
func (r *Repo) Insert(ctx context.Context, params InsertParams) (Generation, error) {
	query := `
		INSERT INTO cg_generations (request_id, user_id, source, title, used_fallback, fallback_reason, attempts, duration_ms, object_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, request_id, user_id, source, title, used_fallback, fallback_reason, attempts, duration_ms, object_key, created_at`

	var generation Generation
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		params.RequestID, params.UserID, params.Source, params.Title,
		params.UsedFallback, params.FallbackReason, params.Attempts, params.DurationMS, params.ObjectKey,
	).Scan(
		&generation.ID, &generation.RequestID, &generation.UserID, &generation.Source, &generation.Title,
		&generation.UsedFallback, &generation.FallbackReason, &generation.Attempts, &generation.DurationMS,
		&generation.ObjectKey, &createdAt,
	); err != nil {
		return Generation{}, fmt.Errorf("insert generation: %w", err)
	}

	generation.CreatedAt = createdAt.Format(time.RFC3339)
	return generation, nil
}

// Get retrieves one generation by ID.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (Generation, error) {
	query := `
		SELECT id, request_id, user_id, source, title, used_fallback, fallback_reason, attempts, duration_ms, object_key, created_at
		FROM cg_generations
		WHERE id = $1`

	var generation Generation
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&generation.ID, &generation.RequestID, &generation.UserID, &generation.Source, &generation.Title,
		&generation.UsedFallback, &generation.FallbackReason, &generation.Attempts, &generation.DurationMS,
		&generation.ObjectKey, &createdAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Generation{}, apperr.NotFound("generation not found")
		}
		return Generation{}, fmt.Errorf("get generation: %w", err)
	}

	generation.CreatedAt = createdAt.Format(time.RFC3339)
	return generation, nil
}

// List retrieves generation history, newest first.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Generation, int, error) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if params.UserID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, *params.UserID)
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM cg_generations WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count generations: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT id, request_id, user_id, source, title, used_fallback, fallback_reason, attempts, duration_ms, object_key, created_at
		FROM cg_generations
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	var generations []Generation
	for rows.Next() {
		var generation Generation
		var createdAt time.Time
		if err := rows.Scan(
			&generation.ID, &generation.RequestID, &generation.UserID, &generation.Source, &generation.Title,
			&generation.UsedFallback, &generation.FallbackReason, &generation.Attempts, &generation.DurationMS,
			&generation.ObjectKey, &createdAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan generation: %w", err)
		}
		generation.CreatedAt = createdAt.Format(time.RFC3339)
		generations = append(generations, generation)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list generations: %w", err)
	}

	return generations, total, nil
}

// DeleteOlderThan removes history rows created before the cutoff and returns
// how many were deleted.
func (r *Repo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM cg_generations WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old generations: %w", err)
	}
	return result.RowsAffected(), nil
}
