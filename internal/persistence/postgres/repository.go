// Package postgres persists recommendations in Postgres.
package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dsharma2002/FitGenie-AI/internal/domain"
	"github.com/Dsharma2002/FitGenie-AI/internal/persistence"
)

const selectColumns = `SELECT recommendation_id::text, activity_id, user_id, activity_type, recommendation, improvements, suggestions, safety, created_at
        FROM recommendations`

// Repository provides Postgres-backed persistence for recommendations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert writes a new recommendation row. Rows are never updated.
func (r *Repository) Insert(ctx context.Context, rec domain.Recommendation) (domain.Recommendation, error) {
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	// timestamptz keeps microseconds; truncate so cursors built from the return value match stored rows.
	rec.CreatedAt = rec.CreatedAt.UTC().Truncate(time.Microsecond)

	const stmt = `INSERT INTO recommendations (recommendation_id, activity_id, user_id, activity_type, recommendation, improvements, suggestions, safety, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err := r.pool.Exec(ctx, stmt,
		rec.ID,
		rec.ActivityID,
		rec.UserID,
		rec.ActivityType,
		rec.Recommendation,
		rec.Improvements,
		rec.Suggestions,
		rec.Safety,
		rec.CreatedAt,
	)
	if err != nil {
		return domain.Recommendation{}, err
	}
	return rec, nil
}

// ListByActivity returns the recommendations generated for an activity, newest first.
func (r *Repository) ListByActivity(ctx context.Context, activityID string) ([]domain.Recommendation, error) {
	query := selectColumns + ` WHERE activity_id=$1 ORDER BY created_at DESC, recommendation_id DESC`

	rows, err := r.pool.Query(ctx, query, activityID)
	if err != nil {
		return nil, err
	}
	return collect(rows, 0)
}

// ListByUser returns recommendations for a user ordered by creation time.
func (r *Repository) ListByUser(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.Recommendation, *domain.Cursor, error) {
	limit = persistence.ClampLimit(limit)
	args := []interface{}{userID, limit}
	query := selectColumns + ` WHERE user_id=$1`

	if cursor != nil {
		query += ` AND (created_at, recommendation_id) < ($3, $4::uuid)`
		args = append(args, cursor.CreatedAt, cursor.ID)
	}

	query += ` ORDER BY created_at DESC, recommendation_id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	results, err := collect(rows, limit)
	if err != nil {
		return nil, nil, err
	}
	return results, persistence.NextCursor(results, limit), nil
}

func collect(rows pgx.Rows, capacity int) ([]domain.Recommendation, error) {
	defer rows.Close()

	results := make([]domain.Recommendation, 0, capacity)
	for rows.Next() {
		var rec domain.Recommendation
		if err := rows.Scan(&rec.ID, &rec.ActivityID, &rec.UserID, &rec.ActivityType, &rec.Recommendation,
			&rec.Improvements, &rec.Suggestions, &rec.Safety, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
