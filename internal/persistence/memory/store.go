// Package memory keeps recommendations in process memory for tests and local development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Dsharma2002/FitGenie-AI/internal/domain"
	"github.com/Dsharma2002/FitGenie-AI/internal/persistence"
)

// Store is an append-only in-memory RecommendationStore.
type Store struct {
	mu      sync.RWMutex
	records []domain.Recommendation
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{}
}

// Insert implements domain.RecommendationStore.
func (s *Store) Insert(ctx context.Context, rec domain.Recommendation) (domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Recommendation{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.records = append(s.records, clone(rec))
	return rec, nil
}

// ListByActivity returns every recommendation for the activity, newest first.
func (s *Store) ListByActivity(ctx context.Context, activityID string) ([]domain.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]domain.Recommendation, 0)
	for _, rec := range s.records {
		if rec.ActivityID == activityID {
			results = append(results, clone(rec))
		}
	}
	sortNewestFirst(results)
	return results, nil
}

// ListByUser pages through a user's recommendations, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.Recommendation, *domain.Cursor, error) {
	limit = persistence.ClampLimit(limit)

	s.mu.RLock()
	matches := make([]domain.Recommendation, 0)
	for _, rec := range s.records {
		if rec.UserID == userID && persistence.Before(rec, cursor) {
			matches = append(matches, clone(rec))
		}
	}
	s.mu.RUnlock()

	sortNewestFirst(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, persistence.NextCursor(matches, limit), nil
}

func sortNewestFirst(recs []domain.Recommendation) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].ID > recs[j].ID
		}
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
}

func clone(rec domain.Recommendation) domain.Recommendation {
	rec.Improvements = append([]string(nil), rec.Improvements...)
	rec.Suggestions = append([]string(nil), rec.Suggestions...)
	rec.Safety = append([]string(nil), rec.Safety...)
	return rec
}
