package domain

import (
	"context"
	"fmt"
	"time"
)

// Recommendation is the structured analysis stored for a single activity message.
// Improvements, Suggestions and Safety always hold at least one entry.
type Recommendation struct {
	ID             string    `json:"id" yaml:"id"`
	ActivityID     string    `json:"activityId" yaml:"activityId"`
	UserID         string    `json:"userId" yaml:"userId"`
	ActivityType   string    `json:"activityType" yaml:"activityType"`
	Recommendation string    `json:"recommendation" yaml:"recommendation"`
	Improvements   []string  `json:"improvements" yaml:"improvements"`
	Suggestions    []string  `json:"suggestions" yaml:"suggestions"`
	Safety         []string  `json:"safety" yaml:"safety"`
	CreatedAt      time.Time `json:"createdAt" yaml:"createdAt"`
}

// Cursor models the pagination token for user listings, newest first.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// RecommendationStore captures persistence operations. Records are append-only.
type RecommendationStore interface {
	// Insert stores the recommendation, assigning an ID when none is set, and returns the stored record.
	Insert(ctx context.Context, rec Recommendation) (Recommendation, error)
	ListByActivity(ctx context.Context, activityID string) ([]Recommendation, error)
	ListByUser(ctx context.Context, userID string, cursor *Cursor, limit int) ([]Recommendation, *Cursor, error)
}

// PersistenceError reports a failed store write.
type PersistenceError struct {
	ActivityID string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist recommendation for activity %s: %v", e.ActivityID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
