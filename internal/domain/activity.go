// Package domain defines the records flowing through the recommendation pipeline.
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/Dsharma2002/FitGenie-AI/pkg/events"
)

// ErrInvalidActivity is returned when an inbound activity lacks its identifiers.
var ErrInvalidActivity = errors.New("activity requires id and user id")

// Activity represents a recorded exercise session received from the activity service.
// It is read-only input to the pipeline.
type Activity struct {
	ID            string
	UserID        string
	Type          string
	DurationMin   int
	CaloriesBurnt int
	StartedAt     time.Time
	Metrics       map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ActivityFromEvent maps the wire payload onto the domain activity.
func ActivityFromEvent(evt events.ActivityRecorded) (Activity, error) {
	activity := Activity{
		ID:            strings.TrimSpace(string(evt.ID)),
		UserID:        strings.TrimSpace(string(evt.UserID)),
		Type:          string(evt.Type),
		DurationMin:   int(evt.Duration),
		CaloriesBurnt: int(evt.CaloriesBurnt),
		StartedAt:     evt.StartTime.Time,
		Metrics:       map[string]any(evt.AdditionalMetrics),
		CreatedAt:     evt.CreatedAt.Time,
		UpdatedAt:     evt.UpdatedAt.Time,
	}
	if activity.ID == "" || activity.UserID == "" {
		return Activity{}, ErrInvalidActivity
	}
	return activity, nil
}
