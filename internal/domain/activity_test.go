package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Dsharma2002/FitGenie-AI/pkg/events"
)

func TestActivityFromEvent(t *testing.T) {
	started := time.Date(2025, time.May, 4, 6, 0, 0, 0, time.UTC)
	activity, err := ActivityFromEvent(events.ActivityRecorded{
		ID:                " act-9 ",
		UserID:            "user-9",
		Type:              "CYCLING",
		Duration:          75,
		CaloriesBurnt:     820,
		StartTime:         events.Timestamp{Time: started},
		AdditionalMetrics: map[string]any{"cadence": 88},
	})
	require.NoError(t, err)
	require.Equal(t, "act-9", activity.ID)
	require.Equal(t, "CYCLING", activity.Type)
	require.Equal(t, 75, activity.DurationMin)
	require.Equal(t, 820, activity.CaloriesBurnt)
	require.Equal(t, started, activity.StartedAt)
	require.Equal(t, 88, activity.Metrics["cadence"])
}

func TestActivityFromEventRequiresIdentifiers(t *testing.T) {
	_, err := ActivityFromEvent(events.ActivityRecorded{ID: "act-1"})
	require.ErrorIs(t, err, ErrInvalidActivity)

	_, err = ActivityFromEvent(events.ActivityRecorded{UserID: "user-1"})
	require.ErrorIs(t, err, ErrInvalidActivity)
}

func TestPersistenceErrorUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := error(&PersistenceError{ActivityID: "act-1", Err: cause})

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "act-1")

	var pe *PersistenceError
	require.True(t, errors.As(err, &pe))
}
