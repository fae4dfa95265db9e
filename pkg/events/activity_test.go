package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestActivityRecordedDecodesUpstreamPayload(t *testing.T) {
	payload := []byte(`{
		"id": "act-1",
		"userId": "user-1",
		"type": "RUNNING",
		"duration": 30,
		"caloriesBurnt": 300,
		"startTime": "2025-03-01T07:30:00",
		"additionalMetrics": {"avgHeartRate": 148},
		"createdAt": [2025, 3, 1, 8, 0, 5],
		"updatedAt": "2025-03-01T08:00:05Z"
	}`)

	var evt ActivityRecorded
	require.NoError(t, json.Unmarshal(payload, &evt))

	require.Equal(t, Text("act-1"), evt.ID)
	require.Equal(t, Text("user-1"), evt.UserID)
	require.Equal(t, Text("RUNNING"), evt.Type)
	require.Equal(t, Number(30), evt.Duration)
	require.Equal(t, Number(300), evt.CaloriesBurnt)
	require.Equal(t, time.Date(2025, time.March, 1, 7, 30, 0, 0, time.UTC), evt.StartTime.Time)
	require.Equal(t, time.Date(2025, time.March, 1, 8, 0, 5, 0, time.UTC), evt.CreatedAt.Time)
	require.Equal(t, time.Date(2025, time.March, 1, 8, 0, 5, 0, time.UTC), evt.UpdatedAt.Time)
	require.EqualValues(t, 148, evt.AdditionalMetrics["avgHeartRate"])
}

func TestActivityRecordedToleratesNullsAndJunk(t *testing.T) {
	payload := []byte(`{"id":"act-2","userId":"user-2","duration":null,"caloriesBurnt":null,"startTime":"yesterday","createdAt":42,"additionalMetrics":null}`)

	var evt ActivityRecorded
	require.NoError(t, json.Unmarshal(payload, &evt))

	require.Zero(t, evt.Duration)
	require.Zero(t, evt.CaloriesBurnt)
	require.True(t, evt.StartTime.IsZero())
	require.True(t, evt.CreatedAt.IsZero())
	require.Nil(t, evt.AdditionalMetrics)
}

func TestActivityRecordedToleratesMistypedFields(t *testing.T) {
	cases := []struct {
		name         string
		payload      string
		wantDuration Number
		wantCalories Number
		wantType     Text
		wantMetrics  bool
	}{
		{"fractional numbers truncate", `{"duration":30.9,"caloriesBurnt":-2.5,"type":"RUNNING"}`, 30, -2, "RUNNING", false},
		{"numeric strings parse", `{"duration":"30","caloriesBurnt":" 410.7 ","additionalMetrics":{"pace":5}}`, 30, 410, "", true},
		{"junk falls back to zero", `{"duration":"long","caloriesBurnt":{},"type":7}`, 0, 0, "7", false},
		{"non-object metric bag is absent", `{"additionalMetrics":[],"type":true}`, 0, 0, "true", false},
		{"string metric bag is absent", `{"additionalMetrics":"none","type":["x"]}`, 0, 0, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var evt ActivityRecorded
			require.NoError(t, json.Unmarshal([]byte(tc.payload), &evt))
			require.Equal(t, tc.wantDuration, evt.Duration)
			require.Equal(t, tc.wantCalories, evt.CaloriesBurnt)
			require.Equal(t, tc.wantType, evt.Type)
			require.Equal(t, tc.wantMetrics, evt.AdditionalMetrics != nil)
		})
	}
}
