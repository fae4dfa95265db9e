package enrichment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dsharma2002/FitGenie-AI/internal/domain"
)

func TestComposePromptWithoutMetrics(t *testing.T) {
	prompt := ComposePrompt(domain.Activity{ID: "a1", UserID: "u1", Type: "RUNNING", DurationMin: 30, CaloriesBurnt: 300})

	require.Contains(t, prompt, "Activity Type: RUNNING")
	require.Contains(t, prompt, "Duration (minutes): 30")
	require.Contains(t, prompt, "Calories burned: 300")
	require.Contains(t, prompt, "Additional Metrics: None")
	require.Contains(t, prompt, `"heartRate"`)
	require.Contains(t, prompt, "strictly in the specified JSON format")
}

func TestComposePromptRendersMetricsInKeyOrder(t *testing.T) {
	activity := domain.Activity{
		Type:    "CYCLING",
		Metrics: map[string]any{"maxHeartRate": 171, "avgHeartRate": 142.5, "elevation": "320m"},
	}

	prompt := ComposePrompt(activity)
	require.Contains(t, prompt, "Additional Metrics: {avgHeartRate=142.5, elevation=320m, maxHeartRate=171}")
	for i := 0; i < 20; i++ {
		require.Equal(t, prompt, ComposePrompt(activity))
	}
}

func TestComposePromptEmptyMetricBag(t *testing.T) {
	prompt := ComposePrompt(domain.Activity{Type: "SWIMMING", Metrics: map[string]any{}})
	require.Contains(t, prompt, "Additional Metrics: {}")

	prompt = ComposePrompt(domain.Activity{Type: "SWIMMING"})
	require.Contains(t, prompt, "Additional Metrics: None")
}
