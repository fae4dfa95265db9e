// Package enrichment turns a recorded activity into a stored recommendation by way of the text provider.
package enrichment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Dsharma2002/FitGenie-AI/internal/domain"
)

const promptTemplate = `Analyze this fitness activity and provide detailed recommendations in the following EXACT JSON format:
{
    "analysis": {
        "overall": "Overall analysis here",
        "pace": "Pace analysis here",
        "heartRate": "Heart rate analysis here",
        "caloriesBurned": "Calories analysis here"
    },
    "improvements": [
        {
            "area": "Area name",
            "recommendation": "Detailed recommendation"
        }
    ],
    "suggestions": [
        {
            "workout": "Workout name",
            "description": "Detailed workout description"
        }
    ],
    "safety": [
        "Safety tip 1",
        "Safety tip 2"
    ]
}

Analyse the following activity data:
Activity Type: %s
Duration (minutes): %d
Calories burned: %d
Additional Metrics: %s

Provide detailed analysis focusing on performance, improvements, next workout suggestions, and safety tips.
Ensure the response is strictly in the specified JSON format without any additional text or explanation.
`

// ComposePrompt renders the instruction prompt for an activity. Identical input yields an identical prompt.
func ComposePrompt(activity domain.Activity) string {
	return fmt.Sprintf(promptTemplate,
		activity.Type,
		activity.DurationMin,
		activity.CaloriesBurnt,
		renderMetrics(activity.Metrics),
	)
}

// renderMetrics prints the metric bag as {k1=v1, k2=v2} with sorted keys, or None when absent.
// A present but empty bag prints as {}.
func renderMetrics(metrics map[string]any) string {
	if metrics == nil {
		return "None"
	}
	keys := make([]string, 0, len(metrics))
	for key := range metrics {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, metrics[key]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
