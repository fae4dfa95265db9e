package enrichment

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Dsharma2002/FitGenie-AI/internal/domain"
)

var fixedNow = time.Date(2025, time.March, 4, 9, 30, 0, 0, time.UTC)

func testBuilder() *Builder {
	return &Builder{Now: func() time.Time { return fixedNow }}
}

func strPtr(s string) *string { return &s }

func TestBuildCopiesActivityFields(t *testing.T) {
	activity := domain.Activity{ID: "act-1", UserID: "user-1", Type: "RUNNING"}
	rec := testBuilder().Build(activity, &Analysis{Overall: strPtr("Nice")}, nil)

	require.Equal(t, "act-1", rec.ActivityID)
	require.Equal(t, "user-1", rec.UserID)
	require.Equal(t, "RUNNING", rec.ActivityType)
	require.Equal(t, fixedNow, rec.CreatedAt)
	require.Empty(t, rec.ID, "identifiers are assigned by the store")
}

func TestBuildNarrativeOrderAndOmission(t *testing.T) {
	analysis := &Analysis{
		CaloriesBurned: strPtr("On target"),
		Overall:        strPtr("Strong session"),
		HeartRate:      strPtr("Zone 3 mostly"),
	}
	rec := testBuilder().Build(domain.Activity{}, analysis, nil)
	require.Equal(t, "Overall: Strong session\n\nHeart Rate: Zone 3 mostly\n\nCalories Burned: On target", rec.Recommendation)
}

func TestBuildEmptyListsUseProvidedFallbacks(t *testing.T) {
	rec := testBuilder().Build(domain.Activity{}, &Analysis{Overall: strPtr("Good pace")}, nil)

	require.Equal(t, "Overall: Good pace", rec.Recommendation)
	require.Equal(t, []string{NoImprovementsProvided}, rec.Improvements)
	require.Equal(t, []string{NoSuggestionsProvided}, rec.Suggestions)
	require.Equal(t, []string{GeneralSafetyGuidelines}, rec.Safety)
}

func TestBuildExtractionFailureUsesAvailableFallbacks(t *testing.T) {
	rec := testBuilder().Build(domain.Activity{ID: "a"}, nil, &ExtractionError{Kind: MalformedEnvelope})

	require.Equal(t, "Could not generate recommendation due to an error.", rec.Recommendation)
	require.Equal(t, []string{"No improvements available"}, rec.Improvements)
	require.Equal(t, []string{"No suggestions available"}, rec.Suggestions)
	require.Equal(t, []string{"Follow general safety guidelines"}, rec.Safety)
}

func TestBuildMapsListEntries(t *testing.T) {
	analysis := &Analysis{
		Improvements: []Improvement{{Area: "Cadence", Recommendation: "Shorten stride"}},
		Suggestions:  []Suggestion{{Workout: "Intervals", Description: "6x400m"}, {Workout: "Easy run", Description: ""}},
		Safety:       []string{"Warm up", "Hydrate"},
	}
	rec := testBuilder().Build(domain.Activity{}, analysis, nil)

	require.Empty(t, rec.Recommendation)
	require.Equal(t, []string{"Cadence: Shorten stride"}, rec.Improvements)
	require.Equal(t, []string{"Intervals: 6x400m", "Easy run: "}, rec.Suggestions)
	require.Equal(t, []string{"Warm up", "Hydrate"}, rec.Safety)
}

func TestBuildListsAreNeverEmpty(t *testing.T) {
	analyses := []*Analysis{
		nil,
		{},
		{Improvements: []Improvement{}, Suggestions: []Suggestion{}, Safety: []string{}},
		{Safety: []string{"Stop if dizzy"}},
		{Improvements: []Improvement{{Area: "Form"}}},
	}
	failures := []error{nil, errors.New("boom"), &ExtractionError{Kind: MalformedAnalysis}}

	for _, analysis := range analyses {
		for _, failure := range failures {
			rec := NewBuilder().Build(domain.Activity{ID: "a", UserID: "u"}, analysis, failure)
			require.NotEmpty(t, rec.Improvements)
			require.NotEmpty(t, rec.Suggestions)
			require.NotEmpty(t, rec.Safety)
			require.False(t, rec.CreatedAt.IsZero())
		}
	}
}
