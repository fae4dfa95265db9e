package enrichment

import (
	"strings"
	"time"

	"github.com/Dsharma2002/FitGenie-AI/internal/domain"
)

// Fallback content used when the provider answer could not be read or left a section empty.
const (
	FallbackNarrative       = "Could not generate recommendation due to an error."
	NoImprovementsAvailable = "No improvements available"
	NoSuggestionsAvailable  = "No suggestions available"
	NoImprovementsProvided  = "No improvements provided"
	NoSuggestionsProvided   = "No suggestions provided"
	GeneralSafetyGuidelines = "Follow general safety guidelines"
)

// Builder assembles the stored recommendation from an activity and its extraction result.
type Builder struct {
	Now func() time.Time
}

// NewBuilder returns a Builder stamping records with the current UTC time.
func NewBuilder() *Builder {
	return &Builder{Now: func() time.Time { return time.Now().UTC() }}
}

// Build always returns a recommendation. A non-nil extractErr (or nil analysis) selects the fallback content.
func (b *Builder) Build(activity domain.Activity, analysis *Analysis, extractErr error) domain.Recommendation {
	rec := domain.Recommendation{
		ActivityID:   activity.ID,
		UserID:       activity.UserID,
		ActivityType: activity.Type,
		CreatedAt:    b.now(),
	}

	if extractErr != nil || analysis == nil {
		rec.Recommendation = FallbackNarrative
		rec.Improvements = []string{NoImprovementsAvailable}
		rec.Suggestions = []string{NoSuggestionsAvailable}
		rec.Safety = []string{GeneralSafetyGuidelines}
		return rec
	}

	rec.Recommendation = narrative(analysis)
	rec.Improvements = improvementLines(analysis.Improvements)
	rec.Suggestions = suggestionLines(analysis.Suggestions)
	rec.Safety = safetyLines(analysis.Safety)
	return rec
}

func (b *Builder) now() time.Time {
	if b == nil || b.Now == nil {
		return time.Now().UTC()
	}
	return b.Now()
}

func narrative(a *Analysis) string {
	var sb strings.Builder
	section := func(label string, value *string) {
		if value == nil {
			return
		}
		sb.WriteString(label)
		sb.WriteString(*value)
		sb.WriteString("\n\n")
	}
	section("Overall: ", a.Overall)
	section("Pace: ", a.Pace)
	section("Heart Rate: ", a.HeartRate)
	section("Calories Burned: ", a.CaloriesBurned)
	return strings.TrimSpace(sb.String())
}

func improvementLines(items []Improvement) []string {
	if len(items) == 0 {
		return []string{NoImprovementsProvided}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.String())
	}
	return out
}

func suggestionLines(items []Suggestion) []string {
	if len(items) == 0 {
		return []string{NoSuggestionsProvided}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.String())
	}
	return out
}

func safetyLines(tips []string) []string {
	if len(tips) == 0 {
		return []string{GeneralSafetyGuidelines}
	}
	out := make([]string, len(tips))
	copy(out, tips)
	return out
}
