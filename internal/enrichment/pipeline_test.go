package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Dsharma2002/FitGenie-AI/internal/domain"
	"github.com/Dsharma2002/FitGenie-AI/internal/platform/logger"
)

type stubProvider struct {
	response string
	err      error
	prompts  []string
	deadline bool
}

func (s *stubProvider) Call(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	_, s.deadline = ctx.Deadline()
	return s.response, s.err
}

type blockingProvider struct{}

func (blockingProvider) Call(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type stubStore struct {
	mu       sync.Mutex
	inserted []domain.Recommendation
	err      error
}

func (s *stubStore) Insert(_ context.Context, rec domain.Recommendation) (domain.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.Recommendation{}, s.err
	}
	rec.ID = "rec-" + rec.ActivityID
	s.inserted = append(s.inserted, rec)
	return rec, nil
}

func (s *stubStore) ListByActivity(context.Context, string) ([]domain.Recommendation, error) {
	return nil, nil
}

func (s *stubStore) ListByUser(context.Context, string, *domain.Cursor, int) ([]domain.Recommendation, *domain.Cursor, error) {
	return nil, nil, nil
}

func newTestPipeline(t *testing.T, provider Provider, store domain.RecommendationStore, timeout time.Duration) *Pipeline {
	t.Helper()
	p, err := NewPipeline(PipelineConfig{
		Provider: provider,
		Store:    store,
		Timeout:  timeout,
		Logger:   logger.FromZap(zaptest.NewLogger(t)),
		Now:      func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return p
}

var running = domain.Activity{ID: "act-42", UserID: "user-7", Type: "RUNNING", DurationMin: 30, CaloriesBurnt: 300}

func TestPipelinePersistsExtractedRecommendation(t *testing.T) {
	text := "```json\n{\"analysis\":{\"overall\":\"Good pace\"},\"improvements\":[],\"suggestions\":[],\"safety\":[]}\n```"
	provider := &stubProvider{response: envelopeWithText(t, text)}
	store := &stubStore{}

	rec, err := newTestPipeline(t, provider, store, time.Second).Process(context.Background(), running)
	require.NoError(t, err)

	require.Len(t, provider.prompts, 1)
	require.Contains(t, provider.prompts[0], "Activity Type: RUNNING")
	require.True(t, provider.deadline, "provider call should be bounded")

	require.Len(t, store.inserted, 1)
	require.Equal(t, "rec-act-42", rec.ID)
	require.Equal(t, "Overall: Good pace", rec.Recommendation)
	require.Equal(t, []string{"No improvements provided"}, rec.Improvements)
	require.Equal(t, []string{"Follow general safety guidelines"}, rec.Safety)
	require.Equal(t, fixedNow, rec.CreatedAt)
}

func TestPipelineDegradesOnUnreadableAnswer(t *testing.T) {
	store := &stubStore{}
	provider := &stubProvider{response: "<html>Service Unavailable</html>"}

	rec, err := newTestPipeline(t, provider, store, 0).Process(context.Background(), running)
	require.NoError(t, err)
	require.False(t, provider.deadline)

	require.Len(t, store.inserted, 1)
	require.Equal(t, "Could not generate recommendation due to an error.", rec.Recommendation)
	require.Equal(t, []string{"No improvements available"}, rec.Improvements)
	require.Equal(t, []string{"Follow general safety guidelines"}, rec.Safety)
}

func TestPipelineAbandonsOnProviderError(t *testing.T) {
	store := &stubStore{}
	providerErr := errors.New("dial tcp: connection refused")

	_, err := newTestPipeline(t, &stubProvider{err: providerErr}, store, time.Second).Process(context.Background(), running)
	require.ErrorIs(t, err, providerErr)
	require.Empty(t, store.inserted)
}

func TestPipelineProviderTimeout(t *testing.T) {
	store := &stubStore{}

	_, err := newTestPipeline(t, blockingProvider{}, store, 20*time.Millisecond).Process(context.Background(), running)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Empty(t, store.inserted)
}

func TestPipelineWrapsStoreFailure(t *testing.T) {
	storeErr := errors.New("connection reset")
	store := &stubStore{err: storeErr}
	provider := &stubProvider{response: envelopeWithText(t, `{"analysis":{"overall":"ok"}}`)}

	_, err := newTestPipeline(t, provider, store, time.Second).Process(context.Background(), running)
	require.Error(t, err)

	var persistErr *domain.PersistenceError
	require.True(t, errors.As(err, &persistErr))
	require.Equal(t, "act-42", persistErr.ActivityID)
	require.ErrorIs(t, err, storeErr)
}

// The provider echoes a well-formed answer; the narrative carries exactly the sections present, in order.
func TestPipelineRoundTripNarrative(t *testing.T) {
	doc := map[string]any{
		"analysis": map[string]any{
			"caloriesBurned": "Burned as expected",
			"overall":        "Consistent effort",
			"pace":           "5:10 per km",
		},
		"improvements": []any{map[string]any{"area": "Recovery", "recommendation": "Sleep more"}},
		"suggestions":  []any{map[string]any{"workout": "Long run", "description": "90 minutes easy"}},
		"safety":       []any{"Run facing traffic"},
	}
	encoded, err := json.Marshal(doc)
	require.NoError(t, err)

	store := &stubStore{}
	rec, err := newTestPipeline(t, &stubProvider{response: envelopeWithText(t, string(encoded))}, store, time.Second).
		Process(context.Background(), running)
	require.NoError(t, err)

	require.Equal(t, "Overall: Consistent effort\n\nPace: 5:10 per km\n\nCalories Burned: Burned as expected", rec.Recommendation)
	require.False(t, strings.Contains(rec.Recommendation, "Heart Rate:"))
	require.Equal(t, []string{"Recovery: Sleep more"}, rec.Improvements)
	require.Equal(t, []string{"Long run: 90 minutes easy"}, rec.Suggestions)
	require.Equal(t, []string{"Run facing traffic"}, rec.Safety)
}

func TestNewPipelineRequiresCollaborators(t *testing.T) {
	_, err := NewPipeline(PipelineConfig{Store: &stubStore{}})
	require.Error(t, err)
	_, err = NewPipeline(PipelineConfig{Provider: &stubProvider{}})
	require.Error(t, err)
	_, err = NewPipeline(PipelineConfig{Provider: &stubProvider{}, Store: &stubStore{}, Timeout: -time.Second})
	require.Error(t, err)
}
