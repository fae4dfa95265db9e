package enrichment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dsharma2002/FitGenie-AI/internal/domain"
	"github.com/Dsharma2002/FitGenie-AI/internal/observability"
	"github.com/Dsharma2002/FitGenie-AI/internal/platform/logger"
)

// Provider sends a prompt to the text-generation endpoint and returns its raw answer.
type Provider interface {
	Call(ctx context.Context, prompt string) (string, error)
}

// Stage names the step a message reached in the pipeline. Used in logs.
type Stage string

const (
	StageReceived            Stage = "received"
	StagePromptComposed      Stage = "prompt_composed"
	StageProviderResponded   Stage = "provider_responded"
	StageExtractionSucceeded Stage = "extraction_succeeded"
	StageExtractionFailed    Stage = "extraction_failed"
	StageRecommendationBuilt Stage = "recommendation_built"
	StagePersisted           Stage = "persisted"
	StageAbandoned           Stage = "abandoned"
)

// PipelineConfig wires the pipeline's collaborators.
type PipelineConfig struct {
	Provider Provider
	Store    domain.RecommendationStore
	Timeout  time.Duration // Bound on a single provider call; zero means no bound beyond ctx.
	Logger   *logger.Logger
	Now      func() time.Time
}

// Pipeline drives one activity through prompt, provider, extraction, build and persistence.
type Pipeline struct {
	provider Provider
	store    domain.RecommendationStore
	timeout  time.Duration
	builder  *Builder
	log      *logger.Logger
}

// NewPipeline validates the config and constructs a Pipeline.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.Provider == nil {
		return nil, errors.New("pipeline: provider is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("pipeline: store is required")
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("pipeline: negative timeout %s", cfg.Timeout)
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	builder := NewBuilder()
	if cfg.Now != nil {
		builder.Now = cfg.Now
	}
	return &Pipeline{
		provider: cfg.Provider,
		store:    cfg.Store,
		timeout:  cfg.Timeout,
		builder:  builder,
		log:      log.With("component", "pipeline"),
	}, nil
}

// Process runs the activity to a stored recommendation. Provider and store failures abandon the
// activity and are returned; extraction failures are absorbed into a fallback recommendation.
func (p *Pipeline) Process(ctx context.Context, activity domain.Activity) (domain.Recommendation, error) {
	log := p.log.With("activity_id", activity.ID, "user_id", activity.UserID)
	log.Debug("activity received", "stage", StageReceived, "type", activity.Type)

	prompt := ComposePrompt(activity)
	log.Debug("prompt composed", "stage", StagePromptComposed, "prompt_bytes", len(prompt))

	raw, err := p.callProvider(ctx, prompt)
	if err != nil {
		log.Error("provider call failed", "stage", StageAbandoned, "error", err)
		return domain.Recommendation{}, err
	}
	log.Debug("provider responded", "stage", StageProviderResponded, "response", raw)

	analysis, extractErr := Extract(raw)
	if extractErr != nil {
		kind := extractionKind(extractErr)
		observability.RecordExtraction(string(kind))
		observability.RecordDegraded()
		log.Warn("extraction failed, using fallback recommendation", "stage", StageExtractionFailed, "kind", kind, "error", extractErr)
	} else {
		observability.RecordExtraction(observability.ExtractionSucceeded)
		log.Debug("extraction succeeded", "stage", StageExtractionSucceeded)
	}

	rec := p.builder.Build(activity, analysis, extractErr)
	log.Debug("recommendation built", "stage", StageRecommendationBuilt)

	stored, err := p.store.Insert(ctx, rec)
	if err != nil {
		log.Error("persist recommendation failed", "stage", StageAbandoned, "error", err)
		return domain.Recommendation{}, &domain.PersistenceError{ActivityID: activity.ID, Err: err}
	}
	observability.RecordRecommendationPersisted(stored.CreatedAt)
	log.Info("recommendation generated", "stage", StagePersisted, "recommendation_id", stored.ID,
		"recommendation", stored.Recommendation, "improvements", len(stored.Improvements),
		"suggestions", len(stored.Suggestions), "safety", len(stored.Safety))
	return stored, nil
}

func (p *Pipeline) callProvider(ctx context.Context, prompt string) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	start := time.Now()
	raw, err := p.provider.Call(ctx, prompt)
	if err != nil {
		observability.ObserveProviderCall(observability.ProviderFailure, time.Since(start))
		return "", err
	}
	observability.ObserveProviderCall(observability.ProviderOK, time.Since(start))
	return raw, nil
}

func extractionKind(err error) ExtractionKind {
	var extractErr *ExtractionError
	if errors.As(err, &extractErr) {
		return extractErr.Kind
	}
	return "unknown"
}
