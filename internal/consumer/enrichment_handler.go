package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dsharma2002/FitGenie-AI/internal/domain"
	"github.com/Dsharma2002/FitGenie-AI/internal/platform/logger"
	"github.com/Dsharma2002/FitGenie-AI/pkg/events"
)

// ActivityProcessor turns one activity into a stored recommendation.
type ActivityProcessor interface {
	Process(ctx context.Context, activity domain.Activity) (domain.Recommendation, error)
}

// EnrichmentHandler decodes recorded activities and runs them through the pipeline.
type EnrichmentHandler struct {
	pipeline ActivityProcessor
	log      *logger.Logger
}

// NewEnrichmentHandler constructs an enrichment handler backed by the provided pipeline.
func NewEnrichmentHandler(pipeline ActivityProcessor, log *logger.Logger) Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &EnrichmentHandler{pipeline: pipeline, log: log}
}

// Handle ignores events other than activity creation when the publisher labels them.
func (h *EnrichmentHandler) Handle(ctx context.Context, msg Message) error {
	if eventType, ok := msg.Headers["event_type"]; ok && !isActivityEvent(eventType) {
		return nil
	}

	var evt events.ActivityRecorded
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return fmt.Errorf("%w: decode activity: %v", ErrMalformedMessage, err)
	}
	activity, err := domain.ActivityFromEvent(evt)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	if msg.Attempt > 0 {
		h.log.Info("processing redelivered activity", "activity_id", activity.ID, "attempt", msg.Attempt)
	}
	_, err = h.pipeline.Process(ctx, activity)
	return err
}

func isActivityEvent(eventType string) bool {
	switch eventType {
	case "", "activity.created", "activity.recorded":
		return true
	default:
		return false
	}
}
