package deadletter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"

	"github.com/Dsharma2002/FitGenie-AI/internal/consumer"
)

// Writer persists failed activity records in activity_dlq.
type Writer struct {
	pool      *pgxpool.Pool
	baseDelay time.Duration
	now       func() time.Time
}

// NewWriter initialises a writer backed by the provided connection pool.
// baseDelay spaces out replays of records that already failed after a redelivery.
func NewWriter(pool *pgxpool.Pool, baseDelay time.Duration) *Writer {
	return &Writer{pool: pool, baseDelay: baseDelay, now: func() time.Time { return time.Now().UTC() }}
}

// Capture implements consumer.DeadLetterSink. The record's redelivery attempt becomes its retry count.
func (w *Writer) Capture(ctx context.Context, msg kafka.Message, reason error) error {
	headers := make(map[string]string, len(msg.Headers))
	for _, header := range msg.Headers {
		headers[header.Key] = string(header.Value)
	}
	headerJSON, err := json.Marshal(headers)
	if err != nil {
		return err
	}

	attempt := consumer.RedeliveryAttempt(msg)
	now := w.now()
	reasonText := "unknown"
	if reason != nil {
		reasonText = reason.Error()
	}

	_, err = w.pool.Exec(ctx,
		`INSERT INTO activity_dlq (topic, partition, record_offset, message_key, payload, headers, reason, retry_count, next_retry_at, last_attempt_at)
	         VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		msg.Topic, msg.Partition, msg.Offset, msg.Key, msg.Value, headerJSON, reasonText, attempt,
		now.Add(Backoff(w.baseDelay, attempt)), lastAttempt(attempt, now),
	)
	return err
}

func lastAttempt(attempt int, now time.Time) interface{} {
	if attempt == 0 {
		return nil
	}
	return now
}
