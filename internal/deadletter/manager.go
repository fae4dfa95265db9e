package deadletter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"

	"github.com/Dsharma2002/FitGenie-AI/internal/consumer"
	"github.com/Dsharma2002/FitGenie-AI/internal/platform/logger"
)

// Publisher republishes records to their source topic.
type Publisher interface {
	WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error
}

// Manager replays due activity_dlq entries and quarantines exhausted ones.
type Manager struct {
	pool       *pgxpool.Pool
	publisher  Publisher
	maxRetries int
	baseDelay  time.Duration
	log        *logger.Logger
	now        func() time.Time
}

// NewManager constructs a Manager with the provided pool and retry configuration.
func NewManager(pool *pgxpool.Pool, publisher Publisher, maxRetries int, baseDelay time.Duration, log *logger.Logger) *Manager {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	if baseDelay <= 0 {
		baseDelay = time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		pool:       pool,
		publisher:  publisher,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		log:        log.With("component", "dlq_manager"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// RunOnce processes a batch of due entries and returns how many were handled.
func (m *Manager) RunOnce(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 50
	}
	const query = `SELECT dlq_id, topic, message_key, payload, headers, reason, retry_count
                    FROM activity_dlq
                   WHERE quarantined_at IS NULL AND next_retry_at <= $2
                   ORDER BY next_retry_at, dlq_id
                   LIMIT $1`

	rows, err := m.pool.Query(ctx, query, batchSize, m.now())
	if err != nil {
		return 0, err
	}
	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return 0, err
	}

	processed := 0
	var errs error
	for _, e := range entries {
		if procErr := m.handleEntry(ctx, e); procErr != nil {
			errs = errors.Join(errs, procErr)
			continue
		}
		recordDLQProcessed(e)
		processed++
	}
	updateBacklogGauge(ctx, m.pool)
	return processed, errs
}

// handleEntry applies replay/quarantine logic for a single entry.
func (m *Manager) handleEntry(ctx context.Context, e entry) error {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Another manager may hold the row.
	var locked int64
	err = tx.QueryRow(ctx, `SELECT dlq_id FROM activity_dlq WHERE dlq_id = $1 AND quarantined_at IS NULL FOR UPDATE SKIP LOCKED`, e.ID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	now := m.now()
	if e.RetryCount >= m.maxRetries {
		if _, err := tx.Exec(ctx, `UPDATE activity_dlq SET quarantined_at = $1, quarantine_reason = $2 WHERE dlq_id = $3`,
			now, "retry limit reached", e.ID); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		recordDLQQuarantined(e)
		m.log.Warn("dlq entry quarantined", "dlq_id", e.ID, "topic", e.Topic, "retry_count", e.RetryCount, "reason", e.Reason)
		return nil
	}

	if publishErr := m.publisher.WriteMessages(ctx, e.Topic, e.message()); publishErr != nil {
		delay := Backoff(m.baseDelay, e.RetryCount+1)
		if _, err := tx.Exec(ctx,
			`UPDATE activity_dlq
               SET retry_count = retry_count + 1,
                   last_attempt_at = $1,
                   next_retry_at = $2,
                   reason = $3
             WHERE dlq_id = $4`,
			now, now.Add(delay), publishErr.Error(), e.ID,
		); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		recordDLQRetry(e)
		m.log.Warn("dlq replay failed, rescheduled", "dlq_id", e.ID, "delay", delay.String(), "error", publishErr)
		return nil
	}

	if _, err := tx.Exec(ctx, `DELETE FROM activity_dlq WHERE dlq_id = $1`, e.ID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	recordDLQRequeued(e)
	m.log.Info("dlq entry replayed", "dlq_id", e.ID, "topic", e.Topic, "attempt", e.RetryCount+1)
	return nil
}

// entry represents an activity_dlq row selected for processing.
type entry struct {
	ID         int64
	Topic      string
	Key        []byte
	Payload    []byte
	Headers    map[string]string
	Reason     string
	RetryCount int
}

// message rebuilds the record with the next redelivery attempt stamped on it.
func (e entry) message() kafka.Message {
	headers := make([]kafka.Header, 0, len(e.Headers)+1)
	for key, value := range e.Headers {
		if key == consumer.RedeliveryHeader {
			continue
		}
		headers = append(headers, kafka.Header{Key: key, Value: []byte(value)})
	}
	headers = append(headers, kafka.Header{Key: consumer.RedeliveryHeader, Value: []byte(strconv.Itoa(e.RetryCount + 1))})
	return kafka.Message{Key: e.Key, Value: e.Payload, Headers: headers}
}

func scanEntry(row pgx.CollectableRow) (entry, error) {
	var e entry
	var rawHeaders []byte
	if err := row.Scan(&e.ID, &e.Topic, &e.Key, &e.Payload, &rawHeaders, &e.Reason, &e.RetryCount); err != nil {
		return entry{}, err
	}
	if len(rawHeaders) > 0 {
		if err := json.Unmarshal(rawHeaders, &e.Headers); err != nil {
			return entry{}, err
		}
	}
	return e, nil
}
