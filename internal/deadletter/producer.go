package deadletter

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Dsharma2002/FitGenie-AI/internal/consumer"
)

// KafkaProducer republishes dead-lettered activities, keeping one writer per source topic.
type KafkaProducer struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer for the given brokers.
func NewKafkaProducer(brokers []string) *KafkaProducer {
	return &KafkaProducer{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

// WriteMessages republishes msgs to topic. Records captured without a key are keyed by their activity
// id so every replay of one activity lands on the same partition.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	keyed := make([]kafka.Message, len(msgs))
	for i, msg := range msgs {
		if len(msg.Key) == 0 {
			msg.Key = activityKey(msg.Value)
		}
		keyed[i] = msg
	}
	return p.writerForTopic(topic).WriteMessages(ctx, keyed...)
}

func (p *KafkaProducer) writerForTopic(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, ok := p.writers[topic]; ok {
		return writer
	}

	// Replays go out one entry at a time, so a long batch timeout would only add latency.
	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}
	p.writers[topic] = writer
	return writer
}

// Close releases all writers.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs error
	for topic, writer := range p.writers {
		errs = errors.Join(errs, writer.Close())
		delete(p.writers, topic)
	}
	return errs
}

// activityKey returns the id of the activity carried in value, or nil when it cannot be read.
func activityKey(value []byte) []byte {
	payload, _, err := consumer.Unframe(value)
	if err != nil {
		return nil
	}
	var body struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || len(body.ID) == 0 {
		return nil
	}
	var id string
	if err := json.Unmarshal(body.ID, &id); err != nil {
		if body.ID[0] == '"' {
			return nil
		}
		// Numeric ids keep their literal form.
		return []byte(body.ID)
	}
	if id == "" {
		return nil
	}
	return []byte(id)
}
