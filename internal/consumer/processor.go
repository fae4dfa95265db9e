// Package consumer provides the Kafka consumer loop that feeds recorded activities into the enrichment pipeline.
package consumer

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Dsharma2002/FitGenie-AI/internal/platform/logger"
)

// RedeliveryHeader carries how many times a record has been replayed from the dead-letter table.
const RedeliveryHeader = "x-redelivery-attempt"

// ErrMalformedMessage marks payloads that can never be processed. Handlers wrap it so the processor
// commits the record instead of dead-lettering it.
var ErrMalformedMessage = errors.New("malformed message")

// Reader exposes the minimal kafka.Reader interface needed by the processor.
type Reader interface {
	FetchMessage(context.Context) (kafka.Message, error)
	CommitMessages(context.Context, ...kafka.Message) error
	Close() error
}

// Handler receives decoded messages from Kafka.
type Handler interface {
	Handle(context.Context, Message) error
}

// DeadLetterSink takes ownership of a record whose handler failed.
type DeadLetterSink interface {
	Capture(ctx context.Context, msg kafka.Message, reason error) error
}

// Message is the decoded representation of a Kafka record.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Key       string
	Headers   map[string]string
	SchemaID  int // Zero when the record is not framed for the schema registry.
	Attempt   int // Redelivery attempt, zero for first delivery.
	Payload   json.RawMessage
}

// Option configures optional behaviour for the Processor.
type Option func(*Processor)

// WithLogger overrides the logger used to report errors.
func WithLogger(log *logger.Logger) Option {
	return func(p *Processor) {
		if log != nil {
			p.logger = log
		}
	}
}

// WithDeadLetterSink hands failed records to sink and commits them once captured.
func WithDeadLetterSink(sink DeadLetterSink) Option {
	return func(p *Processor) {
		p.deadLetters = sink
	}
}

// Processor pulls messages from Kafka, decodes them, and dispatches to a Handler.
type Processor struct {
	reader      Reader
	handler     Handler
	deadLetters DeadLetterSink
	logger      *logger.Logger
}

// NewProcessor constructs a Processor with the provided reader and handler.
func NewProcessor(reader Reader, handler Handler, opts ...Option) *Processor {
	p := &Processor{
		reader:  reader,
		handler: handler,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "consumer")
	return p
}

// Run starts a blocking loop that processes Kafka messages until the context is cancelled.
// Without a dead-letter sink a failed record is left uncommitted. With one, Run returns when
// the sink cannot capture a failed record so the group redelivers it.
func (p *Processor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := p.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				return err
			}
			p.logger.Warn("fetch error", "error", err)
			continue
		}

		event, decodeErr := decodeMessage(msg)
		if decodeErr != nil {
			p.dropPoison(ctx, msg, decodeErr)
			continue
		}

		if handleErr := p.handler.Handle(ctx, event); handleErr != nil {
			if errors.Is(handleErr, ErrMalformedMessage) {
				p.dropPoison(ctx, msg, handleErr)
				continue
			}
			p.logger.Error("handler error", "topic", event.Topic, "partition", event.Partition,
				"offset", event.Offset, "attempt", event.Attempt, "error", handleErr)
			recordHandlerError(event)
			if err := p.deadLetter(ctx, msg, event, handleErr); err != nil {
				return err
			}
			continue
		}

		if commitErr := p.reader.CommitMessages(ctx, msg); commitErr != nil {
			p.logger.Error("commit error", "offset", msg.Offset, "error", commitErr)
		} else {
			recordProcessed(event)
		}
	}
}

func (p *Processor) dropPoison(ctx context.Context, msg kafka.Message, cause error) {
	p.logger.Warn("decode error", "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "error", cause)
	recordDecodeError(msg.Topic)
	// Commit malformed messages to avoid poison-pill loops.
	if commitErr := p.reader.CommitMessages(ctx, msg); commitErr != nil {
		p.logger.Error("commit error after decode failure", "error", commitErr)
	}
}

func (p *Processor) deadLetter(ctx context.Context, msg kafka.Message, event Message, cause error) error {
	if p.deadLetters == nil {
		return nil
	}
	if err := p.deadLetters.Capture(ctx, msg, cause); err != nil {
		p.logger.Error("dead-letter capture failed", "offset", msg.Offset, "error", err)
		return fmt.Errorf("dead-letter offset %d: %w", msg.Offset, err)
	}
	recordDeadLettered(event)
	if commitErr := p.reader.CommitMessages(ctx, msg); commitErr != nil {
		p.logger.Error("commit error after dead-letter", "offset", msg.Offset, "error", commitErr)
	}
	return nil
}

func decodeMessage(msg kafka.Message) (Message, error) {
	if len(msg.Value) == 0 {
		return Message{}, errors.New("empty payload")
	}

	value, schemaID, err := Unframe(msg.Value)
	if err != nil {
		return Message{}, err
	}
	if !json.Valid(value) {
		return Message{}, errors.New("payload is not valid JSON")
	}

	headers := make(map[string]string, len(msg.Headers))
	for _, header := range msg.Headers {
		headers[header.Key] = string(header.Value)
	}

	return Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		Key:       string(msg.Key),
		Headers:   headers,
		SchemaID:  schemaID,
		Attempt:   attemptFromHeaders(headers),
		Payload:   json.RawMessage(append([]byte(nil), value...)),
	}, nil
}

// Unframe strips the schema-registry wire prefix (magic byte then a 4-byte schema id) when present.
// Unframed values are returned as-is with schema id zero.
func Unframe(value []byte) ([]byte, int, error) {
	if len(value) == 0 || value[0] != 0x00 {
		return value, 0, nil
	}
	if len(value) < 5 {
		return nil, 0, fmt.Errorf("invalid framed payload length: %d", len(value))
	}
	return value[5:], int(binary.BigEndian.Uint32(value[1:5])), nil
}

func attemptFromHeaders(headers map[string]string) int {
	return parseAttempt(headers[RedeliveryHeader])
}

// RedeliveryAttempt reads the replay attempt recorded on a raw record.
func RedeliveryAttempt(msg kafka.Message) int {
	for _, header := range msg.Headers {
		if header.Key == RedeliveryHeader {
			return parseAttempt(string(header.Value))
		}
	}
	return 0
}

func parseAttempt(raw string) int {
	attempt, err := strconv.Atoi(raw)
	if err != nil || attempt < 0 {
		return 0
	}
	return attempt
}
