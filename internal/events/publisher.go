package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/DeafMist/transit-proximity/internal/models"
)

const (
	defaultBatchSize = 100
	maxAttempts      = 3
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher emits one Kafka message per resolved match, keyed by property id.
type Publisher struct {
	w         messageWriter
	log       *slog.Logger
	batchSize int
	backoff   time.Duration
}

// NewPublisher creates a Publisher writing to topic on brokers.
func NewPublisher(brokers []string, topic string, log *slog.Logger) *Publisher {
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     brokers,
		Topic:       topic,
		Balancer:    &kafka.Hash{},
		MaxAttempts: 3,
		BatchSize:   defaultBatchSize,
	})
	return newPublisher(w, log, time.Second)
}

func newPublisher(w messageWriter, log *slog.Logger, backoff time.Duration) *Publisher {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Publisher{w: w, log: log, batchSize: defaultBatchSize, backoff: backoff}
}

// PublishMatches writes docs in batches and returns how many were delivered.
// A batch is retried with exponential backoff before the call gives up.
func (p *Publisher) PublishMatches(ctx context.Context, docs []models.MatchDocument) (int, error) {
	sent := 0
	for start := 0; start < len(docs); start += p.batchSize {
		end := min(start+p.batchSize, len(docs))

		msgs := make([]kafka.Message, 0, end-start)
		for _, doc := range docs[start:end] {
			msg, err := toMessage(doc)
			if err != nil {
				return sent, err
			}
			msgs = append(msgs, msg)
		}

		if err := p.writeWithRetry(ctx, msgs); err != nil {
			return sent, err
		}
		sent += len(msgs)
	}
	return sent, nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}

func (p *Publisher) writeWithRetry(ctx context.Context, msgs []kafka.Message) error {
	var err error
	for attempt := range maxAttempts {
		if err = p.w.WriteMessages(ctx, msgs...); err == nil {
			return nil
		}

		backoff := time.Duration(1<<uint(attempt)) * p.backoff
		p.log.Warn("kafka write failed, retrying",
			slog.Any("err", err),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("write %d messages: %w", len(msgs), err)
}

func toMessage(doc models.MatchDocument) (kafka.Message, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal match %s: %w", doc.PropertyID, err)
	}
	return kafka.Message{
		Key:   []byte(doc.PropertyID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "run_id", Value: []byte(doc.RunID)},
			{Key: "resolved_at", Value: []byte(doc.ResolvedAt.UTC().Format(time.RFC3339))},
		},
		Time: doc.ResolvedAt,
	}, nil
}
