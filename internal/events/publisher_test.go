package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/DeafMist/transit-proximity/internal/models"
)

type stubWriter struct {
	batches  [][]kafka.Message
	failures int
	closed   bool
}

func (s *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("broker unavailable")
	}
	s.batches = append(s.batches, msgs)
	return nil
}

func (s *stubWriter) Close() error {
	s.closed = true
	return nil
}

func docs(n int) []models.MatchDocument {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	out := make([]models.MatchDocument, 0, n)
	for i := range n {
		out = append(out, models.MatchDocument{PropertyID: fmt.Sprintf("P%d", i), RunID: "run-7", ResolvedAt: at})
	}
	return out
}

func TestPublishMatchesBatches(t *testing.T) {
	w := &stubWriter{}
	p := newPublisher(w, nil, time.Millisecond)
	p.batchSize = 2

	sent, err := p.PublishMatches(context.Background(), docs(5))
	require.NoError(t, err)
	require.Equal(t, 5, sent)
	require.Len(t, w.batches, 3)
	require.Len(t, w.batches[2], 1)

	msg := w.batches[0][1]
	require.Equal(t, "P1", string(msg.Key))
	require.Equal(t, "run_id", msg.Headers[0].Key)
	require.Equal(t, "run-7", string(msg.Headers[0].Value))

	var doc models.MatchDocument
	require.NoError(t, json.Unmarshal(msg.Value, &doc))
	require.Equal(t, "P1", doc.PropertyID)

	require.NoError(t, p.Close())
	require.True(t, w.closed)
}

func TestPublishMatchesRetries(t *testing.T) {
	w := &stubWriter{failures: 2}
	p := newPublisher(w, nil, time.Millisecond)

	sent, err := p.PublishMatches(context.Background(), docs(3))
	require.NoError(t, err)
	require.Equal(t, 3, sent)
	require.Len(t, w.batches, 1)
}

func TestPublishMatchesGivesUp(t *testing.T) {
	w := &stubWriter{failures: maxAttempts}
	p := newPublisher(w, nil, time.Millisecond)

	sent, err := p.PublishMatches(context.Background(), docs(1))
	require.Error(t, err)
	require.Zero(t, sent)
}

func TestPublishMatchesStopsOnCancel(t *testing.T) {
	w := &stubWriter{failures: 10}
	p := newPublisher(w, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.PublishMatches(ctx, docs(1))
	require.ErrorIs(t, err, context.Canceled)
}
