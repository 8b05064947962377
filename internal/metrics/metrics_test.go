package metrics_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/DeafMist/transit-proximity/internal/ingest"
	"github.com/DeafMist/transit-proximity/internal/metrics"
	"github.com/stretchr/testify/require"
)

func TestObserveIngest(t *testing.T) {
	run := metrics.NewRun("resolver")
	run.ObserveIngest("properties", ingest.Stats{
		Read:       10,
		Accepted:   6,
		Skipped:    map[string]int{ingest.ReasonFormat: 3, ingest.ReasonValidation: 1},
		Duplicates: 2,
	})

	require.Equal(t, 10.0, testutil.ToFloat64(run.LinesRead.WithLabelValues("properties")))
	require.Equal(t, 3.0, testutil.ToFloat64(run.LinesSkipped.WithLabelValues("properties", ingest.ReasonFormat)))
	require.Equal(t, 1.0, testutil.ToFloat64(run.LinesSkipped.WithLabelValues("properties", ingest.ReasonValidation)))
	require.Equal(t, 2.0, testutil.ToFloat64(run.DuplicatesTotal.WithLabelValues("properties")))
}

func TestObserveSink(t *testing.T) {
	run := metrics.NewRun("resolver")
	run.ObserveSink("kafka", nil)
	run.ObserveSink("kafka", errors.New("down"))
	run.ObserveSink("kafka", errors.New("down"))

	require.Equal(t, 1.0, testutil.ToFloat64(run.SinkWrites.WithLabelValues("kafka", "ok")))
	require.Equal(t, 2.0, testutil.ToFloat64(run.SinkWrites.WithLabelValues("kafka", "error")))
}

func TestWriteTextfile(t *testing.T) {
	run := metrics.NewRun("normalizer")
	run.DistanceEvaluations.Add(42)
	run.MarkSuccess(time.Now())

	path := filepath.Join(t.TempDir(), "textfile", "normalizer.prom")
	require.NoError(t, run.WriteTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), `transit_proximity_distance_evaluations_total{service="normalizer"} 42`)
	require.Contains(t, string(raw), "transit_proximity_last_success_timestamp_seconds")
}

func TestWriteTextfileDisabled(t *testing.T) {
	require.NoError(t, metrics.NewRun("resolver").WriteTextfile(""))
}
