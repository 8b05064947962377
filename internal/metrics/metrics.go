package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/DeafMist/transit-proximity/internal/ingest"
)

const namespace = "transit_proximity"

// Run collects the metrics of one batch run on a private registry, written
// out for the node-exporter textfile collector when the run ends.
type Run struct {
	registry *prometheus.Registry
	started  time.Time

	LinesRead           *prometheus.CounterVec
	LinesSkipped        *prometheus.CounterVec
	DuplicatesTotal     *prometheus.CounterVec
	MatchesTotal        *prometheus.CounterVec
	DistanceEvaluations prometheus.Counter
	SinkWrites          *prometheus.CounterVec
	Duration            prometheus.Gauge
	LastSuccess         prometheus.Gauge
}

// NewRun creates the metric set for the named binary.
func NewRun(service string) *Run {
	labels := prometheus.Labels{"service": service}

	r := &Run{
		registry: prometheus.NewRegistry(),
		started:  time.Now(),
		LinesRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "lines_read_total",
			Help:        "Data lines read per input source",
			ConstLabels: labels,
		}, []string{"source"}),
		LinesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "lines_skipped_total",
			Help:        "Data lines rejected per input source and reason",
			ConstLabels: labels,
		}, []string{"source", "reason"}),
		DuplicatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "duplicate_ids_total",
			Help:        "Records replaced by a later record with the same id",
			ConstLabels: labels,
		}, []string{"source"}),
		MatchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "matches_total",
			Help:        "Resolved listings by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),
		DistanceEvaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "distance_evaluations_total",
			Help:        "Haversine distance computations performed",
			ConstLabels: labels,
		}),
		SinkWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "sink_writes_total",
			Help:        "Export sink attempts by sink and outcome",
			ConstLabels: labels,
		}, []string{"sink", "outcome"}),
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "run_duration_seconds",
			Help:        "Wall time of the last run",
			ConstLabels: labels,
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_success_timestamp_seconds",
			Help:        "Unix time the last run finished writing its artifact",
			ConstLabels: labels,
		}),
	}

	r.registry.MustRegister(
		r.LinesRead,
		r.LinesSkipped,
		r.DuplicatesTotal,
		r.MatchesTotal,
		r.DistanceEvaluations,
		r.SinkWrites,
		r.Duration,
		r.LastSuccess,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Run) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveIngest records the counters of one input pass.
func (r *Run) ObserveIngest(source string, stats ingest.Stats) {
	r.LinesRead.WithLabelValues(source).Add(float64(stats.Read))
	for reason, n := range stats.Skipped {
		r.LinesSkipped.WithLabelValues(source, reason).Add(float64(n))
	}
	r.DuplicatesTotal.WithLabelValues(source).Add(float64(stats.Duplicates))
}

// ObserveSink records one export attempt.
func (r *Run) ObserveSink(sink string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.SinkWrites.WithLabelValues(sink, outcome).Inc()
}

// MarkSuccess stamps the run duration and completion time.
func (r *Run) MarkSuccess(now time.Time) {
	r.Duration.Set(now.Sub(r.started).Seconds())
	r.LastSuccess.Set(float64(now.Unix()))
}

// WriteTextfile writes the registry in text exposition format to path. An
// empty path disables the export.
func (r *Run) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
