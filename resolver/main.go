package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/DeafMist/transit-proximity/internal/config"
	"github.com/DeafMist/transit-proximity/internal/dataset"
	"github.com/DeafMist/transit-proximity/internal/elasticsearch"
	"github.com/DeafMist/transit-proximity/internal/events"
	"github.com/DeafMist/transit-proximity/internal/geo"
	"github.com/DeafMist/transit-proximity/internal/ingest"
	"github.com/DeafMist/transit-proximity/internal/logger"
	"github.com/DeafMist/transit-proximity/internal/metrics"
	"github.com/DeafMist/transit-proximity/internal/models"
	"github.com/DeafMist/transit-proximity/internal/report"
)

const sinkTimeout = 30 * time.Second

type matchIndexer interface {
	IndexMatches(ctx context.Context, docs []models.MatchDocument) (int, error)
}

type matchPublisher interface {
	PublishMatches(ctx context.Context, docs []models.MatchDocument) (int, error)
}

// sinks are the optional exports fed after the JSON artifact is written.
type sinks struct {
	indexer   matchIndexer
	publisher matchPublisher
	workbook  string
}

func main() {
	runID := uuid.NewString()
	log := logger.New("resolver").With(slog.String("run_id", runID))

	cfg, err := config.LoadResolver()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	run := metrics.NewRun("resolver")

	matches, err := resolve(log, cfg, run)
	if err != nil {
		var missing *dataset.MissingInputError
		if errors.As(err, &missing) {
			log.Error("input file missing", slog.String("path", missing.Path), slog.Any("err", missing.Err))
		} else {
			log.Error("resolve nearest stations", slog.Any("err", err))
		}
		os.Exit(1)
	}

	out, closeSinks := openSinks(ctx, log, cfg)
	export(ctx, log, run, out, matches, runID, time.Now())
	closeSinks()

	if err := run.WriteTextfile(cfg.MetricsTextfile); err != nil {
		log.Warn("metrics export failed", slog.Any("err", err))
	}
}

// resolve loads both inputs, pairs every geolocated listing with its nearest
// stop and writes the JSON artifact.
func resolve(log *slog.Logger, cfg *config.Resolver, run *metrics.Run) ([]models.NearestMatch, error) {
	pf, err := dataset.Open(cfg.PropertiesFile)
	if err != nil {
		return nil, err
	}
	props, propStats, err := ingest.Properties(pf, log, ingest.Options{})
	pf.Close()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", cfg.PropertiesFile, err)
	}
	run.ObserveIngest("properties", propStats)

	sf, err := dataset.Open(cfg.StationsFile)
	if err != nil {
		return nil, err
	}
	stops, stopStats, err := ingest.Stops(sf, log)
	sf.Close()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", cfg.StationsFile, err)
	}
	run.ObserveIngest("stations", stopStats)

	if len(stops) == 0 {
		log.Warn("no stations loaded, every listing resolves to null", slog.String("path", cfg.StationsFile))
	}

	matches, evaluations := geo.Resolve(props, stops)
	run.DistanceEvaluations.Add(float64(evaluations))
	for _, m := range matches {
		if m.NearestStation == nil {
			run.MatchesTotal.WithLabelValues("no_station").Inc()
		} else {
			run.MatchesTotal.WithLabelValues("matched").Inc()
		}
	}

	if err := dataset.WriteJSON(cfg.OutputFile, matches); err != nil {
		return nil, fmt.Errorf("save %s: %w", cfg.OutputFile, err)
	}
	run.MarkSuccess(time.Now())

	log.Info("processed data saved",
		slog.String("path", cfg.OutputFile),
		slog.Int("properties", len(props)),
		slog.Int("stations", len(stops)),
		slog.Int("matches", len(matches)),
		slog.Int("skipped", propStats.SkippedTotal()+stopStats.SkippedTotal()),
	)
	return matches, nil
}

// openSinks builds the exports enabled in cfg. A sink that cannot be reached
// is logged and left out.
func openSinks(ctx context.Context, log *slog.Logger, cfg *config.Resolver) (sinks, func()) {
	out := sinks{workbook: cfg.WorkbookFile}
	closers := []func(){}

	if cfg.ElasticsearchAddr != "" {
		esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
		if err != nil {
			log.Warn("init elasticsearch, skipping export", slog.Any("err", err))
		} else {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := esClient.Ping(pingCtx); err != nil {
				log.Warn("elasticsearch unreachable, skipping export", slog.Any("err", err))
			} else {
				out.indexer = esClient
			}
			cancel()
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		pub := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		out.publisher = pub
		closers = append(closers, func() {
			if err := pub.Close(); err != nil {
				log.Warn("close kafka writer", slog.Any("err", err))
			}
		})
	}

	return out, func() {
		for _, c := range closers {
			c()
		}
	}
}

// export feeds matches to every configured sink. Failures are logged and
// counted; the JSON artifact already written stays authoritative.
func export(ctx context.Context, log *slog.Logger, run *metrics.Run, out sinks, matches []models.NearestMatch, runID string, now time.Time) {
	docs := make([]models.MatchDocument, 0, len(matches))
	for _, m := range matches {
		docs = append(docs, m.Document(runID, now))
	}

	if out.workbook != "" {
		err := report.WriteWorkbook(out.workbook, matches)
		run.ObserveSink("xlsx", err)
		if err != nil {
			log.Warn("workbook export failed", slog.String("path", out.workbook), slog.Any("err", err))
		} else {
			log.Info("workbook saved", slog.String("path", out.workbook))
		}
	}

	if out.indexer != nil {
		subCtx, cancel := context.WithTimeout(ctx, sinkTimeout)
		n, err := out.indexer.IndexMatches(subCtx, docs)
		cancel()
		run.ObserveSink("elasticsearch", err)
		if err != nil {
			log.Warn("elasticsearch export failed", slog.Int("indexed", n), slog.Any("err", err))
		} else {
			log.Info("matches indexed", slog.Int("indexed", n))
		}
	}

	if out.publisher != nil {
		subCtx, cancel := context.WithTimeout(ctx, sinkTimeout)
		n, err := out.publisher.PublishMatches(subCtx, docs)
		cancel()
		run.ObserveSink("kafka", err)
		if err != nil {
			log.Warn("kafka export failed", slog.Int("published", n), slog.Any("err", err))
		} else {
			log.Info("matches published", slog.Int("published", n))
		}
	}
}
