package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DeafMist/transit-proximity/internal/config"
	"github.com/DeafMist/transit-proximity/internal/elasticsearch"
	"github.com/DeafMist/transit-proximity/internal/logger"
	"github.com/DeafMist/transit-proximity/internal/metrics"
)

const (
	maxConnectAttempts = 10
	maxRetryDelay      = 30 * time.Second
	runTimeout         = 2 * time.Minute
)

type matchPruner interface {
	Ping(ctx context.Context) error
	DeleteOlderThan(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error)
}

func main() {
	log := logger.New("retention")
	cfg, err := config.LoadRetention()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	if err := waitReady(ctx, log, esClient, 2*time.Second); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("shutdown signal received during startup")
			return
		}
		log.Error("failed to connect to elasticsearch after retries", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("connected to elasticsearch")

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info("retention job running",
		slog.Duration("interval", cfg.Interval),
		slog.Duration("max_age", cfg.MaxAge),
		slog.String("index", cfg.ElasticsearchIndex),
	)

	runOnce(ctx, log, esClient, cfg)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			runOnce(ctx, log, esClient, cfg)
		}
	}
}

// waitReady pings es with exponential backoff until it answers or the
// attempts run out.
func waitReady(ctx context.Context, log *slog.Logger, es matchPruner, delay time.Duration) error {
	var err error
	for attempt := range maxConnectAttempts {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = es.Ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}

		log.Warn("elasticsearch ping failed, retrying",
			slog.Any("err", err),
			slog.Int("attempt", attempt+1),
			slog.Int("max_retries", maxConnectAttempts),
			slog.Duration("retry_in", delay),
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay = min(delay*2, maxRetryDelay)
	}
	return err
}

// runOnce prunes stale matches and refreshes the retention metrics. A failed
// run is retried on the next tick.
func runOnce(ctx context.Context, log *slog.Logger, es matchPruner, cfg *config.Retention) int64 {
	subCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	run := metrics.NewRun("retention")
	defer func() {
		if err := run.WriteTextfile(cfg.MetricsTextfile); err != nil {
			log.Warn("metrics export failed", slog.Any("err", err))
		}
	}()

	deleted, err := es.DeleteOlderThan(subCtx, cfg.MaxAge, cfg.BatchSize)
	run.ObserveSink("elasticsearch", err)
	if err != nil {
		log.Warn("retention run failed (will retry on next interval)", slog.Any("err", err))
		return 0
	}
	run.MatchesTotal.WithLabelValues("pruned").Add(float64(deleted))
	run.MarkSuccess(time.Now())

	if deleted > 0 {
		log.Info("retention run completed", slog.Int64("deleted", deleted))
	} else {
		log.Debug("retention run completed, no stale matches found")
	}
	return deleted
}
