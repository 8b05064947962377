package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/DeafMist/transit-proximity/internal/config"
	"github.com/DeafMist/transit-proximity/internal/dataset"
	"github.com/DeafMist/transit-proximity/internal/ingest"
	"github.com/DeafMist/transit-proximity/internal/logger"
	"github.com/DeafMist/transit-proximity/internal/metrics"
)

func main() {
	log := logger.New("normalizer")
	cfg, err := config.LoadNormalizer()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	run := metrics.NewRun("normalizer")

	if err := normalize(log, cfg, run); err != nil {
		var missing *dataset.MissingInputError
		if errors.As(err, &missing) {
			log.Error("input file missing", slog.String("path", missing.Path), slog.Any("err", missing.Err))
		} else {
			log.Error("normalize listings", slog.Any("err", err))
		}
		os.Exit(1)
	}

	if err := run.WriteTextfile(cfg.MetricsTextfile); err != nil {
		log.Warn("metrics export failed", slog.Any("err", err))
	}
}

// normalize reads every raw listing, keeps the ones that parse and writes them
// in input order to the configured output.
func normalize(log *slog.Logger, cfg *config.Normalizer, run *metrics.Run) error {
	f, err := dataset.Open(cfg.RawPropertiesFile)
	if err != nil {
		return err
	}
	props, stats, err := ingest.Properties(f, log, ingest.Options{KeepAll: true})
	f.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", cfg.RawPropertiesFile, err)
	}
	run.ObserveIngest("raw_properties", stats)

	if err := dataset.WriteJSON(cfg.OutputFile, props); err != nil {
		return fmt.Errorf("save %s: %w", cfg.OutputFile, err)
	}
	run.MarkSuccess(time.Now())

	log.Info("processed data saved",
		slog.String("path", cfg.OutputFile),
		slog.Int("records", len(props)),
		slog.Int("skipped", stats.SkippedTotal()),
	)
	return nil
}
