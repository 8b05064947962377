package ingest

import (
	"errors"
	"io"
	"log/slog"

	"github.com/DeafMist/transit-proximity/internal/dataset"
	"github.com/DeafMist/transit-proximity/internal/dedupe"
	"github.com/DeafMist/transit-proximity/internal/models"
	"github.com/DeafMist/transit-proximity/internal/processing"
)

// Skip reasons recorded in Stats.Skipped.
const (
	ReasonFormat     = "format"
	ReasonValidation = "validation"
)

// Stats summarises one pass over an input source.
type Stats struct {
	Read         int
	Accepted     int
	Skipped      map[string]int
	Duplicates   int
	Ungeolocated int
}

// SkippedTotal returns the number of lines rejected for any reason.
func (s Stats) SkippedTotal() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

// Options control how property lines are collected.
type Options struct {
	// KeepAll returns every parsed listing in input order, duplicates and
	// listings without coordinates included.
	KeepAll bool
}

// Properties parses every listing line in r. Lines that fail to parse are
// logged and skipped. Unless opts.KeepAll is set, listings are keyed by id
// (a later duplicate replaces the earlier one in its original position) and
// only geolocated listings are returned.
func Properties(r io.Reader, log *slog.Logger, opts Options) ([]models.Property, Stats, error) {
	stats := Stats{Skipped: map[string]int{}}

	var (
		all   []models.Property
		index = dedupe.NewIndex[models.Property](0)
	)

	err := dataset.ScanRecords(r, func(lineNo int, line string) {
		stats.Read++

		prop, err := processing.ParseProperty(line)
		if err != nil {
			skip(log, &stats, lineNo, line, err)
			return
		}

		if opts.KeepAll {
			all = append(all, prop)
			stats.Accepted++
			return
		}

		if !prop.Geolocated() {
			stats.Ungeolocated++
			log.Debug("listing without coordinates", slog.Int("line_no", lineNo), slog.String("prop_id", prop.ID))
			return
		}
		if index.Put(prop.ID, prop) {
			stats.Duplicates++
			log.Warn("duplicate listing id, keeping last", slog.Int("line_no", lineNo), slog.String("prop_id", prop.ID))
			return
		}
		stats.Accepted++
	})
	if err != nil {
		return nil, stats, err
	}

	if opts.KeepAll {
		if all == nil {
			all = []models.Property{}
		}
		return all, stats, nil
	}
	return index.Values(), stats, nil
}

// Stops parses every station line in r, keyed by stop id with the same
// replacement rule as Properties. Coordinates outside the valid range are
// kept but logged.
func Stops(r io.Reader, log *slog.Logger) ([]models.TransitStop, Stats, error) {
	stats := Stats{Skipped: map[string]int{}}
	index := dedupe.NewIndex[models.TransitStop](0)

	err := dataset.ScanRecords(r, func(lineNo int, line string) {
		stats.Read++

		stop, err := processing.ParseStop(line)
		if err != nil {
			skip(log, &stats, lineNo, line, err)
			return
		}

		if stop.Latitude < -90 || stop.Latitude > 90 || stop.Longitude < -180 || stop.Longitude > 180 {
			log.Warn("stop coordinates out of range",
				slog.Int("line_no", lineNo),
				slog.String("stop_id", stop.ID),
				slog.Float64("stop_lat", stop.Latitude),
				slog.Float64("stop_lon", stop.Longitude),
			)
		}
		if index.Put(stop.ID, stop) {
			stats.Duplicates++
			log.Warn("duplicate stop id, keeping last", slog.Int("line_no", lineNo), slog.String("stop_id", stop.ID))
			return
		}
		stats.Accepted++
	})
	if err != nil {
		return nil, stats, err
	}
	return index.Values(), stats, nil
}

func skip(log *slog.Logger, stats *Stats, lineNo int, line string, err error) {
	reason := ReasonFormat
	var verr *processing.ValidationError
	if errors.As(err, &verr) {
		reason = ReasonValidation
	}
	stats.Skipped[reason]++
	log.Warn("skipping line",
		slog.Int("line_no", lineNo),
		slog.String("line", line),
		slog.String("reason", reason),
		slog.Any("err", err),
	)
}
