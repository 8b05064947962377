package models

import "time"

// TransitStop is a public-transport stop as listed in the station source.
type TransitStop struct {
	ID        string  `json:"stop_id"`
	Name      string  `json:"stop_name"`
	Latitude  float64 `json:"stop_lat"`
	Longitude float64 `json:"stop_lon"`
}

// NearestMatch associates a listing with its closest stop. NearestStation is nil
// when no stop qualified. StopID and DistanceKm only feed the export sinks.
type NearestMatch struct {
	PropertyID     string   `json:"property_id"`
	NearestStation *string  `json:"nearest_station"`
	StopID         string   `json:"-"`
	DistanceKm     *float64 `json:"-"`
}

// MatchDocument is the exported form of a NearestMatch.
type MatchDocument struct {
	PropertyID     string    `json:"property_id"`
	NearestStation *string   `json:"nearest_station"`
	StopID         string    `json:"stop_id,omitempty"`
	DistanceKm     *float64  `json:"distance_km"`
	RunID          string    `json:"run_id"`
	ResolvedAt     time.Time `json:"resolved_at"`
}

// Document converts m for export under the given run.
func (m NearestMatch) Document(runID string, resolvedAt time.Time) MatchDocument {
	return MatchDocument{
		PropertyID:     m.PropertyID,
		NearestStation: m.NearestStation,
		StopID:         m.StopID,
		DistanceKm:     m.DistanceKm,
		RunID:          runID,
		ResolvedAt:     resolvedAt.UTC(),
	}
}
