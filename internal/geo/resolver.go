package geo

import (
	"math"

	"github.com/DeafMist/transit-proximity/internal/models"
)

// Nearest scans stops in order and returns the closest one to (lat, lon) with
// its distance in kilometres. The first stop wins ties. ok is false when no
// stop yields a finite distance.
func Nearest(lat, lon float64, stops []models.TransitStop) (stop models.TransitStop, distanceKm float64, ok bool) {
	best := math.Inf(1)
	for _, s := range stops {
		d := Haversine(lat, lon, s.Latitude, s.Longitude)
		if d < best {
			best = d
			stop = s
			ok = true
		}
	}
	if !ok {
		return models.TransitStop{}, 0, false
	}
	return stop, best, true
}

// Resolve pairs every geolocated property with its nearest stop, keeping input
// order. Properties missing either coordinate are skipped. It also returns the
// number of distance evaluations performed.
func Resolve(props []models.Property, stops []models.TransitStop) ([]models.NearestMatch, int) {
	matches := make([]models.NearestMatch, 0, len(props))
	evaluations := 0

	for _, p := range props {
		if !p.Geolocated() {
			continue
		}

		match := models.NearestMatch{PropertyID: p.ID}
		if stop, d, ok := Nearest(*p.Latitude, *p.Longitude, stops); ok {
			name := stop.Name
			dist := d
			match.NearestStation = &name
			match.StopID = stop.ID
			match.DistanceKm = &dist
		}
		evaluations += len(stops)
		matches = append(matches, match)
	}

	return matches, evaluations
}
