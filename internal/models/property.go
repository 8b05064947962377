package models

import "slices"

const (
	TypeApartment = "apartment"
	TypeHouse     = "house"
)

// Property is one normalized real-estate listing.
type Property struct {
	ID            string   `json:"prop_id"`
	Type          string   `json:"prop_type"`
	FullAddress   string   `json:"full_address"`
	Suburb        string   `json:"suburb"`
	Bedrooms      *int     `json:"bedrooms"`
	Bathrooms     *int     `json:"bathrooms"`
	ParkingSpaces *int     `json:"parking_spaces"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	FloorNumber   *int     `json:"floor_number"`
	LandArea      *int     `json:"land_area"`
	FloorArea     *int     `json:"floor_area"`
	Price         *int     `json:"price"`
	Features      []string `json:"property_features"`
}

// Geolocated reports whether the listing can take part in nearest-stop resolution.
func (p *Property) Geolocated() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// AddFeature appends tag unless it is already listed.
func (p *Property) AddFeature(tag string) {
	if slices.Contains(p.Features, tag) {
		return
	}
	p.Features = append(p.Features, tag)
}

// RemoveFeature drops the first occurrence of tag, if any.
func (p *Property) RemoveFeature(tag string) {
	if i := slices.Index(p.Features, tag); i >= 0 {
		p.Features = slices.Delete(p.Features, i, i+1)
	}
}
