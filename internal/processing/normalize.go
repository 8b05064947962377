package processing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DeafMist/transit-proximity/internal/models"
)

const (
	// Separator splits a raw record into positional fields.
	Separator = ","
	// FeatureSeparator splits the feature field into tags.
	FeatureSeparator = ";"

	PropertyFields = 12
	StopFields     = 4
)

// Positions in a raw property line.
const (
	colID = iota
	colAddress
	colBedrooms
	colBathrooms
	colParking
	colLatitude
	colLongitude
	colFloorNumber
	colLandArea
	colFloorArea
	colPrice
	colFeatures
)

// ParseProperty turns one raw listing line into a Property.
func ParseProperty(line string) (models.Property, error) {
	parts := strings.Split(line, Separator)
	if len(parts) != PropertyFields {
		return models.Property{}, &FormatError{
			Field: "line",
			Value: line,
			Err:   fmt.Errorf("expected %d fields, got %d", PropertyFields, len(parts)),
		}
	}

	address := parts[colAddress]
	tokens := strings.Split(address, " ")
	if len(tokens) < 3 {
		return models.Property{}, &FormatError{
			Field: "full_address",
			Value: address,
			Err:   fmt.Errorf("expected at least 3 tokens, got %d", len(tokens)),
		}
	}

	prop := models.Property{
		ID:          parts[colID],
		Type:        PropertyType(tokens[0]),
		FullAddress: address,
		Suburb:      tokens[len(tokens)-3],
		Features:    ParseFeatures(parts[colFeatures]),
	}

	var err error
	if prop.Latitude, err = optionalCoordinate("latitude", parts[colLatitude], 90); err != nil {
		return models.Property{}, err
	}
	if prop.Longitude, err = optionalCoordinate("longitude", parts[colLongitude], 180); err != nil {
		return models.Property{}, err
	}

	ints := []struct {
		field string
		col   int
		dst   **int
	}{
		{"bedrooms", colBedrooms, &prop.Bedrooms},
		{"bathrooms", colBathrooms, &prop.Bathrooms},
		{"parking_spaces", colParking, &prop.ParkingSpaces},
		{"floor_number", colFloorNumber, &prop.FloorNumber},
		{"land_area", colLandArea, &prop.LandArea},
		{"floor_area", colFloorArea, &prop.FloorArea},
		{"price", colPrice, &prop.Price},
	}
	for _, f := range ints {
		if *f.dst, err = optionalInt(f.field, parts[f.col]); err != nil {
			return models.Property{}, err
		}
	}

	return prop, nil
}

// ParseStop turns one raw station line into a TransitStop. Coordinates are
// not range checked.
func ParseStop(line string) (models.TransitStop, error) {
	parts := strings.Split(line, Separator)
	if len(parts) != StopFields {
		return models.TransitStop{}, &FormatError{
			Field: "line",
			Value: line,
			Err:   fmt.Errorf("expected %d fields, got %d", StopFields, len(parts)),
		}
	}

	lat, err := parseFloat("stop_lat", parts[2])
	if err != nil {
		return models.TransitStop{}, err
	}
	lon, err := parseFloat("stop_lon", parts[3])
	if err != nil {
		return models.TransitStop{}, err
	}

	return models.TransitStop{
		ID:        parts[0],
		Name:      parts[1],
		Latitude:  lat,
		Longitude: lon,
	}, nil
}

// PropertyType classifies a listing from the first token of its address:
// a unit separator ("4/10 High St") marks an apartment.
func PropertyType(firstToken string) string {
	if strings.Contains(firstToken, "/") {
		return models.TypeApartment
	}
	return models.TypeHouse
}

// ParseFeatures splits the raw feature field into trimmed tags, keeping order.
func ParseFeatures(raw string) []string {
	if raw == "" {
		return []string{}
	}
	tags := strings.Split(raw, FeatureSeparator)
	for i, tag := range tags {
		tags[i] = strings.TrimSpace(tag)
	}
	return tags
}

func optionalInt(field, raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, &FormatError{Field: field, Value: raw, Err: err}
	}
	return &v, nil
}

func optionalCoordinate(field, raw string, limit float64) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := parseFloat(field, raw)
	if err != nil {
		return nil, err
	}
	// NaN fails both comparisons.
	if !(v >= -limit && v <= limit) {
		return nil, &ValidationError{Field: field, Value: v, Min: -limit, Max: limit}
	}
	return &v, nil
}

func parseFloat(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &FormatError{Field: field, Value: raw, Err: err}
	}
	return v, nil
}
