package utils

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// Coordinate represents a geographic coordinate with latitude and longitude
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geofence represents a polygonal site boundary
type Geofence struct {
	Coordinates []Coordinate `json:"coordinates"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
}

// photo geotags within this distance of the boundary still pass, to
// absorb GPS drift at the site edge
const geofenceToleranceMeters = 50.0

// ValidateGeofence validates a stored site boundary document.
func ValidateGeofence(geofenceJSON string) error {
	if geofenceJSON == "" || geofenceJSON == "{}" {
		return nil // boundary is optional
	}

	var geofence Geofence
	if err := json.Unmarshal([]byte(geofenceJSON), &geofence); err != nil {
		return fmt.Errorf("invalid geofence JSON format: %w", err)
	}

	// A valid polygon needs at least 3 points (triangle)
	if len(geofence.Coordinates) < 3 {
		return errors.New("geofence must have at least 3 coordinates to form a polygon")
	}

	for i, coord := range geofence.Coordinates {
		if err := validateCoordinate(coord); err != nil {
			return fmt.Errorf("invalid coordinate at index %d: %w", i, err)
		}
	}

	return nil
}

// validateCoordinate validates a single coordinate
func validateCoordinate(coord Coordinate) error {
	if coord.Lat < -90 || coord.Lat > 90 {
		return fmt.Errorf("latitude %.6f is out of valid range [-90, 90]", coord.Lat)
	}
	if coord.Lng < -180 || coord.Lng > 180 {
		return fmt.Errorf("longitude %.6f is out of valid range [-180, 180]", coord.Lng)
	}
	return nil
}

// ParseGeofence parses a stored site boundary document. Empty input
// yields a nil fence without error.
func ParseGeofence(geofenceJSON string) (*Geofence, error) {
	if geofenceJSON == "" || geofenceJSON == "{}" {
		return nil, nil
	}

	var geofence Geofence
	if err := json.Unmarshal([]byte(geofenceJSON), &geofence); err != nil {
		return nil, fmt.Errorf("failed to parse geofence: %w", err)
	}
	if len(geofence.Coordinates) == 0 {
		return nil, nil
	}
	return &geofence, nil
}

// Ring converts the fence to an orb ring, closing it if the input
// polygon is open.
func (g *Geofence) Ring() orb.Ring {
	ring := make(orb.Ring, 0, len(g.Coordinates)+1)
	for _, c := range g.Coordinates {
		ring = append(ring, orb.Point{c.Lng, c.Lat})
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

// Contains reports whether the point lies inside the fence polygon.
func (g *Geofence) Contains(point Coordinate) bool {
	if g == nil || len(g.Coordinates) < 3 {
		return false
	}
	return planar.RingContains(g.Ring(), orb.Point{point.Lng, point.Lat})
}

// DistanceToBoundary returns the distance in meters from the point to
// the nearest fence vertex. Used only for the drift tolerance check, so
// vertex distance is a good enough lower bound.
func (g *Geofence) DistanceToBoundary(point Coordinate) float64 {
	p := orb.Point{point.Lng, point.Lat}
	min := -1.0
	for _, c := range g.Coordinates {
		d := geo.Distance(p, orb.Point{c.Lng, c.Lat})
		if min < 0 || d < min {
			min = d
		}
	}
	return min
}

// CheckGeotag validates a photo geotag against the site boundary. A nil
// fence accepts everything; points outside the polygon still pass when
// within the drift tolerance of the boundary.
func CheckGeotag(fence *Geofence, lat, lng float64) error {
	point := Coordinate{Lat: lat, Lng: lng}
	if err := validateCoordinate(point); err != nil {
		return err
	}
	if fence == nil || len(fence.Coordinates) < 3 {
		return nil
	}
	if fence.Contains(point) {
		return nil
	}
	if fence.DistanceToBoundary(point) <= geofenceToleranceMeters {
		return nil
	}
	return errors.New("geotag falls outside the project site boundary")
}

// PolygonCenter calculates the centroid of the fence polygon.
func PolygonCenter(coordinates []Coordinate) Coordinate {
	if len(coordinates) == 0 {
		return Coordinate{}
	}

	var sumLat, sumLng float64
	for _, coord := range coordinates {
		sumLat += coord.Lat
		sumLng += coord.Lng
	}

	return Coordinate{
		Lat: sumLat / float64(len(coordinates)),
		Lng: sumLng / float64(len(coordinates)),
	}
}
