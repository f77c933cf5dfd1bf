package utils

import (
	"strings"
	"testing"
)

const squareFence = `{
	"coordinates": [
		{"lat": 0.0, "lng": 0.0},
		{"lat": 0.0, "lng": 0.01},
		{"lat": 0.01, "lng": 0.01},
		{"lat": 0.01, "lng": 0.0}
	],
	"name": "test site"
}`

func TestValidateGeofence(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty is optional", "", false},
		{"empty object is optional", "{}", false},
		{"valid square", squareFence, false},
		{"malformed json", `{"coordinates": [`, true},
		{"too few points", `{"coordinates": [{"lat":0,"lng":0},{"lat":1,"lng":1}]}`, true},
		{"latitude out of range", `{"coordinates": [{"lat":91,"lng":0},{"lat":0,"lng":1},{"lat":1,"lng":1}]}`, true},
		{"longitude out of range", `{"coordinates": [{"lat":0,"lng":181},{"lat":0,"lng":1},{"lat":1,"lng":1}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGeofence(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGeofence() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseGeofence(t *testing.T) {
	fence, err := ParseGeofence(squareFence)
	if err != nil {
		t.Fatalf("ParseGeofence() error = %v", err)
	}
	if fence == nil {
		t.Fatal("ParseGeofence() returned nil fence for valid input")
	}
	if len(fence.Coordinates) != 4 {
		t.Errorf("got %d coordinates, want 4", len(fence.Coordinates))
	}
	if fence.Name != "test site" {
		t.Errorf("got name %q, want %q", fence.Name, "test site")
	}

	empty, err := ParseGeofence("{}")
	if err != nil {
		t.Fatalf("ParseGeofence(empty) error = %v", err)
	}
	if empty != nil {
		t.Error("ParseGeofence(empty) should return nil fence")
	}
}

func TestGeofenceContains(t *testing.T) {
	fence, err := ParseGeofence(squareFence)
	if err != nil {
		t.Fatalf("ParseGeofence() error = %v", err)
	}

	tests := []struct {
		name  string
		point Coordinate
		want  bool
	}{
		{"center is inside", Coordinate{Lat: 0.005, Lng: 0.005}, true},
		{"far point is outside", Coordinate{Lat: 5.0, Lng: 5.0}, false},
		{"just outside edge", Coordinate{Lat: 0.005, Lng: 0.02}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fence.Contains(tt.point); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestCheckGeotag(t *testing.T) {
	fence, err := ParseGeofence(squareFence)
	if err != nil {
		t.Fatalf("ParseGeofence() error = %v", err)
	}

	// Inside the fence.
	if err := CheckGeotag(fence, 0.005, 0.005); err != nil {
		t.Errorf("CheckGeotag(inside) = %v, want nil", err)
	}

	// Nil fence accepts everything.
	if err := CheckGeotag(nil, 45.0, 90.0); err != nil {
		t.Errorf("CheckGeotag(nil fence) = %v, want nil", err)
	}

	// Just past the corner but within GPS drift tolerance. 0.0001 deg
	// of latitude is roughly 11 meters.
	if err := CheckGeotag(fence, -0.0001, 0.0); err != nil {
		t.Errorf("CheckGeotag(within tolerance) = %v, want nil", err)
	}

	// Kilometers away.
	err = CheckGeotag(fence, 1.0, 1.0)
	if err == nil {
		t.Fatal("CheckGeotag(far outside) = nil, want error")
	}
	if !strings.Contains(err.Error(), "outside") {
		t.Errorf("unexpected error message: %v", err)
	}

	// Invalid coordinates are rejected before any polygon math.
	if err := CheckGeotag(fence, 95.0, 0.0); err == nil {
		t.Error("CheckGeotag(lat 95) = nil, want error")
	}
}

func TestPolygonCenter(t *testing.T) {
	center := PolygonCenter([]Coordinate{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 2},
		{Lat: 2, Lng: 2},
		{Lat: 2, Lng: 0},
	})
	if center.Lat != 1.0 || center.Lng != 1.0 {
		t.Errorf("PolygonCenter() = %v, want {1 1}", center)
	}

	if got := PolygonCenter(nil); got != (Coordinate{}) {
		t.Errorf("PolygonCenter(nil) = %v, want zero value", got)
	}
}
