package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type coord struct{ lat, lon float64 }

var haversinePoints = []coord{
	{37.7749, -122.4194},
	{34.0522, -118.2437},
	{0, 0},
	{0, 90},
	{0, 179.9},
	{0, -179.9},
	{0, 180},
	{0, -180},
	{90, 0},
	{90, 135},
	{-90, 0},
	{-33.8688, 151.2093},
	{64.1466, -21.9426},
}

func TestHaversineIdentity(t *testing.T) {
	for _, p := range haversinePoints {
		assert.Equal(t, 0.0, Haversine(p.lat, p.lon, p.lat, p.lon), "%v", p)
	}
}

func TestHaversineSymmetric(t *testing.T) {
	for _, a := range haversinePoints {
		for _, b := range haversinePoints {
			assert.InDelta(t, Haversine(a.lat, a.lon, b.lat, b.lon), Haversine(b.lat, b.lon, a.lat, a.lon), 1e-9, "%v %v", a, b)
		}
	}
}

func TestHaversineKnownDistances(t *testing.T) {
	tests := []struct {
		name string
		a, b coord
		want float64
		tol  float64
	}{
		{"san francisco to los angeles", coord{37.7749, -122.4194}, coord{34.0522, -118.2437}, 559, 2},
		{"quarter of the equator", coord{0, 0}, coord{0, 90}, math.Pi / 2 * EarthRadiusKm, 1e-6},
		{"across the antimeridian", coord{0, 179.9}, coord{0, -179.9}, 0.2 * math.Pi / 180 * EarthRadiusKm, 1e-6},
		{"antimeridian is one meridian", coord{0, 180}, coord{0, -180}, 0, 1e-6},
		{"north pole ignores longitude", coord{90, 0}, coord{90, 135}, 0, 1e-6},
		{"pole to pole", coord{90, 0}, coord{-90, 0}, math.Pi * EarthRadiusKm, 1e-6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Haversine(tt.a.lat, tt.a.lon, tt.b.lat, tt.b.lon), tt.tol)
		})
	}
}

func TestHaversineTwoKilometresNorth(t *testing.T) {
	dLat := 2.0 / EarthRadiusKm * 180 / math.Pi
	d := Haversine(37.7749, -122.4194, 37.7749+dLat, -122.4194)
	assert.InDelta(t, 2.0, d, 1e-6)
}

func TestWithinGeofenceInclusive(t *testing.T) {
	assert.True(t, WithinGeofence(0, 2))
	assert.True(t, WithinGeofence(2.0, 2))
	assert.False(t, WithinGeofence(2.01, 2))
}
