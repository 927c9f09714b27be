package service

import "math"

const EarthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometres between two WGS84 points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	φ1 := lat1 * math.Pi / 180
	φ2 := lat2 * math.Pi / 180
	dφ := (lat2 - lat1) * math.Pi / 180
	dλ := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dφ/2)*math.Sin(dφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(dλ/2)*math.Sin(dλ/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// WithinGeofence is inclusive at the radius.
func WithinGeofence(distanceKm, radiusKm float64) bool {
	return distanceKm <= radiusKm
}
