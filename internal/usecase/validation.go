package usecase

import "math"

// ValidateCoordinates checks that a device fix is a finite point on the globe.
// The null island (0, 0) is rejected as it is what unset fixes decode to.
func ValidateCoordinates(latitude, longitude float64) bool {
	if math.IsNaN(latitude) || math.IsNaN(longitude) || math.IsInf(latitude, 0) || math.IsInf(longitude, 0) {
		return false
	}
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return false
	}
	return latitude != 0 || longitude != 0
}
