package dto

// LocationRequest is a device position fix or a delivery confirmation point.
type LocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// LocationResponse echoes an accepted fix.
type LocationResponse struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	RecordedAt int64   `json:"recordedAt"`
}
