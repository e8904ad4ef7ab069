package model

import "time"

// TrackingLocation is the driver position attached to a tracking node.
type TrackingLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	UpdatedAt int64   `json:"updatedAt"`
}

// TrackingSnapshot is the live state of one order in the realtime store.
// Absent fields stay at their zero value.
type TrackingSnapshot struct {
	OrderID           int64             `json:"orderId"`
	DriverID          string            `json:"driverId,omitempty"`
	CustomerID        string            `json:"customerId,omitempty"`
	Status            string            `json:"status,omitempty"`
	ShippingAddressID int64             `json:"shippingAddressId,omitempty"`
	ShippingAddress   string            `json:"shippingAddress,omitempty"`
	StoreAddress      string            `json:"storeAddress,omitempty"`
	CustomerName      string            `json:"customerName,omitempty"`
	CustomerPhone     string            `json:"customerPhone,omitempty"`
	AssignedAt        string            `json:"assignedAt,omitempty"`
	CreatedAt         string            `json:"createdAt,omitempty"`
	UpdatedAt         string            `json:"updatedAt,omitempty"`
	DriverLocation    *TrackingLocation `json:"driverLocation,omitempty"`
}

// DriverLocation is the per-driver presence node.
type DriverLocation struct {
	DriverID  string  `json:"driverId"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
	IsOnline  bool    `json:"isOnline"`
}

// GeoPoint is a device position fix.
type GeoPoint struct {
	Latitude   float64
	Longitude  float64
	RecordedAt time.Time
}
