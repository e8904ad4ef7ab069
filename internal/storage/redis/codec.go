package redis

import (
	"strconv"

	"github.com/polkiloo/courieragent/internal/domain/model"
)

// Hash field names of a tracking node. Nested driverLocation fields are
// flattened with a dot so status and location writes touch disjoint fields.
const (
	fieldOrderID           = "orderId"
	fieldDriverID          = "driverId"
	fieldCustomerID        = "customerId"
	fieldStatus            = "status"
	fieldShippingAddressID = "shippingAddressId"
	fieldShippingAddress   = "shippingAddress"
	fieldStoreAddress      = "storeAddress"
	fieldCustomerName      = "customerName"
	fieldCustomerPhone     = "customerPhone"
	fieldAssignedAt        = "assignedAt"
	fieldCreatedAt         = "createdAt"
	fieldUpdatedAt         = "updatedAt"
	fieldLocationLatitude  = "driverLocation.latitude"
	fieldLocationLongitude = "driverLocation.longitude"
	fieldLocationUpdatedAt = "driverLocation.updatedAt"

	fieldDriverLatitude  = "latitude"
	fieldDriverLongitude = "longitude"
	fieldDriverTimestamp = "timestamp"
	fieldDriverIsOnline  = "isOnline"
)

func encodeSnapshot(s model.TrackingSnapshot) map[string]interface{} {
	fields := map[string]interface{}{
		fieldOrderID: strconv.FormatInt(s.OrderID, 10),
	}
	putString := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	putString(fieldDriverID, s.DriverID)
	putString(fieldCustomerID, s.CustomerID)
	putString(fieldStatus, s.Status)
	putString(fieldShippingAddress, s.ShippingAddress)
	putString(fieldStoreAddress, s.StoreAddress)
	putString(fieldCustomerName, s.CustomerName)
	putString(fieldCustomerPhone, s.CustomerPhone)
	putString(fieldAssignedAt, s.AssignedAt)
	putString(fieldCreatedAt, s.CreatedAt)
	putString(fieldUpdatedAt, s.UpdatedAt)
	if s.ShippingAddressID != 0 {
		fields[fieldShippingAddressID] = strconv.FormatInt(s.ShippingAddressID, 10)
	}
	if loc := s.DriverLocation; loc != nil {
		fields[fieldLocationLatitude] = formatFloat(loc.Latitude)
		fields[fieldLocationLongitude] = formatFloat(loc.Longitude)
		fields[fieldLocationUpdatedAt] = strconv.FormatInt(loc.UpdatedAt, 10)
	}
	return fields
}

// decodeSnapshot is total: malformed numbers decode as zero and a missing
// orderId falls back to the node key.
func decodeSnapshot(key int64, fields map[string]string) model.TrackingSnapshot {
	s := model.TrackingSnapshot{
		OrderID:           parseInt(fields[fieldOrderID]),
		DriverID:          fields[fieldDriverID],
		CustomerID:        fields[fieldCustomerID],
		Status:            fields[fieldStatus],
		ShippingAddressID: parseInt(fields[fieldShippingAddressID]),
		ShippingAddress:   fields[fieldShippingAddress],
		StoreAddress:      fields[fieldStoreAddress],
		CustomerName:      fields[fieldCustomerName],
		CustomerPhone:     fields[fieldCustomerPhone],
		AssignedAt:        fields[fieldAssignedAt],
		CreatedAt:         fields[fieldCreatedAt],
		UpdatedAt:         fields[fieldUpdatedAt],
	}
	if s.OrderID == 0 {
		s.OrderID = key
	}
	_, hasLat := fields[fieldLocationLatitude]
	_, hasLng := fields[fieldLocationLongitude]
	if hasLat || hasLng {
		s.DriverLocation = &model.TrackingLocation{
			Latitude:  parseFloat(fields[fieldLocationLatitude]),
			Longitude: parseFloat(fields[fieldLocationLongitude]),
			UpdatedAt: parseInt(fields[fieldLocationUpdatedAt]),
		}
	}
	return s
}

func decodeDriverLocation(driverID string, fields map[string]string) model.DriverLocation {
	online, _ := strconv.ParseBool(fields[fieldDriverIsOnline])
	loc := model.DriverLocation{
		DriverID:  fields[fieldDriverID],
		Latitude:  parseFloat(fields[fieldDriverLatitude]),
		Longitude: parseFloat(fields[fieldDriverLongitude]),
		Timestamp: parseInt(fields[fieldDriverTimestamp]),
		IsOnline:  online,
	}
	if loc.DriverID == "" {
		loc.DriverID = driverID
	}
	return loc
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseInt(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
