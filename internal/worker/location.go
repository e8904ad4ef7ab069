package worker

import (
	"sync"
	"time"

	"github.com/polkiloo/courieragent/internal/domain/model"
)

// LocationSource yields the latest device position.
type LocationSource interface {
	Current() (model.GeoPoint, bool)
}

// DeviceLocation keeps the last fix reported by the UI shell.
type DeviceLocation struct {
	mu    sync.RWMutex
	point model.GeoPoint
	known bool
	now   func() time.Time
}

func NewDeviceLocation() *DeviceLocation {
	return &DeviceLocation{now: time.Now}
}

// Update records a fix taken now.
func (d *DeviceLocation) Update(latitude, longitude float64) model.GeoPoint {
	p := model.GeoPoint{Latitude: latitude, Longitude: longitude, RecordedAt: d.now()}
	d.mu.Lock()
	d.point = p
	d.known = true
	d.mu.Unlock()
	return p
}

// Current returns the last fix and whether there is one.
func (d *DeviceLocation) Current() (model.GeoPoint, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.point, d.known
}
