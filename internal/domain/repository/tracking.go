package repository

import (
	"context"

	"github.com/polkiloo/courieragent/internal/domain/model"
)

// TrackingStore is the realtime tree of live orders keyed by order id.
type TrackingStore interface {
	// Tracking returns the node of one order or ErrNotFound.
	Tracking(ctx context.Context, orderID int64) (*model.TrackingSnapshot, error)
	ListTracking(ctx context.Context) ([]model.TrackingSnapshot, error)
	PutTracking(ctx context.Context, snapshot model.TrackingSnapshot) error
	UpdateTrackingStatus(ctx context.Context, orderID int64, status string) error
	// UpdateDriverLocation rejects locations older than the stored one with
	// ErrStaleLocation.
	UpdateDriverLocation(ctx context.Context, orderID int64, location model.TrackingLocation) error
	RemoveTracking(ctx context.Context, orderID int64) error

	WatchOrder(ctx context.Context, orderID int64) (*Subscription, error)
	WatchOrders(ctx context.Context) (*Subscription, error)
}

// DriverLocationStore keeps the per-driver presence nodes.
type DriverLocationStore interface {
	// PutDriverLocation rejects timestamps older than the stored one with
	// ErrStaleLocation.
	PutDriverLocation(ctx context.Context, location model.DriverLocation) error
	DriverLocation(ctx context.Context, driverID string) (*model.DriverLocation, error)
}
