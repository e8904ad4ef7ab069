package repository

// RealtimeStore is implemented by every realtime backend.
type RealtimeStore interface {
	TrackingStore
	DriverLocationStore
	Close() error
}
