package redis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/courieragent/internal/domain/errors"
	"github.com/polkiloo/courieragent/internal/domain/model"
	"github.com/polkiloo/courieragent/internal/domain/repository"
)

func TestSnapshotCodec(t *testing.T) {
	in := model.TrackingSnapshot{
		OrderID:           42,
		DriverID:          "uid-1",
		Status:            "SHIPPING",
		ShippingAddressID: 9,
		ShippingAddress:   "1 Main St",
		CustomerName:      "Bob",
		DriverLocation:    &model.TrackingLocation{Latitude: 10.75, Longitude: 106.5, UpdatedAt: 1700000000000},
	}

	raw := encodeSnapshot(in)
	if _, ok := raw[fieldCustomerPhone]; ok {
		t.Fatalf("empty fields must not be written: %v", raw)
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		fields[k] = v.(string)
	}
	out := decodeSnapshot(42, fields)

	if out.OrderID != 42 || out.DriverID != "uid-1" || out.ShippingAddressID != 9 || out.CustomerName != "Bob" {
		t.Fatalf("unexpected snapshot %+v", out)
	}
	if out.DriverLocation == nil || out.DriverLocation.Latitude != 10.75 || out.DriverLocation.UpdatedAt != 1700000000000 {
		t.Fatalf("unexpected driver location %+v", out.DriverLocation)
	}
}

func TestDecodeSnapshotIsTotal(t *testing.T) {
	out := decodeSnapshot(7, map[string]string{
		fieldStatus:            "CONFIRMED",
		fieldShippingAddressID: "not-a-number",
	})
	if out.OrderID != 7 {
		t.Fatalf("expected key fallback, got %d", out.OrderID)
	}
	if out.ShippingAddressID != 0 || out.DriverLocation != nil {
		t.Fatalf("unexpected snapshot %+v", out)
	}
}

func TestDecodeDriverLocation(t *testing.T) {
	loc := decodeDriverLocation("d1", map[string]string{
		fieldDriverLatitude:  "1.5",
		fieldDriverLongitude: "2.5",
		fieldDriverTimestamp: "99",
		fieldDriverIsOnline:  "true",
	})
	if loc.DriverID != "d1" || loc.Latitude != 1.5 || loc.Timestamp != 99 || !loc.IsOnline {
		t.Fatalf("unexpected location %+v", loc)
	}
}

// TestStoreAgainstRedis needs a disposable Redis at REDIS_TEST_ADDRESS.
func TestStoreAgainstRedis(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDRESS not set")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store, err := New(ctx, Options{Address: addr}, logger)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	const orderID = 990001
	_ = store.RemoveTracking(ctx, orderID)

	sub, err := store.WatchOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer sub.Close()

	if err := store.PutTracking(ctx, model.TrackingSnapshot{OrderID: orderID, DriverID: "it", Status: "SHIPPING"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	select {
	case ev := <-sub.Events():
		if ev.Kind != repository.EventAdded || ev.Snapshot.Status != "SHIPPING" {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	if err := store.UpdateDriverLocation(ctx, orderID, model.TrackingLocation{Latitude: 1, Longitude: 1, UpdatedAt: 200}); err != nil {
		t.Fatalf("location: %v", err)
	}
	err = store.UpdateDriverLocation(ctx, orderID, model.TrackingLocation{UpdatedAt: 100})
	if !errors.Is(err, domainErrors.ErrStaleLocation) {
		t.Fatalf("expected stale location, got %v", err)
	}

	if err := store.RemoveTracking(ctx, orderID); err != nil {
		t.Fatalf("remove: %v", err)
	}
}
