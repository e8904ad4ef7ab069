package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/courieragent/internal/domain/errors"
	"github.com/polkiloo/courieragent/internal/domain/model"
	"github.com/polkiloo/courieragent/internal/domain/repository"
)

// FeedEventKind classifies driver feed events.
type FeedEventKind string

const (
	FeedNewOrder     FeedEventKind = "new_order"
	FeedOrderUpdated FeedEventKind = "order_updated"
	FeedOrderRemoved FeedEventKind = "order_removed"
	FeedError        FeedEventKind = "error"
)

// FeedEvent is one change of the orders assigned to the driver.
type FeedEvent struct {
	Kind     FeedEventKind           `json:"kind"`
	OrderID  int64                   `json:"orderId"`
	Order    *model.Order            `json:"order,omitempty"`
	Tracking *model.TrackingSnapshot `json:"tracking,omitempty"`
	Message  string                  `json:"message,omitempty"`
}

// FeedListener receives feed events.
type FeedListener func(FeedEvent)

const shippingStatus = "SHIPPING"

// DriverOrderFeed watches the whole tracking tree for orders of one driver.
type DriverOrderFeed struct {
	ctx    context.Context
	store  repository.TrackingStore
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	listener FeedListener
	driverID string
	sub      *repository.Subscription
	done     chan struct{}
}

// NewDriverOrderFeed constructs DriverOrderFeed. The subscription lives until
// Stop or until ctx ends.
func NewDriverOrderFeed(ctx context.Context, store repository.TrackingStore, logger *slog.Logger) *DriverOrderFeed {
	return &DriverOrderFeed{ctx: ctx, store: store, logger: logger, now: time.Now}
}

// OnEvent sets the listener of feed events.
func (f *DriverOrderFeed) OnEvent(l FeedListener) {
	f.mu.Lock()
	f.listener = l
	f.mu.Unlock()
}

// Start begins watching for driverID, replacing a running feed or one whose
// subscription has ended.
func (f *DriverOrderFeed) Start(driverID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sub != nil && f.driverID == driverID && !f.sub.Closed() {
		return nil
	}
	f.stopLocked()

	sub, err := f.store.WatchOrders(f.ctx)
	if err != nil {
		return fmt.Errorf("watch orders: %w", err)
	}
	f.driverID = driverID
	f.sub = sub
	f.done = make(chan struct{})
	go f.consume(driverID, sub, f.listener, f.done)
	f.logger.Info("order feed started", slog.String("driver", driverID))
	return nil
}

// Stop ends the feed and waits for the consumer to exit.
func (f *DriverOrderFeed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopLocked()
}

// Running reports whether a feed is active.
func (f *DriverOrderFeed) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sub != nil
}

func (f *DriverOrderFeed) stopLocked() {
	if f.sub == nil {
		return
	}
	_ = f.sub.Close()
	<-f.done
	f.logger.Info("order feed stopped", slog.String("driver", f.driverID))
	f.sub = nil
	f.done = nil
	f.driverID = ""
}

func (f *DriverOrderFeed) consume(driverID string, sub *repository.Subscription, listener FeedListener, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-sub.Done():
			return
		case ev := <-sub.Events():
			if sub.Closed() {
				return
			}
			out, ok := f.translate(driverID, ev)
			if ok && listener != nil {
				listener(out)
			}
		}
	}
}

func (f *DriverOrderFeed) translate(driverID string, ev repository.TrackingEvent) (FeedEvent, bool) {
	switch ev.Kind {
	case repository.EventAdded:
		if ev.Snapshot.DriverID != driverID || !strings.EqualFold(ev.Snapshot.Status, shippingStatus) {
			return FeedEvent{}, false
		}
		return f.orderEvent(FeedNewOrder, ev), true
	case repository.EventChanged:
		if ev.Snapshot.DriverID != driverID {
			return FeedEvent{}, false
		}
		return f.orderEvent(FeedOrderUpdated, ev), true
	case repository.EventRemoved:
		return FeedEvent{Kind: FeedOrderRemoved, OrderID: ev.OrderID}, true
	case repository.EventError:
		msg := domainErrors.MessageConnectionLost
		if ev.Err != nil {
			msg = ev.Err.Error()
			f.logger.Warn("order feed failed", slog.String("driver", driverID), slog.String("error", msg))
		}
		return FeedEvent{Kind: FeedError, Message: msg}, true
	}
	return FeedEvent{}, false
}

func (f *DriverOrderFeed) orderEvent(kind FeedEventKind, ev repository.TrackingEvent) FeedEvent {
	snap := ev.Snapshot
	order := MergeOrder(OrderSources{OrderID: ev.OrderID, Tracking: &snap}, f.now())
	return FeedEvent{Kind: kind, OrderID: ev.OrderID, Order: &order, Tracking: &snap}
}

// CurrentOrder returns the first live order assigned to driverID: a node with
// a non-zero id whose status is neither DELIVERED nor CANCELLED. A failed
// lookup is reported as no order.
func CurrentOrder(ctx context.Context, store repository.TrackingStore, driverID string, logger *slog.Logger) *model.TrackingSnapshot {
	nodes, err := store.ListTracking(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Warn("current order lookup failed", slog.String("driver", driverID), slog.String("error", err.Error()))
		}
		return nil
	}
	for _, n := range nodes {
		if n.DriverID == driverID && n.OrderID != 0 && !model.IsTerminalOrderStatus(n.Status) {
			snap := n
			return &snap
		}
	}
	return nil
}
