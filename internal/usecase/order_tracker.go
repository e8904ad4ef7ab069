package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/polkiloo/courieragent/internal/adapter/backend"
	domainErrors "github.com/polkiloo/courieragent/internal/domain/errors"
	"github.com/polkiloo/courieragent/internal/domain/model"
	"github.com/polkiloo/courieragent/internal/domain/repository"
)

// ItemsWarning is attached to a view whose item list could not be loaded.
const ItemsWarning = "could not load order items"

// OrderSampler is the fine location sampler bound to an open order.
type OrderSampler interface {
	StartOrder(orderID int64)
	StopOrder(orderID int64)
}

// OrderView is the state of an open order.
type OrderView struct {
	Order     model.Order       `json:"order"`
	Items     []model.OrderItem `json:"items"`
	Warning   string            `json:"warning,omitempty"`
	Completed bool              `json:"completed"`
}

// OrderUpdate is pushed to the UI whenever the open order changes.
type OrderUpdate struct {
	OrderID int64        `json:"orderId"`
	Order   *model.Order `json:"order,omitempty"`
	Removed bool         `json:"removed,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// OrderListener receives updates of the open order.
type OrderListener func(OrderUpdate)

// OrderTracker owns at most one open order session and merges the realtime
// node of that order with the REST records.
type OrderTracker struct {
	ctx     context.Context
	orders  backend.OrderService
	store   repository.TrackingStore
	sampler OrderSampler
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	session  *orderSession
	listener OrderListener
}

// NewOrderTracker constructs OrderTracker. Subscriptions live until the
// session is released or ctx ends.
func NewOrderTracker(ctx context.Context, orders backend.OrderService, store repository.TrackingStore, sampler OrderSampler, logger *slog.Logger) *OrderTracker {
	return &OrderTracker{
		ctx:     ctx,
		orders:  orders,
		store:   store,
		sampler: sampler,
		logger:  logger,
		now:     time.Now,
	}
}

// OnUpdate sets the listener of session updates.
func (t *OrderTracker) OnUpdate(l OrderListener) {
	t.mu.Lock()
	t.listener = l
	t.mu.Unlock()
}

// Open releases the current session and opens orderID. The detail fetch is
// fatal; items degrade to an empty list and the address override is optional.
func (t *OrderTracker) Open(ctx context.Context, orderID int64) (*OrderView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.releaseLocked()

	sub, err := t.store.WatchOrder(t.ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("watch order %d: %w", orderID, err)
	}
	s := newOrderSession(orderID, sub, t.listener, t.now, t.logger)
	go s.consume()

	var (
		detail   *model.OrderDetail
		items    []model.OrderItem
		itemsErr error
		tracking *model.TrackingSnapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := t.orders.OrderDetail(gctx, orderID)
		if err != nil {
			return fmt.Errorf("order detail %d: %w", orderID, err)
		}
		detail = d
		return nil
	})
	g.Go(func() error {
		items, itemsErr = t.orders.OrderItems(gctx, orderID)
		return nil
	})
	g.Go(func() error {
		snap, err := t.store.Tracking(gctx, orderID)
		if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
			t.logger.Warn("tracking lookup failed", slog.Int64("order", orderID), slog.String("error", err.Error()))
		}
		tracking = snap
		return nil
	})
	if err := g.Wait(); err != nil {
		s.close()
		return nil, err
	}

	if itemsErr != nil {
		t.logger.Warn("order items unavailable", slog.Int64("order", orderID), slog.String("error", itemsErr.Error()))
		items = []model.OrderItem{}
	}

	var address *model.Address
	if id := shippingAddressID(s.latestTracking(tracking), detail); id > 0 {
		a, err := t.orders.Address(ctx, id)
		if err != nil {
			t.logger.Warn("address unavailable", slog.Int64("order", orderID), slog.Int64("address", id), slog.String("error", err.Error()))
		} else {
			address = a
		}
	}

	view := s.applyREST(detail, items, itemsErr != nil, tracking, address)
	t.session = s
	if t.sampler != nil {
		t.sampler.StartOrder(orderID)
	}
	t.logger.Info("order session opened", slog.Int64("order", orderID))
	return view, nil
}

// Current returns the view of the open session.
func (t *OrderTracker) Current() (*OrderView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return nil, domainErrors.ErrNoActiveSession
	}
	return t.session.view(), nil
}

// ActiveOrderID returns the id of the open order or 0.
func (t *OrderTracker) ActiveOrderID() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return 0
	}
	return t.session.orderID
}

// Confirm confirms the delivery location. On success the order is rebuilt
// from the returned detail alone and the session is released; on failure the
// session stays open.
func (t *OrderTracker) Confirm(ctx context.Context, orderID int64, latitude, longitude float64) (*OrderView, error) {
	if !ValidateCoordinates(latitude, longitude) {
		return nil, domainErrors.ErrInvalidLocation
	}
	detail, err := t.orders.ConfirmDriverLocation(ctx, orderID, latitude, longitude)
	if err != nil {
		return nil, err
	}
	view := &OrderView{Order: OrderFromDetail(*detail, t.now()), Items: []model.OrderItem{}, Completed: true}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session != nil && t.session.orderID == orderID {
		view.Items = t.session.view().Items
		t.releaseLocked()
	}
	t.logger.Info("delivery confirmed", slog.Int64("order", orderID))
	return view, nil
}

// UpdateOrderStatus changes the persisted status and then mirrors it into the
// tracking node. The mirror write is best-effort.
func (t *OrderTracker) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*model.Order, error) {
	detail, err := t.orders.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}
	if err := t.store.UpdateTrackingStatus(ctx, orderID, status); err != nil {
		t.logger.Warn("tracking status write failed", slog.Int64("order", orderID), slog.String("error", err.Error()))
	}
	order := OrderFromDetail(*detail, t.now())
	return &order, nil
}

// Release closes the session of orderID if it is the open one.
func (t *OrderTracker) Release(orderID int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil || t.session.orderID != orderID {
		return domainErrors.ErrNoActiveSession
	}
	t.releaseLocked()
	return nil
}

// Close releases the open session. No listener call happens after Close
// returns.
func (t *OrderTracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.releaseLocked()
}

func (t *OrderTracker) releaseLocked() {
	if t.session == nil {
		return
	}
	s := t.session
	t.session = nil
	s.close()
	if t.sampler != nil {
		t.sampler.StopOrder(s.orderID)
	}
	t.logger.Info("order session released", slog.Int64("order", s.orderID))
}

func shippingAddressID(tracking *model.TrackingSnapshot, detail *model.OrderDetail) int64 {
	if tracking != nil && tracking.ShippingAddressID > 0 {
		return tracking.ShippingAddressID
	}
	if detail != nil && detail.ShippingAddressID > 0 {
		return detail.ShippingAddressID
	}
	return 0
}

// orderSession is one open order. All state is guarded by mu and the
// listener is only called while the session is open.
type orderSession struct {
	orderID int64
	sub     *repository.Subscription
	notify  OrderListener
	now     func() time.Time
	logger  *slog.Logger
	done    chan struct{}

	mu        sync.Mutex
	closed    bool
	order     *model.Order
	detail    *model.OrderDetail
	tracking  *model.TrackingSnapshot
	address   *model.Address
	items     []model.OrderItem
	warning   string
}

func newOrderSession(orderID int64, sub *repository.Subscription, notify OrderListener, now func() time.Time, logger *slog.Logger) *orderSession {
	return &orderSession{
		orderID: orderID,
		sub:     sub,
		notify:  notify,
		now:     now,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

func (s *orderSession) consume() {
	defer close(s.done)
	for {
		select {
		case <-s.sub.Done():
			return
		case ev := <-s.sub.Events():
			s.handle(ev)
		}
	}
}

func (s *orderSession) handle(ev repository.TrackingEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	switch ev.Kind {
	case repository.EventAdded, repository.EventChanged:
		snap := ev.Snapshot
		s.tracking = &snap
		s.recomputeLocked(true)
		s.publishLocked(OrderUpdate{OrderID: s.orderID, Order: s.cloneOrderLocked()})
	case repository.EventRemoved:
		s.logger.Info("tracking node removed", slog.Int64("order", s.orderID))
		s.publishLocked(OrderUpdate{OrderID: s.orderID, Removed: true})
	case repository.EventError:
		if ev.Err != nil {
			s.logger.Warn("order subscription failed", slog.Int64("order", s.orderID), slog.String("error", ev.Err.Error()))
		}
		s.publishLocked(OrderUpdate{OrderID: s.orderID, Error: domainErrors.MessageConnectionLost})
	}
}

// latestTracking prefers a snapshot already delivered by the subscription.
func (s *orderSession) latestTracking(fetched *model.TrackingSnapshot) *model.TrackingSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracking != nil {
		return s.tracking
	}
	return fetched
}

func (s *orderSession) applyREST(detail *model.OrderDetail, items []model.OrderItem, itemsFailed bool, tracking *model.TrackingSnapshot, address *model.Address) *OrderView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.detail = detail
	s.address = address
	s.items = items
	if itemsFailed {
		s.warning = ItemsWarning
	}
	if s.tracking == nil {
		s.tracking = tracking
	}
	s.recomputeLocked(false)
	s.publishLocked(OrderUpdate{OrderID: s.orderID, Order: s.cloneOrderLocked()})
	return s.viewLocked()
}

func (s *orderSession) recomputeLocked(live bool) {
	order := MergeOrder(OrderSources{
		OrderID:  s.orderID,
		Prior:    s.order,
		Detail:   s.detail,
		Tracking: s.tracking,
		Address:  s.address,
		Live:     live,
	}, s.now())
	s.order = &order
}

func (s *orderSession) publishLocked(u OrderUpdate) {
	if s.notify != nil && !s.closed {
		s.notify(u)
	}
}

func (s *orderSession) cloneOrderLocked() *model.Order {
	if s.order == nil {
		return nil
	}
	o := *s.order
	return &o
}

func (s *orderSession) view() *OrderView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *orderSession) viewLocked() *OrderView {
	v := &OrderView{
		Items:   append(make([]model.OrderItem, 0, len(s.items)), s.items...),
		Warning: s.warning,
	}
	if s.order != nil {
		v.Order = *s.order
	}
	return v
}

// close detaches the subscription and waits for the consumer to exit.
func (s *orderSession) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	_ = s.sub.Close()
	<-s.done
}
