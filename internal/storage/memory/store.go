// Package memory is an in-process realtime store for single-agent setups and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	domainErrors "github.com/polkiloo/courieragent/internal/domain/errors"
	"github.com/polkiloo/courieragent/internal/domain/model"
	"github.com/polkiloo/courieragent/internal/domain/repository"
	"github.com/polkiloo/courieragent/internal/storage/watch"
)

// Store keeps tracking nodes and driver presence in memory.
type Store struct {
	mu       sync.Mutex
	nodes    map[int64]model.TrackingSnapshot
	drivers  map[string]model.DriverLocation
	watchers *watch.Registry
}

var _ repository.RealtimeStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nodes:    make(map[int64]model.TrackingSnapshot),
		drivers:  make(map[string]model.DriverLocation),
		watchers: watch.NewRegistry(),
	}
}

func (s *Store) Tracking(_ context.Context, orderID int64) (*model.TrackingSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	node = cloneSnapshot(node)
	return &node, nil
}

func (s *Store) ListTracking(_ context.Context) ([]model.TrackingSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked(), nil
}

func (s *Store) PutTracking(ctx context.Context, snapshot model.TrackingSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.nodes[snapshot.OrderID]
	s.nodes[snapshot.OrderID] = cloneSnapshot(snapshot)
	s.notifyLocked(ctx, snapshot.OrderID, exists)
	return nil
}

func (s *Store) UpdateTrackingStatus(ctx context.Context, orderID int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, exists := s.nodes[orderID]
	node.OrderID = orderID
	node.Status = status
	s.nodes[orderID] = node
	s.notifyLocked(ctx, orderID, exists)
	return nil
}

func (s *Store) UpdateDriverLocation(ctx context.Context, orderID int64, location model.TrackingLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, exists := s.nodes[orderID]
	if node.DriverLocation != nil && location.UpdatedAt < node.DriverLocation.UpdatedAt {
		return domainErrors.ErrStaleLocation
	}
	loc := location
	node.OrderID = orderID
	node.DriverLocation = &loc
	s.nodes[orderID] = node
	s.notifyLocked(ctx, orderID, exists)
	return nil
}

func (s *Store) RemoveTracking(ctx context.Context, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[orderID]; !ok {
		return nil
	}
	delete(s.nodes, orderID)
	s.watchers.Dispatch(ctx, repository.TrackingEvent{Kind: repository.EventRemoved, OrderID: orderID})
	return nil
}

func (s *Store) WatchOrder(ctx context.Context, orderID int64) (*repository.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var initial []repository.TrackingEvent
	if node, ok := s.nodes[orderID]; ok {
		initial = append(initial, repository.TrackingEvent{Kind: repository.EventAdded, OrderID: orderID, Snapshot: cloneSnapshot(node)})
	}
	return s.watchers.Subscribe(ctx, orderID, initial), nil
}

func (s *Store) WatchOrders(ctx context.Context) (*repository.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes := s.sortedLocked()
	initial := make([]repository.TrackingEvent, 0, len(nodes))
	for _, node := range nodes {
		initial = append(initial, repository.TrackingEvent{Kind: repository.EventAdded, OrderID: node.OrderID, Snapshot: node})
	}
	return s.watchers.Subscribe(ctx, watch.AllOrders, initial), nil
}

func (s *Store) PutDriverLocation(_ context.Context, location model.DriverLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.drivers[location.DriverID]; ok && location.Timestamp < current.Timestamp {
		return domainErrors.ErrStaleLocation
	}
	s.drivers[location.DriverID] = location
	return nil
}

func (s *Store) DriverLocation(_ context.Context, driverID string) (*model.DriverLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc, ok := s.drivers[driverID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &loc, nil
}

// Close detaches every open subscription.
func (s *Store) Close() error {
	s.watchers.Close()
	return nil
}

func (s *Store) notifyLocked(ctx context.Context, orderID int64, existed bool) {
	kind := repository.EventChanged
	if !existed {
		kind = repository.EventAdded
	}
	s.watchers.Dispatch(ctx, repository.TrackingEvent{
		Kind:     kind,
		OrderID:  orderID,
		Snapshot: cloneSnapshot(s.nodes[orderID]),
	})
}

func (s *Store) sortedLocked() []model.TrackingSnapshot {
	out := make([]model.TrackingSnapshot, 0, len(s.nodes))
	for _, node := range s.nodes {
		out = append(out, cloneSnapshot(node))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out
}

func cloneSnapshot(s model.TrackingSnapshot) model.TrackingSnapshot {
	if s.DriverLocation != nil {
		loc := *s.DriverLocation
		s.DriverLocation = &loc
	}
	return s
}
