// Package firebase implements the realtime store on the vendor realtime
// database. The admin SDK has no streaming listeners, so subscriptions are
// fed by polling the order_tracking tree and diffing consecutive reads.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"firebase.google.com/go/v4/db"

	domainErrors "github.com/polkiloo/courieragent/internal/domain/errors"
	"github.com/polkiloo/courieragent/internal/domain/model"
	"github.com/polkiloo/courieragent/internal/domain/repository"
	"github.com/polkiloo/courieragent/internal/storage/watch"
)

const (
	trackingPath        = "order_tracking"
	driverLocationsPath = "driver_locations"
	defaultPollInterval = 2 * time.Second
)

// Store is a RealtimeStore backed by the vendor realtime database.
type Store struct {
	client   *db.Client
	readTree func(ctx context.Context) (map[int64]model.TrackingSnapshot, error)
	interval time.Duration
	watchers *watch.Registry
	logger   *slog.Logger

	mu      sync.Mutex
	prev    map[int64]model.TrackingSnapshot
	failing bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ repository.RealtimeStore = (*Store)(nil)

// New creates a store and starts the poller.
func New(client *db.Client, interval time.Duration, logger *slog.Logger) *Store {
	s := &Store{client: client}
	s.readTree = s.fetchTree
	s.init(interval, logger)
	return s
}

func (s *Store) init(interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	s.interval = interval
	s.logger = logger
	s.watchers = watch.NewRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go s.poll(ctx)
}

func trackingRef(orderID int64) string {
	return trackingPath + "/" + strconv.FormatInt(orderID, 10)
}

func (s *Store) fetchTree(ctx context.Context) (map[int64]model.TrackingSnapshot, error) {
	var raw interface{}
	if err := s.client.NewRef(trackingPath).Get(ctx, &raw); err != nil {
		return nil, fmt.Errorf("read %s: %w", trackingPath, err)
	}
	return decodeTree(raw), nil
}

func (s *Store) Tracking(ctx context.Context, orderID int64) (*model.TrackingSnapshot, error) {
	var raw map[string]interface{}
	if err := s.client.NewRef(trackingRef(orderID)).Get(ctx, &raw); err != nil {
		return nil, fmt.Errorf("read tracking %d: %w", orderID, err)
	}
	if raw == nil {
		return nil, domainErrors.ErrNotFound
	}
	snap := decodeNode(orderID, raw)
	return &snap, nil
}

func (s *Store) ListTracking(ctx context.Context) ([]model.TrackingSnapshot, error) {
	tree, err := s.readTree(ctx)
	if err != nil {
		return nil, err
	}
	return sortedNodes(tree), nil
}

func (s *Store) PutTracking(ctx context.Context, snapshot model.TrackingSnapshot) error {
	if err := s.client.NewRef(trackingRef(snapshot.OrderID)).Set(ctx, snapshot); err != nil {
		return fmt.Errorf("put tracking %d: %w", snapshot.OrderID, err)
	}
	return nil
}

func (s *Store) UpdateTrackingStatus(ctx context.Context, orderID int64, status string) error {
	if err := s.client.NewRef(trackingRef(orderID)).Child("status").Set(ctx, status); err != nil {
		return fmt.Errorf("update tracking status %d: %w", orderID, err)
	}
	return nil
}

func (s *Store) UpdateDriverLocation(ctx context.Context, orderID int64, location model.TrackingLocation) error {
	ref := s.client.NewRef(trackingRef(orderID)).Child("driverLocation")
	err := ref.Transaction(ctx, func(node db.TransactionNode) (interface{}, error) {
		var current *model.TrackingLocation
		if err := node.Unmarshal(&current); err != nil {
			return nil, err
		}
		if current != nil && location.UpdatedAt < current.UpdatedAt {
			return nil, domainErrors.ErrStaleLocation
		}
		return location, nil
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrStaleLocation) {
			return domainErrors.ErrStaleLocation
		}
		return fmt.Errorf("update driver location %d: %w", orderID, err)
	}
	return nil
}

func (s *Store) RemoveTracking(ctx context.Context, orderID int64) error {
	if err := s.client.NewRef(trackingRef(orderID)).Delete(ctx); err != nil {
		return fmt.Errorf("remove tracking %d: %w", orderID, err)
	}
	return nil
}

func (s *Store) PutDriverLocation(ctx context.Context, location model.DriverLocation) error {
	ref := s.client.NewRef(driverLocationsPath + "/" + location.DriverID)
	err := ref.Transaction(ctx, func(node db.TransactionNode) (interface{}, error) {
		var current *model.DriverLocation
		if err := node.Unmarshal(&current); err != nil {
			return nil, err
		}
		if current != nil && location.Timestamp < current.Timestamp {
			return nil, domainErrors.ErrStaleLocation
		}
		return location, nil
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrStaleLocation) {
			return domainErrors.ErrStaleLocation
		}
		return fmt.Errorf("put driver location %s: %w", location.DriverID, err)
	}
	return nil
}

func (s *Store) DriverLocation(ctx context.Context, driverID string) (*model.DriverLocation, error) {
	var loc *model.DriverLocation
	if err := s.client.NewRef(driverLocationsPath+"/"+driverID).Get(ctx, &loc); err != nil {
		return nil, fmt.Errorf("read driver location %s: %w", driverID, err)
	}
	if loc == nil {
		return nil, domainErrors.ErrNotFound
	}
	if loc.DriverID == "" {
		loc.DriverID = driverID
	}
	return loc, nil
}

func (s *Store) WatchOrder(ctx context.Context, orderID int64) (*repository.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, err := s.primeLocked(ctx)
	if err != nil {
		return nil, err
	}
	var initial []repository.TrackingEvent
	if node, ok := tree[orderID]; ok {
		initial = append(initial, repository.TrackingEvent{Kind: repository.EventAdded, OrderID: orderID, Snapshot: node})
	}
	return s.watchers.Subscribe(ctx, orderID, initial), nil
}

func (s *Store) WatchOrders(ctx context.Context) (*repository.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, err := s.primeLocked(ctx)
	if err != nil {
		return nil, err
	}
	nodes := sortedNodes(tree)
	initial := make([]repository.TrackingEvent, 0, len(nodes))
	for _, node := range nodes {
		initial = append(initial, repository.TrackingEvent{Kind: repository.EventAdded, OrderID: node.OrderID, Snapshot: node})
	}
	return s.watchers.Subscribe(ctx, watch.AllOrders, initial), nil
}

// primeLocked reads the current tree and makes it the diff baseline when the
// poller has none yet.
func (s *Store) primeLocked(ctx context.Context) (map[int64]model.TrackingSnapshot, error) {
	tree, err := s.readTree(ctx)
	if err != nil {
		return nil, err
	}
	if s.prev == nil {
		s.prev = tree
	}
	return tree, nil
}

func (s *Store) poll(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollOnce(ctx)
		}
	}
}

func (s *Store) pollOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watchers.Len() == 0 {
		s.prev = nil
		s.failing = false
		return
	}

	tree, err := s.readTree(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if !s.failing {
			s.failing = true
			s.logger.Error("poll tracking tree failed", slog.String("error", err.Error()))
			s.watchers.Dispatch(ctx, repository.TrackingEvent{Kind: repository.EventError, Err: err})
		}
		return
	}
	s.failing = false

	if s.prev != nil {
		for _, ev := range diffTrees(s.prev, tree) {
			s.watchers.Dispatch(ctx, ev)
		}
	}
	s.prev = tree
}

// Close stops the poller and closes every subscription.
func (s *Store) Close() error {
	s.cancel()
	s.watchers.Close()
	s.wg.Wait()
	return nil
}

func sortedNodes(tree map[int64]model.TrackingSnapshot) []model.TrackingSnapshot {
	out := make([]model.TrackingSnapshot, 0, len(tree))
	for _, node := range tree {
		out = append(out, node)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out
}
