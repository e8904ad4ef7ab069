// Package redis implements the realtime store on Redis hashes and pub/sub.
//
// Each tracking node lives in the hash order_tracking:{orderId}; the set
// order_tracking indexes node keys and every change is announced on the
// order_tracking channel so all agents sharing the instance see it.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"github.com/go-redis/redis/v8"

	domainErrors "github.com/polkiloo/courieragent/internal/domain/errors"
	"github.com/polkiloo/courieragent/internal/domain/model"
	"github.com/polkiloo/courieragent/internal/domain/repository"
	"github.com/polkiloo/courieragent/internal/storage/watch"
)

const (
	indexKey        = "order_tracking"
	nodePrefix      = "order_tracking:"
	driverKeyPrefix = "driver_locations:"
)

var orderLocationScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'driverLocation.updatedAt')
if current and tonumber(current) > tonumber(ARGV[4]) then
  return -1
end
redis.call('HSET', KEYS[1], 'orderId', ARGV[1], 'driverLocation.latitude', ARGV[2], 'driverLocation.longitude', ARGV[3], 'driverLocation.updatedAt', ARGV[4])
return redis.call('SADD', KEYS[2], ARGV[1])
`)

var driverLocationScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'timestamp')
if current and tonumber(current) > tonumber(ARGV[4]) then
  return -1
end
redis.call('HSET', KEYS[1], 'driverId', ARGV[1], 'latitude', ARGV[2], 'longitude', ARGV[3], 'timestamp', ARGV[4], 'isOnline', ARGV[5])
return 1
`)

// Options configures the Redis connection.
type Options struct {
	Address  string
	Password string
	DB       int
}

// Store is a RealtimeStore backed by Redis.
type Store struct {
	client   *redis.Client
	pubsub   *redis.PubSub
	watchers *watch.Registry
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ repository.RealtimeStore = (*Store)(nil)

// New connects to Redis and starts relaying change notifications.
func New(ctx context.Context, opts Options, logger *slog.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	pubsub := client.Subscribe(ctx, watch.Channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		_ = client.Close()
		return nil, fmt.Errorf("subscribe %s: %w", watch.Channel, err)
	}

	relayCtx, cancel := context.WithCancel(context.Background())
	s := &Store{
		client:   client,
		pubsub:   pubsub,
		watchers: watch.NewRegistry(),
		logger:   logger,
		cancel:   cancel,
	}

	s.wg.Add(1)
	go s.relay(relayCtx)

	return s, nil
}

func (s *Store) relay(ctx context.Context) {
	defer s.wg.Done()

	ch := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			ev, err := watch.Decode(msg.Payload)
			if err != nil {
				s.logger.Warn("skip tracking notification", slog.String("error", err.Error()))
				continue
			}
			s.watchers.Dispatch(ctx, ev)
		}
	}
}

func nodeKey(orderID int64) string {
	return nodePrefix + strconv.FormatInt(orderID, 10)
}

func driverKey(driverID string) string {
	return driverKeyPrefix + driverID
}

func (s *Store) Tracking(ctx context.Context, orderID int64) (*model.TrackingSnapshot, error) {
	fields, err := s.client.HGetAll(ctx, nodeKey(orderID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read tracking %d: %w", orderID, err)
	}
	if len(fields) == 0 {
		return nil, domainErrors.ErrNotFound
	}
	snap := decodeSnapshot(orderID, fields)
	return &snap, nil
}

func (s *Store) ListTracking(ctx context.Context) ([]model.TrackingSnapshot, error) {
	members, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list tracking: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		if id, err := strconv.ParseInt(m, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringStringMapCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, nodeKey(id))
	}
	if len(ids) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("list tracking: %w", err)
		}
	}

	out := make([]model.TrackingSnapshot, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		out = append(out, decodeSnapshot(ids[i], fields))
	}
	return out, nil
}

func (s *Store) PutTracking(ctx context.Context, snapshot model.TrackingSnapshot) error {
	key := nodeKey(snapshot.OrderID)
	var added *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, encodeSnapshot(snapshot))
		added = pipe.SAdd(ctx, indexKey, snapshot.OrderID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("put tracking %d: %w", snapshot.OrderID, err)
	}
	return s.announce(ctx, snapshot.OrderID, added.Val() == 1)
}

func (s *Store) UpdateTrackingStatus(ctx context.Context, orderID int64, status string) error {
	key := nodeKey(orderID)
	var added *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fieldOrderID, orderID, fieldStatus, status)
		added = pipe.SAdd(ctx, indexKey, orderID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("update tracking status %d: %w", orderID, err)
	}
	return s.announce(ctx, orderID, added.Val() == 1)
}

func (s *Store) UpdateDriverLocation(ctx context.Context, orderID int64, location model.TrackingLocation) error {
	res, err := orderLocationScript.Run(ctx, s.client,
		[]string{nodeKey(orderID), indexKey},
		orderID, formatFloat(location.Latitude), formatFloat(location.Longitude), location.UpdatedAt,
	).Int64()
	if err != nil {
		return fmt.Errorf("update driver location %d: %w", orderID, err)
	}
	if res < 0 {
		return domainErrors.ErrStaleLocation
	}
	return s.announce(ctx, orderID, res == 1)
}

func (s *Store) RemoveTracking(ctx context.Context, orderID int64) error {
	var removed *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, nodeKey(orderID))
		removed = pipe.SRem(ctx, indexKey, orderID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove tracking %d: %w", orderID, err)
	}
	if removed.Val() == 0 {
		return nil
	}
	return s.publish(ctx, repository.TrackingEvent{Kind: repository.EventRemoved, OrderID: orderID})
}

func (s *Store) WatchOrder(ctx context.Context, orderID int64) (*repository.Subscription, error) {
	pending := s.watchers.Reserve(orderID)
	var initial []repository.TrackingEvent
	snap, err := s.Tracking(ctx, orderID)
	switch {
	case err == nil:
		initial = append(initial, repository.TrackingEvent{Kind: repository.EventAdded, OrderID: orderID, Snapshot: *snap})
	case !errors.Is(err, domainErrors.ErrNotFound):
		pending.Cancel()
		return nil, err
	}
	return pending.Start(ctx, initial), nil
}

func (s *Store) WatchOrders(ctx context.Context) (*repository.Subscription, error) {
	pending := s.watchers.Reserve(watch.AllOrders)
	nodes, err := s.ListTracking(ctx)
	if err != nil {
		pending.Cancel()
		return nil, err
	}
	initial := make([]repository.TrackingEvent, 0, len(nodes))
	for _, node := range nodes {
		initial = append(initial, repository.TrackingEvent{Kind: repository.EventAdded, OrderID: node.OrderID, Snapshot: node})
	}
	return pending.Start(ctx, initial), nil
}

func (s *Store) PutDriverLocation(ctx context.Context, location model.DriverLocation) error {
	res, err := driverLocationScript.Run(ctx, s.client,
		[]string{driverKey(location.DriverID)},
		location.DriverID, formatFloat(location.Latitude), formatFloat(location.Longitude),
		location.Timestamp, strconv.FormatBool(location.IsOnline),
	).Int64()
	if err != nil {
		return fmt.Errorf("put driver location %s: %w", location.DriverID, err)
	}
	if res < 0 {
		return domainErrors.ErrStaleLocation
	}
	return nil
}

func (s *Store) DriverLocation(ctx context.Context, driverID string) (*model.DriverLocation, error) {
	fields, err := s.client.HGetAll(ctx, driverKey(driverID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read driver location %s: %w", driverID, err)
	}
	if len(fields) == 0 {
		return nil, domainErrors.ErrNotFound
	}
	loc := decodeDriverLocation(driverID, fields)
	return &loc, nil
}

// Close stops the relay, closes subscriptions and the connection pool.
func (s *Store) Close() error {
	s.cancel()
	s.watchers.Close()
	err := s.pubsub.Close()
	s.wg.Wait()
	if cerr := s.client.Close(); err == nil {
		err = cerr
	}
	return err
}

func (s *Store) announce(ctx context.Context, orderID int64, added bool) error {
	snap, err := s.Tracking(ctx, orderID)
	if err != nil {
		return err
	}
	kind := repository.EventChanged
	if added {
		kind = repository.EventAdded
	}
	return s.publish(ctx, repository.TrackingEvent{Kind: kind, OrderID: orderID, Snapshot: *snap})
}

func (s *Store) publish(ctx context.Context, ev repository.TrackingEvent) error {
	payload, err := watch.Encode(ev)
	if err != nil {
		return err
	}
	if err := s.client.Publish(ctx, watch.Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish tracking %d: %w", ev.OrderID, err)
	}
	return nil
}
