package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/courieragent/internal/domain/errors"
	"github.com/polkiloo/courieragent/internal/domain/model"
	"github.com/polkiloo/courieragent/internal/domain/repository"
	"github.com/polkiloo/courieragent/internal/storage/watch"
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// listener is a dedicated connection subscribed to the tracking channel.
type listener interface {
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

var newListener = func(ctx context.Context, cfg *pgx.ConnConfig) (listener, error) {
	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{watch.Channel}.Sanitize()); err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}
	return conn, nil
}

const reconnectDelay = time.Second

// Storage is a RealtimeStore backed by PostgreSQL. Changes are announced with
// pg_notify inside the writing transaction and relayed from LISTEN.
type Storage struct {
	pool     pgxPool
	logger   *slog.Logger
	watchers *watch.Registry
	connect  func(ctx context.Context) (listener, error)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ repository.RealtimeStore = (*Storage)(nil)

// New creates storage with schema initialization and starts the listener.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{
		pool:     pool,
		logger:   logger,
		watchers: watch.NewRegistry(),
		connect: func(ctx context.Context) (listener, error) {
			return newListener(ctx, cfg.ConnConfig.Copy())
		},
	}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	storage.startListener()
	return storage, nil
}

func (s *Storage) startListener() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go s.listen(ctx)
}

// listen relays notifications until ctx ends. A broken connection is
// reported to subscribers as EventError and re-established.
func (s *Storage) listen(ctx context.Context) {
	defer s.wg.Done()

	for {
		l, err := s.connect(ctx)
		if err == nil {
			err = s.relay(ctx, l)
			_ = l.Close(context.Background())
		}
		if ctx.Err() != nil {
			return
		}

		s.logger.Error("tracking listener failed", slog.String("error", err.Error()))
		s.watchers.Dispatch(ctx, repository.TrackingEvent{
			Kind: repository.EventError,
			Err:  fmt.Errorf("tracking listener: %w", err),
		})

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *Storage) relay(ctx context.Context, l listener) error {
	for {
		n, err := l.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		ev, err := watch.Decode(n.Payload)
		if err != nil {
			s.logger.Warn("skip tracking notification", slog.String("error", err.Error()))
			continue
		}
		s.watchers.Dispatch(ctx, ev)
	}
}

// Close stops the listener, closes subscriptions and releases the pool.
func (s *Storage) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.watchers != nil {
		s.watchers.Close()
	}
	s.wg.Wait()
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS order_tracking (
            order_id BIGINT PRIMARY KEY,
            driver_id TEXT NOT NULL DEFAULT '',
            customer_id TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT '',
            shipping_address_id BIGINT NOT NULL DEFAULT 0,
            shipping_address TEXT NOT NULL DEFAULT '',
            store_address TEXT NOT NULL DEFAULT '',
            customer_name TEXT NOT NULL DEFAULT '',
            customer_phone TEXT NOT NULL DEFAULT '',
            assigned_at TEXT NOT NULL DEFAULT '',
            created_at TEXT NOT NULL DEFAULT '',
            updated_at TEXT NOT NULL DEFAULT '',
            location_latitude DOUBLE PRECISION,
            location_longitude DOUBLE PRECISION,
            location_updated_at BIGINT
        )`,
		`CREATE TABLE IF NOT EXISTS driver_locations (
            driver_id TEXT PRIMARY KEY,
            latitude DOUBLE PRECISION NOT NULL,
            longitude DOUBLE PRECISION NOT NULL,
            recorded_at BIGINT NOT NULL,
            is_online BOOLEAN NOT NULL DEFAULT FALSE
        )`,
		`CREATE INDEX IF NOT EXISTS idx_order_tracking_driver ON order_tracking(driver_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

const snapshotColumns = `order_id, driver_id, customer_id, status, shipping_address_id,
    shipping_address, store_address, customer_name, customer_phone, assigned_at,
    created_at, updated_at, location_latitude, location_longitude, location_updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner, prefix ...any) (model.TrackingSnapshot, error) {
	var (
		s                   model.TrackingSnapshot
		lat, lng            *float64
		locationUpdatedAtMs *int64
	)
	dest := append(prefix,
		&s.OrderID, &s.DriverID, &s.CustomerID, &s.Status, &s.ShippingAddressID,
		&s.ShippingAddress, &s.StoreAddress, &s.CustomerName, &s.CustomerPhone, &s.AssignedAt,
		&s.CreatedAt, &s.UpdatedAt, &lat, &lng, &locationUpdatedAtMs,
	)
	if err := row.Scan(dest...); err != nil {
		return model.TrackingSnapshot{}, err
	}
	if lat != nil || lng != nil {
		s.DriverLocation = &model.TrackingLocation{}
		if lat != nil {
			s.DriverLocation.Latitude = *lat
		}
		if lng != nil {
			s.DriverLocation.Longitude = *lng
		}
		if locationUpdatedAtMs != nil {
			s.DriverLocation.UpdatedAt = *locationUpdatedAtMs
		}
	}
	return s, nil
}

func (s *Storage) Tracking(ctx context.Context, orderID int64) (*model.TrackingSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM order_tracking WHERE order_id=$1`
	snap, err := scanSnapshot(s.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &snap, nil
}

func (s *Storage) ListTracking(ctx context.Context) ([]model.TrackingSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM order_tracking ORDER BY order_id`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.TrackingSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Storage) PutTracking(ctx context.Context, snap model.TrackingSnapshot) error {
	query := `INSERT INTO order_tracking (` + snapshotColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
              ON CONFLICT (order_id) DO UPDATE SET
                  driver_id = EXCLUDED.driver_id,
                  customer_id = EXCLUDED.customer_id,
                  status = EXCLUDED.status,
                  shipping_address_id = EXCLUDED.shipping_address_id,
                  shipping_address = EXCLUDED.shipping_address,
                  store_address = EXCLUDED.store_address,
                  customer_name = EXCLUDED.customer_name,
                  customer_phone = EXCLUDED.customer_phone,
                  assigned_at = EXCLUDED.assigned_at,
                  created_at = EXCLUDED.created_at,
                  updated_at = EXCLUDED.updated_at,
                  location_latitude = EXCLUDED.location_latitude,
                  location_longitude = EXCLUDED.location_longitude,
                  location_updated_at = EXCLUDED.location_updated_at
              RETURNING (xmax = 0), ` + snapshotColumns

	var lat, lng *float64
	var locUpdated *int64
	if loc := snap.DriverLocation; loc != nil {
		lat, lng, locUpdated = &loc.Latitude, &loc.Longitude, &loc.UpdatedAt
	}

	return s.upsert(ctx, query,
		snap.OrderID, snap.DriverID, snap.CustomerID, snap.Status, snap.ShippingAddressID,
		snap.ShippingAddress, snap.StoreAddress, snap.CustomerName, snap.CustomerPhone, snap.AssignedAt,
		snap.CreatedAt, snap.UpdatedAt, lat, lng, locUpdated,
	)
}

func (s *Storage) UpdateTrackingStatus(ctx context.Context, orderID int64, status string) error {
	query := `INSERT INTO order_tracking (order_id, status) VALUES ($1, $2)
              ON CONFLICT (order_id) DO UPDATE SET status = EXCLUDED.status
              RETURNING (xmax = 0), ` + snapshotColumns
	return s.upsert(ctx, query, orderID, status)
}

func (s *Storage) UpdateDriverLocation(ctx context.Context, orderID int64, loc model.TrackingLocation) error {
	query := `INSERT INTO order_tracking (order_id, location_latitude, location_longitude, location_updated_at)
              VALUES ($1, $2, $3, $4)
              ON CONFLICT (order_id) DO UPDATE SET
                  location_latitude = EXCLUDED.location_latitude,
                  location_longitude = EXCLUDED.location_longitude,
                  location_updated_at = EXCLUDED.location_updated_at
              WHERE order_tracking.location_updated_at IS NULL
                 OR order_tracking.location_updated_at <= EXCLUDED.location_updated_at
              RETURNING (xmax = 0), ` + snapshotColumns
	err := s.upsert(ctx, query, orderID, loc.Latitude, loc.Longitude, loc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domainErrors.ErrStaleLocation
	}
	return err
}

func (s *Storage) upsert(ctx context.Context, query string, args ...any) error {
	return s.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var inserted bool
		snap, err := scanSnapshot(tx.QueryRow(ctx, query, args...), &inserted)
		if err != nil {
			return err
		}
		kind := repository.EventChanged
		if inserted {
			kind = repository.EventAdded
		}
		return notify(ctx, tx, repository.TrackingEvent{Kind: kind, OrderID: snap.OrderID, Snapshot: snap})
	})
}

func (s *Storage) RemoveTracking(ctx context.Context, orderID int64) error {
	return s.WithinTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM order_tracking WHERE order_id=$1`, orderID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		return notify(ctx, tx, repository.TrackingEvent{Kind: repository.EventRemoved, OrderID: orderID})
	})
}

func notify(ctx context.Context, tx pgx.Tx, ev repository.TrackingEvent) error {
	payload, err := watch.Encode(ev)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, watch.Channel, payload); err != nil {
		return fmt.Errorf("notify tracking %d: %w", ev.OrderID, err)
	}
	return nil
}

func (s *Storage) WatchOrder(ctx context.Context, orderID int64) (*repository.Subscription, error) {
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

func (s *Storage) WatchOrders(ctx context.Context) (*repository.Subscription, error) {
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

func (s *Storage) PutDriverLocation(ctx context.Context, loc model.DriverLocation) error {
	const query = `INSERT INTO driver_locations (driver_id, latitude, longitude, recorded_at, is_online)
                   VALUES ($1, $2, $3, $4, $5)
                   ON CONFLICT (driver_id) DO UPDATE SET
                       latitude = EXCLUDED.latitude,
                       longitude = EXCLUDED.longitude,
                       recorded_at = EXCLUDED.recorded_at,
                       is_online = EXCLUDED.is_online
                   WHERE driver_locations.recorded_at <= EXCLUDED.recorded_at`
	tag, err := s.pool.Exec(ctx, query, loc.DriverID, loc.Latitude, loc.Longitude, loc.Timestamp, loc.IsOnline)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrStaleLocation
	}
	return nil
}

func (s *Storage) DriverLocation(ctx context.Context, driverID string) (*model.DriverLocation, error) {
	const query = `SELECT driver_id, latitude, longitude, recorded_at, is_online FROM driver_locations WHERE driver_id=$1`
	var loc model.DriverLocation
	err := s.pool.QueryRow(ctx, query, driverID).Scan(&loc.DriverID, &loc.Latitude, &loc.Longitude, &loc.Timestamp, &loc.IsOnline)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}
