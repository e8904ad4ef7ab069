package worker

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/polkiloo/courieragent/internal/config"
	domainErrors "github.com/polkiloo/courieragent/internal/domain/errors"
	"github.com/polkiloo/courieragent/internal/domain/model"
	"github.com/polkiloo/courieragent/internal/domain/repository"
	"github.com/polkiloo/courieragent/internal/metrics"
)

// Sampler names used in logs and metrics.
const (
	CoarseSampler = "coarse"
	FineSampler   = "fine"
)

// Options configures LocationBroadcaster.
type Options struct {
	// DriverInterval paces the driver presence node.
	DriverInterval time.Duration
	// OrderInterval paces the open order's driverLocation. It never drops
	// below config.MinOrderLocationInterval.
	OrderInterval time.Duration
}

// LocationBroadcaster owns two independent samplers: a coarse one writing
// the driver presence node while online, and a fine one writing the
// location of the open order.
type LocationBroadcaster struct {
	ctx      context.Context
	tracking repository.TrackingStore
	drivers  repository.DriverLocationStore
	source   LocationSource
	metrics  *metrics.Metrics
	logger   *slog.Logger
	opts     Options
	now      func() time.Time

	mu       sync.Mutex
	driverID string
	orderID  int64
	coarse   *Sampler
	fine     *Sampler
}

// NewLocationBroadcaster constructs LocationBroadcaster. Samplers are bound
// to ctx, not to any request.
func NewLocationBroadcaster(ctx context.Context, tracking repository.TrackingStore, drivers repository.DriverLocationStore, source LocationSource, m *metrics.Metrics, opts Options, logger *slog.Logger) *LocationBroadcaster {
	if opts.DriverInterval <= 0 {
		opts.DriverInterval = 10 * time.Second
	}
	if opts.OrderInterval < config.MinOrderLocationInterval {
		opts.OrderInterval = config.MinOrderLocationInterval
	}
	return &LocationBroadcaster{
		ctx:      ctx,
		tracking: tracking,
		drivers:  drivers,
		source:   source,
		metrics:  m,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
}

// StartDriver begins publishing presence for driverID.
func (b *LocationBroadcaster) StartDriver(driverID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.coarse != nil && b.driverID == driverID {
		return
	}
	b.stopDriverLocked()

	b.driverID = driverID
	b.coarse = NewSampler(CoarseSampler, b.opts.DriverInterval, b.driverSample(driverID), b.logger)
	b.coarse.Start(b.ctx)
	b.logger.Info("driver location sampling started", slog.String("driver", driverID))
}

// StopDriver stops the coarse sampler and marks the presence node offline.
func (b *LocationBroadcaster) StopDriver() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopDriverLocked()
}

// StartOrder begins publishing the location of orderID.
func (b *LocationBroadcaster) StartOrder(orderID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fine != nil && b.orderID == orderID {
		return
	}
	b.stopOrderLocked()

	b.orderID = orderID
	b.fine = NewSampler(FineSampler, b.opts.OrderInterval, b.orderSample(orderID), b.logger)
	b.fine.Start(b.ctx)
	b.logger.Info("order location sampling started", slog.Int64("order", orderID))
}

// StopOrder stops the fine sampler if it belongs to orderID.
func (b *LocationBroadcaster) StopOrder(orderID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.orderID != orderID {
		return
	}
	b.stopOrderLocked()
}

// Stop halts both samplers.
func (b *LocationBroadcaster) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopOrderLocked()
	b.stopDriverLocked()
}

// Active returns the driver and order being sampled.
func (b *LocationBroadcaster) Active() (driverID string, orderID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.driverID, b.orderID
}

func (b *LocationBroadcaster) stopDriverLocked() {
	if b.coarse == nil {
		return
	}
	b.coarse.Stop()
	b.coarse = nil
	driverID := b.driverID
	b.driverID = ""
	b.logger.Info("driver location sampling stopped", slog.String("driver", driverID))

	point, ok := b.source.Current()
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(b.ctx), 5*time.Second)
	defer cancel()
	loc := model.DriverLocation{
		DriverID:  driverID,
		Latitude:  point.Latitude,
		Longitude: point.Longitude,
		Timestamp: b.now().UnixMilli(),
		IsOnline:  false,
	}
	if err := b.drivers.PutDriverLocation(ctx, loc); err != nil {
		b.logger.Warn("mark driver offline failed", slog.String("driver", driverID), slog.String("error", err.Error()))
	}
}

func (b *LocationBroadcaster) stopOrderLocked() {
	if b.fine == nil {
		return
	}
	b.fine.Stop()
	b.fine = nil
	b.logger.Info("order location sampling stopped", slog.Int64("order", b.orderID))
	b.orderID = 0
}

func (b *LocationBroadcaster) driverSample(driverID string) SampleFunc {
	return func(ctx context.Context) error {
		point, ok := b.source.Current()
		if !ok {
			b.metrics.ObserveLocationWrite(CoarseSampler, metrics.ResultSkipped)
			return nil
		}
		err := b.drivers.PutDriverLocation(ctx, model.DriverLocation{
			DriverID:  driverID,
			Latitude:  point.Latitude,
			Longitude: point.Longitude,
			Timestamp: b.now().UnixMilli(),
			IsOnline:  true,
		})
		return b.observe(CoarseSampler, driverID, err)
	}
}

func (b *LocationBroadcaster) orderSample(orderID int64) SampleFunc {
	return func(ctx context.Context) error {
		point, ok := b.source.Current()
		if !ok {
			b.metrics.ObserveLocationWrite(FineSampler, metrics.ResultSkipped)
			return nil
		}
		err := b.tracking.UpdateDriverLocation(ctx, orderID, model.TrackingLocation{
			Latitude:  point.Latitude,
			Longitude: point.Longitude,
			UpdatedAt: b.now().UnixMilli(),
		})
		return b.observe(FineSampler, strconv.FormatInt(orderID, 10), err)
	}
}

func (b *LocationBroadcaster) observe(sampler, target string, err error) error {
	switch {
	case err == nil:
		b.metrics.ObserveLocationWrite(sampler, metrics.ResultOK)
		return nil
	case errors.Is(err, domainErrors.ErrStaleLocation):
		b.metrics.ObserveLocationWrite(sampler, metrics.ResultStale)
		b.logger.Debug("stale location dropped", slog.String("sampler", sampler), slog.String("target", target))
		return nil
	default:
		b.metrics.ObserveLocationWrite(sampler, metrics.ResultFailed)
		return err
	}
}
