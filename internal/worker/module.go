package worker

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/courieragent/internal/config"
	"github.com/polkiloo/courieragent/internal/domain/repository"
	"github.com/polkiloo/courieragent/internal/metrics"
	"github.com/polkiloo/courieragent/internal/usecase"
)

// Module provides the device location holder and the location broadcaster.
var Module = fx.Options(
	fx.Provide(
		NewDeviceLocation,
		func(d *DeviceLocation) LocationSource { return d },
		newLocationBroadcaster,
		func(b *LocationBroadcaster) usecase.OrderSampler { return b },
	),
)

type broadcasterParams struct {
	fx.In

	Ctx      context.Context
	Config   *config.Config
	Tracking repository.TrackingStore
	Drivers  repository.DriverLocationStore
	Source   LocationSource
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

func newLocationBroadcaster(p broadcasterParams) *LocationBroadcaster {
	return NewLocationBroadcaster(p.Ctx, p.Tracking, p.Drivers, p.Source, p.Metrics, Options{
		DriverInterval: p.Config.LocationInterval,
		OrderInterval:  p.Config.OrderLocationInterval,
	}, p.Logger)
}
