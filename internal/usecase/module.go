package usecase

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/courieragent/internal/adapter/backend"
	"github.com/polkiloo/courieragent/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newDriverStatusManager,
	newOrderTracker,
	newDriverOrderFeed,
	newWalletUseCase,
	newDeliveryUseCase,
	newDeviceTokenUseCase,
	NewAuthUseCase,
)

type trackerParams struct {
	fx.In

	Ctx     context.Context
	Backend backend.Client
	Store   repository.TrackingStore
	Sampler OrderSampler
	Logger  *slog.Logger
}

func newDriverStatusManager(client backend.Client, logger *slog.Logger) *DriverStatusManager {
	return NewDriverStatusManager(client, logger)
}

func newOrderTracker(p trackerParams) *OrderTracker {
	return NewOrderTracker(p.Ctx, p.Backend, p.Store, p.Sampler, p.Logger)
}

func newDriverOrderFeed(ctx context.Context, store repository.TrackingStore, logger *slog.Logger) *DriverOrderFeed {
	return NewDriverOrderFeed(ctx, store, logger)
}

func newWalletUseCase(client backend.Client) *WalletUseCase {
	return NewWalletUseCase(client)
}

func newDeliveryUseCase(client backend.Client) *DeliveryUseCase {
	return NewDeliveryUseCase(client)
}

func newDeviceTokenUseCase(client backend.Client) *DeviceTokenUseCase {
	return NewDeviceTokenUseCase(client)
}
