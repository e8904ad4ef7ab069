// Package storage selects the realtime store backend.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/courieragent/internal/adapter/firebase"
	"github.com/polkiloo/courieragent/internal/config"
	"github.com/polkiloo/courieragent/internal/domain/repository"
	fbstore "github.com/polkiloo/courieragent/internal/storage/firebase"
	"github.com/polkiloo/courieragent/internal/storage/memory"
	"github.com/polkiloo/courieragent/internal/storage/postgres"
	redisstore "github.com/polkiloo/courieragent/internal/storage/redis"
)

// Module wires the configured realtime store and closes it on stop.
var Module = fx.Options(
	fx.Provide(newStore),
	fx.Provide(
		func(s repository.RealtimeStore) repository.TrackingStore { return s },
		func(s repository.RealtimeStore) repository.DriverLocationStore { return s },
	),
	fx.Invoke(registerLifecycle),
)

type storeParams struct {
	fx.In

	Ctx      context.Context
	Config   *config.Config
	Logger   *slog.Logger
	Firebase *firebase.App
}

func newStore(p storeParams) (repository.RealtimeStore, error) {
	return Open(p.Ctx, p.Config, p.Logger, p.Firebase)
}

// Open connects the backend named by cfg.RealtimeBackend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, app *firebase.App) (repository.RealtimeStore, error) {
	logger.Info("opening realtime store", slog.String("backend", cfg.RealtimeBackend))

	switch cfg.RealtimeBackend {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendRedis:
		return redisstore.New(ctx, redisstore.Options{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
	case config.BackendPostgres:
		return postgres.New(ctx, cfg.DatabaseURI, logger)
	case config.BackendFirebase:
		client, err := app.Database(ctx)
		if err != nil {
			return nil, err
		}
		return fbstore.New(client, cfg.FirebasePollInterval, logger), nil
	default:
		return nil, fmt.Errorf("unknown realtime backend %q", cfg.RealtimeBackend)
	}
}

func registerLifecycle(lc fx.Lifecycle, store repository.RealtimeStore, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := store.Close(); err != nil {
				logger.Warn("close realtime store", slog.String("error", err.Error()))
			}
			return nil
		},
	})
}
