package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/courieragent/internal/config"
	"github.com/polkiloo/courieragent/internal/domain/model"
	"github.com/polkiloo/courieragent/internal/domain/repository"
	"github.com/polkiloo/courieragent/internal/notify"
	"github.com/polkiloo/courieragent/internal/server/http/handlers"
	"github.com/polkiloo/courieragent/internal/server/ws"
	"github.com/polkiloo/courieragent/internal/usecase"
	"github.com/polkiloo/courieragent/internal/worker"
)

// Order stream message types.
const (
	TypeOrderUpdate = "order_update"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newCourierFacade,
		func(f *CourierFacade) handlers.CourierFacade { return f },
		newHTTPServer,
	),
	fx.Invoke(wireEvents, registerLifecycle),
)

type facadeParams struct {
	fx.In

	Auth       *usecase.AuthUseCase
	Drivers    *usecase.DriverStatusManager
	Tracker    *usecase.OrderTracker
	Wallets    *usecase.WalletUseCase
	Deliveries *usecase.DeliveryUseCase
	Tokens     *usecase.DeviceTokenUseCase
	Locations  repository.DriverLocationStore
	Tracking   repository.TrackingStore
	Device     *worker.DeviceLocation
	Popups     *notify.PopupManager
	Logger     *slog.Logger
}

func newCourierFacade(p facadeParams) *CourierFacade {
	return NewCourierFacade(FacadeDeps{
		Auth:       p.Auth,
		Drivers:    p.Drivers,
		Tracker:    p.Tracker,
		Wallets:    p.Wallets,
		Deliveries: p.Deliveries,
		Tokens:     p.Tokens,
		Locations:  p.Locations,
		Tracking:   p.Tracking,
		Device:     p.Device,
		Popups:     p.Popups,
		Logger:     p.Logger,
	})
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type eventParams struct {
	fx.In

	Drivers     *usecase.DriverStatusManager
	Tracker     *usecase.OrderTracker
	Feed        *usecase.DriverOrderFeed
	Broadcaster *worker.LocationBroadcaster
	Popups      *notify.PopupManager
	Hub         *ws.Hub
	Logger      *slog.Logger
}

// wireEvents connects the driver status, the order feed and the open order
// session to the samplers, the popups and the UI streams.
func wireEvents(p eventParams) {
	p.Drivers.OnStatusChange(func(_ context.Context, driver model.Driver) {
		if !driver.IsOnline() {
			p.Broadcaster.StopDriver()
			p.Feed.Stop()
			return
		}
		p.Broadcaster.StartDriver(driver.ID)
		if err := p.Feed.Start(driver.ID); err != nil {
			p.Logger.Warn("order feed not started", slog.String("driver", driver.ID), slog.String("error", err.Error()))
		}
	})

	p.Feed.OnEvent(func(ev usecase.FeedEvent) {
		publish(p.Hub, p.Logger, ws.TopicFeed, string(ev.Kind), ev)
		if ev.Kind != usecase.FeedNewOrder {
			return
		}
		address := ""
		if ev.Tracking != nil {
			address = ev.Tracking.ShippingAddress
		}
		p.Popups.Show(notify.NewOrderPopup(ev.OrderID, address))
	})

	p.Tracker.OnUpdate(func(u usecase.OrderUpdate) {
		publish(p.Hub, p.Logger, ws.OrderTopic(u.OrderID), TypeOrderUpdate, u)
	})

	p.Hub.SetMessageHandler(func(_ *ws.Client, msgType string, data json.RawMessage) error {
		if msgType != ws.TypeDismiss {
			return fmt.Errorf("unsupported message type %q", msgType)
		}
		var body struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return fmt.Errorf("decode dismiss: %w", err)
		}
		p.Popups.Dismiss(body.ID)
		return nil
	})
}

func publish(hub *ws.Hub, logger *slog.Logger, topic, msgType string, data any) {
	if err := hub.Publish(topic, msgType, data); err != nil {
		logger.Warn("stream publish failed", slog.String("topic", topic), slog.String("error", err.Error()))
	}
}

type lifecycleParams struct {
	fx.In

	Lifecycle   fx.Lifecycle
	Shutdowner  fx.Shutdowner
	Logger      *slog.Logger
	Server      *http.Server
	Drivers     *usecase.DriverStatusManager
	Tracker     *usecase.OrderTracker
	Feed        *usecase.DriverOrderFeed
	Broadcaster *worker.LocationBroadcaster
	Config      *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting courier agent", slog.String("addr", p.Server.Addr))
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			p.Drivers.ForceOffline(shutdownCtx)
			p.Tracker.Close()
			p.Feed.Stop()
			p.Broadcaster.Stop()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("courier agent stopped")
			return nil
		},
	})
}
