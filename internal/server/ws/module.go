package ws

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/courieragent/internal/notify"
)

// Module provides the hub, exposes it as the popup presenter and runs it for
// the lifetime of the application.
var Module = fx.Options(
	fx.Provide(
		NewHub,
		func(h *Hub) notify.Presenter { return h },
	),
	fx.Invoke(registerLifecycle),
)

type lifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Ctx       context.Context
	Hub       *Hub
	Logger    *slog.Logger
}

func registerLifecycle(p lifecycleParams) {
	ctx, cancel := context.WithCancel(p.Ctx)
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go p.Hub.Run(ctx)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-p.Hub.done:
			case <-stopCtx.Done():
				p.Logger.Warn("websocket hub did not stop in time")
			}
			return nil
		},
	})
}
