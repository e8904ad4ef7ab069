// Package notify shows driver popups, one at a time.
package notify

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/courieragent/internal/config"
	"github.com/polkiloo/courieragent/internal/metrics"
)

// Module provides PopupManager. A Presenter must be supplied elsewhere.
var Module = fx.Options(
	fx.Provide(newPopupManager),
	fx.Invoke(registerLifecycle),
)

type managerParams struct {
	fx.In

	Config    *config.Config
	Presenter Presenter
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

func newPopupManager(p managerParams) *PopupManager {
	return NewPopupManager(p.Presenter, p.Metrics, Options{OrderTimeout: p.Config.PopupTimeout}, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, m *PopupManager) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			m.Close()
			return nil
		},
	})
}
