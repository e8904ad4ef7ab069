package backend

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/courieragent/internal/config"
)

// Module exposes the backend client implementation to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.BackendAddress, p.Config.BackendTimeout, p.Logger)
}
