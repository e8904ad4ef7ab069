package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/courieragent/internal/adapter/backend"
	"github.com/polkiloo/courieragent/internal/adapter/firebase"
	"github.com/polkiloo/courieragent/internal/app"
	"github.com/polkiloo/courieragent/internal/config"
	"github.com/polkiloo/courieragent/internal/logger"
	"github.com/polkiloo/courieragent/internal/metrics"
	"github.com/polkiloo/courieragent/internal/notify"
	"github.com/polkiloo/courieragent/internal/pkg/auth"
	"github.com/polkiloo/courieragent/internal/server/http/router"
	"github.com/polkiloo/courieragent/internal/server/ws"
	"github.com/polkiloo/courieragent/internal/storage"
	"github.com/polkiloo/courieragent/internal/usecase"
	"github.com/polkiloo/courieragent/internal/worker"
)

// Module composes the application graph. Modules with stop hooks that the
// app depends on come first so that they stop after it.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		firebase.Module,
		storage.Module,
		backend.Module,
		auth.Module,
		worker.Module,
		usecase.Module,
		ws.Module,
		notify.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
