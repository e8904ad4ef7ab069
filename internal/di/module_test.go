package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/courieragent/internal/adapter/backend"
	"github.com/polkiloo/courieragent/internal/app"
	"github.com/polkiloo/courieragent/internal/config"
	"github.com/polkiloo/courieragent/internal/server/http/handlers"
	"github.com/polkiloo/courieragent/internal/server/ws"
	"github.com/polkiloo/courieragent/internal/test"
)

func testConfig() *config.Config {
	return &config.Config{
		RunAddress:            "127.0.0.1:0",
		BackendAddress:        "http://localhost",
		BackendTimeout:        time.Second,
		RealtimeBackend:       config.BackendMemory,
		JWTSecret:             "secret",
		TokenTTL:              time.Hour,
		InsecureAuth:          true,
		LocationInterval:      time.Second,
		OrderLocationInterval: 3 * time.Second,
		PopupTimeout:          time.Second,
		ShutdownTimeout:       time.Second,
	}
}

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	var (
		facade *app.CourierFacade
		api    handlers.CourierFacade
		hub    *ws.Hub
	)
	fxApp := fx.New(
		fx.NopLogger,
		fx.Provide(func() context.Context { return context.Background() }),
		Module(
			fx.Replace(testConfig()),
			fx.Replace(logger),
			fx.Replace(backend.Client(&test.BackendStub{})),
		),
		fx.Populate(&facade, &api, &hub),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	if facade == nil || api == nil || hub == nil {
		t.Fatal("expected courier facade and hub instances")
	}
}

func TestModuleStartsAndStops(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	fxApp := fx.New(
		fx.NopLogger,
		fx.Provide(func() context.Context { return context.Background() }),
		Module(
			fx.Replace(testConfig()),
			fx.Replace(logger),
			fx.Replace(backend.Client(&test.BackendStub{})),
		),
	)
	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fxApp.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := fxApp.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
