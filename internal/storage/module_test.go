package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/polkiloo/courieragent/internal/adapter/firebase"
	"github.com/polkiloo/courieragent/internal/config"
	"github.com/polkiloo/courieragent/internal/domain/repository"
	"github.com/polkiloo/courieragent/internal/storage/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestOpenMemory(t *testing.T) {
	store, err := Open(context.Background(), &config.Config{RealtimeBackend: config.BackendMemory}, discardLogger(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected *memory.Store, got %T", store)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), &config.Config{RealtimeBackend: "etcd"}, discardLogger(), nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestOpenPostgresBadDSN(t *testing.T) {
	cfg := &config.Config{RealtimeBackend: config.BackendPostgres, DatabaseURI: ":://bad"}
	if _, err := Open(context.Background(), cfg, discardLogger(), nil); err == nil {
		t.Fatal("expected error for bad dsn")
	}
}

func TestModuleProvidesStores(t *testing.T) {
	var (
		realtime repository.RealtimeStore
		tracking repository.TrackingStore
	)

	app := fxtest.New(t,
		fx.NopLogger,
		fx.Provide(
			func() context.Context { return context.Background() },
			func() *config.Config { return &config.Config{RealtimeBackend: config.BackendMemory} },
			discardLogger,
			func() *firebase.App { return firebase.NewApp(firebase.Options{}) },
		),
		Module,
		fx.Populate(&realtime, &tracking),
	)
	app.RequireStart()
	app.RequireStop()

	if realtime == nil || tracking == nil {
		t.Fatal("expected stores to be provided")
	}
	if realtime != tracking {
		t.Fatal("expected tracking store to be the realtime store")
	}
}
