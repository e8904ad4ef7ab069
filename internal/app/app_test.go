package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/courieragent/internal/config"
	"github.com/polkiloo/courieragent/internal/domain/model"
	testhelpers "github.com/polkiloo/courieragent/internal/test"
)

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{RunAddress: ":9999"}
	router := gin.New()
	server := newHTTPServer(serverParams{Config: cfg, Router: router})
	if server.Addr != ":9999" {
		t.Fatalf("expected address :9999, got %q", server.Addr)
	}
	if server.Handler != router {
		t.Fatalf("expected handler to be router")
	}
}

func lifecycleFor(r *rig, recorder *testhelpers.LifecycleRecorder, shutdowner fx.Shutdowner, server *http.Server, timeout time.Duration) {
	registerLifecycle(lifecycleParams{
		Lifecycle:   recorder,
		Shutdowner:  shutdowner,
		Logger:      r.logger,
		Server:      server,
		Drivers:     r.drivers,
		Tracker:     r.tracker,
		Feed:        r.feed,
		Broadcaster: r.broadcaster,
		Config:      &config.Config{ShutdownTimeout: timeout},
	})
}

func TestRegisterLifecycleStartStop(t *testing.T) {
	r := newRig(t)
	r.wire()
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	lifecycleFor(r, recorder, shutdowner, server, 100*time.Millisecond)

	if len(recorder.Hooks) != 1 {
		t.Fatalf("expected one hook registered, got %d", len(recorder.Hooks))
	}
	hook := recorder.Hooks[0]

	ctx := context.Background()
	if err := hook.OnStart(ctx); err != nil {
		t.Fatalf("on start failed: %v", err)
	}

	if _, err := r.drivers.LoadProfile(ctx, "driver-1"); err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if _, err := r.drivers.Toggle(ctx, true); err != nil {
		t.Fatalf("go online: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- hook.OnStop(context.Background())
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("on stop returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected on stop to finish")
	}

	driver, err := r.drivers.Profile()
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if driver.Status != model.DriverStatusOffline {
		t.Fatalf("expected driver to be taken offline, got %q", driver.Status)
	}
	if r.feed.Running() {
		t.Fatalf("expected order feed to stop")
	}
	if driverID, _ := r.broadcaster.Active(); driverID != "" {
		t.Fatalf("expected samplers to stop, got %q", driverID)
	}
	if r.backend.Calls("UpdateDriverStatus") != 2 {
		t.Fatalf("expected online and offline status writes, got %d", r.backend.Calls("UpdateDriverStatus"))
	}
}

func TestRegisterLifecycleShutdownOnServerError(t *testing.T) {
	r := newRig(t)
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	server := &http.Server{Addr: "bad addr"}
	lifecycleFor(r, recorder, shutdowner, server, time.Second)

	hook := recorder.Hooks[0]
	if err := hook.OnStart(context.Background()); err != nil {
		t.Fatalf("on start returned error: %v", err)
	}

	select {
	case <-shutdowner.Called:
	case <-time.After(time.Second):
		t.Fatal("expected shutdown to be triggered on server error")
	}

	_ = hook.OnStop(context.Background())
}

func TestRegisterLifecycleStopKeepsOfflineDriver(t *testing.T) {
	r := newRig(t)
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{}
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	lifecycleFor(r, recorder, shutdowner, server, 100*time.Millisecond)

	if _, err := r.drivers.LoadProfile(context.Background(), "driver-1"); err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if err := recorder.Hooks[0].OnStop(context.Background()); err != nil {
		t.Fatalf("on stop returned error: %v", err)
	}
	if r.backend.Calls("UpdateDriverStatus") != 0 {
		t.Fatalf("expected no status write for an offline driver")
	}
}

func TestShutdownerStub(t *testing.T) {
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	if err := shutdowner.Shutdown(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case <-shutdowner.Called:
	default:
		t.Fatal("expected shutdown notification")
	}
}
