package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.After(timeout)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for condition")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNewSamplerDefaults(t *testing.T) {
	s := NewSampler("x", 0, func(context.Context) error { return nil }, discardLogger())
	if s.Interval() != time.Second {
		t.Fatalf("expected interval default to 1s, got %s", s.Interval())
	}
}

func TestSamplerKeepsSamplingAfterErrors(t *testing.T) {
	var calls atomic.Int32
	s := NewSampler("x", 5*time.Millisecond, func(context.Context) error {
		calls.Add(1)
		return errors.New("write failed")
	}, discardLogger())

	s.Start(context.Background())
	s.Start(context.Background())
	waitFor(t, time.Second, func() bool { return calls.Load() >= 3 })

	if !s.Running() {
		t.Fatal("expected sampler to run")
	}
	s.Stop()
	if s.Running() {
		t.Fatal("expected sampler to stop")
	}

	after := calls.Load()
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != after {
		t.Fatal("sampler kept running after stop")
	}
}

func TestSamplerFirstSampleImmediate(t *testing.T) {
	var calls atomic.Int32
	s := NewSampler("x", time.Hour, func(context.Context) error {
		calls.Add(1)
		return nil
	}, discardLogger())
	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, time.Second, func() bool { return calls.Load() == 1 })
}

func TestSamplerStopsWithParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	s := NewSampler("x", 5*time.Millisecond, func(context.Context) error {
		calls.Add(1)
		return nil
	}, discardLogger())
	s.Start(ctx)
	waitFor(t, time.Second, func() bool { return calls.Load() >= 1 })
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop did not return")
	}
}
