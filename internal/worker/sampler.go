package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SampleFunc performs one sample. Its error is logged and sampling goes on.
type SampleFunc func(ctx context.Context) error

// Sampler runs a SampleFunc on a fixed interval until stopped.
type Sampler struct {
	name     string
	interval time.Duration
	sample   SampleFunc
	logger   *slog.Logger

	mu     sync.Mutex
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewSampler constructs Sampler. Non-positive intervals become one second.
func NewSampler(name string, interval time.Duration, sample SampleFunc, logger *slog.Logger) *Sampler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Sampler{name: name, interval: interval, sample: sample, logger: logger}
}

// Start launches the ticker loop. The first sample is taken immediately.
// Starting a running sampler is a no-op.
func (s *Sampler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(runCtx)
	s.logger.Debug("sampler started", slog.String("sampler", s.name), slog.Duration("interval", s.interval))
}

// Stop cancels the loop and waits for it to finish.
func (s *Sampler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Running reports whether the loop is active.
func (s *Sampler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Interval returns the sampling period.
func (s *Sampler) Interval() time.Duration {
	return s.interval
}

func (s *Sampler) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Sampler) tick(ctx context.Context) {
	if err := s.sample(ctx); err != nil && ctx.Err() == nil {
		s.logger.Warn("location sample failed", slog.String("sampler", s.name), slog.String("error", err.Error()))
	}
}
