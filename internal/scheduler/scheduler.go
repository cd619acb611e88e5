// Package scheduler runs provider sweeps on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

const defaultSpec = "@every 6h"

// Sweeper runs all enabled searches of a provider
type Sweeper interface {
	RunProvider(ctx context.Context, provider string) (job.SweepResult, error)
}

// Config controls when sweeps run
type Config struct {
	Spec       string
	Providers  []string
	RunOnStart bool
}

// Scheduler wraps robfig/cron. Sweeps never overlap: a tick or startup sweep
// that begins while another sweep is still running is skipped.
type Scheduler struct {
	cron      *cron.Cron
	sweeper   Sweeper
	spec      string
	providers []string
	onStart   bool
	logger    *logging.Logger

	wg       sync.WaitGroup
	mu       sync.Mutex
	cancel   context.CancelFunc
	sweeping sync.Mutex
}

// New creates a Scheduler
func New(sweeper Sweeper, cfg Config, logger *logging.Logger) (*Scheduler, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("scheduler: sweeper is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	var providers []string
	for _, p := range cfg.Providers {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			providers = append(providers, p)
		}
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("scheduler: at least one provider is required")
	}

	spec := cfg.Spec
	if spec == "" {
		spec = defaultSpec
	}

	cl := cronLogger{l: logger.Named("cron")}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		sweeper:   sweeper,
		spec:      spec,
		providers: providers,
		onStart:   cfg.RunOnStart,
		logger:    logger,
	}, nil
}

// Start registers the sweep and starts the cron loop. With RunOnStart one
// sweep also starts immediately in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	if _, err := s.cron.AddFunc(s.spec, func() { s.Sweep(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("scheduler: add %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "spec", s.spec, "providers", strings.Join(s.providers, ","))

	if s.onStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.Sweep(runCtx)
		}()
	}

	return nil
}

// Sweep runs every configured provider one after another. It returns
// false without running anything when another sweep is in progress.
func (s *Scheduler) Sweep(ctx context.Context) bool {
	if !s.sweeping.TryLock() {
		s.logger.Warn("sweep skipped, previous sweep still running")
		return false
	}
	defer s.sweeping.Unlock()

	s.logger.Info("sweep started")

	for _, p := range s.providers {
		if ctx.Err() != nil {
			s.logger.Info("sweep cancelled", "provider", p)
			return true
		}

		res, err := s.sweeper.RunProvider(ctx, p)
		if err != nil {
			s.logger.Error("provider sweep failed", "provider", p, "err", err)
			continue
		}
		s.logger.Info("provider swept", "provider", p, "succeeded", res.Succeeded, "failed", res.Failed)
	}

	s.logger.Info("sweep complete")
	return true
}

// Stop stops scheduling and waits for a running sweep. When ctx expires
// first, the sweep is cancelled and Stop waits for it to wind down.
func (s *Scheduler) Stop(ctx context.Context) error {
	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.stopRuns()
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.stopRuns()
		<-done
		s.logger.Warn("scheduler stopped after cancelling running sweep")
		return ctx.Err()
	}
}

func (s *Scheduler) stopRuns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// cronLogger adapts logging.Logger to cron.Logger
type cronLogger struct {
	l *logging.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append(keysAndValues, "err", err)...)
}
