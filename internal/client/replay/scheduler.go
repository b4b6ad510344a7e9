package replay

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/storysync/internal/logging"
)

// Runner runs one replay pass.
type Runner interface {
	Replay(ctx context.Context) (Result, error)
}

// Pinger checks whether the API can be reached.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Scheduler watches connectivity and triggers replay passes. A pass runs
// when a replay has been requested and the API answers, and whenever the
// connection comes back after being lost.
type Scheduler struct {
	runner      Runner
	pinger      Pinger
	interval    time.Duration
	pingTimeout time.Duration
	logger      logging.Logger

	requests chan struct{}

	mu     sync.RWMutex
	online bool

	// pending is owned by the Run goroutine.
	pending bool
}

func NewScheduler(runner Runner, pinger Pinger, interval time.Duration, logger logging.Logger) *Scheduler {
	return &Scheduler{
		runner:      runner,
		pinger:      pinger,
		interval:    interval,
		pingTimeout: 5 * time.Second,
		logger:      logger,
		requests:    make(chan struct{}, 1),
	}
}

// Request asks for a replay pass as soon as the API is reachable. Requests
// made before the pass starts are coalesced. It never blocks.
func (s *Scheduler) Request() {
	select {
	case s.requests <- struct{}{}:
	default:
	}
}

func (s *Scheduler) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

func (s *Scheduler) setOnline(v bool) (was bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	was, s.online = s.online, v
	return was
}

// Run blocks until ctx is done. Submissions queued by an earlier session
// are replayed on the first successful check.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.pending = true
	s.check(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.requests:
			s.pending = true
			s.check(ctx)
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *Scheduler) check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	online := s.pinger.Ping(pingCtx) == nil
	cancel()

	was := s.setOnline(online)
	switch {
	case online && !was:
		s.logger.Info(ctx, "connection restored")
		s.pending = true
	case !online && was:
		s.logger.Warn(ctx, "connection lost, working offline")
	}

	if !online || !s.pending {
		return
	}
	s.pending = false

	if _, err := s.runner.Replay(ctx); err != nil {
		s.logger.Error(ctx, "replay failed", "error", err)
	}
}
