package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"postpilot/infrastructure/logger"
)

// Scheduler triggers one execution pass per tick. A tick that fires while a
// pass is still running is skipped, never queued, so long passes cannot pile
// up.
type Scheduler struct {
	executor *PostExecutor
	tick     time.Duration

	mu       sync.Mutex
	stop     chan struct{}
	done     chan struct{}
	inFlight atomic.Bool
}

func NewScheduler(executor *PostExecutor, tick time.Duration) *Scheduler {
	if tick <= 0 {
		tick = time.Minute
	}
	return &Scheduler{executor: executor, tick: tick}
}

// Start launches the tick loop. Calling Start on a running scheduler is a
// no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		logger.GetLogger().Info("Scheduler already running")
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.run(ctx, s.stop, s.done)
	logger.GetLogger().WithField("tick", s.tick.String()).Info("Scheduler started")
}

// Stop halts the tick loop and waits for an in-flight pass to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
	logger.GetLogger().Info("Scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single pass unless one is already in flight. Returns
// true when the pass ran. Also serves the manual-trigger endpoint.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	if !s.inFlight.CompareAndSwap(false, true) {
		logger.GetLogger().Info("Execution pass already in flight, skipping tick")
		return false
	}
	defer s.inFlight.Store(false)
	s.executor.ExecutePending(ctx)
	return true
}
