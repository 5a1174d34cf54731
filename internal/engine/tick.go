// Package engine provides the tick-driven animation driver.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler runs a task repeatedly at a mutable interval. Implementations
// must never run two invocations of the task at once.
type Scheduler interface {
	// Start cancels any running schedule and arms a new one.
	Start(interval time.Duration, task func())
	// Reset changes the interval of the running schedule. No-op when stopped.
	Reset(interval time.Duration)
	// Stop cancels the schedule. A task already in flight may still finish.
	Stop()
}

// TickScheduler is a Scheduler backed by a single goroutine and a time.Ticker.
type TickScheduler struct {
	parent context.Context

	mu     sync.Mutex
	cancel context.CancelFunc
	rearm  chan time.Duration
}

// NewTickScheduler creates a scheduler whose schedules end when ctx is done.
func NewTickScheduler(ctx context.Context) *TickScheduler {
	return &TickScheduler{parent: ctx}
}

func (s *TickScheduler) Start(interval time.Duration, task func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(s.parent)
	rearm := make(chan time.Duration, 1)
	s.cancel = cancel
	s.rearm = rearm

	go s.loop(ctx, interval, rearm, task)
}

func (s *TickScheduler) loop(ctx context.Context, interval time.Duration, rearm <-chan time.Duration, task func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	slog.Debug("schedule armed", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			slog.Debug("schedule cancelled")
			return
		case d := <-rearm:
			ticker.Reset(d)
			slog.Debug("schedule re-armed", "interval", d)
		case <-ticker.C:
			// A cancel that races with the tick wins.
			if ctx.Err() != nil {
				return
			}
			task()
		}
	}
}

func (s *TickScheduler) Reset(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return
	}
	// Keep only the newest interval.
	select {
	case <-s.rearm:
	default:
	}
	s.rearm <- interval
}

func (s *TickScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.rearm = nil
	}
}
