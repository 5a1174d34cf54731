package engine

import (
	"sync"
	"time"
)

// ManualScheduler fires only when told to. Tests use it to drive the engine
// without timers, and the text display uses it to emit an exact frame count.
type ManualScheduler struct {
	mu       sync.Mutex
	task     func()
	interval time.Duration
	starts   int
}

func (m *ManualScheduler) Start(interval time.Duration, task func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.task = task
	m.interval = interval
	m.starts++
}

func (m *ManualScheduler) Reset(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.task != nil {
		m.interval = interval
	}
}

func (m *ManualScheduler) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.task = nil
}

// Fire runs the armed task n times. It reports false if nothing is armed.
func (m *ManualScheduler) Fire(n int) bool {
	for range n {
		m.mu.Lock()
		task := m.task
		m.mu.Unlock()
		if task == nil {
			return false
		}
		task()
	}
	return true
}

// Armed reports whether a schedule is active.
func (m *ManualScheduler) Armed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.task != nil
}

// Interval returns the interval of the current or last schedule.
func (m *ManualScheduler) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}

// Starts counts how many schedules have been armed.
func (m *ManualScheduler) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}
