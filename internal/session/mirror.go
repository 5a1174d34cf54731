package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one handled intent as written to a Journal.
type Entry struct {
	ID       string
	Action   Action
	Response Response
	State    State
	At       time.Time
}

// Journal records handled intents. It is an audit trail; the mirror never
// reads its state back.
type Journal interface {
	Record(ctx context.Context, e Entry) error
}

// Mirror owns the session state and serializes every transition.
type Mirror struct {
	mu      sync.Mutex
	state   State
	journal Journal
	now     func() time.Time
}

// NewMirror creates a stopped session. journal may be nil.
func NewMirror(journal Journal) *Mirror {
	return &Mirror{
		state:   NewState(),
		journal: journal,
		now:     time.Now,
	}
}

// Handle applies in and journals the outcome.
func (m *Mirror) Handle(ctx context.Context, in Intent) Response {
	m.mu.Lock()
	next, resp := Apply(m.state, in)
	m.state = next
	m.mu.Unlock()

	slog.Info("session intent",
		"action", in.Action,
		"success", resp.Success,
		"running", next.Running,
		"paused", next.Paused,
	)

	if m.journal != nil {
		entry := Entry{
			ID:       uuid.NewString(),
			Action:   in.Action,
			Response: resp,
			State:    next,
			At:       m.now(),
		}
		if err := m.journal.Record(ctx, entry); err != nil {
			slog.Warn("journal write failed", "action", in.Action, "error", err)
		}
	}
	return resp
}

// Snapshot returns the current session state.
func (m *Mirror) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
