package session

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type memJournal struct {
	mu      sync.Mutex
	entries []Entry
	err     error
}

func (j *memJournal) Record(_ context.Context, e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return j.err
}

func TestMirrorJournalsEveryIntent(t *testing.T) {
	j := &memJournal{}
	m := NewMirror(j)
	ctx := context.Background()

	m.Handle(ctx, Intent{Action: ActionStart})
	m.Handle(ctx, Intent{Action: ActionStart})
	m.Handle(ctx, Intent{Action: ActionStop})

	if len(j.entries) != 3 {
		t.Fatalf("journal has %d entries, want 3", len(j.entries))
	}
	if j.entries[1].Response.Message != MsgAlreadyRunning {
		t.Errorf("second entry = %+v", j.entries[1])
	}
	seen := map[string]bool{}
	for _, e := range j.entries {
		if e.ID == "" || seen[e.ID] {
			t.Errorf("entry id %q missing or duplicated", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestMirrorSurvivesJournalFailure(t *testing.T) {
	m := NewMirror(&memJournal{err: errors.New("disk full")})
	resp := m.Handle(context.Background(), Intent{Action: ActionStart})
	if !resp.Success || !m.Snapshot().Running {
		t.Errorf("journal failure leaked into the intent: %+v", resp)
	}
}

func TestMirrorSerializesConcurrentStarts(t *testing.T) {
	m := NewMirror(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Handle(ctx, Intent{Action: ActionStart}).Success {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("%d concurrent starts succeeded, want exactly 1", wins)
	}
}
