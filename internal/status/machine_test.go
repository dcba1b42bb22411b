package status

import (
	"sync"
	"testing"
	"time"
)

type capture struct {
	mu        sync.Mutex
	snapshots []Snapshot
}

func (c *capture) listen(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots = append(c.snapshots, s)
}

func (c *capture) states() []State {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]State, 0, len(c.snapshots))
	for _, s := range c.snapshots {
		out = append(out, s.State)
	}
	return out
}

func TestTransitionsIssueFreshTokens(t *testing.T) {
	m := NewMachine()
	defer m.Close()

	first := m.Current().Token
	m.Active("model.loctree.json")
	second := m.Current().Token
	if first == second {
		t.Fatal("expected a fresh token per transition")
	}
	m.Status("generated 3 files", true, 0)
	if m.Current().Token == second {
		t.Fatal("expected a fresh token per transition")
	}
}

func TestTimedReturnToIdle(t *testing.T) {
	rec := &capture{}
	m := NewMachine(WithListener(rec.listen))
	defer m.Close()

	m.Status("done", true, 20*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if m.Current().State == StateIdle {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("machine never returned to idle")
		}
		time.Sleep(5 * time.Millisecond)
	}

	states := rec.states()
	if len(states) != 2 || states[0] != StateStatus || states[1] != StateIdle {
		t.Fatalf("unexpected transition sequence %v", states)
	}
}

func TestStaleTimerIsNoOp(t *testing.T) {
	m := NewMachine()
	defer m.Close()

	// Schedule a quick return to idle, then supersede it before it fires.
	m.Status("first", true, 15*time.Millisecond)
	m.Error("second failed", "diagnostic detail", time.Hour)
	errorToken := m.Current().Token

	time.Sleep(60 * time.Millisecond)

	current := m.Current()
	if current.State != StateError {
		t.Fatalf("stale timer reverted state to %q", current.State)
	}
	if current.Token != errorToken {
		t.Fatal("token changed without a transition")
	}
}

func TestTokenMonotonicAcrossRapidStatuses(t *testing.T) {
	m := NewMachine()
	defer m.Close()

	for i := 0; i < 10; i++ {
		m.Status("run", true, 5*time.Millisecond)
		m.Error("fail", "", time.Hour)
	}

	time.Sleep(50 * time.Millisecond)
	if got := m.Current().State; got != StateError {
		t.Fatalf("expected final error state to survive stale timers, got %q", got)
	}
}

func TestCloseStopsTimers(t *testing.T) {
	rec := &capture{}
	m := NewMachine(WithListener(rec.listen))

	m.Status("done", true, 10*time.Millisecond)
	m.Close()

	time.Sleep(40 * time.Millisecond)
	for _, state := range rec.states() {
		if state == StateIdle {
			t.Fatal("timer fired after Close")
		}
	}
}
