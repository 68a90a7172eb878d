package processor

import (
	"sync"
	"testing"
	"time"

	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/state"
)

func newTestStore(t *testing.T) *state.Store {
	t.Helper()
	s, err := state.NewStore(nil, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// newTestBus returns a bus that is not started. Dispatched events queue up
// without being delivered, which keeps handler tests synchronous.
func newTestBus(t *testing.T) *Processor {
	t.Helper()
	p := New(nil)
	t.Cleanup(p.Close)
	return p
}

// newRunningBus returns a started bus for tests that exercise event flow
// between listeners.
func newRunningBus(t *testing.T) *Processor {
	t.Helper()
	p := New(nil)
	p.Start()
	t.Cleanup(p.Close)
	return p
}

// eventRecorder captures the names of delivered events.
type eventRecorder struct {
	mu    sync.Mutex
	names []string
}

func recordEvents(bus *Processor) *eventRecorder {
	r := &eventRecorder{}
	bus.RegisterEventListener("recorder", func(e event.Event) error {
		r.mu.Lock()
		r.names = append(r.names, e.Name())
		r.mu.Unlock()
		return nil
	})
	return r
}

func (r *eventRecorder) seen(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.names {
		if n == name {
			return true
		}
	}
	return false
}

func waitFor(t *testing.T, msg string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func strPtr(s string) *string { return &s }
