package processor

import (
	"sync"
	"testing"
	"time"

	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/hotkey"
	"go.qspeak.app/qspeak/state"
)

type fakeBinder struct {
	mu       sync.Mutex
	bindings []hotkey.Binding
}

func (f *fakeBinder) Apply(bindings []hotkey.Binding) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bindings = bindings
}

func (f *fakeBinder) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.bindings))
	for i, b := range f.bindings {
		out[i] = b.Name
	}
	return out
}

func (f *fakeBinder) has(name string) bool {
	for _, n := range f.names() {
		if n == name {
			return true
		}
	}
	return false
}

func TestReconcileBindsConditionalShortcuts(t *testing.T) {
	store := newTestStore(t)
	binder := &fakeBinder{}
	p := NewShortcutsProcessor(store, newTestBus(t), binder, nil)

	p.reconcile()
	if !binder.has("recording") || !binder.has("personas") || !binder.has("switch_language") {
		t.Fatalf("missing base bindings: %v", binder.names())
	}
	// Idle conversation, closed window: screenshot and copy text are
	// bound, close is not.
	if !binder.has("screenshot") || !binder.has("copy_text") || binder.has("close") {
		t.Fatalf("conditional bindings wrong: %v", binder.names())
	}

	store.Update(func(c *state.AppStateContext) {
		c.RecordingWindow.State = state.WindowOpen
		c.Conversation.State = state.ConversationTransforming
	})
	p.reconcile()
	if !binder.has("close") {
		t.Fatalf("close not bound while window open: %v", binder.names())
	}
	if binder.has("screenshot") || binder.has("copy_text") {
		t.Fatalf("capture shortcuts bound while transforming: %v", binder.names())
	}
}

func TestShortcutUpdateReplacesBindings(t *testing.T) {
	store := newTestStore(t)
	binder := &fakeBinder{}
	p := NewShortcutsProcessor(store, newTestBus(t), binder, nil)

	updated := state.DefaultShortcuts()
	updated.Recording = []string{"Control", "Shift", "R"}
	if err := p.handle(event.ShortcutUpdate{Shortcuts: updated}); err != nil {
		t.Fatal(err)
	}

	if got := store.Context().Shortcuts.Recording; len(got) != 3 || got[2] != "R" {
		t.Fatalf("shortcuts not stored: %v", got)
	}
	for _, b := range binder.bindings {
		if b.Name == "recording" {
			if len(b.Keys) != 3 || b.Keys[2] != "R" {
				t.Fatalf("recording binding keys = %v", b.Keys)
			}
			return
		}
	}
	t.Fatal("recording binding missing")
}

func TestPushToTalkStopsRecordingAfterLongHold(t *testing.T) {
	store := newTestStore(t)
	bus := newRunningBus(t)
	rec := recordEvents(bus)
	p := NewShortcutsProcessor(store, bus, &fakeBinder{}, nil)

	pressed := time.Now().Add(-time.Second).UnixMilli()
	store.Update(func(c *state.AppStateContext) {
		c.Utils.RecordingTimer = &pressed
		c.Conversation.State = state.ConversationListening
	})

	p.onRecordingReleased()
	waitFor(t, "stop event dispatched", func() bool { return rec.seen("ActionRecording") })
}

func TestPushToTalkShortPressTogglesOnly(t *testing.T) {
	store := newTestStore(t)
	bus := newRunningBus(t)
	rec := recordEvents(bus)
	p := NewShortcutsProcessor(store, bus, &fakeBinder{}, nil)

	pressed := time.Now().UnixMilli()
	store.Update(func(c *state.AppStateContext) {
		c.Utils.RecordingTimer = &pressed
		c.Conversation.State = state.ConversationListening
	})

	p.onRecordingReleased()
	bus.Dispatch(event.ActionGetReleases{})
	waitFor(t, "marker event delivered", func() bool { return rec.seen("ActionGetReleases") })
	if rec.seen("ActionRecording") {
		t.Fatal("short press must not dispatch a stop event")
	}
}

func TestPushToTalkIgnoredWhenNotListening(t *testing.T) {
	store := newTestStore(t)
	bus := newRunningBus(t)
	rec := recordEvents(bus)
	p := NewShortcutsProcessor(store, bus, &fakeBinder{}, nil)

	pressed := time.Now().Add(-time.Second).UnixMilli()
	store.Update(func(c *state.AppStateContext) {
		c.Utils.RecordingTimer = &pressed
	})

	p.onRecordingReleased()
	bus.Dispatch(event.ActionGetReleases{})
	waitFor(t, "marker event delivered", func() bool { return rec.seen("ActionGetReleases") })
	if rec.seen("ActionRecording") {
		t.Fatal("release outside of listening must not dispatch")
	}
}
