package processor

import (
	"testing"

	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/hub"
	"go.qspeak.app/qspeak/kobold"
	"go.qspeak.app/qspeak/state"
)

func newKoboldProcessor(t *testing.T, store *state.Store) *KoboldProcessor {
	t.Helper()
	cache, err := hub.NewCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	server := kobold.NewServer(t.TempDir(), nil, nil)
	return NewKoboldProcessor(store, newTestBus(t), server, cache, nil)
}

func TestKoboldStateChangeIsPersisted(t *testing.T) {
	store := newTestStore(t)
	p := newKoboldProcessor(t, store)

	if err := p.handle(event.KoboldServerStateChange{State: state.KoboldServerState{
		Phase: state.KoboldError,
		Error: "port in use",
	}}); err != nil {
		t.Fatal(err)
	}

	got := store.Context().Kobold.State
	if got.Phase != state.KoboldError || got.Error != "port in use" {
		t.Fatalf("kobold state = %+v", got)
	}
}

func TestKoboldErrorToRunningTransition(t *testing.T) {
	store := newTestStore(t)
	p := newKoboldProcessor(t, store)

	store.Update(func(c *state.AppStateContext) {
		c.Kobold.State = state.KoboldServerState{Phase: state.KoboldError, Error: "crashed"}
	})

	model := "qwen3-4b"
	if err := p.handle(event.KoboldServerStateChange{State: state.KoboldServerState{
		Phase: state.KoboldRunning,
		Model: &model,
	}}); err != nil {
		t.Fatal(err)
	}

	got := store.Context().Kobold.State
	if got.Phase != state.KoboldRunning || got.Model == nil || *got.Model != model {
		t.Fatalf("kobold state = %+v", got)
	}
	if got.Error != "" {
		t.Fatalf("stale error kept: %q", got.Error)
	}
}

func TestKoboldModelChangeIgnoredWhileIdle(t *testing.T) {
	store := newTestStore(t)
	p := newKoboldProcessor(t, store)

	// No running server, so the selection change must not touch the
	// kobold state.
	if err := p.handle(event.ActionChangeConversationModel{Model: strPtr("qwen3-4b")}); err != nil {
		t.Fatal(err)
	}
	if got := store.Context().Kobold.State.Phase; got != state.KoboldIdle {
		t.Fatalf("phase = %s, want Idle", got)
	}
}
