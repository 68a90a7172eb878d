package processor

import (
	"testing"

	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/state"
)

func TestGetReleasesSuccessReplacesList(t *testing.T) {
	store := newTestStore(t)
	p := NewReleasesProcessor(store, newTestBus(t), nil)

	p.handle(event.ActionGetReleasesSuccess{Releases: []state.Release{
		{ID: "1", Version: "1.2.0", Description: "Bug fixes"},
		{ID: "2", Version: "1.3.0", Description: "New personas"},
	}})

	releases := store.Context().Releases.Releases
	if len(releases) != 2 || releases[1].Version != "1.3.0" {
		t.Fatalf("releases = %+v", releases)
	}
}

func TestGetReleasesErrorIsSurfaced(t *testing.T) {
	store := newTestStore(t)
	p := NewReleasesProcessor(store, newTestBus(t), nil)

	p.handle(event.ActionGetReleasesError{Error: "fetch failed"})
	errs := store.Context().Errors
	if len(errs) != 1 || errs[0].Message != "fetch failed" {
		t.Fatalf("errors = %+v", errs)
	}
}
