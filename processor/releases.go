package processor

import (
	"context"

	"go.qspeak.app/qspeak/api"
	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/state"
)

// ReleasesProcessor fetches the published release notes for the what's-new
// screen. The fetch runs off the bus goroutine and reports back as events.
type ReleasesProcessor struct {
	store    *state.Store
	bus      *Processor
	releases *api.Releases
}

func NewReleasesProcessor(store *state.Store, bus *Processor, releases *api.Releases) *ReleasesProcessor {
	return &ReleasesProcessor{store: store, bus: bus, releases: releases}
}

func (p *ReleasesProcessor) Register() {
	p.bus.RegisterEventListener("releases", p.handle)
}

func (p *ReleasesProcessor) handle(e event.Event) error {
	switch ev := e.(type) {
	case event.ActionGetReleases:
		go func() {
			releases, err := p.releases.GetReleases(context.Background())
			if err != nil {
				p.bus.Dispatch(event.ActionGetReleasesError{Error: err.Error()})
				return
			}
			p.bus.Dispatch(event.ActionGetReleasesSuccess{Releases: releases})
		}()
	case event.ActionGetReleasesSuccess:
		p.store.Update(func(c *state.AppStateContext) {
			c.Releases.Releases = ev.Releases
		})
	case event.ActionGetReleasesError:
		p.store.Update(func(c *state.AppStateContext) {
			c.Errors = append(c.Errors, state.NewAppError(ev.Error))
		})
	}
	return nil
}
