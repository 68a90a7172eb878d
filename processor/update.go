package processor

import (
	"context"

	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/state"
)

// Updater abstracts the platform self-update mechanism.
type Updater interface {
	// Check reports whether a newer version is available.
	Check(ctx context.Context) (bool, error)
	// DownloadAndInstall fetches the update, reporting progress as bytes
	// downloaded out of the total, and stages it for the next restart.
	DownloadAndInstall(ctx context.Context, progress func(downloaded, total uint64)) error
	// Restart relaunches the application into the staged update.
	Restart()
}

// UpdateProcessor drives the self-update state machine. A check runs
// automatically at registration.
type UpdateProcessor struct {
	store   *state.Store
	bus     *Processor
	updater Updater
}

func NewUpdateProcessor(store *state.Store, bus *Processor, updater Updater) *UpdateProcessor {
	return &UpdateProcessor{store: store, bus: bus, updater: updater}
}

func (p *UpdateProcessor) Register() {
	p.bus.RegisterEventListener("update", p.handle)
	p.bus.Dispatch(event.ActionCheckForUpdates{})
}

func (p *UpdateProcessor) handle(e event.Event) error {
	switch e.(type) {
	case event.ActionCheckForUpdates:
		go p.checkForUpdates()
	case event.ActionUpdateAndRestart:
		go p.updateAndRestart()
	}
	return nil
}

func (p *UpdateProcessor) setStatus(update state.UpdateContext) {
	p.store.Update(func(c *state.AppStateContext) {
		c.Update = update
	})
}

func (p *UpdateProcessor) checkForUpdates() {
	if p.updater == nil {
		p.setStatus(state.UpdateContext{Status: state.UpdateNotFound})
		return
	}
	p.setStatus(state.UpdateContext{Status: state.UpdateChecking})
	available, err := p.updater.Check(context.Background())
	switch {
	case err != nil:
		p.setStatus(state.UpdateContext{Status: state.UpdateError, Error: err.Error()})
	case available:
		p.setStatus(state.UpdateContext{Status: state.UpdateAvailable})
	default:
		p.setStatus(state.UpdateContext{Status: state.UpdateNotFound})
	}
}

func (p *UpdateProcessor) updateAndRestart() {
	if p.updater == nil {
		return
	}
	p.setStatus(state.UpdateContext{Status: state.UpdateDownloading})
	available, err := p.updater.Check(context.Background())
	if err != nil {
		p.setStatus(state.UpdateContext{Status: state.UpdateError, Error: err.Error()})
		return
	}
	if !available {
		p.setStatus(state.UpdateContext{Status: state.UpdateNotFound})
		return
	}

	err = p.updater.DownloadAndInstall(context.Background(), func(downloaded, total uint64) {
		p.setStatus(state.UpdateContext{
			Status:          state.UpdateDownloading,
			DownloadedBytes: downloaded,
		})
	})
	if err != nil {
		p.setStatus(state.UpdateContext{Status: state.UpdateError, Error: err.Error()})
		return
	}
	p.setStatus(state.UpdateContext{Status: state.UpdateDownloaded})
	p.updater.Restart()
}
