package processor

import (
	"context"
	"log/slog"

	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/hub"
	"go.qspeak.app/qspeak/kobold"
	"go.qspeak.app/qspeak/state"
)

// KoboldProcessor supervises the bundled local inference server. It swaps
// the loaded model when the user picks a different conversation model and
// restarts the server when it falls back to idle while it should run.
type KoboldProcessor struct {
	store  *state.Store
	bus    *Processor
	server *kobold.Server
	cache  *hub.Cache
	log    *slog.Logger
}

func NewKoboldProcessor(store *state.Store, bus *Processor, server *kobold.Server, cache *hub.Cache, log *slog.Logger) *KoboldProcessor {
	if log == nil {
		log = slog.Default()
	}
	return &KoboldProcessor{store: store, bus: bus, server: server, cache: cache, log: log}
}

// Register attaches the listener and launches the server.
func (p *KoboldProcessor) Register() {
	p.bus.RegisterEventListener("kobold_server", p.handle)
	go func() {
		if err := p.server.Start(); err != nil {
			p.log.Error("failed to start kobold server", "error", err)
		}
	}()
}

func (p *KoboldProcessor) handle(e event.Event) error {
	current := p.store.Context().Kobold.State

	switch ev := e.(type) {
	case event.ActionChangeConversationModel:
		// The app listener persists the selection; reload the server's
		// model only while it is running.
		if current.Phase == state.KoboldRunning {
			p.changeModel()
		}

	case event.KoboldServerStateChange:
		switch {
		case current.Phase == state.KoboldRunning && ev.State.Phase == state.KoboldIdle:
			p.log.Info("kobold server went idle, restarting")
			p.setServerState(ev.State)
			go func() {
				if err := p.server.Start(); err != nil {
					p.log.Error("failed to restart kobold server", "error", err)
				}
			}()
		case current.Phase == state.KoboldIdle && ev.State.Phase == state.KoboldRunning:
			p.setServerState(ev.State)
			p.changeModel()
		default:
			p.setServerState(ev.State)
		}
	}
	return nil
}

func (p *KoboldProcessor) setServerState(st state.KoboldServerState) {
	p.store.Update(func(c *state.AppStateContext) {
		c.Kobold.State = st
	})
}

// changeModel reconciles the server's loaded model with the selected
// conversation model. Cloud models unload whatever is resident.
func (p *KoboldProcessor) changeModel() {
	ctx := p.store.Context()

	var desired *string
	var config *kobold.ModelConfig
	if ctx.ConversationModel != nil {
		desired = ctx.ConversationModel
		for _, model := range ctx.Models.ConversationModels {
			if model.Model != *desired {
				continue
			}
			if model.IsLocal && model.Repository != nil {
				cfg := kobold.ModelConfig{ModelParam: p.cache.Path(*model.Repository, model.Model)}
				if model.Vision != nil && model.Vision.IsLocal && model.Vision.Repository != nil {
					mmproj := p.cache.Path(*model.Vision.Repository, model.Vision.Name)
					cfg.MMProj = &mmproj
				}
				config = &cfg
			}
			break
		}
	}

	go func() {
		current, err := p.server.CurrentModel(context.Background())
		if err != nil {
			p.log.Error("failed to read current kobold model", "error", err)
			return
		}
		if current == nil && desired == nil {
			return
		}
		if current != nil && desired != nil && *current == *desired {
			return
		}
		if err := p.server.ChangeModel(context.Background(), config); err != nil {
			p.log.Error("failed to change kobold model", "error", err)
		}
	}()
}
