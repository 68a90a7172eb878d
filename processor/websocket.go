package processor

import (
	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/remote"
	"go.qspeak.app/qspeak/state"
)

// WebsocketProcessor keeps the remote control server aligned with the
// persisted websocket settings.
type WebsocketProcessor struct {
	store  *state.Store
	bus    *Processor
	server *remote.Server
}

func NewWebsocketProcessor(store *state.Store, bus *Processor, server *remote.Server) *WebsocketProcessor {
	return &WebsocketProcessor{store: store, bus: bus, server: server}
}

// Register attaches the listener and applies the persisted settings, so a
// server enabled in a previous run comes back up at boot.
func (p *WebsocketProcessor) Register() {
	p.bus.RegisterEventListener("websocket_server", p.handle)
	p.apply(p.store.Context().WebsocketServer)
}

func (p *WebsocketProcessor) handle(e event.Event) error {
	if ev, ok := e.(event.ActionUpdateWebsocketServerSettings); ok {
		// The app listener persists the settings; this one restarts the
		// server when the effective config changed.
		p.apply(state.WebsocketServerContext{
			Enabled:  ev.Enabled,
			Port:     ev.Port,
			Password: ev.Password,
		})
	}
	return nil
}

func (p *WebsocketProcessor) apply(settings state.WebsocketServerContext) {
	port := settings.Port
	if port == 0 {
		port = state.DefaultWebsocketPort
	}
	password := settings.Password
	if password != nil && *password == "" {
		password = nil
	}
	p.server.ApplySettings(remote.Settings{
		Enabled:  settings.Enabled,
		Port:     port,
		Password: password,
	})
}
