package processor

import (
	"context"
	"fmt"
	"log/slog"

	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/mcp"
	"go.qspeak.app/qspeak/state"
)

// MCPProcessor manages the configured tool servers: the persisted configs
// in the state tree and the live client connections in the registry.
// Connect and disconnect run off the bus goroutine; the config state moves
// through Starting/Stopping immediately for user feedback.
type MCPProcessor struct {
	store    *state.Store
	bus      *Processor
	registry *mcp.Registry
	log      *slog.Logger
}

func NewMCPProcessor(store *state.Store, bus *Processor, registry *mcp.Registry, log *slog.Logger) *MCPProcessor {
	if log == nil {
		log = slog.Default()
	}
	return &MCPProcessor{store: store, bus: bus, registry: registry, log: log}
}

// Register attaches the listener and brings up every enabled server.
func (p *MCPProcessor) Register() {
	p.bus.RegisterEventListener("mcp_processor", p.handle)
	go p.startEnabledServers()
}

func (p *MCPProcessor) handle(e event.Event) error {
	switch ev := e.(type) {
	case event.ActionAddTool:
		p.addTool(ev.MCPServerConfig)
	case event.ActionUpdateTool:
		p.updateTool(ev.MCPServerConfig)
	case event.ActionDeleteTool:
		p.deleteTool(ev.Key)
	case event.ActionEnableTool:
		p.enableTool(ev.Key)
	case event.ActionDisableTool:
		p.disableTool(ev.Key)
	}
	return nil
}

// keyTaken reports whether another config already claims the key. Keys
// prefix tool names on the wire, so they must stay unique.
func keyTaken(configs []state.MCPServerConfig, key, excludeID string) bool {
	for _, cfg := range configs {
		if cfg.Key == key && cfg.ID != excludeID {
			return true
		}
	}
	return false
}

func (p *MCPProcessor) pushError(message string) {
	p.store.Update(func(c *state.AppStateContext) {
		c.Errors = append(c.Errors, state.NewAppError(message))
	})
}

func (p *MCPProcessor) addTool(tool state.MCPServerConfig) {
	ctx := p.store.Context()
	if keyTaken(ctx.MCP.ServerConfigs, tool.Key, tool.ID) {
		p.pushError(fmt.Sprintf("Tool key '%s' already exists. Please choose a unique key.", tool.Key))
		return
	}

	p.store.Update(func(c *state.AppStateContext) {
		added := tool.Clone()
		added.State = state.MCPStateDisabled
		added.Enabled = false
		c.MCP.ServerConfigs = append(c.MCP.ServerConfigs, added)
	})

	if tool.Enabled {
		p.enableTool(tool.Key)
	}
}

func (p *MCPProcessor) updateTool(tool state.MCPServerConfig) {
	ctx := p.store.Context()
	if keyTaken(ctx.MCP.ServerConfigs, tool.Key, tool.ID) {
		p.pushError(fmt.Sprintf("Tool key '%s' already exists. Please choose a unique key.", tool.Key))
		return
	}

	var existing *state.MCPServerConfig
	for i := range ctx.MCP.ServerConfigs {
		if ctx.MCP.ServerConfigs[i].ID == tool.ID {
			existing = &ctx.MCP.ServerConfigs[i]
			break
		}
	}

	switch {
	case existing == nil:
		p.log.Info("tool not found, adding as new", "key", tool.Key)
		p.addTool(tool)

	case existing.Enabled:
		// Running: stop with the old key, swap the config, then restart
		// under the new key if still wanted.
		oldKey := existing.Key
		p.setToolStateByID(tool.ID, state.MCPStateStopping)
		go p.restartTool(tool, oldKey)

	default:
		p.store.Update(func(c *state.AppStateContext) {
			for i := range c.MCP.ServerConfigs {
				if c.MCP.ServerConfigs[i].ID == tool.ID {
					updated := tool.Clone()
					updated.State = c.MCP.ServerConfigs[i].State
					updated.Enabled = false
					c.MCP.ServerConfigs[i] = updated
					return
				}
			}
		})
		if tool.Enabled {
			p.enableTool(tool.Key)
		}
	}
}

func (p *MCPProcessor) restartTool(tool state.MCPServerConfig, oldKey string) {
	disableErr := p.registry.Disconnect(oldKey)

	p.store.Update(func(c *state.AppStateContext) {
		for i := range c.MCP.ServerConfigs {
			if c.MCP.ServerConfigs[i].ID != tool.ID {
				continue
			}
			updated := tool.Clone()
			switch {
			case disableErr != nil:
				updated.State = state.MCPStateError
			case tool.Enabled:
				updated.State = state.MCPStateStarting
			default:
				updated.State = state.MCPStateDisabled
			}
			c.MCP.ServerConfigs[i] = updated
			return
		}
	})

	if tool.Enabled {
		if err := p.registry.Connect(context.Background(), tool); err != nil {
			p.setToolStateByID(tool.ID, state.MCPStateError)
			p.pushError(fmt.Sprintf("Tool '%s' updated but failed to restart: %v", tool.Key, err))
		} else {
			p.setToolStateByID(tool.ID, state.MCPStateEnabled)
		}
	}

	if disableErr != nil {
		p.log.Error("failed to cleanly disable tool before update", "key", oldKey, "error", disableErr)
		p.pushError(fmt.Sprintf("Warning: Tool '%s' updated but may not have shut down cleanly: %v", tool.Key, disableErr))
	}
}

func (p *MCPProcessor) deleteTool(key string) {
	ctx := p.store.Context()
	var tool *state.MCPServerConfig
	for i := range ctx.MCP.ServerConfigs {
		if ctx.MCP.ServerConfigs[i].Key == key {
			tool = &ctx.MCP.ServerConfigs[i]
			break
		}
	}
	if tool == nil {
		p.log.Info("tool not found", "key", key)
		return
	}

	remove := func() {
		p.store.Update(func(c *state.AppStateContext) {
			kept := c.MCP.ServerConfigs[:0]
			for _, cfg := range c.MCP.ServerConfigs {
				if cfg.Key != key {
					kept = append(kept, cfg)
				}
			}
			c.MCP.ServerConfigs = kept
		})
	}

	if !tool.Enabled {
		remove()
		return
	}

	p.setToolState(key, state.MCPStateStopping)
	go func() {
		err := p.registry.Disconnect(key)
		remove()
		if err != nil {
			p.log.Error("failed to cleanly disable tool before deletion", "key", key, "error", err)
			p.pushError(fmt.Sprintf("Warning: Tool '%s' deleted but may not have shut down cleanly: %v", key, err))
		}
	}()
}

func (p *MCPProcessor) enableTool(key string) {
	ctx := p.store.Context()
	var tool *state.MCPServerConfig
	for i := range ctx.MCP.ServerConfigs {
		if ctx.MCP.ServerConfigs[i].Key == key {
			tool = &ctx.MCP.ServerConfigs[i]
			break
		}
	}
	if tool == nil {
		p.log.Info("tool not found", "key", key)
		return
	}
	if tool.Enabled {
		p.log.Info("tool is already enabled", "key", key)
		return
	}

	p.setToolState(key, state.MCPStateStarting)
	cfg := tool.Clone()
	go func() {
		if err := p.registry.Connect(context.Background(), cfg); err != nil {
			p.store.Update(func(c *state.AppStateContext) {
				for i := range c.MCP.ServerConfigs {
					if c.MCP.ServerConfigs[i].Key == key {
						c.MCP.ServerConfigs[i].State = state.MCPStateError
					}
				}
				c.Errors = append(c.Errors, state.NewAppError(fmt.Sprintf("Failed to enable tool '%s': %v", key, err)))
			})
			return
		}
		p.store.Update(func(c *state.AppStateContext) {
			for i := range c.MCP.ServerConfigs {
				if c.MCP.ServerConfigs[i].Key == key {
					c.MCP.ServerConfigs[i].Enabled = true
					c.MCP.ServerConfigs[i].State = state.MCPStateEnabled
				}
			}
		})
	}()
}

func (p *MCPProcessor) disableTool(key string) {
	ctx := p.store.Context()
	var tool *state.MCPServerConfig
	for i := range ctx.MCP.ServerConfigs {
		if ctx.MCP.ServerConfigs[i].Key == key {
			tool = &ctx.MCP.ServerConfigs[i]
			break
		}
	}
	if tool == nil {
		p.log.Info("tool not found", "key", key)
		return
	}
	if !tool.Enabled {
		p.log.Info("tool is already disabled", "key", key)
		return
	}

	p.setToolState(key, state.MCPStateStopping)
	go func() {
		if err := p.registry.Disconnect(key); err != nil {
			p.store.Update(func(c *state.AppStateContext) {
				for i := range c.MCP.ServerConfigs {
					if c.MCP.ServerConfigs[i].Key == key {
						c.MCP.ServerConfigs[i].State = state.MCPStateError
					}
				}
				c.Errors = append(c.Errors, state.NewAppError(fmt.Sprintf("Failed to disable tool '%s': %v", key, err)))
			})
			return
		}
		p.store.Update(func(c *state.AppStateContext) {
			for i := range c.MCP.ServerConfigs {
				if c.MCP.ServerConfigs[i].Key == key {
					c.MCP.ServerConfigs[i].Enabled = false
					c.MCP.ServerConfigs[i].State = state.MCPStateDisabled
				}
			}
		})
	}()
}

func (p *MCPProcessor) setToolState(key string, st state.MCPServerState) {
	p.store.Update(func(c *state.AppStateContext) {
		for i := range c.MCP.ServerConfigs {
			if c.MCP.ServerConfigs[i].Key == key {
				c.MCP.ServerConfigs[i].State = st
			}
		}
	})
}

func (p *MCPProcessor) setToolStateByID(id string, st state.MCPServerState) {
	p.store.Update(func(c *state.AppStateContext) {
		for i := range c.MCP.ServerConfigs {
			if c.MCP.ServerConfigs[i].ID == id {
				c.MCP.ServerConfigs[i].State = st
			}
		}
	})
}

// startEnabledServers connects every config that was left enabled in the
// persisted state.
func (p *MCPProcessor) startEnabledServers() {
	ctx := p.store.Context()
	for _, cfg := range ctx.MCP.ServerConfigs {
		if !cfg.Enabled {
			continue
		}
		p.setToolState(cfg.Key, state.MCPStateStarting)
		if err := p.registry.Connect(context.Background(), cfg); err != nil {
			p.log.Error("failed to start server", "key", cfg.Key, "error", err)
			p.store.Update(func(c *state.AppStateContext) {
				for i := range c.MCP.ServerConfigs {
					if c.MCP.ServerConfigs[i].Key == cfg.Key {
						c.MCP.ServerConfigs[i].State = state.MCPStateError
					}
				}
				c.Errors = append(c.Errors, state.NewAppError(fmt.Sprintf("Failed to start server '%s': %v", cfg.Key, err)))
			})
			continue
		}
		p.setToolState(cfg.Key, state.MCPStateEnabled)
	}
}
