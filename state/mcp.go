package state

// MCPServerKind discriminates local child-process servers from external
// SSE endpoints.
type MCPServerKind string

const (
	MCPServerLocal    MCPServerKind = "local"
	MCPServerExternal MCPServerKind = "external"
)

// MCPServerState is the runtime lifecycle of a configured server.
type MCPServerState string

const (
	MCPStateDisabled MCPServerState = "Disabled"
	MCPStateStarting MCPServerState = "Starting"
	MCPStateEnabled  MCPServerState = "Enabled"
	MCPStateStopping MCPServerState = "Stopping"
	MCPStateError    MCPServerState = "Error"
)

// MCPServerConfig describes one tool server. Key is the user-chosen handle
// that prefixes tool names on the wire; it must be unique across configs.
type MCPServerConfig struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Key         string            `json:"key"`
	Description string            `json:"description"`
	Kind        MCPServerKind     `json:"kind"`
	Command     string            `json:"command,omitempty"`
	EnvVars     map[string]string `json:"env_vars,omitempty"`
	URL         string            `json:"url,omitempty"`
	Enabled     bool              `json:"enabled"`
	State       MCPServerState    `json:"state"`
}

// Clone returns a deep copy of the config.
func (c MCPServerConfig) Clone() MCPServerConfig {
	out := c
	if c.EnvVars != nil {
		out.EnvVars = make(map[string]string, len(c.EnvVars))
		for k, v := range c.EnvVars {
			out.EnvVars[k] = v
		}
	}
	return out
}

// MCPContext holds the persisted server configurations. Live client
// connections are managed outside the serializable state.
type MCPContext struct {
	ServerConfigs []MCPServerConfig `json:"server_configs"`
}

func (c MCPContext) clone() MCPContext {
	out := MCPContext{ServerConfigs: make([]MCPServerConfig, len(c.ServerConfigs))}
	for i, cfg := range c.ServerConfigs {
		out.ServerConfigs[i] = cfg.Clone()
	}
	return out
}
