// Package mcp manages connections to configured Model Context Protocol
// tool servers. Local servers run as child processes speaking stdio,
// external servers are reached over SSE. Live sessions are kept here, in a
// registry keyed by the config's tool key, outside the serializable
// application state.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"go.qspeak.app/qspeak/state"
)

// ClientTool pairs a discovered tool with the key of the server that
// serves it.
type ClientTool struct {
	ClientName string
	Tool       *gomcp.Tool
}

type client struct {
	name    string
	session *gomcp.ClientSession
}

// Registry holds the live sessions of all enabled tool servers.
type Registry struct {
	mu      sync.Mutex
	clients []*client
	log     *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{log: log}
}

// Connect starts (or dials) the server described by cfg and adds its
// session under cfg.Key.
func (r *Registry) Connect(ctx context.Context, cfg state.MCPServerConfig) error {
	transport, err := transportFor(cfg)
	if err != nil {
		return fmt.Errorf("start server %s: %w", cfg.Key, err)
	}

	c := gomcp.NewClient(&gomcp.Implementation{Name: "qspeak", Version: "1.0.0"}, nil)
	session, err := c.Connect(ctx, transport, nil)
	if err != nil {
		return fmt.Errorf("start server %s: %w", cfg.Key, err)
	}

	r.addSession(cfg.Key, session)
	r.log.Info("MCP server started", "key", cfg.Key)
	return nil
}

func (r *Registry) addSession(name string, session *gomcp.ClientSession) {
	r.mu.Lock()
	r.clients = append(r.clients, &client{name: name, session: session})
	r.mu.Unlock()
}

// Disconnect closes every session registered under key. A missing key is
// not an error.
func (r *Registry) Disconnect(key string) error {
	r.mu.Lock()
	var closing []*client
	kept := r.clients[:0]
	for _, c := range r.clients {
		if c.name == key {
			closing = append(closing, c)
		} else {
			kept = append(kept, c)
		}
	}
	r.clients = kept
	r.mu.Unlock()

	if len(closing) == 0 {
		r.log.Warn("MCP server not found for disabling", "key", key)
		return nil
	}
	for _, c := range closing {
		if err := c.session.Close(); err != nil {
			return fmt.Errorf("disable server %s: %w", key, err)
		}
	}
	r.log.Info("MCP server disabled", "key", key)
	return nil
}

// CallTool invokes toolName on the server registered under clientName and
// returns the concatenated text content of the result.
func (r *Registry) CallTool(ctx context.Context, clientName, toolName string, arguments map[string]any) (string, error) {
	session := r.sessionFor(clientName)
	if session == nil {
		return "", fmt.Errorf("Client not found: %s", clientName)
	}

	res, err := session.CallTool(ctx, &gomcp.CallToolParams{Name: toolName, Arguments: arguments})
	if err != nil {
		return "", fmt.Errorf("Tool call failed: %w", err)
	}

	var sb strings.Builder
	for _, content := range res.Content {
		if text, ok := content.(*gomcp.TextContent); ok {
			sb.WriteString(text.Text)
		}
	}
	if res.IsError {
		return "", fmt.Errorf("Tool call failed: %s", sb.String())
	}
	return sb.String(), nil
}

// ListAllTools aggregates the tools of every connected server. A server
// that fails to answer is skipped so the others still contribute.
func (r *Registry) ListAllTools(ctx context.Context) []ClientTool {
	r.mu.Lock()
	clients := make([]*client, len(r.clients))
	copy(clients, r.clients)
	r.mu.Unlock()

	var all []ClientTool
	for _, c := range clients {
		res, err := c.session.ListTools(ctx, nil)
		if err != nil {
			r.log.Error("Failed to list tools for client", "client", c.name, "error", err)
			continue
		}
		for _, tool := range res.Tools {
			all = append(all, ClientTool{ClientName: c.name, Tool: tool})
		}
	}
	return all
}

// Close shuts down every session.
func (r *Registry) Close() error {
	r.mu.Lock()
	clients := r.clients
	r.clients = nil
	r.mu.Unlock()

	var errs []error
	for _, c := range clients {
		if err := c.session.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) sessionFor(name string) *gomcp.ClientSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.name == name {
			return c.session
		}
	}
	return nil
}

func transportFor(cfg state.MCPServerConfig) (gomcp.Transport, error) {
	switch cfg.Kind {
	case state.MCPServerLocal:
		parts := strings.Fields(cfg.Command)
		if len(parts) == 0 {
			return nil, errors.New("empty command")
		}
		cmd := exec.Command(parts[0], parts[1:]...)
		cmd.Env = os.Environ()
		for k, v := range cfg.EnvVars {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
		cmd.Stderr = os.Stderr
		return &gomcp.CommandTransport{Command: cmd}, nil
	case state.MCPServerExternal:
		return &gomcp.SSEClientTransport{Endpoint: cfg.URL}, nil
	default:
		return nil, fmt.Errorf("unknown server kind %q", cfg.Kind)
	}
}
