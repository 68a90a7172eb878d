// Package hotkey registers global keyboard shortcuts through gohook.
// gohook cannot unregister a single hook, so the manager keeps the desired
// binding set and fully rebuilds the hook state whenever it changes.
package hotkey

import (
	"log/slog"
	"strings"
	"sync"

	hook "github.com/robotn/gohook"
)

// Binding ties a key combination to press and release callbacks. Keys use
// the frontend naming ("Control", "Alt", "Space").
type Binding struct {
	Name   string
	Keys   []string
	OnDown func()
	OnUp   func()
}

// hooker abstracts the gohook surface the manager needs.
type hooker interface {
	Register(kind uint8, keys []string, cb func())
	Start()
	Stop()
}

type gohookAdapter struct{}

func (gohookAdapter) Register(kind uint8, keys []string, cb func()) {
	hook.Register(kind, keys, func(hook.Event) { cb() })
}

func (gohookAdapter) Start() {
	go func() {
		s := hook.Start()
		<-hook.Process(s)
	}()
}

func (gohookAdapter) Stop() { hook.End() }

// Manager owns the global hook state.
type Manager struct {
	mu      sync.Mutex
	active  map[string]string // binding name -> normalized combo
	hooks   hooker
	running bool
	log     *slog.Logger
}

func NewManager(log *slog.Logger) *Manager {
	return &Manager{active: map[string]string{}, hooks: gohookAdapter{}, log: log}
}

// Apply makes the registered set match bindings. Nothing happens when the
// set of combos is unchanged.
func (m *Manager) Apply(bindings []Binding) {
	m.mu.Lock()
	defer m.mu.Unlock()

	desired := make(map[string]string, len(bindings))
	for _, b := range bindings {
		desired[b.Name] = NormalizeCombo(b.Keys)
	}
	if combosEqual(m.active, desired) {
		return
	}

	if m.running {
		m.hooks.Stop()
	}
	for _, b := range bindings {
		keys := gohookKeys(b.Keys)
		if down := b.OnDown; down != nil {
			m.hooks.Register(hook.KeyDown, keys, down)
		}
		if up := b.OnUp; up != nil {
			m.hooks.Register(hook.KeyUp, keys, up)
		}
		m.log.Info("Registered global shortcut", "name", b.Name, "combo", desired[b.Name])
	}
	m.hooks.Start()
	m.running = true
	m.active = desired
}

// Close tears down all hooks.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		m.hooks.Stop()
		m.running = false
	}
	m.active = map[string]string{}
}

// NormalizeCombo renders keys as the canonical registration string.
func NormalizeCombo(keys []string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.Join(keys, "+")), "META", "SUPER")
}

// gohookKeys maps frontend key names onto gohook's lowercase key names.
func gohookKeys(keys []string) []string {
	out := make([]string, len(keys))
	for i, key := range keys {
		switch key {
		case "Control":
			out[i] = "ctrl"
		case "Meta", "Super":
			out[i] = "cmd"
		case "Escape":
			out[i] = "esc"
		default:
			out[i] = strings.ToLower(key)
		}
	}
	return out
}

func combosEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
