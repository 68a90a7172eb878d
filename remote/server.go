// Package remote runs the WebSocket remote-control server. Companion
// devices connect to it and trigger application actions (toggle recording,
// cycle personas, take a screenshot) with an optional shared password.
package remote

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"go.qspeak.app/qspeak/event"
)

// Settings mirrors the websocket server section of the application state.
type Settings struct {
	Enabled  bool
	Port     uint16
	Password *string
}

type serverConfig struct {
	port     uint16
	password *string
}

func (c serverConfig) equal(other serverConfig) bool {
	if c.port != other.port {
		return false
	}
	if (c.password == nil) != (other.password == nil) {
		return false
	}
	return c.password == nil || *c.password == *other.password
}

type running struct {
	config   serverConfig
	listener net.Listener
	srv      *http.Server
}

// Server owns at most one listening instance. ApplySettings starts, stops
// or restarts it to match the requested configuration.
type Server struct {
	mu          sync.Mutex
	current     *running
	dispatch    func(event.Event)
	reportError func(message string)
	log         *slog.Logger

	upgrader websocket.Upgrader
}

func NewServer(dispatch func(event.Event), reportError func(string), log *slog.Logger) *Server {
	return &Server{
		dispatch:    dispatch,
		reportError: reportError,
		log:         log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ApplySettings reconciles the running server with settings. A running
// server is only restarted when the port or password actually changed.
func (s *Server) ApplySettings(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !settings.Enabled {
		s.stopLocked()
		return nil
	}

	config := serverConfig{port: settings.Port, password: settings.Password}
	if s.current != nil && s.current.config.equal(config) {
		return nil
	}

	s.stopLocked()
	return s.startLocked(config)
}

// Addr returns the bound address of the running server, or "" when it is
// stopped.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.listener.Addr().String()
}

// Close stops the server if it is running.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	return nil
}

func (s *Server) startLocked(config serverConfig) error {
	listener, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%d", config.port))
	if err != nil {
		s.reportError(fmt.Sprintf("Unable to start WebSocket server on port %d: %v", config.port, err))
		return err
	}

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handleConnection(w, r, config)
	})}
	go func() {
		if serveErr := srv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.log.Error("WebSocket server stopped", "error", serveErr)
		}
	}()

	s.current = &running{config: config, listener: listener, srv: srv}
	s.log.Info("WebSocket server listening", "addr", listener.Addr().String())
	return nil
}

func (s *Server) stopLocked() {
	if s.current == nil {
		return
	}
	s.current.srv.Close()
	s.current = nil
	s.log.Info("WebSocket server stopped")
}

func (s *Server) handleConnection(w http.ResponseWriter, r *http.Request, config serverConfig) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	s.log.Info("WebSocket client connected")

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var response wsResponse
		switch messageType {
		case websocket.TextMessage:
			response.Success, response.Message = s.processMessage(data, config)
		case websocket.BinaryMessage:
			response = wsResponse{Success: false, Message: "Binary payloads are not supported"}
		default:
			continue
		}
		if err := conn.WriteJSON(response); err != nil {
			break
		}
	}
	s.log.Info("WebSocket client disconnected")
}

type wsCommand struct {
	Action   string  `json:"action"`
	Password *string `json:"password"`
}

type wsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) processMessage(payload []byte, config serverConfig) (bool, string) {
	var command wsCommand
	if err := json.Unmarshal(payload, &command); err != nil {
		return false, fmt.Sprintf("Invalid payload: %v", err)
	}

	action, ok := resolveAction(command.Action)
	if !ok {
		return false, fmt.Sprintf("Invalid payload: unknown action %q", command.Action)
	}

	if errMsg := verifyPassword(config, command.Password); errMsg != "" {
		return false, errMsg
	}

	for _, e := range action.events {
		s.dispatch(e)
	}
	return true, fmt.Sprintf("Action '%s' executed", action.name)
}

func verifyPassword(config serverConfig, provided *string) string {
	switch {
	case config.password == nil:
		return ""
	case provided == nil:
		return "Password is required"
	case *provided != *config.password:
		return "Invalid password"
	default:
		return ""
	}
}

type remoteAction struct {
	name   string
	events []event.Event
}

// resolveAction maps a wire action name (including aliases) to its
// canonical name and the events it triggers.
func resolveAction(name string) (remoteAction, bool) {
	switch name {
	case "toggle_recording":
		return remoteAction{
			name:   "toggle_recording",
			events: []event.Event{event.ActionResetRecordingShortcutTimer{}, event.ActionRecording{}},
		}, true
	case "show_personas", "toggle_personas", "open_personas":
		return remoteAction{name: "show_personas", events: []event.Event{event.ActionPersona{}}}, true
	case "close_recording_window":
		return remoteAction{name: "close_recording_window", events: []event.Event{event.ActionCloseRecordingWindow{}}}, true
	case "persona_cycle_end":
		return remoteAction{name: "persona_cycle_end", events: []event.Event{event.ActionPersonaCycleEnd{}}}, true
	case "persona_cycle_next":
		return remoteAction{name: "persona_cycle_next", events: []event.Event{event.ActionPersonaCycleNext{}}}, true
	case "take_screenshot", "screenshot":
		return remoteAction{name: "take_screenshot", events: []event.Event{event.ActionScreenshot{}}}, true
	case "copy_text":
		return remoteAction{name: "copy_text", events: []event.Event{event.ActionCopyText{}}}, true
	case "toggle_minimized":
		return remoteAction{name: "toggle_minimized", events: []event.Event{event.ActionToggleRecordingWindowMinimized{}}}, true
	case "switch_language":
		return remoteAction{name: "switch_language", events: []event.Event{event.ActionSwitchToNextPreferredLanguage{}}}, true
	default:
		return remoteAction{}, false
	}
}
