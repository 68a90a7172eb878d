// Package kobold supervises the local KoboldCPP inference server. It
// spawns the bundled binary in admin mode, polls its health endpoint and
// swaps the loaded model by writing .kcpps config files and asking the
// admin API to reload them.
package kobold

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"go.qspeak.app/qspeak/state"
)

const (
	// DefaultPort is the KoboldCPP admin API port.
	DefaultPort = 5001

	healthInterval = 3 * time.Second
	// The server is considered gone after this many failed health checks.
	failedChecksBeforeIdle = 3
)

// ModelConfig names the model file to load, with an optional multimodal
// projector for vision.
type ModelConfig struct {
	ModelParam string
	MMProj     *string
}

// StateListener receives server lifecycle changes.
type StateListener func(state.KoboldServerState)

// Server manages one KoboldCPP instance on localhost.
type Server struct {
	port     uint16
	baseURL  string
	adminDir string
	binPath  string
	http     *http.Client
	listener StateListener
	log      *slog.Logger

	mu      sync.Mutex
	started bool
	done    chan struct{}
}

func NewServer(adminDir string, listener StateListener, log *slog.Logger) *Server {
	return &Server{
		port:     DefaultPort,
		baseURL:  fmt.Sprintf("http://localhost:%d", DefaultPort),
		adminDir: adminDir,
		binPath:  findKoboldBinary(),
		http:     &http.Client{Timeout: 5 * time.Second},
		listener: listener,
		log:      log,
	}
}

// Start launches the server process unless an instance already answers on
// the API port, then begins health polling. It is a no-op when called
// twice.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.checkRunning() {
		s.notify(state.KoboldServerState{Phase: state.KoboldRunning})
	} else if err := s.startProcess(); err != nil {
		return err
	}

	s.done = make(chan struct{})
	go s.healthLoop(s.done)
	s.started = true
	return nil
}

// Close stops health polling. The server process itself is left to exit
// with the application.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	s.started = false
}

func (s *Server) notify(st state.KoboldServerState) {
	if s.listener != nil {
		s.listener(st)
	}
}

func (s *Server) healthLoop(done chan struct{}) {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	failed := 0
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if s.checkRunning() {
				failed = 0
				s.notify(state.KoboldServerState{Phase: state.KoboldRunning})
				continue
			}
			failed++
			if failed >= failedChecksBeforeIdle {
				s.notify(state.KoboldServerState{Phase: state.KoboldIdle})
			}
		}
	}
}

func (s *Server) checkRunning() bool {
	resp, err := s.http.Get(s.apiURL("/api/v1/model"))
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// CurrentModel returns the name of the loaded model, or nil when the
// server reports itself inactive.
func (s *Server) CurrentModel(ctx context.Context) (*string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL("/api/v1/model"), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("Failed to get current model: %s", resp.Status)
	}

	var body struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("Failed to parse response: %w", err)
	}
	if body.Result == "inactive" {
		return nil, nil
	}
	// The API reports "repo/model"; only the model part is meaningful.
	parts := strings.SplitN(body.Result, "/", 2)
	if len(parts) < 2 {
		return nil, errors.New("Failed to parse model name")
	}
	return &parts[1], nil
}

// ChangeModel writes a config for the requested model and asks the admin
// API to reload it. A nil config unloads the current model.
func (s *Server) ChangeModel(ctx context.Context, config *ModelConfig) error {
	var filename string
	if config == nil {
		if err := s.ensureNullConfig(); err != nil {
			return err
		}
		filename = "null.kcpps"
	} else {
		filename = uuid.NewString() + ".kcpps"
		path := filepath.Join(s.adminDir, filename)
		if err := s.saveConfig(path, newKoboldConfig(config.ModelParam, config.MMProj, s.port)); err != nil {
			return err
		}
	}
	return s.reloadConfig(ctx, filename)
}

func (s *Server) reloadConfig(ctx context.Context, filename string) error {
	payload, _ := json.Marshal(map[string]string{"filename": filename})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL("/api/admin/reload_config"), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	s.log.Info("Changing KoboldCPP model", "config", filename)
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("Failed to send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Server returned error status: %s", resp.Status)
	}
	return nil
}

// koboldConfig is the .kcpps file format understood by the launcher.
type koboldConfig struct {
	ModelParam  string   `json:"model_param"`
	MMProj      *string  `json:"mmproj"`
	Model       []string `json:"model"`
	Port        uint16   `json:"port"`
	PortParam   uint16   `json:"port_param"`
	Host        string   `json:"host"`
	Launch      bool     `json:"launch"`
	Config      *string  `json:"config"`
	Threads     uint16   `json:"threads"`
	UseVulkan   []uint8  `json:"usevulkan,omitempty"`
	UseCPU      bool     `json:"usecpu"`
	ContextSize uint32   `json:"contextsize"`
	GPULayers   int16    `json:"gpulayers"`
}

func newKoboldConfig(modelParam string, mmproj *string, port uint16) koboldConfig {
	cfg := koboldConfig{
		ModelParam:  modelParam,
		MMProj:      mmproj,
		Model:       []string{},
		Port:        port,
		PortParam:   port,
		Launch:      true,
		Threads:     15,
		UseVulkan:   []uint8{},
		ContextSize: 4096,
		GPULayers:   100,
	}
	if runtime.GOOS == "darwin" {
		cfg.Threads = 4
		cfg.UseVulkan = nil
		cfg.UseCPU = true
		cfg.GPULayers = -1
	}
	return cfg
}

func (s *Server) saveConfig(path string, cfg koboldConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("Failed to serialize config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("Failed to write config file: %w", err)
	}
	s.log.Info("Saved KoboldCPP config", "path", path)
	return nil
}

// ensureNullConfig creates the no-model config the server falls back to
// when unloading.
func (s *Server) ensureNullConfig() error {
	path := filepath.Join(s.adminDir, "null.kcpps")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	cfg := map[string]any{
		"model":        []string{},
		"model_param":  "",
		"port":         s.port,
		"port_param":   s.port,
		"host":         "",
		"launch":       true,
		"nomodel":      true,
		"skiplauncher": true,
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("Failed to serialize null config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("Failed to write null config file: %w", err)
	}
	return nil
}

func (s *Server) startProcess() error {
	if s.binPath == "" {
		return errors.New("koboldcpp binary not found")
	}
	if err := os.MkdirAll(s.adminDir, 0o755); err != nil {
		return fmt.Errorf("create admin directory: %w", err)
	}
	if err := s.ensureNullConfig(); err != nil {
		return err
	}

	cmd := exec.Command(s.binPath,
		"--usevulkan",
		"--nomodel",
		"--skiplauncher",
		"--port", strconv.Itoa(int(s.port)),
		"--admin",
		"--admindir", s.adminDir,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn koboldcpp: %w", err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			s.log.Error("KoboldCPP server exited", "error", err)
		}
	}()
	return nil
}

func (s *Server) apiURL(path string) string {
	return s.baseURL + path
}

func findKoboldBinary() string {
	if path, err := exec.LookPath("koboldcpp"); err == nil {
		return path
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "koboldcpp")
		if _, statErr := os.Stat(candidate); statErr == nil {
			return candidate
		}
	}
	return ""
}
