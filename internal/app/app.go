package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wailsapp/wails/v3/pkg/application"

	"go.qspeak.app/qspeak/api"
	"go.qspeak.app/qspeak/audiocapture"
	"go.qspeak.app/qspeak/clipboard"
	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/hotkey"
	"go.qspeak.app/qspeak/hub"
	"go.qspeak.app/qspeak/kobold"
	"go.qspeak.app/qspeak/llm"
	"go.qspeak.app/qspeak/mcp"
	"go.qspeak.app/qspeak/processor"
	"go.qspeak.app/qspeak/recorder"
	"go.qspeak.app/qspeak/remote"
	"go.qspeak.app/qspeak/screenshot"
	"go.qspeak.app/qspeak/state"
	"go.qspeak.app/qspeak/store"
	"go.qspeak.app/qspeak/stt"
)

// Service is the application service bound to Wails. It owns every
// long-lived component and tears them down on shutdown.
type Service struct {
	app     *application.App
	log     *slog.Logger
	version string

	store   *state.Store
	bus     *processor.Processor
	engines *stt.Registry
	tools   *mcp.Registry
	remote  *remote.Server
	kobold  *kobold.Server
	hotkeys *hotkey.Manager
	audio   *audioEngine
	windows *windowShell

	unsubscribe func()
	shutdown    sync.Once
}

func New(version string, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{log: log, version: version}
}

// Windows exposes the window shell for the tray menu.
func (s *Service) Windows() processor.Windows {
	return s.windows
}

// Dispatch queues a raw event envelope from the frontend onto the bus.
func (s *Service) Dispatch(data string) error {
	e, err := event.Unmarshal([]byte(data))
	if err != nil {
		return err
	}
	s.bus.Dispatch(e)
	return nil
}

// DispatchEvent queues a typed event, used by the tray menu.
func (s *Service) DispatchEvent(e event.Event) {
	s.bus.Dispatch(e)
}

// GetContext returns the full state tree. The frontend calls it once
// before relying on the patch stream.
func (s *Service) GetContext() state.AppStateContext {
	return s.store.Context()
}

// Context returns the current state for shell-side reads.
func (s *Service) Context() state.AppStateContext {
	return s.store.Context()
}

// ListInputDevices enumerates microphone devices.
func (s *Service) ListInputDevices() ([]string, error) {
	return audiocapture.InputDevices()
}

// CheckOnline reports whether the backend is reachable.
func (s *Service) CheckOnline() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, api.BaseURL+"/releases", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// Init builds the component graph and starts the bus. Must be called once
// before the Wails app runs.
func (s *Service) Init(app *application.App) error {
	s.app = app

	configDir, err := os.UserConfigDir()
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	dataDir := filepath.Join(configDir, "qspeak")

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return fmt.Errorf("resolve cache dir: %w", err)
	}
	audioDir := filepath.Join(cacheDir, "qspeak", "audio")

	snapshots, err := store.Open(filepath.Join(dataDir, "state"), s.log)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	s.store, err = state.NewStore(snapshots, s.log)
	if err != nil {
		snapshots.Close()
		return fmt.Errorf("load state: %w", err)
	}

	s.bus = processor.New(s.log)

	whisper, err := stt.NewWhisperLocal(filepath.Join(dataDir, "models"))
	if err != nil {
		return fmt.Errorf("init local whisper: %w", err)
	}
	s.engines = stt.NewRegistry()
	s.engines.Register(stt.NewOpenAI())
	s.engines.Register(stt.NewVoxtral())
	s.engines.Register(whisper)

	cache, err := hub.NewCache(filepath.Join(dataDir, "hub"))
	if err != nil {
		return fmt.Errorf("init model cache: %w", err)
	}

	client := llm.NewClient()
	s.tools = mcp.NewRegistry(s.log)

	s.audio = newAudioEngine(s.bus, s.log)
	rec := recorder.New(s.log)
	rec.SetHooks(s.audio.hooks())
	s.bus.RegisterAudioListener(rec.ProcessAudioData)
	s.bus.RegisterAudioListener(waveformEmitter(s.emit))

	s.remote = remote.NewServer(s.bus.Dispatch, s.reportError, s.log)
	s.kobold = kobold.NewServer(filepath.Join(dataDir, "kobold"), func(st state.KoboldServerState) {
		s.bus.Dispatch(event.KoboldServerStateChange{State: st})
	}, s.log)
	s.hotkeys = hotkey.NewManager(s.log)
	s.windows = newWindowShell(app)

	accounts := api.NewAccounts(nil)
	releases := api.NewReleases()
	catalog := api.NewModels(s.log)
	updater := newReleaseUpdater(s.version, filepath.Join(dataDir, "updates"))

	processors := []interface{ Register() }{
		processor.NewAppProcessor(s.store, s.bus),
		processor.NewRecordingWindowProcessor(s.store, s.bus, s.windows),
		processor.NewModelsProcessor(s.store, s.bus, catalog, whisper, cache, s.log),
		processor.NewSettingsWindowProcessor(s.store, s.bus, s.windows),
		processor.NewOnboardingWindowProcessor(s.store, s.bus, s.windows),
		processor.NewPersonasProcessor(s.store, s.bus),
		processor.NewConversationProcessor(s.store, s.bus, rec, s.engines, client, s.tools,
			clipboard.New(), screenshot.New(), audioDir, s.log),
		processor.NewShortcutsProcessor(s.store, s.bus, s.hotkeys, s.log),
		processor.NewHistoryProcessor(s.store, s.bus, client, s.log),
		processor.NewAccountProcessor(s.store, s.bus, accounts),
		processor.NewUpdateProcessor(s.store, s.bus, updater),
		processor.NewPermissionsProcessor(s.store, s.bus, nil),
		processor.NewChallengeProcessor(s.store, s.bus),
		processor.NewMCPProcessor(s.store, s.bus, s.tools, s.log),
		processor.NewReleasesProcessor(s.store, s.bus, releases),
		processor.NewWebsocketProcessor(s.store, s.bus, s.remote),
		processor.NewKoboldProcessor(s.store, s.bus, s.kobold, cache, s.log),
	}
	for _, p := range processors {
		p.Register()
	}

	s.bus.Start()
	s.startStateBridge()
	return nil
}

func (s *Service) emit(name string, data any) {
	if s.app != nil {
		s.app.Event.Emit(name, data)
	}
}

func (s *Service) reportError(message string) {
	s.store.Update(func(c *state.AppStateContext) {
		c.Errors = append(c.Errors, state.NewAppError(message))
	})
}

// startStateBridge forwards store updates to the frontend. The first
// message after subscribing is the full tree, then JSON patches.
func (s *Service) startStateBridge() {
	updates, unsubscribe := s.store.Subscribe()
	s.unsubscribe = unsubscribe
	go func() {
		for update := range updates {
			s.emit(EventStateUpdate, update)
		}
	}()
}

// Shutdown tears down every component. Safe to call more than once.
func (s *Service) Shutdown() {
	s.shutdown.Do(s.teardown)
}

func (s *Service) teardown() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	if s.bus != nil {
		s.bus.Close()
	}
	if s.audio != nil {
		s.audio.Close()
	}
	if s.hotkeys != nil {
		s.hotkeys.Close()
	}
	if s.tools != nil {
		if err := s.tools.Close(); err != nil {
			s.log.Error("close mcp registry", "error", err)
		}
	}
	if s.remote != nil {
		if err := s.remote.Close(); err != nil {
			s.log.Error("close remote server", "error", err)
		}
	}
	if s.kobold != nil {
		s.kobold.Close()
	}
	if s.engines != nil {
		if err := s.engines.Close(); err != nil {
			s.log.Error("close transcription engines", "error", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.Error("close state store", "error", err)
		}
	}
}
