package main

import (
	"embed"
	"log/slog"
	"os"

	"github.com/wailsapp/wails/v3/pkg/application"

	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/internal/app"
	"go.qspeak.app/qspeak/state"
)

//go:embed all:frontend/dist
var assets embed.FS

//go:embed build/tray.png
var trayIcon []byte

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	slog.Info("starting qSpeak", "version", version, "commit", commit, "date", date)

	svc := app.New(version, slog.Default())

	wailsApp := application.New(application.Options{
		Name:        "qSpeak",
		Description: "Voice dictation assistant",
		Services: []application.Service{
			application.NewService(svc),
		},
		Assets: application.AssetOptions{
			Handler: application.BundledAssetFileServer(assets),
		},
		Mac: application.MacOptions{
			// Tray app: no dock icon, and closing every window must not
			// terminate the process.
			ActivationPolicy: application.ActivationPolicyAccessory,
			ApplicationShouldTerminateAfterLastWindowClosed: false,
		},
	})

	if err := svc.Init(wailsApp); err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}

	setupTray(wailsApp, svc)

	if err := wailsApp.Run(); err != nil {
		slog.Error("run app", "error", err)
	}
	svc.Shutdown()
}

func setupTray(wailsApp *application.App, svc *app.Service) {
	tray := wailsApp.SystemTray.New()
	tray.SetIcon(trayIcon)

	menu := wailsApp.NewMenu()
	menu.Add("Start dictation").OnClick(func(*application.Context) {
		svc.DispatchEvent(event.ActionOpenRecordingWindow{})
	})
	menu.Add("Settings…").OnClick(func(*application.Context) {
		svc.DispatchEvent(event.ActionOpenSettingsFromTray{})
	})
	menu.AddSeparator()

	ctx := svc.Context()

	langMenu := menu.AddSubmenu("Language")
	for _, lang := range state.Languages {
		lang := lang
		langMenu.AddRadio(lang.DisplayName(), lang == ctx.Language).OnClick(func(*application.Context) {
			svc.DispatchEvent(event.ActionChangeTranscriptionLanguage{Language: lang})
		})
	}

	deviceMenu := menu.AddSubmenu("Microphone")
	deviceMenu.AddRadio("System default", ctx.InputDevice == nil).OnClick(func(*application.Context) {
		svc.DispatchEvent(event.ActionChangeInputDevice{Device: nil})
	})
	devices, err := svc.ListInputDevices()
	if err != nil {
		slog.Error("list input devices", "error", err)
	}
	for _, device := range devices {
		device := device
		selected := ctx.InputDevice != nil && *ctx.InputDevice == device
		deviceMenu.AddRadio(device, selected).OnClick(func(*application.Context) {
			d := device
			svc.DispatchEvent(event.ActionChangeInputDevice{Device: &d})
		})
	}

	menu.AddCheckbox("Remote control", ctx.WebsocketServer.Enabled).OnClick(func(*application.Context) {
		current := svc.Context().WebsocketServer
		svc.DispatchEvent(event.ActionUpdateWebsocketServerSettings{
			WebsocketServerSettings: event.WebsocketServerSettings{
				Enabled:  !current.Enabled,
				Port:     current.Port,
				Password: current.Password,
			},
		})
	})

	menu.AddSeparator()
	menu.Add("Quit qSpeak").
		SetAccelerator("CmdOrCtrl+Q").
		OnClick(func(*application.Context) {
			svc.Shutdown()
			wailsApp.Quit()
		})

	tray.SetMenu(menu)
}
