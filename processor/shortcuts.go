package processor

import (
	"log/slog"
	"time"

	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/hotkey"
	"go.qspeak.app/qspeak/state"
)

// pushToTalkHold is how long the recording shortcut must be held before
// its release stops the recording. Shorter presses toggle instead.
const pushToTalkHold = 500 * time.Millisecond

// KeyBinder is the hotkey surface the processor drives. *hotkey.Manager
// implements it.
type KeyBinder interface {
	Apply(bindings []hotkey.Binding)
}

// ShortcutsProcessor keeps the global hotkey registrations in sync with
// the configured shortcuts and the current application state. The close,
// screenshot and copy-text shortcuts are conditional, so the desired set
// is recomputed after every event.
type ShortcutsProcessor struct {
	store *state.Store
	bus   *Processor
	keys  KeyBinder
	log   *slog.Logger
}

func NewShortcutsProcessor(store *state.Store, bus *Processor, keys KeyBinder, log *slog.Logger) *ShortcutsProcessor {
	if log == nil {
		log = slog.Default()
	}
	return &ShortcutsProcessor{store: store, bus: bus, keys: keys, log: log}
}

// Register attaches the listener and applies the initial registrations.
func (p *ShortcutsProcessor) Register() {
	p.bus.RegisterEventListener("shortcuts", p.handle)
	p.reconcile()
}

func (p *ShortcutsProcessor) handle(e event.Event) error {
	switch ev := e.(type) {
	case event.ActionResetRecordingShortcutTimer:
		p.store.Update(func(c *state.AppStateContext) {
			now := time.Now().UnixMilli()
			c.Utils.RecordingTimer = &now
		})
	case event.ShortcutUpdate:
		p.store.Update(func(c *state.AppStateContext) {
			c.Shortcuts = ev.Shortcuts.Clone()
		})
	}
	p.reconcile()
	return nil
}

// reconcile rebuilds the desired binding set from the current state. The
// hotkey manager ignores the call when nothing changed.
func (p *ShortcutsProcessor) reconcile() {
	ctx := p.store.Context()
	shortcuts := ctx.Shortcuts

	bindings := []hotkey.Binding{
		{
			Name:   "recording",
			Keys:   shortcuts.Recording,
			OnDown: p.onRecordingPressed,
			OnUp:   p.onRecordingReleased,
		},
		{
			Name: "toggle_minimized",
			Keys: shortcuts.ToggleMinimized,
			OnUp: func() { p.bus.Dispatch(event.ActionToggleRecordingWindowMinimized{}) },
		},
		{
			Name:   "personas",
			Keys:   shortcuts.Personas,
			OnDown: func() { p.bus.Dispatch(event.ActionPersona{}) },
			OnUp:   func() { p.bus.Dispatch(event.ActionPersonaCycleEnd{}) },
		},
		{
			Name: "switch_language",
			Keys: shortcuts.SwitchLanguage,
			OnUp: func() { p.bus.Dispatch(event.ActionSwitchToNextPreferredLanguage{}) },
		},
	}

	if ctx.RecordingWindow.State == state.WindowOpen {
		bindings = append(bindings, hotkey.Binding{
			Name: "close",
			Keys: shortcuts.Close,
			OnUp: func() { p.bus.Dispatch(event.ActionCloseRecordingWindow{}) },
		})
	}

	conversation := ctx.Conversation.State
	if conversation == state.ConversationIdle || conversation == state.ConversationListening {
		bindings = append(bindings,
			hotkey.Binding{
				Name: "screenshot",
				Keys: shortcuts.Screenshot,
				OnUp: func() { p.bus.Dispatch(event.ActionScreenshot{}) },
			},
			hotkey.Binding{
				Name: "copy_text",
				Keys: shortcuts.CopyText,
				OnUp: func() { p.bus.Dispatch(event.ActionCopyText{}) },
			},
		)
	}

	p.keys.Apply(bindings)
}

func (p *ShortcutsProcessor) onRecordingPressed() {
	p.bus.Dispatch(event.ActionResetRecordingShortcutTimer{})
	p.bus.Dispatch(event.ActionRecording{})
}

// onRecordingReleased implements push-to-talk: a release after holding the
// shortcut longer than the threshold stops the active recording.
func (p *ShortcutsProcessor) onRecordingReleased() {
	ctx := p.store.Context()
	if ctx.Utils.RecordingTimer == nil {
		return
	}
	held := time.Now().UnixMilli() - *ctx.Utils.RecordingTimer
	if held > pushToTalkHold.Milliseconds() && ctx.Conversation.State == state.ConversationListening {
		p.bus.Dispatch(event.ActionRecording{})
	}
}
