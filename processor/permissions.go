package processor

import (
	"os/exec"
	"runtime"

	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/state"
)

// PermissionChecker answers platform permission queries. Requests are
// fire-and-forget; checks report the current authorization.
type PermissionChecker interface {
	CheckAccessibility() bool
	RequestAccessibility()
	CheckMicrophone() bool
	RequestMicrophone()
}

// SystemPermissions is the default checker. On macOS requests open the
// relevant privacy pane; elsewhere every permission reports authorized.
type SystemPermissions struct{}

func (SystemPermissions) CheckAccessibility() bool { return true }

func (SystemPermissions) RequestAccessibility() {
	if runtime.GOOS == "darwin" {
		exec.Command("open", "x-apple.systempreferences:com.apple.preference.security?Privacy_Accessibility").Run()
	}
}

func (SystemPermissions) CheckMicrophone() bool { return true }

func (SystemPermissions) RequestMicrophone() {
	if runtime.GOOS == "darwin" {
		exec.Command("open", "x-apple.systempreferences:com.apple.preference.security?Privacy_Microphone").Run()
	}
}

// PermissionsProcessor reflects permission checks into the state tree and
// forwards requests to the platform.
type PermissionsProcessor struct {
	store   *state.Store
	bus     *Processor
	checker PermissionChecker
}

func NewPermissionsProcessor(store *state.Store, bus *Processor, checker PermissionChecker) *PermissionsProcessor {
	if checker == nil {
		checker = SystemPermissions{}
	}
	return &PermissionsProcessor{store: store, bus: bus, checker: checker}
}

func (p *PermissionsProcessor) Register() {
	p.bus.RegisterEventListener("permissions", p.handle)
}

func (p *PermissionsProcessor) handle(e event.Event) error {
	switch e.(type) {
	case event.ActionCheckAccessibilityPermission:
		authorized := p.checker.CheckAccessibility()
		p.store.Update(func(c *state.AppStateContext) {
			c.Permissions.Accessibility = authorized
		})
	case event.ActionRequestAccessibilityPermission:
		go p.checker.RequestAccessibility()
	case event.ActionCheckAndRequestAccessibilityPermission:
		if !p.checker.CheckAccessibility() {
			go p.checker.RequestAccessibility()
		}
	case event.ActionCheckMicrophonePermission:
		authorized := p.checker.CheckMicrophone()
		p.store.Update(func(c *state.AppStateContext) {
			c.Permissions.Microphone = authorized
		})
	case event.ActionRequestMicrophonePermission:
		go p.checker.RequestMicrophone()
	case event.ActionCheckAndRequestMicrophonePermission:
		if !p.checker.CheckMicrophone() {
			go p.checker.RequestMicrophone()
		}
	}
	return nil
}
