//go:build darwin

package audiocapture

/*
#cgo CFLAGS: -x objective-c -fobjc-arc -mmacosx-version-min=13.0
#cgo LDFLAGS: -framework ScreenCaptureKit -framework CoreMedia -framework CoreAudio -framework AudioToolbox -framework Foundation -framework AVFoundation

#include <stdlib.h>

extern int startInputCapture(int targetSampleRate, const char* deviceName, char** errOut);
extern void stopInputCapture(void);
extern int startOutputCapture(int targetSampleRate, char** errOut);
extern void stopOutputCapture(void);
extern char* listInputDevices(void);
*/
import "C"

import (
	"errors"
	"strings"
	"sync"
	"unsafe"
)

// Global handlers for the CGO callbacks. One capturer per source at a time.
var (
	handlerMu     sync.RWMutex
	inputHandler  Handler
	outputHandler Handler
)

//export goInputAudioCallback
func goInputAudioCallback(samples *C.float, count C.int) {
	deliver(&inputHandler, samples, count)
}

//export goOutputAudioCallback
func goOutputAudioCallback(samples *C.float, count C.int) {
	deliver(&outputHandler, samples, count)
}

func deliver(slot *Handler, samples *C.float, count C.int) {
	n := int(count)
	if n <= 0 {
		return
	}
	handlerMu.RLock()
	h := *slot
	handlerMu.RUnlock()
	if h == nil {
		return
	}

	// The C buffer is only valid during this call; pcm16 copies it.
	floats := unsafe.Slice((*float32)(unsafe.Pointer(samples)), n)
	h(pcm16(floats))
}

type capturer struct {
	source Source
	device *string

	mu      sync.Mutex
	running bool
}

// New returns a capturer for the given source. The device name selects a
// specific microphone for SourceInput and is ignored for SourceOutput.
func New(source Source, device *string) (Capturer, error) {
	return &capturer{source: source, device: device}, nil
}

func (c *capturer) Start(handler Handler) error {
	if handler == nil {
		return errors.New("audiocapture: nil handler")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return ErrRunning
	}

	c.setHandler(handler)

	var errStr *C.char
	var result C.int
	if c.source == SourceOutput {
		result = C.startOutputCapture(C.int(SampleRate), &errStr)
	} else {
		var cdevice *C.char
		if c.device != nil {
			cdevice = C.CString(*c.device)
			defer C.free(unsafe.Pointer(cdevice))
		}
		result = C.startInputCapture(C.int(SampleRate), cdevice, &errStr)
	}
	if result != 0 {
		c.setHandler(nil)
		if errStr != nil {
			err := errors.New(C.GoString(errStr))
			C.free(unsafe.Pointer(errStr))
			return err
		}
		return errors.New("audiocapture: unknown error")
	}

	c.running = true
	return nil
}

func (c *capturer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return nil
	}

	if c.source == SourceOutput {
		C.stopOutputCapture()
	} else {
		C.stopInputCapture()
	}
	c.setHandler(nil)
	c.running = false
	return nil
}

func (c *capturer) setHandler(h Handler) {
	handlerMu.Lock()
	if c.source == SourceOutput {
		outputHandler = h
	} else {
		inputHandler = h
	}
	handlerMu.Unlock()
}

// InputDevices lists the names of the available audio input devices.
func InputDevices() ([]string, error) {
	cstr := C.listInputDevices()
	if cstr == nil {
		return nil, errors.New("audiocapture: failed to enumerate input devices")
	}
	defer C.free(unsafe.Pointer(cstr))

	joined := C.GoString(cstr)
	if joined == "" {
		return nil, nil
	}
	return strings.Split(joined, "\n"), nil
}
