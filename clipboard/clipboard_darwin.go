//go:build darwin

package clipboard

import (
	"errors"
	"sync"
	"unsafe"
)

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa -framework ApplicationServices
// #include <stdlib.h>
// #import <Cocoa/Cocoa.h>
// #import <ApplicationServices/ApplicationServices.h>
//
// const char* getClipboardContent() {
//     NSPasteboard *pasteboard = [NSPasteboard generalPasteboard];
//     NSString *string = [pasteboard stringForType:NSPasteboardTypeString];
//     return [string UTF8String];
// }
//
// bool setClipboardContent(const char* text) {
//     NSPasteboard *pasteboard = [NSPasteboard generalPasteboard];
//     [pasteboard clearContents];
//     NSString *string = [NSString stringWithUTF8String:text];
//     return [pasteboard setString:string forType:NSPasteboardTypeString];
// }
//
// bool isProcessTrusted() {
//     return AXIsProcessTrusted();
// }
//
// // Sends Cmd + the given virtual key to the frontmost application.
// void sendCmdKeystroke(CGKeyCode key) {
//     CGEventSourceRef source = CGEventSourceCreate(kCGEventSourceStateCombinedSessionState);
//     CGEventRef down = CGEventCreateKeyboardEvent(source, key, true);
//     CGEventRef up = CGEventCreateKeyboardEvent(source, key, false);
//     CGEventSetFlags(down, kCGEventFlagMaskCommand);
//     CGEventSetFlags(up, kCGEventFlagMaskCommand);
//     CGEventPost(kCGHIDEventTap, down);
//     CGEventPost(kCGHIDEventTap, up);
//     CFRelease(down);
//     CFRelease(up);
//     CFRelease(source);
// }
import "C"

// ANSI virtual key codes for V and C.
const (
	keyV = C.CGKeyCode(9)
	keyC = C.CGKeyCode(8)
)

var clipboardLock sync.RWMutex

func getClipboardContent() (string, error) {
	clipboardLock.RLock()
	defer clipboardLock.RUnlock()

	cstr := C.getClipboardContent()
	if cstr == nil {
		return "", errors.New("failed to get clipboard content")
	}
	return C.GoString(cstr), nil
}

func setClipboardContent(text string) error {
	clipboardLock.Lock()
	defer clipboardLock.Unlock()

	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))
	if !bool(C.setClipboardContent(ctext)) {
		return errors.New("failed to set clipboard content")
	}
	return nil
}

func sendPasteKeystroke() error { return sendCmdKey(keyV) }

func sendCopyKeystroke() error { return sendCmdKey(keyC) }

// sendCmdKey posts a Cmd+key event. Without the accessibility permission
// the system drops synthetic events silently, so the permission is checked
// up front.
func sendCmdKey(key C.CGKeyCode) error {
	if !bool(C.isProcessTrusted()) {
		return errors.New("accessibility permission not granted")
	}
	C.sendCmdKeystroke(key)
	return nil
}
