// Package audiocapture captures microphone and system-output audio as
// 16-bit PCM frames for the dictation pipeline. The microphone path feeds
// the event bus; the output path records what the machine is playing when
// a persona asks for it.
package audiocapture

import (
	"errors"
)

// SampleRate is the capture rate in Hz. Whisper models expect 16 kHz.
const SampleRate = 16000

// ErrUnsupported is returned on platforms without a capture backend.
var ErrUnsupported = errors.New("audio capture not supported on this platform")

// ErrRunning is returned when starting a capturer that is already running.
var ErrRunning = errors.New("audio capture already running")

// Handler receives one frame of captured samples. The slice is only valid
// for the duration of the call.
type Handler func(samples []int16)

// Source selects which side of the audio hardware a capturer listens to.
type Source int

const (
	// SourceInput captures the microphone.
	SourceInput Source = iota
	// SourceOutput captures what the system is playing.
	SourceOutput
)

// Capturer streams audio frames to a handler until stopped.
type Capturer interface {
	Start(handler Handler) error
	Stop() error
}

// pcm16 converts float samples in [-1, 1] to 16-bit PCM, clamping values
// that exceed the range.
func pcm16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		switch {
		case s >= 1.0:
			out[i] = 32767
		case s <= -1.0:
			out[i] = -32768
		default:
			out[i] = int16(s * 32767)
		}
	}
	return out
}
