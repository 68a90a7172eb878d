// Package recorder persists microphone audio to WAV files while a
// dictation session is active. It consumes raw 16-bit PCM frames from the
// capture pipeline and, when system-output capture is enabled, mixes the
// microphone and output recordings into a combined file after the session
// stops.
package recorder

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Hooks attach platform audio capture to the recording lifecycle.
// StartInput begins microphone capture on the given device; StartOutput
// begins system-output capture persisted at path. The stop hooks must not
// return until the last frame has been delivered and, for StopOutput,
// the output file has been finalized.
type Hooks struct {
	StartInput  func(device *string) error
	StopInput   func()
	StartOutput func(path string) error
	StopOutput  func()
}

// Recorder writes incoming audio frames to the active recording file.
// It is safe for concurrent use; frames arriving while no recording is
// active are discarded.
type Recorder struct {
	mu           sync.Mutex
	writer       *wavWriter
	path         string
	recordOutput bool
	hooks        Hooks
	log          *slog.Logger
}

func New(log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{log: log}
}

// SetHooks wires capture callbacks. Must be called before the first Start.
func (r *Recorder) SetHooks(h Hooks) {
	r.hooks = h
}

// Start begins a new recording at path. Any recording already in progress
// is cancelled first. Capture hooks run after the file is open, so no
// delivered frame is lost.
func (r *Recorder) Start(path string, device *string, recordOutput bool) error {
	r.mu.Lock()
	if r.writer != nil {
		r.discardLocked()
	}

	w, err := newWAVWriter(path)
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("start recording: %w", err)
	}
	r.writer = w
	r.path = path
	r.recordOutput = recordOutput
	r.mu.Unlock()

	if r.hooks.StartInput != nil {
		if err := r.hooks.StartInput(device); err != nil {
			r.Cancel()
			return fmt.Errorf("start audio capture: %w", err)
		}
	}
	if recordOutput && r.hooks.StartOutput != nil {
		if err := r.hooks.StartOutput(OutputPath(path)); err != nil {
			// Output capture is best effort; keep the microphone side.
			r.log.Error("Failed to start output capture", "error", err)
		}
	}

	if device != nil {
		r.log.Info("Recording started", "path", path, "device", *device)
	} else {
		r.log.Info("Recording started", "path", path)
	}
	return nil
}

// ProcessAudioData appends captured samples to the active recording.
func (r *Recorder) ProcessAudioData(samples []int16) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.writer == nil {
		return
	}
	if err := r.writer.WriteSamples(samples); err != nil {
		r.log.Error("Failed to write audio samples", "error", err)
	}
}

// Stop finalizes the active recording and returns its path. When output
// capture was requested and an output-side recording exists next to the
// input file, both are mixed into a combined file.
func (r *Recorder) Stop() (string, error) {
	r.mu.Lock()
	active := r.writer != nil
	recordOutput := r.recordOutput
	r.mu.Unlock()
	if !active {
		return "", fmt.Errorf("no recording in progress")
	}

	// Capture must be fully drained before the files are finalized and
	// mixed.
	if r.hooks.StopInput != nil {
		r.hooks.StopInput()
	}
	if recordOutput && r.hooks.StopOutput != nil {
		r.hooks.StopOutput()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.writer == nil {
		return "", fmt.Errorf("no recording in progress")
	}
	path := r.path
	err := r.writer.Close()
	r.writer = nil
	r.path = ""
	if err != nil {
		return "", fmt.Errorf("finalize recording: %w", err)
	}
	r.log.Info("Recording stopped", "path", path)

	if r.recordOutput {
		outputPath := OutputPath(path)
		if _, statErr := os.Stat(outputPath); statErr == nil {
			combined := CombinedPath(path)
			if mixErr := mixWAVFiles(path, outputPath, combined); mixErr != nil {
				r.log.Error("Failed to combine recordings", "error", mixErr)
			}
		}
	}
	return path, nil
}

// Cancel aborts the active recording and removes the partial files.
func (r *Recorder) Cancel() {
	r.mu.Lock()
	active := r.writer != nil
	recordOutput := r.recordOutput
	r.mu.Unlock()
	if !active {
		return
	}

	if r.hooks.StopInput != nil {
		r.hooks.StopInput()
	}
	if recordOutput && r.hooks.StopOutput != nil {
		r.hooks.StopOutput()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if recordOutput && r.path != "" {
		if err := os.Remove(OutputPath(r.path)); err != nil && !os.IsNotExist(err) {
			r.log.Error("Failed to remove cancelled output recording", "error", err)
		}
	}
	r.discardLocked()
}

func (r *Recorder) discardLocked() {
	if r.writer == nil {
		return
	}
	path := r.path
	r.writer.Close()
	r.writer = nil
	r.path = ""
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		r.log.Error("Failed to remove cancelled recording", "error", err)
	}
}

// OutputPath derives the system-output recording path from the input
// recording path.
func OutputPath(inputPath string) string {
	return insertSuffix(inputPath, "_output")
}

// CombinedPath derives the mixed input-plus-output recording path from the
// input recording path.
func CombinedPath(inputPath string) string {
	return insertSuffix(inputPath, "_combined")
}

func insertSuffix(path, suffix string) string {
	if base, ok := strings.CutSuffix(path, ".wav"); ok {
		return base + suffix + ".wav"
	}
	return path + suffix
}
