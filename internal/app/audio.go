package app

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.qspeak.app/qspeak/audiocapture"
	"go.qspeak.app/qspeak/processor"
	"go.qspeak.app/qspeak/recorder"
)

// audioEngine owns the platform capture devices. The microphone side feeds
// the bus audio fan-out (recorder, waveform); the output side writes what
// the machine plays into its own recording, which the recorder mixes in
// after the session stops.
type audioEngine struct {
	bus *processor.Processor
	out *recorder.Recorder
	log *slog.Logger

	mu     sync.Mutex
	mic    audiocapture.Capturer
	sysOut audiocapture.Capturer
}

func newAudioEngine(bus *processor.Processor, log *slog.Logger) *audioEngine {
	return &audioEngine{
		bus: bus,
		out: recorder.New(log),
		log: log,
	}
}

// hooks exposes the engine to the recorder lifecycle.
func (a *audioEngine) hooks() recorder.Hooks {
	return recorder.Hooks{
		StartInput:  a.startInput,
		StopInput:   a.stopInput,
		StartOutput: a.startOutput,
		StopOutput:  a.stopOutput,
	}
}

func (a *audioEngine) startInput(device *string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.mic != nil {
		return nil
	}
	c, err := audiocapture.New(audiocapture.SourceInput, device)
	if err != nil {
		return fmt.Errorf("create input capture: %w", err)
	}
	if err := c.Start(a.bus.ProcessAudioData); err != nil {
		return fmt.Errorf("start input capture: %w", err)
	}
	a.mic = c
	return nil
}

func (a *audioEngine) stopInput() {
	a.mu.Lock()
	c := a.mic
	a.mic = nil
	a.mu.Unlock()

	if c == nil {
		return
	}
	if err := c.Stop(); err != nil {
		a.log.Error("stop input capture", "error", err)
	}
}

func (a *audioEngine) startOutput(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sysOut != nil {
		return nil
	}
	if err := a.out.Start(path, nil, false); err != nil {
		return err
	}
	c, err := audiocapture.New(audiocapture.SourceOutput, nil)
	if err != nil {
		a.out.Cancel()
		return fmt.Errorf("create output capture: %w", err)
	}
	if err := c.Start(a.out.ProcessAudioData); err != nil {
		a.out.Cancel()
		return fmt.Errorf("start output capture: %w", err)
	}
	a.sysOut = c
	return nil
}

func (a *audioEngine) stopOutput() {
	a.mu.Lock()
	c := a.sysOut
	a.sysOut = nil
	a.mu.Unlock()

	if c == nil {
		return
	}
	if err := c.Stop(); err != nil {
		a.log.Error("stop output capture", "error", err)
	}
	if _, err := a.out.Stop(); err != nil {
		a.log.Error("finalize output recording", "error", err)
	}
}

// Close tears down any capture still running.
func (a *audioEngine) Close() {
	a.stopInput()
	a.stopOutput()
}

// waveformEmitter returns a bus audio listener that forwards frames to the
// frontend for the recording window waveform.
func waveformEmitter(emit func(name string, data any)) processor.AudioListener {
	seq := 0
	return func(samples []int16) {
		seq++
		emit(EventAudioSamples, AudioSamples{
			Samples:   samples,
			Timestamp: time.Now().UnixMilli(),
			Seq:       seq,
		})
	}
}
