package recorder

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecordAndStop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recording_20240101_120000.wav")

	r := New(discardLogger())
	if err := r.Start(path, nil, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r.ProcessAudioData([]int16{100, 200, -300})
	r.ProcessAudioData([]int16{400})

	got, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got != path {
		t.Fatalf("Stop returned %q, want %q", got, path)
	}

	samples, err := readWAVSamples(path)
	if err != nil {
		t.Fatalf("readWAVSamples: %v", err)
	}
	want := []int16{100, 200, -300, 400}
	if len(samples) != len(want) {
		t.Fatalf("got %d samples, want %d", len(samples), len(want))
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d", i, samples[i], want[i])
		}
	}
}

func TestCancelRemovesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recording.wav")

	r := New(discardLogger())
	if err := r.Start(path, nil, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r.ProcessAudioData([]int16{1, 2, 3})
	r.Cancel()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("cancelled recording still exists: %v", err)
	}
	if _, err := r.Stop(); err == nil {
		t.Fatal("Stop after Cancel should fail")
	}
}

func TestSamplesDroppedWhenNotRecording(t *testing.T) {
	r := New(discardLogger())
	r.ProcessAudioData([]int16{1, 2, 3}) // must not panic
}

func TestStopMixesOutputRecording(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recording.wav")

	writeWAV(t, OutputPath(path), []int16{10, 10, 10, 10})

	r := New(discardLogger())
	if err := r.Start(path, nil, true); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r.ProcessAudioData([]int16{5, 5})
	if _, err := r.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	samples, err := readWAVSamples(CombinedPath(path))
	if err != nil {
		t.Fatalf("combined file: %v", err)
	}
	want := []int16{15, 15, 10, 10}
	if len(samples) != len(want) {
		t.Fatalf("got %d samples, want %d", len(samples), len(want))
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d", i, samples[i], want[i])
		}
	}
}

func TestMixClampsOverflow(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.wav")
	b := filepath.Join(dir, "b.wav")
	out := filepath.Join(dir, "out.wav")

	writeWAV(t, a, []int16{30000, -30000})
	writeWAV(t, b, []int16{30000, -30000})

	if err := mixWAVFiles(a, b, out); err != nil {
		t.Fatalf("mixWAVFiles: %v", err)
	}
	samples, err := readWAVSamples(out)
	if err != nil {
		t.Fatalf("readWAVSamples: %v", err)
	}
	if samples[0] != 32767 || samples[1] != -32768 {
		t.Fatalf("got %v, want clamped [32767 -32768]", samples)
	}
}

func TestHooksDriveCaptureLifecycle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recording.wav")

	var calls []string
	r := New(discardLogger())
	r.SetHooks(Hooks{
		StartInput: func(device *string) error {
			if device == nil || *device != "Built-in" {
				t.Fatalf("StartInput device = %v", device)
			}
			calls = append(calls, "start_input")
			return nil
		},
		StopInput: func() { calls = append(calls, "stop_input") },
		StartOutput: func(outPath string) error {
			if outPath != OutputPath(path) {
				t.Fatalf("StartOutput path = %q", outPath)
			}
			calls = append(calls, "start_output")
			// The output side finishes before Stop finalizes, so the mix
			// sees a complete file.
			writeWAV(t, outPath, []int16{10, 10})
			return nil
		},
		StopOutput: func() { calls = append(calls, "stop_output") },
	})

	device := "Built-in"
	if err := r.Start(path, &device, true); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r.ProcessAudioData([]int16{5, 5})
	if _, err := r.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	want := []string{"start_input", "start_output", "stop_input", "stop_output"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
	}

	if _, err := readWAVSamples(CombinedPath(path)); err != nil {
		t.Fatalf("combined file: %v", err)
	}
}

func TestStartInputFailureCancelsRecording(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recording.wav")

	r := New(discardLogger())
	r.SetHooks(Hooks{
		StartInput: func(*string) error { return os.ErrPermission },
		StopInput:  func() {},
	})

	if err := r.Start(path, nil, false); err == nil {
		t.Fatal("Start should fail when input capture fails")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("partial recording left behind: %v", err)
	}
}

func TestPathDerivation(t *testing.T) {
	if got := OutputPath("/tmp/audio/recording_x.wav"); got != "/tmp/audio/recording_x_output.wav" {
		t.Fatalf("OutputPath = %q", got)
	}
	if got := CombinedPath("/tmp/audio/recording_x.wav"); got != "/tmp/audio/recording_x_combined.wav" {
		t.Fatalf("CombinedPath = %q", got)
	}
}

func writeWAV(t *testing.T, path string, samples []int16) {
	t.Helper()
	w, err := newWAVWriter(path)
	if err != nil {
		t.Fatalf("newWAVWriter: %v", err)
	}
	if err := w.WriteSamples(samples); err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
