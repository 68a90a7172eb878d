package stt

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.qspeak.app/qspeak/state"
)

func writeTestWAV(t *testing.T, path string, samples int) {
	t.Helper()
	data := make([]byte, samples*2)
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(16000))
	binary.Write(&buf, binary.LittleEndian, uint32(32000))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWavSampleCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.wav")
	writeTestWAV(t, path, 32000)

	got, err := wavSampleCount(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != 32000 {
		t.Fatalf("sample count = %d, want 32000", got)
	}
}

func TestWavSampleCountRejectsNonWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(path, []byte("not a wav"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := wavSampleCount(path); err == nil {
		t.Fatal("expected error for non-wav data")
	}
}

func TestTranscribeRejectsShortAudio(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWhisperLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "short.wav")
	writeTestWAV(t, path, 8000)

	_, err = w.Transcribe(context.Background(), Request{
		AudioPath: path,
		Model:     "ggml-tiny.bin",
		Language:  state.LanguageAuto,
	})
	if !errors.Is(err, ErrAudioTooShort) {
		t.Fatalf("expected ErrAudioTooShort, got %v", err)
	}
}

func TestRegistryDispatchesByProvider(t *testing.T) {
	r := NewRegistry()
	r.Register(NewOpenAI())
	r.Register(NewVoxtral())

	p, err := r.Get(state.ProviderMistral)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != state.ProviderMistral {
		t.Fatalf("wrong provider: %s", p.Name())
	}
	if _, err := r.Get(state.ProviderWhisperLocal); err == nil {
		t.Fatal("expected error for unregistered provider")
	}
}
