// Package stt provides speech-to-text providers and their registry. Cloud
// providers proxy through the qSpeak API; the local provider shells out to
// whisper.cpp.
package stt

import (
	"context"
	"fmt"

	"go.qspeak.app/qspeak/state"
)

// ErrAudioTooShort is returned when a recording carries too few samples to
// transcribe meaningfully.
var ErrAudioTooShort = fmt.Errorf("The audio file is too short to be transcribed. Please try again.")

// Request describes one transcription job.
type Request struct {
	// AudioPath points at a 16 kHz mono WAV file.
	AudioPath string
	// Model is the API model identifier, or a ggml file name for local.
	Model string
	// Language hints the source language. Auto means detect.
	Language state.Language
	// Prompt biases the decoder, used for the user dictionary glossary.
	// Providers that do not support prompts ignore it.
	Prompt string
	// APIKey authenticates cloud requests.
	APIKey *string
}

// Provider converts recorded audio into text.
type Provider interface {
	// Name returns the provider identifier used in model configs.
	Name() state.TranscriptionProvider

	// Transcribe runs one job and returns the transcript.
	Transcribe(ctx context.Context, req Request) (string, error)

	// Close releases resources held by the provider.
	Close() error
}

// Registry holds the registered providers.
type Registry struct {
	providers map[state.TranscriptionProvider]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[state.TranscriptionProvider]Provider)}
}

func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get returns the provider for a model's configured provider id.
func (r *Registry) Get(name state.TranscriptionProvider) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("no transcription provider registered for %q", name)
	}
	return p, nil
}

func (r *Registry) Close() error {
	for _, p := range r.providers {
		if err := p.Close(); err != nil {
			return err
		}
	}
	return nil
}
