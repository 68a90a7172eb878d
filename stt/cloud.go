package stt

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"go.qspeak.app/qspeak/state"
)

// Cloud transcribes through the qSpeak API, which fronts both the OpenAI
// and Mistral transcription endpoints.
type Cloud struct {
	provider     state.TranscriptionProvider
	baseURL      string
	extraHeaders map[string]string
	// Voxtral rejects language and prompt fields.
	supportsHints bool
}

// NewOpenAI returns a provider for the whisper-1 endpoint.
func NewOpenAI() *Cloud {
	return &Cloud{
		provider:      state.ProviderOpenAI,
		baseURL:       state.QSpeakAPIV1URL,
		supportsHints: true,
	}
}

// NewVoxtral returns a provider for Mistral's voxtral models. The qSpeak
// API routes on the x-provider header.
func NewVoxtral() *Cloud {
	return &Cloud{
		provider:     state.ProviderMistral,
		baseURL:      state.QSpeakAPIV1URL,
		extraHeaders: map[string]string{"x-provider": "use_mistral"},
	}
}

func (c *Cloud) Name() state.TranscriptionProvider { return c.provider }

func (c *Cloud) Transcribe(ctx context.Context, req Request) (string, error) {
	f, err := os.Open(req.AudioPath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	opts := []option.RequestOption{option.WithBaseURL(c.baseURL)}
	if req.APIKey != nil {
		opts = append(opts, option.WithAPIKey(*req.APIKey))
	}
	for k, v := range c.extraHeaders {
		opts = append(opts, option.WithHeader(k, v))
	}
	client := openai.NewClient(opts...)

	params := openai.AudioTranscriptionNewParams{
		Model: openai.AudioModel(req.Model),
		File:  f,
	}
	if c.supportsHints {
		if !req.Language.IsAuto() {
			params.Language = openai.String(req.Language.Code())
		}
		if req.Prompt != "" {
			params.Prompt = openai.String(req.Prompt)
		}
	}

	resp, err := client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	return resp.Text, nil
}

func (c *Cloud) Close() error { return nil }
