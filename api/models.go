package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"go.qspeak.app/qspeak/state"
)

type apiConversationModel struct {
	Name           string  `json:"name"`
	Model          string  `json:"model"`
	SupportsTools  bool    `json:"supports_tools"`
	SupportsVision bool    `json:"supports_vision"`
	Speed          float64 `json:"speed"`
	Intelligence   float64 `json:"intelligence"`
}

type apiTranscriptionModel struct {
	Name         string  `json:"name"`
	Model        string  `json:"model"`
	Provider     string  `json:"provider"`
	Speed        float64 `json:"speed"`
	Intelligence float64 `json:"intelligence"`
}

// Models fetches the cloud model catalogs from the backend.
type Models struct {
	http    *http.Client
	baseURL string
	log     *slog.Logger
}

func NewModels(log *slog.Logger) *Models {
	return &Models{http: newHTTPClient(), baseURL: BaseURL, log: log}
}

// ConversationModels fetches the conversation catalog, falling back to the
// built-in models when the API is unreachable.
func (m *Models) ConversationModels(ctx context.Context) []state.ConversationModel {
	models, err := m.fetchConversationModels(ctx)
	if err != nil {
		m.log.Warn("Failed to fetch models from API, using fallback models", "error", err)
		return FallbackConversationModels()
	}
	m.log.Info("Fetched conversation models from API", "count", len(models))
	return models
}

// TranscriptionModels fetches the cloud transcription catalog, falling back
// to the built-in models when the API is unreachable. Local whisper models
// are not part of the remote catalog.
func (m *Models) TranscriptionModels(ctx context.Context) []state.TranscriptionModel {
	models, err := m.fetchTranscriptionModels(ctx)
	if err != nil {
		m.log.Warn("Failed to fetch transcription models from API, using fallback models", "error", err)
		return FallbackTranscriptionModels()
	}
	m.log.Info("Fetched transcription models from API", "count", len(models))
	return models
}

func (m *Models) fetchConversationModels(ctx context.Context) ([]state.ConversationModel, error) {
	var apiModels []apiConversationModel
	if err := m.get(ctx, "/models", &apiModels); err != nil {
		return nil, err
	}
	models := make([]state.ConversationModel, 0, len(apiModels))
	for _, am := range apiModels {
		model := state.ConversationModel{
			Name:           am.Name,
			Model:          am.Model,
			Config:         state.QSpeakModelConfig(am.Model),
			SupportsTools:  am.SupportsTools,
			SupportsVision: am.SupportsVision,
			DownloadState:  state.DownloadState{Status: state.DownloadDownloaded},
			Speed:          am.Speed,
			Intelligence:   am.Intelligence,
		}
		if am.SupportsVision {
			model.Vision = &state.VisionModel{Name: am.Model}
		}
		models = append(models, model)
	}
	return models, nil
}

func (m *Models) fetchTranscriptionModels(ctx context.Context) ([]state.TranscriptionModel, error) {
	var apiModels []apiTranscriptionModel
	if err := m.get(ctx, "/transcription-models", &apiModels); err != nil {
		return nil, err
	}
	models := make([]state.TranscriptionModel, 0, len(apiModels))
	for _, am := range apiModels {
		provider := state.ProviderOpenAI
		if am.Provider == string(state.ProviderMistral) {
			provider = state.ProviderMistral
		}
		models = append(models, state.TranscriptionModel{
			Name:          am.Name,
			Model:         am.Model,
			Provider:      provider,
			DownloadState: state.DownloadState{Status: state.DownloadDownloaded},
			Speed:         am.Speed,
			Intelligence:  am.Intelligence,
		})
	}
	return models, nil
}

func (m *Models) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := m.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("model catalog request failed with status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// FallbackConversationModels is the hardcoded catalog used when the API is
// unavailable.
func FallbackConversationModels() []state.ConversationModel {
	return []state.ConversationModel{
		{
			Name:           "GPT 4.1",
			Model:          "gpt-4.1",
			Config:         state.QSpeakModelConfig("gpt-4.1"),
			Vision:         &state.VisionModel{Name: "gpt-4.1"},
			SupportsTools:  true,
			SupportsVision: true,
			DownloadState:  state.DownloadState{Status: state.DownloadDownloaded},
			Speed:          4.0,
			Intelligence:   5.0,
		},
		{
			Name:           "GPT 4o",
			Model:          "gpt-4o",
			Config:         state.QSpeakModelConfig("gpt-4o"),
			Vision:         &state.VisionModel{Name: "gpt-4o"},
			SupportsTools:  true,
			SupportsVision: true,
			DownloadState:  state.DownloadState{Status: state.DownloadDownloaded},
			Speed:          3.0,
			Intelligence:   4.0,
		},
	}
}

// FallbackTranscriptionModels is the hardcoded cloud catalog used when the
// API is unavailable.
func FallbackTranscriptionModels() []state.TranscriptionModel {
	return []state.TranscriptionModel{
		{
			Name:          "OpenAI Whisper",
			Model:         "whisper-1",
			Provider:      state.ProviderOpenAI,
			DownloadState: state.DownloadState{Status: state.DownloadDownloaded},
			Speed:         3.0,
			Intelligence:  5.0,
		},
		{
			Name:          "Mistral Voxtral",
			Model:         "voxtral-mini-2507",
			Provider:      state.ProviderMistral,
			DownloadState: state.DownloadState{Status: state.DownloadDownloaded},
			Speed:         3.0,
			Intelligence:  5.0,
		},
	}
}
