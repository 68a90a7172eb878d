package state

// QSpeakAPIV1URL is the OpenAI-compatible endpoint of the qSpeak cloud API.
// Models whose config points anywhere else are treated as user-added custom
// models.
const QSpeakAPIV1URL = "https://qspeak-api.fly.dev/api/v1"

// TranscriptionProvider selects the backend used for speech to text.
type TranscriptionProvider string

const (
	ProviderOpenAI       TranscriptionProvider = "openai"
	ProviderMistral      TranscriptionProvider = "mistral"
	ProviderWhisperLocal TranscriptionProvider = "whisper_local"
)

// ModelConfig describes how to reach an OpenAI-compatible chat endpoint.
type ModelConfig struct {
	URL            string  `json:"url"`
	Model          string  `json:"model"`
	APIKey         *string `json:"api_key"`
	SupportsVision bool    `json:"supports_vision"`
	SupportsTools  bool    `json:"supports_tools"`
}

// QSpeakModelConfig returns the config for a model served by the qSpeak API.
func QSpeakModelConfig(model string) ModelConfig {
	return ModelConfig{
		URL:            QSpeakAPIV1URL,
		Model:          model,
		SupportsVision: true,
		SupportsTools:  true,
	}
}

// IsCustom reports whether the config points at a user-provided endpoint
// rather than the qSpeak API. Only custom models may be edited or deleted.
func (c ModelConfig) IsCustom() bool { return c.URL != QSpeakAPIV1URL }

// DownloadStatus is the lifecycle of a local model download.
type DownloadStatus string

const (
	DownloadIdle        DownloadStatus = "idle"
	DownloadDownloading DownloadStatus = "downloading"
	DownloadDownloaded  DownloadStatus = "downloaded"
	DownloadError       DownloadStatus = "error"
)

// DownloadState tracks progress of a model download.
type DownloadState struct {
	Status   DownloadStatus `json:"status"`
	Progress float64        `json:"progress,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// TranscriptionModel is one entry of the transcription model catalog.
type TranscriptionModel struct {
	Name          string                `json:"name"`
	Model         string                `json:"model"`
	Provider      TranscriptionProvider `json:"provider"`
	Size          float64               `json:"size"`
	Parameters    float64               `json:"parameters"`
	VRAM          float64               `json:"vram"`
	DownloadState DownloadState         `json:"download_state"`
	IsLocal       bool                  `json:"is_local"`
	Speed         float64               `json:"speed"`
	Intelligence  float64               `json:"intelligence"`
}

// VisionModel is an optional companion model used for image understanding
// by local conversation models.
type VisionModel struct {
	Name       string  `json:"name"`
	Repository *string `json:"repository"`
	IsLocal    bool    `json:"is_local"`
}

// ConversationModel is one entry of the conversation model catalog.
type ConversationModel struct {
	Name           string        `json:"name"`
	Model          string        `json:"model"`
	Config         ModelConfig   `json:"config"`
	Repository     *string       `json:"repository"`
	Vision         *VisionModel  `json:"vision"`
	SupportsTools  bool          `json:"supports_tools"`
	SupportsVision bool          `json:"supports_vision"`
	Size           float64       `json:"size"`
	Parameters     float64       `json:"parameters"`
	VRAM           float64       `json:"vram"`
	DownloadState  DownloadState `json:"download_state"`
	IsLocal        bool          `json:"is_local"`
	Speed          float64       `json:"speed"`
	Intelligence   float64       `json:"intelligence"`
}

// ModelsContext holds both model catalogs.
type ModelsContext struct {
	TranscriptionModels []TranscriptionModel `json:"transcription_models"`
	ConversationModels  []ConversationModel  `json:"conversation_models"`
}

func (c ModelsContext) clone() ModelsContext {
	out := ModelsContext{
		TranscriptionModels: make([]TranscriptionModel, len(c.TranscriptionModels)),
		ConversationModels:  make([]ConversationModel, len(c.ConversationModels)),
	}
	copy(out.TranscriptionModels, c.TranscriptionModels)
	copy(out.ConversationModels, c.ConversationModels)
	return out
}

// DefaultModelsContext seeds the catalogs. Cloud models come from the API at
// startup; only the local Whisper variants are hardcoded.
func DefaultModelsContext() ModelsContext {
	return ModelsContext{
		TranscriptionModels: []TranscriptionModel{
			{
				Name:          "Whisper Tiny",
				Model:         "ggml-tiny.bin",
				Provider:      ProviderWhisperLocal,
				Size:          77.0,
				Parameters:    0.39,
				VRAM:          200.0,
				DownloadState: DownloadState{Status: DownloadIdle},
				IsLocal:       true,
				Speed:         5.0,
				Intelligence:  2.0,
			},
			{
				Name:          "Whisper Base",
				Model:         "ggml-base.bin",
				Provider:      ProviderWhisperLocal,
				Size:          148.0,
				Parameters:    0.74,
				VRAM:          400.0,
				DownloadState: DownloadState{Status: DownloadIdle},
				IsLocal:       true,
				Speed:         4.0,
				Intelligence:  3.0,
			},
			{
				Name:          "Whisper Small",
				Model:         "ggml-small.bin",
				Provider:      ProviderWhisperLocal,
				Size:          466.0,
				Parameters:    0.244,
				VRAM:          1200.0,
				DownloadState: DownloadState{Status: DownloadIdle},
				IsLocal:       true,
				Speed:         3.0,
				Intelligence:  4.0,
			},
		},
		ConversationModels: []ConversationModel{},
	}
}
