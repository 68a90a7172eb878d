package processor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.qspeak.app/qspeak/api"
	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/hub"
	"go.qspeak.app/qspeak/state"
	"go.qspeak.app/qspeak/stt"
)

// Local whisper models shipped in the default catalog. Only these may be
// deleted from disk through the transcription model list.
var localPredefinedTranscriptionModels = map[string]bool{
	"ggml-tiny.bin":  true,
	"ggml-base.bin":  true,
	"ggml-small.bin": true,
}

// ModelsProcessor owns the model catalogs: it seeds them from the API at
// startup, reconciles download states with the files on disk, drives model
// downloads with progress reporting, and manages custom conversation models.
type ModelsProcessor struct {
	store   *state.Store
	bus     *Processor
	catalog *api.Models
	whisper *stt.WhisperLocal
	cache   *hub.Cache
	log     *slog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewModelsProcessor(store *state.Store, bus *Processor, catalog *api.Models, whisper *stt.WhisperLocal, cache *hub.Cache, log *slog.Logger) *ModelsProcessor {
	if log == nil {
		log = slog.Default()
	}
	return &ModelsProcessor{
		store:   store,
		bus:     bus,
		catalog: catalog,
		whisper: whisper,
		cache:   cache,
		log:     log,
	}
}

// Register attaches the listener and refreshes both catalogs off the bus
// goroutine.
func (p *ModelsProcessor) Register() {
	p.bus.RegisterEventListener("models", p.handle)
	go p.initialize()
}

func (p *ModelsProcessor) handle(e event.Event) error {
	switch ev := e.(type) {
	case event.ActionDownloadTranscriptionModel:
		p.downloadTranscriptionModel(ev.Model)
	case event.DownloadTranscriptionModelSuccess:
		p.setTranscriptionState(ev.Model, state.DownloadState{Status: state.DownloadDownloaded})
	case event.DownloadTranscriptionModelError:
		p.log.Error("transcription model download failed", "model", ev.Model, "error", ev.Error)
		p.setTranscriptionState(ev.Model, state.DownloadState{Status: state.DownloadError, Error: ev.Error})
	case event.ActionCancelDownloadTranscriptionModel:
		p.cancelDownload(ev.Model)
		p.setTranscriptionState(ev.Model, state.DownloadState{Status: state.DownloadIdle})
	case event.ActionDeleteTranscriptionModel:
		return p.deleteTranscriptionModel(ev.Model)

	case event.ActionDownloadConversationModel:
		p.downloadConversationModel(ev.Model)
	case event.DownloadConversationModelSuccess:
		p.setConversationState(ev.Model, state.DownloadState{Status: state.DownloadDownloaded})
	case event.ActionCancelDownloadConversationModel:
		p.cancelDownload(ev.Model)
		p.setConversationState(ev.Model, state.DownloadState{Status: state.DownloadIdle})
	case event.ActionDeleteConversationModel:
		return p.deleteConversationModel(ev.Model)

	case event.ActionAddConversationModel:
		p.addConversationModel(ev.NewConversationModel)
	case event.ActionUpdateConversationModel:
		p.updateConversationModel(ev.UpdateConversationModel)
	case event.ActionDeleteCustomConversationModel:
		p.deleteCustomConversationModel(ev.Model)
	case event.ActionRefetchConversationModels:
		go p.refetchConversationModels()
	}
	return nil
}

// initialize replaces the cloud portion of both catalogs with whatever the
// API returns. Custom conversation models and local whisper models survive
// the refresh, and download states are rebuilt from the files on disk.
func (p *ModelsProcessor) initialize() {
	p.refetchConversationModels()

	cloud := p.catalog.TranscriptionModels(context.Background())
	p.store.Update(func(c *state.AppStateContext) {
		merged := cloud
		for _, m := range c.Models.TranscriptionModels {
			if m.Provider == state.ProviderWhisperLocal {
				merged = append(merged, m)
			}
		}
		c.Models.TranscriptionModels = merged
	})

	p.refreshModelsState()
}

// refetchConversationModels pulls the catalog from the API and merges the
// user's custom models back in so they are never lost.
func (p *ModelsProcessor) refetchConversationModels() {
	models := p.catalog.ConversationModels(context.Background())
	p.store.Update(func(c *state.AppStateContext) {
		for _, m := range c.Models.ConversationModels {
			if m.Config.IsCustom() {
				models = append(models, m)
			}
		}
		c.Models.ConversationModels = models
	})
}

func (p *ModelsProcessor) refreshModelsState() {
	p.store.Update(func(c *state.AppStateContext) {
		for i := range c.Models.TranscriptionModels {
			m := &c.Models.TranscriptionModels[i]
			m.DownloadState = p.transcriptionCacheState(m)
		}
		for i := range c.Models.ConversationModels {
			m := &c.Models.ConversationModels[i]
			m.DownloadState = p.conversationCacheState(m)
		}
	})
}

func (p *ModelsProcessor) transcriptionCacheState(m *state.TranscriptionModel) state.DownloadState {
	if !m.IsLocal {
		return state.DownloadState{Status: state.DownloadDownloaded}
	}
	if p.whisper.ModelDownloaded(m.Model) {
		return state.DownloadState{Status: state.DownloadDownloaded}
	}
	return state.DownloadState{Status: state.DownloadIdle}
}

// conversationCacheState reports Downloaded only when every file a local
// model needs is present, the vision sidecar included.
func (p *ModelsProcessor) conversationCacheState(m *state.ConversationModel) state.DownloadState {
	if !m.IsLocal {
		return state.DownloadState{Status: state.DownloadDownloaded}
	}
	if m.Repository == nil || !p.cache.Downloaded(*m.Repository, m.Model) {
		return state.DownloadState{Status: state.DownloadIdle}
	}
	if m.Vision != nil {
		if m.Vision.Repository == nil || !p.cache.Downloaded(*m.Vision.Repository, m.Vision.Name) {
			return state.DownloadState{Status: state.DownloadIdle}
		}
	}
	return state.DownloadState{Status: state.DownloadDownloaded}
}

func (p *ModelsProcessor) downloadTranscriptionModel(model string) {
	p.setTranscriptionState(model, state.DownloadState{Status: state.DownloadDownloading})
	ctx := p.downloadContext(model)

	go func() {
		defer p.clearCancel(model)

		// Republish only on full 5% steps to keep state churn down.
		last := 0
		err := p.whisper.DownloadModel(ctx, model, func(percent int) {
			if percent-last <= 5 {
				return
			}
			last = percent
			p.setTranscriptionState(model, state.DownloadState{
				Status:   state.DownloadDownloading,
				Progress: float64(percent) / 100,
			})
		})
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			p.bus.Dispatch(event.DownloadTranscriptionModelError{Model: model, Error: err.Error()})
			return
		}
		p.bus.Dispatch(event.DownloadTranscriptionModelSuccess{Model: model})
	}()
}

func (p *ModelsProcessor) downloadConversationModel(modelID string) {
	var model *state.ConversationModel
	for _, m := range p.store.Context().Models.ConversationModels {
		if m.Model == modelID {
			model = &m
			break
		}
	}
	if model == nil {
		p.log.Warn("download requested for unknown conversation model", "model", modelID)
		return
	}
	if model.Repository == nil {
		p.log.Warn("conversation model has no repository to download from", "model", modelID)
		return
	}

	p.setConversationState(modelID, state.DownloadState{Status: state.DownloadDownloading})
	ctx := p.downloadContext(modelID)
	hasVision := model.Vision != nil && model.Vision.Repository != nil
	repository := *model.Repository

	go func() {
		defer p.clearCancel(modelID)

		// With a vision sidecar the text weights map to the first half of
		// the progress bar and the vision weights to the second.
		textProgress := p.conversationProgress(modelID, 0, hasVision)
		err := p.cache.Download(ctx, repository, model.Model, textProgress)
		if err == nil && hasVision {
			visionProgress := p.conversationProgress(modelID, 0.5, true)
			err = p.cache.Download(ctx, *model.Vision.Repository, model.Vision.Name, visionProgress)
		}
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			p.log.Error("conversation model download failed", "model", modelID, "error", err)
			p.setConversationState(modelID, state.DownloadState{Status: state.DownloadError, Error: err.Error()})
			return
		}
		p.bus.Dispatch(event.DownloadConversationModelSuccess{Model: modelID})
	}()
}

// conversationProgress maps a file's [0,1] progress onto the model's overall
// bar. halved downloads cover half the range starting at offset.
func (p *ModelsProcessor) conversationProgress(modelID string, offset float64, halved bool) func(float64) {
	var last float64
	return func(fraction float64) {
		if fraction-last <= 0.05 {
			return
		}
		last = fraction
		overall := fraction
		if halved {
			overall = fraction/2 + offset
		}
		p.setConversationState(modelID, state.DownloadState{
			Status:   state.DownloadDownloading,
			Progress: overall,
		})
	}
}

func (p *ModelsProcessor) deleteTranscriptionModel(model string) error {
	if !localPredefinedTranscriptionModels[model] {
		return fmt.Errorf("cannot delete predefined cloud transcription model: %s", model)
	}
	if err := p.whisper.DeleteModel(model); err != nil {
		return fmt.Errorf("delete transcription model %s: %w", model, err)
	}
	p.setTranscriptionState(model, state.DownloadState{Status: state.DownloadIdle})
	return nil
}

// deleteConversationModel removes a local model's files from disk. The model
// stays in the catalog so it can be downloaded again.
func (p *ModelsProcessor) deleteConversationModel(modelID string) error {
	var model *state.ConversationModel
	for _, m := range p.store.Context().Models.ConversationModels {
		if m.Model == modelID {
			model = &m
			break
		}
	}
	if model == nil {
		return fmt.Errorf("conversation model not found: %s", modelID)
	}
	if !model.IsLocal {
		return fmt.Errorf("cannot delete files for non-local model: %s", modelID)
	}
	if model.Repository == nil {
		return fmt.Errorf("model %s has no repository, cannot delete files", modelID)
	}

	if err := p.cache.Delete(*model.Repository, model.Model); err != nil {
		return fmt.Errorf("remove model file for %s: %w", modelID, err)
	}
	if model.Vision != nil && model.Vision.Repository != nil {
		if err := p.cache.Delete(*model.Vision.Repository, model.Vision.Name); err != nil {
			return fmt.Errorf("remove vision model file for %s: %w", modelID, err)
		}
	}

	p.setConversationState(modelID, state.DownloadState{Status: state.DownloadIdle})
	return nil
}

func (p *ModelsProcessor) addConversationModel(ev event.NewConversationModel) {
	p.store.Update(func(c *state.AppStateContext) {
		var vision *state.VisionModel
		if ev.SupportsVision {
			vision = &state.VisionModel{Name: ev.Model}
		}
		c.Models.ConversationModels = append(c.Models.ConversationModels, state.ConversationModel{
			Name:  ev.Model,
			Model: ev.Model,
			Config: state.ModelConfig{
				URL:            ev.URL,
				Model:          ev.Model,
				APIKey:         ev.APIKey,
				SupportsVision: ev.SupportsVision,
				SupportsTools:  ev.SupportsTools,
			},
			Vision:         vision,
			SupportsTools:  ev.SupportsTools,
			SupportsVision: ev.SupportsVision,
			DownloadState:  state.DownloadState{Status: state.DownloadDownloaded},
			Speed:          3.0,
			Intelligence:   4.0,
		})
	})
	p.log.Info("added custom conversation model", "model", ev.Model, "url", ev.URL)
}

// updateConversationModel edits a custom model in place. Catalog models are
// immutable and attempts to change them are ignored.
func (p *ModelsProcessor) updateConversationModel(ev event.UpdateConversationModel) {
	p.store.Update(func(c *state.AppStateContext) {
		for i := range c.Models.ConversationModels {
			m := &c.Models.ConversationModels[i]
			if m.Model != ev.OriginalModel {
				continue
			}
			if !m.Config.IsCustom() {
				p.log.Warn("refusing to update protected conversation model", "model", ev.OriginalModel)
				return
			}
			m.Model = ev.Model
			m.Name = ev.Model
			m.Config = state.ModelConfig{
				URL:            ev.URL,
				Model:          ev.Model,
				APIKey:         ev.APIKey,
				SupportsVision: ev.SupportsVision,
				SupportsTools:  ev.SupportsTools,
			}
			m.SupportsTools = ev.SupportsTools
			m.SupportsVision = ev.SupportsVision
			m.Vision = nil
			if ev.SupportsVision {
				m.Vision = &state.VisionModel{Name: ev.Model}
			}
			return
		}
		p.log.Warn("conversation model to update not found", "model", ev.OriginalModel)
	})
}

func (p *ModelsProcessor) deleteCustomConversationModel(modelID string) {
	p.store.Update(func(c *state.AppStateContext) {
		for i, m := range c.Models.ConversationModels {
			if m.Model != modelID {
				continue
			}
			if !m.Config.IsCustom() {
				p.log.Warn("deletion denied for protected conversation model", "model", modelID)
				return
			}
			c.Models.ConversationModels = append(c.Models.ConversationModels[:i], c.Models.ConversationModels[i+1:]...)
			return
		}
		p.log.Warn("custom conversation model to delete not found", "model", modelID)
	})
}

func (p *ModelsProcessor) setTranscriptionState(model string, st state.DownloadState) {
	p.store.Update(func(c *state.AppStateContext) {
		for i := range c.Models.TranscriptionModels {
			if c.Models.TranscriptionModels[i].Model == model {
				c.Models.TranscriptionModels[i].DownloadState = st
				return
			}
		}
	})
}

func (p *ModelsProcessor) setConversationState(model string, st state.DownloadState) {
	p.store.Update(func(c *state.AppStateContext) {
		for i := range c.Models.ConversationModels {
			if c.Models.ConversationModels[i].Model == model {
				c.Models.ConversationModels[i].DownloadState = st
				return
			}
		}
	})
}

// downloadContext registers a cancelable context for an in-flight download,
// replacing any previous one for the same model.
func (p *ModelsProcessor) downloadContext(model string) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	p.mu.Lock()
	if p.cancels == nil {
		p.cancels = make(map[string]context.CancelFunc)
	}
	if prev, ok := p.cancels[model]; ok {
		prev()
	}
	p.cancels[model] = cancel
	p.mu.Unlock()
	return ctx
}

func (p *ModelsProcessor) cancelDownload(model string) {
	p.mu.Lock()
	if cancel, ok := p.cancels[model]; ok {
		cancel()
		delete(p.cancels, model)
	}
	p.mu.Unlock()
}

func (p *ModelsProcessor) clearCancel(model string) {
	p.mu.Lock()
	delete(p.cancels, model)
	p.mu.Unlock()
}
