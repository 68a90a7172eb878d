package processor

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/langdetect"
	"go.qspeak.app/qspeak/llm"
	"go.qspeak.app/qspeak/mcp"
	"go.qspeak.app/qspeak/recorder"
	"go.qspeak.app/qspeak/state"
	"go.qspeak.app/qspeak/stt"
)

// Clipboard is the desktop clipboard and paste surface. The wails shell
// provides the real implementation.
type Clipboard interface {
	// SetText places text on the clipboard.
	SetText(text string) error
	// SetTextAndPaste places text on the clipboard and pastes it into the
	// focused application.
	SetTextAndPaste(text string) error
	// SelectedText copies and returns the current selection.
	SelectedText() (string, error)
}

// NopClipboard ignores clipboard requests, for headless runs and tests.
type NopClipboard struct{}

func (NopClipboard) SetText(string) error         { return nil }
func (NopClipboard) SetTextAndPaste(string) error { return nil }
func (NopClipboard) SelectedText() (string, error) {
	return "", nil
}

// Screenshotter captures the screen as PNG data.
type Screenshotter interface {
	Capture() ([]byte, error)
}

// NopScreenshotter returns empty captures.
type NopScreenshotter struct{}

func (NopScreenshotter) Capture() ([]byte, error) { return nil, fmt.Errorf("screenshots unavailable") }

const (
	combinedFileWait = 3 * time.Second
	combinedFilePoll = 100 * time.Millisecond
	combinedFileMin  = 1000
)

// ConversationProcessor runs the dictation session state machine: recording,
// transcription, transformation through the language model, tool calls and
// the follow-up paste.
type ConversationProcessor struct {
	store      *state.Store
	bus        *Processor
	rec        *recorder.Recorder
	providers  *stt.Registry
	llm        *llm.Client
	tools      *mcp.Registry
	clipboard  Clipboard
	screenshot Screenshotter
	audioDir   string
	log        *slog.Logger
}

func NewConversationProcessor(store *state.Store, bus *Processor, rec *recorder.Recorder, providers *stt.Registry, client *llm.Client, tools *mcp.Registry, clipboard Clipboard, screenshot Screenshotter, audioDir string, log *slog.Logger) *ConversationProcessor {
	if clipboard == nil {
		clipboard = NopClipboard{}
	}
	if screenshot == nil {
		screenshot = NopScreenshotter{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &ConversationProcessor{
		store:      store,
		bus:        bus,
		rec:        rec,
		providers:  providers,
		llm:        client,
		tools:      tools,
		clipboard:  clipboard,
		screenshot: screenshot,
		audioDir:   audioDir,
		log:        log,
	}
}

func (p *ConversationProcessor) Register() {
	p.bus.RegisterEventListener("conversation", p.handle)
}

func (p *ConversationProcessor) handle(e event.Event) error {
	ctx := p.store.Context()
	st := ctx.Conversation.State

	switch ev := e.(type) {
	case event.ActionRecording:
		switch st {
		case state.ConversationIdle:
			return p.startRecording(ctx)
		case state.ConversationListening:
			if _, err := p.rec.Stop(); err != nil {
				p.log.Error("failed to stop recording", "error", err)
			}
			if err := p.startTranscription(); err != nil {
				p.store.Update(func(c *state.AppStateContext) {
					c.ResetStateWithError("Transcription model not picked. Please pick a model in the settings.")
				})
			}
		}

	case event.ActionCloseRecordingWindow:
		if st == state.ConversationListening {
			p.rec.Cancel()
			p.store.Update(func(c *state.AppStateContext) {
				c.Conversation.State = state.ConversationIdle
			})
		}

	case event.ActionTextMessage:
		if st == state.ConversationIdle || st == state.ConversationListening {
			p.startTransformation(ev.Text, true)
		}

	case event.ActionLoadHistoryConversation:
		if st == state.ConversationIdle {
			p.loadHistoryConversation(ev.HistoryID)
		}

	case event.ActionTranscriptionSuccess:
		if st == state.ConversationTranscribing {
			if ctx.Language.IsAuto() {
				go p.detectLanguage(ev.Text)
			}
			persona, text := personaAndTextFromTranscription(ev.Text, ctx.Personas.Personas)
			if persona != nil {
				p.store.Update(func(c *state.AppStateContext) {
					c.UpdateActivePersona(persona)
				})
				p.bus.Dispatch(event.ActionChangePersonaByVoice{})
			}
			p.startTransformation(text, false)
		}

	case event.ActionTranscriptionError:
		if st == state.ConversationTranscribing {
			p.store.Update(func(c *state.AppStateContext) {
				c.ResetStateWithError(ev.Error)
			})
		}

	case event.ActionTranscriptionNoAudioData:
		if st == state.ConversationTranscribing {
			p.store.Update(func(c *state.AppStateContext) {
				c.Conversation.SetIdle()
			})
		}

	case event.ActionTransformationChunk:
		if st == state.ConversationTransforming {
			p.store.Update(func(c *state.AppStateContext) {
				if err := c.Conversation.AddChunk(ev.Chunk); err != nil {
					p.log.Error("failed to append completion chunk", "error", err)
				}
			})
		}

	case event.ActionTransformationToolCall:
		if st == state.ConversationTransforming {
			p.handleToolCall(ev.ChunkToolCall)
		}

	case event.ActionTransformationToolCallResult:
		if st == state.ConversationTransforming {
			p.handleToolCallResult(ev.ToolCallResult)
		}

	case event.ActionTransformationSuccess:
		if st == state.ConversationTransforming {
			p.finishTransformation()
		}

	case event.ActionTransformationError:
		if st == state.ConversationTransforming {
			p.store.Update(func(c *state.AppStateContext) {
				c.ResetStateWithError(ev.Error)
			})
		}

	case event.ActionChangePersona, event.ActionPersonaCycleNext, event.ActionStartNewConversation:
		p.store.Update(resetConversation)

	case event.ActionAddImage:
		if st == state.ConversationIdle || st == state.ConversationListening {
			p.appendUserMessage(state.ImageContent(ev.Image))
		}

	case event.ActionAddFile:
		if st == state.ConversationIdle || st == state.ConversationListening {
			fileType, data, err := decodeBinaryFile(ev.Data)
			if err != nil {
				p.log.Error("failed to decode attached file", "error", err)
				return nil
			}
			dataURL := fmt.Sprintf("data:%s;base64,%s", fileType, base64.StdEncoding.EncodeToString(data))
			p.appendUserMessage(state.ImageContent(dataURL))
		}

	case event.ActionAddText:
		if st == state.ConversationIdle || st == state.ConversationListening {
			p.appendUserMessage(state.TextContent(ev.Text))
		}

	case event.ActionScreenshot:
		if st == state.ConversationIdle || st == state.ConversationListening {
			p.takeScreenshot(ctx)
		}

	case event.ActionCopyText:
		if st == state.ConversationIdle || st == state.ConversationListening {
			p.copySelectedText(ctx)
		}

	case event.ActionAddDictionaryItem:
		if st == state.ConversationIdle || st == state.ConversationListening {
			p.store.Update(func(c *state.AppStateContext) {
				c.Conversation.Dictionary = append(c.Conversation.Dictionary, ev.Item)
			})
		}

	case event.ActionDeleteDictionaryItem:
		if st == state.ConversationIdle || st == state.ConversationListening {
			p.store.Update(func(c *state.AppStateContext) {
				kept := c.Conversation.Dictionary[:0]
				for _, item := range c.Conversation.Dictionary {
					if item != ev.Item {
						kept = append(kept, item)
					}
				}
				c.Conversation.Dictionary = kept
			})
		}
	}
	return nil
}

// detectLanguage records which language an auto-language transcription
// came back in. Classification loads lingua's models, so it runs off the
// bus goroutine.
func (p *ConversationProcessor) detectLanguage(text string) {
	lang := langdetect.Detect(text)
	if lang.IsAuto() {
		return
	}
	p.store.Update(func(c *state.AppStateContext) {
		c.Conversation.DetectedLanguage = lang
	})
}

func resetConversation(c *state.AppStateContext) {
	c.History.CurrentHistoryID = nil
	c.Conversation.State = state.ConversationIdle
	c.Conversation.Conversation = nil
	c.Conversation.PendingToolCallIDs = nil
}

// startRecording opens a timestamped WAV file in the audio cache and moves
// the session to Listening.
func (p *ConversationProcessor) startRecording(ctx state.AppStateContext) error {
	if err := os.MkdirAll(p.audioDir, 0o755); err != nil {
		return fmt.Errorf("create audio dir: %w", err)
	}
	path := filepath.Join(p.audioDir, fmt.Sprintf("recording_%s.wav", time.Now().Format("20060102_150405")))
	recordOutput := ctx.ActivePersona != nil && ctx.ActivePersona.RecordOutputAudio

	p.store.Update(func(c *state.AppStateContext) {
		c.Conversation.CurrentAudioFilePath = path
		c.Conversation.State = state.ConversationListening
	})
	return p.rec.Start(path, ctx.InputDevice, recordOutput)
}

// startTranscription moves to Transcribing and runs the configured provider
// off the bus goroutine. It fails synchronously only when no transcription
// model is selected.
func (p *ConversationProcessor) startTranscription() error {
	ctx := p.store.Context()
	if ctx.TranscriptionModel == nil {
		return fmt.Errorf("no transcription model selected")
	}
	modelID := *ctx.TranscriptionModel
	audioPath := ctx.Conversation.CurrentAudioFilePath
	waitForCombined := ctx.ActivePersona != nil && ctx.ActivePersona.RecordOutputAudio

	p.store.Update(func(c *state.AppStateContext) {
		c.Conversation.State = state.ConversationTranscribing
	})

	go func() {
		path := transcriptionFilePath(audioPath, waitForCombined)

		snap := p.store.Context()
		var model *state.TranscriptionModel
		for _, m := range snap.Models.TranscriptionModels {
			if m.Model == modelID {
				model = &m
				break
			}
		}
		if model == nil {
			p.bus.Dispatch(event.ActionTranscriptionError{Error: fmt.Sprintf("Transcription model not found: %s", modelID)})
			return
		}
		provider, err := p.providers.Get(model.Provider)
		if err != nil {
			p.bus.Dispatch(event.ActionTranscriptionError{Error: err.Error()})
			return
		}

		text, err := provider.Transcribe(context.Background(), stt.Request{
			AudioPath: path,
			Model:     modelID,
			Language:  snap.Language,
			Prompt:    "Glossary: " + strings.Join(snap.Conversation.Dictionary, ", "),
			APIKey:    snap.Account.Account.Token,
		})
		if err != nil {
			p.bus.Dispatch(event.ActionTranscriptionError{Error: err.Error()})
			return
		}
		p.bus.Dispatch(event.ActionTranscriptionSuccess{Text: strings.TrimSpace(text)})
	}()
	return nil
}

// transcriptionFilePath waits briefly for the echo-cancelled combined file
// when the persona records output audio, falling back to the raw input.
func transcriptionFilePath(inputPath string, waitForCombined bool) string {
	if !waitForCombined {
		return inputPath
	}
	combined := recorder.CombinedPath(inputPath)
	deadline := time.Now().Add(combinedFileWait)
	for time.Now().Before(deadline) {
		if info, err := os.Stat(combined); err == nil && info.Size() > combinedFileMin {
			return combined
		}
		time.Sleep(combinedFilePoll)
	}
	return inputPath
}

// startTransformation appends the user's text to the conversation and starts
// the completion stream. Without a persona and model the text is pasted as
// dictated and the session returns to Idle.
func (p *ConversationProcessor) startTransformation(text string, isTextMessage bool) {
	var passthrough bool
	p.store.Update(func(c *state.AppStateContext) {
		c.Conversation.PendingToolCallIDs = nil
		c.Conversation.TranscriptionText = text

		if c.ActivePersona == nil || c.ConversationModel == nil {
			c.Conversation.State = state.ConversationIdle
			passthrough = true
		} else {
			c.Conversation.State = state.ConversationTransforming
		}

		if c.ActivePersona != nil && !hasSystemMessage(c.Conversation.Conversation) {
			system := state.ConversationMessage{
				Role:      "system",
				Content:   []state.MessageContent{state.TextContent(c.ActivePersona.SystemPrompt)},
				CreatedAt: time.Now().UTC(),
			}
			c.Conversation.Conversation = append([]state.ConversationMessage{system}, c.Conversation.Conversation...)
		}

		message := state.ConversationMessage{
			Role:      "user",
			Content:   []state.MessageContent{state.TextContent(text)},
			CreatedAt: time.Now().UTC(),
		}
		if !isTextMessage {
			message.AudioFilePath = c.Conversation.CurrentAudioFilePath
		}
		c.Conversation.Conversation = append(c.Conversation.Conversation, message)
	})

	if passthrough {
		p.pasteText(text)
		return
	}

	snap := p.store.Context()
	conversation := snap.Conversation.Conversation
	go p.transform(conversation)
}

func hasSystemMessage(conversation []state.ConversationMessage) bool {
	for _, m := range conversation {
		if m.IsText() && m.Role == "system" {
			return true
		}
	}
	return false
}

// transform streams one completion for the conversation, emitting chunk,
// tool call and terminal events back onto the bus.
func (p *ConversationProcessor) transform(conversation []state.ConversationMessage) {
	snap := p.store.Context()
	if snap.ConversationModel == nil {
		p.bus.Dispatch(event.ActionTransformationError{Error: "Transformation model not found. Please pick a model in the settings."})
		return
	}
	var model *state.ConversationModel
	for _, m := range snap.Models.ConversationModels {
		if m.Model == *snap.ConversationModel {
			model = &m
			break
		}
	}
	if model == nil {
		p.store.Update(func(c *state.AppStateContext) {
			c.Errors = append(c.Errors, state.NewAppError("Transformation model not found. Please pick a model in the settings."))
		})
		return
	}

	cfg := llm.ConfigFromModel(model.Config)
	if model.IsLocal {
		cfg = llm.LocalConfig()
		cfg.Model = model.Model
		cfg.SupportsVision = model.SupportsVision
		cfg.SupportsTools = model.SupportsTools
	}
	apiKey := cfg.APIKey
	if apiKey == nil {
		apiKey = snap.Account.Account.Token
	}

	messages := chatMessages(conversation, snap.ActivePersona)
	tools := p.toolDefinitions()

	stream, err := p.llm.ChatCompletion(context.Background(), messages, tools, cfg, apiKey)
	if err != nil {
		p.bus.Dispatch(event.ActionTransformationError{Error: err.Error()})
		return
	}
	for chunk := range stream {
		switch {
		case chunk.Err != nil:
			p.bus.Dispatch(event.ActionTransformationError{Error: chunk.Err.Error()})
			return
		case chunk.ToolCall != nil:
			p.bus.Dispatch(event.ActionTransformationToolCall{ChunkToolCall: event.ChunkToolCall{
				Index:     chunk.ToolCall.Index,
				ID:        chunk.ToolCall.ID,
				Name:      chunk.ToolCall.Name,
				Arguments: chunk.ToolCall.Arguments,
			}})
		default:
			p.bus.Dispatch(event.ActionTransformationChunk{Chunk: chunk.Text})
		}
	}
	p.bus.Dispatch(event.ActionTransformationSuccess{})
}

// toolDefinitions renders the connected MCP tools in the OpenAI function
// schema. Tool names carry the client as a "client--tool" prefix so results
// can be routed back.
func (p *ConversationProcessor) toolDefinitions() []map[string]any {
	clientTools := p.tools.ListAllTools(context.Background())
	defs := make([]map[string]any, 0, len(clientTools))
	for _, ct := range clientTools {
		defs = append(defs, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        ct.ClientName + "--" + ct.Tool.Name,
				"description": ct.Tool.Description,
				"parameters":  ct.Tool.InputSchema,
			},
		})
	}
	return defs
}

// chatMessages converts the stored conversation to wire messages and injects
// the persona's few-shot examples right after the system message.
func chatMessages(conversation []state.ConversationMessage, persona *state.Persona) []llm.Message {
	messages := make([]llm.Message, 0, len(conversation))
	systemIndex := -1
	for _, m := range conversation {
		switch {
		case m.IsToolCall():
			calls := make([]llm.ToolCall, len(m.ToolCalls))
			for i, tc := range m.ToolCalls {
				calls[i] = llm.ToolCall{
					ID:   tc.ID,
					Type: "function",
					Function: llm.ToolCallFunction{
						Name:      tc.Function.ClientName + "--" + tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				}
			}
			messages = append(messages, llm.ToolCallMessage(calls))
		case m.IsToolResult():
			messages = append(messages, llm.ToolResultMessage(m.ToolCallID, m.ToolContent))
		default:
			if m.Role == "system" && systemIndex < 0 {
				systemIndex = len(messages)
			}
			messages = append(messages, llm.TextMessage(m.Role, m.Content))
		}
	}

	if persona == nil || systemIndex < 0 {
		return messages
	}
	var examples []llm.Message
	for _, ex := range persona.Examples {
		if strings.TrimSpace(ex.Question) == "" || strings.TrimSpace(ex.Answer) == "" {
			continue
		}
		examples = append(examples,
			llm.TextMessage("user", []state.MessageContent{state.TextContent(ex.Question)}),
			llm.TextMessage("assistant", []state.MessageContent{state.TextContent(ex.Answer)}),
		)
	}
	if len(examples) == 0 {
		return messages
	}
	out := make([]llm.Message, 0, len(messages)+len(examples))
	out = append(out, messages[:systemIndex+1]...)
	out = append(out, examples...)
	out = append(out, messages[systemIndex+1:]...)
	return out
}

// handleToolCall records a requested tool call and invokes it through the
// MCP registry. The result comes back as an event.
func (p *ConversationProcessor) handleToolCall(call event.ChunkToolCall) {
	clientName, toolName, ok := strings.Cut(call.Name, "--")
	if !ok {
		p.store.Update(func(c *state.AppStateContext) {
			c.Errors = append(c.Errors, state.NewAppError(fmt.Sprintf("Invalid tool call name: %s", call.Name)))
			c.Conversation.State = state.ConversationIdle
		})
		return
	}

	toolCall := state.ToolCall{
		ID: call.ID,
		Function: state.ToolCallFunction{
			ClientName: clientName,
			Name:       toolName,
			Arguments:  call.Arguments,
		},
	}
	p.store.Update(func(c *state.AppStateContext) {
		c.Conversation.PendingToolCallIDs = append(c.Conversation.PendingToolCallIDs, call.ID)

		// Consecutive tool calls from one assistant turn share a message.
		n := len(c.Conversation.Conversation)
		if n > 0 && c.Conversation.Conversation[n-1].IsToolCall() {
			c.Conversation.Conversation[n-1].ToolCalls = append(c.Conversation.Conversation[n-1].ToolCalls, toolCall)
			return
		}
		c.Conversation.Conversation = append(c.Conversation.Conversation, state.ConversationMessage{
			Role:      "assistant",
			ToolCalls: []state.ToolCall{toolCall},
			CreatedAt: time.Now().UTC(),
		})
	})

	go func() {
		result := event.ToolCallResult{ToolCallID: call.ID, CreatedAt: time.Now().UTC()}
		var args map[string]any
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			result.Content = fmt.Sprintf("Error calling tool: invalid arguments: %v", err)
			p.bus.Dispatch(event.ActionTransformationToolCallResult{ToolCallResult: result})
			return
		}
		content, err := p.tools.CallTool(context.Background(), clientName, toolName, args)
		if err != nil {
			result.Content = fmt.Sprintf("Error calling tool: %v", err)
		} else {
			result.Content = content
		}
		p.bus.Dispatch(event.ActionTransformationToolCallResult{ToolCallResult: result})
	}()
}

// handleToolCallResult appends the result and, once every pending call has
// answered, sends the conversation back to the model.
func (p *ConversationProcessor) handleToolCallResult(result event.ToolCallResult) {
	p.store.Update(func(c *state.AppStateContext) {
		c.Conversation.Conversation = append(c.Conversation.Conversation, state.ConversationMessage{
			Role:        "tool",
			ToolCallID:  result.ToolCallID,
			ToolContent: result.Content,
			CreatedAt:   result.CreatedAt,
		})
		kept := c.Conversation.PendingToolCallIDs[:0]
		for _, id := range c.Conversation.PendingToolCallIDs {
			if id != result.ToolCallID {
				kept = append(kept, id)
			}
		}
		c.Conversation.PendingToolCallIDs = kept
	})

	snap := p.store.Context()
	p.bus.Dispatch(event.ActionUpdateOrCreateHistory{
		Persona:      snap.ActivePersona,
		Conversation: snap.Conversation.Conversation,
	})

	if snap.Conversation.State == state.ConversationIdle {
		return
	}
	if len(snap.Conversation.PendingToolCallIDs) > 0 {
		return
	}
	go p.transform(snap.Conversation.Conversation)
}

// finishTransformation closes the session when the stream ended on an
// assistant text message, pasting the result per the persona's setting. A
// stream that ended on tool calls keeps the session in Transforming until
// the results arrive.
func (p *ConversationProcessor) finishTransformation() {
	var finalText string
	var haveText, pasteOnFinish bool
	p.store.Update(func(c *state.AppStateContext) {
		n := len(c.Conversation.Conversation)
		if n == 0 {
			return
		}
		last := c.Conversation.Conversation[n-1]
		if !last.IsText() || last.Role != "assistant" {
			return
		}
		text, ok := last.LastText()
		if !ok {
			return
		}
		c.Conversation.State = state.ConversationIdle
		finalText = text
		haveText = true
		pasteOnFinish = c.ActivePersona != nil && c.ActivePersona.PasteOnFinish
	})

	if haveText {
		if pasteOnFinish {
			p.pasteText(finalText)
		}
		if err := p.clipboard.SetText(finalText); err != nil {
			p.store.Update(func(c *state.AppStateContext) {
				c.Errors = append(c.Errors, state.NewAppError(err.Error()))
			})
		}
	}

	snap := p.store.Context()
	p.bus.Dispatch(event.ActionUpdateOrCreateHistory{
		Persona:      snap.ActivePersona,
		Conversation: snap.Conversation.Conversation,
	})
}

func (p *ConversationProcessor) pasteText(text string) {
	if err := p.clipboard.SetTextAndPaste(text); err != nil {
		p.bus.Dispatch(event.ActionCheckAndRequestAccessibilityPermission{})
		p.store.Update(func(c *state.AppStateContext) {
			c.Errors = append(c.Errors, state.NewAppError("Missing accessibility permissions"))
		})
	}
}

func (p *ConversationProcessor) loadHistoryConversation(historyID string) {
	p.store.Update(func(c *state.AppStateContext) {
		for _, entry := range c.History.History {
			if entry.ID == historyID {
				c.Conversation.Conversation = state.CloneConversation(entry.Conversation)
				c.History.CurrentHistoryID = nil
				return
			}
		}
	})
}

// appendUserMessage adds a user message and records the conversation in
// history.
func (p *ConversationProcessor) appendUserMessage(content state.MessageContent) {
	p.store.Update(func(c *state.AppStateContext) {
		c.Conversation.Conversation = append(c.Conversation.Conversation, state.ConversationMessage{
			Role:      "user",
			Content:   []state.MessageContent{content},
			CreatedAt: time.Now().UTC(),
		})
	})
	snap := p.store.Context()
	p.bus.Dispatch(event.ActionUpdateOrCreateHistory{
		Persona:      snap.ActivePersona,
		Conversation: snap.Conversation.Conversation,
	})
}

// takeScreenshot captures the screen and attaches it as an image message.
// The raw PNG is also kept next to the audio recordings.
func (p *ConversationProcessor) takeScreenshot(ctx state.AppStateContext) {
	if ctx.Conversation.ScreenshotState == state.ScreenshotScreenshotting {
		return
	}
	p.store.Update(func(c *state.AppStateContext) {
		c.Conversation.ScreenshotState = state.ScreenshotScreenshotting
	})

	go func() {
		defer p.store.Update(func(c *state.AppStateContext) {
			c.Conversation.ScreenshotState = state.ScreenshotIdle
		})

		png, err := p.screenshot.Capture()
		if err != nil {
			p.log.Error("failed to take screenshot", "error", err)
			return
		}
		dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
		p.bus.Dispatch(event.ActionAddImage{Image: dataURL})
		p.saveScreenshot(png)
	}()
}

func (p *ConversationProcessor) saveScreenshot(png []byte) {
	if err := os.MkdirAll(p.audioDir, 0o755); err != nil {
		p.log.Error("failed to create screenshot dir", "error", err)
		return
	}
	path := filepath.Join(p.audioDir, fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(path, png, 0o644); err != nil {
		p.log.Error("failed to save screenshot", "error", err)
		return
	}
	p.log.Info("screenshot saved", "path", path)
}

// copySelectedText grabs the focused application's selection and attaches it
// as a text message.
func (p *ConversationProcessor) copySelectedText(ctx state.AppStateContext) {
	if ctx.Conversation.CopyTextState == state.CopyTextCopying {
		return
	}
	p.store.Update(func(c *state.AppStateContext) {
		c.Conversation.CopyTextState = state.CopyTextCopying
	})

	go func() {
		defer p.store.Update(func(c *state.AppStateContext) {
			c.Conversation.CopyTextState = state.CopyTextIdle
		})

		text, err := p.clipboard.SelectedText()
		if err != nil {
			p.log.Error("failed to read selected text", "error", err)
			return
		}
		p.bus.Dispatch(event.ActionAddText{Text: text})
	}()
}

// personaAndTextFromTranscription matches a voice command at the start of a
// transcript. When a persona matches, the command words and any trailing
// punctuation are trimmed from the text.
func personaAndTextFromTranscription(text string, personas []state.Persona) (*state.Persona, string) {
	normalize := func(s string) string {
		s = strings.ToLower(s)
		return strings.NewReplacer(" ", "", ".", "", ",", "").Replace(s)
	}

	var matched *state.Persona
	normalizedText := normalize(text)
	for i := range personas {
		command := strings.TrimSpace(personas[i].VoiceCommand)
		if command == "" {
			continue
		}
		if strings.HasPrefix(normalizedText, normalize(command)) {
			persona := personas[i].Clone()
			matched = &persona
			break
		}
	}
	if matched == nil {
		return nil, text
	}

	commandWords := strings.Fields(strings.ToLower(matched.VoiceCommand))

	// The transcript may open with punctuation before the command itself.
	firstLetter := strings.IndexFunc(text, unicode.IsLetter)
	if firstLetter < 0 {
		firstLetter = 0
	}
	tail := text[firstLetter:]

	startWords := strings.Fields(strings.ToLower(tail))
	if len(startWords) > len(commandWords) {
		startWords = startWords[:len(commandWords)]
	}
	if !strings.Contains(strings.Join(startWords, " "), strings.Join(commandWords, " ")) {
		return matched, text
	}

	trimPos := 0
	spaces := 0
	for i, r := range tail {
		if unicode.IsSpace(r) {
			spaces++
			if spaces == len(commandWords) {
				trimPos = i
				break
			}
		}
	}
	if trimPos == 0 && len(commandWords) == 1 {
		if idx := strings.IndexByte(tail, ' '); idx >= 0 {
			trimPos = idx
		} else {
			trimPos = len(tail)
		}
	}
	if trimPos == 0 && len(commandWords) != 1 {
		return matched, text
	}

	trimmed := strings.TrimLeftFunc(tail[trimPos:], func(r rune) bool {
		return unicode.IsSpace(r) || r == '!' || r == '.' || r == ',' || r == ':'
	})
	return matched, trimmed
}

// decodeBinaryFile splits an uploaded file envelope into its MIME type and
// payload. The envelope is a big-endian metadata length, a JSON metadata
// object and the raw bytes.
func decodeBinaryFile(data []byte) (fileType string, payload []byte, err error) {
	if len(data) < 4 {
		return "", nil, fmt.Errorf("invalid binary data: too short")
	}
	metaSize := int(binary.BigEndian.Uint32(data[:4]))
	if len(data) < 4+metaSize {
		return "", nil, fmt.Errorf("invalid binary data: metadata size mismatch")
	}

	var meta struct {
		FileSize uint64 `json:"file_size"`
		FileType string `json:"file_type"`
	}
	if err := json.Unmarshal(data[4:4+metaSize], &meta); err != nil {
		return "", nil, fmt.Errorf("parse file metadata: %w", err)
	}
	if meta.FileType == "" {
		meta.FileType = "application/octet-stream"
	}

	payload = data[4+metaSize:]
	if meta.FileSize != 0 && uint64(len(payload)) != meta.FileSize {
		slog.Warn("file size mismatch", "expected", meta.FileSize, "got", len(payload))
	}
	return meta.FileType, payload, nil
}
