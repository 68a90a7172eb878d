package processor

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/llm"
	"go.qspeak.app/qspeak/state"
)

const titleSystemPrompt = "You are a helpful assistant that creates concise, descriptive titles for conversations. Create a short title (2-5 words, under 50 characters) that captures the main topic, request, or question from the conversation. Use the same language as the conversation. Examples: 'Firewall DLP Block Explanation', 'Copying Document Issues', 'Startup Tweet Ideas', 'CSS vs Tailwind'. Respond with a JSON object containing the title field."

// HistoryProcessor persists finished conversations and generates their
// titles with the active conversation model.
type HistoryProcessor struct {
	store *state.Store
	bus   *Processor
	llm   *llm.Client
	log   *slog.Logger
}

func NewHistoryProcessor(store *state.Store, bus *Processor, client *llm.Client, log *slog.Logger) *HistoryProcessor {
	if log == nil {
		log = slog.Default()
	}
	return &HistoryProcessor{store: store, bus: bus, llm: client, log: log}
}

func (p *HistoryProcessor) Register() {
	p.bus.RegisterEventListener("history", p.handle)
}

func (p *HistoryProcessor) handle(e event.Event) error {
	switch ev := e.(type) {
	case event.ActionUpdateOrCreateHistory:
		p.updateOrCreate(ev.Persona, ev.Conversation)
	case event.ActionClearHistory:
		p.store.Update(func(c *state.AppStateContext) {
			c.History.History = nil
			c.History.CurrentHistoryID = nil
		})
	case event.ActionDeleteHistory:
		p.deleteHistory(ev.HistoryID)
	case event.ActionGenerateHistoryTitle:
		go p.generateTitle(ev.HistoryID)
	}
	return nil
}

func (p *HistoryProcessor) updateOrCreate(persona *state.Persona, conversation []state.ConversationMessage) {
	var messages []state.ConversationMessage
	for _, msg := range conversation {
		if msg.IsText() && msg.Role == "system" {
			continue
		}
		messages = append(messages, msg.Clone())
	}
	if len(messages) == 0 {
		return
	}

	var createdID string
	p.store.Update(func(c *state.AppStateContext) {
		if current := c.History.CurrentHistoryID; current != nil {
			for i := range c.History.History {
				entry := &c.History.History[i]
				if entry.ID != *current {
					continue
				}
				entry.Conversation = messages
				if persona != nil {
					name := persona.Name
					entry.PersonaName = &name
				}
				return
			}
			p.log.Warn("history entry not found, creating a new one", "history_id", *current)
		}
		createdID = createHistoryEntry(c, persona, messages)
	})

	if createdID != "" {
		p.bus.Dispatch(event.ActionGenerateHistoryTitle{HistoryID: createdID})
	}
}

func createHistoryEntry(c *state.AppStateContext, persona *state.Persona, conversation []state.ConversationMessage) string {
	id := uuid.NewString()
	var modelName string
	if c.ConversationModel != nil {
		modelName = *c.ConversationModel
	}

	entry := state.History{
		ID:           id,
		ModelName:    modelName,
		Conversation: conversation,
		CreatedAt:    time.Now().UTC(),
	}
	if persona != nil {
		name := persona.Name
		entry.PersonaName = &name
		c.History.LastPersona = &state.PersonaHistory{ID: persona.ID, Name: persona.Name}
	}
	c.History.History = append(c.History.History, entry)
	c.History.CurrentHistoryID = &id
	return id
}

func (p *HistoryProcessor) deleteHistory(id string) {
	p.store.Update(func(c *state.AppStateContext) {
		for _, entry := range c.History.History {
			if entry.ID != id {
				continue
			}
			for _, msg := range entry.Conversation {
				if msg.AudioFilePath != "" {
					os.Remove(msg.AudioFilePath)
				}
			}
		}
		kept := c.History.History[:0]
		for _, entry := range c.History.History {
			if entry.ID != id {
				kept = append(kept, entry)
			}
		}
		c.History.History = kept
		if c.History.CurrentHistoryID != nil && *c.History.CurrentHistoryID == id {
			c.History.CurrentHistoryID = nil
		}
	})
}

func (p *HistoryProcessor) generateTitle(historyID string) {
	ctx := p.store.Context()

	var entry *state.History
	for i := range ctx.History.History {
		if ctx.History.History[i].ID == historyID {
			entry = &ctx.History.History[i]
			break
		}
	}
	if entry == nil || ctx.ConversationModel == nil {
		return
	}

	text := condenseConversation(entry.Conversation)
	if text == "" {
		return
	}

	var model *state.ConversationModel
	for i := range ctx.Models.ConversationModels {
		if ctx.Models.ConversationModels[i].Model == *ctx.ConversationModel {
			model = &ctx.Models.ConversationModels[i]
			break
		}
	}
	if model == nil {
		p.log.Error("title generation: conversation model not found", "model", *ctx.ConversationModel)
		return
	}

	messages := []llm.Message{
		llm.TextMessage("system", []state.MessageContent{state.TextContent(titleSystemPrompt)}),
		llm.TextMessage("user", []state.MessageContent{
			state.TextContent("Create a title for this conversation:\n\n" + text),
		}),
	}
	responseFormat := map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name": "title_response",
			"schema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title": map[string]any{
						"type":        "string",
						"description": "A concise title for the conversation",
					},
				},
				"required":             []string{"title"},
				"additionalProperties": false,
			},
		},
	}

	cfg := llm.ConfigFromModel(model.Config)
	response, err := p.llm.ChatCompletionNonStreaming(context.Background(), messages, nil, cfg, ctx.Account.Account.Token, responseFormat)
	if err != nil {
		p.log.Error("failed to generate history title", "history_id", historyID, "error", err)
		return
	}

	title := extractTitle(response)
	p.store.Update(func(c *state.AppStateContext) {
		for i := range c.History.History {
			if c.History.History[i].ID == historyID {
				c.History.History[i].Title = &title
				return
			}
		}
	})
}

// condenseConversation flattens the first messages into a short prompt,
// capping each message at 200 characters and the whole text at 1000.
func condenseConversation(conversation []state.ConversationMessage) string {
	var parts []string
	limit := min(len(conversation), 10)
	for _, msg := range conversation[:limit] {
		if !msg.IsText() || msg.Role == "system" {
			continue
		}
		prefix := "Assistant"
		if msg.Role == "user" {
			prefix = "User"
		}
		for _, content := range msg.Content {
			if content.Type != "text" {
				continue
			}
			parts = append(parts, prefix+": "+truncateRunes(content.Text, 200))
		}
	}
	return truncateRunes(strings.Join(parts, "\n"), 1000)
}

// extractTitle pulls the title out of the model's JSON answer, falling back
// to the raw response and then to a default.
func extractTitle(response string) string {
	cleaned := strings.TrimSpace(response)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil {
		if title, ok := parsed["title"].(string); ok {
			if title = truncateRunes(title, 60); title != "" {
				return title
			}
			return "New Chat"
		}
	}

	if title := truncateRunes(cleaned, 60); title != "" {
		return title
	}
	return "New Chat"
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
