package state

import (
	"fmt"
	"time"
)

// ConversationState is the dictation lifecycle.
type ConversationState string

const (
	ConversationIdle         ConversationState = "Idle"
	ConversationListening    ConversationState = "Listening"
	ConversationTranscribing ConversationState = "Transcribing"
	ConversationTransforming ConversationState = "Transforming"
)

// CopyTextState guards against overlapping selected-text grabs.
type CopyTextState string

const (
	CopyTextIdle    CopyTextState = "Idle"
	CopyTextCopying CopyTextState = "Copying"
)

// ScreenshotState guards against overlapping screen captures.
type ScreenshotState string

const (
	ScreenshotIdle           ScreenshotState = "Idle"
	ScreenshotScreenshotting ScreenshotState = "Screenshotting"
)

// MessageContent is one content part of a chat message, either text or an
// image data URL.
type MessageContent struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL wraps an image reference, usually a base64 data URL.
type ImageURL struct {
	URL string `json:"url"`
}

// TextContent builds a text content part.
func TextContent(text string) MessageContent {
	return MessageContent{Type: "text", Text: text}
}

// ImageContent builds an image content part from a data URL.
func ImageContent(dataURL string) MessageContent {
	return MessageContent{Type: "image_url", ImageURL: &ImageURL{URL: dataURL}}
}

// ToolCallFunction identifies a tool together with the MCP client serving it.
type ToolCallFunction struct {
	ClientName string `json:"client_name"`
	Name       string `json:"name"`
	Arguments  string `json:"arguments"`
}

// ToolCall is one tool invocation requested by the model.
type ToolCall struct {
	ID       string           `json:"id"`
	Function ToolCallFunction `json:"function"`
}

// ConversationMessage is one turn of the conversation. Exactly one of the
// three shapes is populated: a text message (Content), a tool call request
// (ToolCalls) or a tool call result (ToolCallID).
type ConversationMessage struct {
	Role          string           `json:"role"`
	AudioFilePath string           `json:"audio_file_path,omitempty"`
	Content       []MessageContent `json:"content,omitempty"`
	ToolCalls     []ToolCall       `json:"tool_calls,omitempty"`
	ToolCallID    string           `json:"tool_call_id,omitempty"`
	ToolContent   string           `json:"tool_content,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// IsToolCall reports whether the message is a tool call request.
func (m ConversationMessage) IsToolCall() bool { return len(m.ToolCalls) > 0 }

// IsToolResult reports whether the message is a tool call result.
func (m ConversationMessage) IsToolResult() bool { return m.ToolCallID != "" }

// IsText reports whether the message carries plain content parts.
func (m ConversationMessage) IsText() bool { return !m.IsToolCall() && !m.IsToolResult() }

// LastText returns the final text part of the message, if any.
func (m ConversationMessage) LastText() (string, bool) {
	for i := len(m.Content) - 1; i >= 0; i-- {
		if m.Content[i].Type == "text" {
			return m.Content[i].Text, true
		}
	}
	return "", false
}

// Clone returns a deep copy of the message.
func (m ConversationMessage) Clone() ConversationMessage {
	out := m
	if m.Content != nil {
		out.Content = make([]MessageContent, len(m.Content))
		for i, c := range m.Content {
			out.Content[i] = c
			if c.ImageURL != nil {
				u := *c.ImageURL
				out.Content[i].ImageURL = &u
			}
		}
	}
	if m.ToolCalls != nil {
		out.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		copy(out.ToolCalls, m.ToolCalls)
	}
	return out
}

// CloneConversation deep-copies a message slice.
func CloneConversation(in []ConversationMessage) []ConversationMessage {
	if in == nil {
		return nil
	}
	out := make([]ConversationMessage, len(in))
	for i, m := range in {
		out[i] = m.Clone()
	}
	return out
}

// Replacement is an ordered pair applied to transcripts verbatim.
type Replacement struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ConversationContext carries the live dictation session together with the
// user dictionary and replacement rules that survive restarts.
type ConversationContext struct {
	Dictionary           []string              `json:"dictionary"`
	Replacements         []Replacement         `json:"replacements"`
	TranscriptionText    string                `json:"transcription_text"`
	CurrentAudioFilePath string                `json:"current_audio_file_path,omitempty"`
	Conversation         []ConversationMessage `json:"conversation"`
	DetectedLanguage     Language              `json:"detected_language,omitempty"`
	State                ConversationState     `json:"state"`
	CopyTextState        CopyTextState         `json:"copy_text_state"`
	ScreenshotState      ScreenshotState       `json:"screenshot_state"`
	PendingToolCallIDs   []string              `json:"pending_tool_call_ids"`
}

// DefaultConversationContext returns an idle session.
func DefaultConversationContext() ConversationContext {
	return ConversationContext{
		Dictionary:         []string{},
		Replacements:       []Replacement{},
		Conversation:       []ConversationMessage{},
		State:              ConversationIdle,
		CopyTextState:      CopyTextIdle,
		ScreenshotState:    ScreenshotIdle,
		PendingToolCallIDs: []string{},
	}
}

func (c ConversationContext) clone() ConversationContext {
	out := c
	out.Dictionary = cloneStrings(c.Dictionary)
	out.Replacements = make([]Replacement, len(c.Replacements))
	copy(out.Replacements, c.Replacements)
	out.Conversation = CloneConversation(c.Conversation)
	out.PendingToolCallIDs = cloneStrings(c.PendingToolCallIDs)
	return out
}

// SetIdle resets the session to Idle and clears transient sub-states.
func (c *ConversationContext) SetIdle() {
	c.State = ConversationIdle
	c.CopyTextState = CopyTextIdle
	c.ScreenshotState = ScreenshotIdle
	c.PendingToolCallIDs = []string{}
}

// AddChunk appends a streamed model chunk to the conversation. If the last
// message is a user message or a tool result, a new assistant message is
// started; otherwise the chunk extends the trailing assistant text.
func (c *ConversationContext) AddChunk(chunk string) error {
	if len(c.Conversation) == 0 {
		return fmt.Errorf("add chunk: conversation is empty")
	}
	last := &c.Conversation[len(c.Conversation)-1]

	if last.IsText() && last.Role == "assistant" {
		for i := len(last.Content) - 1; i >= 0; i-- {
			if last.Content[i].Type == "text" {
				last.Content[i].Text += chunk
				return nil
			}
		}
		last.Content = append(last.Content, TextContent(chunk))
		return nil
	}

	c.Conversation = append(c.Conversation, ConversationMessage{
		Role:      "assistant",
		Content:   []MessageContent{TextContent(chunk)},
		CreatedAt: time.Now().UTC(),
	})
	return nil
}
