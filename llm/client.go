// Package llm provides the HTTP client for OpenAI-compatible chat
// completion endpoints, both streaming and non-streaming.
package llm

import (
	"go.qspeak.app/qspeak/state"
)

// Config selects the endpoint and capabilities for one completion call.
type Config struct {
	Model          string
	URL            string
	APIKey         *string
	SupportsVision bool
	SupportsTools  bool
}

// ConfigFromModel builds a Config from a stored model configuration.
func ConfigFromModel(mc state.ModelConfig) Config {
	return Config{
		Model:          mc.Model,
		URL:            mc.URL,
		APIKey:         mc.APIKey,
		SupportsVision: mc.SupportsVision,
		SupportsTools:  mc.SupportsTools,
	}
}

// LocalConfig targets the bundled local model server.
func LocalConfig() Config {
	return Config{URL: "http://localhost:5001/v1"}
}

// ToolCallFunction is the function part of a requested tool call.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCall is a complete tool call carried on an assistant message.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// Message is one chat message on the wire. Content is either a slice of
// content parts (text messages) or a plain string (tool results).
type Message struct {
	Role       string     `json:"role"`
	Content    any        `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// TextMessage builds a message carrying content parts.
func TextMessage(role string, content []state.MessageContent) Message {
	return Message{Role: role, Content: content}
}

// ToolCallMessage builds an assistant message requesting tool calls.
func ToolCallMessage(calls []ToolCall) Message {
	return Message{Role: "assistant", ToolCalls: calls}
}

// ToolResultMessage builds a tool role message answering one call.
func ToolResultMessage(toolCallID, content string) Message {
	return Message{Role: "tool", Content: content, ToolCallID: toolCallID}
}

// ToolCallChunk is one streamed tool call delta. The endpoint sends the id
// and name on the first delta for an index, then argument fragments.
type ToolCallChunk struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// Chunk is one item of a completion stream. Exactly one field is set.
type Chunk struct {
	Text     string
	ToolCall *ToolCallChunk
	Err      error
}
