package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.qspeak.app/qspeak/state"
)

// Client talks to OpenAI-compatible chat completion endpoints.
type Client struct {
	http *http.Client
}

func NewClient() *Client {
	return &Client{http: &http.Client{}}
}

type chatRequest struct {
	Model          string           `json:"model"`
	Messages       []Message        `json:"messages"`
	Stream         bool             `json:"stream"`
	Tools          []map[string]any `json:"tools,omitempty"`
	ResponseFormat map[string]any   `json:"response_format,omitempty"`
}

type chunkDelta struct {
	Content   *string `json:"content"`
	ToolCalls []struct {
		Index    int     `json:"index"`
		ID       *string `json:"id"`
		Function struct {
			Name      *string `json:"name"`
			Arguments string  `json:"arguments"`
		} `json:"function"`
	} `json:"tool_calls"`
}

type chatChunk struct {
	Choices []struct {
		Delta chunkDelta `json:"delta"`
	} `json:"choices"`
}

// prependCurrentTime injects the wall clock into the first message so the
// model can answer time-relative prompts. Tool call messages carry no
// content to prepend into.
func prependCurrentTime(messages []Message) {
	if len(messages) == 0 {
		return
	}
	now := time.Now().UTC().Format(time.RFC3339)
	timeTag := fmt.Sprintf("<current_time>%s</current_time>\n", now)

	first := &messages[0]
	switch content := first.Content.(type) {
	case []state.MessageContent:
		for i := range content {
			if content[i].Type == "text" {
				content[i].Text = timeTag + content[i].Text
				return
			}
		}
		first.Content = append([]state.MessageContent{state.TextContent(strings.TrimRight(timeTag, "\n"))}, content...)
	case string:
		first.Content = timeTag + content
	}
}

// normalizeToolCalls replaces empty tool call arguments with an empty JSON
// object, which some endpoints reject otherwise.
func normalizeToolCalls(messages []Message) {
	for i := range messages {
		for j := range messages[i].ToolCalls {
			if messages[i].ToolCalls[j].Function.Arguments == "" {
				messages[i].ToolCalls[j].Function.Arguments = "{}"
			}
		}
	}
}

func (c *Client) post(ctx context.Context, cfg Config, req chatRequest, apiKey *string) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	url := strings.TrimSuffix(cfg.URL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	key := ""
	if apiKey != nil {
		key = *apiKey
	} else if cfg.APIKey != nil {
		key = *cfg.APIKey
	}
	httpReq.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("chat completion failed: %s %s", resp.Status, string(msg))
	}
	return resp, nil
}

// ChatCompletion streams a completion. Text deltas arrive as they are
// generated; tool call deltas are accumulated per index and flushed as
// complete calls when the stream signals [DONE]. The returned channel is
// closed when the stream ends.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message, tools []map[string]any, cfg Config, apiKey *string) (<-chan Chunk, error) {
	prependCurrentTime(messages)
	normalizeToolCalls(messages)

	req := chatRequest{
		Model:    cfg.Model,
		Messages: messages,
		Stream:   true,
	}
	if cfg.SupportsTools {
		req.Tools = tools
	}
	resp, err := c.post(ctx, cfg, req, apiKey)
	if err != nil {
		return nil, err
	}

	out := make(chan Chunk, 16)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		pending := map[int]*ToolCallChunk{}
		flush := func() {
			indexes := make([]int, 0, len(pending))
			for i := range pending {
				indexes = append(indexes, i)
			}
			sort.Ints(indexes)
			for _, i := range indexes {
				out <- Chunk{ToolCall: pending[i]}
			}
			pending = map[int]*ToolCallChunk{}
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			data, ok := strings.CutPrefix(line, "data:")
			if !ok {
				continue
			}
			data = strings.TrimSpace(data)
			if data == "[DONE]" {
				flush()
				continue
			}
			var chunk chatChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil || len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta
			switch {
			case len(delta.ToolCalls) > 0:
				for _, tc := range delta.ToolCalls {
					existing, ok := pending[tc.Index]
					if !ok {
						existing = &ToolCallChunk{Index: tc.Index}
						pending[tc.Index] = existing
					}
					if tc.ID != nil {
						existing.ID = *tc.ID
					}
					if tc.Function.Name != nil {
						existing.Name = *tc.Function.Name
					}
					existing.Arguments += tc.Function.Arguments
				}
			case delta.Content != nil:
				out <- Chunk{Text: *delta.Content}
			}
		}
		if err := scanner.Err(); err != nil {
			out <- Chunk{Err: fmt.Errorf("read completion stream: %w", err)}
		}
	}()
	return out, nil
}

// ChatCompletionNonStreaming runs one completion and returns the message
// content. responseFormat, when set, is passed through to the endpoint.
func (c *Client) ChatCompletionNonStreaming(ctx context.Context, messages []Message, tools []map[string]any, cfg Config, apiKey *string, responseFormat map[string]any) (string, error) {
	prependCurrentTime(messages)
	normalizeToolCalls(messages)

	req := chatRequest{
		Model:          cfg.Model,
		Messages:       messages,
		Stream:         false,
		ResponseFormat: responseFormat,
	}
	if cfg.SupportsTools {
		req.Tools = tools
	}
	resp, err := c.post(ctx, cfg, req, apiKey)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
