package agent

import (
	"context"
	"encoding/json"
)

// Message is a provider-independent conversation entry.
type Message struct {
	Role       string // "user" or "assistant"
	Content    string
	Images     []ImageData
	ToolCalls  []ToolCall
	ToolResult *ToolResult
}

// ImageData is an inline image attachment for vision-capable requests.
type ImageData struct {
	MediaType string
	Base64    string
}

// ToolCall is a model's request to invoke a tool.
type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// ToolResult carries a tool's output back to the model.
type ToolResult struct {
	ToolCallID string
	Content    string
	IsError    bool
}

// Tool describes a callable tool to the model.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// ChatRequest is a provider-independent completion request.
type ChatRequest struct {
	Messages     []Message
	SystemPrompt string
	Tools        []Tool
	MaxTokens    int
}

// ChatResponse is a provider-independent completion response. FinishReason
// is "tool_use" when the model wants tools executed.
type ChatResponse struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
}

// Provider abstracts a chat-completion backend.
type Provider interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// StreamingProvider additionally delivers partial text as it is generated.
// Deltas always precede the returned final response, whose content is
// authoritative and supersedes any accumulated text.
type StreamingProvider interface {
	Provider
	ChatStream(ctx context.Context, req ChatRequest, onDelta func(string)) (ChatResponse, error)
}

// jsonSchema marshals an inline schema definition, panicking on programmer
// error (the schemas are static literals).
func jsonSchema(properties map[string]any, required ...string) json.RawMessage {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	data, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	return data
}
