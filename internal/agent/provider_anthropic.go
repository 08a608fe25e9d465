package agent

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/draftdeck/draftdeck/internal/config"
)

// AnthropicProvider implements the Provider interface for the Anthropic API.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicProvider creates an Anthropic provider.
func NewAnthropicProvider(cfg config.AnthropicConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}
	return &AnthropicProvider{
		client: anthropic.NewClient(cfg.APIKey),
		model:  cfg.Model,
	}, nil
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Chat sends messages and returns a response.
func (p *AnthropicProvider) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	resp, err := p.client.CreateMessages(ctx, p.buildRequest(req))
	if err != nil {
		return ChatResponse{}, fmt.Errorf("anthropic API error: %w", err)
	}
	return genericResponseFromAnthropic(resp), nil
}

// ChatStream streams partial text deltas, returning the final response.
func (p *AnthropicProvider) ChatStream(ctx context.Context, req ChatRequest, onDelta func(string)) (ChatResponse, error) {
	var buf StreamBuffer
	resp, err := p.client.CreateMessagesStream(ctx, anthropic.MessagesStreamRequest{
		MessagesRequest: p.buildRequest(req),
		OnContentBlockDelta: func(data anthropic.MessagesEventContentBlockDeltaData) {
			if data.Delta.Text == nil {
				return
			}
			if buf.Append(*data.Delta.Text) == nil && onDelta != nil {
				onDelta(*data.Delta.Text)
			}
		},
	})
	if err != nil {
		return ChatResponse{}, fmt.Errorf("anthropic API error: %w", err)
	}
	return genericResponseFromAnthropic(resp), nil
}

func (p *AnthropicProvider) buildRequest(req ChatRequest) anthropic.MessagesRequest {
	out := anthropic.MessagesRequest{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokensOrDefault(req.MaxTokens),
	}
	if req.SystemPrompt != "" {
		out.System = req.SystemPrompt
	}
	for _, msg := range req.Messages {
		out.Messages = append(out.Messages, anthropicMessageFromGeneric(msg))
	}
	for _, tool := range req.Tools {
		out.Tools = append(out.Tools, anthropic.ToolDefinition{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema,
		})
	}
	return out
}

func anthropicMessageFromGeneric(msg Message) anthropic.Message {
	switch msg.Role {
	case "user":
		if msg.ToolResult != nil {
			content := msg.ToolResult.Content
			if content == "" {
				content = "(empty)"
			}
			return anthropic.Message{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewToolResultMessageContent(msg.ToolResult.ToolCallID, content, msg.ToolResult.IsError),
				},
			}
		}
		if len(msg.Images) > 0 {
			content := []anthropic.MessageContent{
				anthropic.NewTextMessageContent(msg.Content),
			}
			for _, img := range msg.Images {
				data, err := base64.StdEncoding.DecodeString(img.Base64)
				if err != nil {
					continue
				}
				content = append(content, anthropic.NewImageMessageContent(
					anthropic.NewMessageContentSource(anthropic.MessagesContentSourceTypeBase64, img.MediaType, data),
				))
			}
			return anthropic.Message{Role: anthropic.RoleUser, Content: content}
		}
		return anthropic.NewUserTextMessage(msg.Content)
	case "assistant":
		if len(msg.ToolCalls) > 0 {
			var content []anthropic.MessageContent
			if msg.Content != "" {
				content = append(content, anthropic.NewTextMessageContent(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				content = append(content, anthropic.MessageContent{
					Type: anthropic.MessagesContentTypeToolUse,
					MessageContentToolUse: &anthropic.MessageContentToolUse{
						ID:    tc.ID,
						Name:  tc.Name,
						Input: tc.Input,
					},
				})
			}
			return anthropic.Message{Role: anthropic.RoleAssistant, Content: content}
		}
		return anthropic.NewAssistantTextMessage(msg.Content)
	default:
		return anthropic.NewUserTextMessage(msg.Content)
	}
}

func genericResponseFromAnthropic(resp anthropic.MessagesResponse) ChatResponse {
	out := ChatResponse{FinishReason: string(resp.StopReason)}
	for _, content := range resp.Content {
		switch content.Type {
		case anthropic.MessagesContentTypeText:
			out.Content += content.GetText()
		case anthropic.MessagesContentTypeToolUse:
			if content.MessageContentToolUse == nil {
				continue
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:    content.MessageContentToolUse.ID,
				Name:  content.MessageContentToolUse.Name,
				Input: content.MessageContentToolUse.Input,
			})
		}
	}
	if resp.StopReason == anthropic.MessagesStopReasonToolUse {
		out.FinishReason = "tool_use"
	}
	return out
}
