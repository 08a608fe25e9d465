package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/draftdeck/draftdeck/internal/logger"
)

const assistantSystemPrompt = `You are an AI assistant that helps the user design marketing emails. You can draft new emails, edit existing drafts, and critique the current draft for visual problems.

Guidelines:
- When the user asks for a new email, call draft_marketing_email with a complete creative brief built from the conversation.
- When the user asks for a change, call edit_marketing_email with the id of the email to change and plain-language instructions.
- When the user asks for a review, call critique_email and summarize the issues found.
- After a tool finishes, briefly tell the user what was produced. Do not paste raw MJML into your reply.`

const maxToolRounds = 8

const historyLimit = 40

// Agent runs the email design conversation: it routes user messages to the
// conversation model and dispatches the tool calls the model makes.
type Agent struct {
	provider Provider
	tools    *Toolset

	mu       sync.Mutex
	sessions map[string][]Message
}

// New builds an agent over a conversation provider and a wired toolset.
func New(provider Provider, tools *Toolset) *Agent {
	return &Agent{
		provider: provider,
		tools:    tools,
		sessions: make(map[string][]Message),
	}
}

func (a *Agent) toolDefinitions() []Tool {
	return []Tool{
		{
			Name:        ToolDraftEmail,
			Description: "Draft a new marketing email from a creative brief. Returns the id of the drafted email.",
			InputSchema: jsonSchema(map[string]any{
				"brief": map[string]any{
					"type":        "string",
					"description": "Everything the designer should know: purpose, audience, tone, content, and any images to feature.",
				},
			}, "brief"),
		},
		{
			Name:        ToolEditEmail,
			Description: "Edit a previously drafted email. Returns the id of the revised email.",
			InputSchema: jsonSchema(map[string]any{
				"email_to_edit_id": map[string]any{
					"type":        "string",
					"description": "The id of the email to edit, as returned by a previous draft or edit.",
				},
				"instructions": map[string]any{
					"type":        "string",
					"description": "What to change, in plain language. Nothing else will be altered.",
				},
			}, "email_to_edit_id", "instructions"),
		},
		{
			Name:        ToolCritiqueEmail,
			Description: "Visually review the most recent email draft and produce a corrected version. Returns the issues found and the id of the corrected email.",
			InputSchema: jsonSchema(map[string]any{}),
		},
	}
}

// HandleMessage processes one user message in the named session and returns
// the assistant's reply.
func (a *Agent) HandleMessage(ctx context.Context, sessionID, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty message")
	}

	messages := a.history(sessionID)
	messages = append(messages, Message{Role: "user", Content: text})
	tools := a.toolDefinitions()

	resp, err := a.provider.Chat(ctx, ChatRequest{
		Messages:     messages,
		SystemPrompt: assistantSystemPrompt,
		Tools:        tools,
		MaxTokens:    4096,
	})
	if err != nil {
		return "", fmt.Errorf("AI error: %w", err)
	}

	for round := range maxToolRounds {
		if resp.FinishReason != "tool_use" {
			break
		}

		toolResults := a.processToolCalls(ctx, resp.ToolCalls)
		for _, result := range toolResults {
			if result.IsError {
				logger.Warn("[Agent] Tool error (round %d/%d): %s", round+1, maxToolRounds, result.Content)
			}
		}

		messages = append(messages, Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, result := range toolResults {
			messages = append(messages, Message{
				Role:       "user",
				ToolResult: &result,
			})
		}

		resp, err = a.provider.Chat(ctx, ChatRequest{
			Messages:     messages,
			SystemPrompt: assistantSystemPrompt,
			Tools:        tools,
			MaxTokens:    4096,
		})
		if err != nil {
			return "", fmt.Errorf("AI error: %w", err)
		}
	}
	if resp.FinishReason == "tool_use" {
		logger.Warn("[Agent] Tool loop hit max rounds (%d), forcing stop (session: %s)", maxToolRounds, sessionID)
	}

	messages = append(messages, Message{Role: "assistant", Content: resp.Content})
	a.storeHistory(sessionID, messages)

	logger.Debug("[Agent] Response: %s", resp.Content)
	return resp.Content, nil
}

// processToolCalls executes the model's tool calls in order.
func (a *Agent) processToolCalls(ctx context.Context, toolCalls []ToolCall) []ToolResult {
	results := make([]ToolResult, 0, len(toolCalls))
	for _, tc := range toolCalls {
		content, err := a.executeTool(ctx, tc.Name, tc.Input)
		if err != nil {
			content = "Error: " + err.Error()
		}
		results = append(results, ToolResult{
			ToolCallID: tc.ID,
			Content:    content,
			IsError:    err != nil,
		})
	}
	return results
}

func (a *Agent) executeTool(ctx context.Context, name string, input json.RawMessage) (string, error) {
	logger.Info("[Agent] Executing tool: %s", name)

	var args struct {
		Brief         string `json:"brief"`
		EmailToEditID string `json:"email_to_edit_id"`
		Instructions  string `json:"instructions"`
	}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &args); err != nil {
			return "", fmt.Errorf("parsing arguments: %w", err)
		}
	}

	switch name {
	case ToolDraftEmail:
		res, err := a.tools.Draft(ctx, args.Brief)
		if err != nil {
			return "", err
		}
		return toolResultJSON(res), nil
	case ToolEditEmail:
		res, err := a.tools.Edit(ctx, args.Instructions, args.EmailToEditID)
		if err != nil {
			return "", err
		}
		return toolResultJSON(res), nil
	case ToolCritiqueEmail:
		res, err := a.tools.Critique(ctx)
		if err != nil {
			return "", err
		}
		return toolResultJSON(res), nil
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

func (a *Agent) history(sessionID string) []Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	stored := a.sessions[sessionID]
	out := make([]Message, len(stored))
	copy(out, stored)
	return out
}

func (a *Agent) storeHistory(sessionID string, messages []Message) {
	// Tool-call plumbing is dropped from stored history: replaying dangling
	// tool_use blocks makes providers reject the request.
	kept := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.ToolResult != nil || len(m.ToolCalls) > 0 {
			continue
		}
		kept = append(kept, m)
	}
	if len(kept) > historyLimit {
		kept = kept[len(kept)-historyLimit:]
	}
	a.mu.Lock()
	a.sessions[sessionID] = kept
	a.mu.Unlock()
}
