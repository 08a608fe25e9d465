// Package critique sends a rendered email screenshot plus its source markup
// through a vision-capable model with a fixed rubric and parses the
// structured result.
package critique

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/draftdeck/draftdeck/internal/config"
	"github.com/draftdeck/draftdeck/internal/email"
	"github.com/draftdeck/draftdeck/internal/logger"
)

// MalformedCritiqueError reports a model response that could not be parsed
// into the expected structure. The response is never coerced into a
// best-effort guess: downstream consumers must be able to trust the shape.
type MalformedCritiqueError struct {
	Reason string
	Err    error
}

func (e *MalformedCritiqueError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("critique: malformed response (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("critique: malformed response (%s)", e.Reason)
}

func (e *MalformedCritiqueError) Unwrap() error {
	return e.Err
}

// Severity ranks an issue from 1 (cosmetic) to 5 (unusable). Models
// sometimes quote the number, so decoding accepts both forms.
type Severity int

// UnmarshalJSON accepts 3 and "3".
func (s *Severity) UnmarshalJSON(data []byte) error {
	trimmed := strings.Trim(string(data), `"`)
	v, err := strconv.Atoi(trimmed)
	if err != nil {
		return fmt.Errorf("severity %q is not a number", trimmed)
	}
	*s = Severity(v)
	return nil
}

// Issue is one problem the rubric found.
type Issue struct {
	Issue    string   `json:"issue"`
	Severity Severity `json:"severity"`
	Fix      string   `json:"fix"`
}

// Result is the parsed critique: the issue list and a corrected document.
type Result struct {
	Issues      []Issue `json:"issues"`
	FixedMarkup string  `json:"fixedMJML"`
}

// Critic runs the critique pipeline against a vision model.
type Critic struct {
	client *openai.Client
	model  string
}

// NewCritic builds a critic from the OpenAI configuration.
func NewCritic(cfg config.OpenAIConfig) (*Critic, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("critique: OpenAI API key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Critic{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.VisionModel,
	}, nil
}

// Critique sends the markup and its screenshot to the model and returns the
// parsed result. The fixed markup must independently pass document-shape
// validation before it is surfaced as a usable artifact.
func (c *Critic) Critique(ctx context.Context, markup, screenshotBase64 string) (Result, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: rubricSystemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Please critique the following email design. Here is the MJML:\n" + markup,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    "data:image/png;base64," + screenshotBase64,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("critique: vision call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, &MalformedCritiqueError{Reason: "no choices in response"}
	}

	return parseResult(resp.Choices[0].Message.Content)
}

func parseResult(raw string) (Result, error) {
	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return Result{}, &MalformedCritiqueError{Reason: "invalid JSON", Err: err}
	}
	if result.FixedMarkup == "" {
		return Result{}, &MalformedCritiqueError{Reason: "missing fixedMJML"}
	}
	for i, issue := range result.Issues {
		if issue.Severity < 1 || issue.Severity > 5 {
			return Result{}, &MalformedCritiqueError{Reason: fmt.Sprintf("issue %d severity %d out of range", i, issue.Severity)}
		}
	}
	if err := email.ValidateMarkup(result.FixedMarkup); err != nil {
		return Result{}, &MalformedCritiqueError{Reason: "fixedMJML failed document validation", Err: err}
	}
	logger.Debug("[Critique] parsed %d issues", len(result.Issues))
	return result, nil
}
