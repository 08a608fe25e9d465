package assets

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/draftdeck/draftdeck/internal/config"
)

const describeSystemPrompt = `You describe uploaded marketing images so an email design assistant can use them well.
Respond with a JSON object with these fields:
- "contents_description": one or two sentences describing what the image shows
- "overlay_text": any text already rendered inside the image, or "" if none
- "suitability_tags": one or two of: banner, hero, product_photo, lifestyle_photo, background, section_heading, other
- "suggested_alt_text": a short accessible alt text for the image`

// OpenAIDescriber generates asset descriptions with a vision-capable model.
type OpenAIDescriber struct {
	client *openai.Client
	model  string
}

// NewOpenAIDescriber builds a describer from the OpenAI configuration.
func NewOpenAIDescriber(cfg config.OpenAIConfig) (*OpenAIDescriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("assets: OpenAI API key is required for descriptor generation")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIDescriber{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.VisionModel,
	}, nil
}

// Describe sends the image to the vision model and parses the structured
// description.
func (d *OpenAIDescriber) Describe(ctx context.Context, data []byte, mimeType string) (Description, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: describeSystemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Describe this image for the email design catalog.",
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return Description{}, fmt.Errorf("assets: vision call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Description{}, fmt.Errorf("assets: vision call returned no choices")
	}

	var desc Description
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &desc); err != nil {
		return Description{}, fmt.Errorf("assets: parse description: %w", err)
	}
	return desc, nil
}
