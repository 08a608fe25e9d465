package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/draftdeck/draftdeck/internal/assets"
	"github.com/draftdeck/draftdeck/internal/critique"
	"github.com/draftdeck/draftdeck/internal/email"
	"github.com/draftdeck/draftdeck/internal/logger"
	"github.com/draftdeck/draftdeck/internal/render"
)

// Tool names exposed to the conversation model.
const (
	ToolDraftEmail    = "draft_marketing_email"
	ToolEditEmail     = "edit_marketing_email"
	ToolCritiqueEmail = "critique_email"
)

const draftSystemPrompt = `You are a creative email design bot. Your job is to draft marketing emails that will be reviewed by a human marketing designer.
These emails should fit well into the company's brand style, but also be unique and interesting. The goal is to give new ideas to the marketing team that they can take inspiration from.

<images-available>
You can use any of the uploaded images listed below in the email you design.
{imageContext}

Rules for using images:
- For images, reference the uploaded files by filename from the catalog above.
- Set the image src to /uploads/<image-filename> where <image-filename> includes the extension, e.g. /uploads/abc123.jpg.
- To use an image as a background, use the background-url attribute in mj-section and place text or other content inside the section.
</images-available>

<design-guidelines>
- Be creative and bold with layouts, visuals, and typography while staying on-brand.
- Include clear, actionable CTAs using compelling text.
- Make the primary CTA prominent and near the top; add secondary CTAs if there are multiple actions the reader can take.
</design-guidelines>

<final-output-format>
Return only the MJML. It must start with <mjml> and include <mj-body> wrapping the entire email content. Return ONLY the MJML, no other text.
</final-output-format>`

const editSystemPrompt = `You are a creative email designer helping the user edit an email. You will be given the MJML code of the email, a screenshot of the email, and the user's instructions for what to change.

Edit the email to match the user's instructions. DO NOT make any other changes to the email.

<final-output-format>
Return only the MJML. It must start with <mjml> and include <mj-body> wrapping the entire email content. Return ONLY the MJML, no other text.
</final-output-format>`

// Rasterizer captures compiled markup as a PNG.
type Rasterizer interface {
	RenderMarkup(ctx context.Context, markup string) (render.Raster, error)
}

// Critic reviews a screenshot plus markup against the visual rubric.
type Critic interface {
	Critique(ctx context.Context, markup, screenshotBase64 string) (critique.Result, error)
}

// CatalogSource provides the ready asset descriptors.
type CatalogSource interface {
	Catalog() ([]assets.Descriptor, error)
}

// ArtifactResult is the durable output of a draft or edit: the markup
// document and the opaque id later calls reference it by.
type ArtifactResult struct {
	ID       string `json:"id"`
	Artifact string `json:"artifact"`
}

// Toolset implements the email design tools the conversation model can
// invoke.
type Toolset struct {
	generator Provider
	raster    Rasterizer
	critic    Critic
	catalog   CatalogSource
	artifacts *ArtifactRegistry
	listener  EventListener
}

// NewToolset wires the tool implementations. listener may be nil.
func NewToolset(generator Provider, raster Rasterizer, critic Critic, catalog CatalogSource, artifacts *ArtifactRegistry, listener EventListener) *Toolset {
	return &Toolset{
		generator: generator,
		raster:    raster,
		critic:    critic,
		catalog:   catalog,
		artifacts: artifacts,
		listener:  listener,
	}
}

// Artifacts exposes the registry.
func (t *Toolset) Artifacts() *ArtifactRegistry {
	return t.artifacts
}

func (t *Toolset) emit(ev ToolRunEvent) {
	if t.listener != nil {
		t.listener(ev)
	}
}

// Draft generates a new email from a creative brief and registers the
// resulting artifact.
func (t *Toolset) Draft(ctx context.Context, brief string) (ArtifactResult, error) {
	if strings.TrimSpace(brief) == "" {
		return ArtifactResult{}, fmt.Errorf("draft: brief must not be empty")
	}

	runID := uuid.NewString()
	t.emit(ToolRunEvent{RunID: runID, Tool: ToolDraftEmail, Status: StatusStarting, Text: "Drafting: " + brief})

	system := strings.Replace(draftSystemPrompt, "{imageContext}", t.imageContext(), 1)
	markup, err := t.generate(ctx, runID, ToolDraftEmail, ChatRequest{
		SystemPrompt: system,
		Messages: []Message{{
			Role:    "user",
			Content: "Create a marketing email based on the following description: " + brief,
		}},
	})
	if err != nil {
		t.emit(ToolRunEvent{RunID: runID, Tool: ToolDraftEmail, Status: StatusError, Error: err.Error()})
		return ArtifactResult{}, err
	}

	t.artifacts.Put(runID, markup)
	t.emit(ToolRunEvent{RunID: runID, Tool: ToolDraftEmail, Status: StatusDone, Final: markup})
	return ArtifactResult{ID: runID, Artifact: markup}, nil
}

// Edit revises an existing artifact per the user's instructions. The email
// is re-rendered so the model edits against what the reader would actually
// see.
func (t *Toolset) Edit(ctx context.Context, userInstructions, emailToEditID string) (ArtifactResult, error) {
	if strings.TrimSpace(userInstructions) == "" {
		return ArtifactResult{}, fmt.Errorf("edit: instructions must not be empty")
	}

	runID := uuid.NewString()
	t.emit(ToolRunEvent{RunID: runID, Tool: ToolEditEmail, Status: StatusStarting, Text: "Planning: " + userInstructions})

	current, ok := t.artifacts.Get(emailToEditID)
	if !ok {
		err := &NotFoundError{ID: emailToEditID}
		t.emit(ToolRunEvent{RunID: runID, Tool: ToolEditEmail, Status: StatusError, Error: err.Error()})
		return ArtifactResult{}, err
	}

	t.emit(ToolRunEvent{RunID: runID, Tool: ToolEditEmail, Status: StatusStreaming, Text: "Taking a screenshot of the current email"})
	raster, err := t.raster.RenderMarkup(ctx, current)
	if err != nil {
		t.emit(ToolRunEvent{RunID: runID, Tool: ToolEditEmail, Status: StatusError, Error: err.Error()})
		return ArtifactResult{}, err
	}

	markup, err := t.generate(ctx, runID, ToolEditEmail, ChatRequest{
		SystemPrompt: editSystemPrompt,
		Messages: []Message{{
			Role:    "user",
			Content: fmt.Sprintf("Email to be edited:\n%s\n\nInstructions: %s", current, userInstructions),
			Images:  []ImageData{{MediaType: "image/png", Base64: raster.Base64}},
		}},
	})
	if err != nil {
		t.emit(ToolRunEvent{RunID: runID, Tool: ToolEditEmail, Status: StatusError, Error: err.Error()})
		return ArtifactResult{}, err
	}

	t.artifacts.Put(runID, markup)
	t.emit(ToolRunEvent{RunID: runID, Tool: ToolEditEmail, Status: StatusDone, Final: markup})
	return ArtifactResult{ID: runID, Artifact: markup}, nil
}

// CritiqueResult pairs the critique with the registered id of the corrected
// artifact.
type CritiqueResult struct {
	ReviewedID  string           `json:"reviewedId"`
	Issues      []critique.Issue `json:"issues"`
	FixedID     string           `json:"fixedId"`
	FixedMarkup string           `json:"fixedMarkup"`
}

// Critique reviews the most recent artifact in the registry.
func (t *Toolset) Critique(ctx context.Context) (CritiqueResult, error) {
	runID := uuid.NewString()
	t.emit(ToolRunEvent{RunID: runID, Tool: ToolCritiqueEmail, Status: StatusStarting})

	id, markup, ok := t.artifacts.Latest()
	if !ok {
		err := &NotFoundError{ID: "(latest)"}
		t.emit(ToolRunEvent{RunID: runID, Tool: ToolCritiqueEmail, Status: StatusError, Error: err.Error()})
		return CritiqueResult{}, err
	}

	raster, err := t.raster.RenderMarkup(ctx, markup)
	if err != nil {
		t.emit(ToolRunEvent{RunID: runID, Tool: ToolCritiqueEmail, Status: StatusError, Error: err.Error()})
		return CritiqueResult{}, err
	}

	res, err := t.critic.Critique(ctx, markup, raster.Base64)
	if err != nil {
		t.emit(ToolRunEvent{RunID: runID, Tool: ToolCritiqueEmail, Status: StatusError, Error: err.Error()})
		return CritiqueResult{}, err
	}

	// The corrected document becomes a first-class artifact so a follow-up
	// edit can reference it.
	t.artifacts.Put(runID, res.FixedMarkup)
	t.emit(ToolRunEvent{RunID: runID, Tool: ToolCritiqueEmail, Status: StatusDone, Final: res.FixedMarkup})
	return CritiqueResult{
		ReviewedID:  id,
		Issues:      res.Issues,
		FixedID:     runID,
		FixedMarkup: res.FixedMarkup,
	}, nil
}

// generate runs one model generation, streaming deltas to the run's event
// channel when the provider supports it, and validates the output document.
func (t *Toolset) generate(ctx context.Context, runID, tool string, req ChatRequest) (string, error) {
	var resp ChatResponse
	var err error
	if streamer, ok := t.generator.(StreamingProvider); ok {
		resp, err = streamer.ChatStream(ctx, req, func(delta string) {
			t.emit(ToolRunEvent{RunID: runID, Tool: tool, Status: StatusStreaming, Text: delta})
		})
	} else {
		resp, err = t.generator.Chat(ctx, req)
	}
	if err != nil {
		return "", err
	}
	return extractMarkup(resp.Content)
}

func (t *Toolset) imageContext() string {
	if t.catalog == nil {
		return assets.FormatForPrompt(nil)
	}
	descriptors, err := t.catalog.Catalog()
	if err != nil {
		logger.Warn("[Tools] reading asset catalog: %v", err)
		return assets.FormatForPrompt(nil)
	}
	return assets.FormatForPrompt(descriptors)
}

// extractMarkup locates the MJML document span inside a model response
// (models occasionally wrap it in prose or code fences) and validates its
// shape. A response with no complete document is an error, not something to
// repair.
func extractMarkup(text string) (string, error) {
	start := strings.Index(text, "<mjml")
	end := strings.LastIndex(text, "</mjml>")
	if start < 0 || end < 0 || end < start {
		return "", fmt.Errorf("model did not return a complete MJML document: %w", email.ErrMalformedDocument)
	}
	markup := text[start : end+len("</mjml>")]
	if err := email.ValidateMarkup(markup); err != nil {
		return "", err
	}
	return markup, nil
}

// toolResultJSON serializes a tool outcome for the conversation model.
func toolResultJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(data)
}
