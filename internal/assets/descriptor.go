package assets

import (
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Suitability tags describe what an uploaded image works well as.
const (
	TagBanner         = "banner"
	TagHero           = "hero"
	TagProductPhoto   = "product_photo"
	TagLifestylePhoto = "lifestyle_photo"
	TagBackground     = "background"
	TagSectionHeading = "section_heading"
	TagOther          = "other"
)

var knownTags = []any{
	TagBanner, TagHero, TagProductPhoto, TagLifestylePhoto,
	TagBackground, TagSectionHeading, TagOther,
}

// Descriptor is the metadata record for an uploaded image. It is created
// once, after the description step completes, and never mutated; deletion
// removes it entirely.
type Descriptor struct {
	ID                  string   `json:"id"`
	Filename            string   `json:"filename"`
	Width               int      `json:"width,omitempty"`
	Height              int      `json:"height,omitempty"`
	ContentsDescription string   `json:"contents_description,omitempty"`
	OverlayText         string   `json:"overlay_text,omitempty"`
	SuitabilityTags     []string `json:"suitability_tags,omitempty"`
	SuggestedAltText    string   `json:"suggested_alt_text,omitempty"`
}

// Validate checks the descriptor's required fields and tag set.
func (d *Descriptor) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.ID, validation.Required),
		validation.Field(&d.Filename, validation.Required),
		validation.Field(&d.SuitabilityTags,
			validation.Length(0, 2),
			validation.Each(validation.In(knownTags...)),
		),
	)
}

// FormatForPrompt renders ready descriptors as context for the generative
// model. An empty catalog degrades to an explicit statement instead of an
// empty block.
func FormatForPrompt(descriptors []Descriptor) string {
	if len(descriptors) == 0 {
		return "No uploaded images yet."
	}

	sorted := make([]Descriptor, len(descriptors))
	copy(sorted, descriptors)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Filename < sorted[j].Filename })

	var b strings.Builder
	b.WriteString("Available uploaded images (use filename to reference images):\n")
	for _, d := range sorted {
		b.WriteString("- filename: ")
		b.WriteString(d.Filename)
		if d.Width > 0 && d.Height > 0 {
			fmt.Fprintf(&b, ", dimensions: %dx%d", d.Width, d.Height)
		}
		if d.ContentsDescription != "" {
			b.WriteString(", contents: ")
			b.WriteString(d.ContentsDescription)
		}
		if d.OverlayText != "" {
			b.WriteString(", overlay text: ")
			b.WriteString(d.OverlayText)
		}
		if len(d.SuitabilityTags) > 0 {
			b.WriteString(", good for: ")
			b.WriteString(strings.Join(d.SuitabilityTags, ", "))
		}
		if d.SuggestedAltText != "" {
			b.WriteString(", suggested alt text: ")
			b.WriteString(d.SuggestedAltText)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
