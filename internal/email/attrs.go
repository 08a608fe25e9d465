package email

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Attribute defaults are part of the visual contract: changing one changes
// the output of every component of that kind.
const (
	defaultFontFamily = "Helvetica, Arial, sans-serif"
	defaultFontSize   = "16px"
	defaultPadding    = "0px"

	defaultTextColor      = "#111111"
	defaultTextLineHeight = "1.6"

	defaultDividerBorderColor = "#E5E7EB"
	defaultDividerBorderWidth = "1px"
	defaultDividerPadding     = "16px 0"

	defaultSpacerHeight = "16px"

	defaultButtonBackground   = "#111827"
	defaultButtonColor        = "#FFFFFF"
	defaultButtonInnerPadding = "12px 18px"
	defaultButtonBorderRadius = "6px"
	defaultButtonAlign        = "left"

	defaultColumnWidth = 100

	defaultSectionBackground = "#FFFFFF"
	defaultSectionPadding    = "24px 16px"
)

// TextAttributes styles a text block.
type TextAttributes struct {
	Content    string `json:"content"`
	Color      string `json:"color,omitempty"`
	FontSize   string `json:"fontSize,omitempty"`
	FontFamily string `json:"fontFamily,omitempty"`
	LineHeight string `json:"lineHeight,omitempty"`
	Padding    string `json:"padding,omitempty"`
}

func (a *TextAttributes) applyDefaults() {
	if a.Color == "" {
		a.Color = defaultTextColor
	}
	if a.FontSize == "" {
		a.FontSize = defaultFontSize
	}
	if a.FontFamily == "" {
		a.FontFamily = defaultFontFamily
	}
	if a.LineHeight == "" {
		a.LineHeight = defaultTextLineHeight
	}
	if a.Padding == "" {
		a.Padding = defaultPadding
	}
}

// Validate checks the required fields.
func (a *TextAttributes) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Content, validation.Required),
	)
}

// DividerAttributes styles a horizontal rule.
type DividerAttributes struct {
	BorderColor string `json:"borderColor,omitempty"`
	BorderWidth string `json:"borderWidth,omitempty"`
	Padding     string `json:"padding,omitempty"`
}

func (a *DividerAttributes) applyDefaults() {
	if a.BorderColor == "" {
		a.BorderColor = defaultDividerBorderColor
	}
	if a.BorderWidth == "" {
		a.BorderWidth = defaultDividerBorderWidth
	}
	if a.Padding == "" {
		a.Padding = defaultDividerPadding
	}
}

// Validate checks the divider attributes. All fields have defaults.
func (a *DividerAttributes) Validate() error {
	return nil
}

// SpacerAttributes is vertical whitespace.
type SpacerAttributes struct {
	Height string `json:"height,omitempty"`
}

func (a *SpacerAttributes) applyDefaults() {
	if a.Height == "" {
		a.Height = defaultSpacerHeight
	}
}

// Validate checks the spacer attributes. All fields have defaults.
func (a *SpacerAttributes) Validate() error {
	return nil
}

// ButtonAttributes styles a call-to-action button.
type ButtonAttributes struct {
	Href            string `json:"href"`
	Text            string `json:"text"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	Color           string `json:"color,omitempty"`
	FontSize        string `json:"fontSize,omitempty"`
	FontFamily      string `json:"fontFamily,omitempty"`
	InnerPadding    string `json:"innerPadding,omitempty"`
	BorderRadius    string `json:"borderRadius,omitempty"`
	Align           string `json:"align,omitempty"`
	Padding         string `json:"padding,omitempty"`
}

func (a *ButtonAttributes) applyDefaults() {
	if a.BackgroundColor == "" {
		a.BackgroundColor = defaultButtonBackground
	}
	if a.Color == "" {
		a.Color = defaultButtonColor
	}
	if a.FontSize == "" {
		a.FontSize = defaultFontSize
	}
	if a.FontFamily == "" {
		a.FontFamily = defaultFontFamily
	}
	if a.InnerPadding == "" {
		a.InnerPadding = defaultButtonInnerPadding
	}
	if a.BorderRadius == "" {
		a.BorderRadius = defaultButtonBorderRadius
	}
	if a.Align == "" {
		a.Align = defaultButtonAlign
	}
	if a.Padding == "" {
		a.Padding = defaultPadding
	}
}

// Validate checks the required fields and the align enum.
func (a *ButtonAttributes) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Href, validation.Required, is.URL),
		validation.Field(&a.Text, validation.Required),
		validation.Field(&a.Align, validation.In("left", "center", "right")),
	)
}

// ImageAttributes references an uploaded asset by filename (id plus the
// original extension).
type ImageAttributes struct {
	AssetReference string `json:"assetReference"`
	Alt            string `json:"alt,omitempty"`
	Width          string `json:"width,omitempty"`
	Padding        string `json:"padding,omitempty"`
}

func (a *ImageAttributes) applyDefaults() {
	if a.Padding == "" {
		a.Padding = defaultPadding
	}
}

// Validate checks the required fields.
func (a *ImageAttributes) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.AssetReference, validation.Required),
	)
}

// ColumnAttributes sizes a column. Width is an integer percentage; nil means
// the default of 100.
type ColumnAttributes struct {
	Width   *int   `json:"width,omitempty"`
	Padding string `json:"padding,omitempty"`
}

func (a *ColumnAttributes) applyDefaults() {
	if a.Width == nil {
		w := defaultColumnWidth
		a.Width = &w
	}
	if a.Padding == "" {
		a.Padding = defaultPadding
	}
}

// Validate checks the width range.
func (a *ColumnAttributes) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Width, validation.Min(0), validation.Max(100)),
	)
}

// SectionAttributes styles a full-width row of the email.
type SectionAttributes struct {
	BackgroundColor string `json:"backgroundColor,omitempty"`
	Padding         string `json:"padding,omitempty"`
	FullWidth       bool   `json:"fullWidth,omitempty"`
}

func (a *SectionAttributes) applyDefaults() {
	if a.BackgroundColor == "" {
		a.BackgroundColor = defaultSectionBackground
	}
	if a.Padding == "" {
		a.Padding = defaultSectionPadding
	}
}

// Validate checks the section attributes. All fields have defaults.
func (a *SectionAttributes) Validate() error {
	return nil
}
