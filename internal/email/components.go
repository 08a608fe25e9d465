package email

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind discriminates the closed set of component node types.
type Kind string

const (
	KindSection Kind = "section"
	KindColumn  Kind = "column"
	KindText    Kind = "text"
	KindDivider Kind = "divider"
	KindSpacer  Kind = "spacer"
	KindButton  Kind = "button"
	KindImage   Kind = "image"
)

// AssetCatalog resolves asset references at render time. Resolve reports
// whether ref names a known asset and returns its suggested alt text when
// one exists.
type AssetCatalog interface {
	Resolve(ref string) (suggestedAlt string, ok bool)
}

// RenderContext carries cross-component state into rendering. A nil catalog
// means no resolution is available; images then render as authored.
type RenderContext struct {
	Assets AssetCatalog
}

// Document is the root of a component tree: an ordered list of sections.
type Document struct {
	Sections []Section `json:"sections"`
}

// Section is a full-width row containing one or more columns.
type Section struct {
	ID         string            `json:"id"`
	Attributes SectionAttributes `json:"attributes"`
	Children   []Column          `json:"children"`
}

// Column is a vertical slice of a section containing leaf components.
type Column struct {
	ID         string           `json:"id"`
	Attributes ColumnAttributes `json:"attributes"`
	Children   []Leaf           `json:"children"`
}

// Leaf is one of the terminal component kinds. Exactly one attribute set is
// populated, matching Kind.
type Leaf struct {
	ID   string
	Kind Kind

	Text    *TextAttributes
	Divider *DividerAttributes
	Spacer  *SpacerAttributes
	Button  *ButtonAttributes
	Image   *ImageAttributes
}

type leafEnvelope struct {
	ID         string          `json:"id"`
	Type       Kind            `json:"type"`
	Attributes json.RawMessage `json:"attributes"`
}

// UnmarshalJSON decodes the discriminated {id, type, attributes} shape
// produced by the generative step.
func (l *Leaf) UnmarshalJSON(data []byte) error {
	var env leafEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	attrs := env.Attributes
	if attrs == nil {
		attrs = []byte("{}")
	}
	l.ID = env.ID
	l.Kind = env.Type
	switch env.Type {
	case KindText:
		l.Text = &TextAttributes{}
		return json.Unmarshal(attrs, l.Text)
	case KindDivider:
		l.Divider = &DividerAttributes{}
		return json.Unmarshal(attrs, l.Divider)
	case KindSpacer:
		l.Spacer = &SpacerAttributes{}
		return json.Unmarshal(attrs, l.Spacer)
	case KindButton:
		l.Button = &ButtonAttributes{}
		return json.Unmarshal(attrs, l.Button)
	case KindImage:
		l.Image = &ImageAttributes{}
		return json.Unmarshal(attrs, l.Image)
	default:
		return fmt.Errorf("email: unknown leaf type %q", env.Type)
	}
}

// MarshalJSON re-emits the discriminated shape.
func (l Leaf) MarshalJSON() ([]byte, error) {
	var attrs any
	switch l.Kind {
	case KindText:
		attrs = l.Text
	case KindDivider:
		attrs = l.Divider
	case KindSpacer:
		attrs = l.Spacer
	case KindButton:
		attrs = l.Button
	case KindImage:
		attrs = l.Image
	default:
		return nil, fmt.Errorf("email: unknown leaf type %q", l.Kind)
	}
	return json.Marshal(leafEnvelope2{ID: l.ID, Type: l.Kind, Attributes: attrs})
}

type leafEnvelope2 struct {
	ID         string `json:"id"`
	Type       Kind   `json:"type"`
	Attributes any    `json:"attributes"`
}

// Normalize fills defaults and validates every node in the tree, failing
// fast before any markup is emitted.
func (d *Document) Normalize() error {
	if len(d.Sections) == 0 {
		return &ValidationError{Kind: "document", Err: fmt.Errorf("at least one section is required")}
	}
	for i := range d.Sections {
		if err := d.Sections[i].normalize(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Section) normalize() error {
	s.Attributes.applyDefaults()
	if err := s.Attributes.Validate(); err != nil {
		return &ValidationError{NodeID: s.ID, Kind: KindSection, Err: err}
	}
	if len(s.Children) == 0 {
		return &ValidationError{NodeID: s.ID, Kind: KindSection, Err: fmt.Errorf("a section requires at least one column")}
	}
	total := 0
	for i := range s.Children {
		if err := s.Children[i].normalize(); err != nil {
			return err
		}
		total += *s.Children[i].Attributes.Width
	}
	// A single column always fills the section; only multi-column layouts
	// must account for the full width.
	if len(s.Children) > 1 && total != 100 {
		return &LayoutError{SectionID: s.ID, Total: total}
	}
	return nil
}

func (c *Column) normalize() error {
	c.Attributes.applyDefaults()
	if err := c.Attributes.Validate(); err != nil {
		return &ValidationError{NodeID: c.ID, Kind: KindColumn, Err: err}
	}
	for i := range c.Children {
		if err := c.Children[i].normalize(); err != nil {
			return err
		}
	}
	return nil
}

func (l *Leaf) normalize() error {
	var err error
	switch l.Kind {
	case KindText:
		l.Text.applyDefaults()
		err = l.Text.Validate()
	case KindDivider:
		l.Divider.applyDefaults()
		err = l.Divider.Validate()
	case KindSpacer:
		l.Spacer.applyDefaults()
		err = l.Spacer.Validate()
	case KindButton:
		l.Button.applyDefaults()
		err = l.Button.Validate()
	case KindImage:
		l.Image.applyDefaults()
		err = l.Image.Validate()
	default:
		err = fmt.Errorf("unknown leaf type %q", l.Kind)
	}
	if err != nil {
		return &ValidationError{NodeID: l.ID, Kind: l.Kind, Err: err}
	}
	return nil
}

// MJML renders the section and its children as a markup fragment. The tree
// must have been normalized first.
func (s *Section) MJML(ctx RenderContext) string {
	var b strings.Builder
	b.WriteString(`<mj-section background-color="`)
	b.WriteString(escapeHTML(s.Attributes.BackgroundColor))
	b.WriteString(`" padding="`)
	b.WriteString(escapeHTML(s.Attributes.Padding))
	b.WriteString(`"`)
	if s.Attributes.FullWidth {
		b.WriteString(` full-width="full-width"`)
	}
	b.WriteString(`>`)
	for i := range s.Children {
		b.WriteString(s.Children[i].MJML(ctx))
	}
	b.WriteString(`</mj-section>`)
	return b.String()
}

// MJML renders the column and its children as a markup fragment.
func (c *Column) MJML(ctx RenderContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<mj-column width="%d%%" padding="%s">`, *c.Attributes.Width, escapeHTML(c.Attributes.Padding))
	for i := range c.Children {
		b.WriteString(c.Children[i].MJML(ctx))
	}
	b.WriteString(`</mj-column>`)
	return b.String()
}

// MJML renders a leaf component. Leaf rendering never fails: an image whose
// reference cannot be resolved degrades to a placeholder fragment so the
// layout stays stable and the problem shows up visually.
func (l *Leaf) MJML(ctx RenderContext) string {
	switch l.Kind {
	case KindText:
		a := l.Text
		return fmt.Sprintf(`<mj-text color="%s" font-size="%s" font-family="%s" line-height="%s" padding="%s">%s</mj-text>`,
			escapeHTML(a.Color), escapeHTML(a.FontSize), escapeHTML(a.FontFamily), escapeHTML(a.LineHeight), escapeHTML(a.Padding), escapeHTML(a.Content))
	case KindDivider:
		a := l.Divider
		return fmt.Sprintf(`<mj-divider border-color="%s" border-width="%s" padding="%s" />`,
			escapeHTML(a.BorderColor), escapeHTML(a.BorderWidth), escapeHTML(a.Padding))
	case KindSpacer:
		return fmt.Sprintf(`<mj-spacer height="%s" />`, escapeHTML(l.Spacer.Height))
	case KindButton:
		a := l.Button
		return fmt.Sprintf(`<mj-button href="%s" background-color="%s" color="%s" font-size="%s" font-family="%s" inner-padding="%s" border-radius="%s" align="%s" padding="%s">%s</mj-button>`,
			escapeHTML(a.Href), escapeHTML(a.BackgroundColor), escapeHTML(a.Color), escapeHTML(a.FontSize), escapeHTML(a.FontFamily),
			escapeHTML(a.InnerPadding), escapeHTML(a.BorderRadius), escapeHTML(a.Align), escapeHTML(a.Padding), escapeHTML(a.Text))
	case KindImage:
		return l.imageMJML(ctx)
	default:
		return ""
	}
}

func (l *Leaf) imageMJML(ctx RenderContext) string {
	a := l.Image
	alt := a.Alt
	if ctx.Assets != nil {
		suggested, ok := ctx.Assets.Resolve(a.AssetReference)
		if !ok {
			// Unresolvable reference: keep the slot visible instead of
			// silently dropping content.
			return fmt.Sprintf(`<mj-text align="center" color="#B91C1C" padding="%s" css-class="missing-image">[image not found: %s]</mj-text>`,
				escapeHTML(a.Padding), escapeHTML(a.AssetReference))
		}
		if alt == "" {
			alt = suggested
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<mj-image src="/uploads/%s"`, escapeHTML(a.AssetReference))
	if alt != "" {
		fmt.Fprintf(&b, ` alt="%s"`, escapeHTML(alt))
	}
	if a.Width != "" {
		fmt.Fprintf(&b, ` width="%s"`, escapeHTML(a.Width))
	}
	fmt.Fprintf(&b, ` padding="%s" />`, escapeHTML(a.Padding))
	return b.String()
}

// escapeHTML escapes text for inclusion in markup attribute and body
// positions.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "'", "&#039;")
	return s
}
