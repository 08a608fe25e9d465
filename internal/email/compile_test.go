package email

import (
	"errors"
	"strings"
	"testing"
)

func sampleDocument() *Document {
	return &Document{Sections: []Section{
		{
			ID: "hero",
			Children: []Column{{
				ID: "hero-col",
				Children: []Leaf{
					{ID: "h1", Kind: KindText, Text: &TextAttributes{Content: "Summer Sale", FontSize: "32px"}},
					{ID: "cta", Kind: KindButton, Button: &ButtonAttributes{Href: "https://example.com/sale", Text: "Shop now"}},
				},
			}},
		},
		{
			ID: "split",
			Children: []Column{
				{ID: "left", Attributes: ColumnAttributes{Width: intPtr(50)}, Children: []Leaf{
					{ID: "img", Kind: KindImage, Image: &ImageAttributes{AssetReference: "shoe.jpg"}},
				}},
				{ID: "right", Attributes: ColumnAttributes{Width: intPtr(50)}, Children: []Leaf{
					textLeaf("copy", "Fresh kicks for the season"),
				}},
			},
		},
	}}
}

func TestCompileProducesCompleteDocument(t *testing.T) {
	out, err := Compile(sampleDocument(), RenderContext{Assets: fakeCatalog{"shoe.jpg": "red shoe"}})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.HasPrefix(out, "<mjml><mj-body") || !strings.HasSuffix(out, "</mj-body></mjml>") {
		t.Fatalf("document shape: %s", out)
	}
	if !strings.Contains(out, `background-color="#F8FAFC"`) {
		t.Fatalf("body background missing: %s", out)
	}
	if err := ValidateMarkup(out); err != nil {
		t.Fatalf("compiled output must pass markup validation: %v", err)
	}
}

func TestCompileIsIdempotent(t *testing.T) {
	ctx := RenderContext{Assets: fakeCatalog{"shoe.jpg": "red shoe"}}
	first, err := Compile(sampleDocument(), ctx)
	if err != nil {
		t.Fatalf("first compile: %v", err)
	}
	second, err := Compile(sampleDocument(), ctx)
	if err != nil {
		t.Fatalf("second compile: %v", err)
	}
	if first != second {
		t.Fatalf("compilation is not deterministic:\n%s\n%s", first, second)
	}

	// Compiling the same tree value twice also yields identical output.
	doc := sampleDocument()
	a, err := Compile(doc, ctx)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	b, err := Compile(doc, ctx)
	if err != nil {
		t.Fatalf("recompile: %v", err)
	}
	if a != b {
		t.Fatal("recompiling a normalized tree changed the output")
	}
}

func TestCompileFailsFastOnBadWidths(t *testing.T) {
	doc := sampleDocument()
	doc.Sections[1].Children[0].Attributes.Width = intPtr(40)
	out, err := Compile(doc, RenderContext{})
	if err == nil {
		t.Fatal("expected layout error")
	}
	var layoutErr *LayoutError
	if !errors.As(err, &layoutErr) || layoutErr.Total != 90 {
		t.Fatalf("expected LayoutError with total 90, got %v", err)
	}
	if out != "" {
		t.Fatalf("no partial output on failure, got %q", out)
	}
}

func TestValidateMarkup(t *testing.T) {
	cases := []struct {
		name    string
		markup  string
		wantErr bool
	}{
		{"complete document", "<mjml><mj-body><mj-section></mj-section></mj-body></mjml>", false},
		{"attributes on tags", `<mjml lang="en"><mj-body background-color="#fff"></mj-body></mjml>`, false},
		{"leading whitespace", "\n  <mjml><mj-body></mj-body></mjml>\n", false},
		{"missing mjml root", "<mj-body></mj-body>", true},
		{"missing body", "<mjml></mjml>", true},
		{"unclosed body", "<mjml><mj-body></mjml>", true},
		{"unclosed root", "<mjml><mj-body></mj-body>", true},
		{"body outside root", "<mj-body></mj-body><mjml></mjml>", true},
		{"prose instead of markup", "Sure! Here is your email design.", true},
		{"empty string", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateMarkup(tc.markup)
			if tc.wantErr && !errors.Is(err, ErrMalformedDocument) {
				t.Fatalf("expected ErrMalformedDocument, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
