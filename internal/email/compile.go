package email

import (
	"strings"
)

// bodyBackground is the fixed canvas color behind every compiled email.
const bodyBackground = "#F8FAFC"

// Compile turns a normalized component tree into a complete MJML document.
// Compilation is deterministic: the same tree always yields byte-identical
// markup.
func Compile(doc *Document, ctx RenderContext) (string, error) {
	if err := doc.Normalize(); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(`<mjml><mj-body background-color="`)
	b.WriteString(bodyBackground)
	b.WriteString(`">`)
	for i := range doc.Sections {
		b.WriteString(doc.Sections[i].MJML(ctx))
	}
	b.WriteString(`</mj-body></mjml>`)
	return b.String(), nil
}

// ValidateMarkup performs pass-through validation of a raw markup string
// produced by a generative step: the document must contain a root <mjml>
// tag wrapping an <mj-body> tag. Anything else is malformed output; no
// repair is attempted.
func ValidateMarkup(markup string) error {
	doc := strings.TrimSpace(markup)

	mjmlOpen := tagIndex(doc, "mjml", 0)
	if mjmlOpen < 0 {
		return ErrMalformedDocument
	}
	bodyOpen := tagIndex(doc, "mj-body", mjmlOpen)
	if bodyOpen < 0 {
		return ErrMalformedDocument
	}
	bodyClose := strings.Index(doc[bodyOpen:], "</mj-body>")
	if bodyClose < 0 {
		return ErrMalformedDocument
	}
	mjmlClose := strings.Index(doc[bodyOpen+bodyClose:], "</mjml>")
	if mjmlClose < 0 {
		return ErrMalformedDocument
	}
	return nil
}

// tagIndex finds an opening tag with the exact given name at or after from,
// rejecting prefixes such as <mjml-raw> when searching for <mjml>.
func tagIndex(s, name string, from int) int {
	needle := "<" + name
	for i := from; i < len(s); {
		idx := strings.Index(s[i:], needle)
		if idx < 0 {
			return -1
		}
		pos := i + idx
		end := pos + len(needle)
		if end >= len(s) {
			return -1
		}
		switch s[end] {
		case '>', ' ', '\t', '\n', '\r', '/':
			return pos
		}
		i = end
	}
	return -1
}
