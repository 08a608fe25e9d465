package email

import (
	"errors"
	"fmt"
)

// ErrMalformedDocument is returned when a markup string does not contain a
// root <mjml> tag wrapping an <mj-body> tag.
var ErrMalformedDocument = errors.New("email: document must contain <mjml> wrapping <mj-body>")

// LayoutError reports a section whose multi-column widths do not sum to 100.
// It is raised during normalization, before any markup is emitted.
type LayoutError struct {
	SectionID string
	Total     int
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("email: section %s: column widths must add up to 100, received total=%d", e.SectionID, e.Total)
}

// ValidationError wraps an attribute validation failure with the node it
// belongs to.
type ValidationError struct {
	NodeID string
	Kind   Kind
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("email: %s node %s: %v", e.Kind, e.NodeID, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
