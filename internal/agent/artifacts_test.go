package agent

import (
	"errors"
	"testing"
)

func TestArtifactRegistryPutGet(t *testing.T) {
	r := NewArtifactRegistry()

	if _, ok := r.Get("missing"); ok {
		t.Fatal("expected miss on empty registry")
	}

	r.Put("a", "<mjml>one</mjml>")
	r.Put("b", "<mjml>two</mjml>")

	got, ok := r.Get("a")
	if !ok || got != "<mjml>one</mjml>" {
		t.Fatalf("Get(a) = %q, %v", got, ok)
	}
	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}
}

func TestArtifactRegistryLatest(t *testing.T) {
	r := NewArtifactRegistry()

	if _, _, ok := r.Latest(); ok {
		t.Fatal("expected no latest on empty registry")
	}

	r.Put("a", "one")
	r.Put("b", "two")

	id, markup, ok := r.Latest()
	if !ok || id != "b" || markup != "two" {
		t.Fatalf("Latest = %q, %q, %v", id, markup, ok)
	}
}

func TestArtifactRegistryDuplicateIDMostRecentWins(t *testing.T) {
	r := NewArtifactRegistry()

	r.Put("a", "one")
	r.Put("b", "two")
	r.Put("a", "three")

	got, _ := r.Get("a")
	if got != "three" {
		t.Fatalf("Get(a) = %q, want latest content", got)
	}
	// Re-putting an id also makes it the most recent artifact.
	id, markup, _ := r.Latest()
	if id != "a" || markup != "three" {
		t.Fatalf("Latest = %q, %q, want a/three", id, markup)
	}
	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}
}

func TestNotFoundErrorMessage(t *testing.T) {
	err := &NotFoundError{ID: "zzz"}
	want := `no draft or edit output found for email id "zzz"`
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}

	var nf *NotFoundError
	if !errors.As(error(err), &nf) {
		t.Fatal("errors.As failed for *NotFoundError")
	}
}
