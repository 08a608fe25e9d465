package agent

import (
	"errors"
	"testing"
)

func TestStreamBufferAccumulates(t *testing.T) {
	var b StreamBuffer

	for _, delta := range []string{"<mjml>", "<mj-body>", "hello"} {
		if err := b.Append(delta); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if got := b.Text(); got != "<mjml><mj-body>hello" {
		t.Fatalf("Text = %q", got)
	}
	if _, done := b.Final(); done {
		t.Fatal("buffer reported final before Finalize")
	}
}

func TestStreamBufferFinalSupersedesDeltas(t *testing.T) {
	var b StreamBuffer

	b.Append("partial that will be disc")
	b.Finalize("complete document")

	if got := b.Text(); got != "complete document" {
		t.Fatalf("Text after Finalize = %q", got)
	}
	final, done := b.Final()
	if !done || final != "complete document" {
		t.Fatalf("Final = %q, %v", final, done)
	}
}

func TestStreamBufferRejectsDeltaAfterFinal(t *testing.T) {
	var b StreamBuffer

	b.Finalize("done")
	if err := b.Append("late"); !errors.Is(err, ErrStreamFinalized) {
		t.Fatalf("Append after Finalize = %v, want ErrStreamFinalized", err)
	}
	if got := b.Text(); got != "done" {
		t.Fatalf("late delta mutated final text: %q", got)
	}
}

func TestStreamBufferFirstFinalWins(t *testing.T) {
	var b StreamBuffer

	b.Finalize("first")
	b.Finalize("second")
	if got := b.Text(); got != "first" {
		t.Fatalf("Text = %q, want first Finalize to win", got)
	}
}
