package agent

import (
	"errors"
	"sync"
)

// ToolRunStatus is the lifecycle phase of one tool invocation.
type ToolRunStatus string

const (
	StatusStarting  ToolRunStatus = "starting"
	StatusStreaming ToolRunStatus = "streaming"
	StatusDone      ToolRunStatus = "done"
	StatusError     ToolRunStatus = "error"
)

// ToolRunEvent reports progress of one tool invocation. Within an
// invocation events are emitted in order: starting, zero or more streaming
// deltas, then done or error. The run ID stays stable so listeners can
// demultiplex concurrent invocations.
type ToolRunEvent struct {
	RunID  string        `json:"id"`
	Tool   string        `json:"tool"`
	Status ToolRunStatus `json:"status"`
	Text   string        `json:"text,omitempty"`
	Final  string        `json:"final,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// EventListener receives tool-run events. Implementations must not block.
type EventListener func(ToolRunEvent)

// ErrStreamFinalized is returned when a delta arrives after the terminal
// value.
var ErrStreamFinalized = errors.New("agent: stream already finalized")

// StreamBuffer accumulates partial-text deltas and transitions to a
// terminal state whose payload is authoritative. The two states are
// explicit so consumers can never observe an inconsistent mid-transition
// value.
type StreamBuffer struct {
	mu        sync.Mutex
	buf       []byte
	final     string
	finalized bool
}

// Append adds a streaming delta. It fails once the buffer is finalized:
// partial events must always precede the terminal event.
func (b *StreamBuffer) Append(delta string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finalized {
		return ErrStreamFinalized
	}
	b.buf = append(b.buf, delta...)
	return nil
}

// Finalize records the terminal value, superseding the accumulated buffer.
// Finalizing twice keeps the first value.
func (b *StreamBuffer) Finalize(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finalized {
		return
	}
	b.final = text
	b.finalized = true
}

// Text returns the current view: the accumulated buffer while streaming,
// the terminal value afterwards.
func (b *StreamBuffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finalized {
		return b.final
	}
	return string(b.buf)
}

// Final returns the terminal value if the stream has completed.
func (b *StreamBuffer) Final() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.final, b.finalized
}
