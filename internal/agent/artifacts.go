package agent

import (
	"fmt"
	"sync"
)

// NotFoundError reports an artifact id with no matching draft or edit
// output. It is surfaced to the end user as a conversational error, never a
// silent no-op.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no draft or edit output found for email id %q", e.ID)
}

// ArtifactRegistry maps artifact ids to their markup, populated at creation
// time. The conversation transcript remains the audit trail, but lookup is
// O(1) here instead of a transcript scan. On duplicate ids the most recent
// write wins.
type ArtifactRegistry struct {
	mu    sync.RWMutex
	byID  map[string]string
	order []string
}

// NewArtifactRegistry creates an empty registry.
func NewArtifactRegistry() *ArtifactRegistry {
	return &ArtifactRegistry{byID: make(map[string]string)}
}

// Put records an artifact under its id.
func (r *ArtifactRegistry) Put(id, markup string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[id]; exists {
		// Re-registering moves the id to the back so Latest reflects
		// recency, not first registration.
		for i, existing := range r.order {
			if existing == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.byID[id] = markup
	r.order = append(r.order, id)
}

// Get returns the markup for an id.
func (r *ArtifactRegistry) Get(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	markup, ok := r.byID[id]
	return markup, ok
}

// Latest returns the most recently registered artifact.
func (r *ArtifactRegistry) Latest() (id, markup string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.order) == 0 {
		return "", "", false
	}
	id = r.order[len(r.order)-1]
	return id, r.byID[id], true
}

// Len returns the number of distinct artifacts.
func (r *ArtifactRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
