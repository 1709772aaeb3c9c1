package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/demark/pkg/domain"
)

// Archive implements ports.Archive using an in-memory map of JSON documents.
// Transcripts are serialized on Save so callers never share memory with the archive.
type Archive struct {
	docs map[string][]byte
	mu   sync.RWMutex
}

// NewArchive creates an empty in-memory archive.
func NewArchive() *Archive {
	return &Archive{docs: make(map[string][]byte)}
}

// Save stores the transcript under its ID.
func (a *Archive) Save(ctx context.Context, t *domain.Transcript) error {
	if t.ID == "" {
		return fmt.Errorf("transcript missing ID")
	}
	bytes, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript %s: %w", t.ID, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.docs[t.ID] = bytes
	return nil
}

// Load retrieves a transcript by ID.
func (a *Archive) Load(ctx context.Context, id string) (*domain.Transcript, error) {
	a.mu.RLock()
	bytes, ok := a.docs[id]
	a.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTranscriptNotFound, id)
	}

	var t domain.Transcript
	if err := json.Unmarshal(bytes, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript %s: %w", id, err)
	}
	return &t, nil
}

// List returns all transcript IDs.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	keys := make([]string, 0, len(a.docs))
	for k := range a.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
