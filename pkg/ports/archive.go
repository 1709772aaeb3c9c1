package ports

import (
	"context"

	"github.com/aretw0/demark/pkg/domain"
)

// Archive persists transcripts of answered queries.
type Archive interface {
	// Save writes the transcript, replacing one with the same ID.
	Save(ctx context.Context, t *domain.Transcript) error
	// Load returns the transcript or domain.ErrTranscriptNotFound.
	Load(ctx context.Context, id string) (*domain.Transcript, error)
	// List returns the IDs of every archived transcript in ascending order.
	List(ctx context.Context) ([]string, error)
}
