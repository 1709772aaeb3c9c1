package loam

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/aretw0/demark/pkg/domain"
	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"gopkg.in/yaml.v3"
)

// ErrInvalidID is returned for transcript IDs that are not safe file names.
var ErrInvalidID = errors.New("invalid transcript id")

var validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Archive adapts a Loam repository to the ports.Archive interface.
// Each transcript is one Markdown document: metadata in front matter,
// normalized summary in the body.
type Archive struct {
	repo  core.Repository
	typed *loam.TypedRepository[TranscriptMetadata]
}

// New creates an archive on top of an initialized Loam repository.
func New(repo core.Repository) *Archive {
	return &Archive{
		repo:  repo,
		typed: loam.NewTypedRepository[TranscriptMetadata](repo),
	}
}

// Open initializes a plain (unversioned) Loam repository in dir.
func Open(dir string) (*Archive, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath, loam.WithVersioning(false), loam.WithForceTemp(false))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(repo), nil
}

// Save writes the transcript as <id>.md.
func (a *Archive) Save(ctx context.Context, t *domain.Transcript) error {
	if !validID.MatchString(t.ID) {
		return fmt.Errorf("%w: %q", ErrInvalidID, t.ID)
	}

	front, err := yaml.Marshal(metadataFrom(t))
	if err != nil {
		return fmt.Errorf("failed to marshal front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(front)
	b.WriteString("---\n")
	b.WriteString(t.View.Summary)
	b.WriteString("\n")

	if err := a.repo.Save(ctx, core.Document{ID: t.ID + ".md", Content: b.String()}); err != nil {
		return fmt.Errorf("loam save failed for %s: %w", t.ID, err)
	}
	return nil
}

// Load reads a transcript back by ID.
func (a *Archive) Load(ctx context.Context, id string) (*domain.Transcript, error) {
	if !validID.MatchString(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	doc, err := a.typed.Get(ctx, id)
	if err != nil {
		// Loam has no typed not-found error; tell misses apart by listing.
		if ids, listErr := a.List(ctx); listErr == nil && !contains(ids, id) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTranscriptNotFound, id)
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	meta := doc.Data
	created, err := meta.createdAt()
	if err != nil {
		return nil, fmt.Errorf("transcript %s: %w", id, err)
	}

	return &domain.Transcript{
		ID:        id,
		CreatedAt: created,
		View: domain.View{
			Query:   meta.Query,
			Status:  meta.Status,
			Summary: strings.TrimSpace(doc.Content),
			Chain:   meta.Chain,
			Tools:   meta.Tools,
			Steps:   meta.Steps,
			Error:   meta.Error,
		},
	}, nil
}

// List returns the IDs of every archived transcript.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	docs, err := a.typed.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		// Use the ID from metadata if available, otherwise filename ID
		id := doc.Data.ID
		if id == "" {
			id = trimExtension(doc.ID)
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
