package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/demark/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCacheContract runs a suite of tests to verify that a Cache implementation
// adheres to the defined interface contract.
func RunCacheContract(t *testing.T, cache Cache) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Set and Get", func(t *testing.T) {
		err := cache.Set(ctx, key, "plain text")
		require.NoError(t, err, "Set should not return error")

		got, err := cache.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, "plain text", got)
	})

	t.Run("Get Missing", func(t *testing.T) {
		_, err := cache.Get(ctx, "missing-"+key)
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, key, "first"))
		require.NoError(t, cache.Set(ctx, key, "second"))

		got, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "second", got)
	})

	t.Run("Preserves Text", func(t *testing.T) {
		value := "café ✨\n\nline two\t"
		require.NoError(t, cache.Set(ctx, key+"-utf8", value))

		got, err := cache.Get(ctx, key+"-utf8")
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})

	t.Run("Empty Value Is A Hit", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, key+"-empty", ""))

		got, err := cache.Get(ctx, key+"-empty")
		require.NoError(t, err)
		assert.Equal(t, "", got)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, key, "gone soon"))

		err := cache.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = cache.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrCacheMiss, "Get after Delete should return ErrCacheMiss")

		assert.NoError(t, cache.Delete(ctx, key), "Deleting an absent key should succeed")
	})
}

// RunArchiveContract verifies that an Archive implementation round-trips
// transcripts and reports unknown IDs.
func RunArchiveContract(t *testing.T, archive Archive) {
	ctx := context.Background()
	id := "contract-" + time.Now().Format("20060102150405")

	transcript := &domain.Transcript{
		ID:        id,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		View: domain.View{
			Query:   "latest tech news",
			Status:  domain.StatusOK,
			Summary: "Reuters: Provides technology news.\n\nThe Verge: Covers hardware.",
			Chain:   "research",
			Tools:   []domain.ToolBadge{{Name: "search", Icon: domain.ToolIcon("search")}},
			Steps: []domain.StepView{
				{Number: 1, Tool: "search", Icon: domain.ToolIcon("search"), Text: "Found 9 sources"},
				{Number: 2, Tool: "reasoning", Icon: domain.ToolIcon("reasoning"), Text: "Ranked by recency"},
			},
		},
	}

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, archive.Save(ctx, transcript), "Save should not return error")

		loaded, err := archive.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, id, loaded.ID)
		assert.True(t, transcript.CreatedAt.Equal(loaded.CreatedAt))
		assert.Equal(t, transcript.View.Query, loaded.View.Query)
		assert.Equal(t, transcript.View.Status, loaded.View.Status)
		assert.Equal(t, transcript.View.Summary, loaded.View.Summary)
		assert.Equal(t, transcript.View.Chain, loaded.View.Chain)
		assert.Equal(t, transcript.View.Tools, loaded.View.Tools)
		assert.Equal(t, transcript.View.Steps, loaded.View.Steps)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := archive.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrTranscriptNotFound)
	})

	t.Run("List", func(t *testing.T) {
		second := *transcript
		second.ID = id + "-b"
		require.NoError(t, archive.Save(ctx, &second))

		ids, err := archive.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id)
		assert.Contains(t, ids, second.ID)
		assert.IsIncreasing(t, ids)
	})
}
