// Package coretest holds the conformance suite every core.Repository adapter runs.
package coretest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

// RepositorySuite exercises the core.Repository contract against a fresh store from newRepo.
func RepositorySuite(t *testing.T, newRepo func(t *testing.T) core.Repository) {
	t.Helper()
	ctx := context.Background()

	t.Run("Save and Get", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Initialize(ctx, "notes"))

		doc := core.Document{ID: "n1", Metadata: core.Metadata{
			"id":    "n1",
			"title": "Hello",
			"tags":  []any{"a", "b"},
			"nested": map[string]any{
				"count": 3,
			},
		}}
		require.NoError(t, repo.Save(ctx, "notes", doc))

		got, err := repo.Get(ctx, "notes", "n1")
		require.NoError(t, err)
		assert.Equal(t, "n1", got.ID)
		assert.Equal(t, "Hello", got.Metadata["title"])
		assert.Len(t, got.Metadata["tags"], 2)
		nested, ok := got.Metadata["nested"].(map[string]any)
		require.True(t, ok, "nested maps decode as map[string]any")
		assert.EqualValues(t, 3, nested["count"])
	})

	t.Run("Get missing", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Initialize(ctx, "notes"))
		_, err := repo.Get(ctx, "notes", "nope")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Initialize(ctx, "notes"))
		require.NoError(t, repo.Save(ctx, "notes", core.Document{ID: "n1", Metadata: core.Metadata{"id": "n1", "v": 1}}))
		require.NoError(t, repo.Save(ctx, "notes", core.Document{ID: "n1", Metadata: core.Metadata{"id": "n1", "v": 2}}))

		got, err := repo.Get(ctx, "notes", "n1")
		require.NoError(t, err)
		assert.EqualValues(t, 2, got.Metadata["v"])

		ids, err := repo.Indices(ctx, "notes")
		require.NoError(t, err)
		assert.Equal(t, []string{"n1"}, ids)
	})

	t.Run("Collections are isolated", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Initialize(ctx, "notes"))
		require.NoError(t, repo.Initialize(ctx, "tags"))
		require.NoError(t, repo.Save(ctx, "notes", core.Document{ID: "x", Metadata: core.Metadata{"id": "x"}}))

		ok, err := repo.Exists(ctx, "tags", "x")
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = repo.Exists(ctx, "notes", "x")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Indices are sorted", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Initialize(ctx, "notes"))
		for _, id := range []string{"c", "a", "b"} {
			require.NoError(t, repo.Save(ctx, "notes", core.Document{ID: id, Metadata: core.Metadata{"id": id}}))
		}
		ids, err := repo.Indices(ctx, "notes")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, ids)
	})

	t.Run("ReadMulti skips unknown ids", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Initialize(ctx, "notes"))
		require.NoError(t, repo.Save(ctx, "notes", core.Document{ID: "a", Metadata: core.Metadata{"id": "a"}}))
		require.NoError(t, repo.Save(ctx, "notes", core.Document{ID: "b", Metadata: core.Metadata{"id": "b"}}))

		docs, err := repo.ReadMulti(ctx, "notes", []string{"b", "zzz", "a"})
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "b", docs[0].ID)
		assert.Equal(t, "a", docs[1].ID)
	})

	t.Run("Delete and Clear", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Initialize(ctx, "notes"))
		for _, id := range []string{"a", "b", "c"} {
			require.NoError(t, repo.Save(ctx, "notes", core.Document{ID: id, Metadata: core.Metadata{"id": id}}))
		}
		require.NoError(t, repo.Delete(ctx, "notes", "a"))
		require.NoError(t, repo.Delete(ctx, "notes", "missing"))

		ids, err := repo.Indices(ctx, "notes")
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c"}, ids)

		require.NoError(t, repo.Clear(ctx, "notes"))
		ids, err = repo.Indices(ctx, "notes")
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("Initialize is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Initialize(ctx, "notes"))
		require.NoError(t, repo.Save(ctx, "notes", core.Document{ID: "a", Metadata: core.Metadata{"id": "a"}}))
		require.NoError(t, repo.Initialize(ctx, "notes"))

		ok, err := repo.Exists(ctx, "notes", "a")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
