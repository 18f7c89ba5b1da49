package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetwriters/notesnook-sub014/pkg/adapters/fs"
	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/core/coretest"
)

func newRepo(t *testing.T, format string) *fs.Repository {
	t.Helper()
	repo, err := fs.NewRepository(fs.Config{Path: t.TempDir(), Format: format})
	require.NoError(t, err)
	return repo
}

func TestRepositoryFormats(t *testing.T) {
	for _, format := range []string{"json", "yaml", "cbor"} {
		t.Run(format, func(t *testing.T) {
			coretest.RepositorySuite(t, func(t *testing.T) core.Repository {
				return newRepo(t, format)
			})
		})
	}
}

func TestRepositoryLayout(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, "json")
	require.NoError(t, repo.Initialize(ctx, "notehistory"))

	id := "n1_1700000000000"
	require.NoError(t, repo.Save(ctx, "notehistory", core.Document{ID: id, Metadata: core.Metadata{"id": id}}))

	_, err := os.Stat(filepath.Join(repo.Path, "notehistory", id+".json"))
	require.NoError(t, err, "one file per item")

	t.Run("ids with separators are escaped", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, "notehistory", core.Document{ID: "a/b", Metadata: core.Metadata{"id": "a/b"}}))
		ids, err := repo.Indices(ctx, "notehistory")
		require.NoError(t, err)
		assert.Contains(t, ids, "a/b")
	})

	t.Run("temp files are not items", func(t *testing.T) {
		tmp := filepath.Join(repo.Path, "notehistory", fs.TempFilePrefix+"123.json")
		require.NoError(t, os.WriteFile(tmp, []byte("{}"), 0o644))
		ids, err := repo.Indices(ctx, "notehistory")
		require.NoError(t, err)
		assert.NotContains(t, ids, fs.TempFilePrefix+"123")
	})
}

func TestRepositoryReadOnly(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := fs.NewRepository(fs.Config{Path: dir, ReadOnly: true})
	require.NoError(t, err)
	require.NoError(t, repo.Initialize(ctx, "notes"))

	err = repo.Save(ctx, "notes", core.Document{ID: "a", Metadata: core.Metadata{"id": "a"}})
	assert.ErrorIs(t, err, core.ErrReadOnly)
	assert.ErrorIs(t, repo.Delete(ctx, "notes", "a"), core.ErrReadOnly)
}

func TestRepositoryPicksUpExternalEdits(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, "json")
	require.NoError(t, repo.Initialize(ctx, "notes"))
	require.NoError(t, repo.Save(ctx, "notes", core.Document{ID: "a", Metadata: core.Metadata{"id": "a", "title": "old"}}))

	path := filepath.Join(repo.Path, "notes", "a.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":"a","title":"new"}`), 0o644))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	doc, err := repo.Get(ctx, "notes", "a")
	require.NoError(t, err)
	assert.Equal(t, "new", doc.Metadata["title"])
}

func TestWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := newRepo(t, "json")
	require.NoError(t, repo.Initialize(ctx, "notes"))

	events, err := repo.Watch(ctx)
	require.NoError(t, err)

	path := filepath.Join(repo.Path, "notes", "ext.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":"ext"}`), 0o644))

	select {
	case e := <-events:
		assert.Equal(t, "notes", e.Collection)
		assert.Equal(t, "ext", e.ID)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}

	state := repo.State().(fs.RepositoryState)
	assert.True(t, state.WatcherActive)
	assert.Equal(t, []string{"notes"}, state.Collections)

	cancel()
	require.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-events:
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, 3*time.Second, 20*time.Millisecond)
}
