package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetwriters/notesnook-sub014/pkg/adapters/sqlite"
	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/core/coretest"
)

func TestRepository(t *testing.T) {
	coretest.RepositorySuite(t, func(t *testing.T) core.Repository {
		repo, err := sqlite.NewRepository()
		require.NoError(t, err)
		t.Cleanup(func() { repo.Close() })
		return repo
	})
}

func TestRepositoryPersists(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "notesnook.db")

	repo, err := sqlite.NewRepositoryWithDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, repo.Initialize(ctx, "notes"))
	require.NoError(t, repo.Save(ctx, "notes", core.Document{ID: "a", Metadata: core.Metadata{"id": "a", "title": "kept"}}))
	require.NoError(t, repo.Close())

	reopened, err := sqlite.NewRepositoryWithDSN(dsn)
	require.NoError(t, err)
	defer reopened.Close()

	doc, err := reopened.Get(ctx, "notes", "a")
	require.NoError(t, err)
	assert.Equal(t, "kept", doc.Metadata["title"])

	state := reopened.State().(sqlite.RepositoryState)
	assert.Equal(t, 1, state.Collections["notes"])
}
