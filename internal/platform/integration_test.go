package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streetwriters/notesnook-sub014/internal/platform"
	"github.com/streetwriters/notesnook-sub014/pkg/adapters/memory"
	"github.com/streetwriters/notesnook-sub014/pkg/database"
)

func ptr[T any](v T) *T { return &v }

func writeAndReopen(t *testing.T, dir string, opts ...platform.Option) {
	t.Helper()
	ctx := context.Background()

	db, err := platform.Open(ctx, dir, opts...)
	require.NoError(t, err)
	id, err := db.Notes.Add(ctx, database.NoteInput{
		Title:   ptr("Groceries"),
		Content: &database.ContentData{Type: "tiptap", Data: "<p>milk and eggs</p>"},
	})
	require.NoError(t, err)
	require.NoError(t, platform.Close(db))

	db, err = platform.Open(ctx, dir, opts...)
	require.NoError(t, err)
	defer platform.Close(db)

	note := db.Notes.Note(ctx, id)
	require.NotNil(t, note)
	require.Equal(t, "Groceries", note.Data().Title)

	found, err := db.Lookup.Notes(ctx, "eggs")
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestOpenFilesystem(t *testing.T) {
	dir := t.TempDir()
	writeAndReopen(t, dir)

	_, err := os.Stat(filepath.Join(dir, database.CollectionNotes))
	require.NoError(t, err)
}

func TestOpenSQLite(t *testing.T) {
	dir := t.TempDir()
	writeAndReopen(t, dir, platform.WithAdapter(platform.AdapterSQLite))

	_, err := os.Stat(filepath.Join(dir, ".notesnook", platform.SQLiteFile))
	require.NoError(t, err)
}

func TestOpenReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, platform.WriteConfig(dir, platform.Config{Adapter: platform.AdapterSQLite, VersionsLimit: 5}))

	db, err := platform.Open(context.Background(), dir)
	require.NoError(t, err)
	defer platform.Close(db)

	state := db.State().(database.DatabaseState)
	require.Equal(t, 5, state.VersionsLimit)
	_, err = os.Stat(filepath.Join(dir, ".notesnook", platform.SQLiteFile))
	require.NoError(t, err)
}

func TestExplicitOptionsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, platform.WriteConfig(dir, platform.Config{VersionsLimit: 5}))

	db, err := platform.Open(context.Background(), dir,
		platform.WithDatabaseOptions(database.WithVersionsLimit(9)))
	require.NoError(t, err)
	defer platform.Close(db)

	require.Equal(t, 9, db.State().(database.DatabaseState).VersionsLimit)
}

func TestOpenMemory(t *testing.T) {
	for _, opt := range []platform.Option{
		platform.WithAdapter(platform.AdapterMemory),
		platform.WithRepository(memory.NewRepository()),
	} {
		db, err := platform.Open(context.Background(), "", opt)
		require.NoError(t, err)
		require.NoError(t, platform.Close(db))
	}
}

func TestOpenSQLiteInMemory(t *testing.T) {
	db, err := platform.Open(context.Background(), ":memory:", platform.WithAdapter(platform.AdapterSQLite))
	require.NoError(t, err)
	require.NoError(t, platform.Close(db))
}

func TestOpenMustExist(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	_, err := platform.Open(context.Background(), missing, platform.WithMustExist(true))
	require.Error(t, err)
}

func TestOpenUnknownAdapter(t *testing.T) {
	_, err := platform.OpenRepository(t.TempDir(), platform.WithAdapter("postgres"))
	require.ErrorContains(t, err, "unknown adapter")
}
