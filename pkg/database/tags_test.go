package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/database"
)

func TestSanitizeTag(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Work", "work"},
		{"Hello World!", "helloworld"},
		{"to-do_list", "to-do_list"},
		{"ÄRGER", "ärger"},
		{"#$%", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, database.SanitizeTag(tt.in))
		})
	}
}

func TestTagsAdd(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)

	tag, err := db.Tags.Add(ctx, "Ideas")
	require.NoError(t, err)
	assert.Equal(t, "ideas", tag.Title)
	assert.Equal(t, core.MakeID("ideas"), tag.ID)
	assert.Empty(t, tag.NoteIDs)

	_, err = db.Tags.Add(ctx, "ideas")
	assert.ErrorIs(t, err, core.ErrDuplicateTag)

	_, err = db.Tags.Add(ctx, "!!!")
	assert.ErrorIs(t, err, core.ErrTagTitleRequired)

	_, err = db.Tags.Add(ctx, "ideas", "n1")
	require.NoError(t, err)
	tag, err = db.Tags.Add(ctx, "ideas", "n1", "n2")
	require.NoError(t, err)
	assert.Equal(t, []string{"n1", "n2"}, tag.NoteIDs)
}

func TestTagsRemove(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	a := addNote(t, db, "A", "<p>a</p>")
	b := addNote(t, db, "B", "<p>b</p>")
	for _, id := range []string{a, b} {
		require.NoError(t, db.Notes.Note(ctx, id).Tag(ctx, "project"))
	}
	tag, err := db.Tags.Tag(ctx, "project")
	require.NoError(t, err)
	require.NoError(t, db.Settings.Pin(ctx, core.Ref(core.KindTag, tag.ID)))

	require.NoError(t, db.Tags.Remove(ctx, "project"))

	_, err = db.Tags.Tag(ctx, "project")
	assert.ErrorIs(t, err, core.ErrTagNotFound)
	assert.False(t, db.Settings.IsPinned(ctx, tag.ID))
	for _, id := range []string{a, b} {
		assert.Empty(t, db.Notes.Note(ctx, id).Data().Tags)
	}

	assert.NoError(t, db.Tags.Remove(ctx, "unknown"))
}

func TestTagsUntag(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)

	assert.ErrorIs(t, db.Tags.Untag(ctx, "ghost", "n1"), core.ErrTagNotFound)

	_, err := db.Tags.Add(ctx, "pair", "n1", "n2")
	require.NoError(t, err)
	require.NoError(t, db.Tags.Untag(ctx, "pair", "n1"))
	tag, err := db.Tags.Tag(ctx, "pair")
	require.NoError(t, err)
	assert.Equal(t, []string{"n2"}, tag.NoteIDs)

	require.NoError(t, db.Tags.Untag(ctx, "pair", "n2"))
	_, err = db.Tags.Tag(ctx, "pair")
	assert.ErrorIs(t, err, core.ErrTagNotFound)
}

func TestTagsRename(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	tag, err := db.Tags.Add(ctx, "wrk", "n1")
	require.NoError(t, err)

	require.NoError(t, db.Tags.Rename(ctx, "wrk", "Work stuff"))

	assert.Equal(t, "Work stuff", db.Tags.Alias(ctx, tag.ID))
	renamed, err := db.Tags.Tag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "Work stuff", renamed.Alias)
	assert.Equal(t, "wrk", renamed.Title)
}

func TestColorsRemove(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	id := addNote(t, db, "A", "<p>a</p>")
	require.NoError(t, db.Notes.Note(ctx, id).Color(ctx, "red"))

	require.NoError(t, db.Colors.Remove(ctx, "red"))

	assert.Empty(t, db.Notes.Note(ctx, id).Data().Color)
	colors, err := db.Colors.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, colors)
}
