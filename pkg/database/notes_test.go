package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/database"
)

func TestNotesAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("derives title and headline from content", func(t *testing.T) {
		db, _ := newTestDB(t)
		id, err := db.Notes.Add(ctx, database.NoteInput{Content: tiptap("<p>Hello world</p><p>More text</p>")})
		require.NoError(t, err)

		h := db.Notes.Note(ctx, id)
		require.NotNil(t, h)
		note := h.Data()
		assert.Equal(t, "Hello world", note.Title)
		assert.Equal(t, "Hello world More text", note.Headline)
		assert.Equal(t, core.KindNote, note.Type)

		body, err := h.Content(ctx)
		require.NoError(t, err)
		assert.Equal(t, "<p>Hello world</p><p>More text</p>", body.Data)
		assert.Equal(t, id, body.NoteID)
	})

	t.Run("explicit title wins and survives content edits", func(t *testing.T) {
		db, _ := newTestDB(t)
		id := addNote(t, db, "Plan", "<p>first</p>")

		_, err := db.Notes.Add(ctx, database.NoteInput{ID: id, Content: tiptap("<p>second</p>")})
		require.NoError(t, err)

		note := db.Notes.Note(ctx, id).Data()
		assert.Equal(t, "Plan", note.Title)
		assert.Equal(t, "second", note.Headline)
	})

	t.Run("new note without content is not stored", func(t *testing.T) {
		db, _ := newTestDB(t)
		id, err := db.Notes.Add(ctx, database.NoteInput{Title: ptr("Nothing")})
		require.NoError(t, err)
		assert.Empty(t, id)

		id, err = db.Notes.Add(ctx, database.NoteInput{Content: tiptap("")})
		require.NoError(t, err)
		assert.Empty(t, id)

		all, err := db.Notes.All(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("emptied note is removed", func(t *testing.T) {
		db, _ := newTestDB(t)
		id, err := db.Notes.Add(ctx, database.NoteInput{Content: tiptap("<p>draft</p>")})
		require.NoError(t, err)
		contentID := db.Notes.Note(ctx, id).Data().ContentID

		got, err := db.Notes.Add(ctx, database.NoteInput{ID: id, Content: tiptap("<p></p>")})
		require.NoError(t, err)
		assert.Empty(t, got)

		all, err := db.Notes.All(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
		assert.Nil(t, db.Notes.Note(ctx, id))
		_, err = db.Content.Get(ctx, contentID)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("locked note keeps empty content and has no headline", func(t *testing.T) {
		db, _ := newTestDB(t)
		id, err := db.Notes.Add(ctx, database.NoteInput{Locked: ptr(true), Content: tiptap("")})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		note := db.Notes.Note(ctx, id).Data()
		assert.True(t, note.Locked)
		assert.Empty(t, note.Headline)
		assert.Contains(t, note.Title, "Note ")
	})

	t.Run("rejects unknown content types", func(t *testing.T) {
		db, _ := newTestDB(t)
		_, err := db.Notes.Add(ctx, database.NoteInput{Content: &database.ContentData{Type: "markdown", Data: "# hi"}})
		assert.ErrorIs(t, err, core.ErrInvalidContentType)
	})

	t.Run("tags and color are registered", func(t *testing.T) {
		db, _ := newTestDB(t)
		id, err := db.Notes.Add(ctx, database.NoteInput{
			Title:   ptr("Tagged"),
			Content: tiptap("<p>x</p>"),
			Tags:    &[]string{"Work", "work", "Home!"},
			Color:   ptr("Red"),
		})
		require.NoError(t, err)

		note := db.Notes.Note(ctx, id).Data()
		assert.Equal(t, []string{"work", "home"}, note.Tags)
		assert.Equal(t, "red", note.Color)

		work, err := db.Tags.Tag(ctx, "work")
		require.NoError(t, err)
		assert.Equal(t, []string{id}, work.NoteIDs)
		red, err := db.Colors.Tag(ctx, "red")
		require.NoError(t, err)
		assert.Equal(t, core.KindColor, red.Type)
	})

	t.Run("metadata update resyncs tags", func(t *testing.T) {
		db, _ := newTestDB(t)
		id, err := db.Notes.Add(ctx, database.NoteInput{Title: ptr("T"), Content: tiptap("<p>x</p>"), Tags: &[]string{"a"}})
		require.NoError(t, err)

		_, err = db.Notes.Add(ctx, database.NoteInput{ID: id, Tags: &[]string{"b"}})
		require.NoError(t, err)

		_, err = db.Tags.Tag(ctx, "a")
		assert.ErrorIs(t, err, core.ErrTagNotFound)
		b, err := db.Tags.Tag(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, []string{id}, b.NoteIDs)
	})

	t.Run("records a history session", func(t *testing.T) {
		db, _ := newTestDB(t)
		id, err := db.Notes.Add(ctx, database.NoteInput{Title: ptr("T"), Content: tiptap("<p>x</p>"), SessionID: 42})
		require.NoError(t, err)

		sessions, err := db.History.Get(ctx, id)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, id+"_42", sessions[0].ID)
	})
}

func TestNotesMerge(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)

	remote := core.Note{
		Base:  core.Base{ID: "remote1", Type: core.KindNote, DateCreated: 1, Remote: true},
		Title: "From sync",
		Tags:  []string{"synced"},
		Color: "blue",
	}
	require.NoError(t, db.Notes.Merge(ctx, remote))

	tag, err := db.Tags.Tag(ctx, "synced")
	require.NoError(t, err)
	assert.Equal(t, []string{"remote1"}, tag.NoteIDs)

	remote.Color = "green"
	require.NoError(t, db.Notes.Merge(ctx, remote))
	_, err = db.Colors.Tag(ctx, "blue")
	assert.ErrorIs(t, err, core.ErrTagNotFound)
	_, err = db.Colors.Tag(ctx, "green")
	assert.NoError(t, err)

	require.NoError(t, db.Notes.Merge(ctx, core.Note{Base: core.Base{ID: "remote1", Deleted: true}}))
	assert.Nil(t, db.Notes.Note(ctx, "remote1"))
}

func TestNotesFilters(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)

	a := addNote(t, db, "A", "<p>a</p>")
	b := addNote(t, db, "B", "<p>b</p>")

	require.NoError(t, db.Notes.Note(ctx, a).Pin(ctx))
	require.NoError(t, db.Notes.Note(ctx, b).Favorite(ctx))

	all, err := db.Notes.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b, all[0].ID, "newest first")

	pinned, err := db.Notes.Pinned(ctx)
	require.NoError(t, err)
	require.Len(t, pinned, 1)
	assert.Equal(t, a, pinned[0].ID)

	favs, err := db.Notes.Favorites(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, b, favs[0].ID)
}

func TestNoteHandle(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	id := addNote(t, db, "Original", "<p>body</p>")
	h := db.Notes.Note(ctx, id)
	require.NotNil(t, h)

	t.Run("tagging twice keeps one membership", func(t *testing.T) {
		require.NoError(t, h.Tag(ctx, "Work"))
		require.NoError(t, h.Tag(ctx, "work"))

		tag, err := db.Tags.Tag(ctx, "work")
		require.NoError(t, err)
		assert.Equal(t, []string{id}, tag.NoteIDs)
		assert.Equal(t, []string{"work"}, h.Data().Tags)
	})

	t.Run("color replaces previous color", func(t *testing.T) {
		require.NoError(t, h.Color(ctx, "red"))
		require.NoError(t, h.Color(ctx, "blue"))

		assert.Equal(t, "blue", h.Data().Color)
		_, err := db.Colors.Tag(ctx, "red")
		assert.ErrorIs(t, err, core.ErrTagNotFound)

		colored, err := db.Notes.Colored(ctx, "blue")
		require.NoError(t, err)
		assert.Len(t, colored, 1)

		require.NoError(t, h.Uncolor(ctx))
		colors, err := db.Colors.All(ctx)
		require.NoError(t, err)
		assert.Empty(t, colors)
	})

	t.Run("duplicate copies content and tags", func(t *testing.T) {
		dup, err := h.Duplicate(ctx)
		require.NoError(t, err)

		clone := db.Notes.Note(ctx, dup)
		require.NotNil(t, clone)
		assert.Equal(t, "Original (Copy)", clone.Data().Title)
		assert.Equal(t, []string{"work"}, clone.Data().Tags)

		tag, err := db.Tags.Tag(ctx, "work")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{id, dup}, tag.NoteIDs)
	})

	t.Run("toggles", func(t *testing.T) {
		require.NoError(t, h.Readonly(ctx))
		require.NoError(t, h.LocalOnly(ctx))
		assert.True(t, h.Data().Readonly)
		assert.True(t, h.Data().LocalOnly)
		require.NoError(t, h.Readonly(ctx))
		assert.False(t, h.Data().Readonly)
	})
}

func TestNotesMove(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	nb := addNotebook(t, db, "Work")
	id := addNote(t, db, "Task", "<p>do it</p>")

	err := db.Notes.Move(ctx, database.MoveTarget{NotebookID: nb}, id)
	assert.ErrorIs(t, err, core.ErrInvalidTarget)

	err = db.Notes.Move(ctx, database.MoveTarget{NotebookID: nb, Topic: "Nope"}, id)
	assert.ErrorIs(t, err, core.ErrTopicNotFound)

	err = db.Notes.Move(ctx, database.MoveTarget{NotebookID: "missing", Topic: "General"}, id)
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, db.Notes.Move(ctx, database.MoveTarget{NotebookID: nb, Topic: "General"}, id))

	topic := db.Notebooks.Notebook(ctx, nb).Topics().Topic(ctx, "General")
	require.NotNil(t, topic)
	assert.True(t, topic.Has(id))
	assert.Equal(t, []core.NotebookRef{{ID: nb, Topics: []string{topic.ID()}}}, db.Notes.Note(ctx, id).Data().Notebooks)
	assert.Equal(t, 1, db.Notebooks.Notebook(ctx, nb).Data().TotalNotes)

	notes := topic.Notes(ctx)
	require.Len(t, notes, 1)
	assert.Equal(t, id, notes[0].ID)
}

func TestNotesRemove(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	nb := addNotebook(t, db, "Work")
	id, err := db.Notes.Add(ctx, database.NoteInput{Title: ptr("Gone"), Content: tiptap("<p>x</p>"), Tags: &[]string{"tmp"}, SessionID: 1})
	require.NoError(t, err)
	require.NoError(t, db.Notes.Move(ctx, database.MoveTarget{NotebookID: nb, Topic: "General"}, id))
	contentID := db.Notes.Note(ctx, id).Data().ContentID

	require.NoError(t, db.Notes.Remove(ctx, id))

	assert.False(t, db.Notes.Exists(ctx, id))
	assert.False(t, db.Trash.Exists(ctx, id))
	_, err = db.Content.Get(ctx, contentID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	sessions, err := db.History.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, sessions)
	_, err = db.Tags.Tag(ctx, "tmp")
	assert.ErrorIs(t, err, core.ErrTagNotFound)
	assert.False(t, db.Notebooks.Notebook(ctx, nb).Topics().Topic(ctx, "General").Has(id))
}
