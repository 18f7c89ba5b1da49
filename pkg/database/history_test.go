package database_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetwriters/notesnook-sub014/pkg/database"
)

func TestHistoryRetention(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	id := addNote(t, db, "Versions", "<p>v0</p>")

	for i := 1; i <= 105; i++ {
		_, err := db.History.Add(ctx, id, int64(i), database.ContentData{Type: "tiptap", Data: fmt.Sprintf("<p>v%d</p>", i)})
		require.NoError(t, err)
	}

	sessions, err := db.History.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, sessions, 100)
	assert.Equal(t, int64(105), sessions[0].DateEdited)
	assert.Equal(t, int64(6), sessions[99].DateEdited)

	_, err = db.History.Content(ctx, id+"_5")
	assert.Error(t, err)
}

func TestHistoryVersionsLimitOption(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t, database.WithVersionsLimit(2))
	id := addNote(t, db, "Versions", "<p>v0</p>")
	for i := 1; i <= 4; i++ {
		_, err := db.History.Add(ctx, id, int64(i), database.ContentData{Type: "tiptap", Data: "<p>v</p>"})
		require.NoError(t, err)
	}
	sessions, err := db.History.Get(ctx, id)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestHistorySameTimestampOverwrites(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	id := addNote(t, db, "Note", "<p>x</p>")

	first, err := db.History.Add(ctx, id, 7, database.ContentData{Type: "tiptap", Data: "<p>a</p>"})
	require.NoError(t, err)
	second, err := db.History.Add(ctx, id, 7, database.ContentData{Type: "tiptap", Data: "<p>b</p>"})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	sessions, err := db.History.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	got, err := db.History.Content(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, database.ContentData{Type: "tiptap", Data: "<p>b</p>"}, got)
}

func TestHistoryRestore(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	id := addNote(t, db, "Note", "<p>old</p>")
	session, err := db.History.Add(ctx, id, 1, database.ContentData{Type: "tiptap", Data: "<p>old</p>"})
	require.NoError(t, err)
	_, err = db.Notes.Add(ctx, database.NoteInput{ID: id, Content: tiptap("<p>new</p>")})
	require.NoError(t, err)

	require.NoError(t, db.History.Restore(ctx, session))

	body, err := db.Notes.Note(ctx, id).Content(ctx)
	require.NoError(t, err)
	assert.Equal(t, "<p>old</p>", body.Data)
}

func TestHistoryLockedSessions(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	id, err := db.Notes.Add(ctx, database.NoteInput{Title: ptr("Secret"), Locked: ptr(true), Content: tiptap("ciphertext-1")})
	require.NoError(t, err)

	session, err := db.History.Add(ctx, id, 1, database.ContentData{Type: "tiptap", Data: "ciphertext-1"})
	require.NoError(t, err)
	_, err = db.Notes.Add(ctx, database.NoteInput{ID: id, Content: tiptap("ciphertext-2")})
	require.NoError(t, err)

	sessions, err := db.History.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].Locked)

	require.NoError(t, db.History.Restore(ctx, session))
	body, err := db.Notes.Note(ctx, id).Content(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ciphertext-1", body.Data)
	assert.True(t, body.Locked)
}

func TestHistorySerialize(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestDB(t)
	id := addNote(t, src, "Note", "<p>x</p>")
	for i := 1; i <= 3; i++ {
		_, err := src.History.Add(ctx, id, int64(i), database.ContentData{Type: "tiptap", Data: fmt.Sprintf("<p>%d</p>", i)})
		require.NoError(t, err)
	}

	data, err := src.History.Serialize(ctx)
	require.NoError(t, err)

	dst, _ := newTestDB(t)
	require.NoError(t, dst.History.Deserialize(ctx, data))

	sessions, err := dst.History.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	got, err := dst.History.Content(ctx, sessions[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "<p>3</p>", got.Data)
}

func TestHistorySerializeOverlappingSessionIDs(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestDB(t)
	id := addNote(t, src, "Note", "<p>x</p>")
	for _, edited := range []int64{1, 10} {
		_, err := src.History.Add(ctx, id, edited, database.ContentData{Type: "tiptap", Data: fmt.Sprintf("<p>%d</p>", edited)})
		require.NoError(t, err)
	}

	data, err := src.History.Serialize(ctx)
	require.NoError(t, err)

	dst, _ := newTestDB(t)
	require.NoError(t, dst.History.Deserialize(ctx, data))

	for _, edited := range []int64{1, 10} {
		got, err := dst.History.Content(ctx, fmt.Sprintf("%s_%d", id, edited))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("<p>%d</p>", edited), got.Data)
	}
}

func TestHistoryDeserializeSkipsOrphans(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	data := []byte(`{"sessions":[{"id":"n1_1","type":"session","noteId":"n1","dateEdited":1,"sessionContentId":"n1_1_content"}],"contents":[]}`)

	require.NoError(t, db.History.Deserialize(ctx, data))
	sessions, err := db.History.Get(ctx, "n1")
	require.NoError(t, err)
	assert.Empty(t, sessions)

	assert.Error(t, db.History.Deserialize(ctx, []byte("not json")))
}

func TestHistoryClearSessions(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	a := addNote(t, db, "A", "<p>a</p>")
	b := addNote(t, db, "B", "<p>b</p>")
	for _, id := range []string{a, b} {
		_, err := db.History.Add(ctx, id, 1, database.ContentData{Type: "tiptap", Data: "<p>x</p>"})
		require.NoError(t, err)
	}

	require.NoError(t, db.History.ClearSessions(ctx, a, b))
	for _, id := range []string{a, b} {
		sessions, err := db.History.Get(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, sessions)
	}
}
