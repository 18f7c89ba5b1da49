package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/database"
)

func topicTitles(topics []core.Topic) []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = t.Title
	}
	return out
}

func TestNotebooksAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("title is required", func(t *testing.T) {
		db, _ := newTestDB(t)
		_, err := db.Notebooks.Add(ctx, database.NotebookInput{Title: ptr("  ")})
		assert.ErrorIs(t, err, core.ErrNotebookTitleRequired)
	})

	t.Run("topics are deduplicated by title", func(t *testing.T) {
		db, _ := newTestDB(t)
		id := addNotebook(t, db, "Work")
		topics := db.Notebooks.Notebook(ctx, id).Topics()
		assert.Equal(t, []string{database.DefaultTopic}, topicTitles(topics.All(ctx)))

		require.NoError(t, topics.AddTitles(ctx, "Sprint1"))
		require.NoError(t, topics.AddTitles(ctx, "Sprint1"))

		assert.Equal(t, []string{"General", "Sprint1"}, topicTitles(topics.All(ctx)))
		assert.True(t, topics.Has(ctx, "Sprint1"))
		sprint := topics.Topic(ctx, "Sprint1")
		require.NotNil(t, sprint)
		assert.Equal(t, "Sprint1", sprint.ID())
	})

	t.Run("explicit topics replace the default", func(t *testing.T) {
		db, _ := newTestDB(t)
		id, err := db.Notebooks.Add(ctx, database.NotebookInput{Title: ptr("Home"), Topics: []string{"Chores", "", "Chores"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"Chores"}, topicTitles(db.Notebooks.Notebook(ctx, id).Topics().All(ctx)))
	})

	t.Run("later topic values overlay earlier ones", func(t *testing.T) {
		db, _ := newTestDB(t)
		id := addNotebook(t, db, "Work")
		topics := db.Notebooks.Notebook(ctx, id).Topics()
		general := topics.Topic(ctx, "General")
		require.NotNil(t, general)

		require.NoError(t, topics.Add(ctx, core.Topic{ID: general.ID(), Title: "Inbox"}))
		renamed := topics.Topic(ctx, general.ID())
		require.NotNil(t, renamed)
		assert.Equal(t, "Inbox", renamed.Data().Title)
		assert.Len(t, topics.All(ctx), 1)

		require.NoError(t, topics.AddTitles(ctx, "General"))
		all := topics.All(ctx)
		require.Len(t, all, 2)
		assert.Equal(t, "General", all[0].ID)
		assert.Equal(t, "Inbox", all[0].Title)
		assert.Equal(t, "General", all[1].Title)
		assert.NotEqual(t, "General", all[1].ID)
	})

	t.Run("updating keeps topics", func(t *testing.T) {
		db, _ := newTestDB(t)
		id := addNotebook(t, db, "Work")
		_, err := db.Notebooks.Add(ctx, database.NotebookInput{ID: id, Description: ptr("job stuff")})
		require.NoError(t, err)

		nb := db.Notebooks.Notebook(ctx, id).Data()
		assert.Equal(t, "Work", nb.Title)
		assert.Equal(t, "job stuff", nb.Description)
		assert.Len(t, nb.Topics, 1)
	})
}

func TestNotebooksPinLimit(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)

	for _, title := range []string{"A", "B", "C"} {
		_, err := db.Notebooks.Add(ctx, database.NotebookInput{Title: ptr(title), Pinned: ptr(true)})
		require.NoError(t, err)
	}
	_, err := db.Notebooks.Add(ctx, database.NotebookInput{Title: ptr("D"), Pinned: ptr(true)})
	assert.ErrorIs(t, err, core.ErrPinLimit)

	id := addNotebook(t, db, "E")
	assert.ErrorIs(t, db.Notebooks.Notebook(ctx, id).Pin(ctx), core.ErrPinLimit)

	all, err := db.Notebooks.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.True(t, all[0].Pinned)
	assert.True(t, all[2].Pinned)
	assert.Equal(t, "E", all[3].Title)
}

func TestTopicsDelete(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	nb := addNotebook(t, db, "Work")
	topics := db.Notebooks.Notebook(ctx, nb).Topics()
	require.NoError(t, topics.AddTitles(ctx, "Sprint1"))
	sprint := topics.Topic(ctx, "Sprint1")
	require.NotNil(t, sprint)

	id := addNote(t, db, "Task", "<p>x</p>")
	require.NoError(t, sprint.Add(ctx, id))
	require.NoError(t, db.Settings.Pin(ctx, core.Ref(core.KindTopic, sprint.ID())))

	require.NoError(t, topics.Delete(ctx, sprint.ID()))

	assert.Equal(t, []string{"General"}, topicTitles(topics.All(ctx)))
	assert.Empty(t, db.Notes.Note(ctx, id).Data().Notebooks)
	assert.False(t, db.Settings.IsPinned(ctx, sprint.ID()))
	assert.Equal(t, 0, db.Notebooks.Notebook(ctx, nb).Data().TotalNotes)
}

func TestTopicHandle(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	nb := addNotebook(t, db, "Work")
	a := addNote(t, db, "A", "<p>a</p>")
	b := addNote(t, db, "B", "<p>b</p>")

	topic := db.Notebooks.Notebook(ctx, nb).Topics().Topic(ctx, "General")
	require.NotNil(t, topic)
	require.NoError(t, topic.Add(ctx, a, b, "missing"))
	assert.Equal(t, []string{a, b}, topic.Data().Notes)
	assert.Equal(t, 2, topic.Data().TotalNotes)

	require.NoError(t, topic.Delete(ctx, a))
	assert.False(t, topic.Has(a))
	assert.Empty(t, db.Notes.Note(ctx, a).Data().Notebooks)

	require.NoError(t, topic.Clear(ctx))
	assert.Empty(t, topic.Data().Notes)
	assert.Empty(t, db.Notes.Note(ctx, b).Data().Notebooks)
}

func TestNotebooksDeleteAndRestore(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	nb := addNotebook(t, db, "Work")
	topics := db.Notebooks.Notebook(ctx, nb).Topics()
	require.NoError(t, topics.AddTitles(ctx, "Sprint1"))
	sprint := topics.Topic(ctx, "Sprint1")
	id := addNote(t, db, "Task", "<p>x</p>")
	require.NoError(t, sprint.Add(ctx, id))

	require.NoError(t, db.Notebooks.Delete(ctx, nb))

	assert.Nil(t, db.Notebooks.Notebook(ctx, nb))
	assert.True(t, db.Trash.Exists(ctx, nb))
	assert.Empty(t, db.Notes.Note(ctx, id).Data().Notebooks)

	require.NoError(t, db.Trash.Restore(ctx, nb))

	restored := db.Notebooks.Notebook(ctx, nb)
	require.NotNil(t, restored)
	assert.Equal(t, core.KindNotebook, restored.Data().Type)
	assert.Zero(t, restored.Data().DateDeleted)
	assert.Equal(t, []string{"General", "Sprint1"}, topicTitles(restored.Topics().All(ctx)))

	back := restored.Topics().Topic(ctx, "Sprint1")
	require.NotNil(t, back)
	assert.True(t, back.Has(id))
	assert.Equal(t, []core.NotebookRef{{ID: nb, Topics: []string{back.ID()}}}, db.Notes.Note(ctx, id).Data().Notebooks)
}
