package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/database"
)

func noteIDs(notes []core.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func TestLookupTerms(t *testing.T) {
	db, _ := newTestDB(t)
	assert.Equal(t, []string{"kubernetes", "cluster"}, db.Lookup.Terms("The Kubernetes, the cluster!"))
	assert.Equal(t, []string{"the"}, db.Lookup.Terms("the THE"))
	assert.Empty(t, db.Lookup.Terms("  ,; "))
}

func TestLookupNotes(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	strong := addNote(t, db, "Kubernetes notes", "<p>cluster upgrade for kubernetes</p>")
	weak := addNote(t, db, "Cluster", "<p>kubernetes</p>")
	addNote(t, db, "Pasta", "<p>boil water</p>")
	locked, err := db.Notes.Add(ctx, database.NoteInput{Title: ptr("Vault"), Locked: ptr(true), Content: tiptap("kubernetes cluster")})
	require.NoError(t, err)

	got, err := db.Lookup.Notes(ctx, "the kubernetes cluster")
	require.NoError(t, err)
	assert.Equal(t, []string{strong, weak}, noteIDs(got))
	assert.NotContains(t, noteIDs(got), locked)

	got, err = db.Lookup.Notes(ctx, "kubernetes pasta")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = db.Lookup.Notes(ctx, "VAULT")
	require.NoError(t, err)
	assert.Equal(t, []string{locked}, noteIDs(got))
}

func TestLookupNotebooks(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	work := addNotebook(t, db, "Work")
	require.NoError(t, db.Notebooks.Notebook(ctx, work).Topics().AddTitles(ctx, "Sprint1"))
	addNotebook(t, db, "Home")

	got, err := db.Lookup.Notebooks(ctx, "sprint1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, work, got[0].ID)
}
