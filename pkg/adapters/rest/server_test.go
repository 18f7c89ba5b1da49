package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetwriters/notesnook-sub014/pkg/adapters/memory"
	"github.com/streetwriters/notesnook-sub014/pkg/adapters/rest"
	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/database"
)

func newTestServer(t *testing.T) (*httptest.Server, *database.Database) {
	t.Helper()
	db, err := database.New(memory.NewRepository())
	require.NoError(t, err)
	require.NoError(t, db.Init(context.Background()))

	srv := httptest.NewServer(rest.NewServer(db, nil))
	t.Cleanup(srv.Close)
	return srv, db
}

func do(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type idResponse struct {
	ID string `json:"id"`
}

func createNote(t *testing.T, base, title, html string) string {
	t.Helper()
	var created idResponse
	status := do(t, http.MethodPost, base+"/api/notes", map[string]any{
		"title":   title,
		"content": map[string]string{"type": "tiptap", "data": html},
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, created.ID)
	return created.ID
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/health", nil, &body))
	assert.Equal(t, "ok", body["status"])
}

func TestNotesEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createNote(t, srv.URL, "Recipe", "<p>flour and butter</p>")

	t.Run("Get", func(t *testing.T) {
		var note struct {
			core.Note
			Content *core.Content `json:"content"`
		}
		require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/notes/"+id, nil, &note))
		assert.Equal(t, "Recipe", note.Title)
		require.NotNil(t, note.Content)
		assert.Contains(t, note.Content.Data, "flour")
	})

	t.Run("Update", func(t *testing.T) {
		require.Equal(t, http.StatusOK, do(t, http.MethodPatch, srv.URL+"/api/notes/"+id, map[string]any{"pinned": true}, nil))
		var pinned []core.Note
		require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/notes?pinned", nil, &pinned))
		require.Len(t, pinned, 1)
		assert.Equal(t, id, pinned[0].ID)
	})

	t.Run("Tags", func(t *testing.T) {
		require.Equal(t, http.StatusNoContent, do(t, http.MethodPost, srv.URL+"/api/notes/"+id+"/tags", map[string]string{"tag": "Baking"}, nil))
		var tagged []core.Note
		require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/notes?tag=baking", nil, &tagged))
		assert.Len(t, tagged, 1)

		var tags []core.Tag
		require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/tags", nil, &tags))
		require.Len(t, tags, 1)
		assert.Equal(t, "baking", tags[0].Title)

		require.Equal(t, http.StatusNoContent, do(t, http.MethodDelete, srv.URL+"/api/notes/"+id+"/tags/baking", nil, nil))
		require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/tags", nil, &tags))
		assert.Empty(t, tags)
	})

	t.Run("Search", func(t *testing.T) {
		var found struct {
			Notes []core.Note `json:"notes"`
		}
		require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/search?q=butter", nil, &found))
		require.Len(t, found.Notes, 1)
		assert.Equal(t, id, found.Notes[0].ID)

		assert.Equal(t, http.StatusBadRequest, do(t, http.MethodGet, srv.URL+"/api/search", nil, nil))
	})

	t.Run("Grouped", func(t *testing.T) {
		var groups []database.Group
		require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/notes?groupBy=abc", nil, &groups))
		require.NotEmpty(t, groups)
	})

	t.Run("Missing", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, do(t, http.MethodGet, srv.URL+"/api/notes/nope", nil, nil))
		assert.Equal(t, http.StatusNotFound, do(t, http.MethodPatch, srv.URL+"/api/notes/nope", map[string]any{}, nil))
	})

	t.Run("EmptyNote", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPost, srv.URL+"/api/notes", map[string]any{"title": "only a title"}, nil))
	})
}

func TestTrashEndpoints(t *testing.T) {
	srv, db := newTestServer(t)
	id := createNote(t, srv.URL, "Draft", "<p>temporary</p>")

	require.Equal(t, http.StatusNoContent, do(t, http.MethodDelete, srv.URL+"/api/notes/"+id, nil, nil))
	assert.Equal(t, http.StatusNotFound, do(t, http.MethodGet, srv.URL+"/api/notes/"+id, nil, nil))

	var items []database.TrashItem
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/trash", nil, &items))
	require.Len(t, items, 1)
	assert.Equal(t, core.KindNote, items[0].ItemType)

	require.Equal(t, http.StatusNoContent, do(t, http.MethodPost, srv.URL+"/api/trash/"+id+"/restore", nil, nil))
	assert.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/notes/"+id, nil, nil))
	assert.Equal(t, http.StatusNotFound, do(t, http.MethodPost, srv.URL+"/api/trash/"+id+"/restore", nil, nil))

	require.Equal(t, http.StatusNoContent, do(t, http.MethodDelete, srv.URL+"/api/notes/"+id, nil, nil))
	require.Equal(t, http.StatusNoContent, do(t, http.MethodDelete, srv.URL+"/api/trash/"+id, nil, nil))
	assert.False(t, db.Trash.Exists(context.Background(), id))

	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/trash", nil, &items))
	assert.Empty(t, items)
}

func TestNotebookEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	noteID := createNote(t, srv.URL, "Standup", "<p>yesterday, today</p>")

	var created idResponse
	require.Equal(t, http.StatusCreated, do(t, http.MethodPost, srv.URL+"/api/notebooks", map[string]any{"title": "Work"}, &created))

	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPost, srv.URL+"/api/notebooks", map[string]any{}, nil))

	var topic core.Topic
	require.Equal(t, http.StatusCreated, do(t, http.MethodPost, srv.URL+"/api/notebooks/"+created.ID+"/topics", map[string]string{"title": "Meetings"}, &topic))
	assert.Equal(t, "Meetings", topic.Title)

	topicURL := srv.URL + "/api/notebooks/" + created.ID + "/topics/" + topic.ID + "/notes"
	require.Equal(t, http.StatusNoContent, do(t, http.MethodPost, topicURL, map[string][]string{"noteIds": {noteID}}, nil))

	var notes []core.Note
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, topicURL, nil, &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, noteID, notes[0].ID)

	var nb core.Notebook
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/notebooks/"+created.ID, nil, &nb))
	assert.Len(t, nb.Topics, 2)

	assert.Equal(t, http.StatusNotFound, do(t, http.MethodGet, srv.URL+"/api/notebooks/"+created.ID+"/topics/nope/notes", nil, nil))

	require.Equal(t, http.StatusNoContent, do(t, http.MethodDelete, srv.URL+"/api/notebooks/"+created.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, do(t, http.MethodGet, srv.URL+"/api/notebooks/"+created.ID, nil, nil))
}

func TestInvalidPayload(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Post(srv.URL+"/api/notes", "application/json", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
