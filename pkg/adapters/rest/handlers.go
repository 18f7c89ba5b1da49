package rest

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/database"
)

type noteRequest struct {
	Title     *string               `json:"title"`
	Content   *database.ContentData `json:"content"`
	Pinned    *bool                 `json:"pinned"`
	Favorite  *bool                 `json:"favorite"`
	Color     *string               `json:"color"`
	Tags      *[]string             `json:"tags"`
	SessionID int64                 `json:"sessionId"`
}

func (req noteRequest) input(id string) database.NoteInput {
	return database.NoteInput{
		ID:        id,
		Title:     req.Title,
		Content:   req.Content,
		Pinned:    req.Pinned,
		Favorite:  req.Favorite,
		Color:     req.Color,
		Tags:      req.Tags,
		SessionID: req.SessionID,
	}
}

type noteResponse struct {
	core.Note
	Content *core.Content `json:"content,omitempty"`
}

type idResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.db.State())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		respondError(w, http.StatusBadRequest, "missing query")
		return
	}
	ctx := r.Context()
	notes, err := s.db.Lookup.Notes(ctx, q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	notebooks, err := s.db.Lookup.Notebooks(ctx, q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"notes": notes, "notebooks": notebooks})
}

// handleListNotes returns all notes, or grouped notes when groupBy is set.
// Filters: tag, color, pinned, favorites.
func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if groupBy := q.Get("groupBy"); groupBy != "" {
		groups, err := s.db.Notes.Group(ctx, database.SortOptions{
			GroupBy:   database.GroupBy(groupBy),
			SortBy:    database.SortBy(q.Get("sortBy")),
			Ascending: q.Get("order") == "asc",
		})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, groups)
		return
	}

	var (
		notes []core.Note
		err   error
	)
	switch {
	case q.Get("tag") != "":
		notes, err = s.db.Notes.Tagged(ctx, q.Get("tag"))
	case q.Get("color") != "":
		notes, err = s.db.Notes.Colored(ctx, q.Get("color"))
	case q.Has("pinned"):
		notes, err = s.db.Notes.Pinned(ctx)
	case q.Has("favorites"):
		notes, err = s.db.Notes.Favorites(ctx)
	default:
		notes, err = s.db.Notes.All(ctx)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if notes == nil {
		notes = []core.Note{}
	}
	respondJSON(w, http.StatusOK, notes)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := s.db.Notes.Add(r.Context(), req.input(""))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if id == "" {
		respondError(w, http.StatusBadRequest, "note has no content")
		return
	}
	respondJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	note := s.db.Notes.Note(ctx, mux.Vars(r)["id"])
	if note == nil {
		respondError(w, http.StatusNotFound, "note not found")
		return
	}
	resp := noteResponse{Note: note.Data()}
	if c, err := note.Content(ctx); err == nil {
		resp.Content = &c
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if s.db.Notes.Note(r.Context(), id) == nil {
		respondError(w, http.StatusNotFound, "note not found")
		return
	}
	var req noteRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := s.db.Notes.Add(r.Context(), req.input(id)); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, idResponse{ID: id})
}

// handleDeleteNote moves the note to the trash.
func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if s.db.Notes.Note(r.Context(), id) == nil {
		respondError(w, http.StatusNotFound, "note not found")
		return
	}
	if err := s.db.Notes.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleTagNote(w http.ResponseWriter, r *http.Request) {
	note := s.db.Notes.Note(r.Context(), mux.Vars(r)["id"])
	if note == nil {
		respondError(w, http.StatusNotFound, "note not found")
		return
	}
	var req struct {
		Tag string `json:"tag"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := note.Tag(r.Context(), req.Tag); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleUntagNote(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	note := s.db.Notes.Note(r.Context(), vars["id"])
	if note == nil {
		respondError(w, http.StatusNotFound, "note not found")
		return
	}
	if err := note.Untag(r.Context(), vars["tag"]); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.db.History.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []core.Session{}
	}
	respondJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleRestoreSession(w http.ResponseWriter, r *http.Request) {
	if err := s.db.History.Restore(r.Context(), mux.Vars(r)["session"]); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListNotebooks(w http.ResponseWriter, r *http.Request) {
	notebooks, err := s.db.Notebooks.All(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if notebooks == nil {
		notebooks = []core.Notebook{}
	}
	respondJSON(w, http.StatusOK, notebooks)
}

func (s *Server) handleCreateNotebook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Pinned      *bool    `json:"pinned"`
		Topics      []string `json:"topics"`
	}
	if !decode(w, r, &req) {
		return
	}
	id, err := s.db.Notebooks.Add(r.Context(), database.NotebookInput{
		Title:       req.Title,
		Description: req.Description,
		Pinned:      req.Pinned,
		Topics:      req.Topics,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) handleGetNotebook(w http.ResponseWriter, r *http.Request) {
	nb := s.db.Notebooks.Notebook(r.Context(), mux.Vars(r)["id"])
	if nb == nil {
		respondError(w, http.StatusNotFound, "notebook not found")
		return
	}
	respondJSON(w, http.StatusOK, nb.Data())
}

func (s *Server) handleDeleteNotebook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if s.db.Notebooks.Notebook(r.Context(), id) == nil {
		respondError(w, http.StatusNotFound, "notebook not found")
		return
	}
	if err := s.db.Notebooks.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAddTopic(w http.ResponseWriter, r *http.Request) {
	nb := s.db.Notebooks.Notebook(r.Context(), mux.Vars(r)["id"])
	if nb == nil {
		respondError(w, http.StatusNotFound, "notebook not found")
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "topic title is required")
		return
	}
	topics := nb.Topics()
	if err := topics.AddTitles(r.Context(), req.Title); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, topics.Topic(r.Context(), req.Title).Data())
}

func (s *Server) topic(w http.ResponseWriter, r *http.Request) *database.Topic {
	vars := mux.Vars(r)
	nb := s.db.Notebooks.Notebook(r.Context(), vars["id"])
	if nb == nil {
		respondError(w, http.StatusNotFound, "notebook not found")
		return nil
	}
	t := nb.Topics().Topic(r.Context(), vars["topic"])
	if t == nil {
		respondError(w, http.StatusNotFound, "topic not found")
	}
	return t
}

func (s *Server) handleTopicNotes(w http.ResponseWriter, r *http.Request) {
	t := s.topic(w, r)
	if t == nil {
		return
	}
	notes := t.Notes(r.Context())
	if notes == nil {
		notes = []core.Note{}
	}
	respondJSON(w, http.StatusOK, notes)
}

func (s *Server) handleAddToTopic(w http.ResponseWriter, r *http.Request) {
	t := s.topic(w, r)
	if t == nil {
		return
	}
	var req struct {
		NoteIDs []string `json:"noteIds"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := t.Add(r.Context(), req.NoteIDs...); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.db.Tags.All(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if tags == nil {
		tags = []core.Tag{}
	}
	respondJSON(w, http.StatusOK, tags)
}

func (s *Server) handleRemoveTag(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Tags.Remove(r.Context(), mux.Vars(r)["tag"]); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListTrash(w http.ResponseWriter, r *http.Request) {
	items, err := s.db.Trash.All(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if items == nil {
		items = []database.TrashItem{}
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleClearTrash(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Trash.Clear(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.db.Trash.Exists(r.Context(), id) {
		respondError(w, http.StatusNotFound, "item not in trash")
		return
	}
	if err := s.db.Trash.Restore(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// handlePurge deletes a trashed item permanently.
func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.db.Trash.Exists(r.Context(), id) {
		respondError(w, http.StatusNotFound, "item not in trash")
		return
	}
	if err := s.db.Trash.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// handleListReminders returns all reminders, or only upcoming ones with ?upcoming.
func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	var (
		reminders []core.Reminder
		err       error
	)
	if r.URL.Query().Has("upcoming") {
		reminders, err = s.db.Reminders.Upcoming(r.Context(), time.Now())
	} else {
		reminders, err = s.db.Reminders.All(r.Context())
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if reminders == nil {
		reminders = []core.Reminder{}
	}
	respondJSON(w, http.StatusOK, reminders)
}
