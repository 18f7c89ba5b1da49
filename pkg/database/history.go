package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/streetwriters/notesnook-sub014/pkg/content"
	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/typed"
)

// NoteHistory keeps snapshots of note content, one per edit session.
type NoteHistory struct {
	env
	limit    int
	sessions *typed.Collection[core.Session]
	contents *typed.Collection[core.SessionContent]

	notes   *Notes
	content *ContentStore
}

func newNoteHistory(e env, repo core.Repository, limit int) *NoteHistory {
	return &NoteHistory{
		env:      e,
		limit:    limit,
		sessions: typed.NewCollection[core.Session](CollectionNoteHistory, repo, e.collectionOptions()...),
		// Session content may be encrypted, so only its index is read at startup.
		contents: typed.NewCollection[core.SessionContent](CollectionSessionContent, repo, e.collectionOptions(typed.Deferred())...),
	}
}

func sessionID(noteID string, dateEdited int64) string {
	return fmt.Sprintf("%s_%d", noteID, dateEdited)
}

// Add records the content of a note at dateEdited and returns the session
// id. Saving again at the same timestamp overwrites the session.
func (h *NoteHistory) Add(ctx context.Context, noteID string, dateEdited int64, data ContentData) (string, error) {
	if noteID == "" {
		return "", fmt.Errorf("history: %w: empty note id", core.ErrNotFound)
	}
	if err := content.Validate(data.Type); err != nil {
		return "", err
	}
	locked := false
	if note, err := h.notes.coll.Get(ctx, noteID); err == nil {
		locked = note.Locked
	}

	id := sessionID(noteID, dateEdited)
	now := h.now()
	created := now
	if old, err := h.sessions.Get(ctx, id); err == nil {
		created = old.DateCreated
	}

	blob := core.SessionContent{
		Base:        core.Base{ID: id + "_content", Type: core.KindSessionContent, DateCreated: created, DateModified: now},
		ContentType: data.Type,
		Locked:      locked,
	}
	if locked {
		blob.Data = data.Data
	} else {
		packed, err := content.Compress(data.Data)
		if err != nil {
			return "", err
		}
		blob.Data = packed
		blob.Compressed = true
	}
	if err := h.contents.Add(ctx, blob); err != nil {
		return "", err
	}

	session := core.Session{
		Base:             core.Base{ID: id, Type: core.KindSession, DateCreated: created, DateModified: now},
		SessionContentID: blob.ID,
		NoteID:           noteID,
		DateEdited:       dateEdited,
		Locked:           locked,
	}
	if err := h.sessions.Add(ctx, session); err != nil {
		return "", err
	}
	return id, h.cleanup(ctx, noteID)
}

// cleanup evicts the oldest sessions of a note beyond the versions limit.
func (h *NoteHistory) cleanup(ctx context.Context, noteID string) error {
	sessions, err := h.Get(ctx, noteID)
	if err != nil {
		return err
	}
	if len(sessions) <= h.limit {
		return nil
	}
	for _, s := range sessions[h.limit:] {
		if err := h.removeSession(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the sessions of a note, newest first.
func (h *NoteHistory) Get(ctx context.Context, noteID string) ([]core.Session, error) {
	all, err := h.sessions.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Session
	for _, s := range all {
		if s.NoteID == noteID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DateEdited > out[j].DateEdited })
	return out, nil
}

// Content returns the stored body of a session. Locked bodies are returned
// as stored; others are decompressed.
func (h *NoteHistory) Content(ctx context.Context, id string) (ContentData, error) {
	session, err := h.sessions.Get(ctx, id)
	if err != nil {
		return ContentData{}, fmt.Errorf("session %s: %w", id, err)
	}
	blob, err := h.contents.Get(ctx, session.SessionContentID)
	if err != nil {
		return ContentData{}, fmt.Errorf("session content %s: %w", session.SessionContentID, err)
	}
	data := blob.Data
	if blob.Compressed {
		if data, err = content.Decompress(blob.Data); err != nil {
			return ContentData{}, err
		}
	}
	return ContentData{Type: blob.ContentType, Data: data}, nil
}

// Remove deletes every session of a note.
func (h *NoteHistory) Remove(ctx context.Context, noteID string) error {
	sessions, err := h.Get(ctx, noteID)
	if err != nil {
		return err
	}
	for _, s := range sessions {
		if err := h.removeSession(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// ClearSessions deletes the history of each note.
func (h *NoteHistory) ClearSessions(ctx context.Context, noteIDs ...string) error {
	for _, id := range noteIDs {
		if err := h.Remove(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (h *NoteHistory) removeSession(ctx context.Context, s core.Session) error {
	if err := h.contents.Remove(ctx, s.SessionContentID); err != nil {
		return err
	}
	return h.sessions.Remove(ctx, s.ID)
}

// Restore writes a session back as the current content of its note.
func (h *NoteHistory) Restore(ctx context.Context, id string) error {
	session, err := h.sessions.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("session %s: %w", id, err)
	}
	data, err := h.Content(ctx, id)
	if err != nil {
		return err
	}

	if session.Locked {
		note, err := h.notes.coll.Get(ctx, session.NoteID)
		if err != nil {
			return fmt.Errorf("note %s: %w", session.NoteID, err)
		}
		_, err = h.content.Add(ctx, core.Content{
			Base:   core.Base{ID: note.ContentID},
			NoteID: note.ID,
			Format: data.Type,
			Data:   data.Data,
			Locked: true,
		})
		return err
	}

	_, err = h.notes.Add(ctx, NoteInput{ID: session.NoteID, Content: &data})
	return err
}

type historyEnvelope struct {
	Sessions []core.Session        `json:"sessions"`
	Contents []core.SessionContent `json:"contents"`
}

// Serialize exports every session with its content as one JSON document.
func (h *NoteHistory) Serialize(ctx context.Context) ([]byte, error) {
	sessions, err := h.sessions.All(ctx)
	if err != nil {
		return nil, err
	}
	contents, err := h.contents.All(ctx)
	if err != nil {
		return nil, err
	}
	export := historyEnvelope{Sessions: sessions, Contents: contents}
	if export.Sessions == nil {
		export.Sessions = []core.Session{}
	}
	if export.Contents == nil {
		export.Contents = []core.SessionContent{}
	}
	return json.Marshal(export)
}

// Deserialize imports a Serialize export. Sessions whose content is missing
// from the export are skipped.
func (h *NoteHistory) Deserialize(ctx context.Context, data []byte) error {
	var export historyEnvelope
	if err := json.Unmarshal(data, &export); err != nil {
		return fmt.Errorf("failed to decode history: %w", err)
	}
	var errs []error
	for _, s := range export.Sessions {
		i := slices.IndexFunc(export.Contents, func(c core.SessionContent) bool { return c.ID == s.SessionContentID })
		if i < 0 {
			// Older exports may lack sessionContentId; session ids are
			// prefixes of each other, so only the full suffix is matched.
			i = slices.IndexFunc(export.Contents, func(c core.SessionContent) bool { return c.ID == s.ID+"_content" })
		}
		if i < 0 {
			h.logger.Warn("session content missing from export", "session", s.ID)
			continue
		}
		if err := h.contents.Add(ctx, export.Contents[i]); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := h.sessions.Add(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
