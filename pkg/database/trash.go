package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

// TrashItem describes one trashed note or notebook.
type TrashItem struct {
	ID          string         `json:"id"`
	ItemType    core.Kind      `json:"itemType"`
	Title       string         `json:"title"`
	DateDeleted int64          `json:"dateDeleted"`
	Note        *core.Note     `json:"note,omitempty"`
	Notebook    *core.Notebook `json:"notebook,omitempty"`
}

// Trash is a view over notes and notebooks flagged as deleted. It has no
// storage of its own: trashed items stay in their original collection.
type Trash struct {
	env
	retention time.Duration

	notes     *Notes
	notebooks *Notebooks
	settings  *Settings
}

func newTrash(e env, retention time.Duration) *Trash {
	return &Trash{env: e, retention: retention}
}

// Add flags a note or notebook as trashed.
func (t *Trash) Add(ctx context.Context, item core.Entity) error {
	now := t.now()
	switch v := item.(type) {
	case *core.Note:
		return t.Add(ctx, *v)
	case *core.Notebook:
		return t.Add(ctx, *v)
	case core.Note:
		note := cloneNote(v)
		note.ItemType = core.KindNote
		note.Type = core.KindTrash
		note.DateDeleted = now
		note.Deleted = true
		note.DateModified = now
		return t.notes.coll.Add(ctx, note)
	case core.Notebook:
		nb := cloneNotebook(v)
		nb.ItemType = core.KindNotebook
		nb.Type = core.KindTrash
		nb.DateDeleted = now
		nb.Deleted = true
		nb.DateModified = now
		return t.notebooks.coll.Add(ctx, nb)
	default:
		return fmt.Errorf("%w: cannot trash %T", core.ErrUnknownItemType, item)
	}
}

// All lists the trash, most recently deleted first.
func (t *Trash) All(ctx context.Context) ([]TrashItem, error) {
	notes, err := t.notes.coll.All(ctx)
	if err != nil {
		return nil, err
	}
	notebooks, err := t.notebooks.coll.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []TrashItem
	for _, n := range notes {
		if n.InTrash() {
			out = append(out, TrashItem{ID: n.ID, ItemType: core.KindNote, Title: n.Title, DateDeleted: n.DateDeleted, Note: &n})
		}
	}
	for _, nb := range notebooks {
		if nb.InTrash() {
			out = append(out, TrashItem{ID: nb.ID, ItemType: core.KindNotebook, Title: nb.Title, DateDeleted: nb.DateDeleted, Notebook: &nb})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DateDeleted > out[j].DateDeleted })
	return out, nil
}

// Exists reports whether id is in the trash.
func (t *Trash) Exists(ctx context.Context, id string) bool {
	_, _, ok := t.find(ctx, id)
	return ok
}

func (t *Trash) find(ctx context.Context, id string) (*core.Note, *core.Notebook, bool) {
	if note, err := t.notes.coll.Get(ctx, id); err == nil && note.InTrash() {
		return &note, nil, true
	}
	if nb, err := t.notebooks.coll.Get(ctx, id); err == nil && nb.InTrash() {
		return nil, &nb, true
	}
	return nil, nil, false
}

// Restore brings items back from the trash. Ids not in the trash are ignored.
func (t *Trash) Restore(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		note, nb, ok := t.find(ctx, id)
		switch {
		case !ok:
			continue
		case note != nil:
			if err := t.restoreNote(ctx, *note); err != nil {
				return fmt.Errorf("failed to restore note %s: %w", id, err)
			}
		default:
			if err := t.restoreNotebook(ctx, *nb); err != nil {
				return fmt.Errorf("failed to restore notebook %s: %w", id, err)
			}
		}
	}
	return nil
}

// restoreNote relinks the note to every notebook topic it was filed under
// that still exists. Missing notebooks and topics are skipped.
func (t *Trash) restoreNote(ctx context.Context, note core.Note) error {
	note = cloneNote(note)
	refs := note.Notebooks
	note.Type = core.KindNote
	note.ItemType = ""
	note.DateDeleted = 0
	note.Deleted = false
	note.Notebooks = nil
	if err := t.notes.save(ctx, note); err != nil {
		return err
	}
	if err := t.notes.syncTags(ctx, core.Note{}, note); err != nil {
		return err
	}
	for _, ref := range refs {
		nb := t.notebooks.Notebook(ctx, ref.ID)
		if nb == nil {
			t.logger.Debug("notebook gone, skipping relink", "note", note.ID, "notebook", ref.ID)
			continue
		}
		for _, topicID := range ref.Topics {
			topic := nb.Topics().Topic(ctx, topicID)
			if topic == nil {
				continue
			}
			if err := topic.Add(ctx, note.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// restoreNotebook recreates the topics and refiles the notes that are still live.
func (t *Trash) restoreNotebook(ctx context.Context, nb core.Notebook) error {
	nb = cloneNotebook(nb)
	topics := nb.Topics
	nb.Type = core.KindNotebook
	nb.ItemType = ""
	nb.DateDeleted = 0
	nb.Deleted = false
	nb.Topics = []core.Topic{}
	nb.TotalNotes = 0
	if err := t.notebooks.save(ctx, nb); err != nil {
		return err
	}

	bare := make([]core.Topic, len(topics))
	for i, topic := range topics {
		bare[i] = core.Topic{ID: topic.ID, Title: topic.Title, DateCreated: topic.DateCreated}
	}
	handles := t.notebooks.topics(nb.ID)
	if err := handles.Add(ctx, bare...); err != nil {
		return err
	}
	for _, topic := range topics {
		h := handles.Topic(ctx, topic.ID)
		if h == nil {
			continue
		}
		if err := h.Add(ctx, topic.Notes...); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes trashed items permanently.
func (t *Trash) Delete(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		note, _, ok := t.find(ctx, id)
		switch {
		case !ok:
			continue
		case note != nil:
			if err := t.notes.Remove(ctx, id); err != nil {
				return err
			}
		default:
			if err := t.settings.Unpin(ctx, id); err != nil {
				return err
			}
			if err := t.notebooks.coll.Delete(ctx, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clear empties the trash.
func (t *Trash) Clear(ctx context.Context) error {
	items, err := t.All(ctx)
	if err != nil {
		return err
	}
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return t.Delete(ctx, ids...)
}

// Cleanup removes items that have been in the trash longer than the retention period.
func (t *Trash) Cleanup(ctx context.Context) error {
	items, err := t.All(ctx)
	if err != nil {
		return err
	}
	cutoff := t.now() - t.retention.Milliseconds()
	var errs []error
	for _, item := range items {
		if item.DateDeleted >= cutoff {
			continue
		}
		if err := t.Delete(ctx, item.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
