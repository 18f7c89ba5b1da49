package database

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/streetwriters/notesnook-sub014/pkg/content"
	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/typed"
)

// NoteInput is a local write to a note. Nil fields keep their current value.
type NoteInput struct {
	ID         string
	Title      *string
	Content    *ContentData
	ContentID  string
	Pinned     *bool
	Favorite   *bool
	Locked     *bool
	Readonly   *bool
	Conflicted *bool
	LocalOnly  *bool
	Color      *string
	Tags       *[]string
	Notebooks  *[]core.NotebookRef

	DateCreated int64
	DateEdited  int64

	// SessionID, when set, also records the content as a history session
	// keyed by this edit timestamp.
	SessionID int64
}

// MoveTarget names the topic notes are moved into.
type MoveTarget struct {
	NotebookID string
	Topic      string
}

// Notes is the note collection.
type Notes struct {
	env
	coll *typed.Collection[core.Note]

	content     *ContentStore
	tags        *Tags
	colors      *Tags
	notebooks   *Notebooks
	trash       *Trash
	history     *NoteHistory
	attachments *Attachments
	relations   *Relations
	settings    *Settings
}

func newNotes(e env, repo core.Repository) *Notes {
	return &Notes{env: e, coll: typed.NewCollection[core.Note](CollectionNotes, repo, e.collectionOptions()...)}
}

// Add writes a locally authored note and returns its id. An empty id is
// returned, without error, when nothing was stored: a new note without
// content, or a note whose content became empty and has no title.
func (n *Notes) Add(ctx context.Context, in NoteInput) (string, error) {
	id := in.ID
	if id == "" {
		id = core.NewID()
	}

	old, err := n.coll.Get(ctx, id)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return "", err
	}
	exists := err == nil && !old.InTrash()

	if !exists && in.Content == nil && in.ContentID == "" {
		return "", nil
	}

	var note core.Note
	if exists {
		note = cloneNote(old)
	} else {
		note = core.Note{Base: core.Base{ID: id, Type: core.KindNote}}
		if err == nil {
			note.DateCreated = old.DateCreated
		}
	}
	if in.DateCreated != 0 {
		note.DateCreated = in.DateCreated
	}
	if note.DateCreated == 0 {
		note.DateCreated = n.now()
	}
	applyNoteInput(&note, in)

	var derivedTitle string
	if in.Content != nil {
		body, err := content.New(in.Content.Type, in.Content.Data)
		if err != nil {
			return "", err
		}
		if title(in.Title) == "" && body.IsEmpty() && !note.Locked {
			if exists {
				return "", n.Remove(ctx, id)
			}
			return "", nil
		}

		note.DateEdited = in.DateEdited
		if note.DateEdited == 0 {
			note.DateEdited = n.now()
		}
		contentID, err := n.content.Add(ctx, core.Content{
			Base:       core.Base{ID: note.ContentID, LocalOnly: note.LocalOnly},
			NoteID:     id,
			Format:     in.Content.Type,
			Data:       in.Content.Data,
			Locked:     note.Locked,
			DateEdited: note.DateEdited,
		})
		if err != nil {
			return "", fmt.Errorf("failed to save content of %s: %w", id, err)
		}
		note.ContentID = contentID
		if !note.Locked {
			note.Headline = body.Headline()
			derivedTitle = body.Title()
		}
	} else if in.ContentID != "" {
		note.ContentID = in.ContentID
	}

	note.Title = noteTitle(title(in.Title), note.Title, derivedTitle, note.DateCreated)
	if note.Locked {
		note.Headline = ""
	}
	note.Tags = sanitizeTags(note.Tags)
	if note.Color != "" {
		note.Color = SanitizeTag(note.Color)
	}

	if err := n.save(ctx, note); err != nil {
		return "", err
	}

	var prev core.Note
	if exists {
		prev = old
	}
	if err := n.syncTags(ctx, prev, note); err != nil {
		return "", err
	}

	if in.SessionID != 0 && in.Content != nil {
		if _, err := n.history.Add(ctx, id, in.SessionID, *in.Content); err != nil {
			return "", fmt.Errorf("failed to record history of %s: %w", id, err)
		}
	}
	return id, nil
}

// Merge stores a note that came from sync or a migration. Deleted rows are
// written as is; other rows keep the tag and color back-references in step.
func (n *Notes) Merge(ctx context.Context, note core.Note) error {
	if note.Deleted {
		return n.coll.Add(ctx, note)
	}
	old, err := n.coll.Get(ctx, note.ID)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return err
	}
	var prev core.Note
	if err == nil && !old.InTrash() {
		prev = old
	}
	if err := n.coll.Add(ctx, note); err != nil {
		return err
	}
	if note.InTrash() {
		return nil
	}
	return n.syncTags(ctx, prev, note)
}

// syncTags moves the note between tags and colors to match its new state.
// Unknown tags are tolerated so that partially synced data does not fail.
func (n *Notes) syncTags(ctx context.Context, prev, next core.Note) error {
	id := next.ID
	for _, tag := range prev.Tags {
		if slices.Contains(next.Tags, tag) {
			continue
		}
		if err := n.tags.Untag(ctx, tag, id); err != nil && !errors.Is(err, core.ErrTagNotFound) {
			return err
		}
	}
	for _, tag := range next.Tags {
		if _, err := n.tags.Add(ctx, tag, id); err != nil {
			return err
		}
	}
	if prev.Color != "" && prev.Color != next.Color {
		if err := n.colors.Untag(ctx, prev.Color, id); err != nil && !errors.Is(err, core.ErrTagNotFound) {
			return err
		}
	}
	if next.Color != "" {
		if _, err := n.colors.Add(ctx, next.Color, id); err != nil {
			return err
		}
	}
	return nil
}

func (n *Notes) save(ctx context.Context, note core.Note) error {
	note.DateModified = n.now()
	return n.coll.Add(ctx, note)
}

// patch applies fn to a live note and saves it.
func (n *Notes) patch(ctx context.Context, id string, fn func(*core.Note)) error {
	note, err := n.coll.Get(ctx, id)
	if err != nil {
		return err
	}
	note = cloneNote(note)
	fn(&note)
	return n.save(ctx, note)
}

// Note returns a handle, or nil for missing, deleted or trashed notes.
func (n *Notes) Note(ctx context.Context, id string) *Note {
	note, err := n.coll.Get(ctx, id)
	if err != nil || note.InTrash() || note.Type != core.KindNote {
		return nil
	}
	return &Note{notes: n, data: note}
}

// Exists reports whether a note is stored, trashed ones included.
func (n *Notes) Exists(ctx context.Context, id string) bool {
	_, err := n.coll.Get(ctx, id)
	return err == nil
}

// All returns every live note, newest first.
func (n *Notes) All(ctx context.Context) ([]core.Note, error) {
	return n.filter(ctx, func(core.Note) bool { return true })
}

func (n *Notes) Pinned(ctx context.Context) ([]core.Note, error) {
	return n.filter(ctx, func(note core.Note) bool { return note.Pinned })
}

func (n *Notes) Favorites(ctx context.Context) ([]core.Note, error) {
	return n.filter(ctx, func(note core.Note) bool { return note.Favorite })
}

func (n *Notes) Conflicted(ctx context.Context) ([]core.Note, error) {
	return n.filter(ctx, func(note core.Note) bool { return note.Conflicted })
}

func (n *Notes) Locked(ctx context.Context) ([]core.Note, error) {
	return n.filter(ctx, func(note core.Note) bool { return note.Locked })
}

// Tagged returns the notes carrying tag.
func (n *Notes) Tagged(ctx context.Context, tag string) ([]core.Note, error) {
	tag = SanitizeTag(tag)
	return n.filter(ctx, func(note core.Note) bool { return slices.Contains(note.Tags, tag) })
}

// Colored returns the notes marked with color.
func (n *Notes) Colored(ctx context.Context, color string) ([]core.Note, error) {
	color = SanitizeTag(color)
	return n.filter(ctx, func(note core.Note) bool { return note.Color == color })
}

func (n *Notes) filter(ctx context.Context, keep func(core.Note) bool) ([]core.Note, error) {
	all, err := n.coll.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.Note, 0, len(all))
	for _, note := range all {
		if note.Type == core.KindNote && !note.InTrash() && keep(note) {
			out = append(out, note)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DateCreated > out[j].DateCreated })
	return out, nil
}

// Delete moves notes to the trash after detaching them from their topics,
// tags and color. Notes already in the trash are removed permanently.
func (n *Notes) Delete(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		note, err := n.coll.Get(ctx, id)
		if errors.Is(err, core.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if note.InTrash() {
			if err := n.Remove(ctx, id); err != nil {
				return err
			}
			continue
		}
		if err := n.detach(ctx, note); err != nil {
			return err
		}
		if err := n.settings.Unpin(ctx, id); err != nil {
			return err
		}
		if err := n.trash.Add(ctx, note); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes notes permanently together with their content and history,
// and releases the attachments they referenced.
func (n *Notes) Remove(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		note, err := n.coll.Get(ctx, id)
		if errors.Is(err, core.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if !note.InTrash() {
			if err := n.detach(ctx, note); err != nil {
				return err
			}
		}
		if err := n.content.Remove(ctx, note.ContentID); err != nil {
			return err
		}
		if err := n.history.Remove(ctx, id); err != nil {
			return err
		}
		if err := n.attachments.ReleaseNote(ctx, id); err != nil {
			return err
		}
		if err := n.relations.UnlinkAll(ctx, core.Ref(core.KindNote, id)); err != nil {
			return err
		}
		if err := n.settings.Unpin(ctx, id); err != nil {
			return err
		}
		if err := n.coll.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// detach removes the note from its topics, tags and color without touching the note row.
func (n *Notes) detach(ctx context.Context, note core.Note) error {
	for _, ref := range note.Notebooks {
		for _, topic := range ref.Topics {
			if err := n.notebooks.removeFromTopic(ctx, ref.ID, topic, note.ID); err != nil {
				return err
			}
		}
	}
	for _, tag := range note.Tags {
		if err := n.tags.Untag(ctx, tag, note.ID); err != nil && !errors.Is(err, core.ErrTagNotFound) {
			return err
		}
	}
	if note.Color != "" {
		if err := n.colors.Untag(ctx, note.Color, note.ID); err != nil && !errors.Is(err, core.ErrTagNotFound) {
			return err
		}
	}
	return nil
}

// Move adds notes to a topic.
func (n *Notes) Move(ctx context.Context, to MoveTarget, noteIDs ...string) error {
	if to.NotebookID == "" || to.Topic == "" {
		return core.ErrInvalidTarget
	}
	nb := n.notebooks.Notebook(ctx, to.NotebookID)
	if nb == nil {
		return fmt.Errorf("notebook %s: %w", to.NotebookID, core.ErrNotFound)
	}
	topic := nb.Topics().Topic(ctx, to.Topic)
	if topic == nil {
		return fmt.Errorf("%w: %s", core.ErrTopicNotFound, to.Topic)
	}
	return topic.Add(ctx, noteIDs...)
}

// linkTopic records topic membership on the note side.
func (n *Notes) linkTopic(ctx context.Context, noteID, notebookID, topicID string) error {
	return n.patch(ctx, noteID, func(note *core.Note) {
		for i, ref := range note.Notebooks {
			if ref.ID == notebookID {
				note.Notebooks[i].Topics = union(ref.Topics, topicID)
				return
			}
		}
		note.Notebooks = append(note.Notebooks, core.NotebookRef{ID: notebookID, Topics: []string{topicID}})
	})
}

// unlinkTopic drops topic membership on the note side, and the notebook
// reference once no topic of it is left.
func (n *Notes) unlinkTopic(ctx context.Context, noteID, notebookID, topicID string) error {
	err := n.patch(ctx, noteID, func(note *core.Note) {
		refs := make([]core.NotebookRef, 0, len(note.Notebooks))
		for _, ref := range note.Notebooks {
			if ref.ID == notebookID {
				ref.Topics = without(ref.Topics, topicID)
				if len(ref.Topics) == 0 {
					continue
				}
			}
			refs = append(refs, ref)
		}
		note.Notebooks = refs
	})
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	return err
}

func applyNoteInput(note *core.Note, in NoteInput) {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&note.Pinned, in.Pinned)
	set(&note.Favorite, in.Favorite)
	set(&note.Locked, in.Locked)
	set(&note.Readonly, in.Readonly)
	set(&note.Conflicted, in.Conflicted)
	set(&note.LocalOnly, in.LocalOnly)
	if in.Color != nil {
		note.Color = *in.Color
	}
	if in.Tags != nil {
		note.Tags = slices.Clone(*in.Tags)
	}
	if in.Notebooks != nil {
		note.Notebooks = cloneRefs(*in.Notebooks)
	}
}

func title(t *string) string {
	if t == nil {
		return ""
	}
	return strings.TrimSpace(*t)
}

// noteTitle picks the explicit title, then the previous one, then the first
// line of the content, and finally a dated placeholder.
func noteTitle(explicit, previous, derived string, created int64) string {
	for _, t := range []string{explicit, previous, derived} {
		if t = strings.TrimSpace(t); t != "" {
			return strings.Join(strings.Fields(t), " ")
		}
	}
	return "Note " + time.UnixMilli(created).Format("01/02/2006, 15:04")
}

func cloneNote(note core.Note) core.Note {
	note.Tags = slices.Clone(note.Tags)
	note.Notebooks = cloneRefs(note.Notebooks)
	return note
}

func cloneRefs(refs []core.NotebookRef) []core.NotebookRef {
	if refs == nil {
		return nil
	}
	out := make([]core.NotebookRef, len(refs))
	for i, r := range refs {
		out[i] = core.NotebookRef{ID: r.ID, Topics: slices.Clone(r.Topics)}
	}
	return out
}
