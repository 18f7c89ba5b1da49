package database

import (
	"context"
	"errors"
	"slices"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

// Note is a handle on a live note.
type Note struct {
	notes *Notes
	data  core.Note
}

// Data returns the note as it was when the handle was taken or last changed.
func (h *Note) Data() core.Note { return cloneNote(h.data) }

func (h *Note) ID() string { return h.data.ID }

// Content returns the note body.
func (h *Note) Content(ctx context.Context) (core.Content, error) {
	if h.data.ContentID == "" {
		return core.Content{}, core.ErrNotFound
	}
	return h.notes.content.Get(ctx, h.data.ContentID)
}

// Tag adds tag to the note, creating the tag when needed.
func (h *Note) Tag(ctx context.Context, tag string) error {
	tag = SanitizeTag(tag)
	if tag == "" {
		return core.ErrTagTitleRequired
	}
	if _, err := h.notes.tags.Add(ctx, tag, h.data.ID); err != nil {
		return err
	}
	if slices.Contains(h.data.Tags, tag) {
		return nil
	}
	return h.update(ctx, func(n *core.Note) { n.Tags = union(n.Tags, tag) })
}

// Untag removes tag from the note. The tag is deleted once no note uses it.
func (h *Note) Untag(ctx context.Context, tag string) error {
	tag = SanitizeTag(tag)
	if err := h.update(ctx, func(n *core.Note) { n.Tags = without(n.Tags, tag) }); err != nil {
		return err
	}
	if err := h.notes.tags.Untag(ctx, tag, h.data.ID); err != nil && !errors.Is(err, core.ErrTagNotFound) {
		return err
	}
	return nil
}

// Color marks the note, replacing any previous color.
func (h *Note) Color(ctx context.Context, color string) error {
	color = SanitizeTag(color)
	if color == "" {
		return core.ErrTagTitleRequired
	}
	if h.data.Color == color {
		return nil
	}
	if h.data.Color != "" {
		if err := h.Uncolor(ctx); err != nil {
			return err
		}
	}
	if _, err := h.notes.colors.Add(ctx, color, h.data.ID); err != nil {
		return err
	}
	return h.update(ctx, func(n *core.Note) { n.Color = color })
}

// Uncolor clears the note color.
func (h *Note) Uncolor(ctx context.Context) error {
	old := h.data.Color
	if err := h.update(ctx, func(n *core.Note) { n.Color = "" }); err != nil {
		return err
	}
	if old == "" {
		return nil
	}
	if err := h.notes.colors.Untag(ctx, old, h.data.ID); err != nil && !errors.Is(err, core.ErrTagNotFound) {
		return err
	}
	return nil
}

func (h *Note) Pin(ctx context.Context) error {
	return h.update(ctx, func(n *core.Note) { n.Pinned = !n.Pinned })
}

func (h *Note) Favorite(ctx context.Context) error {
	return h.update(ctx, func(n *core.Note) { n.Favorite = !n.Favorite })
}

func (h *Note) Readonly(ctx context.Context) error {
	return h.update(ctx, func(n *core.Note) { n.Readonly = !n.Readonly })
}

// LocalOnly toggles whether the note is excluded from sync.
func (h *Note) LocalOnly(ctx context.Context) error {
	return h.update(ctx, func(n *core.Note) { n.LocalOnly = !n.LocalOnly })
}

// Duplicate copies the note and its content into a new note.
func (h *Note) Duplicate(ctx context.Context) (string, error) {
	body, err := h.Content(ctx)
	if err != nil {
		return "", err
	}
	title := h.data.Title + " (Copy)"
	tags := slices.Clone(h.data.Tags)
	color := h.data.Color
	return h.notes.Add(ctx, NoteInput{
		Title:   &title,
		Content: &ContentData{Type: body.Format, Data: body.Data},
		Tags:    &tags,
		Color:   &color,
	})
}

func (h *Note) update(ctx context.Context, fn func(*core.Note)) error {
	if err := h.notes.patch(ctx, h.data.ID, fn); err != nil {
		return err
	}
	fresh, err := h.notes.coll.Get(ctx, h.data.ID)
	if err != nil {
		return err
	}
	h.data = fresh
	return nil
}
