package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/typed"
)

// SanitizeTag lowercases a tag title and keeps only letters, digits, '_' and '-'.
func SanitizeTag(title string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-':
			return unicode.ToLower(r)
		default:
			return -1
		}
	}, title)
}

func sanitizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = SanitizeTag(t); t != "" {
			out = union(out, t)
		}
	}
	return out
}

// Tags holds either tags or colors; the two behave the same and differ only
// in which note field references them.
type Tags struct {
	env
	kind core.Kind
	coll *typed.Collection[core.Tag]

	settings *Settings
	notes    *Notes
}

func newTags(e env, repo core.Repository, kind core.Kind, name string) *Tags {
	return &Tags{env: e, kind: kind, coll: typed.NewCollection[core.Tag](name, repo, e.collectionOptions()...)}
}

// Add creates the tag or attaches noteIDs to it. Adding an existing tag
// without note ids is rejected with core.ErrDuplicateTag.
func (t *Tags) Add(ctx context.Context, title string, noteIDs ...string) (core.Tag, error) {
	title = SanitizeTag(title)
	if title == "" {
		return core.Tag{}, core.ErrTagTitleRequired
	}
	id := core.MakeID(title)

	tag, err := t.coll.Get(ctx, id)
	switch {
	case err == nil:
		if len(noteIDs) == 0 {
			return core.Tag{}, fmt.Errorf("%w: %s", core.ErrDuplicateTag, title)
		}
	case errors.Is(err, core.ErrNotFound):
		tag = core.Tag{
			Base:    core.Base{ID: id, Type: t.kind, DateCreated: t.now()},
			Title:   title,
			NoteIDs: []string{},
		}
	default:
		return core.Tag{}, err
	}

	tag.NoteIDs = union(tag.NoteIDs, noteIDs...)
	tag.DateModified = t.now()
	if err := t.coll.Add(ctx, tag); err != nil {
		return core.Tag{}, err
	}
	return tag, nil
}

// Merge stores a synced tag as is.
func (t *Tags) Merge(ctx context.Context, tag core.Tag) error {
	return t.coll.Add(ctx, tag)
}

// Tag finds a tag by id or by title.
func (t *Tags) Tag(ctx context.Context, idOrTitle string) (core.Tag, error) {
	tag, err := t.coll.Get(ctx, idOrTitle)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.Tag{}, err
	}
	tag, err = t.coll.Get(ctx, core.MakeID(SanitizeTag(idOrTitle)))
	if errors.Is(err, core.ErrNotFound) {
		return core.Tag{}, fmt.Errorf("%w: %s", core.ErrTagNotFound, idOrTitle)
	}
	return tag, err
}

// All returns every tag ordered by title.
func (t *Tags) All(ctx context.Context) ([]core.Tag, error) {
	all, err := t.coll.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })
	return all, nil
}

// Alias is the display name of a tag: its alias when renamed, its title otherwise.
func (t *Tags) Alias(ctx context.Context, id string) string {
	if alias := t.settings.Alias(ctx, id); alias != "" {
		return alias
	}
	tag, err := t.coll.Get(ctx, id)
	if err != nil {
		return ""
	}
	if tag.Alias != "" {
		return tag.Alias
	}
	return tag.Title
}

// Rename changes the display name. The id, and therefore every reference, stays the same.
func (t *Tags) Rename(ctx context.Context, idOrTitle, alias string) error {
	tag, err := t.Tag(ctx, idOrTitle)
	if err != nil {
		return err
	}
	if err := t.settings.SetAlias(ctx, tag.ID, alias); err != nil {
		return err
	}
	tag.Alias = alias
	tag.DateModified = t.now()
	return t.coll.Add(ctx, tag)
}

// Remove untags every note using the tag, then deletes and unpins it.
// Removing an unknown tag does nothing.
func (t *Tags) Remove(ctx context.Context, idOrTitle string) error {
	tag, err := t.Tag(ctx, idOrTitle)
	if errors.Is(err, core.ErrTagNotFound) {
		t.logger.Debug("tag not found, nothing to remove", "kind", t.kind, "tag", idOrTitle)
		return nil
	}
	if err != nil {
		return err
	}

	for _, noteID := range tag.NoteIDs {
		note := t.notes.Note(ctx, noteID)
		if note == nil {
			continue
		}
		if t.kind == core.KindColor {
			err = note.Uncolor(ctx)
		} else {
			err = note.Untag(ctx, tag.Title)
		}
		if err != nil {
			return err
		}
	}
	if err := t.settings.Unpin(ctx, tag.ID); err != nil {
		return err
	}
	return t.coll.Delete(ctx, tag.ID)
}

// Untag detaches noteIDs. A tag left without notes is deleted and unpinned.
func (t *Tags) Untag(ctx context.Context, idOrTitle string, noteIDs ...string) error {
	tag, err := t.Tag(ctx, idOrTitle)
	if err != nil {
		return err
	}
	tag.NoteIDs = without(tag.NoteIDs, noteIDs...)
	if len(tag.NoteIDs) == 0 {
		if err := t.coll.Delete(ctx, tag.ID); err != nil {
			return err
		}
		return t.settings.Unpin(ctx, tag.ID)
	}
	tag.DateModified = t.now()
	return t.coll.Add(ctx, tag)
}

// Exists reports whether a live tag has this id.
func (t *Tags) Exists(ctx context.Context, id string) bool {
	_, err := t.coll.Get(ctx, id)
	return err == nil
}
