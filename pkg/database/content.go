package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/streetwriters/notesnook-sub014/pkg/content"
	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/typed"
)

// ContentData is a note body as supplied by the editor.
type ContentData struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// ContentStore keeps note bodies apart from the note rows.
type ContentStore struct {
	env
	coll *typed.Collection[core.Content]
}

func newContentStore(e env, repo core.Repository) *ContentStore {
	return &ContentStore{env: e, coll: typed.NewCollection[core.Content](CollectionContent, repo, e.collectionOptions()...)}
}

// Add creates or updates a body and returns its id. Locked bodies hold
// ciphertext and are not inspected beyond their format.
func (c *ContentStore) Add(ctx context.Context, item core.Content) (string, error) {
	if err := content.Validate(item.Format); err != nil {
		return "", err
	}
	if item.ID == "" {
		item.ID = core.NewID()
	}
	if old, err := c.coll.Get(ctx, item.ID); err == nil {
		item.DateCreated = old.DateCreated
		if item.NoteID == "" {
			item.NoteID = old.NoteID
		}
	} else if !errors.Is(err, core.ErrNotFound) {
		return "", err
	}
	now := c.now()
	item.Type = core.KindContent
	if item.DateCreated == 0 {
		item.DateCreated = now
	}
	if item.DateEdited == 0 {
		item.DateEdited = now
	}
	item.DateModified = now
	if err := c.coll.Add(ctx, item); err != nil {
		return "", err
	}
	return item.ID, nil
}

// Merge stores a synced body as is.
func (c *ContentStore) Merge(ctx context.Context, item core.Content) error {
	return c.coll.Add(ctx, item)
}

// Get returns a live body.
func (c *ContentStore) Get(ctx context.Context, id string) (core.Content, error) {
	return c.coll.Get(ctx, id)
}

// Raw returns the stored row, deletion markers included.
func (c *ContentStore) Raw(ctx context.Context, id string) (core.Content, error) {
	return c.coll.Raw(ctx, id)
}

// Parsed returns the body ready for text extraction.
func (c *ContentStore) Parsed(ctx context.Context, id string) (content.Content, error) {
	item, err := c.coll.Get(ctx, id)
	if err != nil {
		return content.Content{}, err
	}
	if item.Locked {
		return content.Content{}, fmt.Errorf("content %s is locked", id)
	}
	return content.New(item.Format, item.Data)
}

// Remove deletes bodies, leaving a deletion marker for sync.
func (c *ContentStore) Remove(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if err := c.coll.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// MarkConflicted flags a body whose local and remote versions diverged.
func (c *ContentStore) MarkConflicted(ctx context.Context, id string) error {
	return c.update(ctx, id, func(item *core.Content) {
		item.Conflicted = true
	})
}

// Resolve clears the conflict flag.
func (c *ContentStore) Resolve(ctx context.Context, id string) error {
	return c.update(ctx, id, func(item *core.Content) {
		item.Conflicted = false
		item.DateResolved = c.now()
	})
}

func (c *ContentStore) update(ctx context.Context, id string, fn func(*core.Content)) error {
	item, err := c.coll.Get(ctx, id)
	if err != nil {
		return err
	}
	fn(&item)
	item.DateModified = c.now()
	return c.coll.Add(ctx, item)
}
