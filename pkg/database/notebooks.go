package database

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/typed"
)

// DefaultTopic is the topic every new notebook starts with.
const DefaultTopic = "General"

// NotebookInput is a local write to a notebook. Nil fields keep their current value.
type NotebookInput struct {
	ID          string
	Title       *string
	Description *string
	Pinned      *bool
	Favorite    *bool
	DateCreated int64

	// Topics are titles created alongside a new notebook, replacing the default topic.
	Topics []string
}

type Notebooks struct {
	env
	coll *typed.Collection[core.Notebook]

	notes    *Notes
	trash    *Trash
	settings *Settings
}

func newNotebooks(e env, repo core.Repository) *Notebooks {
	return &Notebooks{env: e, coll: typed.NewCollection[core.Notebook](CollectionNotebooks, repo, e.collectionOptions()...)}
}

// Add creates or updates a notebook and returns its id.
func (n *Notebooks) Add(ctx context.Context, in NotebookInput) (string, error) {
	id := in.ID
	if id == "" {
		id = core.NewID()
	}
	old, err := n.coll.Get(ctx, id)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return "", err
	}
	exists := err == nil && !old.InTrash()

	var nb core.Notebook
	if exists {
		nb = cloneNotebook(old)
	} else {
		nb = core.Notebook{
			Base:   core.Base{ID: id, Type: core.KindNotebook, DateCreated: in.DateCreated},
			Topics: []core.Topic{},
		}
		if nb.DateCreated == 0 {
			nb.DateCreated = n.now()
		}
	}
	if in.Title != nil {
		nb.Title = strings.TrimSpace(*in.Title)
	}
	if nb.Title == "" {
		return "", core.ErrNotebookTitleRequired
	}
	if in.Description != nil {
		nb.Description = *in.Description
	}
	if in.Favorite != nil {
		nb.Favorite = *in.Favorite
	}
	if in.Pinned != nil {
		if *in.Pinned && !nb.Pinned {
			if err := n.checkPinLimit(ctx, id); err != nil {
				return "", err
			}
		}
		nb.Pinned = *in.Pinned
	}
	nb.DateEdited = n.now()
	if err := n.save(ctx, nb); err != nil {
		return "", err
	}

	if exists {
		return id, nil
	}
	titles := in.Topics
	if len(titles) == 0 {
		titles = []string{DefaultTopic}
	}
	if err := n.topics(id).AddTitles(ctx, titles...); err != nil {
		return "", fmt.Errorf("failed to seed topics of %s: %w", id, err)
	}
	return id, nil
}

func (n *Notebooks) checkPinLimit(ctx context.Context, id string) error {
	pinned, err := n.Pinned(ctx)
	if err != nil {
		return err
	}
	count := 0
	for _, nb := range pinned {
		if nb.ID != id {
			count++
		}
	}
	if count >= MaxPinnedNotebooks {
		return fmt.Errorf("%w: at most %d notebooks can be pinned", core.ErrPinLimit, MaxPinnedNotebooks)
	}
	return nil
}

// Merge stores a synced notebook as is.
func (n *Notebooks) Merge(ctx context.Context, nb core.Notebook) error {
	return n.coll.Add(ctx, nb)
}

func (n *Notebooks) save(ctx context.Context, nb core.Notebook) error {
	nb.DateModified = n.now()
	return n.coll.Add(ctx, nb)
}

// Notebook returns a handle, or nil for missing, deleted or trashed notebooks.
func (n *Notebooks) Notebook(ctx context.Context, id string) *Notebook {
	nb, err := n.live(ctx, id)
	if err != nil {
		return nil
	}
	return &Notebook{notebooks: n, data: nb}
}

func (n *Notebooks) live(ctx context.Context, id string) (core.Notebook, error) {
	nb, err := n.coll.Get(ctx, id)
	if err != nil {
		return core.Notebook{}, err
	}
	if nb.InTrash() || nb.Type != core.KindNotebook {
		return core.Notebook{}, core.ErrNotFound
	}
	return nb, nil
}

// Exists reports whether a notebook is stored, trashed ones included.
func (n *Notebooks) Exists(ctx context.Context, id string) bool {
	_, err := n.coll.Get(ctx, id)
	return err == nil
}

// All returns the live notebooks, pinned first, then newest first.
func (n *Notebooks) All(ctx context.Context) ([]core.Notebook, error) {
	all, err := n.coll.All(ctx)
	if err != nil {
		return nil, err
	}
	out := slices.DeleteFunc(all, func(nb core.Notebook) bool {
		return nb.InTrash() || nb.Type != core.KindNotebook
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		return out[i].DateCreated > out[j].DateCreated
	})
	return out, nil
}

func (n *Notebooks) Pinned(ctx context.Context) ([]core.Notebook, error) {
	all, err := n.All(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(nb core.Notebook) bool { return !nb.Pinned }), nil
}

// Delete empties every topic, unpins the notebook and moves it to the
// trash. Notebooks already in the trash are removed permanently.
func (n *Notebooks) Delete(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		nb, err := n.coll.Get(ctx, id)
		if errors.Is(err, core.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if nb.InTrash() {
			if err := n.trash.Delete(ctx, id); err != nil {
				return err
			}
			continue
		}

		snapshot := cloneNotebook(nb)
		topicIDs := make([]string, 0, len(nb.Topics))
		for _, t := range nb.Topics {
			topicIDs = append(topicIDs, t.ID)
		}
		if err := n.topics(id).Delete(ctx, topicIDs...); err != nil {
			return err
		}
		if err := n.settings.Unpin(ctx, id); err != nil {
			return err
		}
		if err := n.trash.Add(ctx, snapshot); err != nil {
			return err
		}
	}
	return nil
}

// removeFromTopic drops noteID from the notebook side of a topic only.
// Missing notebooks and topics are ignored.
func (n *Notebooks) removeFromTopic(ctx context.Context, notebookID, topicID, noteID string) error {
	err := n.topics(notebookID).update(ctx, topicID, func(t *core.Topic) {
		t.Notes = without(t.Notes, noteID)
	})
	if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrTopicNotFound) {
		return nil
	}
	return err
}

func (n *Notebooks) topics(notebookID string) *Topics {
	return &Topics{notebooks: n, notebookID: notebookID}
}

func cloneNotebook(nb core.Notebook) core.Notebook {
	nb.Topics = cloneTopics(nb.Topics)
	return nb
}

func cloneTopics(topics []core.Topic) []core.Topic {
	if topics == nil {
		return nil
	}
	out := make([]core.Topic, len(topics))
	for i, t := range topics {
		t.Notes = slices.Clone(t.Notes)
		out[i] = t
	}
	return out
}
