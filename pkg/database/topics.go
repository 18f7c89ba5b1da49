package database

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

// Topics manages the topics embedded in one notebook. Topics are not rows of
// their own: every change rewrites the whole notebook.
type Topics struct {
	notebooks  *Notebooks
	notebookID string
}

// AddTitles adds topics by title.
func (t *Topics) AddTitles(ctx context.Context, titles ...string) error {
	topics := make([]core.Topic, 0, len(titles))
	for _, title := range titles {
		topics = append(topics, core.Topic{Title: title})
	}
	return t.Add(ctx, topics...)
}

// Add creates or updates topics. Topics are matched by id or title, later
// ones overlaying earlier ones; topics without a title are skipped.
func (t *Topics) Add(ctx context.Context, topics ...core.Topic) error {
	nb, err := t.notebooks.live(ctx, t.notebookID)
	if err != nil {
		return fmt.Errorf("notebook %s: %w", t.notebookID, err)
	}
	now := t.notebooks.now()
	all := cloneTopics(nb.Topics)

	for _, in := range topics {
		in.Title = strings.TrimSpace(in.Title)
		i := slices.IndexFunc(all, func(existing core.Topic) bool {
			return (in.ID != "" && existing.ID == in.ID) || (in.Title != "" && existing.Title == in.Title)
		})
		if i >= 0 {
			cur := all[i]
			if in.Title != "" {
				cur.Title = in.Title
			}
			if in.Notes != nil {
				cur.Notes = slices.Clone(in.Notes)
			}
			cur.DateEdited = now
			cur.DateModified = now
			all[i] = cur
			continue
		}
		if in.Title == "" {
			continue
		}
		topic := core.Topic{
			ID:           in.ID,
			Type:         core.KindTopic,
			NotebookID:   nb.ID,
			Title:        in.Title,
			Notes:        slices.Clone(in.Notes),
			DateCreated:  in.DateCreated,
			DateEdited:   now,
			DateModified: now,
		}
		if topic.ID == "" {
			topic.ID = in.Title
			// A renamed topic keeps its old slug.
			if slices.ContainsFunc(all, func(existing core.Topic) bool { return existing.ID == topic.ID }) {
				topic.ID = core.NewID()
			}
		}
		if topic.Notes == nil {
			topic.Notes = []string{}
		}
		if topic.DateCreated == 0 {
			topic.DateCreated = now
		}
		all = append(all, topic)
	}

	nb.Topics = all
	return t.persist(ctx, nb)
}

// Delete empties every topic of the notebook, detaching notes on both sides,
// then drops the topics in ids and their pins.
func (t *Topics) Delete(ctx context.Context, ids ...string) error {
	nb, err := t.notebooks.live(ctx, t.notebookID)
	if err != nil {
		return fmt.Errorf("notebook %s: %w", t.notebookID, err)
	}
	for _, topic := range nb.Topics {
		h := &Topic{topics: t, data: topic}
		if err := h.Clear(ctx); err != nil {
			return err
		}
	}
	if err := t.notebooks.settings.Unpin(ctx, ids...); err != nil {
		return err
	}

	nb, err = t.notebooks.live(ctx, t.notebookID)
	if err != nil {
		return err
	}
	nb.Topics = slices.DeleteFunc(cloneTopics(nb.Topics), func(topic core.Topic) bool {
		return slices.Contains(ids, topic.ID)
	})
	return t.persist(ctx, nb)
}

// Topic returns a handle by id or title, or nil.
func (t *Topics) Topic(ctx context.Context, idOrTitle string) *Topic {
	nb, err := t.notebooks.live(ctx, t.notebookID)
	if err != nil {
		return nil
	}
	if i := topicIndex(nb.Topics, idOrTitle); i >= 0 {
		return &Topic{topics: t, data: cloneTopics(nb.Topics[i : i+1])[0]}
	}
	return nil
}

// Has reports whether a topic with this id or title exists.
func (t *Topics) Has(ctx context.Context, idOrTitle string) bool {
	return t.Topic(ctx, idOrTitle) != nil
}

func (t *Topics) All(ctx context.Context) []core.Topic {
	nb, err := t.notebooks.live(ctx, t.notebookID)
	if err != nil {
		return nil
	}
	return cloneTopics(nb.Topics)
}

// update applies fn to one topic and persists the notebook.
func (t *Topics) update(ctx context.Context, idOrTitle string, fn func(*core.Topic)) error {
	nb, err := t.notebooks.live(ctx, t.notebookID)
	if err != nil {
		return err
	}
	i := topicIndex(nb.Topics, idOrTitle)
	if i < 0 {
		return fmt.Errorf("%w: %s", core.ErrTopicNotFound, idOrTitle)
	}
	topics := cloneTopics(nb.Topics)
	fn(&topics[i])
	topics[i].DateModified = t.notebooks.now()
	nb.Topics = topics
	return t.persist(ctx, nb)
}

// persist recomputes the note counts and saves the notebook.
func (t *Topics) persist(ctx context.Context, nb core.Notebook) error {
	total := 0
	for i := range nb.Topics {
		nb.Topics[i].TotalNotes = len(nb.Topics[i].Notes)
		total += nb.Topics[i].TotalNotes
	}
	nb.TotalNotes = total
	return t.notebooks.save(ctx, nb)
}

func topicIndex(topics []core.Topic, idOrTitle string) int {
	if i := slices.IndexFunc(topics, func(t core.Topic) bool { return t.ID == idOrTitle }); i >= 0 {
		return i
	}
	return slices.IndexFunc(topics, func(t core.Topic) bool { return t.Title == idOrTitle })
}

// Topic is a handle on one topic of a notebook.
type Topic struct {
	topics *Topics
	data   core.Topic
}

func (h *Topic) Data() core.Topic { return cloneTopics([]core.Topic{h.data})[0] }

func (h *Topic) ID() string { return h.data.ID }

// Add files notes under the topic. Missing and trashed notes are skipped.
func (h *Topic) Add(ctx context.Context, noteIDs ...string) error {
	notes := h.topics.notebooks.notes
	added := make([]string, 0, len(noteIDs))
	for _, id := range noteIDs {
		if notes.Note(ctx, id) == nil {
			continue
		}
		if err := notes.linkTopic(ctx, id, h.topics.notebookID, h.data.ID); err != nil {
			return err
		}
		added = append(added, id)
	}
	if len(added) == 0 {
		return nil
	}
	return h.update(ctx, func(t *core.Topic) { t.Notes = union(t.Notes, added...) })
}

// Delete takes notes out of the topic on both sides.
func (h *Topic) Delete(ctx context.Context, noteIDs ...string) error {
	notes := h.topics.notebooks.notes
	for _, id := range noteIDs {
		if err := notes.unlinkTopic(ctx, id, h.topics.notebookID, h.data.ID); err != nil {
			return err
		}
	}
	return h.update(ctx, func(t *core.Topic) { t.Notes = without(t.Notes, noteIDs...) })
}

// Clear takes every note out of the topic.
func (h *Topic) Clear(ctx context.Context) error {
	if len(h.data.Notes) == 0 {
		return nil
	}
	return h.Delete(ctx, slices.Clone(h.data.Notes)...)
}

func (h *Topic) Has(noteID string) bool { return slices.Contains(h.data.Notes, noteID) }

// Notes returns the live notes of the topic in filing order.
func (h *Topic) Notes(ctx context.Context) []core.Note {
	out := make([]core.Note, 0, len(h.data.Notes))
	for _, id := range h.data.Notes {
		if note := h.topics.notebooks.notes.Note(ctx, id); note != nil {
			out = append(out, note.Data())
		}
	}
	return out
}

func (h *Topic) update(ctx context.Context, fn func(*core.Topic)) error {
	var fresh core.Topic
	err := h.topics.update(ctx, h.data.ID, func(t *core.Topic) {
		fn(t)
		fresh = *t
		fresh.TotalNotes = len(t.Notes)
	})
	if err != nil {
		return err
	}
	h.data = cloneTopics([]core.Topic{fresh})[0]
	return nil
}
