package database

import (
	"context"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

// Notebook is a handle on a live notebook.
type Notebook struct {
	notebooks *Notebooks
	data      core.Notebook
}

func (h *Notebook) Data() core.Notebook { return cloneNotebook(h.data) }

func (h *Notebook) ID() string { return h.data.ID }

func (h *Notebook) Title() string { return h.data.Title }

// Topics gives access to the topics of this notebook.
func (h *Notebook) Topics() *Topics { return h.notebooks.topics(h.data.ID) }

// Pin toggles the pinned flag, honoring MaxPinnedNotebooks.
func (h *Notebook) Pin(ctx context.Context) error {
	pinned := !h.data.Pinned
	return h.update(ctx, NotebookInput{Pinned: &pinned})
}

func (h *Notebook) Favorite(ctx context.Context) error {
	fav := !h.data.Favorite
	return h.update(ctx, NotebookInput{Favorite: &fav})
}

// Rename changes the title and description.
func (h *Notebook) Rename(ctx context.Context, title, description string) error {
	return h.update(ctx, NotebookInput{Title: &title, Description: &description})
}

func (h *Notebook) update(ctx context.Context, in NotebookInput) error {
	in.ID = h.data.ID
	if _, err := h.notebooks.Add(ctx, in); err != nil {
		return err
	}
	fresh, err := h.notebooks.live(ctx, h.data.ID)
	if err != nil {
		return err
	}
	h.data = fresh
	return nil
}
