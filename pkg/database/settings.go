package database

import (
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/typed"
)

const settingsID = "settings"

// Settings stores tag aliases and the pinned shortcuts in a single row.
type Settings struct {
	env
	coll *typed.Collection[core.Settings]
}

func newSettings(e env, repo core.Repository) *Settings {
	return &Settings{env: e, coll: typed.NewCollection[core.Settings](CollectionSettings, repo, e.collectionOptions()...)}
}

func (s *Settings) load(ctx context.Context) (core.Settings, error) {
	st, err := s.coll.Get(ctx, settingsID)
	if errors.Is(err, core.ErrNotFound) {
		return core.Settings{Base: core.Base{ID: settingsID, Type: core.KindSettings, DateCreated: s.now()}}, nil
	}
	return st, err
}

func (s *Settings) save(ctx context.Context, st core.Settings) error {
	st.DateModified = s.now()
	st.DateEdited = st.DateModified
	return s.coll.Add(ctx, st)
}

// Merge stores a synced settings row as is.
func (s *Settings) Merge(ctx context.Context, st core.Settings) error {
	st.ID = settingsID
	return s.coll.Add(ctx, st)
}

// Alias returns the display name stored for id, or "".
func (s *Settings) Alias(ctx context.Context, id string) string {
	st, err := s.load(ctx)
	if err != nil {
		return ""
	}
	return st.Aliases[id]
}

// SetAlias records the display name of a tag or color.
func (s *Settings) SetAlias(ctx context.Context, id, alias string) error {
	st, err := s.load(ctx)
	if err != nil {
		return err
	}
	aliases := maps.Clone(st.Aliases)
	if aliases == nil {
		aliases = make(map[string]string)
	}
	aliases[id] = alias
	st.Aliases = aliases
	return s.save(ctx, st)
}

// Pin adds ref to the shortcuts. Pinning twice is a no-op.
func (s *Settings) Pin(ctx context.Context, ref core.ItemRef) error {
	st, err := s.load(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(st.Pins, ref) {
		return nil
	}
	st.Pins = append(slices.Clone(st.Pins), ref)
	return s.save(ctx, st)
}

// Unpin removes every shortcut pointing at one of ids.
func (s *Settings) Unpin(ctx context.Context, ids ...string) error {
	st, err := s.load(ctx)
	if err != nil {
		return err
	}
	pins := slices.DeleteFunc(slices.Clone(st.Pins), func(p core.ItemRef) bool {
		return slices.Contains(ids, p.ID)
	})
	if len(pins) == len(st.Pins) {
		return nil
	}
	st.Pins = pins
	return s.save(ctx, st)
}

// IsPinned reports whether id is a shortcut.
func (s *Settings) IsPinned(ctx context.Context, id string) bool {
	st, err := s.load(ctx)
	if err != nil {
		return false
	}
	return slices.ContainsFunc(st.Pins, func(p core.ItemRef) bool { return p.ID == id })
}

// Pins lists the shortcuts in pin order.
func (s *Settings) Pins(ctx context.Context) []core.ItemRef {
	st, err := s.load(ctx)
	if err != nil {
		return nil
	}
	return slices.Clone(st.Pins)
}
