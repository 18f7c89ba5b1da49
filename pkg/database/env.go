package database

import (
	"log/slog"
	"slices"
	"time"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/typed"
)

// Collection names in the store.
const (
	CollectionNotes          = "notes"
	CollectionNotebooks      = "notebooks"
	CollectionTags           = "tags"
	CollectionColors         = "colors"
	CollectionRelations      = "relations"
	CollectionReminders      = "reminders"
	CollectionAttachments    = "attachments"
	CollectionContent        = "content"
	CollectionNoteHistory    = "notehistory"
	CollectionSessionContent = "sessioncontent"
	CollectionSettings       = "settings"
)

// env is what every collection shares.
type env struct {
	bus    *core.Bus
	logger *slog.Logger
	clock  func() time.Time
}

func (e env) now() int64 { return e.clock().UnixMilli() }

func (e env) collectionOptions(extra ...typed.Option) []typed.Option {
	return append([]typed.Option{
		typed.WithBus(e.bus),
		typed.WithLogger(e.logger),
		typed.WithClock(e.clock),
	}, extra...)
}

// union appends the ids of add missing from ids and returns a new slice.
func union(ids []string, add ...string) []string {
	out := slices.Clone(ids)
	for _, id := range add {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// without returns a new slice with every id in drop removed.
func without(ids []string, drop ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(drop, id) {
			out = append(out, id)
		}
	}
	return out
}
