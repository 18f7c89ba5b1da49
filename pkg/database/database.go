// Package database wires the note collections together over a
// core.Repository.
//
// Collections reach each other through the handles set up by New; there is
// no package level state, so several databases can live in one process.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/introspection"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

// Database is the root of the data layer.
type Database struct {
	Settings    *Settings
	Content     *ContentStore
	Notes       *Notes
	Notebooks   *Notebooks
	Tags        *Tags
	Colors      *Tags
	Relations   *Relations
	Reminders   *Reminders
	Attachments *Attachments
	Trash       *Trash
	History     *NoteHistory
	Lookup      *Lookup

	env
	repo core.Repository
	opts *options
}

// initializer is the part of typed.Collection that Init needs.
type initializer interface {
	Name() string
	Init(ctx context.Context) error
	Count() int
}

// New builds every collection over repo. Call Init before use.
func New(repo core.Repository, opts ...Option) (*Database, error) {
	if repo == nil {
		return nil, errors.New("database: repository is required")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.bus == nil {
		o.bus = core.NewBus(o.logger)
	}
	e := env{bus: o.bus, logger: o.logger, clock: o.now}

	db := &Database{
		Settings:    newSettings(e, repo),
		Content:     newContentStore(e, repo),
		Notes:       newNotes(e, repo),
		Notebooks:   newNotebooks(e, repo),
		Tags:        newTags(e, repo, core.KindTag, CollectionTags),
		Colors:      newTags(e, repo, core.KindColor, CollectionColors),
		Relations:   newRelations(e, repo),
		Reminders:   newReminders(e, repo),
		Attachments: newAttachments(e, repo, o.keys, o.cipher, o.attachmentGrace),
		Trash:       newTrash(e, o.trashRetention),
		History:     newNoteHistory(e, repo, o.versionsLimit),
		Lookup:      newLookup(e),
		env:         e,
		repo:        repo,
		opts:        o,
	}
	db.wire()
	return db, nil
}

func (db *Database) wire() {
	n := db.Notes
	n.content = db.Content
	n.tags = db.Tags
	n.colors = db.Colors
	n.notebooks = db.Notebooks
	n.trash = db.Trash
	n.history = db.History
	n.attachments = db.Attachments
	n.relations = db.Relations
	n.settings = db.Settings

	db.Notebooks.notes = n
	db.Notebooks.trash = db.Trash
	db.Notebooks.settings = db.Settings

	for _, t := range []*Tags{db.Tags, db.Colors} {
		t.notes = n
		t.settings = db.Settings
	}

	db.Trash.notes = n
	db.Trash.notebooks = db.Notebooks
	db.Trash.settings = db.Settings

	db.History.notes = n
	db.History.content = db.Content

	db.Reminders.relations = db.Relations

	db.Lookup.notes = n
	db.Lookup.notebooks = db.Notebooks

	r := db.Relations
	r.RegisterResolver(core.KindNote, func(ctx context.Context, id string) (core.Entity, bool) {
		if h := n.Note(ctx, id); h != nil {
			return h.Data(), true
		}
		return nil, false
	})
	r.RegisterResolver(core.KindReminder, func(ctx context.Context, id string) (core.Entity, bool) {
		rem, err := db.Reminders.Reminder(ctx, id)
		return rem, err == nil
	})

	r.RegisterExists(core.KindNote, n.Exists)
	r.RegisterExists(core.KindNotebook, db.Notebooks.Exists)
	r.RegisterExists(core.KindTag, db.Tags.Exists)
	r.RegisterExists(core.KindColor, db.Colors.Exists)
	r.RegisterExists(core.KindReminder, func(ctx context.Context, id string) bool {
		_, err := db.Reminders.Reminder(ctx, id)
		return err == nil
	})
	r.RegisterExists(core.KindAttachment, func(ctx context.Context, id string) bool {
		_, err := db.Attachments.Attachment(ctx, id)
		return err == nil
	})
}

func (db *Database) collections() []initializer {
	return []initializer{
		db.Settings.coll,
		db.Content.coll,
		db.Notes.coll,
		db.Notebooks.coll,
		db.Tags.coll,
		db.Colors.coll,
		db.Relations.coll,
		db.Reminders.coll,
		db.Attachments.coll,
		db.History.sessions,
		db.History.contents,
	}
}

// Init loads every collection, then purges expired trash and released attachments.
func (db *Database) Init(ctx context.Context) error {
	for _, c := range db.collections() {
		if err := c.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize %s: %w", c.Name(), err)
		}
	}
	if err := db.Trash.Cleanup(ctx); err != nil {
		db.logger.Warn("trash cleanup failed", "error", err)
	}
	if err := db.Attachments.Cleanup(ctx); err != nil {
		db.logger.Warn("attachment cleanup failed", "error", err)
	}
	db.logger.Debug("database initialized")
	return nil
}

// Materialize loads the deferred collections once keys are available.
func (db *Database) Materialize(ctx context.Context) error {
	return db.History.contents.Materialize(ctx)
}

// Logout wipes every collection.
func (db *Database) Logout(ctx context.Context) {
	db.bus.Publish(ctx, core.Event{Type: core.EventUserLoggedOut})
}

// Bus returns the event bus shared by the collections.
func (db *Database) Bus() *core.Bus { return db.bus }

// Repository returns the store the database was built on.
func (db *Database) Repository() core.Repository { return db.repo }

// DatabaseState exposes internal state for observability.
type DatabaseState struct {
	Collections    map[string]int `json:"collections"`
	VersionsLimit  int            `json:"versions_limit"`
	TrashRetention string         `json:"trash_retention"`
	Bus            any            `json:"bus"`
}

// State implements introspection.Introspectable.
func (db *Database) State() any {
	counts := make(map[string]int)
	for _, c := range db.collections() {
		counts[c.Name()] = c.Count()
	}
	return DatabaseState{
		Collections:    counts,
		VersionsLimit:  db.opts.versionsLimit,
		TrashRetention: db.opts.trashRetention.String(),
		Bus:            db.bus.State(),
	}
}

// ComponentType implements introspection.Component.
func (db *Database) ComponentType() string {
	return "notesnook_database"
}

var _ introspection.Introspectable = (*Database)(nil)
var _ introspection.Component = (*Database)(nil)
