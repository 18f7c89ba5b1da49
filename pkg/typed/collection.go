// Package typed layers entity types and caching over a core.Repository.
package typed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

type config struct {
	bus      *core.Bus
	logger   *slog.Logger
	deferred bool
	now      func() time.Time
}

// Option configures a Collection.
type Option func(*config)

// WithBus publishes lifecycle events on bus and wipes the collection on logout.
func WithBus(bus *core.Bus) Option {
	return func(c *config) { c.bus = bus }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// Deferred makes Init load only the key index. Items are read on demand until
// Materialize is called, which lets encrypted collections wait for their keys.
func Deferred() Option {
	return func(c *config) { c.deferred = true }
}

// WithClock overrides time.Now for tombstone timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// Collection is a cached, typed view of one collection in a core.Repository.
type Collection[T core.Entity] struct {
	name string
	repo core.Repository
	cfg  config

	mu           sync.RWMutex
	initialized  bool
	materialized bool
	indices      map[string]struct{}
	cache        map[string]T
}

// NewCollection creates the typed wrapper. Nothing is read until Init.
func NewCollection[T core.Entity](name string, repo core.Repository, opts ...Option) *Collection[T] {
	cfg := config{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	c := &Collection[T]{
		name:    name,
		repo:    repo,
		cfg:     cfg,
		indices: make(map[string]struct{}),
		cache:   make(map[string]T),
	}
	if cfg.bus != nil {
		cfg.bus.Subscribe(core.EventUserLoggedOut, func(ctx context.Context, _ core.Event) {
			if err := c.Clear(ctx); err != nil {
				c.cfg.logger.Error("failed to clear collection on logout", "collection", name, "error", err)
			}
		})
	}
	return c
}

// Name returns the collection name used in the store.
func (c *Collection[T]) Name() string { return c.name }

// Init prepares the store and loads the collection. Only the first call does any work.
func (c *Collection[T]) Init(ctx context.Context) error {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return nil
	}
	if err := c.repo.Initialize(ctx, c.name); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to initialize %s: %w", c.name, err)
	}
	ids, err := c.repo.Indices(ctx, c.name)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to load %s index: %w", c.name, err)
	}
	for _, id := range ids {
		c.indices[id] = struct{}{}
	}
	c.initialized = true
	c.mu.Unlock()

	if !c.cfg.deferred {
		if err := c.Materialize(ctx); err != nil {
			return err
		}
	}

	c.cfg.logger.Debug("collection initialized", "collection", c.name, "items", len(ids), "deferred", c.cfg.deferred)
	if c.cfg.bus != nil {
		c.cfg.bus.Publish(ctx, core.Event{Type: core.EventCollectionInitialized, Collection: c.name})
	}
	return nil
}

// Materialize reads every indexed item into the cache.
func (c *Collection[T]) Materialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.materialized {
		return nil
	}
	docs, err := c.repo.ReadMulti(ctx, c.name, c.sortedIndices())
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.name, err)
	}
	for _, doc := range docs {
		item, err := fromDocument[T](doc)
		if err != nil {
			return fmt.Errorf("failed to process %s/%s: %w", c.name, doc.ID, err)
		}
		c.cache[doc.ID] = item
	}
	c.materialized = true
	return nil
}

// Initialized reports whether Init has run.
func (c *Collection[T]) Initialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

// Add creates or replaces an item.
func (c *Collection[T]) Add(ctx context.Context, item T) error {
	id := item.Meta().ID
	if id == "" {
		return errors.New("item id cannot be empty")
	}
	doc, err := toDocument(item)
	if err != nil {
		return err
	}
	if err := c.repo.Save(ctx, c.name, doc); err != nil {
		return fmt.Errorf("failed to save %s/%s: %w", c.name, id, err)
	}

	c.mu.Lock()
	c.indices[id] = struct{}{}
	c.cache[id] = item
	c.mu.Unlock()

	c.publish(ctx, core.EventItemChanged, id)
	return nil
}

// Raw returns the stored row, tombstones included.
func (c *Collection[T]) Raw(ctx context.Context, id string) (T, error) {
	c.mu.RLock()
	item, ok := c.cache[id]
	_, indexed := c.indices[id]
	materialized := c.materialized
	c.mu.RUnlock()

	if ok {
		return item, nil
	}
	var zero T
	if materialized && !indexed {
		return zero, core.ErrNotFound
	}

	doc, err := c.repo.Get(ctx, c.name, id)
	if err != nil {
		return zero, err
	}
	item, err = fromDocument[T](doc)
	if err != nil {
		return zero, err
	}
	c.mu.Lock()
	c.indices[id] = struct{}{}
	c.cache[id] = item
	c.mu.Unlock()
	return item, nil
}

// Get returns a live item. Tombstones report core.ErrNotFound.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	item, err := c.Raw(ctx, id)
	if err != nil {
		return item, err
	}
	if item.Meta().Tombstone() {
		var zero T
		return zero, core.ErrNotFound
	}
	return item, nil
}

// GetMany returns the live items among ids, in the order given.
func (c *Collection[T]) GetMany(ctx context.Context, ids []string) ([]T, error) {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		item, err := c.Get(ctx, id)
		if errors.Is(err, core.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// All returns every live item ordered by id.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	c.mu.RLock()
	ids := c.sortedIndices()
	c.mu.RUnlock()
	return c.GetMany(ctx, ids)
}

// Indices returns every id, tombstones included, in ascending order.
func (c *Collection[T]) Indices() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sortedIndices()
}

// Exists reports whether an id is present, tombstones included.
func (c *Collection[T]) Exists(ctx context.Context, id string) (bool, error) {
	c.mu.RLock()
	_, ok := c.indices[id]
	initialized := c.initialized
	c.mu.RUnlock()
	if ok || initialized {
		return ok, nil
	}
	return c.repo.Exists(ctx, c.name, id)
}

// Count returns the number of indexed rows.
func (c *Collection[T]) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.indices)
}

// Remove deletes items permanently.
func (c *Collection[T]) Remove(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if err := c.repo.Delete(ctx, c.name, id); err != nil {
			return fmt.Errorf("failed to remove %s/%s: %w", c.name, id, err)
		}
		c.mu.Lock()
		delete(c.indices, id)
		delete(c.cache, id)
		c.mu.Unlock()
		c.publish(ctx, core.EventItemRemoved, id)
	}
	return nil
}

// Delete replaces items with a tombstone so the deletion can be synced.
func (c *Collection[T]) Delete(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		doc := core.Document{ID: id, Metadata: core.Metadata{
			"id":           id,
			"deleted":      true,
			"dateModified": c.cfg.now().UnixMilli(),
		}}
		if err := c.repo.Save(ctx, c.name, doc); err != nil {
			return fmt.Errorf("failed to delete %s/%s: %w", c.name, id, err)
		}
		item, err := fromDocument[T](doc)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.indices[id] = struct{}{}
		c.cache[id] = item
		c.mu.Unlock()
		c.publish(ctx, core.EventItemRemoved, id)
	}
	return nil
}

// Clear drops every item of the collection.
func (c *Collection[T]) Clear(ctx context.Context) error {
	if err := c.repo.Clear(ctx, c.name); err != nil {
		return fmt.Errorf("failed to clear %s: %w", c.name, err)
	}
	c.mu.Lock()
	c.indices = make(map[string]struct{})
	c.cache = make(map[string]T)
	c.mu.Unlock()
	return nil
}

func (c *Collection[T]) publish(ctx context.Context, t core.EventType, id string) {
	if c.cfg.bus == nil {
		return
	}
	c.cfg.bus.Publish(ctx, core.Event{Type: t, Collection: c.name, ID: id})
}

// sortedIndices must be called with c.mu held.
func (c *Collection[T]) sortedIndices() []string {
	ids := make([]string, 0, len(c.indices))
	for id := range c.indices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
