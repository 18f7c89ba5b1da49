package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/typed"
)

// ResolveFunc loads the item behind a reference. ok is false when the item
// does not exist or is not live.
type ResolveFunc func(ctx context.Context, id string) (item core.Entity, ok bool)

// ExistsFunc reports whether an item of some kind is stored.
type ExistsFunc func(ctx context.Context, id string) bool

// Relations stores directed edges between items.
type Relations struct {
	env
	coll *typed.Collection[core.Relation]

	mu        sync.RWMutex
	resolvers map[core.Kind]ResolveFunc
	existence map[core.Kind]ExistsFunc
}

func newRelations(e env, repo core.Repository) *Relations {
	return &Relations{
		env:       e,
		coll:      typed.NewCollection[core.Relation](CollectionRelations, repo, e.collectionOptions()...),
		resolvers: make(map[core.Kind]ResolveFunc),
		existence: make(map[core.Kind]ExistsFunc),
	}
}

// RegisterResolver makes kind resolvable by From and To.
func (r *Relations) RegisterResolver(kind core.Kind, fn ResolveFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers[kind] = fn
}

// RegisterExists tells Cleanup how to check items of kind.
func (r *Relations) RegisterExists(kind core.Kind, fn ExistsFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.existence[kind] = fn
}

func relationID(from, to core.ItemRef) string {
	return core.MakeID(from.ID + to.ID + string(from.Type) + string(to.Type))
}

// Add links from to to. Linking the same pair twice keeps a single relation.
func (r *Relations) Add(ctx context.Context, from, to core.ItemRef) error {
	if !from.Type.Valid() || !to.Type.Valid() || from.ID == "" || to.ID == "" {
		return fmt.Errorf("%w: %s -> %s", core.ErrInvalidTarget, from, to)
	}
	id := relationID(from, to)
	if _, err := r.coll.Get(ctx, id); err == nil {
		r.logger.Debug("relation already exists", "from", from.String(), "to", to.String())
		return nil
	} else if !errors.Is(err, core.ErrNotFound) {
		return err
	}
	now := r.now()
	return r.coll.Add(ctx, core.Relation{
		Base: core.Base{ID: id, Type: core.KindRelation, DateCreated: now, DateModified: now},
		From: from,
		To:   to,
	})
}

// Merge stores a synced relation by id.
func (r *Relations) Merge(ctx context.Context, rel core.Relation) error {
	return r.coll.Add(ctx, rel)
}

// From resolves the targets of kind that ref points to.
func (r *Relations) From(ctx context.Context, ref core.ItemRef, kind core.Kind) ([]core.Entity, error) {
	return r.resolve(ctx, kind, func(rel core.Relation) (core.ItemRef, bool) {
		return rel.To, rel.From == ref && rel.To.Type == kind
	})
}

// To resolves the sources of kind that point to ref.
func (r *Relations) To(ctx context.Context, ref core.ItemRef, kind core.Kind) ([]core.Entity, error) {
	return r.resolve(ctx, kind, func(rel core.Relation) (core.ItemRef, bool) {
		return rel.From, rel.To == ref && rel.From.Type == kind
	})
}

func (r *Relations) resolve(ctx context.Context, kind core.Kind, match func(core.Relation) (core.ItemRef, bool)) ([]core.Entity, error) {
	r.mu.RLock()
	fn, ok := r.resolvers[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	all, err := r.coll.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Entity
	for _, rel := range all {
		other, ok := match(rel)
		if !ok {
			continue
		}
		if item, ok := fn(ctx, other.ID); ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// Of returns every relation touching ref.
func (r *Relations) Of(ctx context.Context, ref core.ItemRef) ([]core.Relation, error) {
	all, err := r.coll.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Relation
	for _, rel := range all {
		if rel.From == ref || rel.To == ref {
			out = append(out, rel)
		}
	}
	return out, nil
}

// Unlink removes the relation from -> to, if any.
func (r *Relations) Unlink(ctx context.Context, from, to core.ItemRef) error {
	id := relationID(from, to)
	if _, err := r.coll.Get(ctx, id); errors.Is(err, core.ErrNotFound) {
		return nil
	} else if err != nil {
		return err
	}
	return r.coll.Delete(ctx, id)
}

// UnlinkAll removes every relation touching ref.
func (r *Relations) UnlinkAll(ctx context.Context, ref core.ItemRef) error {
	rels, err := r.Of(ctx, ref)
	if err != nil {
		return err
	}
	for _, rel := range rels {
		if err := r.coll.Delete(ctx, rel.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *Relations) Remove(ctx context.Context, ids ...string) error {
	return r.coll.Delete(ctx, ids...)
}

func (r *Relations) All(ctx context.Context) ([]core.Relation, error) {
	return r.coll.All(ctx)
}

// Cleanup removes relations with an endpoint that no longer exists. Every
// relation is checked even when some removals fail.
func (r *Relations) Cleanup(ctx context.Context) error {
	all, err := r.coll.All(ctx)
	if err != nil {
		return err
	}
	var errs []error
	removed := 0
	for _, rel := range all {
		if r.exists(ctx, rel.From) && r.exists(ctx, rel.To) {
			continue
		}
		if err := r.coll.Delete(ctx, rel.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		r.logger.Info("removed dangling relations", "count", removed)
	}
	return errors.Join(errs...)
}

func (r *Relations) exists(ctx context.Context, ref core.ItemRef) bool {
	r.mu.RLock()
	fn, ok := r.existence[ref.Type]
	r.mu.RUnlock()
	return ok && fn(ctx, ref.ID)
}
