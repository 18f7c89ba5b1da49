// Package memory provides a volatile core.Repository, used by default in tests
// and by the CLI when no data directory is wanted.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

// Repository keeps every collection in a map guarded by a single lock.
type Repository struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

// NewRepository creates an empty store.
func NewRepository() *Repository {
	return &Repository{collections: make(map[string]map[string][]byte)}
}

// Initialize implements core.Repository.
func (r *Repository) Initialize(_ context.Context, collection string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.collections[collection]; !ok {
		r.collections[collection] = make(map[string][]byte)
	}
	return nil
}

// Save stores a JSON copy of the document so callers cannot mutate it afterwards.
func (r *Repository) Save(_ context.Context, collection string, doc core.Document) error {
	data, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", doc.ID, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	items, ok := r.collections[collection]
	if !ok {
		items = make(map[string][]byte)
		r.collections[collection] = items
	}
	items[doc.ID] = data
	return nil
}

// Get implements core.Repository.
func (r *Repository) Get(_ context.Context, collection, id string) (core.Document, error) {
	r.mu.RLock()
	data, ok := r.collections[collection][id]
	r.mu.RUnlock()
	if !ok {
		return core.Document{}, fmt.Errorf("%s/%s: %w", collection, id, core.ErrNotFound)
	}
	return decode(id, data)
}

// Delete implements core.Repository.
func (r *Repository) Delete(_ context.Context, collection, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.collections[collection], id)
	return nil
}

// Clear implements core.Repository.
func (r *Repository) Clear(_ context.Context, collection string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[collection] = make(map[string][]byte)
	return nil
}

// Indices implements core.Indexer.
func (r *Repository) Indices(_ context.Context, collection string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.collections[collection]))
	for id := range r.collections[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ReadMulti implements core.Indexer.
func (r *Repository) ReadMulti(_ context.Context, collection string, ids []string) ([]core.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	docs := make([]core.Document, 0, len(ids))
	for _, id := range ids {
		data, ok := r.collections[collection][id]
		if !ok {
			continue
		}
		doc, err := decode(id, data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Exists implements core.Indexer.
func (r *Repository) Exists(_ context.Context, collection, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.collections[collection][id]
	return ok, nil
}

func decode(id string, data []byte) (core.Document, error) {
	var md core.Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return core.Document{}, fmt.Errorf("failed to decode %s: %w", id, err)
	}
	return core.Document{ID: id, Metadata: md}, nil
}

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Collections map[string]int `json:"collections"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int, len(r.collections))
	for name, items := range r.collections {
		counts[name] = len(items)
	}
	return RepositoryState{Collections: counts}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "memory_repository"
}

var _ core.Repository = (*Repository)(nil)
var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
