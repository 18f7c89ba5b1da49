// Package fs implements core.Repository on a directory tree: one directory per
// collection and one file per item.
package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

// DefaultSystemDir holds the index cache and is skipped when scanning.
const DefaultSystemDir = ".notesnook"

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	SystemDir string // e.g. ".notesnook"
	Format    string // json (default), yaml or cbor
	MustExist bool
	ReadOnly  bool
	Logger    *slog.Logger

	// ErrorHandler receives errors raised inside the Watch loop.
	ErrorHandler func(error)
}

// Repository implements core.Repository using the filesystem.
type Repository struct {
	Path       string
	config     Config
	serializer Serializer
	cache      *cache

	mu            sync.RWMutex
	collections   map[string]bool
	watcherActive bool
	lastReconcile *time.Time
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) (*Repository, error) {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	s, err := SerializerFor(config.Format)
	if err != nil {
		return nil, err
	}
	r := &Repository{
		Path:        config.Path,
		config:      config,
		serializer:  s,
		cache:       newCache(config.Path, config.SystemDir),
		collections: make(map[string]bool),
	}
	if err := r.cache.Load(); err != nil {
		config.Logger.Warn("index cache unreadable, starting empty", "error", err)
	}
	return r, nil
}

// Initialize creates the collection directory.
func (r *Repository) Initialize(_ context.Context, collection string) error {
	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", r.Path)
		}
	}
	if !r.config.ReadOnly {
		if err := os.MkdirAll(r.dir(collection), dirPerm); err != nil {
			return fmt.Errorf("failed to create collection directory: %w", err)
		}
	}
	r.mu.Lock()
	r.collections[collection] = true
	r.mu.Unlock()
	return nil
}

// Save writes the item file atomically.
func (r *Repository) Save(_ context.Context, collection string, doc core.Document) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if doc.ID == "" {
		return errors.New("document ID cannot be empty")
	}
	data, err := r.serializer.Serialize(doc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", doc.ID, err)
	}
	if err := os.MkdirAll(r.dir(collection), dirPerm); err != nil {
		return fmt.Errorf("failed to create collection directory: %w", err)
	}
	path := r.file(collection, doc.ID)
	if err := writeFileAtomic(path, data, filePerm); err != nil {
		return err
	}
	if info, err := os.Stat(path); err == nil {
		r.cache.Set(key(collection, doc.ID), &indexEntry{Metadata: doc.Metadata, LastModified: info.ModTime()})
	}
	return nil
}

// Get reads an item, using the cache when the file has not changed.
func (r *Repository) Get(_ context.Context, collection, id string) (core.Document, error) {
	return r.read(collection, id)
}

func (r *Repository) read(collection, id string) (core.Document, error) {
	path := r.file(collection, id)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return core.Document{}, fmt.Errorf("%s/%s: %w", collection, id, core.ErrNotFound)
	}
	if err != nil {
		return core.Document{}, err
	}

	k := key(collection, id)
	if entry, hit := r.cache.Get(k, info.ModTime()); hit {
		return core.Document{ID: id, Metadata: entry.Metadata}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	md, err := r.serializer.Parse(bytes.NewReader(data))
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	r.cache.Set(k, &indexEntry{Metadata: md, LastModified: info.ModTime()})
	return core.Document{ID: id, Metadata: md}, nil
}

// Delete removes the item file.
func (r *Repository) Delete(_ context.Context, collection, id string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := os.Remove(r.file(collection, id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	r.cache.Delete(key(collection, id))
	return nil
}

// Clear removes every item file of the collection.
func (r *Repository) Clear(ctx context.Context, collection string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	ids, err := r.Indices(ctx, collection)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := r.Delete(ctx, collection, id); err != nil {
			return err
		}
	}
	r.cache.Prune(collection, nil)
	return r.cache.Save()
}

// Indices lists the item files of a collection.
func (r *Repository) Indices(_ context.Context, collection string) ([]string, error) {
	dir := r.dir(collection)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	matches, err := doublestar.Glob(os.DirFS(dir), "*"+r.serializer.Ext())
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", collection, err)
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if isTempFile(m) {
			continue
		}
		id, err := r.decodeName(m)
		if err != nil {
			r.config.Logger.Debug("skipping unrecognized file", "collection", collection, "file", m, "error", err)
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ReadMulti reads ids in order, skipping missing ones, then persists the index cache.
func (r *Repository) ReadMulti(_ context.Context, collection string, ids []string) ([]core.Document, error) {
	docs := make([]core.Document, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		doc, err := r.read(collection, id)
		if errors.Is(err, core.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		seen[key(collection, id)] = true
		docs = append(docs, doc)
	}
	if !r.config.ReadOnly {
		if err := r.cache.Save(); err != nil {
			r.config.Logger.Warn("failed to persist index cache", "error", err)
		}
	}
	return docs, nil
}

// Exists implements core.Indexer.
func (r *Repository) Exists(_ context.Context, collection, id string) (bool, error) {
	_, err := os.Stat(r.file(collection, id))
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

// Close flushes the index cache.
func (r *Repository) Close() error {
	if r.config.ReadOnly {
		return nil
	}
	return r.cache.Save()
}

func (r *Repository) dir(collection string) string {
	return filepath.Join(r.Path, collection)
}

func (r *Repository) file(collection, id string) string {
	return filepath.Join(r.dir(collection), url.PathEscape(id)+r.serializer.Ext())
}

func (r *Repository) decodeName(name string) (string, error) {
	return url.PathUnescape(strings.TrimSuffix(filepath.Base(name), r.serializer.Ext()))
}

func key(collection, id string) string {
	return collection + "/" + id
}

var _ core.Repository = (*Repository)(nil)
