package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

// indexEntry is the parsed form of one item file.
type indexEntry struct {
	Metadata     core.Metadata `json:"metadata"`
	LastModified time.Time     `json:"lastModified"`
}

// index represents the persistent cache state.
type index struct {
	Version int                    `json:"version"`
	Entries map[string]*indexEntry `json:"entries"` // Key is "collection/id"
	dirty   bool
	mu      sync.RWMutex
}

// cache remembers parsed items keyed by their file mtime, so reloading a large
// collection only parses the files that changed since the last run.
type cache struct {
	Path  string
	index *index
}

func newCache(root, systemDir string) *cache {
	return &cache{
		Path: filepath.Join(root, systemDir, "index.json"),
		index: &index{
			Version: 1,
			Entries: make(map[string]*indexEntry),
		},
	}
}

// Load reads the cache from disk. A missing or corrupt file yields an empty cache.
func (c *cache) Load() error {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	data, err := os.ReadFile(c.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}
	if err := json.Unmarshal(data, c.index); err != nil || c.index.Entries == nil {
		c.index.Entries = make(map[string]*indexEntry)
	}
	c.index.dirty = false
	return nil
}

// Save persists the cache if it changed.
func (c *cache) Save() error {
	c.index.mu.RLock()
	if !c.index.dirty {
		c.index.mu.RUnlock()
		return nil
	}
	data, err := json.Marshal(c.index)
	c.index.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), dirPerm); err != nil {
		return err
	}
	if err := writeFileAtomic(c.Path, data, filePerm); err != nil {
		return err
	}

	c.index.mu.Lock()
	c.index.dirty = false
	c.index.mu.Unlock()
	return nil
}

// Get returns the entry when it was recorded for the same mtime.
func (c *cache) Get(key string, mtime time.Time) (*indexEntry, bool) {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()

	entry, ok := c.index.Entries[key]
	if !ok || !entry.LastModified.Equal(mtime) {
		return nil, false
	}
	return entry, true
}

func (c *cache) Set(key string, entry *indexEntry) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()
	c.index.Entries[key] = entry
	c.index.dirty = true
}

func (c *cache) Delete(key string) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()
	if _, ok := c.index.Entries[key]; ok {
		delete(c.index.Entries, key)
		c.index.dirty = true
	}
}

// Prune drops the entries of collection that are not in keep.
func (c *cache) Prune(collection string, keep map[string]bool) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()
	prefix := collection + "/"
	for key := range c.index.Entries {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix && !keep[key] {
			delete(c.index.Entries, key)
			c.index.dirty = true
		}
	}
}

func (c *cache) Len() int {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()
	return len(c.index.Entries)
}
