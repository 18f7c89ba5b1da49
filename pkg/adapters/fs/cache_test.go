package fs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

func TestCache(t *testing.T) {
	t.Run("Starts Empty if File Missing", func(t *testing.T) {
		c := newCache(t.TempDir(), ".cache")
		if err := c.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if c.Len() != 0 {
			t.Errorf("Expected empty entries, got %d", c.Len())
		}
	})

	t.Run("Resets on Corrupted JSON", func(t *testing.T) {
		dir := t.TempDir()
		os.MkdirAll(filepath.Join(dir, ".cache"), 0o755)
		os.WriteFile(filepath.Join(dir, ".cache", "index.json"), []byte("{ invalid json"), 0o644)

		c := newCache(dir, ".cache")
		if err := c.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if c.Len() != 0 {
			t.Errorf("Expected empty entries after corruption, got %d", c.Len())
		}
	})

	t.Run("Round Trips and Checks Mtime", func(t *testing.T) {
		dir := t.TempDir()
		mtime := time.Now().Truncate(time.Second)

		c := newCache(dir, ".cache")
		c.Set("notes/a", &indexEntry{Metadata: core.Metadata{"title": "A"}, LastModified: mtime})
		if err := c.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		reloaded := newCache(dir, ".cache")
		if err := reloaded.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		entry, ok := reloaded.Get("notes/a", mtime)
		if !ok {
			t.Fatal("expected cache hit")
		}
		if entry.Metadata["title"] != "A" {
			t.Errorf("Expected title 'A', got %v", entry.Metadata["title"])
		}
		if _, ok := reloaded.Get("notes/a", mtime.Add(time.Second)); ok {
			t.Error("stale entry must miss")
		}
	})

	t.Run("Prune Is Scoped to a Collection", func(t *testing.T) {
		c := newCache(t.TempDir(), ".cache")
		c.Set("notes/a", &indexEntry{})
		c.Set("notes/b", &indexEntry{})
		c.Set("tags/a", &indexEntry{})

		c.Prune("notes", map[string]bool{"notes/b": true})

		if c.Len() != 2 {
			t.Fatalf("expected 2 entries, got %d", c.Len())
		}
		if _, ok := c.index.Entries["tags/a"]; !ok {
			t.Error("other collections must be kept")
		}
	})
}
