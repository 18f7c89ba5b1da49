package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("Creates New File", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "item.json")

		if err := writeFileAtomic(filename, []byte(`{"id":"a"}`), filePerm); err != nil {
			t.Fatalf("writeFileAtomic failed: %v", err)
		}
		got, err := os.ReadFile(filename)
		if err != nil {
			t.Fatalf("Failed to read file: %v", err)
		}
		if string(got) != `{"id":"a"}` {
			t.Errorf("unexpected content %q", got)
		}
	})

	t.Run("Overwrites Existing File", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "item.json")
		if err := os.WriteFile(filename, []byte("initial"), filePerm); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}

		if err := writeFileAtomic(filename, []byte("overwritten"), filePerm); err != nil {
			t.Fatalf("writeFileAtomic failed: %v", err)
		}
		got, _ := os.ReadFile(filename)
		if string(got) != "overwritten" {
			t.Errorf("Expected content 'overwritten', got '%s'", got)
		}
	})

	t.Run("Leaves No Temp Files", func(t *testing.T) {
		dir := t.TempDir()
		if err := writeFileAtomic(filepath.Join(dir, "item.json"), []byte("{}"), filePerm); err != nil {
			t.Fatal(err)
		}
		entries, _ := os.ReadDir(dir)
		for _, e := range entries {
			if isTempFile(e.Name()) {
				t.Errorf("temp file %s left behind", e.Name())
			}
		}
	})

	t.Run("Fails if Directory Missing", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "missing", "item.json")
		if err := writeFileAtomic(filename, []byte("fail"), filePerm); err == nil {
			t.Error("Expected error when directory is missing, got nil")
		}
	})
}
