package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindRoot(t *testing.T) {
	// base/
	//   data/ (.notesnook)
	//     subdir/
	//       nested/
	//   configured/ (notesnook.yaml)
	//     sub/
	//   empty/
	baseDir := t.TempDir()
	dataDir := filepath.Join(baseDir, "data")
	subDir := filepath.Join(dataDir, "subdir")
	nestedDir := filepath.Join(subDir, "nested")
	configured := filepath.Join(baseDir, "configured")
	configuredSub := filepath.Join(configured, "sub")
	emptyDir := filepath.Join(baseDir, "empty")

	for _, dir := range []string{nestedDir, configuredSub, emptyDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dataDir, ".notesnook"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configured, ConfigFile), []byte("adapter: fs\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		startPath string
		wantRoot  string
		wantErr   bool
	}{
		{name: "Start at Root", startPath: dataDir, wantRoot: dataDir},
		{name: "Start in Subdir", startPath: subDir, wantRoot: dataDir},
		{name: "Start Nested Deeply", startPath: nestedDir, wantRoot: dataDir},
		{name: "Config File Marker", startPath: configuredSub, wantRoot: configured},
		{name: "No Root Found", startPath: emptyDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.startPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("FindRoot() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != "" && filepath.Clean(got) != filepath.Clean(tt.wantRoot) {
				t.Errorf("FindRoot() = %v, want %v", got, tt.wantRoot)
			}
		})
	}
}
