package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsDevRun(t *testing.T) {
	// Test binaries end in .test, so this must always hold here.
	if !IsDevRun() {
		t.Error("IsDevRun() = false inside go test")
	}
}

func TestResolvePath(t *testing.T) {
	tmp := os.TempDir()
	devBase := filepath.Join(tmp, "notesnook-dev")
	insideTemp := filepath.Join(tmp, "already-temp", "data")

	tests := []struct {
		name      string
		path      string
		forceTemp bool
		want      string
	}{
		{name: "Empty Path", path: "", want: "."},
		{name: "Relative Path", path: "notes", want: "notes"},
		{name: "Forced Empty", path: "", forceTemp: true, want: filepath.Join(devBase, "default")},
		{name: "Forced Relative", path: "my-notes", forceTemp: true, want: filepath.Join(devBase, "my-notes")},
		{name: "Forced Absolute", path: "/home/user/notes", forceTemp: true, want: filepath.Join(devBase, "notes")},
		{name: "Forced Already Temp", path: insideTemp, forceTemp: true, want: insideTemp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolvePath(tt.path, tt.forceTemp); got != tt.want {
				t.Errorf("ResolvePath(%q, %v) = %q, want %q", tt.path, tt.forceTemp, got, tt.want)
			}
		})
	}
}
