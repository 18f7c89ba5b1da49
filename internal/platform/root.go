package platform

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/streetwriters/notesnook-sub014/pkg/adapters/fs"
)

// ErrRootNotFound is returned by FindRoot when no data root encloses the start directory.
var ErrRootNotFound = errors.New("data root not found")

// FindRoot looks upwards from startDir for a data root: a directory holding
// the system directory or a notesnook.yaml file.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for dir := abs; ; {
		if hasFile(dir, fs.DefaultSystemDir) || hasFile(dir, ConfigFile) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrRootNotFound
		}
		dir = parent
	}
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
