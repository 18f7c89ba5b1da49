package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/streetwriters/notesnook-sub014/pkg/database"
)

// ConfigFile is the name of the optional settings file at the data root.
const ConfigFile = "notesnook.yaml"

// Config is the content of notesnook.yaml. Zero values mean "use the default".
type Config struct {
	Adapter            string `yaml:"adapter,omitempty"`
	Serializer         string `yaml:"serializer,omitempty"`
	SystemDir          string `yaml:"systemDir,omitempty"`
	VersionsLimit      int    `yaml:"versionsLimit,omitempty"`
	TrashRetentionDays int    `yaml:"trashRetentionDays,omitempty"`
}

// LoadConfig reads notesnook.yaml from dir. A missing file yields an empty Config.
func LoadConfig(dir string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	return cfg, nil
}

// WriteConfig stores cfg as notesnook.yaml in dir.
func WriteConfig(dir string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ConfigFile), data, 0o644)
}

// databaseOptions turns the file settings into database options.
func (c Config) databaseOptions() []database.Option {
	var opts []database.Option
	if c.VersionsLimit > 0 {
		opts = append(opts, database.WithVersionsLimit(c.VersionsLimit))
	}
	if c.TrashRetentionDays > 0 {
		opts = append(opts, database.WithTrashRetention(time.Duration(c.TrashRetentionDays)*24*time.Hour))
	}
	return opts
}
