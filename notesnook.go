package notesnook

import (
	"context"
	"log/slog"

	"github.com/streetwriters/notesnook-sub014/internal/platform"
	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/database"
)

// Database is the set of collections returned by Open.
type Database = database.Database

// Config is the content of the optional notesnook.yaml file.
type Config = platform.Config

// Option configures Open.
type Option = platform.Option

// WithLogger sets the logger for the adapter and the database.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository uses the given adapter instead of resolving one from the path.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithAdapter selects the storage adapter: "fs" (default), "sqlite" or "memory".
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithFormat selects the file format used by the fs adapter.
func WithFormat(format string) Option {
	return platform.WithFormat(format)
}

// WithSystemDir sets the hidden directory name (default ".notesnook").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithForceTemp redirects all data to a temporary directory.
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist fails instead of creating a missing data directory.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithReadOnly opens the fs adapter without write access.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety toggles the temp-dir sandbox used under go run and go test.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithDatabaseOptions forwards options to database.New.
func WithDatabaseOptions(opts ...database.Option) Option {
	return platform.WithDatabaseOptions(opts...)
}

// Open builds and initializes a database stored at path.
func Open(ctx context.Context, path string, opts ...Option) (*Database, error) {
	return platform.Open(ctx, path, opts...)
}

// Close releases the storage adapter behind db.
func Close(db *Database) error {
	return platform.Close(db)
}

// LoadConfig reads notesnook.yaml from dir.
func LoadConfig(dir string) (Config, error) {
	return platform.LoadConfig(dir)
}

// WriteConfig writes notesnook.yaml into dir.
func WriteConfig(dir string, cfg Config) error {
	return platform.WriteConfig(dir, cfg)
}

// ResolvePath applies the dev sandbox rules to a user supplied path.
func ResolvePath(userPath string, forceTemp bool) string {
	return platform.ResolvePath(userPath, forceTemp)
}

// IsDevRun reports whether the binary was built by go run or go test.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindRoot walks up from startDir to the nearest data root.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
