// Package platform opens a Database over one of the storage adapters.
// It owns the process-level concerns: path resolution, the dev sandbox and
// the optional notesnook.yaml file at the data root.
package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/streetwriters/notesnook-sub014/pkg/adapters/fs"
	"github.com/streetwriters/notesnook-sub014/pkg/adapters/memory"
	"github.com/streetwriters/notesnook-sub014/pkg/adapters/sqlite"
	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/database"
)

// SQLiteFile is the database file created inside the system directory.
const SQLiteFile = "notesnook.db"

// Open resolves uri to a storage adapter, builds the database over it and
// initializes every collection.
//
//	db, err := platform.Open(ctx, "./notes", platform.WithAdapter("sqlite"))
func Open(ctx context.Context, uri string, opts ...Option) (*database.Database, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	repo, cfg, err := openRepository(uri, o)
	if err != nil {
		return nil, err
	}

	dbOpts := append(cfg.databaseOptions(), o.database...)
	if o.logger != nil {
		dbOpts = append([]database.Option{database.WithLogger(o.logger)}, dbOpts...)
	}
	db, err := database.New(repo, dbOpts...)
	if err != nil {
		_ = closeRepository(repo)
		return nil, err
	}
	if err := db.Init(ctx); err != nil {
		_ = closeRepository(repo)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

// OpenRepository resolves uri to a storage adapter without building a database.
func OpenRepository(uri string, opts ...Option) (core.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	repo, _, err := openRepository(uri, o)
	return repo, err
}

// Close releases the adapter behind db, if it holds any resources.
func Close(db *database.Database) error {
	return closeRepository(db.Repository())
}

func closeRepository(repo core.Repository) error {
	if c, ok := repo.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func openRepository(uri string, o *options) (core.Repository, Config, error) {
	if o.repository != nil {
		return o.repository, Config{}, nil
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	switch {
	case o.adapter == AdapterMemory:
		return memory.NewRepository(), Config{}, nil
	case o.adapter == AdapterSQLite && uri == ":memory:":
		repo, err := sqlite.NewRepository()
		return repo, Config{}, err
	}

	path := resolveDataPath(uri, o, logger)
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, cfg, err
	}

	adapter := firstNonEmpty(o.adapter, cfg.Adapter, AdapterFS)
	systemDir := firstNonEmpty(o.systemDir, cfg.SystemDir, fs.DefaultSystemDir)

	switch adapter {
	case AdapterMemory:
		return memory.NewRepository(), cfg, nil
	case AdapterSQLite:
		dsn, err := sqlitePath(path, systemDir, o)
		if err != nil {
			return nil, cfg, err
		}
		logger.Debug("opening sqlite store", "dsn", dsn)
		repo, err := sqlite.NewRepositoryWithDSN(dsn)
		return repo, cfg, err
	case AdapterFS:
		logger.Debug("opening filesystem store", "path", path)
		repo, err := fs.NewRepository(fs.Config{
			Path:         path,
			SystemDir:    systemDir,
			Format:       firstNonEmpty(o.format, cfg.Serializer),
			MustExist:    o.mustExist,
			ReadOnly:     o.readOnly,
			Logger:       logger,
			ErrorHandler: o.errorHandler,
		})
		return repo, cfg, err
	default:
		return nil, cfg, fmt.Errorf("unknown adapter %q", adapter)
	}
}

// resolveDataPath applies the dev sandbox. Read-only access skips it since
// nothing can be written.
func resolveDataPath(uri string, o *options, logger *slog.Logger) string {
	safe := true
	if o.devSafety != nil {
		safe = *o.devSafety
	}
	force := o.forceTemp || (safe && IsDevRun() && !o.readOnly)
	path := ResolvePath(uri, force)
	if force && path != filepath.Clean(uri) {
		logger.Warn("running in dev mode, data redirected to a temporary directory", "path", path)
	}
	return path
}

func sqlitePath(path, systemDir string, o *options) (string, error) {
	dir := filepath.Join(path, systemDir)
	if o.mustExist {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("data path does not exist: %s", path)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, SQLiteFile), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
