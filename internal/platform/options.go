package platform

import (
	"log/slog"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/database"
)

// Adapter names accepted by WithAdapter and the config file.
const (
	AdapterFS     = "fs"
	AdapterSQLite = "sqlite"
	AdapterMemory = "memory"
)

// options holds the internal configuration used by Open.
type options struct {
	repository   core.Repository
	logger       *slog.Logger
	adapter      string
	format       string
	systemDir    string
	forceTemp    bool
	mustExist    bool
	readOnly     bool
	devSafety    *bool
	errorHandler func(error)
	database     []database.Option
}

// Option configures Open.
type Option func(*options)

func defaultOptions() *options {
	return &options{}
}

// WithLogger sets the logger handed to the adapter and the database.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository injects a storage adapter. The uri and adapter settings
// are ignored when one is given.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithAdapter selects the storage adapter by name: "fs" (default), "sqlite" or "memory".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithFormat selects the file format of the fs adapter: json, yaml or cbor.
func WithFormat(format string) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithSystemDir sets the hidden directory holding caches and the sqlite file.
// Defaults to ".notesnook".
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.systemDir = name
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithMustExist refuses to create the data directory.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithReadOnly makes the fs adapter reject writes. It also bypasses the dev
// sandbox, since nothing can be damaged.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithDevSafety controls the sandbox used under `go run` and `go test`.
// By default the data directory is re-rooted into a temporary directory.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = &enabled
	}
}

// WithWatcherErrorHandler receives errors raised inside the fs watch loop.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithDatabaseOptions passes options through to database.New. They are
// applied after the values read from the config file.
func WithDatabaseOptions(opts ...database.Option) Option {
	return func(o *options) {
		o.database = append(o.database, opts...)
	}
}
