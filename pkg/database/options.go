package database

import (
	"log/slog"
	"time"

	"github.com/streetwriters/notesnook-sub014/pkg/cipher"
	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

const (
	// DefaultVersionsLimit is how many history sessions are kept per note.
	DefaultVersionsLimit = 100
	// DefaultTrashRetention is how long items stay in the trash.
	DefaultTrashRetention = 7 * 24 * time.Hour
	// DefaultAttachmentGrace is how long a released attachment survives before it is purged.
	DefaultAttachmentGrace = 7 * 24 * time.Hour
	// MaxPinnedNotebooks caps the number of pinned notebooks.
	MaxPinnedNotebooks = 3
)

type options struct {
	logger          *slog.Logger
	bus             *core.Bus
	now             func() time.Time
	versionsLimit   int
	trashRetention  time.Duration
	attachmentGrace time.Duration
	keys            cipher.KeyProvider
	cipher          cipher.Cipher
}

// Option configures a Database.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		now:             time.Now,
		versionsLimit:   DefaultVersionsLimit,
		trashRetention:  DefaultTrashRetention,
		attachmentGrace: DefaultAttachmentGrace,
		cipher:          cipher.XChaCha{},
	}
}

// WithLogger sets the logger shared by every collection.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithBus injects the event bus. A private bus is created otherwise.
func WithBus(bus *core.Bus) Option {
	return func(o *options) { o.bus = bus }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithVersionsLimit sets how many history sessions are kept per note.
func WithVersionsLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.versionsLimit = n
		}
	}
}

// WithTrashRetention sets how long trashed items survive Trash.Cleanup.
func WithTrashRetention(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.trashRetention = d
		}
	}
}

// WithAttachmentGrace sets how long a released attachment survives Attachments.Cleanup.
func WithAttachmentGrace(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.attachmentGrace = d
		}
	}
}

// WithKeyProvider supplies the user's key for attachment encryption.
func WithKeyProvider(p cipher.KeyProvider) Option {
	return func(o *options) { o.keys = p }
}

// WithCipher replaces the default XChaCha20-Poly1305 cipher.
func WithCipher(c cipher.Cipher) Option {
	return func(o *options) { o.cipher = c }
}
