// Package sqlite provides a core.Repository backed by a single SQLite table.
// Uses ncruces/go-sqlite3/driver which provides a database/sql interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/introspection"
	_ "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	_ "github.com/ncruces/go-sqlite3/driver"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    data TEXT NOT NULL,
    PRIMARY KEY (collection, id)
);

CREATE TABLE IF NOT EXISTS collections (
    name TEXT PRIMARY KEY
);
`

// Repository stores every collection in the items table.
type Repository struct {
	mu  sync.RWMutex
	db  *sql.DB
	dsn string
}

// NewRepository opens an in-memory database.
func NewRepository() (*Repository, error) {
	return NewRepositoryWithDSN(":memory:")
}

// NewRepositoryWithDSN opens a database by data source name.
// Use ":memory:" for in-memory or a file path for persistent storage.
func NewRepositoryWithDSN(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dsn == ":memory:" {
		// Every connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Repository{db: db, dsn: dsn}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Initialize registers the collection name.
func (r *Repository) Initialize(ctx context.Context, collection string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO collections (name) VALUES (?)`, collection)
	return err
}

// Save upserts the item as JSON text.
func (r *Repository) Save(ctx context.Context, collection string, doc core.Document) error {
	data, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", doc.ID, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO items (collection, id, data) VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data
	`, collection, doc.ID, string(data))
	return err
}

// Get implements core.Repository.
func (r *Repository) Get(ctx context.Context, collection, id string) (core.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var data string
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM items WHERE collection = ? AND id = ?`, collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Document{}, fmt.Errorf("%s/%s: %w", collection, id, core.ErrNotFound)
	}
	if err != nil {
		return core.Document{}, err
	}
	return decode(id, data)
}

// Delete implements core.Repository.
func (r *Repository) Delete(ctx context.Context, collection, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE collection = ? AND id = ?`, collection, id)
	return err
}

// Clear implements core.Repository.
func (r *Repository) Clear(ctx context.Context, collection string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE collection = ?`, collection)
	return err
}

// Indices implements core.Indexer.
func (r *Repository) Indices(ctx context.Context, collection string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM items WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReadMulti implements core.Indexer. Results follow the order of ids.
func (r *Repository) ReadMulti(ctx context.Context, collection string, ids []string) ([]core.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	byID := make(map[string]string, len(ids))
	const batch = 500
	for start := 0; start < len(ids); start += batch {
		end := min(start+batch, len(ids))
		chunk := ids[start:end]

		args := make([]any, 0, len(chunk)+1)
		args = append(args, collection)
		for _, id := range chunk {
			args = append(args, id)
		}
		query := `SELECT id, data FROM items WHERE collection = ? AND id IN (?` +
			strings.Repeat(", ?", len(chunk)-1) + `)`

		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var id, data string
			if err := rows.Scan(&id, &data); err != nil {
				rows.Close()
				return nil, err
			}
			byID[id] = data
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}

	docs := make([]core.Document, 0, len(byID))
	for _, id := range ids {
		data, ok := byID[id]
		if !ok {
			continue
		}
		doc, err := decode(id, data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Exists implements core.Indexer.
func (r *Repository) Exists(ctx context.Context, collection, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM items WHERE collection = ? AND id = ?`, collection, id).Scan(&n)
	return n > 0, err
}

func decode(id, data string) (core.Document, error) {
	var md core.Metadata
	if err := json.Unmarshal([]byte(data), &md); err != nil {
		return core.Document{}, fmt.Errorf("failed to decode %s: %w", id, err)
	}
	return core.Document{ID: id, Metadata: md}, nil
}

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	DSN         string         `json:"dsn"`
	Collections map[string]int `json:"collections"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	rows, err := r.db.Query(`
		SELECT c.name, COUNT(i.id) FROM collections c
		LEFT JOIN items i ON i.collection = c.name
		GROUP BY c.name
	`)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var name string
			var n int
			if rows.Scan(&name, &n) == nil {
				counts[name] = n
			}
		}
	}
	return RepositoryState{DSN: r.dsn, Collections: counts}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "sqlite_repository"
}

var _ core.Repository = (*Repository)(nil)
var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
