package core

import "context"

// Metadata is the decoded JSON body of a stored item.
type Metadata map[string]any

// Document is a single item of a collection as the store sees it.
type Document struct {
	ID       string
	Metadata Metadata
}

// Repository defines the contract of the indexed store behind every collection.
// Items are addressed by collection name and id; the store knows nothing about
// the entity types layered on top of it.
type Repository interface {
	// Initialize prepares the storage for a collection (directories, tables, ...).
	// Calling it more than once must be harmless.
	Initialize(ctx context.Context, collection string) error

	// Save creates or replaces an item.
	Save(ctx context.Context, collection string, doc Document) error

	// Get returns ErrNotFound when the id is unknown.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Delete removes an item permanently. Deleting a missing id is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Clear drops every item of the collection.
	Clear(ctx context.Context, collection string) error

	Indexer
}

// Indexer gives access to the key index of a collection.
type Indexer interface {
	// Indices returns every id of the collection in ascending order.
	Indices(ctx context.Context, collection string) ([]string, error)

	// ReadMulti returns the documents for ids, skipping unknown ids.
	ReadMulti(ctx context.Context, collection string, ids []string) ([]Document, error)

	// Exists reports whether an id is present, tombstones included.
	Exists(ctx context.Context, collection, id string) (bool, error)
}

// Watchable is implemented by stores that can observe edits made behind their back.
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}
