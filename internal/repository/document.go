package repository

import (
	"context"

	"docsearch/internal/model"
)

// DocumentRepository defines data access for inline documents using SQL queries only.
// Implementations hold no business logic.
type DocumentRepository interface {
	// Create inserts a new document record and returns it as stored.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document, including its bytes, by ID.
	// It returns sql.ErrNoRows when no such document exists.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns id and name of every document, newest first.
	List(ctx context.Context) ([]model.Summary, error)

	// FindByText returns documents whose extracted text matches query.
	FindByText(ctx context.Context, query string, mode MatchMode) ([]model.Summary, error)

	// DeleteAll removes every document and reports how many rows were deleted.
	DeleteAll(ctx context.Context) (int64, error)
}

// BlobIndexRepository keeps the extracted text of blob-stored files searchable.
type BlobIndexRepository interface {
	// Put stores the text for a blob, replacing any previous entry.
	Put(ctx context.Context, blobID, name, text string) error

	// Search returns blob entries whose text contains query, case-insensitively.
	Search(ctx context.Context, query string) ([]model.Summary, error)

	// Delete removes the entry for a blob. Missing entries are not an error.
	Delete(ctx context.Context, blobID string) error
}

// DataCursor iterates the data collection. Callers must Close it.
type DataCursor interface {
	// Next advances to the next item, returning false when done or on error.
	Next() bool
	// Item returns the current item.
	Item() model.DataItem
	// Err reports the first error met while iterating.
	Err() error
	Close() error
}

// DataRepository persists the generic data collection.
type DataRepository interface {
	// ReplaceAll atomically swaps the whole collection for items.
	ReplaceAll(ctx context.Context, items []model.DataItem) (int, error)

	// Open runs the collection query and returns a cursor in insertion order.
	// Connection and query failures surface here, before any item is read.
	Open(ctx context.Context) (DataCursor, error)
}
