package storage

import (
	"context"
	"errors"
	"io"

	"docsearch/internal/model"
)

// Package storage holds the large-file blob store: backends that persist a
// payload as ordered chunks and reassemble it on read.

var (
	// ErrNotFound is returned when no blob exists for an id.
	ErrNotFound = errors.New("blob not found")
	// ErrNotReady is returned while the store connection is still being established.
	ErrNotReady = errors.New("blob store not ready")
)

// BlobStore persists large binary payloads outside the document table.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Upload writes r as a new blob and returns its metadata, including the assigned id.
	// size is the exact payload length.
	Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (model.Blob, error)
	// Download returns the reconstructed payload. The caller must close the reader.
	Download(ctx context.Context, id string) (io.ReadCloser, model.Blob, error)
	// List returns metadata for every stored blob.
	List(ctx context.Context) ([]model.Blob, error)
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, id string) error
}
