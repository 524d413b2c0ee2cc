package postgres

import (
	"context"
	"database/sql"

	"docsearch/internal/model"
	"docsearch/internal/repository"
)

// BlobIndexPostgres stores extracted text of blob-stored files so that
// search does not have to download and re-parse every blob.
type BlobIndexPostgres struct {
	db *sql.DB
}

// NewBlobIndexPostgres creates a new BlobIndexPostgres repository.
func NewBlobIndexPostgres(db *sql.DB) *BlobIndexPostgres {
	return &BlobIndexPostgres{db: db}
}

var _ repository.BlobIndexRepository = (*BlobIndexPostgres)(nil)

func (r *BlobIndexPostgres) Put(ctx context.Context, blobID, name, text string) error {
	const q = `
		INSERT INTO blob_index (blob_id, name, text)
		VALUES ($1, $2, $3)
		ON CONFLICT (blob_id) DO UPDATE SET name = EXCLUDED.name, text = EXCLUDED.text
	`
	_, err := r.db.ExecContext(ctx, q, blobID, name, text)
	return err
}

func (r *BlobIndexPostgres) Search(ctx context.Context, query string) ([]model.Summary, error) {
	const q = `
		SELECT blob_id, name
		FROM blob_index
		WHERE lower(text) LIKE '%' || lower($1) || '%' ESCAPE '\'
		ORDER BY created_at DESC, blob_id DESC
	`
	return querySummaries(ctx, r.db, model.StoreBlob, q, escapeLike(query))
}

func (r *BlobIndexPostgres) Delete(ctx context.Context, blobID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM blob_index WHERE blob_id = $1`, blobID)
	return err
}
