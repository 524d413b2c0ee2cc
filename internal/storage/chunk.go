package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"docsearch/internal/model"
)

// DefaultChunkSize matches the usual chunked-file convention of 255 KiB per chunk.
const DefaultChunkSize = 255 << 10

// chunkStorage implements BlobStore on PostgreSQL: one row in blobs per file and
// one row in blob_chunks per fixed-size slice, numbered from zero.
type chunkStorage struct {
	db        *sql.DB
	chunkSize int
}

// NewChunkStore creates a PostgreSQL-backed chunked blob store.
func NewChunkStore(db *sql.DB, chunkSize int64) BlobStore {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &chunkStorage{db: db, chunkSize: int(chunkSize)}
}

// Upload splits r into chunks and writes them with the metadata row in one transaction.
func (s *chunkStorage) Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (blob model.Blob, err error) {
	blob = model.Blob{
		ID:          uuid.NewString(),
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		CreatedAt:   time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Blob{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const qBlob = `
		INSERT INTO blobs (id, filename, content_type, size, chunk_size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err = tx.ExecContext(ctx, qBlob, blob.ID, filename, contentType, size, s.chunkSize, blob.CreatedAt); err != nil {
		return model.Blob{}, fmt.Errorf("insert blob: %w", err)
	}

	const qChunk = `INSERT INTO blob_chunks (blob_id, n, data) VALUES ($1, $2, $3)`
	buf := make([]byte, s.chunkSize)
	var total int64
	for n := 0; ; n++ {
		read, rerr := io.ReadFull(r, buf)
		if read > 0 {
			if _, err = tx.ExecContext(ctx, qChunk, blob.ID, n, buf[:read]); err != nil {
				return model.Blob{}, fmt.Errorf("insert chunk %d: %w", n, err)
			}
			total += int64(read)
		}
		if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
			break
		}
		if rerr != nil {
			err = fmt.Errorf("read payload: %w", rerr)
			return model.Blob{}, err
		}
	}

	if total != size {
		err = fmt.Errorf("payload size mismatch: read %d of %d bytes", total, size)
		return model.Blob{}, err
	}

	if err = tx.Commit(); err != nil {
		return model.Blob{}, err
	}
	return blob, nil
}

// Download returns a reader that streams chunks in order.
func (s *chunkStorage) Download(ctx context.Context, id string) (io.ReadCloser, model.Blob, error) {
	const qBlob = `
		SELECT id, filename, content_type, size, created_at
		FROM blobs
		WHERE id = $1
	`
	var b model.Blob
	if err := s.db.QueryRowContext(ctx, qBlob, id).Scan(&b.ID, &b.Filename, &b.ContentType, &b.Size, &b.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.Blob{}, ErrNotFound
		}
		return nil, model.Blob{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT data FROM blob_chunks WHERE blob_id = $1 ORDER BY n`, id)
	if err != nil {
		return nil, model.Blob{}, err
	}
	return &chunkReader{rows: rows}, b, nil
}

// List returns metadata of every blob, newest first.
func (s *chunkStorage) List(ctx context.Context) ([]model.Blob, error) {
	const q = `
		SELECT id, filename, content_type, size, created_at
		FROM blobs
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Blob, 0)
	for rows.Next() {
		var b model.Blob
		if err := rows.Scan(&b.ID, &b.Filename, &b.ContentType, &b.Size, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Delete removes the blob row; chunks go with it through ON DELETE CASCADE.
func (s *chunkStorage) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE id = $1`, id)
	return err
}

// chunkReader concatenates chunk rows into one byte stream.
type chunkReader struct {
	rows *sql.Rows
	cur  []byte
	done bool
}

func (c *chunkReader) Read(p []byte) (int, error) {
	for len(c.cur) == 0 {
		if c.done {
			return 0, io.EOF
		}
		if !c.rows.Next() {
			c.done = true
			if err := c.rows.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		if err := c.rows.Scan(&c.cur); err != nil {
			return 0, err
		}
	}
	n := copy(p, c.cur)
	c.cur = c.cur[n:]
	return n, nil
}

func (c *chunkReader) Close() error {
	return c.rows.Close()
}
