package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"docsearch/internal/extract"
	"docsearch/internal/model"
	"docsearch/internal/repository"
	"docsearch/internal/storage"
)

var (
	ErrIDRequired    = errors.New("id is required")
	ErrInvalidID     = errors.New("id is not a valid identifier")
	ErrQueryRequired = errors.New("query is required")
	ErrNotFound      = errors.New("document not found")
	ErrEmptyUpload   = errors.New("upload is empty")
)

// BlobSearchMode controls whether and how blob-stored files take part in search.
type BlobSearchMode string

const (
	// BlobSearchIndex searches text captured in the blob index at upload time.
	BlobSearchIndex BlobSearchMode = "index"
	// BlobSearchScan downloads and re-extracts every blob on each search.
	BlobSearchScan BlobSearchMode = "scan"
	// BlobSearchOff leaves blobs out of search entirely.
	BlobSearchOff BlobSearchMode = "off"
)

// ParseBlobSearchMode maps a configuration value, defaulting to index.
func ParseBlobSearchMode(s string) BlobSearchMode {
	switch BlobSearchMode(s) {
	case BlobSearchScan, BlobSearchOff:
		return BlobSearchMode(s)
	default:
		return BlobSearchIndex
	}
}

const pdfContentType = "application/pdf"

// UploadResult describes where an upload was persisted.
type UploadResult struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Store      model.Store `json:"store"`
	Size       int64       `json:"size"`
	Searchable bool        `json:"searchable"`
}

// Content is a retrievable file payload. The caller must close Body.
type Content struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// PurgeResult counts what an administrative purge removed.
type PurgeResult struct {
	Documents int64 `json:"documents"`
	Blobs     int   `json:"blobs"`
}

// StorageRouter decides which store receives an upload and merges reads across both.
type StorageRouter interface {
	// Upload extracts text and stores data in exactly one store, chosen by size.
	Upload(ctx context.Context, filename string, data []byte) (*UploadResult, error)

	// Open returns the stored bytes for id from whichever store holds it.
	Open(ctx context.Context, id string) (*Content, error)

	// Search returns document matches followed by blob matches.
	Search(ctx context.Context, query string) ([]model.Summary, error)

	// ListAll returns every stored file, documents first.
	ListAll(ctx context.Context) ([]model.Summary, error)

	// Purge deletes every document and blob.
	Purge(ctx context.Context) (*PurgeResult, error)
}

// RouterConfig tunes a storageRouter.
type RouterConfig struct {
	Threshold  int64
	MatchMode  repository.MatchMode
	BlobSearch BlobSearchMode
}

type storageRouter struct {
	extractor extract.Extractor
	docs      repository.DocumentRepository
	blobs     storage.BlobStore
	index     repository.BlobIndexRepository
	cfg       RouterConfig
	logger    *slog.Logger
}

// NewStorageRouter constructs a StorageRouter. index may be nil unless
// cfg.BlobSearch is BlobSearchIndex.
func NewStorageRouter(
	extractor extract.Extractor,
	docs repository.DocumentRepository,
	blobs storage.BlobStore,
	index repository.BlobIndexRepository,
	cfg RouterConfig,
	logger *slog.Logger,
) StorageRouter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BlobSearch == "" {
		cfg.BlobSearch = BlobSearchIndex
	}
	if cfg.MatchMode == "" {
		cfg.MatchMode = repository.MatchSubstring
	}
	return &storageRouter{
		extractor: extractor,
		docs:      docs,
		blobs:     blobs,
		index:     index,
		cfg:       cfg,
		logger:    logger.With("component", "storage_router"),
	}
}

func (s *storageRouter) blobsSearchable() bool {
	return s.cfg.BlobSearch != BlobSearchOff
}

func (s *storageRouter) Upload(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}

	// Nothing is written unless extraction succeeds.
	text, err := s.extractor.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("extract %q: %w", filename, err)
	}

	size := int64(len(data))
	if size > s.cfg.Threshold {
		return s.uploadBlob(ctx, filename, data, text)
	}

	doc, err := s.docs.Create(ctx, &model.Document{
		ID:        uuid.NewString(),
		Name:      filename,
		Data:      data,
		Text:      text,
		Size:      size,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return &UploadResult{ID: doc.ID, Name: doc.Name, Store: model.StoreDocument, Size: size, Searchable: true}, nil
}

func (s *storageRouter) uploadBlob(ctx context.Context, filename string, data []byte, text string) (*UploadResult, error) {
	// Every stored object passed extraction, so it is recorded as a PDF
	// whatever the client claimed.
	blob, err := s.blobs.Upload(ctx, filename, pdfContentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("upload to blob store: %w", err)
	}

	if s.cfg.BlobSearch == BlobSearchIndex {
		if err := s.index.Put(ctx, blob.ID, filename, text); err != nil {
			// Rollback: an unindexed blob would silently drop out of search.
			if delErr := s.blobs.Delete(ctx, blob.ID); delErr != nil {
				return nil, fmt.Errorf("index save failed: %v; rollback delete failed: %w", err, delErr)
			}
			return nil, fmt.Errorf("index save failed: %w", err)
		}
	}

	return &UploadResult{
		ID:         blob.ID,
		Name:       filename,
		Store:      model.StoreBlob,
		Size:       int64(len(data)),
		Searchable: s.blobsSearchable(),
	}, nil
}

func (s *storageRouter) Open(ctx context.Context, id string) (*Content, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}

	doc, err := s.docs.FindByID(ctx, id)
	switch {
	case err == nil:
		return &Content{
			Name:        doc.Name,
			ContentType: pdfContentType,
			Size:        int64(len(doc.Data)),
			Body:        io.NopCloser(bytes.NewReader(doc.Data)),
		}, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, err
	}

	rc, blob, err := s.blobs.Download(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &Content{Name: blob.Filename, ContentType: pdfContentType, Size: blob.Size, Body: rc}, nil
}

func (s *storageRouter) Search(ctx context.Context, query string) ([]model.Summary, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrQueryRequired
	}

	out, err := s.docs.FindByText(ctx, query, s.cfg.MatchMode)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}

	var blobHits []model.Summary
	switch s.cfg.BlobSearch {
	case BlobSearchIndex:
		blobHits, err = s.index.Search(ctx, query)
	case BlobSearchScan:
		blobHits, err = s.scanBlobs(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("search blobs: %w", err)
	}
	return append(out, blobHits...), nil
}

// scanBlobs downloads and re-extracts each blob in turn. Cost is linear in the
// total size of the blob store.
func (s *storageRouter) scanBlobs(ctx context.Context, query string) ([]model.Summary, error) {
	blobs, err := s.blobs.List(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	out := make([]model.Summary, 0)
	for _, b := range blobs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// A blob deleted or truncated since List is skipped, not fatal.
		rc, _, err := s.blobs.Download(ctx, b.ID)
		if err != nil {
			s.logger.Warn("blob_scan_download_failed", "blob_id", b.ID, "error", err.Error())
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			s.logger.Warn("blob_scan_download_failed", "blob_id", b.ID, "error", err.Error())
			continue
		}
		text, err := s.extractor.Extract(data)
		if err != nil {
			s.logger.Warn("blob_scan_extract_failed", "blob_id", b.ID, "error", err.Error())
			continue
		}
		if strings.Contains(strings.ToLower(text), needle) {
			out = append(out, model.Summary{ID: b.ID, Name: b.Filename, Store: model.StoreBlob, Searchable: true})
		}
	}
	return out, nil
}

func (s *storageRouter) ListAll(ctx context.Context) ([]model.Summary, error) {
	var (
		docs  []model.Summary
		blobs []model.Blob
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docs, err = s.docs.List(gctx)
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		blobs, err = s.blobs.List(gctx)
		if err != nil {
			return fmt.Errorf("list blobs: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.Summary, 0, len(docs)+len(blobs))
	out = append(out, docs...)
	for _, b := range blobs {
		out = append(out, model.Summary{ID: b.ID, Name: b.Filename, Store: model.StoreBlob, Searchable: s.blobsSearchable()})
	}
	return out, nil
}

func (s *storageRouter) Purge(ctx context.Context) (*PurgeResult, error) {
	blobs, err := s.blobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}

	res := &PurgeResult{}
	for _, b := range blobs {
		if err := s.blobs.Delete(ctx, b.ID); err != nil {
			return res, fmt.Errorf("delete blob %s: %w", b.ID, err)
		}
		if s.index != nil {
			if err := s.index.Delete(ctx, b.ID); err != nil {
				return res, fmt.Errorf("delete blob index %s: %w", b.ID, err)
			}
		}
		res.Blobs++
	}

	n, err := s.docs.DeleteAll(ctx)
	if err != nil {
		return res, fmt.Errorf("delete documents: %w", err)
	}
	res.Documents = n

	s.logger.Info("purge_completed", "documents", res.Documents, "blobs", res.Blobs)
	return res, nil
}
