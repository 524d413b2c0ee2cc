package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docsearch/internal/config"
	"docsearch/internal/model"
)

const (
	blobPrefix       = "blobs/"
	metaFilename     = "Original-Filename"
	minMultipartPart = 5 << 20
)

// minioStorage implements BlobStore using an S3-compatible backend (MinIO, AWS S3, etc.).
// Objects are uploaded with multipart parts of partSize bytes; the server reassembles them.
// It is safe for concurrent use by multiple goroutines.
type minioStorage struct {
	client   *minio.Client
	bucket   string
	partSize uint64
}

// NewMinIO creates a new S3-compatible blob store backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func NewMinIO(ctx context.Context, cfg config.MinIOConfig, chunkSize int64) (BlobStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	transport, err := minio.DefaultTransport(cfg.UseSSL)
	if err != nil {
		return nil, fmt.Errorf("create minio transport: %w", err)
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Transport: otelhttp.NewTransport(transport),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Ensure bucket exists.
	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &minioStorage{client: cli, bucket: cfg.Bucket, partSize: partSize(chunkSize)}, nil
}

// partSize clamps the configured chunk size to the S3 multipart minimum.
func partSize(chunkSize int64) uint64 {
	if chunkSize < minMultipartPart {
		return minMultipartPart
	}
	return uint64(chunkSize)
}

func objectKey(id string) string {
	return path.Join(blobPrefix, id)
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

// Upload streams r to object storage as a multipart upload.
func (m *minioStorage) Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (model.Blob, error) {
	id := uuid.NewString()
	info, err := m.client.PutObject(ctx, m.bucket, objectKey(id), r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{metaFilename: filename},
		PartSize:     m.partSize,
	})
	if err != nil {
		return model.Blob{}, err
	}
	return model.Blob{
		ID:          id,
		Filename:    filename,
		ContentType: contentType,
		Size:        info.Size,
		CreatedAt:   time.Now().UTC(), // PutObject does not return LastModified
	}, nil
}

// Download returns the object content as a ReadCloser along with its metadata.
func (m *minioStorage) Download(ctx context.Context, id string) (io.ReadCloser, model.Blob, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, objectKey(id), minio.GetObjectOptions{})
	if err != nil {
		return nil, model.Blob{}, err
	}
	// Stat populates info without reading content into memory.
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		if isNoSuchKey(err) {
			return nil, model.Blob{}, ErrNotFound
		}
		return nil, model.Blob{}, err
	}
	return obj, blobFromObject(st), nil
}

// List walks every object under the blob prefix.
func (m *minioStorage) List(ctx context.Context) ([]model.Blob, error) {
	out := make([]model.Blob, 0)
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:       blobPrefix,
		Recursive:    true,
		WithMetadata: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		out = append(out, blobFromObject(obj))
	}
	return out, nil
}

// Delete removes an object by id.
func (m *minioStorage) Delete(ctx context.Context, id string) error {
	err := m.client.RemoveObject(ctx, m.bucket, objectKey(id), minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return err
	}
	return nil
}

func blobFromObject(o minio.ObjectInfo) model.Blob {
	return model.Blob{
		ID:          strings.TrimPrefix(o.Key, blobPrefix),
		Filename:    objectFilename(o),
		ContentType: o.ContentType,
		Size:        o.Size,
		CreatedAt:   o.LastModified,
	}
}

// objectFilename reads the uploader's filename from user metadata. Depending on the
// call, minio-go reports it with or without the X-Amz-Meta- prefix.
func objectFilename(o minio.ObjectInfo) string {
	if v := o.UserMetadata[metaFilename]; v != "" {
		return v
	}
	if v := o.UserMetadata["X-Amz-Meta-"+metaFilename]; v != "" {
		return v
	}
	if v := o.Metadata.Get("X-Amz-Meta-" + metaFilename); v != "" {
		return v
	}
	return path.Base(o.Key)
}
