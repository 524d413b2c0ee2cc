package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"docsearch/internal/model"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	blobs map[string]model.Blob
	data  map[string]string
}

func (m *memStore) Upload(_ context.Context, filename, contentType string, r io.Reader, size int64) (model.Blob, error) {
	b, _ := io.ReadAll(r)
	blob := model.Blob{ID: filename, Filename: filename, ContentType: contentType, Size: size}
	m.blobs[blob.ID] = blob
	m.data[blob.ID] = string(b)
	return blob, nil
}

func (m *memStore) Download(_ context.Context, id string) (io.ReadCloser, model.Blob, error) {
	b, ok := m.blobs[id]
	if !ok {
		return nil, model.Blob{}, ErrNotFound
	}
	return io.NopCloser(strings.NewReader(m.data[id])), b, nil
}

func (m *memStore) List(context.Context) ([]model.Blob, error) {
	out := make([]model.Blob, 0, len(m.blobs))
	for _, b := range m.blobs {
		out = append(out, b)
	}
	return out, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	delete(m.blobs, id)
	return nil
}

func TestLazy_NotReadyBeforeStart(t *testing.T) {
	l := NewLazy(func(context.Context) (BlobStore, error) {
		return &memStore{}, nil
	})
	ctx := context.Background()

	assert.Equal(t, Uninitialized, l.State())

	_, err := l.List(ctx)
	assert.ErrorIs(t, err, ErrNotReady)
	_, _, err = l.Download(ctx, "x")
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = l.Upload(ctx, "a.pdf", "application/pdf", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, l.Delete(ctx, "x"), ErrNotReady)
}

func TestLazy_FailsFastWhileOpening(t *testing.T) {
	release := make(chan struct{})
	l := NewLazy(func(context.Context) (BlobStore, error) {
		<-release
		return &memStore{blobs: map[string]model.Blob{}, data: map[string]string{}}, nil
	})
	ctx := context.Background()
	l.Start(ctx)

	start := time.Now()
	_, err := l.List(ctx)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Less(t, time.Since(start), time.Second)

	close(release)
	require.NoError(t, l.Wait(ctx))
	assert.Equal(t, Ready, l.State())

	_, err = l.Upload(ctx, "a.pdf", "application/pdf", strings.NewReader("payload"), 7)
	require.NoError(t, err)

	rc, _, err := l.Download(ctx, "a.pdf")
	require.NoError(t, err)
	got, _ := io.ReadAll(rc)
	assert.Equal(t, "payload", string(got))
}

func TestLazy_Failed(t *testing.T) {
	l := NewLazy(func(context.Context) (BlobStore, error) {
		return nil, errors.New("connection refused")
	}, WithBackOff(&backoff.StopBackOff{}))
	ctx := context.Background()
	l.Start(ctx)
	l.Start(ctx)

	assert.EqualError(t, l.Wait(ctx), "connection refused")
	assert.Equal(t, Failed, l.State())
	assert.Equal(t, "failed", l.State().String())

	_, err := l.List(ctx)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestLazy_RecoversAfterFailedAttempts(t *testing.T) {
	var attempts atomic.Int32
	l := NewLazy(func(context.Context) (BlobStore, error) {
		if attempts.Add(1) < 3 {
			return nil, errors.New("connection refused")
		}
		return &memStore{blobs: map[string]model.Blob{}, data: map[string]string{}}, nil
	}, WithBackOff(backoff.NewConstantBackOff(time.Millisecond)))
	ctx := context.Background()
	l.Start(ctx)

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, l.Wait(waitCtx))
	assert.Equal(t, Ready, l.State())
	assert.Equal(t, int32(3), attempts.Load())

	_, err := l.List(ctx)
	assert.NoError(t, err)
}

func TestLazy_KeepsRetryingPastWaitDeadline(t *testing.T) {
	var attempts atomic.Int32
	l := NewLazy(func(context.Context) (BlobStore, error) {
		attempts.Add(1)
		return nil, errors.New("connection refused")
	}, WithBackOff(backoff.NewConstantBackOff(time.Millisecond)))
	startCtx, stop := context.WithCancel(context.Background())
	defer stop()
	l.Start(startCtx)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, Failed, l.State())

	_, err = l.List(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)

	seen := attempts.Load()
	assert.Eventually(t, func() bool { return attempts.Load() > seen }, time.Second, 5*time.Millisecond)

	stop()
	assert.Eventually(t, func() bool {
		select {
		case <-l.done:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestLazy_WaitHonoursContext(t *testing.T) {
	l := NewLazy(func(ctx context.Context) (BlobStore, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	startCtx, stop := context.WithCancel(context.Background())
	defer stop()
	l.Start(startCtx)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)
}
