package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"

	"docsearch/internal/model"
)

// State is the readiness of a Lazy store.
type State int32

const (
	Uninitialized State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// Opener establishes a backend connection.
type Opener func(ctx context.Context) (BlobStore, error)

// LazyOption configures a Lazy.
type LazyOption func(*Lazy)

// WithBackOff sets the delay policy between failed open attempts. A policy
// returning backoff.Stop ends the attempts and leaves the store Failed.
func WithBackOff(b backoff.BackOff) LazyOption {
	return func(l *Lazy) { l.backoff = b }
}

// Lazy is a BlobStore whose backend is opened in the background. The opener is
// retried until it succeeds or the Start context ends, and until then every
// operation fails fast with ErrNotReady.
type Lazy struct {
	open    Opener
	backoff backoff.BackOff
	state   atomic.Int32
	store   atomic.Pointer[BlobStore]
	once    sync.Once
	done    chan struct{}

	mu  sync.Mutex
	err error
}

// NewLazy wraps open; call Start to begin connecting.
func NewLazy(open Opener, opts ...LazyOption) *Lazy {
	l := &Lazy{open: open, done: make(chan struct{})}
	for _, opt := range opts {
		opt(l)
	}
	if l.backoff == nil {
		eb := backoff.NewExponentialBackOff()
		eb.MaxInterval = 30 * time.Second
		l.backoff = eb
	}
	return l
}

var _ BlobStore = (*Lazy)(nil)

// Start begins opening the backend in a new goroutine. Only the first call has
// any effect.
func (l *Lazy) Start(ctx context.Context) {
	l.once.Do(func() {
		go func() {
			defer close(l.done)
			st, err := backoff.Retry(ctx, func() (BlobStore, error) {
				st, err := l.open(ctx)
				if err != nil {
					l.setErr(err)
					l.state.Store(int32(Failed))
					return nil, err
				}
				return st, nil
			}, backoff.WithBackOff(l.backoff), backoff.WithMaxElapsedTime(0))
			if err != nil {
				return
			}
			l.store.Store(&st)
			l.state.Store(int32(Ready))
		}()
	})
}

// Wait blocks until the store is Ready, the attempts end, or ctx is done. It
// returns nil once Ready and otherwise the most recent open error.
func (l *Lazy) Wait(ctx context.Context) error {
	select {
	case <-l.done:
		if l.State() == Ready {
			return nil
		}
		return l.lastErr()
	case <-ctx.Done():
		if err := l.lastErr(); err != nil {
			return fmt.Errorf("%w: last attempt: %v", ctx.Err(), err)
		}
		return ctx.Err()
	}
}

// State reports the current readiness. Failed means the last attempt failed;
// attempts continue unless the back-off policy stopped them.
func (l *Lazy) State() State {
	return State(l.state.Load())
}

func (l *Lazy) setErr(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

func (l *Lazy) lastErr() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *Lazy) backend() (BlobStore, error) {
	switch l.State() {
	case Ready:
		return *l.store.Load(), nil
	case Failed:
		return nil, fmt.Errorf("%w: %v", ErrNotReady, l.lastErr())
	default:
		return nil, ErrNotReady
	}
}

func (l *Lazy) Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (model.Blob, error) {
	b, err := l.backend()
	if err != nil {
		return model.Blob{}, err
	}
	return b.Upload(ctx, filename, contentType, r, size)
}

func (l *Lazy) Download(ctx context.Context, id string) (io.ReadCloser, model.Blob, error) {
	b, err := l.backend()
	if err != nil {
		return nil, model.Blob{}, err
	}
	return b.Download(ctx, id)
}

func (l *Lazy) List(ctx context.Context) ([]model.Blob, error) {
	b, err := l.backend()
	if err != nil {
		return nil, err
	}
	return b.List(ctx)
}

func (l *Lazy) Delete(ctx context.Context, id string) error {
	b, err := l.backend()
	if err != nil {
		return err
	}
	return b.Delete(ctx, id)
}
