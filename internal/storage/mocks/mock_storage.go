package mocks

import (
	"context"
	"io"

	"docsearch/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (model.Blob, error) {
	args := m.Called(ctx, filename, contentType, r, size)
	if f, ok := args.Get(0).(func(context.Context, string, string, io.Reader, int64) model.Blob); ok {
		return f(ctx, filename, contentType, r, size), args.Error(1)
	}
	return args.Get(0).(model.Blob), args.Error(1)
}

func (m *MockBlobStore) Download(ctx context.Context, id string) (io.ReadCloser, model.Blob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Get(1).(model.Blob), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(model.Blob), args.Error(2)
}

func (m *MockBlobStore) List(ctx context.Context) ([]model.Blob, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Blob), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
