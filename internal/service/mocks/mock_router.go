package mocks

import (
	"context"

	"docsearch/internal/model"
	"docsearch/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockStorageRouter struct {
	mock.Mock
}

func (m *MockStorageRouter) Upload(ctx context.Context, filename string, data []byte) (*service.UploadResult, error) {
	args := m.Called(ctx, filename, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadResult), args.Error(1)
}

func (m *MockStorageRouter) Open(ctx context.Context, id string) (*service.Content, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Content), args.Error(1)
}

func (m *MockStorageRouter) Search(ctx context.Context, query string) ([]model.Summary, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Summary), args.Error(1)
}

func (m *MockStorageRouter) ListAll(ctx context.Context) ([]model.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Summary), args.Error(1)
}

func (m *MockStorageRouter) Purge(ctx context.Context) (*service.PurgeResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PurgeResult), args.Error(1)
}
