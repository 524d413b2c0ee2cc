package mocks

import (
	"context"

	"docsearch/internal/model"
	"docsearch/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context) ([]model.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Summary), args.Error(1)
}

func (m *MockDocumentRepository) FindByText(ctx context.Context, query string, mode repository.MatchMode) ([]model.Summary, error) {
	args := m.Called(ctx, query, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Summary), args.Error(1)
}

func (m *MockDocumentRepository) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockBlobIndexRepository struct {
	mock.Mock
}

func (m *MockBlobIndexRepository) Put(ctx context.Context, blobID, name, text string) error {
	args := m.Called(ctx, blobID, name, text)
	return args.Error(0)
}

func (m *MockBlobIndexRepository) Search(ctx context.Context, query string) ([]model.Summary, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Summary), args.Error(1)
}

func (m *MockBlobIndexRepository) Delete(ctx context.Context, blobID string) error {
	args := m.Called(ctx, blobID)
	return args.Error(0)
}

type MockDataRepository struct {
	mock.Mock
}

func (m *MockDataRepository) ReplaceAll(ctx context.Context, items []model.DataItem) (int, error) {
	args := m.Called(ctx, items)
	return args.Int(0), args.Error(1)
}

func (m *MockDataRepository) Open(ctx context.Context) (repository.DataCursor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.DataCursor), args.Error(1)
}

// ItemCursor serves a fixed slice of items and then reports Fail from Err.
type ItemCursor struct {
	Items  []model.DataItem
	Fail   error
	Closed bool
	pos    int
}

func NewItemCursor(items ...string) *ItemCursor {
	c := &ItemCursor{}
	for _, it := range items {
		c.Items = append(c.Items, model.DataItem(it))
	}
	return c
}

func (c *ItemCursor) Next() bool {
	if c.pos >= len(c.Items) {
		return false
	}
	c.pos++
	return true
}

func (c *ItemCursor) Item() model.DataItem { return c.Items[c.pos-1] }

func (c *ItemCursor) Err() error { return c.Fail }

func (c *ItemCursor) Close() error {
	c.Closed = true
	return nil
}
