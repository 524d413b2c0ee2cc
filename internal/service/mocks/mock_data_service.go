package mocks

import (
	"context"
	"io"

	"docsearch/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDataService struct {
	mock.Mock
}

// Export returns a writer emitting the string configured as the first return value.
func (m *MockDataService) Export(ctx context.Context, format service.ExportFormat) (service.ExportFunc, error) {
	args := m.Called(ctx, format)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	body, _ := args.Get(0).(string)
	return func(w io.Writer) error {
		_, err := io.WriteString(w, body)
		return err
	}, nil
}

func (m *MockDataService) Load(ctx context.Context, payload []byte) (int, error) {
	args := m.Called(ctx, payload)
	return args.Int(0), args.Error(1)
}
