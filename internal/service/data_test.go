package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"docsearch/internal/model"
	repoMocks "docsearch/internal/repository/mocks"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newDataService(t *testing.T) (DataService, *repoMocks.MockDataRepository) {
	t.Helper()
	repo := new(repoMocks.MockDataRepository)
	svc, err := NewDataService(repo, nil)
	require.NoError(t, err)
	return svc, repo
}

func sampleCursor() *repoMocks.ItemCursor {
	return repoMocks.NewItemCursor(
		`{"name":"a","count":1}`,
		`{"name":"b","tags":["x","y"]}`,
	)
}

func export(t *testing.T, svc DataService, format ExportFormat) *bytes.Buffer {
	t.Helper()
	write, err := svc.Export(context.Background(), format)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, write(&buf))
	return &buf
}

func TestDataService_ExportJSON(t *testing.T) {
	svc, repo := newDataService(t)
	cur := sampleCursor()
	repo.On("Open", mock.Anything).Return(cur, nil)

	buf := export(t, svc, FormatJSON)
	assert.JSONEq(t, `[{"name":"a","count":1},{"name":"b","tags":["x","y"]}]`, buf.String())
	assert.True(t, cur.Closed)
	repo.AssertExpectations(t)
}

func TestDataService_ExportEmpty(t *testing.T) {
	svc, repo := newDataService(t)
	repo.On("Open", mock.Anything).Return(repoMocks.NewItemCursor(), nil)

	buf := export(t, svc, FormatJSON)
	assert.Equal(t, "[]", buf.String())
}

func TestDataService_ExportGzip(t *testing.T) {
	svc, repo := newDataService(t)
	repo.On("Open", mock.Anything).Return(sampleCursor(), nil)

	buf := export(t, svc, FormatJSONGz)
	zr, err := gzip.NewReader(buf)
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"a","count":1},{"name":"b","tags":["x","y"]}]`, string(plain))
}

func TestDataService_ExportXLSX(t *testing.T) {
	svc, repo := newDataService(t)
	cur := sampleCursor()
	repo.On("Open", mock.Anything).Return(cur, nil)

	buf := export(t, svc, FormatXLSX)
	assert.True(t, cur.Closed)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Data")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"count", "name", "tags"}, rows[0])
	assert.Equal(t, []string{"1", "a"}, rows[1])
	assert.Equal(t, []string{"", "b", `["x","y"]`}, rows[2])
}

func TestDataService_ExportErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown format", func(t *testing.T) {
		svc, repo := newDataService(t)
		write, err := svc.Export(ctx, ExportFormat("csv"))
		assert.ErrorIs(t, err, ErrInvalidFormat)
		assert.Nil(t, write)
		repo.AssertNotCalled(t, "Open", mock.Anything)
	})

	for _, format := range []ExportFormat{FormatJSON, FormatJSONGz, FormatXLSX} {
		t.Run("query failure "+string(format), func(t *testing.T) {
			svc, repo := newDataService(t)
			repo.On("Open", mock.Anything).Return(nil, errors.New("connection refused"))

			write, err := svc.Export(ctx, format)
			assert.EqualError(t, err, "export "+string(format)+": connection refused")
			assert.Nil(t, write)
		})
	}

	t.Run("first row failure is returned before writing", func(t *testing.T) {
		svc, repo := newDataService(t)
		cur := repoMocks.NewItemCursor()
		cur.Fail = errors.New("conn reset")
		repo.On("Open", mock.Anything).Return(cur, nil)

		write, err := svc.Export(ctx, FormatJSON)
		assert.EqualError(t, err, "export json: conn reset")
		assert.Nil(t, write)
		assert.True(t, cur.Closed)
	})

	t.Run("xlsx row failure is returned before writing", func(t *testing.T) {
		svc, repo := newDataService(t)
		cur := sampleCursor()
		cur.Fail = errors.New("conn reset")
		repo.On("Open", mock.Anything).Return(cur, nil)

		write, err := svc.Export(ctx, FormatXLSX)
		assert.EqualError(t, err, "export xlsx: conn reset")
		assert.Nil(t, write)
	})

	t.Run("late row failure surfaces from the writer", func(t *testing.T) {
		svc, repo := newDataService(t)
		cur := sampleCursor()
		cur.Fail = errors.New("conn reset")
		repo.On("Open", mock.Anything).Return(cur, nil)

		write, err := svc.Export(ctx, FormatJSON)
		require.NoError(t, err)
		err = write(io.Discard)
		assert.EqualError(t, err, "export json: conn reset")
		assert.True(t, cur.Closed)
	})
}

func TestDataService_Load(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		payload string
		setup   func(repo *repoMocks.MockDataRepository)
		want    int
		wantErr error
		errMsg  string
	}{
		{
			name:    "array of objects",
			payload: `[{"a":1},{"b":{"c":true}}]`,
			setup: func(repo *repoMocks.MockDataRepository) {
				repo.On("ReplaceAll", ctx, []model.DataItem{
					model.DataItem(`{"a":1}`),
					model.DataItem(`{"b":{"c":true}}`),
				}).Return(2, nil)
			},
			want: 2,
		},
		{
			name:    "empty array clears collection",
			payload: `[]`,
			setup: func(repo *repoMocks.MockDataRepository) {
				repo.On("ReplaceAll", ctx, []model.DataItem{}).Return(0, nil)
			},
			want: 0,
		},
		{name: "not json", payload: `nope`, wantErr: ErrInvalidPayload},
		{name: "object instead of array", payload: `{"a":1}`, wantErr: ErrInvalidPayload},
		{name: "array of scalars", payload: `[1,2]`, wantErr: ErrInvalidPayload},
		{
			name:    "repository failure",
			payload: `[{"a":1}]`,
			setup: func(repo *repoMocks.MockDataRepository) {
				repo.On("ReplaceAll", ctx, mock.Anything).Return(0, errors.New("tx failed"))
			},
			errMsg: "replace data: tx failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newDataService(t)
			if tt.setup != nil {
				tt.setup(repo)
			}

			n, err := svc.Load(ctx, []byte(tt.payload))
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "ReplaceAll", mock.Anything, mock.Anything)
			case tt.errMsg != "":
				assert.ErrorContains(t, err, tt.errMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, n)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestParseExportFormat(t *testing.T) {
	f, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	assert.Equal(t, "data.json", f.Filename())

	f, err = ParseExportFormat("json.gz")
	require.NoError(t, err)
	assert.Equal(t, "data.json.gz", f.Filename())
	assert.Equal(t, "application/gzip", f.ContentType())

	_, err = ParseExportFormat("csv")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
