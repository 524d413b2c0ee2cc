package postgres

import (
	"context"
	"testing"

	"docsearch/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobIndexPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBlobIndexPostgres(db)
	ctx := context.Background()

	t.Run("put", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO blob_index (.+) ON CONFLICT").
			WithArgs("blob-1", "big.pdf", "annual report").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Put(ctx, "blob-1", "big.pdf", "annual report"))
	})

	t.Run("search", func(t *testing.T) {
		mock.ExpectQuery("SELECT blob_id, name FROM blob_index WHERE lower").
			WithArgs("report").
			WillReturnRows(sqlmock.NewRows([]string{"blob_id", "name"}).AddRow("blob-1", "big.pdf"))

		items, err := repo.Search(ctx, "report")

		require.NoError(t, err)
		assert.Equal(t, []model.Summary{{ID: "blob-1", Name: "big.pdf", Store: model.StoreBlob, Searchable: true}}, items)
	})

	t.Run("delete", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM blob_index WHERE blob_id = \$1`).
			WithArgs("blob-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, "blob-1"))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
