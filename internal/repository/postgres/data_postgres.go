package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"docsearch/internal/model"
	"docsearch/internal/repository"
)

// DataPostgres stores the generic data collection as JSONB rows.
type DataPostgres struct {
	db *sql.DB
}

// NewDataPostgres creates a new DataPostgres repository.
func NewDataPostgres(db *sql.DB) *DataPostgres {
	return &DataPostgres{db: db}
}

var _ repository.DataRepository = (*DataPostgres)(nil)

// ReplaceAll deletes the current collection and inserts items in one transaction.
func (r *DataPostgres) ReplaceAll(ctx context.Context, items []model.DataItem) (n int, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM data_items`); err != nil {
		return 0, fmt.Errorf("clear data items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO data_items (body) VALUES ($1::jsonb)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, item := range items {
		if _, err = stmt.ExecContext(ctx, string(item)); err != nil {
			return 0, fmt.Errorf("insert data item %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return len(items), nil
}

// Open queries the collection in insertion order.
func (r *DataPostgres) Open(ctx context.Context) (repository.DataCursor, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT body FROM data_items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return &dataCursor{rows: rows}, nil
}

type dataCursor struct {
	rows *sql.Rows
	cur  model.DataItem
	err  error
}

func (c *dataCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	var body []byte
	if err := c.rows.Scan(&body); err != nil {
		c.err = err
		return false
	}
	c.cur = model.DataItem(body)
	return true
}

func (c *dataCursor) Item() model.DataItem { return c.cur }

func (c *dataCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

func (c *dataCursor) Close() error { return c.rows.Close() }
