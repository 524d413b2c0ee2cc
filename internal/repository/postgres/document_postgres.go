package postgres

import (
	"context"
	"database/sql"
	"strings"

	"docsearch/internal/model"
	"docsearch/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, name, data, text, size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, size, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Name,
		doc.Data,
		doc.Text,
		doc.Size,
		doc.CreatedAt,
	)
	out := model.Document{Data: doc.Data, Text: doc.Text}
	if err := row.Scan(&out.ID, &out.Name, &out.Size, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single document, payload included, by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT id, name, data, text, size, created_at
		FROM documents
		WHERE id = $1
	`
	var d model.Document
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID,
		&d.Name,
		&d.Data,
		&d.Text,
		&d.Size,
		&d.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns the id and name of every document.
func (r *DocumentPostgres) List(ctx context.Context) ([]model.Summary, error) {
	const q = `
		SELECT id, name
		FROM documents
		ORDER BY created_at DESC, id DESC
	`
	return querySummaries(ctx, r.db, model.StoreDocument, q)
}

// FindByText matches the query against extracted text.
func (r *DocumentPostgres) FindByText(ctx context.Context, query string, mode repository.MatchMode) ([]model.Summary, error) {
	if mode == repository.MatchPhrase {
		const q = `
			SELECT id, name
			FROM documents
			WHERE to_tsvector('simple', text) @@ phraseto_tsquery('simple', $1)
			ORDER BY created_at DESC, id DESC
		`
		return querySummaries(ctx, r.db, model.StoreDocument, q, query)
	}

	const q = `
		SELECT id, name
		FROM documents
		WHERE lower(text) LIKE '%' || lower($1) || '%' ESCAPE '\'
		ORDER BY created_at DESC, id DESC
	`
	return querySummaries(ctx, r.db, model.StoreDocument, q, escapeLike(query))
}

// DeleteAll removes every document row.
func (r *DocumentPostgres) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func querySummaries(ctx context.Context, db *sql.DB, store model.Store, q string, args ...any) ([]model.Summary, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Summary, 0)
	for rows.Next() {
		s := model.Summary{Store: store, Searchable: true}
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
