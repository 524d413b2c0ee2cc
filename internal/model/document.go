package model

import "time"

// Document is a PDF stored inline in the database together with its extracted text.
// Text is always derived from Data by the extractor, never set independently.
type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Data      []byte    `json:"-"`
	Text      string    `json:"-"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Store identifies which backend holds a file.
type Store string

const (
	StoreDocument Store = "document"
	StoreBlob     Store = "blob"
)

// Summary is the listing/search projection of a stored file.
// It intentionally carries no payload or extracted text.
type Summary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Store      Store  `json:"store"`
	Searchable bool   `json:"searchable"`
}
