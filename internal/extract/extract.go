// Package extract turns uploaded PDF bytes into plain text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrExtraction reports bytes that are not a parseable PDF.
var ErrExtraction = errors.New("pdf text extraction failed")

var pdfMagic = []byte("%PDF-")

// Extractor converts raw document bytes into best-effort plain text.
type Extractor interface {
	Extract(data []byte) (string, error)
}

// PDF extracts text with the pure-Go ledongthuc/pdf reader.
type PDF struct{}

// NewPDF returns a stateless PDF extractor.
func NewPDF() *PDF { return &PDF{} }

var _ Extractor = (*PDF)(nil)

// Extract returns the text of every page, pages separated by a newline.
// Pages whose content cannot be decoded are skipped; a document that cannot
// be opened at all yields ErrExtraction.
func (p *PDF) Extract(data []byte) (text string, err error) {
	if !bytes.HasPrefix(data, pdfMagic) {
		return "", fmt.Errorf("%w: missing %%PDF- header", ErrExtraction)
	}

	// The parser panics on some malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrExtraction, r)
		}
	}()

	rdr, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	var sb strings.Builder
	for i := 1; i <= rdr.NumPage(); i++ {
		page := rdr.Page(i)
		if page.V.IsNull() {
			continue
		}
		s, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}
