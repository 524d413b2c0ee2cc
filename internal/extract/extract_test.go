package extract

import (
	"testing"

	"docsearch/internal/extract/pdftest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDF_Extract(t *testing.T) {
	ex := NewPDF()

	t.Run("single line", func(t *testing.T) {
		text, err := ex.Extract(pdftest.Build("invoice number 42"))
		require.NoError(t, err)
		assert.Contains(t, text, "invoice number 42")
	})

	t.Run("multiple lines", func(t *testing.T) {
		text, err := ex.Extract(pdftest.Build("Quarterly report", "Revenue (net) grew"))
		require.NoError(t, err)
		assert.Contains(t, text, "Quarterly report")
		assert.Contains(t, text, "Revenue (net) grew")
	})

	t.Run("padded document", func(t *testing.T) {
		data := pdftest.Padded(10*1024, "invoice number 42")
		assert.GreaterOrEqual(t, len(data), 10*1024)

		text, err := ex.Extract(data)
		require.NoError(t, err)
		assert.Contains(t, text, "invoice")
	})

	t.Run("deterministic", func(t *testing.T) {
		data := pdftest.Build("same text")
		a, err := ex.Extract(data)
		require.NoError(t, err)
		b, err := ex.Extract(data)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestPDF_ExtractInvalid(t *testing.T) {
	ex := NewPDF()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "plain text", data: []byte("hello world")},
		{name: "header only", data: []byte("%PDF-1.4\n")},
		{name: "truncated", data: pdftest.Build("cut short")[:60]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := ex.Extract(tt.data)
			assert.ErrorIs(t, err, ErrExtraction)
			assert.Empty(t, text)
		})
	}
}
