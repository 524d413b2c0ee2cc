package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/xuri/excelize/v2"

	"docsearch/internal/model"
	"docsearch/internal/repository"
)

var (
	ErrInvalidPayload = errors.New("payload must be a JSON array of objects")
	ErrInvalidFormat  = errors.New("unsupported export format")
)

// ExportFormat selects the encoding of an export.
type ExportFormat string

const (
	FormatJSON   ExportFormat = "json"
	FormatJSONGz ExportFormat = "json.gz"
	FormatXLSX   ExportFormat = "xlsx"
)

// ParseExportFormat accepts an empty string as json.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatJSONGz, FormatXLSX:
		return ExportFormat(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
}

// Filename is the attachment name used for the export download.
func (f ExportFormat) Filename() string {
	return "data." + string(f)
}

func (f ExportFormat) ContentType() string {
	switch f {
	case FormatJSONGz:
		return "application/gzip"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// ExportFunc writes a prepared export to w. It must be called once.
type ExportFunc func(w io.Writer) error

// DataService exports and bulk-loads the generic data collection.
type DataService interface {
	// Export opens the collection and returns the writer for the chosen
	// format. Storage failures are returned here, before any byte is written.
	Export(ctx context.Context, format ExportFormat) (ExportFunc, error)
	Load(ctx context.Context, payload []byte) (int, error)
}

const loadSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {"type": "object"}
}`

type dataService struct {
	repo   repository.DataRepository
	schema *jsonschema.Schema
	logger *slog.Logger
}

func NewDataService(repo repository.DataRepository, logger *slog.Logger) (DataService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("load.json", bytes.NewReader([]byte(loadSchema))); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("load.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &dataService{repo: repo, schema: schema, logger: logger.With("component", "data_service")}, nil
}

func (s *dataService) Export(ctx context.Context, format ExportFormat) (ExportFunc, error) {
	switch format {
	case FormatJSON, FormatJSONGz, FormatXLSX:
	case "":
		format = FormatJSON
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}

	start := time.Now()
	cur, err := s.repo.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", format, err)
	}

	if format == FormatXLSX {
		defer cur.Close()
		var buf bytes.Buffer
		rows, err := buildXLSX(cur, &buf)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", format, err)
		}
		return func(w io.Writer) error {
			if _, err := buf.WriteTo(w); err != nil {
				return fmt.Errorf("export %s: %w", format, err)
			}
			s.exported(format, rows, start)
			return nil
		}, nil
	}

	// Pull the first row now so an early row error still yields a clean failure.
	more := cur.Next()
	if !more {
		if err := cur.Err(); err != nil {
			_ = cur.Close()
			return nil, fmt.Errorf("export %s: %w", format, err)
		}
	}

	return func(w io.Writer) error {
		defer cur.Close()
		var (
			rows int
			err  error
		)
		if format == FormatJSONGz {
			zw := gzip.NewWriter(w)
			rows, err = writeJSON(zw, cur, more)
			if cerr := zw.Close(); err == nil {
				err = cerr
			}
		} else {
			rows, err = writeJSON(w, cur, more)
		}
		if err != nil {
			return fmt.Errorf("export %s: %w", format, err)
		}
		s.exported(format, rows, start)
		return nil
	}, nil
}

func (s *dataService) exported(format ExportFormat, rows int, start time.Time) {
	s.logger.Info("data_export_ok",
		"format", string(format),
		"rows", rows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}

// writeJSON streams the cursor as a JSON array. more reports whether the
// cursor is already positioned on an item.
func writeJSON(w io.Writer, cur repository.DataCursor, more bool) (int, error) {
	if _, err := io.WriteString(w, "["); err != nil {
		return 0, err
	}
	n := 0
	for ; more; more = cur.Next() {
		if n > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return n, err
			}
		}
		if _, err := w.Write(cur.Item()); err != nil {
			return n, err
		}
		n++
	}
	if err := cur.Err(); err != nil {
		return n, err
	}
	_, err := io.WriteString(w, "]")
	return n, err
}

func buildXLSX(cur repository.DataCursor, w io.Writer) (int, error) {
	var items []map[string]any
	keys := map[string]struct{}{}
	for cur.Next() {
		var item map[string]any
		if err := json.Unmarshal(cur.Item(), &item); err != nil {
			return 0, fmt.Errorf("decode item: %w", err)
		}
		for k := range item {
			keys[k] = struct{}{}
		}
		items = append(items, item)
	}
	if err := cur.Err(); err != nil {
		return 0, err
	}

	headers := make([]string, 0, len(keys))
	for k := range keys {
		headers = append(headers, k)
	}
	sort.Strings(headers)

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Data"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return 0, err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for r, item := range items {
		for c, h := range headers {
			v, ok := item[h]
			if !ok || v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheet, cell, cellValue(v))
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("xlsx write: %w", err)
	}
	return len(items), nil
}

// cellValue flattens nested JSON values to their compact encoding.
func cellValue(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		b, _ := json.Marshal(v)
		return string(b)
	default:
		return v
	}
}

func (s *dataService) Load(ctx context.Context, payload []byte) (int, error) {
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := s.schema.Validate(v); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var items []model.DataItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	n, err := s.repo.ReplaceAll(ctx, items)
	if err != nil {
		return 0, fmt.Errorf("replace data: %w", err)
	}
	s.logger.Info("data_load_ok", "rows", n)
	return n, nil
}
