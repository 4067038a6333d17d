package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const formatCSV = "csv"

// CSVAdapter emits one record per data row as "header: value" lines.
// Files are always decoded as UTF-8.
type CSVAdapter struct {
	opts Options
}

func NewCSVAdapter(opts Options) Adapter {
	return &CSVAdapter{opts: opts.withDefaults()}
}

func (a *CSVAdapter) Load(ctx context.Context, path string) ([]Record, error) {
	data, err := readFile(ctx, a.opts, path, formatCSV)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, failedf(path, formatCSV, "file is not valid utf-8")
	}
	reader := csv.NewReader(transform.NewReader(bytes.NewReader(data), unicode.UTF8BOM.NewDecoder()))
	reader.Comma = a.opts.CSVDelimiter
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, failed(path, formatCSV, fmt.Errorf("read header: %w", err))
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	var records []Record
	for row := 0; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, failed(path, formatCSV, fmt.Errorf("read row %d: %w", row, err))
		}
		record := newRecord(path, formatCSV, formatRow(header, fields))
		record.Metadata[MetaRow] = row
		records = append(records, record)
	}
	return records, nil
}

// formatRow renders one line per column. Columns beyond the header are keyed by position.
func formatRow(header, fields []string) string {
	width := max(len(header), len(fields))
	lines := make([]string, 0, width)
	for i := 0; i < width; i++ {
		key := fmt.Sprintf("column_%d", i)
		if i < len(header) && header[i] != "" {
			key = header[i]
		}
		value := ""
		if i < len(fields) {
			value = strings.TrimSpace(fields[i])
		}
		lines = append(lines, key+": "+value)
	}
	return strings.Join(lines, "\n")
}
