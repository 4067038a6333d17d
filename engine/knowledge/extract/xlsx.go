package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/compozy/docsplit/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const formatXLSX = "xlsx"

// XLSXAdapter emits one record per non-empty worksheet with tab-separated rows.
type XLSXAdapter struct {
	opts Options
}

func NewXLSXAdapter(opts Options) Adapter {
	return &XLSXAdapter{opts: opts.withDefaults()}
}

func (a *XLSXAdapter) Load(ctx context.Context, path string) ([]Record, error) {
	data, err := readFile(ctx, a.opts, path, formatXLSX)
	if err != nil {
		return nil, err
	}
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, failed(path, formatXLSX, fmt.Errorf("open workbook: %w", err))
	}
	defer func() {
		if err := book.Close(); err != nil {
			logger.FromContext(ctx).Warn("failed to close workbook", "source", path, "error", err)
		}
	}()
	var records []Record
	for index, name := range book.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := book.GetRows(name)
		if err != nil {
			return nil, failed(path, formatXLSX, fmt.Errorf("read sheet %q: %w", name, err))
		}
		text := joinRows(rows)
		if text == "" {
			continue
		}
		record := newRecord(path, formatXLSX, text)
		record.Metadata[MetaSheet] = name
		record.Metadata[MetaSheetIndex] = index
		records = append(records, record)
	}
	return records, nil
}

// joinRows renders rows as tab-separated lines, skipping rows without content.
func joinRows(rows [][]string) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		end := len(row)
		for end > 0 && strings.TrimSpace(row[end-1]) == "" {
			end--
		}
		if end == 0 {
			continue
		}
		lines = append(lines, strings.Join(row[:end], "\t"))
	}
	return strings.Join(lines, "\n")
}
