package extract

import (
	"bytes"
	"context"
	"fmt"

	"github.com/extrame/xls"
)

const (
	formatXLS  = "xls"
	xlsCharset = "utf-8"
)

// XLSAdapter emits one record per non-empty sheet of a BIFF8 workbook.
type XLSAdapter struct {
	opts Options
}

func NewXLSAdapter(opts Options) Adapter {
	return &XLSAdapter{opts: opts.withDefaults()}
}

func (a *XLSAdapter) Load(ctx context.Context, path string) (records []Record, err error) {
	data, err := readFile(ctx, a.opts, path, formatXLS)
	if err != nil {
		return nil, err
	}
	if !isOLE2(data) {
		return nil, failedf(path, formatXLS, "not an OLE2 workbook (detected %s)", detectMIME(data))
	}
	// The BIFF parser panics on some malformed records.
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = failedf(path, formatXLS, "malformed workbook: %v", r)
		}
	}()
	book, err := xls.OpenReader(bytes.NewReader(data), xlsCharset)
	if err != nil {
		return nil, failed(path, formatXLS, fmt.Errorf("open workbook: %w", err))
	}
	for index := 0; index < book.NumSheets(); index++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sheet := book.GetSheet(index)
		if sheet == nil {
			continue
		}
		rows := make([][]string, 0, int(sheet.MaxRow)+1)
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for c := row.FirstCol(); c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, cells)
		}
		text := joinRows(rows)
		if text == "" {
			continue
		}
		record := newRecord(path, formatXLS, text)
		record.Metadata[MetaSheet] = sheet.Name
		record.Metadata[MetaSheetIndex] = index
		records = append(records, record)
	}
	return records, nil
}
