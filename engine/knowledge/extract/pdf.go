package extract

import (
	"bytes"
	"context"
	"fmt"

	"github.com/compozy/docsplit/pkg/logger"
	"github.com/ledongthuc/pdf"
)

const formatPDF = "pdf"

// PDFAdapter emits one record per page, blank pages included.
type PDFAdapter struct {
	opts Options
}

func NewPDFAdapter(opts Options) Adapter {
	return &PDFAdapter{opts: opts.withDefaults()}
}

func (a *PDFAdapter) Load(ctx context.Context, path string) (records []Record, err error) {
	data, err := readFile(ctx, a.opts, path, formatPDF)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = failedf(path, formatPDF, "malformed pdf: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, failed(path, formatPDF, fmt.Errorf("open pdf: %w", err))
	}
	total := reader.NumPage()
	records = make([]Record, 0, total)
	log := logger.FromContext(ctx)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := ""
		page := reader.Page(i)
		if !page.V.IsNull() {
			text, err = page.GetPlainText(nil)
			if err != nil {
				return nil, failed(path, formatPDF, fmt.Errorf("page %d: %w", i, err))
			}
		}
		if text == "" {
			log.Debug("PDF page has no extractable text", "source", path, "page", i-1)
		}
		record := newRecord(path, formatPDF, text)
		record.Metadata[MetaPage] = i - 1
		record.Metadata[MetaTotalPages] = total
		records = append(records, record)
	}
	return records, nil
}
