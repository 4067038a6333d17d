package extract

import (
	"context"

	"github.com/spf13/afero"
)

// Metadata keys stamped on records.
const (
	MetaSource     = "source"
	MetaFormat     = "format"
	MetaPage       = "page"
	MetaTotalPages = "total_pages"
	MetaRow        = "row"
	MetaSheet      = "sheet"
	MetaSheetIndex = "sheet_index"
	MetaEncoding   = "encoding"
)

// DefaultMaxFileSize bounds the bytes an adapter reads from one file.
const DefaultMaxFileSize int64 = 50 << 20

// Record is one logical unit of extracted text, such as a page, a row or a sheet.
type Record struct {
	Text     string
	Metadata map[string]any
}

// Adapter converts one file into an ordered sequence of records.
type Adapter interface {
	Load(ctx context.Context, path string) ([]Record, error)
}

// Factory builds an adapter bound to the given options.
type Factory func(opts Options) Adapter

// Options are shared by every adapter.
type Options struct {
	Fs           afero.Fs
	MaxFileSize  int64
	CSVDelimiter rune
}

// DefaultOptions reads from the OS filesystem with the default limits.
func DefaultOptions() Options {
	return Options{
		Fs:           afero.NewOsFs(),
		MaxFileSize:  DefaultMaxFileSize,
		CSVDelimiter: ',',
	}
}

func (o Options) withDefaults() Options {
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.CSVDelimiter == 0 {
		o.CSVDelimiter = ','
	}
	return o
}

func newRecord(path, format, text string) Record {
	return Record{
		Text: text,
		Metadata: map[string]any{
			MetaSource: path,
			MetaFormat: format,
		},
	}
}
