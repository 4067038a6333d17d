package cli

import (
	"unicode/utf8"

	"github.com/compozy/docsplit/engine/knowledge/chunk"
	"github.com/compozy/docsplit/engine/knowledge/extract"
	"github.com/compozy/docsplit/engine/knowledge/ingest"
	"github.com/compozy/docsplit/pkg/config"
	"github.com/spf13/afero"
)

func splitterConfig(c *config.ChunkingConfig) chunk.SplitterConfig {
	return chunk.SplitterConfig{
		ChunkSize:      c.Size,
		ChunkOverlap:   c.Overlap,
		Separators:     c.Separators,
		LengthFunction: c.LengthFunction,
		Encoding:       c.Encoding,
	}
}

func extractOptions(c *config.ExtractionConfig) extract.Options {
	delimiter, _ := utf8.DecodeRuneInString(c.CSVDelimiter)
	return extract.Options{
		Fs:           afero.NewOsFs(),
		MaxFileSize:  c.MaxFileSize,
		CSVDelimiter: delimiter,
	}
}

// newService builds the processing service described by cfg.
func newService(cfg *config.Config) (*ingest.Service, error) {
	opts := []ingest.Option{ingest.WithRegistry(extract.NewRegistry(extractOptions(&cfg.Extraction)))}
	if cfg.Cache.Enabled {
		opts = append(opts, ingest.WithCache(cfg.Cache.Size))
	}
	return ingest.NewService(splitterConfig(&cfg.Chunking), opts...)
}

// configUpdate carries the chunking fields that can change while a service is running.
func configUpdate(c *config.ChunkingConfig) ingest.ConfigUpdate {
	size, overlap := c.Size, c.Overlap
	return ingest.ConfigUpdate{
		ChunkSize:      &size,
		ChunkOverlap:   &overlap,
		Separators:     c.Separators,
		LengthFunction: c.LengthFunction,
		Encoding:       c.Encoding,
	}
}
