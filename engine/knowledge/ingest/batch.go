package ingest

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds ProcessFiles when the caller passes a non-positive limit.
const DefaultConcurrency = 4

// DocumentProcessor is the subset of Service used by batch processing.
type DocumentProcessor interface {
	Process(ctx context.Context, filePath, fileExtension string) (*Result, error)
}

// FileRef names a file and the extension used to pick its adapter.
type FileRef struct {
	Path      string `json:"path"`
	Extension string `json:"extension"`
}

// FileResult pairs a file with its processing result.
type FileResult struct {
	File   FileRef `json:"file"`
	Result *Result `json:"result"`
}

// RefsFromPaths derives each file's extension from its name.
func RefsFromPaths(paths []string) []FileRef {
	refs := make([]FileRef, len(paths))
	for i, p := range paths {
		refs[i] = FileRef{Path: p, Extension: filepath.Ext(p)}
	}
	return refs
}

// ProcessFiles runs up to concurrency files at a time. Results keep the order of files.
// The first failure cancels the remaining work and is returned.
func ProcessFiles(
	ctx context.Context,
	processor DocumentProcessor,
	files []FileRef,
	concurrency int,
) ([]FileResult, error) {
	if processor == nil {
		return nil, fmt.Errorf("ingest: processor is required")
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := processor.Process(gctx, file.Path, file.Extension)
			if err != nil {
				return err
			}
			results[i] = FileResult{File: file, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
