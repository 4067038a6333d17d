package extract

import (
	"context"
	"fmt"
	"io"
)

// readFile loads path through the adapter filesystem, enforcing the size limit.
func readFile(ctx context.Context, opts Options, path, format string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := opts.Fs.Stat(path)
	if err != nil {
		return nil, failed(path, format, err)
	}
	if info.IsDir() {
		return nil, failedf(path, format, "path is a directory")
	}
	if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
		return nil, failedf(path, format, "file size %d exceeds limit %d", info.Size(), opts.MaxFileSize)
	}
	f, err := opts.Fs.Open(path)
	if err != nil {
		return nil, failed(path, format, err)
	}
	defer f.Close()
	reader := io.Reader(f)
	if opts.MaxFileSize > 0 {
		reader = io.LimitReader(f, opts.MaxFileSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, failed(path, format, fmt.Errorf("read file: %w", err))
	}
	if opts.MaxFileSize > 0 && int64(len(data)) > opts.MaxFileSize {
		return nil, failedf(path, format, "file grew beyond limit %d while reading", opts.MaxFileSize)
	}
	return data, nil
}
