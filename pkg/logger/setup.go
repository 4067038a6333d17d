package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SetupOptions carries the process-wide logging settings resolved from flags and config.
type SetupOptions struct {
	Level  string
	JSON   bool
	Source bool
	// Output receives log lines; nil means stdout.
	Output io.Writer
	// FilePath, when set, mirrors every line into the file in append mode.
	FilePath string
}

// SetupLogger installs the default logger writing to opts.Output and, optionally, a log file.
// The returned function closes the log file and must be called on shutdown.
func SetupLogger(opts SetupOptions) (func() error, error) {
	cfg := DefaultConfig()
	cfg.Level = ParseLevel(opts.Level)
	cfg.JSON = opts.JSON
	cfg.AddSource = opts.Source
	if opts.Output != nil {
		cfg.Output = opts.Output
	}
	closer := func() error { return nil }
	if opts.FilePath != "" {
		file, err := openLogFile(opts.FilePath)
		if err != nil {
			return closer, err
		}
		cfg.Output = io.MultiWriter(cfg.Output, file)
		closer = file.Close
	}
	if err := Init(cfg); err != nil {
		_ = closer()
		return func() error { return nil }, err
	}
	return closer, nil
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return file, nil
}
