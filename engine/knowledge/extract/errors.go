package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat marks lookups for extensions without a registered adapter.
	ErrUnsupportedFormat = errors.New("extract: unsupported format")
	// ErrExtractionFailed marks files an adapter could not read or parse.
	ErrExtractionFailed = errors.New("extract: extraction failed")
)

// UnsupportedFormatError names the extension that has no adapter.
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("extract: unsupported file format %q", e.Extension)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// ExtractionError wraps the cause of a failed extraction.
type ExtractionError struct {
	Path   string
	Format string
	Cause  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract: %s extraction failed for %s: %v", e.Format, e.Path, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtractionFailed
}

func failed(path, format string, cause error) error {
	var existing *ExtractionError
	if errors.As(cause, &existing) {
		return cause
	}
	return &ExtractionError{Path: path, Format: format, Cause: cause}
}

func failedf(path, format, msg string, args ...any) error {
	return failed(path, format, fmt.Errorf(msg, args...))
}
