package ingest

import "fmt"

const (
	opLookup       = "lookup"
	opExtract      = "extract"
	opSplit        = "split"
	opUpdateConfig = "update_config"
)

// ProcessError records which step of document processing failed.
// Unwrap exposes the extract and chunk error kinds to errors.Is and errors.As.
type ProcessError struct {
	Op        string
	Path      string
	Extension string
	Err       error
}

func (e *ProcessError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("ingest: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ingest: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}
