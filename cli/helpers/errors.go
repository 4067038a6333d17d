package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/compozy/docsplit/engine/knowledge/chunk"
	"github.com/compozy/docsplit/engine/knowledge/extract"
	"github.com/spf13/cobra"
)

// Error codes reported by the CLI.
const (
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeExtractionFailed  = "EXTRACTION_FAILED"
	CodeInvalidConfig     = "INVALID_CONFIG"
	CodeCanceled          = "CANCELED"
	CodeNoFiles           = "NO_FILES"
	CodeUsage             = "USAGE"
	CodeInternal          = "INTERNAL"
)

// CliError is the machine-readable form of a command failure.
type CliError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *CliError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewCliError creates a new CLI error
func NewCliError(code, message string, details ...string) *CliError {
	err := &CliError{Code: code, Message: message}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// UsageError marks err as a mistake in the command line. It has the cobra FlagErrorFunc signature.
func UsageError(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	return NewCliError(CodeUsage, "invalid usage of "+cmd.CommandPath(), err.Error())
}

// UsageArgs reports failures of validate as usage errors.
func UsageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return UsageError(cmd, validate(cmd, args))
	}
}

// Classify maps processing errors onto CLI error codes.
func Classify(err error) *CliError {
	var cliErr *CliError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &cliErr):
		return cliErr
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return NewCliError(CodeUnsupportedFormat, "file format is not supported", err.Error())
	case errors.Is(err, extract.ErrExtractionFailed):
		return NewCliError(CodeExtractionFailed, "could not extract text", err.Error())
	case errors.Is(err, chunk.ErrInvalidConfig):
		return NewCliError(CodeInvalidConfig, "invalid chunking configuration", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return NewCliError(CodeCanceled, "operation canceled", err.Error())
	case strings.HasPrefix(err.Error(), "unknown command "):
		// cobra resolves subcommands before any hook runs, so this error cannot be wrapped.
		return NewCliError(CodeUsage, "unknown command", err.Error())
	default:
		return NewCliError(CodeInternal, "command failed", err.Error())
	}
}

// OutputError writes err to w as JSON or as a styled line.
func OutputError(w io.Writer, err error, format OutputFormat) {
	cliErr := Classify(err)
	if cliErr == nil {
		return
	}
	if format == OutputFormatJSON {
		encoder := json.NewEncoder(w)
		_ = encoder.Encode(map[string]any{"error": cliErr})
		return
	}
	message := fmt.Sprintf("%s %s", cliErr.Code, cliErr.Message)
	details := cliErr.Details
	if ShouldUseColor() {
		message = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true).Render(message)
		if details != "" {
			details = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true).Render(details)
		}
	}
	fmt.Fprintln(w, message)
	if details != "" {
		fmt.Fprintln(w, details)
	}
}
