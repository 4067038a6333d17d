package helpers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Table is a rendered-on-demand grid used by table output.
type Table struct {
	Headers []string
	Rows    [][]string
}

// TableData is implemented by results that have a table rendering.
type TableData interface {
	Table() Table
}

// OutputWriter handles different output formats
type OutputWriter struct {
	writer io.Writer
	format OutputFormat
	color  bool
}

// NewOutputWriter creates a new output writer
func NewOutputWriter(writer io.Writer, format OutputFormat) *OutputWriter {
	return &OutputWriter{
		writer: writer,
		format: format,
		color:  ShouldUseColor(),
	}
}

// Format returns the concrete format used by the writer.
func (ow *OutputWriter) Format() OutputFormat {
	return ow.format
}

// WriteData writes data in the specified format
func (ow *OutputWriter) WriteData(data any) error {
	switch ow.format {
	case OutputFormatJSON:
		return ow.writeJSON(data)
	case OutputFormatTable:
		tabular, ok := data.(TableData)
		if !ok {
			return ow.writeJSON(data)
		}
		return ow.writeTable(tabular.Table())
	default:
		return fmt.Errorf("unsupported output format: %s", ow.format)
	}
}

func (ow *OutputWriter) writeJSON(data any) error {
	encoder := json.NewEncoder(ow.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func (ow *OutputWriter) writeTable(t Table) error {
	grid := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Headers...).
		Rows(t.Rows...)
	if ow.color {
		header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")).Padding(0, 1)
		cell := lipgloss.NewStyle().Padding(0, 1)
		grid = grid.
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("241"))).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return header
				}
				return cell
			})
	}
	_, err := fmt.Fprintln(ow.writer, grid.Render())
	return err
}
