package cli

import (
	"context"
	"slices"
	"strconv"

	"github.com/compozy/docsplit/cli/helpers"
	"github.com/compozy/docsplit/engine/knowledge/chunk"
	"github.com/compozy/docsplit/engine/knowledge/extract"
	"github.com/compozy/docsplit/engine/knowledge/ingest"
	"github.com/compozy/docsplit/pkg/config"
	"github.com/compozy/docsplit/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/schema"
)

type processOptions struct {
	extension string
	summary   bool
	documents bool
}

// processReport is the output of one processing pass.
type processReport struct {
	Files       []ingest.FileResult `json:"files"`
	TotalFiles  int                 `json:"total_files"`
	TotalChunks int                 `json:"total_chunks"`
}

func (r processReport) Table() helpers.Table {
	rows := make([][]string, 0, len(r.Files)+1)
	records := 0
	for _, f := range r.Files {
		records += f.Result.TotalSourceRecords
		rows = append(rows, []string{
			f.File.Path,
			extract.NormalizeExtension(f.File.Extension),
			strconv.Itoa(f.Result.TotalSourceRecords),
			strconv.Itoa(f.Result.TotalChunks),
		})
	}
	rows = append(rows, []string{"total", "", strconv.Itoa(records), strconv.Itoa(r.TotalChunks)})
	return helpers.Table{Headers: []string{"FILE", "FORMAT", "RECORDS", "CHUNKS"}, Rows: rows}
}

// ProcessCmd splits the given files or glob patterns and prints the chunks.
func ProcessCmd() *cobra.Command {
	opts := &processOptions{}
	cmd := &cobra.Command{
		Use:   "process <path|glob>...",
		Short: "Extract and chunk documents",
		Long: `Extract text from each file and split it into overlapping chunks.
Arguments may be file paths or doublestar globs such as "docs/**/*.pdf".`,
		Args: helpers.UsageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.extension, "ext", "", "Treat every file as this extension instead of its own")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "Report counts only, without chunk text")
	cmd.Flags().BoolVar(&opts.documents, "documents", false, "Emit chunks as langchaingo documents")
	return cmd
}

func runProcess(cmd *cobra.Command, args []string, opts *processOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	files, err := resolveFiles(ctx, args, opts.extension)
	if err != nil {
		return err
	}
	results, err := ingest.ProcessFiles(ctx, svc, files, cfg.CLI.Concurrency)
	if err != nil {
		return err
	}
	return writeResults(cmd, results, opts)
}

func resolveFiles(ctx context.Context, patterns []string, extension string) ([]ingest.FileRef, error) {
	paths, err := ingest.ExpandPaths(ctx, patterns)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, helpers.NewCliError(helpers.CodeNoFiles, "no files matched the given patterns")
	}
	files := ingest.RefsFromPaths(paths)
	if extension != "" {
		for i := range files {
			files[i].Extension = extension
		}
	}
	logger.FromContext(ctx).Debug("resolved input files", "count", len(files))
	return files, nil
}

func writeResults(cmd *cobra.Command, results []ingest.FileResult, opts *processOptions) error {
	writer := helpers.NewOutputWriter(cmd.OutOrStdout(), outputFormat(cmd))
	if opts.documents && !opts.summary {
		docs := make([]schema.Document, 0)
		for _, r := range results {
			docs = append(docs, chunk.ToDocuments(r.Result.Chunks)...)
		}
		return writer.WriteData(docs)
	}
	report := processReport{Files: slices.Clone(results), TotalFiles: len(results)}
	for i := range results {
		report.TotalChunks += results[i].Result.TotalChunks
		if opts.summary {
			trimmed := *results[i].Result
			trimmed.Chunks = nil
			report.Files[i].Result = &trimmed
		}
	}
	return writer.WriteData(report)
}
