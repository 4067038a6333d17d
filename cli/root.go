package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/compozy/docsplit/cli/helpers"
	"github.com/compozy/docsplit/pkg/config"
	"github.com/compozy/docsplit/pkg/logger"
	"github.com/compozy/docsplit/pkg/version"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type sessionKey struct{}

// session holds the resources a command run acquires in PersistentPreRunE.
type session struct {
	manager  *config.Manager
	closeLog func() error
	format   helpers.OutputFormat
}

func (s *session) close(ctx context.Context) {
	if s.manager != nil {
		_ = s.manager.Close(ctx)
	}
	if s.closeLog != nil {
		_ = s.closeLog()
	}
}

// Execute runs the root command with args and reports failures on stderr.
func Execute(ctx context.Context, args []string) error {
	return run(ctx, RootCmd(), args)
}

func run(ctx context.Context, cmd *cobra.Command, args []string) error {
	sess := &session{format: helpers.OutputFormatJSON}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.WithValue(ctx, sessionKey{}, sess))
	if err != nil {
		helpers.OutputError(cmd.ErrOrStderr(), err, sess.format)
	}
	sess.close(ctx)
	return err
}

// RootCmd builds the docsplit command tree.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docsplit",
		Short: "Split PDF, text, CSV, Word and Excel documents into overlapping chunks",
		Long: `docsplit extracts text from documents and splits it into uniformly sized,
overlapping chunks ready for embedding and retrieval.`,
		Version:           version.Get().String(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupRuntime,
	}
	root.SetFlagErrorFunc(helpers.UsageError)
	addGlobalFlags(root)
	root.AddCommand(
		ProcessCmd(),
		WatchCmd(),
		FormatsCmd(),
		ConfigCmd(),
		VersionCmd(),
	)
	return root
}

func addGlobalFlags(cmd *cobra.Command) {
	defaults := config.Default()
	flags := cmd.PersistentFlags()
	flags.String("config", "docsplit.yaml", "Path to the YAML configuration file")
	flags.String("env-file", ".env", "Path to an environment file loaded before configuration")

	flags.Int("chunk-size", defaults.Chunking.Size, "Maximum chunk length")
	flags.Int("chunk-overlap", defaults.Chunking.Overlap, "Length shared by consecutive chunks")
	flags.String("length-function", defaults.Chunking.LengthFunction, "How chunk length is measured (characters, tokens)")
	flags.String("encoding", defaults.Chunking.Encoding, "tiktoken encoding used by the tokens length function")
	flags.Int64("max-file-size", defaults.Extraction.MaxFileSize, "Largest file in bytes an adapter will read")
	flags.String("csv-delimiter", defaults.Extraction.CSVDelimiter, "Field delimiter for CSV files")
	flags.Bool("cache", defaults.Cache.Enabled, "Reuse extracted records for unchanged files")
	flags.Int("cache-size", defaults.Cache.Size, "Number of extracted files kept in the cache")

	flags.String("log-level", defaults.Runtime.LogLevel, "Log level (debug, info, warn, error, disabled)")
	flags.Bool("log-json", defaults.Runtime.LogJSON, "Write logs as JSON")
	flags.String("log-file", defaults.Runtime.LogFile, "Also append logs to this file")
	flags.Bool("log-source", defaults.Runtime.LogSource, "Include caller information in logs")

	flags.StringP("output", "o", defaults.CLI.Output, "Output format (auto, json, table)")
	flags.Int("concurrency", defaults.CLI.Concurrency, "Files processed in parallel")
}

// setupRuntime loads configuration and installs the logger for every subcommand.
func setupRuntime(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sess, ok := ctx.Value(sessionKey{}).(*session)
	if !ok {
		sess = &session{}
	}
	if err := loadEnvFile(cmd); err != nil {
		return err
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	manager := config.NewManager(config.NewService())
	cfg, err := manager.Load(ctx,
		config.NewYAMLProvider(configPath),
		config.NewCLIProvider(config.FlagsFromSet(cmd.Flags())),
	)
	if err != nil {
		_ = manager.Close(ctx)
		return helpers.NewCliError(helpers.CodeInvalidConfig, "failed to load configuration", err.Error())
	}
	sess.manager = manager
	sess.format = helpers.ResolveFormat(cfg.CLI.Output)

	closeLog, err := logger.SetupLogger(logger.SetupOptions{
		Level:    cfg.Runtime.LogLevel,
		JSON:     cfg.Runtime.LogJSON,
		Source:   cfg.Runtime.LogSource,
		Output:   logOutput(cmd, sess.format),
		FilePath: cfg.Runtime.LogFile,
	})
	if err != nil {
		return err
	}
	sess.closeLog = closeLog
	log := logger.GetDefault()
	log.Debug("configuration loaded", "config_file", configPath, "chunk_size", cfg.Chunking.Size)

	ctx = logger.ContextWithLogger(ctx, log)
	ctx = config.ContextWithManager(ctx, manager)
	cmd.SetContext(ctx)
	return nil
}

// logOutput keeps stdout free for the result document when it is JSON.
func logOutput(cmd *cobra.Command, format helpers.OutputFormat) io.Writer {
	if format == helpers.OutputFormatJSON {
		return cmd.ErrOrStderr()
	}
	return os.Stdout
}

// loadEnvFile loads variables from the --env-file path when the file exists.
func loadEnvFile(cmd *cobra.Command) error {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return fmt.Errorf("failed to get env-file flag: %w", err)
	}
	if envFile == "" {
		return nil
	}
	absPath, err := filepath.Abs(filepath.Clean(envFile))
	if err != nil {
		return fmt.Errorf("failed to resolve env file path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat env file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("env file path '%s' is not a regular file", envFile)
	}
	if err := godotenv.Load(absPath); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", absPath, err)
	}
	return nil
}

func outputFormat(cmd *cobra.Command) helpers.OutputFormat {
	if sess, ok := cmd.Context().Value(sessionKey{}).(*session); ok {
		return sess.format
	}
	return helpers.ResolveFormat(config.FromContext(cmd.Context()).CLI.Output)
}
