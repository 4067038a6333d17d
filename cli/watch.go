package cli

import (
	"sync"
	"time"

	"github.com/compozy/docsplit/cli/helpers"
	"github.com/compozy/docsplit/engine/knowledge/ingest"
	"github.com/compozy/docsplit/pkg/config"
	"github.com/compozy/docsplit/pkg/logger"
	"github.com/romdo/go-debounce"
	"github.com/spf13/cobra"
)

const (
	watchDebounce = 200 * time.Millisecond
	watchMaxWait  = 2 * time.Second
)

// WatchCmd processes files, then processes them again whenever they or the configuration change.
func WatchCmd() *cobra.Command {
	opts := &processOptions{summary: true}
	cmd := &cobra.Command{
		Use:   "watch <path|glob>...",
		Short: "Re-chunk documents when they or the configuration file change",
		Long: `Process the given files once, then keep running. Edits to the files trigger a new pass.
Edits to the configuration file apply the new chunk settings before the next pass.`,
		Args: helpers.UsageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.extension, "ext", "", "Treat every file as this extension instead of its own")
	cmd.Flags().BoolVar(&opts.summary, "summary", true, "Report counts only, without chunk text")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string, opts *processOptions) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)
	manager := config.ManagerFromContext(ctx)
	cfg := manager.Get()
	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	files, err := resolveFiles(ctx, args, opts.extension)
	if err != nil {
		return err
	}

	var runPass func()
	trigger, stop := debouncedPasses(watchDebounce, watchMaxWait, func() { runPass() })
	defer stop()
	manager.OnChange(func(change config.Change) {
		if !change.Has(config.SectionChunking) {
			return
		}
		if err := svc.UpdateConfig(ctx, configUpdate(&change.Current.Chunking)); err != nil {
			return
		}
		trigger()
	})
	watcher, err := config.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	watcher.OnChange(func(path string) {
		log.Debug("Document changed", "path", path)
		trigger()
	})
	for _, f := range files {
		if err := watcher.Watch(ctx, f.Path); err != nil {
			return err
		}
	}

	runPass = func() {
		results, err := ingest.ProcessFiles(ctx, svc, files, manager.Get().CLI.Concurrency)
		if err != nil {
			log.Error("Processing pass failed", "error", err)
			return
		}
		if err := writeResults(cmd, results, opts); err != nil {
			log.Error("Failed to write results", "error", err)
		}
	}
	runPass()
	log.Info("Watching for changes", "files", len(files))
	<-ctx.Done()
	return nil
}

// debouncedPasses coalesces bursts of triggers into one pass, running at least every maxWait
// while triggers keep arriving. Passes never overlap. stop waits for a running pass.
func debouncedPasses(wait, maxWait time.Duration, pass func()) (trigger func(), stop func()) {
	var (
		mu      sync.Mutex
		stopped bool
	)
	debounced, cancel := debounce.NewWithMaxWait(wait, maxWait, func() {
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return
		}
		pass()
	})
	return debounced, func() {
		cancel()
		mu.Lock()
		stopped = true
		mu.Unlock()
	}
}
