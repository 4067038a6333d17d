package ingest

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/compozy/docsplit/engine/knowledge/chunk"
	"github.com/compozy/docsplit/engine/knowledge/extract"
	"github.com/compozy/docsplit/pkg/logger"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Result is the outcome of processing one file.
type Result struct {
	Chunks             []chunk.Chunk `json:"chunks"`
	TotalSourceRecords int           `json:"total_source_records"`
	TotalChunks        int           `json:"total_chunks"`
}

// ConfigUpdate changes the chunking parameters. Nil or empty fields keep their current value.
type ConfigUpdate struct {
	ChunkSize      *int
	ChunkOverlap   *int
	Separators     []string
	LengthFunction string
	Encoding       string
}

// Service extracts documents through the adapter registry and splits them into chunks.
// Process and UpdateConfig are safe for concurrent use.
type Service struct {
	mu        sync.RWMutex
	processor *chunk.Processor

	updateMu     sync.Mutex
	registry     *extract.Registry
	cache        *lru.Cache[string, []extract.Record]
	splitterOpts []chunk.Option
}

// NewService validates cfg and builds the service. Invalid settings fail with chunk.ErrInvalidConfig.
func NewService(cfg chunk.SplitterConfig, opts ...Option) (*Service, error) {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}
	splitter, err := chunk.NewSplitter(cfg, s.splitterOpts...)
	if err != nil {
		return nil, err
	}
	svc := &Service{
		processor:    chunk.NewProcessor(splitter),
		registry:     s.resolveRegistry(),
		splitterOpts: s.splitterOpts,
	}
	if s.cacheSize > 0 {
		cache, err := lru.New[string, []extract.Record](s.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("ingest: create extraction cache: %w", err)
		}
		svc.cache = cache
	}
	return svc, nil
}

// Config returns a copy of the active splitter configuration.
func (s *Service) Config() chunk.SplitterConfig {
	return s.snapshot().Splitter().Config()
}

// Registry exposes the adapter registry used by Process.
func (s *Service) Registry() *extract.Registry {
	return s.registry
}

func (s *Service) snapshot() *chunk.Processor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.processor
}

// Process extracts filePath with the adapter registered for fileExtension and splits every record.
// The chunking configuration is read once, so a concurrent UpdateConfig never mixes settings within a call.
func (s *Service) Process(ctx context.Context, filePath, fileExtension string) (*Result, error) {
	start := time.Now()
	processor := s.snapshot()
	format := extract.NormalizeExtension(fileExtension)
	log := logger.FromContext(ctx).With("path", filePath, "extension", fileExtension)

	adapter, err := s.registry.Lookup(fileExtension)
	if err != nil {
		return nil, s.fail(ctx, start, opLookup, filePath, fileExtension, err)
	}
	records, err := s.load(ctx, adapter, filePath, format)
	if err != nil {
		return nil, s.fail(ctx, start, opExtract, filePath, fileExtension, err)
	}
	log.Info("Loaded document", "records", len(records))

	chunks, err := processor.Process(ctx, records)
	if err != nil {
		return nil, s.fail(ctx, start, opSplit, filePath, fileExtension, err)
	}
	log.Info("Split document", "chunks", len(chunks))
	recordProcess(ctx, format, outcomeSuccess, time.Since(start), len(chunks))
	return &Result{
		Chunks:             chunks,
		TotalSourceRecords: len(records),
		TotalChunks:        len(chunks),
	}, nil
}

func (s *Service) load(ctx context.Context, adapter extract.Adapter, path, format string) ([]extract.Record, error) {
	key, cacheable := s.cacheKey(path, format)
	if cacheable {
		if records, ok := s.cache.Get(key); ok {
			recordCacheLookup(ctx, true)
			logger.FromContext(ctx).Debug("Reusing extracted records", "path", path, "records", len(records))
			return records, nil
		}
		recordCacheLookup(ctx, false)
	}
	start := time.Now()
	records, err := adapter.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	recordExtract(ctx, format, time.Since(start))
	if cacheable {
		s.cache.Add(key, records)
	}
	return records, nil
}

// cacheKey identifies one version of a file. Files that cannot be stat'ed bypass the cache
// so the adapter reports the failure.
func (s *Service) cacheKey(path, format string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	info, err := s.registry.Options().Fs.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return fmt.Sprintf("%s|%s|%d|%d", format, path, info.Size(), info.ModTime().UnixNano()), true
}

func (s *Service) fail(ctx context.Context, start time.Time, op, path, ext string, err error) error {
	logger.FromContext(ctx).Error(
		"Failed to process document",
		"path", path,
		"extension", ext,
		"op", op,
		"error", err,
	)
	recordProcess(ctx, extract.NormalizeExtension(ext), outcomeError, time.Since(start), 0)
	return &ProcessError{Op: op, Path: path, Extension: ext, Err: err}
}

// UpdateConfig applies update to the chunking configuration. The new settings are validated
// before they replace the old ones; on failure the previous configuration stays in effect.
// Calls already running keep the configuration they started with.
func (s *Service) UpdateConfig(ctx context.Context, update ConfigUpdate) error {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()
	log := logger.FromContext(ctx)
	cfg := s.Config()
	if update.ChunkSize != nil {
		cfg.ChunkSize = *update.ChunkSize
	}
	if update.ChunkOverlap != nil {
		cfg.ChunkOverlap = *update.ChunkOverlap
	}
	if update.Separators != nil {
		cfg.Separators = slices.Clone(update.Separators)
	}
	if update.LengthFunction != "" {
		cfg.LengthFunction = update.LengthFunction
	}
	if update.Encoding != "" {
		cfg.Encoding = update.Encoding
	}
	splitter, err := chunk.NewSplitter(cfg, s.splitterOpts...)
	if err != nil {
		log.Error("Rejected chunk config update", "op", opUpdateConfig, "error", err)
		return &ProcessError{Op: opUpdateConfig, Err: err}
	}
	s.mu.Lock()
	s.processor = chunk.NewProcessor(splitter)
	s.mu.Unlock()
	log.Info(
		"Updated chunk config",
		"chunk_size", cfg.ChunkSize,
		"chunk_overlap", cfg.ChunkOverlap,
		"length_function", cfg.LengthFunction,
	)
	return nil
}
