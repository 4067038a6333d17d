package ingest

import (
	"github.com/compozy/docsplit/engine/knowledge/chunk"
	"github.com/compozy/docsplit/engine/knowledge/extract"
	"github.com/spf13/afero"
)

// DefaultCacheSize is the number of extracted documents kept by WithCache when size is not positive.
const DefaultCacheSize = 128

type settings struct {
	registry     *extract.Registry
	fs           afero.Fs
	cacheSize    int
	splitterOpts []chunk.Option
}

// Option customizes a Service.
type Option func(*settings)

// WithRegistry replaces the built-in adapter registry.
func WithRegistry(registry *extract.Registry) Option {
	return func(s *settings) {
		s.registry = registry
	}
}

// WithFs makes the built-in registry read through fs. Ignored when WithRegistry is set.
func WithFs(fs afero.Fs) Option {
	return func(s *settings) {
		s.fs = fs
	}
}

// WithCache keeps the records of the last size extracted files, keyed by path, size and modification time.
func WithCache(size int) Option {
	return func(s *settings) {
		if size <= 0 {
			size = DefaultCacheSize
		}
		s.cacheSize = size
	}
}

// WithSplitterOptions forwards options to every splitter the service builds.
func WithSplitterOptions(opts ...chunk.Option) Option {
	return func(s *settings) {
		s.splitterOpts = append(s.splitterOpts, opts...)
	}
}

func (s *settings) resolveRegistry() *extract.Registry {
	if s.registry != nil {
		return s.registry
	}
	opts := extract.DefaultOptions()
	if s.fs != nil {
		opts.Fs = s.fs
	}
	return extract.NewRegistry(opts)
}
