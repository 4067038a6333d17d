package extract

import (
	"slices"
	"strings"
	"sync"
)

// Registry maps lower-cased file extensions to adapter factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	opts      Options
}

// NewRegistry returns a registry holding the built-in adapters.
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		factories: make(map[string]Factory, 8),
		opts:      opts.withDefaults(),
	}
	r.factories[".pdf"] = NewPDFAdapter
	r.factories[".txt"] = NewTextAdapter
	r.factories[".csv"] = NewCSVAdapter
	r.factories[".docx"] = NewDOCXAdapter
	r.factories[".doc"] = NewDOCAdapter
	r.factories[".xlsx"] = NewXLSXAdapter
	r.factories[".xls"] = NewXLSAdapter
	return r
}

// NormalizeExtension lower-cases ext and ensures a leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Register adds or replaces the factory for ext.
func (r *Registry) Register(ext string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[NormalizeExtension(ext)] = factory
}

// Lookup builds the adapter registered for ext. The match is case-insensitive.
func (r *Registry) Lookup(ext string) (Adapter, error) {
	key := NormalizeExtension(ext)
	r.mu.RLock()
	factory, ok := r.factories[key]
	r.mu.RUnlock()
	if !ok || factory == nil {
		return nil, &UnsupportedFormatError{Extension: ext}
	}
	return factory(r.opts), nil
}

// Supports reports whether ext has a registered adapter.
func (r *Registry) Supports(ext string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[NormalizeExtension(ext)]
	return ok
}

// Extensions lists the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.factories))
	for ext := range r.factories {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Options returns the options passed to every adapter.
func (r *Registry) Options() Options {
	return r.opts
}
