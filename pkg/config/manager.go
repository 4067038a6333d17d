package config

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/compozy/docsplit/pkg/logger"
	"github.com/romdo/go-debounce"
)

const (
	DefaultReloadDebounce = 100 * time.Millisecond
	// DefaultReloadMaxWait bounds how long a stream of file events can postpone a reload.
	DefaultReloadMaxWait = time.Second
)

// Config sections reported in Change.Sections.
const (
	SectionChunking   = "chunking"
	SectionExtraction = "extraction"
	SectionCache      = "cache"
	SectionRuntime    = "runtime"
	SectionCLI        = "cli"
)

// Change describes one configuration transition. Previous is nil on the first load.
type Change struct {
	Previous *Config
	Current  *Config
	Sections []string
}

// Has reports whether section differs between Previous and Current.
func (c Change) Has(section string) bool {
	return slices.Contains(c.Sections, section)
}

// Manager keeps the active configuration and reloads it when a watched source changes.
type Manager struct {
	Service Service

	current atomic.Pointer[Config]

	mu      sync.Mutex // serializes loads and guards sources
	sources []Source

	listenersMu sync.RWMutex
	listeners   []func(Change)

	debounce time.Duration
	maxWait  time.Duration

	stopWatch context.CancelFunc
	watchers  sync.WaitGroup
	closeOnce sync.Once
}

// NewManager wraps service, falling back to NewService when nil.
func NewManager(service Service) *Manager {
	if service == nil {
		service = NewService()
	}
	return &Manager{
		Service:  service,
		debounce: DefaultReloadDebounce,
		maxWait:  DefaultReloadMaxWait,
	}
}

// SetDebounce changes how long file events are coalesced before a reload.
// It only affects watches started by a later Load.
func (m *Manager) SetDebounce(wait time.Duration) {
	m.debounce = wait
	if m.maxWait < wait {
		m.maxWait = wait
	}
}

// Load reads every source, installs the result and starts watching the sources that support it.
func (m *Manager) Load(ctx context.Context, sources ...Source) (*Config, error) {
	m.mu.Lock()
	m.sources = append([]Source(nil), sources...)
	cfg, err := m.Service.Load(ctx, sources...)
	m.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	m.install(ctx, cfg)
	m.watch(ctx, sources)
	return cfg, nil
}

// Get returns the active configuration.
func (m *Manager) Get() *Config {
	return m.current.Load()
}

// Sources returns the sources passed to the last Load.
func (m *Manager) Sources() []Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Source(nil), m.sources...)
}

// Reload reads the sources again. A configuration that fails validation is
// reported and the active one is kept.
func (m *Manager) Reload(ctx context.Context) error {
	m.mu.Lock()
	cfg, err := m.Service.Load(ctx, m.sources...)
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	m.install(ctx, cfg)
	return nil
}

// OnChange registers fn for every change that alters at least one section.
func (m *Manager) OnChange(fn func(Change)) {
	if fn == nil {
		return
	}
	m.listenersMu.Lock()
	m.listeners = append(m.listeners, fn)
	m.listenersMu.Unlock()
}

// Close stops the watchers and closes every source. It is safe to call more than once.
func (m *Manager) Close(ctx context.Context) error {
	m.closeOnce.Do(func() {
		if m.stopWatch != nil {
			m.stopWatch()
		}
		m.watchers.Wait()
		for _, source := range m.Sources() {
			if source == nil {
				continue
			}
			if err := source.Close(); err != nil {
				logger.FromContext(ctx).Error("failed to close configuration source", "source", source.Type(), "error", err)
			}
		}
	})
	return nil
}

func (m *Manager) install(ctx context.Context, cfg *Config) {
	previous := m.current.Swap(cfg)
	change := Change{Previous: previous, Current: cfg, Sections: ChangedSections(previous, cfg)}
	if len(change.Sections) == 0 {
		return
	}
	if previous != nil {
		logger.FromContext(ctx).Info("configuration changed", "sections", change.Sections)
	}
	m.listenersMu.RLock()
	listeners := slices.Clone(m.listeners)
	m.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(change)
	}
}

// watch registers every watchable source before returning, so edits made right
// after Load are seen. Watches outlive the Load context's cancellation but stop on Close.
func (m *Manager) watch(ctx context.Context, sources []Source) {
	if m.stopWatch != nil {
		m.stopWatch()
	}
	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.stopWatch = cancel
	log := logger.FromContext(ctx)
	for _, src := range sources {
		if src == nil {
			continue
		}
		reload, cancelReload := debounce.NewWithMaxWait(m.debounce, m.maxWait, func() {
			if watchCtx.Err() != nil {
				return
			}
			if err := m.Reload(watchCtx); err != nil {
				log.Error("failed to reload configuration", "source", src.Type(), "error", err)
			}
		})
		if err := src.Watch(watchCtx, reload); err != nil {
			log.Debug("source does not support watching", "source", src.Type(), "error", err)
			cancelReload()
			continue
		}
		m.watchers.Add(1)
		go func() {
			defer m.watchers.Done()
			<-watchCtx.Done()
			cancelReload()
		}()
	}
}

// ChangedSections lists the top-level sections that differ between a and b.
// Every section is reported when a is nil.
func ChangedSections(a, b *Config) []string {
	if b == nil {
		return nil
	}
	if a == nil {
		return []string{SectionChunking, SectionExtraction, SectionCache, SectionRuntime, SectionCLI}
	}
	var sections []string
	if !reflect.DeepEqual(a.Chunking, b.Chunking) {
		sections = append(sections, SectionChunking)
	}
	if a.Extraction != b.Extraction {
		sections = append(sections, SectionExtraction)
	}
	if a.Cache != b.Cache {
		sections = append(sections, SectionCache)
	}
	if a.Runtime != b.Runtime {
		sections = append(sections, SectionRuntime)
	}
	if a.CLI != b.CLI {
		sections = append(sections, SectionCLI)
	}
	return sections
}
