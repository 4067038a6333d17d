package config

import (
	"context"
	"sync"

	"github.com/compozy/docsplit/pkg/logger"
)

type managerKey struct{}

// ContextWithManager attaches m to ctx.
func ContextWithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, m)
}

var (
	fallbackOnce sync.Once
	fallback     *Manager
)

// ManagerFromContext returns the manager attached to ctx. Without one it returns a shared
// manager holding the defaults plus environment overrides, so library callers that never
// load a YAML file still see a valid configuration.
func ManagerFromContext(ctx context.Context) *Manager {
	if ctx != nil {
		if m, ok := ctx.Value(managerKey{}).(*Manager); ok && m != nil {
			return m
		}
	}
	fallbackOnce.Do(func() {
		if ctx == nil {
			ctx = context.Background()
		}
		m := NewManager(nil)
		if _, err := m.Load(ctx); err != nil {
			logger.FromContext(ctx).Warn("environment overrides rejected, using built-in defaults", "error", err)
			m.current.Store(Default())
		}
		fallback = m
	})
	return fallback
}

// FromContext returns the active configuration for ctx.
func FromContext(ctx context.Context) *Config {
	return ManagerFromContext(ctx).Get()
}
