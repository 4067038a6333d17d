package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/knadh/koanf/providers/structs"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// FlagPaths maps CLI flag names to configuration paths.
var FlagPaths = map[string]string{
	"chunk-size":      "chunking.size",
	"chunk-overlap":   "chunking.overlap",
	"length-function": "chunking.length_function",
	"encoding":        "chunking.encoding",
	"max-file-size":   "extraction.max_file_size",
	"csv-delimiter":   "extraction.csv_delimiter",
	"cache":           "cache.enabled",
	"cache-size":      "cache.size",
	"log-level":       "runtime.log_level",
	"log-json":        "runtime.log_json",
	"log-file":        "runtime.log_file",
	"log-source":      "runtime.log_source",
	"output":          "cli.output",
	"concurrency":     "cli.concurrency",
}

// cliProvider implements Source interface for CLI flags.
type cliProvider struct {
	flags map[string]any
}

// NewCLIProvider creates a new CLI flags configuration source.
// Keys are flag names; unknown flags are ignored.
func NewCLIProvider(flags map[string]any) Source {
	return &cliProvider{
		flags: flags,
	}
}

// FlagsFromSet collects the flags explicitly set on the command line.
func FlagsFromSet(fs *pflag.FlagSet) map[string]any {
	flags := make(map[string]any)
	if fs == nil {
		return flags
	}
	fs.Visit(func(f *pflag.Flag) {
		if _, ok := FlagPaths[f.Name]; !ok {
			return
		}
		flags[f.Name] = f.Value.String()
	})
	return flags
}

// Load returns the CLI flags as configuration data.
func (c *cliProvider) Load() (map[string]any, error) {
	config := make(map[string]any)
	for key, value := range c.flags {
		path, ok := FlagPaths[key]
		if !ok {
			continue
		}
		if err := setNested(config, path, value); err != nil {
			return nil, fmt.Errorf("failed to set CLI flag %s: %w", key, err)
		}
	}
	return config, nil
}

func (c *cliProvider) Watch(_ context.Context, _ func()) error {
	return nil
}

func (c *cliProvider) Type() SourceType {
	return SourceCLI
}

func (c *cliProvider) Close() error {
	return nil
}

// setNested sets a value in a nested map structure using dot notation.
// It returns an error if a path conflict is encountered.
func setNested(m map[string]any, path string, value any) error {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	current := m
	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if _, exists := current[part]; !exists {
			current[part] = make(map[string]any)
		}
		next, ok := current[part].(map[string]any)
		if !ok {
			return fmt.Errorf("configuration conflict: key %q is not a map", strings.Join(parts[:i+1], "."))
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
	return nil
}

// yamlProvider implements Source interface for YAML files.
type yamlProvider struct {
	path      string
	watcher   *Watcher
	watcherMu sync.Mutex
	watchOnce sync.Once
	closeOnce sync.Once
}

// NewYAMLProvider creates a new YAML file configuration source.
// A missing file yields an empty configuration.
func NewYAMLProvider(path string) Source {
	return &yamlProvider{
		path: path,
	}
}

// Load reads configuration from a YAML file.
func (y *yamlProvider) Load() (map[string]any, error) {
	data, err := os.ReadFile(y.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]any), nil
		}
		return nil, fmt.Errorf("failed to read YAML file: %w", err)
	}
	var config map[string]any
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file: %w", err)
	}
	return filterNilValues(config), nil
}

// filterNilValues recursively removes nil values from a map
// This prevents koanf from overriding existing values with nil
func filterNilValues(m map[string]any) map[string]any {
	result := make(map[string]any)
	for k, v := range m {
		if v == nil {
			continue
		}
		if nestedMap, ok := v.(map[string]any); ok {
			filtered := filterNilValues(nestedMap)
			if len(filtered) > 0 {
				result[k] = filtered
			}
		} else {
			result[k] = v
		}
	}
	return result
}

// Watch monitors the YAML file for changes.
func (y *yamlProvider) Watch(ctx context.Context, callback func()) error {
	var watchErr error
	y.watchOnce.Do(func() {
		y.watcherMu.Lock()
		defer y.watcherMu.Unlock()
		watcher, err := NewWatcher()
		if err != nil {
			watchErr = fmt.Errorf("failed to create watcher: %w", err)
			return
		}
		if err := watcher.Watch(ctx, y.path); err != nil {
			_ = watcher.Close()
			watchErr = fmt.Errorf("failed to watch YAML file: %w", err)
			return
		}
		y.watcher = watcher
	})
	if watchErr != nil {
		return watchErr
	}
	y.watcherMu.Lock()
	defer y.watcherMu.Unlock()
	if y.watcher != nil {
		y.watcher.OnChange(func(string) { callback() })
	}
	return nil
}

func (y *yamlProvider) Type() SourceType {
	return SourceYAML
}

// Close releases any resources held by the source.
func (y *yamlProvider) Close() error {
	var closeErr error
	y.closeOnce.Do(func() {
		y.watcherMu.Lock()
		defer y.watcherMu.Unlock()
		if y.watcher != nil {
			if err := y.watcher.Close(); err != nil {
				closeErr = fmt.Errorf("failed to close watcher: %w", err)
				return
			}
			y.watcher = nil
		}
	})
	return closeErr
}

// defaultProvider serves Default() as the lowest-precedence layer. It also
// satisfies koanf.Provider so the loader can read it directly.
type defaultProvider struct {
	defaults *Config
}

// NewDefaultProvider creates a new default configuration source.
func NewDefaultProvider() Source {
	return newDefaultProvider()
}

func newDefaultProvider() *defaultProvider {
	return &defaultProvider{defaults: Default()}
}

func (d *defaultProvider) Load() (map[string]any, error) {
	return d.Read()
}

// Read returns the defaults as a nested map keyed by koanf tags.
func (d *defaultProvider) Read() (map[string]any, error) {
	data, err := structs.Provider(d.defaults, "koanf").Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read default configuration: %w", err)
	}
	return data, nil
}

// ReadBytes is not supported; the defaults have no serialized form.
func (d *defaultProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("default provider does not support ReadBytes")
}

func (d *defaultProvider) Watch(_ context.Context, _ func()) error {
	return nil
}

func (d *defaultProvider) Type() SourceType {
	return SourceDefault
}

func (d *defaultProvider) Close() error {
	return nil
}
