package config

import (
	"context"
	"time"
)

// Config represents the complete configuration for docsplit.
// It provides type-safe access to all configuration values with validation.
type Config struct {
	Chunking   ChunkingConfig   `koanf:"chunking"   validate:"required"`
	Extraction ExtractionConfig `koanf:"extraction" validate:"required"`
	Cache      CacheConfig      `koanf:"cache"`
	Runtime    RuntimeConfig    `koanf:"runtime"    validate:"required"`
	CLI        CLIConfig        `koanf:"cli"`
}

// ChunkingConfig contains the splitter parameters applied to every document.
type ChunkingConfig struct {
	Size           int      `koanf:"size"            validate:"min=1"                      env:"CHUNK_SIZE"`
	Overlap        int      `koanf:"overlap"         validate:"min=0,ltfield=Size"         env:"CHUNK_OVERLAP"`
	Separators     []string `koanf:"separators"`
	LengthFunction string   `koanf:"length_function" validate:"oneof=characters tokens"    env:"CHUNK_LENGTH_FUNCTION"`
	Encoding       string   `koanf:"encoding"        validate:"required_if=LengthFunction tokens" env:"CHUNK_ENCODING"`
}

// ExtractionConfig contains limits and options for the format adapters.
type ExtractionConfig struct {
	MaxFileSize  int64  `koanf:"max_file_size" validate:"min=0"       env:"EXTRACTION_MAX_FILE_SIZE"`
	CSVDelimiter string `koanf:"csv_delimiter" validate:"single_rune" env:"EXTRACTION_CSV_DELIMITER"`
}

// CacheConfig controls the in-memory extraction cache.
type CacheConfig struct {
	Enabled bool `koanf:"enabled" env:"CACHE_ENABLED"`
	Size    int  `koanf:"size"    env:"CACHE_SIZE"    validate:"min=1"`
}

// RuntimeConfig contains runtime behavior configuration.
type RuntimeConfig struct {
	LogLevel  string `koanf:"log_level"  validate:"oneof=debug info warn error disabled" env:"RUNTIME_LOG_LEVEL"`
	LogJSON   bool   `koanf:"log_json"                                                   env:"RUNTIME_LOG_JSON"`
	LogFile   string `koanf:"log_file"                                                   env:"RUNTIME_LOG_FILE"`
	LogSource bool   `koanf:"log_source"                                                 env:"RUNTIME_LOG_SOURCE"`
}

// CLIConfig contains CLI-specific configuration.
type CLIConfig struct {
	Output      string `koanf:"output"      validate:"oneof=auto json table" env:"DOCSPLIT_OUTPUT"`
	Concurrency int    `koanf:"concurrency" validate:"min=1,max=64"          env:"DOCSPLIT_CONCURRENCY"`
}

// Service defines the configuration management service interface.
// Reloading and change notification live in Manager.
type Service interface {
	// Load loads configuration from the specified sources with precedence order.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	// Validate checks if the configuration meets all validation requirements.
	Validate(config *Config) error
	// GetSource returns the source type that provided a specific configuration key.
	GetSource(key string) SourceType
}

// Source defines the interface for configuration sources.
type Source interface {
	// Load reads configuration from the source.
	Load() (map[string]any, error)
	// Watch monitors the source for changes.
	Watch(ctx context.Context, callback func()) error
	// Type returns the source type identifier.
	Type() SourceType
	// Close releases any resources held by the source.
	Close() error
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata contains metadata about configuration sources.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// DefaultSeparators is the separator cascade from coarsest to finest.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			Size:           1000,
			Overlap:        200,
			Separators:     append([]string(nil), DefaultSeparators...),
			LengthFunction: "characters",
			Encoding:       "cl100k_base",
		},
		Extraction: ExtractionConfig{
			MaxFileSize:  50 << 20,
			CSVDelimiter: ",",
		},
		Cache: CacheConfig{
			Enabled: true,
			Size:    128,
		},
		Runtime: RuntimeConfig{
			LogLevel: "info",
			LogFile:  "docsplit.log",
		},
		CLI: CLIConfig{
			Output:      "auto",
			Concurrency: 4,
		},
	}
}
