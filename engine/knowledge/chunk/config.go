package chunk

import (
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	LengthCharacters = "characters"
	LengthTokens     = "tokens"

	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultEncoding     = "cl100k_base"
)

// DefaultSeparators orders separators from coarsest to finest. The empty separator splits into runes.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// SplitterConfig holds the parameters of the recursive splitter.
type SplitterConfig struct {
	ChunkSize      int
	ChunkOverlap   int
	Separators     []string
	LengthFunction string
	Encoding       string
}

// DefaultConfig returns size 1000, overlap 200 and the default separator cascade.
func DefaultConfig() SplitterConfig {
	return SplitterConfig{
		ChunkSize:      DefaultChunkSize,
		ChunkOverlap:   DefaultChunkOverlap,
		Separators:     slices.Clone(DefaultSeparators),
		LengthFunction: LengthCharacters,
		Encoding:       DefaultEncoding,
	}
}

// Normalize fills unset optional fields with defaults.
func (c SplitterConfig) Normalize() SplitterConfig {
	if c.Separators == nil {
		c.Separators = slices.Clone(DefaultSeparators)
	} else {
		c.Separators = slices.Clone(c.Separators)
	}
	c.LengthFunction = strings.ToLower(strings.TrimSpace(c.LengthFunction))
	if c.LengthFunction == "" {
		c.LengthFunction = LengthCharacters
	}
	if strings.TrimSpace(c.Encoding) == "" {
		c.Encoding = DefaultEncoding
	}
	return c
}

// Validate reports the first invalid field as a *ConfigError.
func (c SplitterConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return invalid("chunk_size", "size must be greater than zero, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return invalid("chunk_overlap", "overlap cannot be negative, got %d", c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return invalid("chunk_overlap", "overlap %d must be smaller than size %d", c.ChunkOverlap, c.ChunkSize)
	}
	seen := make(map[string]struct{}, len(c.Separators))
	for i, sep := range c.Separators {
		if !utf8.ValidString(sep) {
			return invalid("separators", "separator %d is not valid UTF-8", i)
		}
		if _, dup := seen[sep]; dup {
			return invalid("separators", "separator %q is listed more than once", sep)
		}
		seen[sep] = struct{}{}
	}
	switch c.LengthFunction {
	case "", LengthCharacters, LengthTokens:
	default:
		return invalid("length_function", "unknown length function %q", c.LengthFunction)
	}
	return nil
}
