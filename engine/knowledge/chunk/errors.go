package chunk

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig marks every splitter configuration rejected by Validate.
var ErrInvalidConfig = errors.New("chunk: invalid config")

// ConfigError describes the offending configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("chunk: invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func invalid(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
