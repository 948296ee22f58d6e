package hbase

import (
	"errors"
	"fmt"
)

// ErrMissingKey is matched by every ConfigError.
var ErrMissingKey = errors.New("missing or invalid hbase setting")

// ConfigError reports a required setting that is absent, empty or otherwise unusable.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingKey
}

func newConfigError(key string, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Key: key, Reason: fmt.Sprintf(format, args...)}
}

// RequireNonEmpty returns a ConfigError naming key if value is empty.
func RequireNonEmpty(value string, key string) error {
	if value == "" {
		return newConfigError(key, "%s must be set!", key)
	}
	return nil
}
