package scenario

import "fmt"

// ConfigError reports an invalid scenario setting.
type ConfigError struct {
	Field string
	msg   string
}

func NewConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, msg: fmt.Sprintf(format, args...)}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.msg)
}
