package config

import (
	"fmt"
	"strings"
)

// FieldError describes one invalid setting.
type FieldError struct {
	// Path is the dotted setting path, e.g. "list.nodeCapacity".
	Path    string
	Message string
	Value   any
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Path, e.Message, e.Value)
}

// ValidationError collects every invalid setting found by Validate.
type ValidationError struct {
	Fields []*FieldError
}

func (e *ValidationError) Error() string {
	switch len(e.Fields) {
	case 0:
		return "no validation errors"
	case 1:
		return "invalid config: " + e.Fields[0].Error()
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("invalid config: %d errors:\n  - %s", len(e.Fields), strings.Join(msgs, "\n  - "))
}

// Add records an invalid setting.
func (e *ValidationError) Add(path, message string, value any) {
	e.Fields = append(e.Fields, &FieldError{Path: path, Message: message, Value: value})
}

// Has reports whether path was rejected.
func (e *ValidationError) Has(path string) bool {
	for _, f := range e.Fields {
		if f.Path == path {
			return true
		}
	}
	return false
}

// AsError returns nil when nothing was recorded.
func (e *ValidationError) AsError() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
