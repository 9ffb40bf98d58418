package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports a malformed request. Fields maps field names to
// what was wrong with them.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, problem string) *ValidationError {
	return &ValidationError{
		Message: "invalid " + field,
		Fields:  map[string]string{field: problem},
	}
}

// NotFoundError reports a missing project, theme, transcript or session.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// IndexError reports an out-of-range index into a theme's HMW or step list.
type IndexError struct {
	List  string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("invalid %s index %d (list has %d items)", e.List, e.Index, e.Len)
}

// ConfigurationError means the model provider is not configured.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "AI analysis not available: " + e.Reason
}

// ExtractionError wraps a failed model call.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return "AI analysis failed: " + e.Err.Error()
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// StorageError wraps an unexpected backend failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
