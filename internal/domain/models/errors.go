package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a symbol has no stored analysis.
	ErrNotFound = errors.New("analysis not found")
	// ErrArchiveDisabled is returned by archive reads when no archive is configured.
	ErrArchiveDisabled = errors.New("archive disabled")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError rejects a record at the boundary before it reaches detection.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return fmt.Sprintf("invalid record: %s", strings.Join(msgs, "; "))
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
