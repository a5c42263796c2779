// Package validate implements the pre-storage checks an upload item must
// pass: declared-metadata checks (technical and business rules) and a
// content-stream check. All checks aggregate field errors instead of
// stopping at the first failure.
package validate

import (
	"fmt"
	"strings"

	"github.com/utafrali/FileIngestGo/internal/domain"
)

// ValidationError aggregates every field failure found for one item.
type ValidationError struct {
	Fields []domain.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Merge combines validation errors, preserving order. Nil inputs are
// skipped; a nil result means every input was nil.
func Merge(errs ...*ValidationError) *ValidationError {
	var fields []domain.FieldError
	for _, err := range errs {
		if err == nil {
			continue
		}
		fields = append(fields, err.Fields...)
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
