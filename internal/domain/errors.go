package domain

import (
	"fmt"
	"strings"
)

// MissingFieldError reports required columns absent from a source schema.
// It is a configuration error: the pipeline aborts before producing output.
type MissingFieldError struct {
	Source string
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required fields in %s: %s", e.Source, strings.Join(e.Fields, ", "))
}
