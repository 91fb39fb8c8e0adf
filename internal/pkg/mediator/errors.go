package mediator

import (
	"fmt"
	"strings"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every rule violation found for one request.
type ValidationError struct {
	Request  string
	Failures []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Request, strings.Join(parts, "; "))
}
