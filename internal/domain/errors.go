package domain

import "fmt"

// ValidationError reports a rejected input value: an unknown category, a
// detail value that failed type coercion, or a negative price.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
