package job

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced job id does not exist.
var ErrNotFound = errors.New("job not found")

// FieldError reports a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every invalid field of one request. It is never
// retried automatically; callers surface the field list as-is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("invalid %s: %s", e.Fields[0].Field, e.Fields[0].Message)
	}
	return fmt.Sprintf("%d invalid fields", len(e.Fields))
}
