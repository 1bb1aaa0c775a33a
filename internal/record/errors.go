package record

import "fmt"

// ValidationError reports a rejected field during record or entry
// construction. It is always returned synchronously and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
