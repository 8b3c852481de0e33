package brackets

import "fmt"

// ValidationError reports malformed input to stage generation or result
// reporting. It always names the offending field and is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
}

func validationErrorf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ConflictError reports an operation that is structurally illegal given the
// current state, e.g. undoing a result a downstream match already consumed.
// The caller must re-fetch state before retrying.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func conflictErrorf(format string, args ...interface{}) error {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced entity missing from the provided state.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}
