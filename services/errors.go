package services

import (
	"errors"
	"fmt"
)

var (
	// ErrEmbeddingUnavailable wraps every failure of the embedding provider.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	// ErrLedgerUnavailable wraps every failure of the ledger service.
	ErrLedgerUnavailable = errors.New("ledger service unavailable")
)

// Guard names reported by StateConflictError.
const (
	GuardSelfApproval             = "self_approval"
	GuardDoubleApproval           = "double_approval"
	GuardSelfRejection            = "self_rejection"
	GuardTerminalState            = "terminal_state"
	GuardInsufficientReviewerPool = "insufficient_reviewer_pool"
	GuardDuplicateFile            = "duplicate_file"
)

// ValidationError is returned for bad input. It is never retried.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError is returned when a record id does not resolve.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// StateConflictError reports which workflow guard refused a transition.
type StateConflictError struct {
	Guard string
	Msg   string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Guard, e.Msg)
}

func newConflict(guard, format string, args ...any) *StateConflictError {
	return &StateConflictError{Guard: guard, Msg: fmt.Sprintf(format, args...)}
}

// DependencyDegraded marks a collaborator failure that reduced report
// confidence without failing the request.
type DependencyDegraded struct {
	Dependency string
	Err        error
}

func (e *DependencyDegraded) Error() string {
	return fmt.Sprintf("%s degraded: %v", e.Dependency, e.Err)
}

func (e *DependencyDegraded) Unwrap() error { return e.Err }

// IsConflict reports whether err is a StateConflictError for guard. An empty
// guard matches any conflict.
func IsConflict(err error, guard string) bool {
	var ce *StateConflictError
	if !errors.As(err, &ce) {
		return false
	}
	return guard == "" || ce.Guard == guard
}
