package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the four failure classes. Callers check with
// errors.Is; the structured types below carry the context.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrComputation = errors.New("memory-model computation failed")
	ErrPersistence = errors.New("persistence failed")
)

// RecoverableError is implemented by enriched errors that carry structured
// context and remediation hints. Both the store and output packages use this
// interface to avoid an import cycle.
type RecoverableError interface {
	error
	ErrorCode() string
	Context() map[string]string
	SuggestedAction() string
}

// ValidationError reports a malformed rating, mode, or missing required
// outcome field. The review was not applied.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
func (e *ValidationError) ErrorCode() string { return "VALIDATION" }
func (e *ValidationError) Context() map[string]string {
	return map[string]string{"field": e.Field, "reason": e.Reason}
}
func (e *ValidationError) SuggestedAction() string {
	return "fix the outcome payload and resubmit"
}
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a mutation path that required an existing record.
// Read paths default-construct instead of returning this.
type NotFoundError struct {
	Entity string
	UserID string
	ItemID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found for user %q item %q", e.Entity, e.UserID, e.ItemID)
}
func (e *NotFoundError) ErrorCode() string { return "NOT_FOUND" }
func (e *NotFoundError) Context() map[string]string {
	return map[string]string{"entity": e.Entity, "user_id": e.UserID, "item_id": e.ItemID}
}
func (e *NotFoundError) SuggestedAction() string {
	return "verify the user and item identifiers"
}
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ComputationError reports a numerical failure inside the memory-model
// update (non-finite stability or difficulty). State is left untouched.
type ComputationError struct {
	Op     string
	Detail string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation failed in %s: %s", e.Op, e.Detail)
}
func (e *ComputationError) ErrorCode() string { return "COMPUTATION" }
func (e *ComputationError) Context() map[string]string {
	return map[string]string{"op": e.Op, "detail": e.Detail}
}
func (e *ComputationError) SuggestedAction() string {
	return "check the parameter set for out-of-bounds weights"
}
func (e *ComputationError) Is(target error) bool { return target == ErrComputation }

// PersistenceError reports a store write that failed after computation
// succeeded. The review must be treated as not applied; a retry will
// re-run the computation from the pre-call state.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed in %s: %v", e.Op, e.Err)
}
func (e *PersistenceError) Unwrap() error    { return e.Err }
func (e *PersistenceError) ErrorCode() string { return "PERSISTENCE" }
func (e *PersistenceError) Context() map[string]string {
	return map[string]string{"op": e.Op}
}
func (e *PersistenceError) SuggestedAction() string {
	return "the review was not applied; retry the submission"
}
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
