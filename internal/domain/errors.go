package domain

import (
	"errors"
	"fmt"
)

// Domain errors (no external dependencies).
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicate         = errors.New("duplicate resource")
	ErrForbidden         = errors.New("access denied")
	ErrConflict          = errors.New("conflict with current state")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnbalancedEntries = errors.New("ledger entries are not balanced")
)

// ErrDocumentHasReturns wraps ErrConflict so transport code needs only the
// broad sentinel.
var ErrDocumentHasReturns = fmt.Errorf("document has returns recorded against it: %w", ErrConflict)

// ItemError is a validation error pinned to a specific document line.
// It wraps one of the sentinel errors above so callers can still use errors.Is.
type ItemError struct {
	Index int    // zero-based position of the offending item
	Field string // offending field, empty when the whole line is bad
	Err   error
}

func (e *ItemError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("item %d: %s: %v", e.Index, e.Field, e.Err)
	}
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// NewItemError builds an ItemError for the given line.
func NewItemError(index int, field string, err error) *ItemError {
	return &ItemError{Index: index, Field: field, Err: err}
}
