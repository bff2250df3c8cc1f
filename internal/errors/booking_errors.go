package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinels for the booking flow. Handlers translate these to HTTP codes;
// nothing upstream retries them automatically.
var (
	// ErrDateConflict means the requested window overlaps a blocking
	// reservation. Surfaced to the guest as "pick another date".
	ErrDateConflict = errors.New("requested dates are not available")

	// ErrNotFound is a lookup with zero rows where one row was expected.
	// An empty list result is not an error and never uses this.
	ErrNotFound = errors.New("not found")
)

// ValidationError carries one message per failing form field. It is produced
// before any store call and must never be retried against the store.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid fields: " + strings.Join(keys, ", ")
}

// StoreError wraps any failure talking to the database. Callers must treat
// it as fail-closed: never as "available" and never as "created".
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}
