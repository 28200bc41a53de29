package product

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the target identifier does not exist in the
// backing store. Distinct from transient store failures.
var ErrNotFound = errors.New("product not found")

// ValidationError marks a user-correctable payload problem. It is raised
// before any store call and surfaces as a 4xx response.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid product payload: " + e.Reason
}

// StoreError wraps a failed backing-store call. Callers with a usable cached
// snapshot absorb it; paths that need fresh data surface it as a 5xx.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
