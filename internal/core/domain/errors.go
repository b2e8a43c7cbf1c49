package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by readers when the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotConnected is returned when the store is used before Connect.
	ErrNotConnected = errors.New("database connection not established, call Connect first")
	// ErrInvalidArgument marks a rejected query parameter.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ValidationError reports every required field missing from a record.
type ValidationError struct {
	Kind    Kind
	ID      string
	Missing []string
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		parts[i] = "required field missing: " + f
	}
	msg := "validation failed: " + strings.Join(parts, ", ")
	if e.ID != "" {
		return fmt.Sprintf("%s %q: %s", e.Kind, e.ID, msg)
	}
	return msg
}

// StoreError wraps a failure inside a batch transaction. It is treated as
// transient and retried.
type StoreError struct {
	Op    string
	Table string
	Err   error
}

func (e *StoreError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("store %s %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// SourceError reports a source document that could not be read or decoded.
// It is never retried.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }
