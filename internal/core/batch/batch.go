// Package batch splits record lists into fixed-size chunks and processes
// them in order.
package batch

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidSize is returned for a batch size below 1.
var ErrInvalidSize = errors.New("batch size must be at least 1")

// Error reports the chunk that stopped Process. Index is zero-based.
type Error struct {
	Index int
	Size  int
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("batch %d (%d items): %v", e.Index+1, e.Size, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Split returns consecutive chunks of at most size items in input order.
// Empty input yields no chunks.
func Split[T any](items []T, size int) ([][]T, error) {
	if size < 1 {
		return nil, ErrInvalidSize
	}
	return slices.Collect(slices.Chunk(items, size)), nil
}

// Count is the number of chunks Split would return.
func Count(n, size int) int {
	if size < 1 || n == 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Process calls fn for each chunk sequentially and stops at the first
// failure.
func Process[T any](ctx context.Context, items []T, size int, fn func(ctx context.Context, chunk []T, index int) error) error {
	chunks, err := Split(items, size)
	if err != nil {
		return err
	}
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return &Error{Index: i, Size: len(chunk), Err: err}
		}
		if err := fn(ctx, chunk, i); err != nil {
			return &Error{Index: i, Size: len(chunk), Err: err}
		}
	}
	return nil
}
