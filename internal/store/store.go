// Package store reads and writes the tag frames kiln manages inside audio
// files.
package store

import (
	"context"
	"fmt"

	"kiln/internal/diff"
	"kiln/internal/tags"
)

// Reader returns the current tag state of a file. An untagged file yields an
// empty state.
type Reader interface {
	Read(ctx context.Context, file string) (tags.State, error)
}

// Writer applies diff operations to a file.
type Writer interface {
	Write(ctx context.Context, file string, ops []diff.Op) error
}

// Store is a Reader and a Writer.
type Store interface {
	Reader
	Writer
}

// ReadError reports a file whose tags could not be read.
type ReadError struct {
	File string
	Err  error
}

func (e *ReadError) Error() string { return fmt.Sprintf("read tags from %s: %v", e.File, e.Err) }

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a file whose tags could not be written.
type WriteError struct {
	File string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write tags to %s: %v", e.File, e.Err) }

func (e *WriteError) Unwrap() error { return e.Err }
