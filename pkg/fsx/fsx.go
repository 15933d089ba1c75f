// Package fsx defines storage ports decoupled from any concrete backend.
package fsx

import (
	"context"
	"io"
)

// FileReader is the read-only side of a file store
type FileReader interface {
	// ReadFile returns the full contents of the file at path
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// ReadFileStream returns a reader over the file at path.
	// The caller owns closing the returned reader.
	ReadFileStream(ctx context.Context, path string) (io.ReadCloser, error)
}

// FileSystem is the full read/write file store port
type FileSystem interface {
	FileReader

	// WriteFile stores data at path, replacing any existing file
	WriteFile(ctx context.Context, path string, data []byte) error

	// WriteFileStream stores the contents of r at path
	WriteFileStream(ctx context.Context, path string, r io.Reader) error

	// DeleteFile removes the file at path. Deleting a missing file is not an error.
	DeleteFile(ctx context.Context, path string) error

	// Join builds a backend-appropriate path from parts
	Join(parts ...string) string
}
