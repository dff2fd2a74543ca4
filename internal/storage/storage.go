// Package storage provides the persistence port for archived generation
// media, with implementations for local disk and S3. The remote service's
// content URLs expire after roughly 24 hours, so anything a caller wants
// to keep is written through this interface.
package storage

import (
	"context"
	"io"
)

// Storage is the persistence port for archived media.
type Storage interface {
	// Save persists media bytes under the given name and returns their
	// location: a file path for local storage, a public URL for S3.
	Save(ctx context.Context, name string, data io.Reader) (location string, err error)

	// Open reads previously saved media by location.
	// The caller is responsible for closing the returned ReadCloser.
	Open(ctx context.Context, location string) (io.ReadCloser, error)

	// Remove deletes archived media. It keeps going when individual
	// deletions fail and reports the first failure.
	Remove(ctx context.Context, locations []string) error
}
