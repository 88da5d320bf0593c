// Package storage keeps the physical files behind uploaded documents.
package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrObjectNotFound = errors.New("storage: object not found")
	ErrInvalidKey     = errors.New("storage: invalid object key")
)

// Object describes a stored file.
type Object struct {
	Key         string
	Size        int64
	ContentType string
}

// Store is a flat key/value space of file objects. Keys are generated by
// GenerateKey and never contain path separators.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (Object, error)
	// Open returns ErrObjectNotFound when the key does not exist.
	Open(ctx context.Context, key string) (io.ReadCloser, int64, error)
	// Remove returns ErrObjectNotFound when the key does not exist.
	Remove(ctx context.Context, key string) error
	List(ctx context.Context) ([]Object, error)
}
