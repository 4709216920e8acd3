// Package storage stores reservation attachment files in an object store.
// Two backends are supported, MinIO and Google Cloud Storage; which one is
// used is a deployment choice. Keys are built here so both backends share
// one layout: one prefix per reservation, random-suffixed file names.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path"
)

// fallbackContentType is stored when the caller supplies no MIME type.
const fallbackContentType = "application/octet-stream"

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// AttachmentKey builds the object key for a reservation attachment. The
// random infix keeps repeated uploads of the same file name from
// overwriting each other; the reservation prefix keeps one reservation's
// files enumerable under a single path.
func AttachmentKey(reservationID int, fileName string) string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err == nil {
		return fmt.Sprintf("reservations/%d/%s-%s", reservationID, hex.EncodeToString(buf[:]), path.Base(fileName))
	}
	return fmt.Sprintf("reservations/%d/%s", reservationID, path.Base(fileName))
}

// Storage wraps an ObjectStorage backend with a stable API.
type Storage struct {
	backend ObjectStorage
}

// NewStorage constructs a Storage wrapper for the provided backend.
func NewStorage(backend ObjectStorage) *Storage {
	return &Storage{backend: backend}
}

// EnsureBucket ensures the configured bucket exists.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Put uploads an object to the configured bucket. An empty content type is
// stored as application/octet-stream.
func (s *Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = fallbackContentType
	}
	return s.backend.Put(ctx, key, r, size, contentType)
}

// Get opens a reader for an object in the configured bucket.
func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, key)
}

// Delete removes an object from the configured bucket.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// Bucket returns the configured bucket name.
func (s *Storage) Bucket() string {
	return s.backend.Bucket()
}
