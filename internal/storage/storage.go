package storage

import (
	"context"
	"errors"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

var (
	ErrObjectNotFound = errors.New("object not found in storage")
	ErrObjectTooLarge = errors.New("object exceeds size limit")
)

// Object is a downloaded blob.
type Object struct {
	Data        []byte
	ContentType string
}

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GetObject downloads an object. Objects larger than maxBytes fail with
	// ErrObjectTooLarge; a missing key is ErrObjectNotFound.
	GetObject(ctx context.Context, objectKey string, maxBytes int64) (*Object, error)
}
