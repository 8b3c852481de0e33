package storage

import (
	"context"
	"io"
)

// UploadResult reports where an object landed: the key it was stored under,
// the public URL that resolves to it and the ETag the backend returned.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader stores binary assets (tournament logos) under caller-chosen
// keys. Implementations must be safe for concurrent use.
type FileUploader interface {
	// Upload streams the reader's content to the backend under key.
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error

	// GetPublicURL resolves key against the configured public base URL.
	// It returns the empty string when no URL can be formed.
	GetPublicURL(key string) string
}
