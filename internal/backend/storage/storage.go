// Package storage holds the object-storage boundary of the backend client.
// Uploaded images land in a fixed bucket; the only reads this client ever
// performs are public URLs derived locally, never object downloads.
//
// Two drivers exist: the service's own storage REST API (the default) and
// an S3-compatible endpoint for self-hosted deployments backed by MinIO.
package storage

import "context"

// UploadOptions mirror the boundary call shape. Upsert stays false in this
// client: a colliding key fails the upload instead of overwriting.
type UploadOptions struct {
	ContentType string
	Upsert      bool
}

// Storage uploads binary payloads and derives public retrieval URLs.
type Storage interface {
	// Upload writes payload under bucket/key. A single attempt, no retry;
	// the caller treats any failure as advisory.
	Upload(ctx context.Context, bucket, key string, payload []byte, opts UploadOptions) error

	// PublicURL derives the public retrieval URL for a key. Pure
	// computation, no network call, no existence check.
	PublicURL(bucket, key string) string
}
