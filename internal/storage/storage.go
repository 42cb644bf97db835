// Package storage uploads media bytes to the object store and hands back
// public retrieval URLs.
package storage

import (
	"context"
	"errors"
)

// ErrUploadRejected indicates the backend refused the upload (missing
// bucket, access policy, etc.).
var ErrUploadRejected = errors.New("storage upload rejected")

// Provider writes objects to a bucket. Upload uses overwrite semantics so
// a key collision never fails the operation.
type Provider interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error)
}
