// Package storage defines the blob store capability the upload pipeline
// writes to. Backends produce errmap.ProviderError values for failures so
// the gateway can map them onto domain error codes.
package storage

import (
	"context"
	"io"
	"time"
)

// Canonical metadata keys attached to every stored blob.
const (
	MetaFileName   = "filename"
	MetaTrackingID = "trackingId"
)

// PutInput describes one blob write.
type PutInput struct {
	Key         string
	ContentType string
	Size        int64
	Metadata    map[string]string
	Body        io.Reader
}

// PutResult is the backend's receipt for a successful write.
type PutResult struct {
	ETag         string
	LastModified time.Time
}

// ObjectInfo is the listing entry for one stored blob.
type ObjectInfo struct {
	Key          string
	FileName     string
	TrackingID   string
	ContentType  string
	Size         int64
	ETag         string
	LastModified time.Time
}

// Object is a retrieved blob: its info plus a readable body that the
// caller must close.
type Object struct {
	Info ObjectInfo
	Body io.ReadCloser
}

// Backend is the blob store contract. Put is create-only: writing an
// existing key fails with a conflict provider error rather than
// overwriting.
type Backend interface {
	Put(ctx context.Context, in PutInput) (*PutResult, error)
	Get(ctx context.Context, key string) (*Object, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
