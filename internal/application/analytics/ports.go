package analytics

import (
	"context"
	"time"
)

type Clock interface {
	Now() time.Time
}

// BlobInfo describes one stored object in the flat-file store.
type BlobInfo struct {
	Key        string
	Size       int64
	UploadedAt time.Time
}

// ListPage is one page of a prefix listing. Listings are eventually
// consistent; callers must tolerate stale entries.
type ListPage struct {
	Blobs   []BlobInfo
	Cursor  string
	HasMore bool
}

// BlobStore is the JSON-document object store the pipeline persists to.
type BlobStore interface {
	List(ctx context.Context, prefix, cursor string, limit int) (ListPage, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Cache fronts the full-collection retrieval, which costs one GET per blob.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, val any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// LeadPublisher broadcasts a notification when a session first submits the
// interest form. messageID MUST be stable for the publish attempt.
type LeadPublisher interface {
	Publish(ctx context.Context, routingKey, messageID string, body []byte) error
}
