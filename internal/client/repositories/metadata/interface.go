// Package metadata is the client's durable key/value store. Values are
// opaque byte strings; callers own the meaning of each key.
package metadata

import (
	"context"
	"time"
)

// Entry describes a stored key without exposing its value.
type Entry struct {
	Key       string
	Size      int
	UpdatedAt time.Time // zero for rows written before timestamps were kept
}

// Repository persists small key/value pairs.
//
// Get returns (nil, nil) for a missing key. Set overwrites and stamps the
// row. Delete and Clear succeed when there is nothing to remove.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Entries(ctx context.Context) ([]Entry, error)
	Clear(ctx context.Context) error
}
