package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a blob id is unknown
	ErrNotFound = errors.New("blob not found")
	// ErrInvalidToken is returned for unknown or already used upload tokens
	ErrInvalidToken = errors.New("invalid upload token")
	// ErrTokenExpired is returned when an upload token is past its TTL
	ErrTokenExpired = errors.New("upload token expired")
)

// BlobMeta describes a stored blob
type BlobMeta struct {
	ID          string    `json:"id"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Blob is a stored blob with its content
type Blob struct {
	BlobMeta
	Data []byte
}

// BlobStore persists uploaded files by opaque id
type BlobStore interface {
	// CreateUploadToken reserves a single-use upload slot valid for ttl
	CreateUploadToken(ctx context.Context, ttl time.Duration) (string, time.Time, error)
	// Upload consumes token and stores data, returning the new blob id
	Upload(ctx context.Context, token, contentType string, data []byte) (string, error)
	// Get returns the blob or ErrNotFound
	Get(ctx context.Context, id string) (*Blob, error)
	// Stat returns the blob metadata or ErrNotFound
	Stat(ctx context.Context, id string) (*BlobMeta, error)
	// Delete removes the blob or returns ErrNotFound
	Delete(ctx context.Context, id string) error
	// PurgeExpiredTokens drops upload tokens past their TTL
	PurgeExpiredTokens(ctx context.Context) (int, error)
	// Ping verifies the store is readable
	Ping(ctx context.Context) error
	Close() error
}
