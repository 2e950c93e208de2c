package services

import (
	"context"
	"errors"
	"time"

	"github.com/localnerve/storefront-data/internal/storage"
)

// StorageOptions controls how blob URLs are built
type StorageOptions struct {
	PublicBaseURL string
	UploadURLTTL  time.Duration
}

// UploadURL is the public address for a one-time upload token
func (o StorageOptions) UploadURL(token string) string {
	return o.PublicBaseURL + "/api/storage/upload/" + token
}

// FileURL is the public address a blob is served from
func (o StorageOptions) FileURL(storageID string) string {
	return o.PublicBaseURL + "/api/storage/files/" + storageID
}

// GenerateUploadURL reserves a single-use upload URL
func GenerateUploadURL(ctx context.Context, store storage.BlobStore, opts StorageOptions) (string, error) {
	token, _, err := store.CreateUploadToken(ctx, opts.UploadURLTTL)
	if err != nil {
		return "", err
	}
	return opts.UploadURL(token), nil
}

// UploadBlob stores data against an upload token and returns the storage id
func UploadBlob(ctx context.Context, store storage.BlobStore, token, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", invalid("Upload body is empty")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id, err := store.Upload(ctx, token, contentType, data)
	switch {
	case errors.Is(err, storage.ErrInvalidToken):
		return "", newError(ErrUnauthorized, "Invalid upload URL")
	case errors.Is(err, storage.ErrTokenExpired):
		return "", newError(ErrExpired, "Upload URL expired")
	}
	return id, err
}

// GetFileURL returns the public URL of a blob, or nil when it does not exist
func GetFileURL(ctx context.Context, store storage.BlobStore, opts StorageOptions, storageID string) (*string, error) {
	if _, err := store.Stat(ctx, storageID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	url := opts.FileURL(storageID)
	return &url, nil
}

// GetFileURLs resolves each id to its URL or nil, in input order
func GetFileURLs(ctx context.Context, store storage.BlobStore, opts StorageOptions, storageIDs []string) ([]*string, error) {
	urls := make([]*string, len(storageIDs))
	for i, id := range storageIDs {
		url, err := GetFileURL(ctx, store, opts, id)
		if err != nil {
			return nil, err
		}
		urls[i] = url
	}
	return urls, nil
}

// GetBlob loads a blob for serving
func GetBlob(ctx context.Context, store storage.BlobStore, storageID string) (*storage.Blob, error) {
	blob, err := store.Get(ctx, storageID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFound("File")
	}
	return blob, err
}

// DeleteFile removes a blob directly
func DeleteFile(ctx context.Context, store storage.BlobStore, storageID string) error {
	err := store.Delete(ctx, storageID)
	if errors.Is(err, storage.ErrNotFound) {
		return notFound("File")
	}
	return err
}
