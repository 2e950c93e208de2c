package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/localnerve/storefront-data/internal/storage"
)

// ErrStoreDown is returned by a FlakyStore that is failing
var ErrStoreDown = errors.New("blob store unavailable")

// FlakyStore wraps a BlobStore and fails deletes while Failing is set
type FlakyStore struct {
	storage.BlobStore

	mu      sync.Mutex
	failing bool
	deletes int
}

// NewFlakyStore wraps store
func NewFlakyStore(store storage.BlobStore) *FlakyStore {
	return &FlakyStore{BlobStore: store}
}

// SetFailing toggles delete failures
func (s *FlakyStore) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

// Deletes counts delete attempts
func (s *FlakyStore) Deletes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deletes
}

func (s *FlakyStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	s.deletes++
	failing := s.failing
	s.mu.Unlock()

	if failing {
		return ErrStoreDown
	}
	return s.BlobStore.Delete(ctx, id)
}

func (s *FlakyStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	failing := s.failing
	s.mu.Unlock()

	if failing {
		return ErrStoreDown
	}
	return s.BlobStore.Ping(ctx)
}
