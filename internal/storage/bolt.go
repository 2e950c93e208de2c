// bolt.go
//
// Storefront data service for catalog, orders and digital delivery
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of storefront-data.
// storefront-data is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// storefront-data is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with storefront-data.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var (
	bucketBlobs   = []byte("blobs")
	bucketMeta    = []byte("meta")
	bucketUploads = []byte("uploads")
)

// BoltStore is a BlobStore kept in a single bbolt file
type BoltStore struct {
	db  *bolt.DB
	now func() time.Time
}

var _ BlobStore = (*BoltStore)(nil)

// OpenBolt opens (or creates) the blob database at path
func OpenBolt(path string) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create blob directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open blob store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketBlobs, bucketMeta, bucketUploads} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize blob buckets: %w", err)
	}

	zap.S().Infof("Opened blob store: %s", path)

	return &BoltStore{db: db, now: time.Now}, nil
}

func (s *BoltStore) CreateUploadToken(ctx context.Context, ttl time.Duration) (string, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return "", time.Time{}, err
	}

	token := uuid.NewString()
	expiresAt := s.now().Add(ttl).UTC()
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUploads).Put([]byte(token), encodeTime(expiresAt))
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (s *BoltStore) Upload(ctx context.Context, token, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	err := s.db.Update(func(tx *bolt.Tx) error {
		uploads := tx.Bucket(bucketUploads)
		raw := uploads.Get([]byte(token))
		if raw == nil {
			return ErrInvalidToken
		}
		if err := uploads.Delete([]byte(token)); err != nil {
			return err
		}
		if !s.now().Before(decodeTime(raw)) {
			return ErrTokenExpired
		}

		meta, err := json.Marshal(BlobMeta{
			ID:          id,
			ContentType: contentType,
			Size:        int64(len(data)),
			CreatedAt:   s.now().UTC(),
		})
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketMeta).Put([]byte(id), meta); err != nil {
			return err
		}
		return tx.Bucket(bucketBlobs).Put([]byte(id), data)
	})
	if err == ErrTokenExpired {
		// the expired token is still consumed; commit that deletion
		_ = s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketUploads).Delete([]byte(token))
		})
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *BoltStore) Get(ctx context.Context, id string) (*Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var blob Blob
	err := s.db.View(func(tx *bolt.Tx) error {
		meta, err := readMeta(tx, id)
		if err != nil {
			return err
		}
		blob.BlobMeta = *meta
		// bbolt memory is only valid for the life of the transaction
		data := tx.Bucket(bucketBlobs).Get([]byte(id))
		blob.Data = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &blob, nil
}

func (s *BoltStore) Stat(ctx context.Context, id string) (*BlobMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var meta *BlobMeta
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		meta, err = readMeta(tx, id)
		return err
	})
	return meta, err
}

func (s *BoltStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		metaBucket := tx.Bucket(bucketMeta)
		if metaBucket.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		if err := metaBucket.Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(bucketBlobs).Delete([]byte(id))
	})
}

func (s *BoltStore) PurgeExpiredTokens(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	now := s.now()
	purged := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		uploads := tx.Bucket(bucketUploads)
		var expired [][]byte
		err := uploads.ForEach(func(k, v []byte) error {
			if !now.Before(decodeTime(v)) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := uploads.Delete(k); err != nil {
				return err
			}
		}
		purged = len(expired)
		return nil
	})
	return purged, err
}

// Ping checks that the buckets are present
func (s *BoltStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketBlobs, bucketMeta, bucketUploads} {
			if tx.Bucket(name) == nil {
				return fmt.Errorf("blob store bucket %s missing", name)
			}
		}
		return nil
	})
}

// Close closes the underlying bbolt file
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func readMeta(tx *bolt.Tx, id string) (*BlobMeta, error) {
	raw := tx.Bucket(bucketMeta).Get([]byte(id))
	if raw == nil {
		return nil, ErrNotFound
	}
	var meta BlobMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("corrupt metadata for blob %s: %w", id, err)
	}
	return &meta, nil
}

func encodeTime(t time.Time) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(t.UnixNano()))
	return buf
}

func decodeTime(b []byte) time.Time {
	if len(b) != 8 {
		return time.Time{}
	}
	return time.Unix(0, int64(binary.BigEndian.Uint64(b)))
}
