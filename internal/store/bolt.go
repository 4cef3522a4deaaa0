package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketMetadata = []byte("metadata")

// Bolt is a file-backed Store over a single BoltDB bucket.
type Bolt struct {
	db *bolt.DB
}

func NewBolt(path string) (*Bolt, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMetadata)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Bolt{db: db}, nil
}

func (s *Bolt) Get(_ context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketMetadata).Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return data, data != nil, nil
}

func (s *Bolt) Set(_ context.Context, key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMetadata).Put([]byte(key), value)
	})
}

func (s *Bolt) Delete(_ context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMetadata).Delete([]byte(key))
	})
}

func (s *Bolt) Clear(_ context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketMetadata); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketMetadata)
		return err
	})
}

func (s *Bolt) Close() error {
	return s.db.Close()
}
