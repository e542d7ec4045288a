package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

var _ BookListSlot = (*boltListSlot)(nil)

type boltListSlot struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
	key    []byte
}

// GetBoltDBClient setup the database and the bucket then provides a ready to use client.
func GetBoltDBClient(config *Config) (*bolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(config.BoltDB.FilePath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create the database folder, %v", err)
	}
	db, err := bolt.Open(config.BoltDB.FilePath, 0o600, &bolt.Options{Timeout: config.BoltDB.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, errB := tx.CreateBucketIfNotExists([]byte(config.BoltDB.BucketName)); errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", config.BoltDB.BucketName, errB)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up bucket: %v", err)
	}
	return db, nil
}

// NewBoltListSlot provides a bolt-based slot storing the list under key.
func NewBoltListSlot(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB, key string) BookListSlot {
	return &boltListSlot{
		logger: logger,
		client: client,
		config: boltConfig,
		key:    []byte(key),
	}
}

// Read fetches the saved list from its bucket.
func (bs *boltListSlot) Read(_ context.Context) ([]byte, error) {
	// initialize a readable transaction.
	tx, err := bs.client.Begin(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	bucket := tx.Bucket([]byte(bs.config.BucketName))
	if bucket == nil {
		return nil, ErrSlotEmpty
	}
	result := bucket.Get(bs.key)
	if result == nil {
		return nil, ErrSlotEmpty
	}
	// value is only valid during the transaction.
	data := make([]byte, len(result))
	copy(data, result)
	return data, nil
}

// Write replaces the saved list.
func (bs *boltListSlot) Write(_ context.Context, data []byte) error {
	return bs.client.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(bs.config.BucketName))
		if err != nil {
			return err
		}
		return bucket.Put(bs.key, data)
	})
}

// Close shuts down the underlying bolt database.
func (bs *boltListSlot) Close() error {
	return bs.client.Close()
}
