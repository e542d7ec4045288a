package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/boltdb/bolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestBoltSlot returns a bolt slot stored in a temporary folder.
func newTestBoltSlot(t *testing.T) (BookListSlot, *Config) {
	t.Helper()
	testConfig := &Config{
		BoltDB: BoltDBConfig{
			FilePath:   filepath.Join(t.TempDir(), "data", "tmp.bolt.db"),
			Timeout:    5 * time.Second,
			BucketName: "test.books",
		},
	}
	client, err := GetBoltDBClient(testConfig)
	require.NoError(t, err, "failed in creating a test bolt store")
	return NewBoltListSlot(zap.NewNop(), &testConfig.BoltDB, client, DefaultStorageKey), testConfig
}

// TestBoltSlot ensures the list can be written, read back and overwritten.
func TestBoltSlot(t *testing.T) {
	slot, config := newTestBoltSlot(t)
	defer slot.Close()

	t.Run("read empty slot", func(t *testing.T) {
		data, err := slot.Read(context.TODO())
		assert.ErrorIs(t, err, ErrSlotEmpty)
		assert.Nil(t, data)
	})

	t.Run("write then read", func(t *testing.T) {
		require.NoError(t, slot.Write(context.TODO(), []byte(`[{"id":"b:0","title":"Bolt"}]`)))
		data, err := slot.Read(context.TODO())
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"b:0","title":"Bolt"}]`, string(data))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, slot.Write(context.TODO(), []byte(`[]`)))
		data, err := slot.Read(context.TODO())
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data))
	})

	t.Run("database file created", func(t *testing.T) {
		_, err := os.Stat(config.BoltDB.FilePath)
		assert.NoError(t, err)
	})
}

// TestBoltSlot_BookStore ensures the store survives a restart on bolt.
func TestBoltSlot_BookStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.db")
	config := &Config{BoltDB: BoltDBConfig{FilePath: path, Timeout: time.Second, BucketName: DefaultBucketName}}

	client, err := GetBoltDBClient(config)
	require.NoError(t, err)
	store := newTestStore(NewBoltListSlot(zap.NewNop(), &config.BoltDB, client, DefaultStorageKey))
	store.Load(context.Background())
	book, err := store.Add(context.Background(), BookInput{Title: "Persisted", Note: "kept"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	client, err = GetBoltDBClient(config)
	require.NoError(t, err)
	reopened := newTestStore(NewBoltListSlot(zap.NewNop(), &config.BoltDB, client, DefaultStorageKey))
	defer reopened.Close()
	assert.Equal(t, []Book{book}, reopened.Load(context.Background()))
}

// TestBoltSlot_MissingBucket ensures a removed bucket reads as empty.
func TestBoltSlot_MissingBucket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.db")
	config := &Config{BoltDB: BoltDBConfig{FilePath: path, Timeout: time.Second, BucketName: "gone"}}
	client, err := GetBoltDBClient(config)
	require.NoError(t, err)
	require.NoError(t, client.Update(func(tx *bolt.Tx) error {
		return tx.DeleteBucket([]byte("gone"))
	}))
	slot := NewBoltListSlot(zap.NewNop(), &config.BoltDB, client, DefaultStorageKey)
	defer slot.Close()
	_, err = slot.Read(context.Background())
	assert.ErrorIs(t, err, ErrSlotEmpty)
	require.NoError(t, slot.Write(context.Background(), []byte("[]")))
	data, err := slot.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
