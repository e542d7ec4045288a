package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

var _ BookListSlot = (*badgerListSlot)(nil)

type badgerListSlot struct {
	logger *zap.Logger
	client *badger.DB
	key    []byte
}

// badgerLogger routes badger internal messages into the app logger.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (bl badgerLogger) Warningf(format string, args ...interface{}) {
	bl.Warnf(format, args...)
}

// GetBadgerDBClient opens the badger database folder and provides a ready to use client.
func GetBadgerDBClient(logger *zap.Logger, config *Config) (*badger.DB, error) {
	opts := badger.DefaultOptions(config.BadgerDB.Dir)
	opts.Logger = badgerLogger{logger.Named("badger").Sugar()}
	opts.SyncWrites = config.BadgerDB.SyncWrites
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open the badger database, %v", err)
	}
	return db, nil
}

// NewBadgerListSlot provides a badger-based slot storing the list under key.
func NewBadgerListSlot(logger *zap.Logger, client *badger.DB, key string) BookListSlot {
	return &badgerListSlot{
		logger: logger,
		client: client,
		key:    []byte(key),
	}
}

// Read fetches the saved list.
func (bs *badgerListSlot) Read(_ context.Context) ([]byte, error) {
	var data []byte
	err := bs.client.View(func(txn *badger.Txn) error {
		item, err := txn.Get(bs.key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrSlotEmpty
	}
	return data, err
}

// Write replaces the saved list.
func (bs *badgerListSlot) Write(_ context.Context, data []byte) error {
	return bs.client.Update(func(txn *badger.Txn) error {
		return txn.Set(bs.key, data)
	})
}

// Close flushes and shuts down the underlying badger database.
func (bs *badgerListSlot) Close() error {
	return bs.client.Close()
}
