package main

import "context"

// BookListSlot is the persisted mirror of the book list. It holds a
// single JSON array under one fixed key of a key-value store.
type BookListSlot interface {
	// Read returns ErrSlotEmpty when nothing was saved yet.
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}
