package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// This file contains mocks definitions needed to perform unit tests.

// MockBookListSlot is a BookListSlot driven by its function fields.
type MockBookListSlot struct {
	ReadFunc  func(ctx context.Context) ([]byte, error)
	WriteFunc func(ctx context.Context, data []byte) error
	CloseFunc func() error
}

// Read mocks the behavior of reading the saved list.
func (m *MockBookListSlot) Read(ctx context.Context) ([]byte, error) {
	return m.ReadFunc(ctx)
}

// Write mocks the behavior of saving the list.
func (m *MockBookListSlot) Write(ctx context.Context, data []byte) error {
	return m.WriteFunc(ctx, data)
}

// Close mocks the behavior of releasing the slot.
func (m *MockBookListSlot) Close() error {
	if m.CloseFunc == nil {
		return nil
	}
	return m.CloseFunc()
}

// memorySlot is an in-memory BookListSlot which records every write.
type memorySlot struct {
	mu     sync.Mutex
	data   []byte
	writes int
}

func newMemorySlot(initial string) *memorySlot {
	s := &memorySlot{}
	if initial != "" {
		s.data = []byte(initial)
	}
	return s
}

func (s *memorySlot) Read(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), s.data...), nil
}

func (s *memorySlot) Write(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	s.writes++
	return nil
}

func (s *memorySlot) Close() error {
	return nil
}

func (s *memorySlot) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.data)
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// NewTicker returns a real ticker so the mock also satisfies TickerClocker.
func (mck *MockClocker) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// SeqUIDHandler generates distinct predictable ids: <prefix>:<n>.
type SeqUIDHandler struct {
	mu sync.Mutex
	n  int
}

func (s *SeqUIDHandler) Generate(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s:%d", prefix, s.n)
}

// fixedIndex returns an IndexSource always answering idx.
func fixedIndex(idx int) IndexSource {
	return func(int) int { return idx }
}

// newTestStore builds a store over slot with sequential ids and the mocked clock.
func newTestStore(slot BookListSlot) *BookStore {
	return NewBookStore(zap.NewNop(), slot, NewMockClocker(), &SeqUIDHandler{}, NewInputValidator())
}
