package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// BookIDPrefix prefixes every generated book identifier.
const BookIDPrefix string = "b"

// BookStore owns the in-memory book list of the session. Each mutation
// builds the next list, writes it to the slot and only then swaps it in.
type BookStore struct {
	mu        sync.Mutex
	logger    *zap.Logger
	slot      BookListSlot
	clock     Clocker
	ids       UIDHandler
	validator *InputValidator
	books     []Book
}

// NewBookStore provides an empty store. Call Load to fill it from the slot.
func NewBookStore(logger *zap.Logger, slot BookListSlot, clock Clocker, ids UIDHandler, v *InputValidator) *BookStore {
	return &BookStore{
		logger:    logger,
		slot:      slot,
		clock:     clock,
		ids:       ids,
		validator: v,
		books:     []Book{},
	}
}

// Load reads the persisted mirror into memory and returns a copy of the
// resulting list. Any read or decoding failure yields an empty list.
func (s *BookStore) Load(ctx context.Context) []Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books = []Book{}
	data, err := s.slot.Read(ctx)
	if errors.Is(err, ErrSlotEmpty) {
		return []Book{}
	}
	if err != nil {
		s.logger.Warn("store: failed to read persisted list. starting empty", zap.Error(err))
		return []Book{}
	}

	books, err := s.decodeStoredList(data)
	if err != nil {
		s.logger.Warn("store: persisted list is unusable. starting empty", zap.Error(err))
		return []Book{}
	}
	s.books = books
	s.logger.Info("store: persisted list loaded", zap.Int("store.count", len(books)))
	return cloneBooks(books)
}

// decodeStoredList keeps entries having a string title and
// migrates the purchased flag of older records to a boolean. Ids are
// unique afterwards: later records reusing an id are dropped.
func (s *BookStore) decodeStoredList(data []byte) ([]Book, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	if raws == nil {
		return nil, errors.New("persisted value is not an array")
	}

	books := make([]Book, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	for i, raw := range raws {
		var fields map[string]interface{}
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			s.logger.Debug("store: skipping non object entry", zap.Int("store.index", i))
			continue
		}
		title, ok := fields["title"].(string)
		if !ok {
			s.logger.Debug("store: skipping entry without title", zap.Int("store.index", i))
			continue
		}
		b := Book{
			ID:        coerceText(fields["id"]),
			Title:     title,
			Author:    coerceText(fields["author"]),
			URL:       coerceText(fields["url"]),
			Note:      coerceText(fields["note"]),
			CreatedAt: coerceMillis(fields["createdAt"]),
		}
		if b.ID == "" {
			b.ID = s.ids.Generate(BookIDPrefix)
		}
		if _, dup := seen[b.ID]; dup {
			s.logger.Warn("store: skipping entry with duplicated id", zap.Int("store.index", i), zap.String("book.id", b.ID))
			continue
		}
		seen[b.ID] = struct{}{}
		if purchased, ok := fields["purchased"].(bool); ok {
			b.Purchased = purchased
		}
		books = append(books, b)
	}
	return books, nil
}

// Save serializes the full list to the persisted mirror.
func (s *BookStore) Save(ctx context.Context, books []Book) error {
	if books == nil {
		books = []Book{}
	}
	data, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("store: encode list: %w", err)
	}
	if err = s.slot.Write(ctx, data); err != nil {
		return fmt.Errorf("store: write list: %w", err)
	}
	return nil
}

// commit persists next and makes it the current list. Caller holds the lock.
func (s *BookStore) commit(ctx context.Context, next []Book) error {
	if err := s.Save(ctx, next); err != nil {
		return err
	}
	s.books = next
	return nil
}

func (s *BookStore) indexOf(id string) int {
	for i := range s.books {
		if s.books[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *BookStore) normalizeAndValidate(in BookInput) (BookInput, error) {
	in = in.Normalize()
	if err := s.validator.Validate(in); err != nil {
		return in, err
	}
	return in, nil
}

// Add prepends a new book built from the input. The title is
// required once trimmed, otherwise nothing changes.
func (s *BookStore) Add(ctx context.Context, in BookInput) (Book, error) {
	in, err := s.normalizeAndValidate(in)
	if err != nil {
		return Book{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book := in.apply(Book{
		ID:        s.ids.Generate(BookIDPrefix),
		CreatedAt: s.clock.Now().UnixMilli(),
	})
	next := make([]Book, 0, len(s.books)+1)
	next = append(next, book)
	next = append(next, s.books...)
	if err = s.commit(ctx, next); err != nil {
		return Book{}, err
	}
	return book, nil
}

// Update replaces the mutable fields of the book identified by id.
// The identifier and the creation time are preserved.
func (s *BookStore) Update(ctx context.Context, id string, in BookInput) (Book, error) {
	in, err := s.normalizeAndValidate(in)
	if err != nil {
		return Book{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Book{}, ErrBookNotFound
	}
	next := cloneBooks(s.books)
	next[idx] = in.apply(next[idx])
	if err = s.commit(ctx, next); err != nil {
		return Book{}, err
	}
	return next[idx], nil
}

// Remove deletes the book identified by id and returns it.
func (s *BookStore) Remove(ctx context.Context, id string) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Book{}, ErrBookNotFound
	}
	removed := s.books[idx]
	next := make([]Book, 0, len(s.books)-1)
	next = append(next, s.books[:idx]...)
	next = append(next, s.books[idx+1:]...)
	if err := s.commit(ctx, next); err != nil {
		return Book{}, err
	}
	return removed, nil
}

// TogglePurchased flips the purchased flag of the book identified by id.
func (s *BookStore) TogglePurchased(ctx context.Context, id string) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Book{}, ErrBookNotFound
	}
	next := cloneBooks(s.books)
	next[idx].Purchased = !next[idx].Purchased
	if err := s.commit(ctx, next); err != nil {
		return Book{}, err
	}
	return next[idx], nil
}

// Clear empties the list and returns how many books were removed. A non
// empty list is only cleared when the caller confirmed the operation.
func (s *BookStore) Clear(ctx context.Context, confirmed bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.books)
	if count == 0 {
		return 0, nil
	}
	if !confirmed {
		return 0, ErrConfirmationRequired
	}
	if err := s.commit(ctx, []Book{}); err != nil {
		return 0, err
	}
	return count, nil
}

// Replace swaps the whole list.
func (s *BookStore) Replace(ctx context.Context, books []Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, cloneBooks(books))
}

// Apply runs fn against a copy of the current list and commits its result.
// No other mutation can interleave between the read and the commit.
func (s *BookStore) Apply(ctx context.Context, fn func(current []Book) ([]Book, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(cloneBooks(s.books))
	if err != nil {
		return err
	}
	return s.commit(ctx, next)
}

// List returns a copy of the current list, newest first.
func (s *BookStore) List() []Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneBooks(s.books)
}

// Get returns the book identified by id.
func (s *BookStore) Get(id string) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return Book{}, ErrBookNotFound
	}
	return s.books[idx], nil
}

// Len returns the number of books.
func (s *BookStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.books)
}

// Close releases the persisted slot.
func (s *BookStore) Close() error {
	return s.slot.Close()
}

func cloneBooks(books []Book) []Book {
	out := make([]Book, len(books))
	copy(out, books)
	return out
}
