package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type BookServiceProvider interface {
	Add(ctx context.Context, in BookInput) (Book, error)
	GetOne(ctx context.Context, id string) (Book, error)
	Update(ctx context.Context, id string, in BookInput) (Book, error)
	Delete(ctx context.Context, id string) (Book, error)
	TogglePurchased(ctx context.Context, id string) (Book, error)
	Clear(ctx context.Context, confirmed bool) (int, error)
	Search(ctx context.Context, query string) (SearchResult, error)
	Pick(ctx context.Context, query string, mode PurchaseMode) (PickResult, error)
	Export(ctx context.Context) (ExportFile, error)
	PreviewImport(ctx context.Context, data []byte) (ImportSummary, error)
	Import(ctx context.Context, data []byte, mode ImportMode) (ImportSummary, error)
	Count(ctx context.Context) int
}

// SearchResult is the filtered view of the list with its purchase tally.
type SearchResult struct {
	Query  string       `json:"query"`
	Counts StatusCounts `json:"counts"`
	Books  []Book       `json:"books"`
}

// PickResult is one random pick with the pool it was drawn from.
type PickResult struct {
	Book     Book         `json:"book"`
	Mode     PurchaseMode `json:"mode"`
	Query    string       `json:"query"`
	PoolSize int          `json:"pool"`
}

type BookService struct {
	logger *zap.Logger
	config *Config
	clock  Clocker
	ids    UIDHandler
	store  *BookStore
	picker *Picker
}

func NewBookService(logger *zap.Logger, config *Config, clock Clocker, ids UIDHandler, store *BookStore, picker *Picker) BookServiceProvider {
	return &BookService{
		logger: logger,
		config: config,
		clock:  clock,
		ids:    ids,
		store:  store,
		picker: picker,
	}
}

func (bs *BookService) Add(ctx context.Context, in BookInput) (Book, error) {
	book, err := bs.store.Add(ctx, in)
	if err != nil {
		return book, fmt.Errorf("service: add book: %w", err)
	}
	return book, nil
}

func (bs *BookService) GetOne(_ context.Context, id string) (Book, error) {
	return bs.store.Get(id)
}

func (bs *BookService) Update(ctx context.Context, id string, in BookInput) (Book, error) {
	book, err := bs.store.Update(ctx, id, in)
	if err != nil {
		return book, fmt.Errorf("service: update book: %w", err)
	}
	return book, nil
}

func (bs *BookService) Delete(ctx context.Context, id string) (Book, error) {
	book, err := bs.store.Remove(ctx, id)
	if err != nil {
		return book, fmt.Errorf("service: delete book: %w", err)
	}
	return book, nil
}

func (bs *BookService) TogglePurchased(ctx context.Context, id string) (Book, error) {
	book, err := bs.store.TogglePurchased(ctx, id)
	if err != nil {
		return book, fmt.Errorf("service: toggle purchased: %w", err)
	}
	return book, nil
}

func (bs *BookService) Clear(ctx context.Context, confirmed bool) (int, error) {
	n, err := bs.store.Clear(ctx, confirmed)
	if err != nil {
		return n, fmt.Errorf("service: clear books: %w", err)
	}
	if n > 0 {
		bs.logger.Info("service: book list cleared", zap.Int("store.count", n))
	}
	return n, nil
}

func (bs *BookService) Search(_ context.Context, query string) (SearchResult, error) {
	books := FilterBooks(bs.store.List(), query)
	return SearchResult{Query: query, Counts: CountByStatus(books), Books: books}, nil
}

// Pick draws one book among those matching the query and the purchase mode.
func (bs *BookService) Pick(_ context.Context, query string, mode PurchaseMode) (PickResult, error) {
	pool := BuildPool(bs.store.List(), query, mode)
	book, err := bs.picker.PickOne(pool)
	if err != nil {
		return PickResult{Mode: mode, Query: query}, &NoCandidatesError{Mode: mode}
	}
	return PickResult{Book: book, Mode: mode, Query: query, PoolSize: len(pool)}, nil
}

func (bs *BookService) Export(_ context.Context) (ExportFile, error) {
	return ExportBooks(bs.store.List(), bs.clock.Now())
}

// PreviewImport reports the counts the user chooses the import mode from.
func (bs *BookService) PreviewImport(_ context.Context, data []byte) (ImportSummary, error) {
	plan, err := PrepareImport(data, bs.ids, bs.clock.Now())
	if err != nil {
		return ImportSummary{}, fmt.Errorf("service: preview import: %w", err)
	}
	return plan.Summary(bs.store.Len()), nil
}

// Import parses the file then replaces or merges the list in a single
// store transaction. A malformed file leaves the list untouched.
func (bs *BookService) Import(ctx context.Context, data []byte, mode ImportMode) (ImportSummary, error) {
	plan, err := PrepareImport(data, bs.ids, bs.clock.Now())
	if err != nil {
		return ImportSummary{}, fmt.Errorf("service: import: %w", err)
	}

	var summary ImportSummary
	err = bs.store.Apply(ctx, func(current []Book) ([]Book, error) {
		summary = plan.Summary(len(current))
		next := plan.Apply(current, mode)
		summary.Total = len(next)
		return next, nil
	})
	if err != nil {
		return ImportSummary{}, fmt.Errorf("service: import: %w", err)
	}
	summary.Mode = mode

	bs.logger.Info("service: books imported",
		zap.String("import.mode", string(mode)),
		zap.Int("import.existing", summary.Existing),
		zap.Int("import.incoming", summary.Incoming),
		zap.Int("import.rejected", summary.Rejected),
		zap.Int("import.total", summary.Total),
	)
	return summary, nil
}

func (bs *BookService) Count(_ context.Context) int {
	return bs.store.Len()
}
