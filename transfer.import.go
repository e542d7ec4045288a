package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ImportedBook is a sanitized import record. Besides the book itself it
// remembers which fields the source carried, so that a merge only
// overlays what was actually provided.
type ImportedBook struct {
	Book
	HasID        bool
	HasCreatedAt bool
	HasPurchased bool
}

// RejectedEntry is an element of the import array which could not become a book.
type RejectedEntry struct {
	Index  int             `json:"index"`
	Reason string          `json:"reason"`
	Raw    json.RawMessage `json:"raw"`
}

// ImportPlan is the outcome of parsing and sanitizing an import file.
type ImportPlan struct {
	Incoming []ImportedBook
	Rejected []RejectedEntry
}

// ImportSummary is what the user sees before and after an import.
type ImportSummary struct {
	Mode     ImportMode `json:"mode,omitempty"`
	Existing int        `json:"existing"`
	Incoming int        `json:"incoming"`
	Rejected int        `json:"rejected"`
	Total    int        `json:"total"`
}

// ParseImport decodes the import file into its raw elements. The
// top level value must be a JSON array.
func ParseImport(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !json.Valid(data) {
		return nil, &MalformedInputError{Reason: "file is not valid JSON"}
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil || raws == nil {
		return nil, &MalformedInputError{Reason: "top level value is not an array"}
	}
	return raws, nil
}

// SanitizeBooks coerces raw elements into books. Elements which are not
// objects or whose trimmed title is empty are rejected, never the whole set.
func SanitizeBooks(raws []json.RawMessage, ids UIDHandler, now time.Time) ([]ImportedBook, []RejectedEntry) {
	books := make([]ImportedBook, 0, len(raws))
	var rejected []RejectedEntry
	for i, raw := range raws {
		book, err := sanitizeBook(raw, ids, now)
		if err != nil {
			rejected = append(rejected, RejectedEntry{Index: i, Reason: err.Error(), Raw: raw})
			continue
		}
		books = append(books, book)
	}
	return books, rejected
}

func sanitizeBook(raw json.RawMessage, ids UIDHandler, now time.Time) (ImportedBook, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return ImportedBook{}, errors.New("entry is not an object")
	}

	title := strings.TrimSpace(coerceText(fields["title"]))
	if title == "" {
		return ImportedBook{}, &ValidationError{Field: "title", Reason: "is required"}
	}

	ib := ImportedBook{
		Book: Book{
			ID:        coerceText(fields["id"]),
			Title:     title,
			Author:    coerceText(fields["author"]),
			URL:       coerceText(fields["url"]),
			Note:      coerceText(fields["note"]),
			CreatedAt: coerceMillis(fields["createdAt"]),
		},
	}
	ib.HasID = ib.ID != ""
	if !ib.HasID {
		ib.ID = ids.Generate(BookIDPrefix)
	}
	ib.HasCreatedAt = ib.CreatedAt != 0
	if !ib.HasCreatedAt {
		ib.CreatedAt = now.UnixMilli()
	}
	if purchased, ok := fields["purchased"].(bool); ok {
		ib.Purchased = purchased
		ib.HasPurchased = true
	}
	return ib, nil
}

// PrepareImport parses and sanitizes an import file without touching any list.
func PrepareImport(data []byte, ids UIDHandler, now time.Time) (ImportPlan, error) {
	raws, err := ParseImport(data)
	if err != nil {
		return ImportPlan{}, err
	}
	incoming, rejected := SanitizeBooks(raws, ids, now)
	return ImportPlan{Incoming: incoming, Rejected: rejected}, nil
}

// Apply combines the plan with the existing list according to mode.
func (p ImportPlan) Apply(existing []Book, mode ImportMode) []Book {
	if mode == ImportReplace {
		return ReplaceBooks(p.Incoming)
	}
	return MergeBooks(existing, p.Incoming)
}

// Summary reports the counts of the plan against an existing list size.
func (p ImportPlan) Summary(existing int) ImportSummary {
	return ImportSummary{Existing: existing, Incoming: len(p.Incoming), Rejected: len(p.Rejected)}
}

func bookMergeKey(id, title, author string) string {
	if id != "" {
		return id
	}
	return title + "|" + author
}

// MergeKey is the identifier used to deduplicate the record during a merge.
func (ib ImportedBook) MergeKey() string {
	if ib.HasID {
		return ib.ID
	}
	return bookMergeKey("", ib.Title, ib.Author)
}

// overlay merges the carried fields of ib onto existing. A generated id
// never replaces the id of an existing record.
func (ib ImportedBook) overlay(existing Book) Book {
	out := existing
	if ib.HasID {
		out.ID = ib.ID
	}
	out.Title = ib.Title
	if ib.Author != "" {
		out.Author = ib.Author
	}
	if ib.URL != "" {
		out.URL = ib.URL
	}
	if ib.Note != "" {
		out.Note = ib.Note
	}
	if ib.HasCreatedAt {
		out.CreatedAt = ib.CreatedAt
	}
	if ib.HasPurchased {
		out.Purchased = ib.Purchased
	}
	return out
}

// ReplaceBooks turns the incoming set into the new list. Records sharing
// an id collapse into one so identifiers stay unique.
func ReplaceBooks(incoming []ImportedBook) []Book {
	index := make(map[string]int, len(incoming))
	out := make([]Book, 0, len(incoming))
	for _, ib := range incoming {
		if i, seen := index[ib.ID]; seen {
			out[i] = ib.overlay(out[i])
			continue
		}
		index[ib.ID] = len(out)
		out = append(out, ib.Book)
	}
	SortNewestFirst(out)
	return out
}

// MergeBooks seeds a keyed working set with the existing records (first
// one wins per key) then overlays every incoming record onto it.
func MergeBooks(existing []Book, incoming []ImportedBook) []Book {
	index := make(map[string]int, len(existing)+len(incoming))
	out := make([]Book, 0, len(existing)+len(incoming))

	for _, b := range existing {
		key := bookMergeKey(b.ID, b.Title, b.Author)
		if _, seen := index[key]; seen {
			continue
		}
		index[key] = len(out)
		out = append(out, b)
	}

	for _, ib := range incoming {
		key := ib.MergeKey()
		if i, seen := index[key]; seen {
			out[i] = ib.overlay(out[i])
			continue
		}
		index[key] = len(out)
		out = append(out, ib.Book)
	}

	SortNewestFirst(out)
	return out
}

// SortNewestFirst orders books by descending creation time, keeping
// the relative order of books created at the same time.
func SortNewestFirst(books []Book) {
	sort.SliceStable(books, func(i, j int) bool {
		return books[i].CreatedAt > books[j].CreatedAt
	})
}
