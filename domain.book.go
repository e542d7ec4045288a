package main

import (
	"regexp"
	"strings"
)

// Book represents a single entry of the want-to-read list.
// Optional text fields are omitted from JSON when empty.
type Book struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author,omitempty"`
	URL       string `json:"url,omitempty"`
	Note      string `json:"note,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	Purchased bool   `json:"purchased"`
}

// BookInput holds the user editable fields of a book. It is
// the payload of both the registration and the edit form.
type BookInput struct {
	Title     string `json:"title" validate:"required"`
	Author    string `json:"author"`
	URL       string `json:"url"`
	Note      string `json:"note"`
	Purchased bool   `json:"purchased"`
}

var schemeRegexp = regexp.MustCompile(`(?i)^https?://`)

// EnsureHTTPS prepends the https scheme to a link which has no http(s) scheme.
func EnsureHTTPS(u string) string {
	if schemeRegexp.MatchString(u) {
		return u
	}
	return "https://" + u
}

// Normalize trims all text fields and normalizes the link.
func (in BookInput) Normalize() BookInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Note = strings.TrimSpace(in.Note)
	in.URL = strings.TrimSpace(in.URL)
	if in.URL != "" {
		in.URL = EnsureHTTPS(in.URL)
	}
	return in
}

// apply copies the mutable fields of an already normalized input onto b.
// The identifier and the creation time are never touched.
func (in BookInput) apply(b Book) Book {
	b.Title = in.Title
	b.Author = in.Author
	b.URL = in.URL
	b.Note = in.Note
	b.Purchased = in.Purchased
	return b
}

// PurchaseMode restricts which books are eligible for a random pick.
type PurchaseMode string

const (
	ModeAll         PurchaseMode = "all"
	ModePurchased   PurchaseMode = "purchased-only"
	ModeUnpurchased PurchaseMode = "unpurchased-only"
)

// ParsePurchaseMode maps user supplied values to a PurchaseMode.
// The empty string selects all books.
func ParsePurchaseMode(s string) (PurchaseMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ModeAll, nil
	case "purchased", "purchased-only":
		return ModePurchased, nil
	case "unpurchased", "unpurchased-only":
		return ModeUnpurchased, nil
	}
	return "", &ValidationError{Field: "mode", Reason: "must be one of all, purchased-only, unpurchased-only"}
}

// ImportMode tells how an imported set is combined with the current list.
type ImportMode string

const (
	ImportReplace ImportMode = "replace"
	ImportMerge   ImportMode = "merge"
)

// ParseImportMode validates the import mode value.
func ParseImportMode(s string) (ImportMode, error) {
	switch ImportMode(strings.ToLower(strings.TrimSpace(s))) {
	case ImportReplace:
		return ImportReplace, nil
	case ImportMerge:
		return ImportMerge, nil
	}
	return "", &ValidationError{Field: "mode", Reason: "must be replace or merge"}
}

// StatusCounts is the purchase state tally over a list of books.
type StatusCounts struct {
	Purchased   int `json:"purchased"`
	Unpurchased int `json:"unpurchased"`
	Total       int `json:"total"`
}
