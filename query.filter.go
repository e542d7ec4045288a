package main

import "strings"

// FilterBooks keeps the books whose title, author or note contains the
// query, ignoring case. A blank query keeps everything. Order is preserved.
func FilterBooks(books []Book, query string) []Book {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Book, 0, len(books))
	for _, b := range books {
		if q == "" || matchesQuery(b, q) {
			out = append(out, b)
		}
	}
	return out
}

func matchesQuery(b Book, q string) bool {
	return strings.Contains(strings.ToLower(b.Title), q) ||
		strings.Contains(strings.ToLower(b.Author), q) ||
		strings.Contains(strings.ToLower(b.Note), q)
}

// CountByStatus tallies purchased and unpurchased books.
func CountByStatus(books []Book) StatusCounts {
	var c StatusCounts
	for _, b := range books {
		if b.Purchased {
			c.Purchased++
		} else {
			c.Unpurchased++
		}
	}
	c.Total = len(books)
	return c
}

// RestrictByMode narrows books to the purchase state selected by mode.
func RestrictByMode(books []Book, mode PurchaseMode) []Book {
	if mode != ModePurchased && mode != ModeUnpurchased {
		return books
	}
	want := mode == ModePurchased
	out := make([]Book, 0, len(books))
	for _, b := range books {
		if b.Purchased == want {
			out = append(out, b)
		}
	}
	return out
}

// BuildPool derives the pick pool: query filter first, then purchase mode.
func BuildPool(books []Book, query string, mode PurchaseMode) []Book {
	return RestrictByMode(FilterBooks(books, query), mode)
}
