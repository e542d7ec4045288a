package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleBooks() []Book {
	return []Book{
		{ID: "b:1", Title: "Dune", Author: "Frank Herbert", Purchased: true, CreatedAt: 4},
		{ID: "b:2", Title: "Foundation", Author: "Isaac Asimov", Note: "re-read the trilogy", CreatedAt: 3},
		{ID: "b:3", Title: "Hyperion", Note: "recommended by Dune fans", CreatedAt: 2},
		{ID: "b:4", Title: "Neuromancer", Author: "William Gibson", Purchased: true, CreatedAt: 1},
	}
}

// TestFilterBooks ensures the query matches title, author and note ignoring case.
func TestFilterBooks(t *testing.T) {
	books := sampleBooks()
	testCases := []struct {
		name     string
		query    string
		expected []string
	}{
		{"empty query keeps all", "", []string{"b:1", "b:2", "b:3", "b:4"}},
		{"blank query keeps all", "  \t ", []string{"b:1", "b:2", "b:3", "b:4"}},
		{"title and note match", "DUNE", []string{"b:1", "b:3"}},
		{"author match", "asimov", []string{"b:2"}},
		{"note match", "trilogy", []string{"b:2"}},
		{"query is trimmed", "  gibson ", []string{"b:4"}},
		{"no match", "tolkien", []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterBooks(books, tc.query)
			ids := make([]string, 0, len(got))
			for _, b := range got {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tc.expected, ids)
		})
	}
}

// TestCountByStatus ensures the purchase tally of a filtered list.
func TestCountByStatus(t *testing.T) {
	assert.Equal(t, StatusCounts{Purchased: 2, Unpurchased: 2, Total: 4}, CountByStatus(sampleBooks()))
	assert.Equal(t, StatusCounts{Purchased: 1, Unpurchased: 1, Total: 2}, CountByStatus(FilterBooks(sampleBooks(), "dune")))
	assert.Equal(t, StatusCounts{}, CountByStatus(nil))
}

// TestBuildPool ensures the purchase mode applies after the query filter.
func TestBuildPool(t *testing.T) {
	books := sampleBooks()
	testCases := []struct {
		name     string
		query    string
		mode     PurchaseMode
		expected int
	}{
		{"all books", "", ModeAll, 4},
		{"purchased only", "", ModePurchased, 2},
		{"unpurchased only", "", ModeUnpurchased, 2},
		{"query then purchased", "dune", ModePurchased, 1},
		{"query then unpurchased", "gibson", ModeUnpurchased, 0},
		{"unknown mode applies no restriction", "", PurchaseMode("weird"), 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Len(t, BuildPool(books, tc.query, tc.mode), tc.expected)
		})
	}
}

// TestParsePurchaseMode ensures the accepted spellings.
func TestParsePurchaseMode(t *testing.T) {
	for input, expected := range map[string]PurchaseMode{
		"":                 ModeAll,
		"all":              ModeAll,
		"Purchased":        ModePurchased,
		"purchased-only":   ModePurchased,
		"unpurchased":      ModeUnpurchased,
		"unpurchased-only": ModeUnpurchased,
	} {
		mode, err := ParsePurchaseMode(input)
		assert.NoError(t, err)
		assert.Equal(t, expected, mode)
	}
	_, err := ParsePurchaseMode("some")
	assert.ErrorIs(t, err, ErrValidation)
}
