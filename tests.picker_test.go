package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPicker_EmptyPool ensures an empty pool never reaches the index source.
func TestPicker_EmptyPool(t *testing.T) {
	called := false
	p := NewPicker(func(n int) int {
		called = true
		return 0
	})
	_, err := p.PickOne(nil)
	assert.ErrorIs(t, err, ErrNoCandidates)
	_, err = p.PickOne([]Book{})
	assert.ErrorIs(t, err, ErrNoCandidates)
	idx, err := p.PickIndex(0)
	assert.Error(t, err)
	assert.Equal(t, -1, idx)
	assert.False(t, called)
}

// TestPicker_PickOne ensures the drawn index selects the book.
func TestPicker_PickOne(t *testing.T) {
	books := sampleBooks()
	book, err := NewPicker(fixedIndex(2)).PickOne(books)
	require.NoError(t, err)
	assert.Equal(t, books[2], book)
}

// TestPicker_Uniform checks the empirical frequency of each index
// stays close to 1/n with the default random source.
func TestPicker_Uniform(t *testing.T) {
	const (
		n      = 5
		trials = 50000
	)
	p := NewPicker(nil)
	counts := make([]int, n)
	for i := 0; i < trials; i++ {
		idx, err := p.PickIndex(n)
		require.NoError(t, err)
		require.True(t, idx >= 0 && idx < n)
		counts[idx]++
	}
	expected := float64(trials) / n
	for i, c := range counts {
		assert.InDeltaf(t, expected, float64(c), expected*0.1, "index %d drawn %d times", i, c)
	}
}

// TestNoCandidatesError ensures the message follows the purchase mode.
func TestNoCandidatesError(t *testing.T) {
	for _, mode := range []PurchaseMode{ModeAll, ModePurchased, ModeUnpurchased} {
		err := error(&NoCandidatesError{Mode: mode})
		assert.True(t, errors.Is(err, ErrNoCandidates))
	}
	assert.Contains(t, (&NoCandidatesError{Mode: ModePurchased}).Error(), "no purchased books")
	assert.Contains(t, (&NoCandidatesError{Mode: ModeUnpurchased}).Error(), "no unpurchased books")
	assert.Equal(t, "no candidates. change the conditions", (&NoCandidatesError{Mode: ModeAll}).Error())
}
