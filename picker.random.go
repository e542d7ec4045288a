package main

import (
	"math/rand"
)

// IndexSource returns a uniformly distributed integer in [0, n). n is always > 0.
type IndexSource func(n int) int

// Picker selects one element of a pool with uniform probability.
type Picker struct {
	intn IndexSource
}

// NewPicker returns a Picker backed by src, or by math/rand when src is nil.
func NewPicker(src IndexSource) *Picker {
	if src == nil {
		src = rand.Intn
	}
	return &Picker{intn: src}
}

// PickIndex returns an index in [0, n). The source is never
// consulted for an empty pool.
func (p *Picker) PickIndex(n int) (int, error) {
	if n <= 0 {
		return -1, ErrNoCandidates
	}
	return p.intn(n), nil
}

// PickOne returns one book of pool.
func (p *Picker) PickOne(pool []Book) (Book, error) {
	idx, err := p.PickIndex(len(pool))
	if err != nil {
		return Book{}, err
	}
	return pool[idx], nil
}
