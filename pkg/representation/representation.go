// Package representation holds the generic value containers evolved by the
// engine: genes, chromosomes and genotypes.
//
// Every container is immutable. Alteration replaces genes and chromosomes
// through the With* methods, which return new values and leave the receiver
// untouched, so individuals sharing structure never observe each other's
// changes.
package representation

import (
	"errors"
	"math/rand/v2"
)

// ErrSizeMismatch is returned when two representations that must line up
// element by element do not.
var ErrSizeMismatch = errors.New("size mismatch")

// Representation is an ordered collection of values of type T.
type Representation[T any] interface {
	// Size returns the number of direct elements.
	Size() int
	// Verify reports whether every element is locally valid.
	Verify() bool
	// Flatten returns the values depth-first.
	Flatten() []T
}

// Builder creates a fresh random genotype. It is called once per individual
// during population initialization.
type Builder[T any] func(r *rand.Rand) Genotype[T]

// FoldLeft folds the flattened values of r from the left.
func FoldLeft[T, A any](r Representation[T], init A, f func(acc A, value T) A) A {
	acc := init
	for _, v := range r.Flatten() {
		acc = f(acc, v)
	}
	return acc
}

// FoldRight folds the flattened values of r from the right.
func FoldRight[T, A any](r Representation[T], init A, f func(value T, acc A) A) A {
	values := r.Flatten()
	acc := init
	for i := len(values) - 1; i >= 0; i-- {
		acc = f(values[i], acc)
	}
	return acc
}
