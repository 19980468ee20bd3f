package core

import (
	"slices"

	"github.com/ishanwen-byte/genevo-go/pkg/representation"
)

// Population is an ordered collection of individuals. Order carries no
// meaning unless a ranker has just sorted it.
type Population[T any] []Individual[T]

// Clone returns a shallow copy.
func (p Population[T]) Clone() Population[T] {
	return slices.Clone(p)
}

// Concat returns a new population holding p followed by other.
func (p Population[T]) Concat(other Population[T]) Population[T] {
	out := make(Population[T], 0, len(p)+len(other))
	out = append(out, p...)
	return append(out, other...)
}

// Fitnesses returns the fitness of every individual in order.
func (p Population[T]) Fitnesses() []float64 {
	values := make([]float64, len(p))
	for i, ind := range p {
		values[i] = ind.fitness
	}
	return values
}

// AllEvaluated reports whether every individual has a fitness.
func (p Population[T]) AllEvaluated() bool {
	return p.Unevaluated() == 0
}

// Unevaluated returns the number of individuals without a fitness.
func (p Population[T]) Unevaluated() int {
	n := 0
	for _, ind := range p {
		if !ind.evaluated {
			n++
		}
	}
	return n
}

// Genotypes returns the genotype of every individual in order.
func (p Population[T]) Genotypes() []representation.Genotype[T] {
	out := make([]representation.Genotype[T], len(p))
	for i, ind := range p {
		out[i] = ind.genotype
	}
	return out
}
