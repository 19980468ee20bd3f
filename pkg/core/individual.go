package core

import (
	"fmt"
	"math"

	"github.com/ishanwen-byte/genevo-go/pkg/representation"
)

// Individual pairs a genotype with its fitness. Fitness is NaN until the
// individual is evaluated.
//
// Fitness is derived from the genotype alone, so equality and hashing only
// look at the genotype.
type Individual[T any] struct {
	genotype  representation.Genotype[T]
	fitness   float64
	evaluated bool
}

// NewIndividual returns an unevaluated individual.
func NewIndividual[T any](g representation.Genotype[T]) Individual[T] {
	return Individual[T]{genotype: g, fitness: math.NaN()}
}

// NewEvaluatedIndividual returns an individual with a known fitness.
func NewEvaluatedIndividual[T any](g representation.Genotype[T], fitness float64) Individual[T] {
	return Individual[T]{genotype: g, fitness: fitness, evaluated: true}
}

func (i Individual[T]) Genotype() representation.Genotype[T] { return i.genotype }

// Fitness returns the fitness, or NaN when the individual is unevaluated.
func (i Individual[T]) Fitness() float64 { return i.fitness }

func (i Individual[T]) IsEvaluated() bool { return i.evaluated }

// WithFitness returns an evaluated copy holding fitness.
func (i Individual[T]) WithFitness(fitness float64) Individual[T] {
	return NewEvaluatedIndividual(i.genotype, fitness)
}

// Equal reports whether both individuals hold equal genotypes.
func (i Individual[T]) Equal(other Individual[T]) bool {
	return i.genotype.Equal(other.genotype)
}

// Hash returns the genotype hash.
func (i Individual[T]) Hash() (uint64, error) {
	return i.genotype.Hash()
}

func (i Individual[T]) String() string {
	if !i.evaluated {
		return fmt.Sprintf("%v -> unevaluated", i.genotype)
	}
	return fmt.Sprintf("%v -> %g", i.genotype, i.fitness)
}
