package representation

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/mitchellh/hashstructure/v2"
)

// Genotype is the full candidate solution: an ordered collection of
// chromosomes.
type Genotype[T any] struct {
	chromosomes []Chromosome[T]
}

// NewGenotype returns a genotype holding a copy of chromosomes.
func NewGenotype[T any](chromosomes ...Chromosome[T]) Genotype[T] {
	return Genotype[T]{chromosomes: slices.Clone(chromosomes)}
}

// Size returns the number of chromosomes.
func (g Genotype[T]) Size() int {
	return len(g.chromosomes)
}

// Verify reports whether every chromosome is valid.
func (g Genotype[T]) Verify() bool {
	for _, c := range g.chromosomes {
		if !c.Verify() {
			return false
		}
	}
	return true
}

// Flatten returns all gene values, chromosome by chromosome.
func (g Genotype[T]) Flatten() []T {
	var values []T
	for _, c := range g.chromosomes {
		values = append(values, c.Flatten()...)
	}
	return values
}

// Chromosome returns the chromosome at index i.
func (g Genotype[T]) Chromosome(i int) Chromosome[T] {
	return g.chromosomes[i]
}

// Chromosomes returns a copy of the chromosomes.
func (g Genotype[T]) Chromosomes() []Chromosome[T] {
	return slices.Clone(g.chromosomes)
}

// WithChromosome returns a genotype with the chromosome at index i replaced.
func (g Genotype[T]) WithChromosome(i int, c Chromosome[T]) Genotype[T] {
	chromosomes := slices.Clone(g.chromosomes)
	chromosomes[i] = c
	return Genotype[T]{chromosomes: chromosomes}
}

// Values returns the gene values grouped by chromosome.
func (g Genotype[T]) Values() [][]T {
	values := make([][]T, len(g.chromosomes))
	for i, c := range g.chromosomes {
		values[i] = c.Flatten()
	}
	return values
}

// WithValues returns a genotype shaped like the receiver holding values.
func (g Genotype[T]) WithValues(values [][]T) (Genotype[T], error) {
	if len(values) != len(g.chromosomes) {
		return Genotype[T]{}, fmt.Errorf("%w: genotype has %d chromosomes, got %d", ErrSizeMismatch, len(g.chromosomes), len(values))
	}
	chromosomes := make([]Chromosome[T], len(values))
	for i, v := range values {
		c, err := g.chromosomes[i].WithValues(v)
		if err != nil {
			return Genotype[T]{}, fmt.Errorf("chromosome %d: %w", i, err)
		}
		chromosomes[i] = c
	}
	return Genotype[T]{chromosomes: chromosomes}, nil
}

// SameShape reports whether both genotypes have the same chromosome count and
// chromosome lengths.
func (g Genotype[T]) SameShape(other Genotype[T]) bool {
	if len(g.chromosomes) != len(other.chromosomes) {
		return false
	}
	for i, c := range g.chromosomes {
		if c.Size() != other.chromosomes[i].Size() {
			return false
		}
	}
	return true
}

// Equal reports whether both genotypes hold the same values in the same shape.
func (g Genotype[T]) Equal(other Genotype[T]) bool {
	return reflect.DeepEqual(g.Values(), other.Values())
}

// Hash returns a structural hash of the gene values. Equal genotypes hash to
// the same value.
func (g Genotype[T]) Hash() (uint64, error) {
	return hashstructure.Hash(g.Values(), hashstructure.FormatV2, nil)
}

func (g Genotype[T]) String() string {
	parts := make([]string, len(g.chromosomes))
	for i, c := range g.chromosomes {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
