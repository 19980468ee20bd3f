package representation

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// Chromosome is an ordered collection of genes.
type Chromosome[T any] struct {
	genes []Gene[T]
}

// NewChromosome returns a chromosome holding a copy of genes.
func NewChromosome[T any](genes ...Gene[T]) Chromosome[T] {
	return Chromosome[T]{genes: slices.Clone(genes)}
}

// NewBoolChromosome returns a chromosome of n random bits.
func NewBoolChromosome(r *rand.Rand, n int) Chromosome[bool] {
	genes := make([]Gene[bool], n)
	for i := range genes {
		genes[i] = RandomBoolGene(r)
	}
	return Chromosome[bool]{genes: genes}
}

// BoolChromosomeOf returns a chromosome holding the given bits.
func BoolChromosomeOf(values ...bool) Chromosome[bool] {
	genes := make([]Gene[bool], len(values))
	for i, v := range values {
		genes[i] = BoolGene(v)
	}
	return Chromosome[bool]{genes: genes}
}

// NewIntChromosome returns a chromosome of n integer genes drawn from [min, max].
func NewIntChromosome(r *rand.Rand, n, min, max int) Chromosome[int] {
	genes := make([]Gene[int], n)
	for i := range genes {
		genes[i] = RandomIntGene(r, min, max)
	}
	return Chromosome[int]{genes: genes}
}

// NewFloatChromosome returns a chromosome of n real genes drawn from [min, max).
func NewFloatChromosome(r *rand.Rand, n int, min, max float64) Chromosome[float64] {
	genes := make([]Gene[float64], n)
	for i := range genes {
		genes[i] = RandomFloatGene(r, min, max)
	}
	return Chromosome[float64]{genes: genes}
}

// Size returns the number of genes.
func (c Chromosome[T]) Size() int {
	return len(c.genes)
}

// Verify reports whether every gene is valid.
func (c Chromosome[T]) Verify() bool {
	for _, g := range c.genes {
		if !g.Verify() {
			return false
		}
	}
	return true
}

// Flatten returns the gene values in order.
func (c Chromosome[T]) Flatten() []T {
	values := make([]T, 0, len(c.genes))
	for _, g := range c.genes {
		values = append(values, g.Flatten()...)
	}
	return values
}

// Gene returns the gene at index i.
func (c Chromosome[T]) Gene(i int) Gene[T] {
	return c.genes[i]
}

// Genes returns a copy of the genes.
func (c Chromosome[T]) Genes() []Gene[T] {
	return slices.Clone(c.genes)
}

// WithGene returns a chromosome with the gene at index i replaced.
func (c Chromosome[T]) WithGene(i int, g Gene[T]) Chromosome[T] {
	genes := slices.Clone(c.genes)
	genes[i] = g
	return Chromosome[T]{genes: genes}
}

// WithGenes returns a chromosome of the same length holding genes.
func (c Chromosome[T]) WithGenes(genes []Gene[T]) (Chromosome[T], error) {
	if len(genes) != len(c.genes) {
		return Chromosome[T]{}, fmt.Errorf("%w: chromosome has %d genes, got %d", ErrSizeMismatch, len(c.genes), len(genes))
	}
	return Chromosome[T]{genes: slices.Clone(genes)}, nil
}

// WithValues returns a chromosome whose genes are duplicates of the receiver's
// genes holding values.
func (c Chromosome[T]) WithValues(values []T) (Chromosome[T], error) {
	if len(values) != len(c.genes) {
		return Chromosome[T]{}, fmt.Errorf("%w: chromosome has %d genes, got %d values", ErrSizeMismatch, len(c.genes), len(values))
	}
	genes := make([]Gene[T], len(values))
	for i, v := range values {
		genes[i] = c.genes[i].Duplicate(v)
	}
	return Chromosome[T]{genes: genes}, nil
}

func (c Chromosome[T]) String() string {
	return fmt.Sprint(c.Flatten())
}
