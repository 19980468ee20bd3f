package alterer

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/ishanwen-byte/genevo-go/pkg/core"
	"github.com/ishanwen-byte/genevo-go/pkg/representation"
)

// ChromosomeMutator visits each individual with probability IndividualRate
// and replaces each chromosome of a visited individual with probability
// ChromosomeRate. Mutated individuals lose their fitness.
type ChromosomeMutator[T any] struct {
	IndividualRate float64 `yaml:"individual_rate" validate:"gte=0,lte=1"`
	ChromosomeRate float64 `yaml:"chromosome_rate" validate:"gte=0,lte=1"`
	// MutateChromosome returns the replacement of c.
	MutateChromosome func(c representation.Chromosome[T], r *rand.Rand) representation.Chromosome[T] `yaml:"-" validate:"required"`
}

// NewChromosomeMutator returns a validated chromosome mutator.
func NewChromosomeMutator[T any](individualRate, chromosomeRate float64,
	mutate func(c representation.Chromosome[T], r *rand.Rand) representation.Chromosome[T]) (*ChromosomeMutator[T], error) {
	m := &ChromosomeMutator[T]{
		IndividualRate:   individualRate,
		ChromosomeRate:   chromosomeRate,
		MutateChromosome: mutate,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate reports every violated rule of the mutator.
func (m *ChromosomeMutator[T]) Validate() error {
	var rules core.Rules
	rules.Struct(m)
	return rules.Err("mutator")
}

func (m *ChromosomeMutator[T]) Alter(state core.State[T], outputSize int, domain *core.Domain) (core.State[T], error) {
	if outputSize != state.Size() {
		return state, fmt.Errorf("%w: mutation keeps the population size %d, asked for %d",
			core.ErrInvalidArgument, state.Size(), outputSize)
	}
	// No draws at all, so unrelated random streams stay reproducible.
	if domain.IsZero(m.IndividualRate) {
		return state, nil
	}

	r := domain.Rand
	pop := state.Population()
	for i, ind := range pop {
		if r.Float64() >= m.IndividualRate {
			continue
		}
		g := ind.Genotype()
		changed := false
		for ci := 0; ci < g.Size(); ci++ {
			if r.Float64() >= m.ChromosomeRate {
				continue
			}
			g = g.WithChromosome(ci, m.MutateChromosome(g.Chromosome(ci), r))
			changed = true
		}
		if changed {
			pop[i] = core.NewIndividual(g)
		}
	}
	return state.WithPopulation(pop), nil
}

// GeneMutator replaces each gene of a visited chromosome with probability
// GeneRate.
type GeneMutator[T any] struct {
	ChromosomeMutator[T] `yaml:",inline"`
	GeneRate             float64 `yaml:"gene_rate" validate:"gte=0,lte=1"`
	// MutateGene returns the replacement of g.
	MutateGene func(g representation.Gene[T], r *rand.Rand) representation.Gene[T] `yaml:"-" validate:"required"`
}

// NewGeneMutator returns a validated gene-level mutator.
func NewGeneMutator[T any](individualRate, chromosomeRate, geneRate float64,
	mutate func(g representation.Gene[T], r *rand.Rand) representation.Gene[T]) (*GeneMutator[T], error) {
	m := &GeneMutator[T]{
		ChromosomeMutator: ChromosomeMutator[T]{
			IndividualRate: individualRate,
			ChromosomeRate: chromosomeRate,
		},
		GeneRate:   geneRate,
		MutateGene: mutate,
	}
	m.MutateChromosome = m.mutateChromosome
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate reports every violated rule of the mutator.
func (m *GeneMutator[T]) Validate() error {
	var rules core.Rules
	rules.Struct(m)
	return rules.Err("mutator")
}

func (m *GeneMutator[T]) mutateChromosome(c representation.Chromosome[T], r *rand.Rand) representation.Chromosome[T] {
	for gi := 0; gi < c.Size(); gi++ {
		if r.Float64() < m.GeneRate {
			c = c.WithGene(gi, m.MutateGene(c.Gene(gi), r))
		}
	}
	return c
}

// NewBitFlipMutator flips each visited bit.
func NewBitFlipMutator(individualRate, chromosomeRate, geneRate float64) (*GeneMutator[bool], error) {
	return NewGeneMutator(individualRate, chromosomeRate, geneRate,
		func(g representation.Gene[bool], _ *rand.Rand) representation.Gene[bool] {
			return g.Duplicate(!g.Value())
		})
}

// NewGaussianMutator adds normal noise with standard deviation sigma to each
// visited gene. Bounded genes are clamped to their range.
func NewGaussianMutator(individualRate, chromosomeRate, geneRate, sigma float64) (*GeneMutator[float64], error) {
	if sigma < 0 || math.IsNaN(sigma) {
		return nil, &core.ConfigError{
			Component:  "mutator",
			Violations: []string{fmt.Sprintf("sigma must be at least 0 (got %v)", sigma)},
		}
	}
	return NewGeneMutator(individualRate, chromosomeRate, geneRate,
		func(g representation.Gene[float64], r *rand.Rand) representation.Gene[float64] {
			v := g.Value() + r.NormFloat64()*sigma
			if b, ok := g.(representation.Bounded[float64]); ok {
				v = math.Max(b.Min(), math.Min(b.Max(), v))
			}
			return g.Duplicate(v)
		})
}
