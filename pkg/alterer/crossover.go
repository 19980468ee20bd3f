package alterer

import (
	"fmt"
	"math/rand/v2"

	"github.com/ishanwen-byte/genevo-go/pkg/core"
	"github.com/ishanwen-byte/genevo-go/pkg/indices"
	"github.com/ishanwen-byte/genevo-go/pkg/representation"
)

// GeneCombiner merges one gene position across a parent group. genes holds
// the gene of every parent at that position, first parent first.
type GeneCombiner[T any] interface {
	Combine(genes []representation.Gene[T], r *rand.Rand) representation.Gene[T]
}

// CombinerFunc adapts a function to the GeneCombiner interface.
type CombinerFunc[T any] func(genes []representation.Gene[T], r *rand.Rand) representation.Gene[T]

func (f CombinerFunc[T]) Combine(genes []representation.Gene[T], r *rand.Rand) representation.Gene[T] {
	return f(genes, r)
}

// UniformCombiner picks the gene of one parent uniformly at random.
type UniformCombiner[T any] struct{}

func (UniformCombiner[T]) Combine(genes []representation.Gene[T], r *rand.Rand) representation.Gene[T] {
	return genes[r.IntN(len(genes))]
}

// CombineValues returns a combiner applying f to the parents' gene values.
// The result keeps the first parent's gene kind, bounds included.
func CombineValues[T any](f func(values []T) T) GeneCombiner[T] {
	return CombinerFunc[T](func(genes []representation.Gene[T], _ *rand.Rand) representation.Gene[T] {
		values := make([]T, len(genes))
		for i, g := range genes {
			values[i] = g.Value()
		}
		return genes[0].Duplicate(f(values))
	})
}

// Crossover recombines groups of NumParents parents into NumOffspring
// offspring each. Every chromosome position is recombined with probability
// ChromosomeRate; the others are copied from the first parent of the group.
type Crossover[T any] struct {
	NumParents     int     `yaml:"num_parents" validate:"gte=2"`
	NumOffspring   int     `yaml:"num_offspring" validate:"gte=1"`
	ChromosomeRate float64 `yaml:"chromosome_rate" validate:"gte=0,lte=1"`
	// Exclusive draws disjoint parent groups. Otherwise every group is drawn
	// from the whole population.
	Exclusive bool            `yaml:"exclusive"`
	Combiner  GeneCombiner[T] `yaml:"-" validate:"required"`
}

// NewCrossover returns a validated crossover.
func NewCrossover[T any](numParents, numOffspring int, chromosomeRate float64, exclusive bool, combiner GeneCombiner[T]) (*Crossover[T], error) {
	c := &Crossover[T]{
		NumParents:     numParents,
		NumOffspring:   numOffspring,
		ChromosomeRate: chromosomeRate,
		Exclusive:      exclusive,
		Combiner:       combiner,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewUniformCrossover returns a two-parent, two-offspring uniform crossover.
func NewUniformCrossover[T any](chromosomeRate float64, exclusive bool) (*Crossover[T], error) {
	return NewCrossover[T](2, 2, chromosomeRate, exclusive, UniformCombiner[T]{})
}

// Validate reports every violated rule of the crossover.
func (c *Crossover[T]) Validate() error {
	var rules core.Rules
	rules.Struct(c)
	return rules.Err("crossover")
}

func (c *Crossover[T]) Alter(state core.State[T], outputSize int, domain *core.Domain) (core.State[T], error) {
	if outputSize < 0 {
		return state, fmt.Errorf("%w: negative output size %d", core.ErrInvalidArgument, outputSize)
	}
	if outputSize == 0 {
		return state.WithPopulation(nil), nil
	}
	pop := state.Population()
	if len(pop) < c.NumParents {
		return state, fmt.Errorf("%w: crossover needs %d parents, population holds %d",
			core.ErrInvalidArgument, c.NumParents, len(pop))
	}

	offspring := make(core.Population[T], 0, outputSize)
	for len(offspring) < outputSize {
		groups, err := indices.Subsets(domain.Rand, len(pop), c.NumParents, c.Exclusive)
		if err != nil {
			return state, err
		}
		for _, group := range groups {
			parents := make([]representation.Genotype[T], len(group))
			for i, idx := range group {
				parents[i] = pop[idx].Genotype()
			}
			children, err := c.cross(parents, domain.Rand)
			if err != nil {
				return state, err
			}
			for _, child := range children {
				offspring = append(offspring, core.NewIndividual(child))
			}
			if len(offspring) >= outputSize {
				break
			}
		}
	}
	return state.WithPopulation(offspring[:outputSize]), nil
}

// cross produces NumOffspring children from one parent group. The recombined
// chromosome positions are drawn once and shared by every child of the group.
func (c *Crossover[T]) cross(parents []representation.Genotype[T], r *rand.Rand) ([]representation.Genotype[T], error) {
	first := parents[0]
	for i, p := range parents[1:] {
		if !first.SameShape(p) {
			return nil, fmt.Errorf("%w: parent %d does not match the shape of the first parent", core.ErrSizeMismatch, i+1)
		}
	}

	positions := indices.PIndices(r, c.ChromosomeRate, first.Size())
	children := make([]representation.Genotype[T], c.NumOffspring)
	for k := range children {
		child := first
		for _, ci := range positions {
			genes := make([]representation.Gene[T], first.Chromosome(ci).Size())
			column := make([]representation.Gene[T], len(parents))
			for gi := range genes {
				for pi, p := range parents {
					column[pi] = p.Chromosome(ci).Gene(gi)
				}
				genes[gi] = c.Combiner.Combine(column, r)
			}
			chrom, err := first.Chromosome(ci).WithGenes(genes)
			if err != nil {
				return nil, err
			}
			child = child.WithChromosome(ci, chrom)
		}
		children[k] = child
	}
	return children, nil
}
