package core

import (
	"cmp"
	"slices"
)

// Ranker is a total order over individuals by fitness.
type Ranker[T any] interface {
	// Compare returns a negative number when a is worse than b, zero when
	// they rank equal and a positive number when a is better.
	Compare(a, b Individual[T]) int
	// Sort returns the individuals from best to worst. Ties keep their input
	// order.
	Sort(p Population[T]) Population[T]
	// FitnessTransform rescales fitness values so that a larger transformed
	// value always means a better individual. Roulette-wheel selection builds
	// its probabilities from the transformed values.
	FitnessTransform(values []float64) []float64
}

// SortPopulation stable-sorts a copy of p from best to worst under r.
func SortPopulation[T any](r Ranker[T], p Population[T]) Population[T] {
	sorted := p.Clone()
	slices.SortStableFunc(sorted, func(a, b Individual[T]) int {
		return r.Compare(b, a)
	})
	return sorted
}

// Best returns the best individual of p under r; the first one seen wins
// ties. It returns false for an empty population.
func Best[T any](r Ranker[T], p Population[T]) (Individual[T], bool) {
	if len(p) == 0 {
		return Individual[T]{}, false
	}
	best := p[0]
	for _, ind := range p[1:] {
		if r.Compare(ind, best) > 0 {
			best = ind
		}
	}
	return best, true
}

// Worst returns the worst individual of p under r.
func Worst[T any](r Ranker[T], p Population[T]) (Individual[T], bool) {
	if len(p) == 0 {
		return Individual[T]{}, false
	}
	worst := p[0]
	for _, ind := range p[1:] {
		if r.Compare(ind, worst) < 0 {
			worst = ind
		}
	}
	return worst, true
}

// compareEvaluation orders unevaluated individuals below evaluated ones. The
// second result is false when both are evaluated and fitness decides.
func compareEvaluation[T any](a, b Individual[T]) (int, bool) {
	switch {
	case a.evaluated && b.evaluated:
		return 0, false
	case a.evaluated:
		return 1, true
	case b.evaluated:
		return -1, true
	default:
		return 0, true
	}
}

// MaxRanker ranks higher fitness as better.
type MaxRanker[T any] struct{}

func (MaxRanker[T]) Compare(a, b Individual[T]) int {
	if c, decided := compareEvaluation(a, b); decided {
		return c
	}
	return cmp.Compare(a.fitness, b.fitness)
}

func (r MaxRanker[T]) Sort(p Population[T]) Population[T] {
	return SortPopulation[T](r, p)
}

// FitnessTransform returns a copy of values.
func (MaxRanker[T]) FitnessTransform(values []float64) []float64 {
	return slices.Clone(values)
}

// MinRanker ranks lower fitness as better.
type MinRanker[T any] struct{}

func (MinRanker[T]) Compare(a, b Individual[T]) int {
	if c, decided := compareEvaluation(a, b); decided {
		return c
	}
	return cmp.Compare(b.fitness, a.fitness)
}

func (r MinRanker[T]) Sort(p Population[T]) Population[T] {
	return SortPopulation[T](r, p)
}

// FitnessTransform negates values so that lower fitness maps to a larger
// transformed value.
func (MinRanker[T]) FitnessTransform(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = -v
	}
	return out
}
