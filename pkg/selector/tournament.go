package selector

import (
	"github.com/ishanwen-byte/genevo-go/pkg/core"
)

// Tournament runs one tournament per selected individual. Each tournament
// draws Size contestants independently and uniformly at random, with
// replacement, and keeps the best one; the first contestant drawn wins ties.
type Tournament[T any] struct {
	// Size is the number of contestants per tournament.
	Size int `yaml:"tournament_size" validate:"gte=1"`
	// Distinct keeps one individual from entering the same tournament twice.
	// Size is then clamped to the population size, so a tournament over the
	// whole population always returns its best.
	Distinct bool `yaml:"distinct"`
}

// NewTournament returns a tournament selector drawing contestants with
// replacement.
func NewTournament[T any](size int) (*Tournament[T], error) {
	t := &Tournament[T]{Size: size}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// NewDistinctTournament returns a tournament selector whose contestants are
// distinct individuals.
func NewDistinctTournament[T any](size int) (*Tournament[T], error) {
	t, err := NewTournament[T](size)
	if err != nil {
		return nil, err
	}
	t.Distinct = true
	return t, nil
}

// Validate reports every violated rule of the selector.
func (t *Tournament[T]) Validate() error {
	var rules core.Rules
	rules.Struct(t)
	return rules.Err("tournament selector")
}

func (t *Tournament[T]) Select(pop core.Population[T], outputSize int, ranker core.Ranker[T], domain *core.Domain) (core.Population[T], error) {
	if done, err := checkInput(pop, outputSize); done || err != nil {
		return core.Population[T]{}, err
	}
	if t.Size < 1 {
		return nil, t.Validate()
	}

	n := len(pop)
	size := t.Size
	r := domain.Rand

	// scratch holds a permutation of population indices. Each distinct
	// tournament shuffles its first size entries into place.
	var scratch []int
	if t.Distinct {
		size = min(size, n)
		scratch = make([]int, n)
		for i := range scratch {
			scratch[i] = i
		}
	}

	selected := make(core.Population[T], 0, outputSize)
	for len(selected) < outputSize {
		var winner core.Individual[T]
		for k := 0; k < size; k++ {
			var idx int
			if t.Distinct {
				j := k + r.IntN(n-k)
				scratch[k], scratch[j] = scratch[j], scratch[k]
				idx = scratch[k]
			} else {
				idx = r.IntN(n)
			}
			if k == 0 || ranker.Compare(pop[idx], winner) > 0 {
				winner = pop[idx]
			}
		}
		selected = append(selected, winner)
	}
	return selected, nil
}
