package evaluator

import (
	"sync"

	"github.com/ishanwen-byte/genevo-go/pkg/representation"
)

type memoEntry[T any] struct {
	genotype representation.Genotype[T]
	fitness  float64
}

// Memoize caches the fitness of every genotype fitness has scored. Entries
// are keyed by genotype hash and confirmed with Equal, so hash collisions
// never return a wrong fitness. Errors are not cached. The returned function
// is safe for concurrent use; concurrent first calls for one genotype may
// both reach fitness.
func Memoize[T any](fitness Fitness[T]) Fitness[T] {
	var mu sync.Mutex
	cache := make(map[uint64][]memoEntry[T])

	return func(g representation.Genotype[T]) (float64, error) {
		key, err := g.Hash()
		if err != nil {
			return fitness(g)
		}

		mu.Lock()
		for _, e := range cache[key] {
			if e.genotype.Equal(g) {
				mu.Unlock()
				return e.fitness, nil
			}
		}
		mu.Unlock()

		f, err := fitness(g)
		if err != nil {
			return f, err
		}

		mu.Lock()
		cache[key] = append(cache[key], memoEntry[T]{genotype: g, fitness: f})
		mu.Unlock()
		return f, nil
	}
}
